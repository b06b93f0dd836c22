package pubsite

import "time"

// Kind distinguishes dated, listed posts from individually addressed pages.
type Kind int

const (
	// KindStaticPage is an undated page addressed on its own, such as an
	// about tab.
	KindStaticPage Kind = iota
	// KindPost is a dated, categorized entry in the chronological listing.
	KindPost
)

func (k Kind) String() string {
	switch k {
	case KindPost:
		return "post"
	case KindStaticPage:
		return "page"
	default:
		return "unknown"
	}
}

// Page is one publishable document. It is built once per build by NewPage
// and never modified afterwards; accessors hand out copies.
type Page struct {
	path       string // source path relative to the content root, slash separated
	kind       Kind
	title      string
	date       time.Time
	categories []string
	tags       []string
	options    map[string]any
	body       []byte
}

// TermKind selects between the two taxonomies.
type TermKind string

const (
	Categories TermKind = "categories"
	Tags       TermKind = "tags"
)

// Term is a category or tag as shown in listings.
type Term struct {
	Name  string // display form, as first written by the newest post using it
	Slug  string // URL segment
	Count int
}
