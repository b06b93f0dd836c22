package views

import "time"

// SiteConfig holds the site-wide settings templates need.
// Every component receives it so nothing is hardcoded.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
	Author      string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	JSONLD      string // pre-marshalled schema.org object, may be empty
}

// NavItem is one navigation tab.
type NavItem struct {
	Title  string
	Icon   string
	URL    string
	Active bool
}

// TermLink points at a category or tag page.
type TermLink struct {
	Name  string
	URL   string
	Count int
}

// PostSummary is a post as shown in listings.
type PostSummary struct {
	Title    string
	URL      string
	Date     time.Time
	DateText string
	Summary  string
}

// Post is the view model of a single post.
type Post struct {
	Title      string
	Date       time.Time
	DateText   string
	Categories []TermLink
	Tags       []TermLink
	Related    []PostSummary
	Newer      *PostSummary
	Older      *PostSummary
}

// Page is the view model of a static page.
type Page struct {
	Title string
	Icon  string
}

// TermGroup is one category or tag with its posts.
type TermGroup struct {
	Term  TermLink
	Posts []PostSummary
}

// Index is the view model of the home page.
type Index struct {
	Posts      []PostSummary
	Categories []TermGroup
	Tags       []TermGroup
}

// TermPage is the view model of a single category or tag listing.
type TermPage struct {
	Heading string // "Category" or "Tag"
	Group   TermGroup
}
