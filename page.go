package pubsite

import (
	"maps"
	"path"
	"regexp"
	"slices"
	"strings"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/eringen/pubsite/frontmatter"
)

// Layout option keys with a meaning of their own.
const (
	OptionIcon        = "icon"
	OptionOrder       = "order"
	OptionDescription = "description"
)

// datePrefix matches the YYYY-MM-DD- prefix post file names carry.
var datePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-`)

// KindFor infers a page kind from its source path: files whose first
// directory is one of postsDirs are posts, everything else is a static page.
func KindFor(relPath string, postsDirs []string) Kind {
	first, _, found := strings.Cut(path.Clean(relPath), "/")
	if !found {
		return KindStaticPage
	}
	if slices.Contains(postsDirs, first) {
		return KindPost
	}
	return KindStaticPage
}

// NewPage validates meta for kind and returns the page. Posts need a title
// and a date; static pages need a title or an icon. When several fields are
// missing, every one is reported (title first), combined with multierr.
func NewPage(relPath string, kind Kind, meta frontmatter.Metadata, body []byte) (*Page, error) {
	p := &Page{
		path:       path.Clean(relPath),
		kind:       kind,
		title:      strings.TrimSpace(meta.Title),
		date:       meta.Date,
		categories: termSet(meta.Categories),
		tags:       termSet(meta.Tags),
		options:    maps.Clone(meta.Options),
		body:       slices.Clone(body),
	}

	switch kind {
	case KindPost:
		var err error
		if p.title == "" {
			err = multierr.Append(err, &FieldError{Kind: kind, Field: "title"})
		}
		if p.date.IsZero() {
			err = multierr.Append(err, &FieldError{Kind: kind, Field: "date"})
		}
		if err != nil {
			return nil, err
		}
	case KindStaticPage:
		if p.title == "" && p.Icon() == "" {
			return nil, &FieldError{Kind: kind, Field: "title"}
		}
	}
	return p, nil
}

// termSet trims, drops empties and duplicates, and sorts.
func termSet(in []string) []string {
	out := FilterEmpty(in)
	slices.Sort(out)
	return slices.Compact(out)
}

func (p *Page) Path() string    { return p.path }
func (p *Page) Kind() Kind      { return p.kind }
func (p *Page) IsPost() bool    { return p.kind == KindPost }
func (p *Page) Title() string   { return p.title }
func (p *Page) Date() time.Time { return p.date }
func (p *Page) HasDate() bool   { return !p.date.IsZero() }

// Categories returns the page's categories, sorted.
func (p *Page) Categories() []string { return slices.Clone(p.categories) }

// Tags returns the page's tags, sorted.
func (p *Page) Tags() []string { return slices.Clone(p.tags) }

// Body returns the raw markup body.
func (p *Page) Body() []byte { return slices.Clone(p.body) }

// Options returns a copy of the layout options, including unknown keys.
func (p *Page) Options() map[string]any { return maps.Clone(p.options) }

// Option returns one layout option.
func (p *Page) Option(key string) (any, bool) {
	v, ok := p.options[key]
	return v, ok
}

// Icon is the icon class of a navigation tab, or "".
func (p *Page) Icon() string {
	s, _ := p.options[OptionIcon].(string)
	return strings.TrimSpace(s)
}

// Order is the position of a static page in the navigation.
func (p *Page) Order() (int, bool) {
	switch v := p.options[OptionOrder].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case uint64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}

// Summary is the description option, used in feeds and meta tags.
func (p *Page) Summary() string {
	s, _ := p.options[OptionDescription].(string)
	return strings.TrimSpace(s)
}

// Slug is the URL segment derived from the file name, with a post's
// date prefix removed.
func (p *Page) Slug() string {
	base := path.Base(p.path)
	base = strings.TrimSuffix(base, path.Ext(base))
	base = datePrefix.ReplaceAllString(base, "")
	if s := Slugify(base); s != "" {
		return s
	}
	return "untitled"
}

// Permalink is the page's site-relative URL: /posts/<slug>/ for posts, and
// the source directory path for static pages, minus collection directories
// whose names start with an underscore.
func (p *Page) Permalink() string {
	if p.IsPost() {
		return "/posts/" + p.Slug() + "/"
	}
	var segs []string
	dir := path.Dir(p.path)
	if dir != "." {
		for _, d := range strings.Split(dir, "/") {
			if strings.HasPrefix(d, "_") {
				continue
			}
			if s := Slugify(d); s != "" {
				segs = append(segs, s)
			}
		}
	}
	segs = append(segs, p.Slug())
	return "/" + strings.Join(segs, "/") + "/"
}

// OutputPath is where the rendered page is written, relative to the output
// directory.
func (p *Page) OutputPath() string {
	return path.Join(strings.TrimPrefix(p.Permalink(), "/"), "index.html")
}

// DisplayTitle is the title, or for untitled static pages the slug in
// title case.
func (p *Page) DisplayTitle() string {
	if p.title != "" {
		return p.title
	}
	// Casers carry state, so each call gets its own.
	return cases.Title(language.English).String(strings.ReplaceAll(p.Slug(), "-", " "))
}

// HasTag reports whether the page carries tag, compared case-insensitively.
func (p *Page) HasTag(tag string) bool {
	key := normalizeTerm(tag)
	for _, t := range p.tags {
		if normalizeTerm(t) == key {
			return true
		}
	}
	return false
}
