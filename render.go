package pubsite

import (
	"bytes"
	"context"
	"fmt"

	"github.com/a-h/templ"

	"github.com/eringen/pubsite/markdown"
	"github.com/eringen/pubsite/views"
)

// Renderer turns pages and the index into HTML documents. Rendering is a
// pure function of its inputs: the same page and index always produce the
// same bytes. A Renderer is safe for concurrent use.
type Renderer struct {
	cfg  SiteConfig
	site views.SiteConfig
	md   *markdown.Converter
}

// NewRenderer creates a Renderer for cfg.
func NewRenderer(cfg SiteConfig) *Renderer {
	cfg.setDefaults()
	return &Renderer{
		cfg: cfg,
		site: views.SiteConfig{
			Name:        cfg.Name,
			URL:         cfg.URL,
			Description: cfg.Description,
			Author:      cfg.Author,
		},
		md: markdown.New(),
	}
}

// Render produces the HTML document for page. Posts get date, category and
// tag chrome; static pages do not.
func (r *Renderer) Render(page *Page, index *SiteIndex) ([]byte, error) {
	if page == nil {
		return nil, fmt.Errorf("%w: nil page", ErrRender)
	}
	if index == nil {
		index = BuildIndex(nil)
	}

	meta := views.PageMeta{
		Title:       page.DisplayTitle(),
		Description: page.Summary(),
		URL:         BuildURL(r.cfg.URL, page.Permalink()),
	}
	body := r.md.Component(page.body)

	var content templ.Component
	switch page.kind {
	case KindPost:
		if page.title == "" {
			return nil, fmt.Errorf("%w: %s: post has no title", ErrRender, page.path)
		}
		if !page.HasDate() {
			return nil, fmt.Errorf("%w: %s: post has no date", ErrRender, page.path)
		}
		v := r.postView(page, index)
		meta.OGType = "article"
		meta.JSONLD = views.BlogPostingJsonLD(r.site, v, meta.URL, page.Summary())
		content = views.PostArticle(v, body)
	case KindStaticPage:
		content = views.PageArticle(views.Page{
			Title: page.DisplayTitle(),
			Icon:  page.Icon(),
		}, body)
	default:
		return nil, fmt.Errorf("%w: %s: unknown page kind %d", ErrRender, page.path, page.kind)
	}

	out, err := r.document(meta, r.nav(index, page.Permalink()), content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRender, page.path, err)
	}
	return out, nil
}

// RenderIndex produces the home page: posts newest first, grouped by
// category and by tag.
func (r *Renderer) RenderIndex(index *SiteIndex) ([]byte, error) {
	v := views.Index{
		Posts:      r.summaries(index.Posts()),
		Categories: r.groups(Categories, index),
		Tags:       r.groups(Tags, index),
	}
	meta := views.PageMeta{
		Title:  r.cfg.Name,
		URL:    BuildURL(r.cfg.URL),
		JSONLD: views.WebsiteJsonLD(r.site),
	}
	return r.document(meta, r.nav(index, "/"), views.IndexListing(v))
}

// RenderTerm produces the listing page of one category or tag.
func (r *Renderer) RenderTerm(kind TermKind, term Term, index *SiteIndex) ([]byte, error) {
	heading := "Tag"
	if kind == Categories {
		heading = "Category"
	}
	v := views.TermPage{
		Heading: heading,
		Group: views.TermGroup{
			Term:  r.termLink(kind, term),
			Posts: r.summaries(index.ByTerm(kind, term.Name)),
		},
	}
	meta := views.PageMeta{
		Title: heading + ": " + term.Name,
		URL:   BuildURL(r.cfg.URL, termPath(kind, term)),
	}
	return r.document(meta, r.nav(index, ""), views.TermListing(v))
}

// RenderNotFound produces 404.html.
func (r *Renderer) RenderNotFound(index *SiteIndex) ([]byte, error) {
	meta := views.PageMeta{Title: "Page not found"}
	return r.document(meta, r.nav(index, ""), views.NotFound())
}

func (r *Renderer) document(meta views.PageMeta, nav []views.NavItem, content templ.Component) ([]byte, error) {
	var buf bytes.Buffer
	if err := views.Document(r.site, meta, nav, content).Render(context.Background(), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Renderer) postView(p *Page, index *SiteIndex) views.Post {
	v := views.Post{
		Title:      p.title,
		Date:       p.date,
		DateText:   p.date.Format(r.cfg.DateFormat),
		Categories: r.pageTerms(Categories, p.categories, index),
		Tags:       r.pageTerms(Tags, p.tags, index),
		Related:    r.summaries(index.Related(p, r.cfg.RelatedPosts)),
	}
	newer, older := index.Neighbors(p)
	if newer != nil {
		s := r.summary(newer)
		v.Newer = &s
	}
	if older != nil {
		s := r.summary(older)
		v.Older = &s
	}
	return v
}

// pageTerms links a page's terms to their index entries. A page rendered
// against an index that does not contain it still gets working links.
func (r *Renderer) pageTerms(kind TermKind, names []string, index *SiteIndex) []views.TermLink {
	known := make(map[string]Term)
	for _, t := range index.Terms(kind) {
		known[normalizeTerm(t.Name)] = t
	}
	links := make([]views.TermLink, 0, len(names))
	seen := make(map[string]bool)
	for _, name := range names {
		key := normalizeTerm(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		t, ok := known[key]
		if !ok {
			t = Term{Name: name, Slug: termSlug(name), Count: 1}
		}
		links = append(links, r.termLink(kind, t))
	}
	return links
}

func (r *Renderer) termLink(kind TermKind, t Term) views.TermLink {
	return views.TermLink{Name: t.Name, URL: termPath(kind, t), Count: t.Count}
}

func (r *Renderer) groups(kind TermKind, index *SiteIndex) []views.TermGroup {
	terms := index.Terms(kind)
	groups := make([]views.TermGroup, 0, len(terms))
	for _, t := range terms {
		groups = append(groups, views.TermGroup{
			Term:  r.termLink(kind, t),
			Posts: r.summaries(index.ByTerm(kind, t.Name)),
		})
	}
	return groups
}

func (r *Renderer) summary(p *Page) views.PostSummary {
	return views.PostSummary{
		Title:    p.DisplayTitle(),
		URL:      p.Permalink(),
		Date:     p.date,
		DateText: p.date.Format(r.cfg.DateFormat),
		Summary:  p.Summary(),
	}
}

func (r *Renderer) summaries(pages []*Page) []views.PostSummary {
	out := make([]views.PostSummary, 0, len(pages))
	for _, p := range pages {
		out = append(out, r.summary(p))
	}
	return out
}

// nav lists static pages that ask to be tabs, by carrying an icon or an
// order option.
func (r *Renderer) nav(index *SiteIndex, current string) []views.NavItem {
	var items []views.NavItem
	for _, p := range index.Pages() {
		_, ordered := p.Order()
		if p.Icon() == "" && !ordered {
			continue
		}
		items = append(items, views.NavItem{
			Title:  p.DisplayTitle(),
			Icon:   p.Icon(),
			URL:    p.Permalink(),
			Active: p.Permalink() == current,
		})
	}
	return items
}

// termPath is the site-relative URL of a term page.
func termPath(kind TermKind, t Term) string {
	return "/" + string(kind) + "/" + t.Slug + "/"
}
