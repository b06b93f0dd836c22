package views

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"
)

// htmlWriter keeps the first write error so components can emit markup
// without checking every call.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(parts ...string) {
	for _, s := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) attr(name, val string) {
	h.raw(" ", name, `="`, templ.EscapeString(val), `"`)
}

func (h *htmlWriter) child(c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(h.ctx, h.w)
}

func (h *htmlWriter) timestamp(t time.Time, text string) {
	h.raw("<time")
	h.attr("datetime", t.Format(time.RFC3339))
	h.raw(">")
	h.text(text)
	h.raw("</time>")
}

// Document is the page shell shared by every generated HTML file.
func Document(site SiteConfig, meta PageMeta, nav []NavItem, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{ctx: ctx, w: w}
		title := site.Name
		if meta.Title != "" && meta.Title != site.Name {
			title = meta.Title + " | " + site.Name
		}
		desc := meta.Description
		if desc == "" {
			desc = site.Description
		}
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}

		h.raw("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
		h.raw(`<meta charset="utf-8">`, "\n")
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`, "\n")
		h.raw("<title>")
		h.text(title)
		h.raw("</title>\n")
		if desc != "" {
			h.raw(`<meta name="description"`)
			h.attr("content", desc)
			h.raw(">\n")
		}
		if meta.URL != "" {
			h.raw(`<link rel="canonical"`)
			h.attr("href", meta.URL)
			h.raw(">\n")
			h.raw(`<meta property="og:url"`)
			h.attr("content", meta.URL)
			h.raw(">\n")
		}
		h.raw(`<meta property="og:title"`)
		h.attr("content", title)
		h.raw(">\n")
		h.raw(`<meta property="og:type"`)
		h.attr("content", ogType)
		h.raw(">\n")
		h.raw(`<link rel="alternate" type="application/rss+xml"`)
		h.attr("title", site.Name)
		h.attr("href", buildURL(site.URL)+"feed.xml")
		h.raw(">\n")
		if meta.JSONLD != "" {
			h.raw(`<script type="application/ld+json">`, meta.JSONLD, "</script>\n")
		}
		h.raw("</head>\n<body>\n<header class=\"site-header\">\n")
		h.raw(`<a class="site-title" href="/">`)
		h.text(site.Name)
		h.raw("</a>\n")
		if len(nav) > 0 {
			h.raw("<nav>\n<ul>\n")
			for _, item := range nav {
				h.raw("<li><a")
				h.attr("class", NavClass(item.Active))
				h.attr("href", item.URL)
				h.raw(">")
				if item.Icon != "" {
					h.raw("<i")
					h.attr("class", item.Icon)
					h.raw("></i> ")
				}
				h.text(item.Title)
				h.raw("</a></li>\n")
			}
			h.raw("</ul>\n</nav>\n")
		}
		h.raw("</header>\n<main>\n")
		h.child(content)
		h.raw("</main>\n<footer class=\"site-footer\">\n<p>")
		if site.Author != "" {
			h.text(site.Author)
		} else {
			h.text(site.Name)
		}
		h.raw("</p>\n</footer>\n</body>\n</html>\n")
		return h.err
	})
}

// PostArticle renders a post: title, date, category and tag chrome, the
// body, and links to neighbouring and related posts.
func PostArticle(v Post, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{ctx: ctx, w: w}
		h.raw("<article class=\"post\">\n<header>\n<h1>")
		h.text(v.Title)
		h.raw("</h1>\n<p class=\"post-meta\">")
		h.timestamp(v.Date, v.DateText)
		h.raw("</p>\n")
		if len(v.Categories) > 0 {
			h.raw(`<p class="post-categories">`)
			termLinks(h, v.Categories, "")
			h.raw("</p>\n")
		}
		h.raw("</header>\n<div class=\"post-content\">\n")
		h.child(body)
		h.raw("</div>\n<footer>\n")
		if len(v.Tags) > 0 {
			h.raw(`<p class="post-tags">`)
			termLinks(h, v.Tags, "#")
			h.raw("</p>\n")
		}
		if v.Newer != nil || v.Older != nil {
			h.raw("<nav class=\"post-nav\">\n")
			if v.Newer != nil {
				h.raw(`<a class="newer"`)
				h.attr("href", v.Newer.URL)
				h.raw(">")
				h.text(v.Newer.Title)
				h.raw("</a>\n")
			}
			if v.Older != nil {
				h.raw(`<a class="older"`)
				h.attr("href", v.Older.URL)
				h.raw(">")
				h.text(v.Older.Title)
				h.raw("</a>\n")
			}
			h.raw("</nav>\n")
		}
		if len(v.Related) > 0 {
			h.raw("<section class=\"related\">\n<h2>Related posts</h2>\n")
			postList(h, v.Related)
			h.raw("</section>\n")
		}
		h.raw("</footer>\n</article>\n")
		return h.err
	})
}

// PageArticle renders a static page. It has no date or term chrome.
func PageArticle(v Page, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{ctx: ctx, w: w}
		h.raw("<article class=\"page\">\n<h1>")
		if v.Icon != "" {
			h.raw("<i")
			h.attr("class", v.Icon)
			h.raw("></i> ")
		}
		h.text(v.Title)
		h.raw("</h1>\n<div class=\"page-content\">\n")
		h.child(body)
		h.raw("</div>\n</article>\n")
		return h.err
	})
}

// IndexListing renders the home page: every post newest first, then the
// posts grouped by category and by tag.
func IndexListing(v Index) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{ctx: ctx, w: w}
		h.raw("<section class=\"posts\">\n<h1>Recent posts</h1>\n")
		postList(h, v.Posts)
		h.raw("</section>\n")
		termSection(h, "categories", "Categories", v.Categories)
		termSection(h, "tags", "Tags", v.Tags)
		return h.err
	})
}

// TermListing renders the page of one category or tag.
func TermListing(v TermPage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{ctx: ctx, w: w}
		h.raw("<section class=\"term-listing\">\n<h1>")
		h.text(v.Heading + ": " + v.Group.Term.Name)
		h.raw("</h1>\n")
		postList(h, v.Group.Posts)
		h.raw("</section>\n")
		return h.err
	})
}

// NotFound is the body of 404.html.
func NotFound() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{ctx: ctx, w: w}
		h.raw("<section class=\"not-found\">\n<h1>Page not found</h1>\n")
		h.raw("<p><a href=\"/\">Back to the home page</a></p>\n</section>\n")
		return h.err
	})
}

func termLinks(h *htmlWriter, links []TermLink, prefix string) {
	for i, l := range links {
		if i > 0 {
			h.raw(", ")
		}
		h.raw("<a")
		h.attr("class", TagClass(l.Count))
		h.attr("href", l.URL)
		h.raw(">")
		h.text(prefix + l.Name)
		h.raw("</a>")
	}
}

func postList(h *htmlWriter, posts []PostSummary) {
	if len(posts) == 0 {
		h.raw("<p class=\"empty\">No posts yet.</p>\n")
		return
	}
	h.raw("<ul class=\"post-list\">\n")
	for _, p := range posts {
		h.raw("<li><a")
		h.attr("href", p.URL)
		h.raw(">")
		h.text(p.Title)
		h.raw("</a> ")
		h.timestamp(p.Date, p.DateText)
		if p.Summary != "" {
			h.raw("<p class=\"summary\">")
			h.text(p.Summary)
			h.raw("</p>")
		}
		h.raw("</li>\n")
	}
	h.raw("</ul>\n")
}

func termSection(h *htmlWriter, class, heading string, groups []TermGroup) {
	if len(groups) == 0 {
		return
	}
	h.raw("<section")
	h.attr("class", class)
	h.raw(">\n<h2>")
	h.text(heading)
	h.raw("</h2>\n")
	for _, g := range groups {
		h.raw("<h3><a")
		h.attr("href", g.Term.URL)
		h.raw(">")
		h.text(g.Term.Name)
		h.raw("</a> <span class=\"count\">")
		h.text(strconv.Itoa(g.Term.Count))
		h.raw("</span></h3>\n")
		postList(h, g.Posts)
	}
	h.raw("</section>\n")
}
