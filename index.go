package pubsite

import (
	"fmt"
	"slices"
	"sort"
)

// SiteIndex is the read-only aggregate of one build: posts newest first,
// static pages in navigation order, and the category and tag groupings.
// It is rebuilt from scratch on every build and never modified.
type SiteIndex struct {
	posts      []*Page
	pages      []*Page
	categories termIndex
	tags       termIndex
}

type termIndex struct {
	terms []Term             // sorted by name
	posts map[string][]*Page // keyed by normalizeTerm
}

// BuildIndex aggregates pages. The result depends only on the set of pages
// given, not on their order.
func BuildIndex(pages []*Page) *SiteIndex {
	idx := &SiteIndex{}
	for _, p := range pages {
		if p == nil {
			continue
		}
		if p.IsPost() {
			idx.posts = append(idx.posts, p)
		} else {
			idx.pages = append(idx.pages, p)
		}
	}

	sort.SliceStable(idx.posts, func(i, j int) bool {
		return postLess(idx.posts[i], idx.posts[j])
	})
	sort.SliceStable(idx.pages, func(i, j int) bool {
		return pageLess(idx.pages[i], idx.pages[j])
	})

	idx.categories = groupTerms(idx.posts, (*Page).Categories)
	idx.tags = groupTerms(idx.posts, (*Page).Tags)
	return idx
}

// postLess orders by date descending, then path ascending, so that posts
// sharing a timestamp still have a total order.
func postLess(a, b *Page) bool {
	if !a.date.Equal(b.date) {
		return a.date.After(b.date)
	}
	return a.path < b.path
}

// pageLess orders pages with an order option first, ascending, then by path.
func pageLess(a, b *Page) bool {
	ao, aok := a.Order()
	bo, bok := b.Order()
	switch {
	case aok && bok && ao != bo:
		return ao < bo
	case aok != bok:
		return aok
	}
	return a.path < b.path
}

// groupTerms expects posts already in index order, so every group inherits
// that order and a term's display name comes from its newest post.
func groupTerms(posts []*Page, termsOf func(*Page) []string) termIndex {
	ti := termIndex{posts: make(map[string][]*Page)}
	names := make(map[string]string)
	for _, p := range posts {
		for _, t := range termsOf(p) {
			key := normalizeTerm(t)
			if _, ok := names[key]; !ok {
				names[key] = t
			}
			group := ti.posts[key]
			// A post may list the same term twice with different casing.
			if n := len(group); n > 0 && group[n-1] == p {
				continue
			}
			ti.posts[key] = append(group, p)
		}
	}
	for key, name := range names {
		ti.terms = append(ti.terms, Term{
			Name:  name,
			Slug:  termSlug(name),
			Count: len(ti.posts[key]),
		})
	}
	sort.Slice(ti.terms, func(i, j int) bool {
		a, b := normalizeTerm(ti.terms[i].Name), normalizeTerm(ti.terms[j].Name)
		if a != b {
			return a < b
		}
		return ti.terms[i].Name < ti.terms[j].Name
	})
	assignSlugs(ti.terms)
	return ti
}

// assignSlugs makes term slugs unique. Distinct terms can slugify alike
// ("C" and "C++"); the first in sort order keeps the plain slug and the
// others get a suffix hashed from their key, so each term has its own page.
func assignSlugs(terms []Term) {
	taken := make(map[string]bool, len(terms))
	var clashed []int
	for i := range terms {
		if taken[terms[i].Slug] {
			clashed = append(clashed, i)
			continue
		}
		taken[terms[i].Slug] = true
	}
	for _, i := range clashed {
		base := terms[i].Slug + "-" + termHash(terms[i].Name)
		slug := base
		for n := 2; taken[slug]; n++ {
			slug = fmt.Sprintf("%s-%d", base, n)
		}
		taken[slug] = true
		terms[i].Slug = slug
	}
}

func (ti termIndex) lookup(name string) []*Page {
	return append([]*Page{}, ti.posts[normalizeTerm(name)]...)
}

// Posts returns all posts, newest first.
func (idx *SiteIndex) Posts() []*Page { return slices.Clone(idx.posts) }

// Pages returns the static pages in navigation order.
func (idx *SiteIndex) Pages() []*Page { return slices.Clone(idx.pages) }

// ByCategory returns the posts in category, newest first. Unknown
// categories yield an empty slice.
func (idx *SiteIndex) ByCategory(category string) []*Page {
	return idx.categories.lookup(category)
}

// ByTag returns the posts tagged tag, newest first. Unknown tags yield an
// empty slice.
func (idx *SiteIndex) ByTag(tag string) []*Page {
	return idx.tags.lookup(tag)
}

// ByTerm dispatches to ByCategory or ByTag.
func (idx *SiteIndex) ByTerm(kind TermKind, name string) []*Page {
	if kind == Categories {
		return idx.ByCategory(name)
	}
	return idx.ByTag(name)
}

// Categories lists every category with its post count, sorted by name.
func (idx *SiteIndex) Categories() []Term { return slices.Clone(idx.categories.terms) }

// Tags lists every tag with its post count, sorted by name.
func (idx *SiteIndex) Tags() []Term { return slices.Clone(idx.tags.terms) }

// Terms dispatches to Categories or Tags.
func (idx *SiteIndex) Terms(kind TermKind) []Term {
	if kind == Categories {
		return idx.Categories()
	}
	return idx.Tags()
}

// Related returns up to limit posts sharing at least one tag with p, in
// index order. A limit of zero or less means no limit.
func (idx *SiteIndex) Related(p *Page, limit int) []*Page {
	var related []*Page
	for _, other := range idx.posts {
		if other == p || other.path == p.path {
			continue
		}
		for _, t := range p.tags {
			if other.HasTag(t) {
				related = append(related, other)
				break
			}
		}
		if limit > 0 && len(related) == limit {
			break
		}
	}
	return related
}

// Neighbors returns the posts immediately newer and older than p.
func (idx *SiteIndex) Neighbors(p *Page) (newer, older *Page) {
	i := slices.IndexFunc(idx.posts, func(q *Page) bool { return q.path == p.path })
	if i < 0 {
		return nil, nil
	}
	if i > 0 {
		newer = idx.posts[i-1]
	}
	if i+1 < len(idx.posts) {
		older = idx.posts[i+1]
	}
	return newer, older
}

// Len is the number of posts and pages in the index.
func (idx *SiteIndex) Len() int { return len(idx.posts) + len(idx.pages) }
