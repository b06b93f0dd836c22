package pubsite

import (
	"math/rand"
	"testing"
)

func paths(pages []*Page) []string {
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.Path()
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func samplePages(t *testing.T) []*Page {
	t.Helper()
	return []*Page{
		newPost(t, "_posts/2025-02-20-older.md", "Older", "2025-02-20 09:00:00 +0000", []string{"Blogging"}, []string{"go"}),
		newPost(t, "_posts/2025-02-25-welcome.md", "Welcome", "2025-02-25 10:00:00 +0000", []string{"Blogging"}, []string{"writing", "Go"}),
		newPost(t, "_posts/2025-02-22-b.md", "B", "2025-02-22 12:00:00 +0000", []string{"Tech"}, []string{"rust"}),
		newPost(t, "_posts/2025-02-22-a.md", "A", "2025-02-22 12:00:00 +0000", nil, []string{"go"}),
		newStatic(t, "_tabs/archives.md", "Archives", map[string]any{"order": 3}),
		newStatic(t, "_tabs/about.md", "About", map[string]any{"order": 1, "icon": "fas fa-info"}),
		newStatic(t, "contact.md", "Contact", nil),
	}
}

func TestBuildIndexPostOrder(t *testing.T) {
	idx := BuildIndex(samplePages(t))
	want := []string{
		"_posts/2025-02-25-welcome.md",
		"_posts/2025-02-22-a.md",
		"_posts/2025-02-22-b.md",
		"_posts/2025-02-20-older.md",
	}
	if got := paths(idx.Posts()); !equalStrings(got, want) {
		t.Errorf("Posts() = %v, want %v", got, want)
	}
}

func TestBuildIndexComparesInstants(t *testing.T) {
	// 23:30 -0500 on the 21st is later than 02:00 +0000 on the 22nd.
	west := newPost(t, "_posts/west.md", "West", "2025-02-21 23:30:00 -0500", nil, nil)
	east := newPost(t, "_posts/east.md", "East", "2025-02-22 02:00:00 +0000", nil, nil)
	idx := BuildIndex([]*Page{east, west})
	if got := paths(idx.Posts()); !equalStrings(got, []string{"_posts/west.md", "_posts/east.md"}) {
		t.Errorf("Posts() = %v", got)
	}
}

func TestBuildIndexPageOrder(t *testing.T) {
	idx := BuildIndex(samplePages(t))
	want := []string{"_tabs/about.md", "_tabs/archives.md", "contact.md"}
	if got := paths(idx.Pages()); !equalStrings(got, want) {
		t.Errorf("Pages() = %v, want %v", got, want)
	}
}

func TestBuildIndexIsDeterministic(t *testing.T) {
	pages := samplePages(t)
	first := BuildIndex(pages)
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := append([]*Page(nil), pages...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		idx := BuildIndex(shuffled)
		if !equalStrings(paths(idx.Posts()), paths(first.Posts())) {
			t.Fatalf("Posts() order depends on input order")
		}
		if !equalStrings(paths(idx.Pages()), paths(first.Pages())) {
			t.Fatalf("Pages() order depends on input order")
		}
		for _, kind := range []TermKind{Categories, Tags} {
			a, b := idx.Terms(kind), first.Terms(kind)
			if len(a) != len(b) {
				t.Fatalf("Terms(%s) length differs", kind)
			}
			for j := range a {
				if a[j] != b[j] {
					t.Fatalf("Terms(%s)[%d] = %+v, want %+v", kind, j, a[j], b[j])
				}
			}
		}
	}
}

func TestSiteIndexByTerm(t *testing.T) {
	idx := BuildIndex(samplePages(t))

	got := paths(idx.ByTag("GO"))
	want := []string{"_posts/2025-02-25-welcome.md", "_posts/2025-02-22-a.md", "_posts/2025-02-20-older.md"}
	if !equalStrings(got, want) {
		t.Errorf("ByTag(GO) = %v, want %v", got, want)
	}

	got = paths(idx.ByCategory("blogging"))
	want = []string{"_posts/2025-02-25-welcome.md", "_posts/2025-02-20-older.md"}
	if !equalStrings(got, want) {
		t.Errorf("ByCategory(blogging) = %v, want %v", got, want)
	}
}

func TestSiteIndexUnknownTerm(t *testing.T) {
	idx := BuildIndex(samplePages(t))
	for _, got := range [][]*Page{idx.ByTag("nope"), idx.ByCategory("nope"), BuildIndex(nil).ByTag("go")} {
		if got == nil {
			t.Error("unknown term should yield an empty, non-nil slice")
		}
		if len(got) != 0 {
			t.Errorf("unknown term yielded %d posts", len(got))
		}
	}
}

func TestSiteIndexTerms(t *testing.T) {
	idx := BuildIndex(samplePages(t))

	tags := idx.Tags()
	want := []Term{
		{Name: "Go", Slug: "go", Count: 3},
		{Name: "rust", Slug: "rust", Count: 1},
		{Name: "writing", Slug: "writing", Count: 1},
	}
	if len(tags) != len(want) {
		t.Fatalf("Tags() = %+v, want %+v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("Tags()[%d] = %+v, want %+v", i, tags[i], want[i])
		}
	}

	cats := idx.Categories()
	if len(cats) != 2 || cats[0].Name != "Blogging" || cats[0].Count != 2 || cats[1].Name != "Tech" {
		t.Errorf("Categories() = %+v", cats)
	}
}

func TestSiteIndexPostsAreCopies(t *testing.T) {
	idx := BuildIndex(samplePages(t))
	posts := idx.Posts()
	posts[0] = nil
	if idx.Posts()[0] == nil {
		t.Error("Posts() exposed internal slice")
	}
	tags := idx.Tags()
	tags[0].Name = "changed"
	if idx.Tags()[0].Name == "changed" {
		t.Error("Tags() exposed internal slice")
	}
}

func TestSiteIndexRelated(t *testing.T) {
	pages := samplePages(t)
	idx := BuildIndex(pages)
	welcome := idx.Posts()[0]

	got := paths(idx.Related(welcome, 0))
	want := []string{"_posts/2025-02-22-a.md", "_posts/2025-02-20-older.md"}
	if !equalStrings(got, want) {
		t.Errorf("Related() = %v, want %v", got, want)
	}
	if got := idx.Related(welcome, 1); len(got) != 1 {
		t.Errorf("Related(limit 1) returned %d posts", len(got))
	}
}

func TestSiteIndexNeighbors(t *testing.T) {
	idx := BuildIndex(samplePages(t))
	posts := idx.Posts()

	newer, older := idx.Neighbors(posts[0])
	if newer != nil || older != posts[1] {
		t.Errorf("Neighbors(newest) = %v, %v", newer, older)
	}
	newer, older = idx.Neighbors(posts[len(posts)-1])
	if newer != posts[len(posts)-2] || older != nil {
		t.Errorf("Neighbors(oldest) = %v, %v", newer, older)
	}
	stray := newPost(t, "_posts/stray.md", "Stray", "2025-01-01 00:00:00 +0000", nil, nil)
	if newer, older := idx.Neighbors(stray); newer != nil || older != nil {
		t.Error("Neighbors of a page outside the index should be nil")
	}
}

func TestSiteIndexLen(t *testing.T) {
	if got := BuildIndex(samplePages(t)).Len(); got != 7 {
		t.Errorf("Len() = %d, want 7", got)
	}
}

func TestSiteIndexDistinctTermSlugs(t *testing.T) {
	pages := []*Page{
		newPost(t, "_posts/plain.md", "Plain C", "2025-02-20 09:00:00 +0000", nil, []string{"C"}),
		newPost(t, "_posts/cpp.md", "Cpp", "2025-02-21 09:00:00 +0000", nil, []string{"C++"}),
		newPost(t, "_posts/dashes.md", "Dashes", "2025-02-22 09:00:00 +0000", nil, []string{"c--"}),
	}
	tags := BuildIndex(pages).Tags()
	want := []string{"c", "c-" + termHash("C++"), "c-" + termHash("c--")}
	if len(tags) != len(want) {
		t.Fatalf("Tags() = %+v", tags)
	}
	for i, slug := range want {
		if tags[i].Slug != slug {
			t.Errorf("Tags()[%d] (%s).Slug = %q, want %q", i, tags[i].Name, tags[i].Slug, slug)
		}
	}

	// Shuffled input assigns the same slugs.
	again := BuildIndex([]*Page{pages[2], pages[0], pages[1]}).Tags()
	for i := range tags {
		if again[i] != tags[i] {
			t.Errorf("Tags()[%d] = %+v, want %+v", i, again[i], tags[i])
		}
	}
}

func TestAssignSlugsAvoidsTakenSuffix(t *testing.T) {
	suffixed := "c-" + termHash("C++")
	terms := []Term{{Name: "C", Slug: "c"}, {Name: "C++", Slug: "c"}, {Name: suffixed, Slug: suffixed}}
	assignSlugs(terms)
	seen := make(map[string]bool)
	for _, term := range terms {
		if seen[term.Slug] {
			t.Errorf("slug %q assigned twice: %+v", term.Slug, terms)
		}
		seen[term.Slug] = true
	}
	if terms[1].Slug != suffixed+"-2" {
		t.Errorf("C++ slug = %q, want %q", terms[1].Slug, suffixed+"-2")
	}
}
