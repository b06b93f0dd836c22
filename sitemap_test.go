package pubsite

import (
	"bytes"
	"encoding/xml"
	"testing"
)

func TestWriteSitemap(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSitemap(&buf, testConfig(), BuildIndex(samplePages(t))); err != nil {
		t.Fatalf("WriteSitemap: %v", err)
	}
	var set sitemapURLSet
	if err := xml.Unmarshal(buf.Bytes(), &set); err != nil {
		t.Fatalf("sitemap is not valid XML: %v", err)
	}

	locs := make(map[string]string)
	for _, u := range set.URLs {
		locs[u.Loc] = u.LastMod
	}
	// home, 4 posts, 3 pages, 2 categories, 3 tags
	if len(set.URLs) != 13 {
		t.Errorf("got %d urls, want 13", len(set.URLs))
	}
	want := map[string]string{
		"https://example.com/":                 "",
		"https://example.com/posts/welcome/":   "2025-02-25",
		"https://example.com/about/":           "",
		"https://example.com/categories/tech/": "",
		"https://example.com/tags/rust/":       "",
	}
	for loc, lastmod := range want {
		got, ok := locs[loc]
		if !ok {
			t.Errorf("sitemap missing %s", loc)
			continue
		}
		if got != lastmod {
			t.Errorf("%s lastmod = %q, want %q", loc, got, lastmod)
		}
	}
}
