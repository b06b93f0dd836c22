package pubsite

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"
)

func TestWriteFeed(t *testing.T) {
	cfg := testConfig()
	cfg.FeedItems = 3
	var buf bytes.Buffer
	if err := WriteFeed(&buf, cfg, BuildIndex(samplePages(t))); err != nil {
		t.Fatalf("WriteFeed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), xml.Header) {
		t.Error("feed should start with the XML header")
	}

	var feed rssXML
	if err := xml.Unmarshal(buf.Bytes(), &feed); err != nil {
		t.Fatalf("feed is not valid XML: %v", err)
	}
	if feed.Version != "2.0" || feed.Channel.Title != "Test Site" {
		t.Errorf("channel = %+v", feed.Channel)
	}
	if len(feed.Channel.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(feed.Channel.Items))
	}
	first := feed.Channel.Items[0]
	if first.Title != "Welcome" || first.Link != "https://example.com/posts/welcome/" || first.GUID != first.Link {
		t.Errorf("first item = %+v", first)
	}
	if first.PubDate != "Tue, 25 Feb 2025 10:00:00 +0000" {
		t.Errorf("PubDate = %q", first.PubDate)
	}
	wantCats := []rssCategory{
		{Domain: "https://example.com/categories/", Name: "Blogging"},
		{Domain: "https://example.com/tags/", Name: "Go"},
		{Domain: "https://example.com/tags/", Name: "writing"},
	}
	if len(first.Categories) != len(wantCats) {
		t.Fatalf("Categories = %+v, want %+v", first.Categories, wantCats)
	}
	for i, c := range wantCats {
		if first.Categories[i] != c {
			t.Errorf("Categories[%d] = %+v, want %+v", i, first.Categories[i], c)
		}
	}
	if feed.Channel.LastBuildDate != first.PubDate {
		t.Errorf("LastBuildDate = %q, want the newest post's date", feed.Channel.LastBuildDate)
	}
}

func TestWriteFeedEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFeed(&buf, testConfig(), BuildIndex(nil)); err != nil {
		t.Fatalf("WriteFeed: %v", err)
	}
	var feed rssXML
	if err := xml.Unmarshal(buf.Bytes(), &feed); err != nil {
		t.Fatalf("feed is not valid XML: %v", err)
	}
	if len(feed.Channel.Items) != 0 || feed.Channel.LastBuildDate != "" {
		t.Errorf("empty feed = %+v", feed.Channel)
	}
}
