package pubsite

import (
	"encoding/xml"
	"io"
	"time"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string        `xml:"title"`
	Link        string        `xml:"link"`
	Description string        `xml:"description,omitempty"`
	Categories  []rssCategory `xml:"category"`
	PubDate     string        `xml:"pubDate"`
	GUID        string        `xml:"guid"`
}

// rssCategory carries both categories and tags; the domain tells them apart.
type rssCategory struct {
	Domain string `xml:"domain,attr"`
	Name   string `xml:",chardata"`
}

// WriteFeed writes an RSS 2.0 feed of the newest posts to w. The channel's
// lastBuildDate is the date of the newest post, so an unchanged site
// produces an unchanged feed.
func WriteFeed(w io.Writer, cfg SiteConfig, index *SiteIndex) error {
	cfg.setDefaults()
	base := cfg.URL
	posts := index.Posts()
	if cfg.FeedItems > 0 && len(posts) > cfg.FeedItems {
		posts = posts[:cfg.FeedItems]
	}
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		postURL := BuildURL(base, p.Permalink())
		items = append(items, rssItem{
			Title:       p.DisplayTitle(),
			Link:        postURL,
			Description: p.Summary(),
			Categories:  feedCategories(base, p),
			PubDate:     p.Date().Format(time.RFC1123Z),
			GUID:        postURL,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       cfg.Name,
			Link:        BuildURL(base),
			Description: cfg.Description,
			Items:       items,
		},
	}
	if len(posts) > 0 {
		feed.Channel.LastBuildDate = posts[0].Date().Format(time.RFC1123Z)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(feed)
}

func feedCategories(base string, p *Page) []rssCategory {
	var out []rssCategory
	for _, kind := range []TermKind{Categories, Tags} {
		domain := BuildURL(base, "/"+string(kind)+"/")
		names := p.Categories()
		if kind == Tags {
			names = p.Tags()
		}
		for _, name := range names {
			out = append(out, rssCategory{Domain: domain, Name: name})
		}
	}
	return out
}
