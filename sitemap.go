package pubsite

import (
	"encoding/xml"
	"io"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// WriteSitemap writes sitemap.xml listing the home page, every post, every
// static page and every term page.
func WriteSitemap(w io.Writer, cfg SiteConfig, index *SiteIndex) error {
	cfg.setDefaults()
	base := cfg.URL
	urls := []sitemapURL{
		{Loc: BuildURL(base, "/")},
	}
	for _, p := range index.Posts() {
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, p.Permalink()),
			LastMod: p.Date().Format("2006-01-02"),
		})
	}
	for _, p := range index.Pages() {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, p.Permalink())})
	}
	for _, kind := range []TermKind{Categories, Tags} {
		for _, t := range index.Terms(kind) {
			urls = append(urls, sitemapURL{Loc: BuildURL(base, termPath(kind, t))})
		}
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(sitemap)
}
