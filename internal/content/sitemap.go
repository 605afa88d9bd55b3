package content

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"
)

// SitemapEntry is one URL of the site map.
type SitemapEntry struct {
	URL          string `json:"url" xml:"loc"`
	LastModified string `json:"lastModified" xml:"lastmod"`
}

// Sitemap lists the home page, the blog index and one entry per post.
func Sitemap(siteURL string, posts []Post, now time.Time) []SitemapEntry {
	siteURL = strings.TrimRight(siteURL, "/")
	today := now.UTC().Format(time.DateOnly)

	entries := make([]SitemapEntry, 0, len(posts)+2)
	for _, route := range []string{"", "/blog"} {
		entries = append(entries, SitemapEntry{URL: siteURL + route, LastModified: today})
	}
	for _, p := range posts {
		entries = append(entries, SitemapEntry{
			URL:          siteURL + "/blog/" + p.Slug,
			LastModified: p.Metadata.PublishedAt,
		})
	}
	return entries
}

type urlSet struct {
	XMLName xml.Name       `xml:"urlset"`
	XMLNS   string         `xml:"xmlns,attr"`
	URLs    []SitemapEntry `xml:"url"`
}

// WriteSitemapXML writes entries in the sitemaps.org XML format.
func WriteSitemapXML(w io.Writer, entries []SitemapEntry) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9", URLs: entries}); err != nil {
		return fmt.Errorf("encode sitemap: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
