package content

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSitemap(t *testing.T) {
	now := time.Date(2024, 5, 6, 23, 0, 0, 0, time.UTC)
	posts := []Post{
		{Slug: "a", Metadata: Metadata{PublishedAt: "2020-01-02T10:00:00Z"}},
		{Slug: "b", Metadata: Metadata{PublishedAt: "2021-01-01"}},
	}

	entries := Sitemap("https://poesyliang.com/", posts, now)

	assert.Equal(t, []SitemapEntry{
		{URL: "https://poesyliang.com", LastModified: "2024-05-06"},
		{URL: "https://poesyliang.com/blog", LastModified: "2024-05-06"},
		{URL: "https://poesyliang.com/blog/a", LastModified: "2020-01-02T10:00:00Z"},
		{URL: "https://poesyliang.com/blog/b", LastModified: "2021-01-01"},
	}, entries)
}

func TestWriteSitemapXML(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSitemapXML(&buf, Sitemap("https://example.com", []Post{{Slug: "a"}}, time.Now()))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, out, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Contains(t, out, "<loc>https://example.com/blog/a</loc>")
}
