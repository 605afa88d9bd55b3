package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/poesyliang/poesy-blog/internal/models"
)

func splitExport(t *testing.T, doc string) (map[string]any, string) {
	t.Helper()
	require.True(t, strings.HasPrefix(doc, "---\n"))
	end := strings.Index(doc[4:], "\n---\n")
	require.GreaterOrEqual(t, end, 0)

	fm := map[string]any{}
	require.NoError(t, yaml.Unmarshal([]byte(doc[4:4+end]), &fm))
	return fm, strings.TrimSpace(doc[4+end+5:])
}

func TestExportBlogConvertsHTML(t *testing.T) {
	b := models.BlogPost{
		ID:          "9",
		BlogName:    "hello",
		BlogTitle:   "Hello: a poem",
		BlogContent: "<p>Hello <strong>world</strong></p>",
		BlogStatus:  models.StatusPublish,
		BlogDate:    "2020-01-02 10:00:00",
		Tags:        "poetry",
	}

	doc, err := Export(FromBlog(b))
	require.NoError(t, err)

	fm, body := splitExport(t, doc)
	assert.Equal(t, "Hello: a poem", fm["title"])
	assert.Equal(t, "hello", fm["slug"])
	assert.Equal(t, "publish", fm["status"])
	assert.Equal(t, "poetry", fm["tags"])
	assert.Equal(t, "Hello **world**", body)
}

func TestExportStaticKeepsMarkdown(t *testing.T) {
	p := Post{
		Slug:     "notes",
		Metadata: Metadata{Title: "Notes", PublishedAt: "2021-01-01", Keywords: Keywords{"a", "b"}},
		Content:  "# Heading\n\n*kept*",
	}

	doc, err := Export(p)
	require.NoError(t, err)

	fm, body := splitExport(t, doc)
	assert.Equal(t, []any{"a", "b"}, fm["keywords"])
	assert.NotContains(t, fm, "status")
	assert.Equal(t, "# Heading\n\n*kept*", body)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "hello.md", FileName(Post{Slug: "hello"}))
	assert.Equal(t, "詩.md", FileName(Post{Slug: "%e8%a9%a9"}))
	assert.Equal(t, "a-b.md", FileName(Post{Slug: "a/b"}))
	assert.Equal(t, "post.md", FileName(Post{}))
}
