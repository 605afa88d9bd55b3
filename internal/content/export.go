package content

import (
	"fmt"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"gopkg.in/yaml.v3"
)

type exportFrontmatter struct {
	Title       string   `yaml:"title"`
	Slug        string   `yaml:"slug"`
	PublishedAt string   `yaml:"publishedAt"`
	Summary     string   `yaml:"summary,omitempty"`
	Keywords    []string `yaml:"keywords,omitempty"`
	Image       string   `yaml:"image,omitempty"`
	Tags        string   `yaml:"tags,omitempty"`
	Status      string   `yaml:"status,omitempty"`
}

// Export renders post as a Markdown document with YAML frontmatter. Blog
// content is HTML and gets converted; static content is kept as written.
func Export(post Post) (string, error) {
	fm := exportFrontmatter{
		Title:       post.Metadata.Title,
		Slug:        post.Slug,
		PublishedAt: post.Metadata.PublishedAt,
		Summary:     post.Metadata.Summary,
		Keywords:    post.Metadata.Keywords,
		Image:       post.Metadata.Image,
		Tags:        post.Tags,
	}

	body := post.Content
	if post.Blog != nil {
		fm.Status = post.Blog.BlogStatus
		converted, err := md.NewConverter("", true, nil).ConvertString(post.Content)
		if err != nil {
			return "", fmt.Errorf("convert %s: %w", post.Slug, err)
		}
		body = converted
	}

	header, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(header)
	sb.WriteString("---\n\n")
	sb.WriteString(strings.TrimSpace(body))
	sb.WriteString("\n")
	return sb.String(), nil
}

// FileName returns a file name for the exported post.
func FileName(post Post) string {
	name := post.Slug
	if u, err := url.PathUnescape(name); err == nil {
		name = u
	}
	name = strings.NewReplacer("/", "-", "\\", "-").Replace(name)
	if name == "" {
		name = "post"
	}
	return name + ".md"
}
