// Package content builds the public post catalog from static content files
// and blogs served by the API.
package content

import (
	"errors"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/poesyliang/poesy-blog/internal/models"
)

// ErrNotFound is returned when no post matches a slug.
var ErrNotFound = errors.New("post not found")

// Metadata is the frontmatter of a post.
type Metadata struct {
	Title       string   `yaml:"title" json:"title"`
	PublishedAt string   `yaml:"publishedAt" json:"publishedAt"`
	Summary     string   `yaml:"summary" json:"summary"`
	Keywords    Keywords `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	Image       string   `yaml:"image,omitempty" json:"image,omitempty"`
}

// Keywords accepts either a YAML list or a comma separated string.
type Keywords []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (k *Keywords) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*k = list
		return nil
	}

	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	var out Keywords
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*k = out
	return nil
}

// Post is one entry of the catalog. Blog is set for posts that come from
// the blog store.
type Post struct {
	Slug         string           `json:"slug"`
	Metadata     Metadata         `json:"metadata"`
	Content      string           `json:"content"`
	ReadingTime  int              `json:"readingTime"`
	LikeCount    int              `json:"like_count"`
	CommentCount int              `json:"comment_count"`
	Tags         string           `json:"tags"`
	Blog         *models.BlogPost `json:"apiData,omitempty"`
}

// Published returns the parsed publication time, or the zero time when
// PublishedAt cannot be parsed.
func (p Post) Published() time.Time {
	t, _ := parseDate(p.Metadata.PublishedAt)
	return t
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// sortNewestFirst orders posts by publication time, newest first. Posts
// without a usable date go last.
func sortNewestFirst(posts []Post) {
	slices.SortStableFunc(posts, func(a, b Post) int {
		return b.Published().Compare(a.Published())
	})
}
