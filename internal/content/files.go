package content

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoFrontmatter is returned for content files without a frontmatter block.
var ErrNoFrontmatter = errors.New("no frontmatter found")

const (
	wordsPerMinute     = 200
	imageMinutes       = 12
	punctuationMinutes = 0.05
)

// LoadDir reads every .mdx and .md file in dir, newest first.
func LoadDir(dir string) ([]Post, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read content dir: %w", err)
	}

	var posts []Post
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".mdx" && ext != ".md" {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		meta, body, err := parseFrontmatter(string(raw))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", entry.Name(), err)
		}

		posts = append(posts, Post{
			Slug:        strings.TrimSuffix(entry.Name(), ext),
			Metadata:    meta,
			Content:     body,
			ReadingTime: readingTime(body),
		})
	}

	sortNewestFirst(posts)
	return posts, nil
}

// parseFrontmatter splits a leading "---" delimited YAML block from the body.
func parseFrontmatter(raw string) (Metadata, string, error) {
	var meta Metadata

	content := strings.TrimLeft(strings.ReplaceAll(raw, "\r\n", "\n"), "\ufeff \t\n")
	if !strings.HasPrefix(content, "---\n") {
		return meta, "", ErrNoFrontmatter
	}
	endIdx := strings.Index(content[4:], "\n---")
	if endIdx < 0 {
		return meta, "", ErrNoFrontmatter
	}
	block := content[4 : 4+endIdx]
	body := strings.TrimSpace(content[4+endIdx+4:])

	if strings.TrimSpace(block) == "" {
		return meta, "", ErrNoFrontmatter
	}
	if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
		return meta, "", fmt.Errorf("frontmatter: %w", err)
	}
	return meta, body, nil
}

// readingTime estimates minutes for a static post: words, images and
// punctuation all add up.
func readingTime(content string) int {
	words := len(strings.Fields(content))
	images := strings.Count(content, "<img ")
	punctuation := strings.Count(content, ".") + strings.Count(content, ",") +
		strings.Count(content, ":") + strings.Count(content, ";")

	minutes := float64(words)/wordsPerMinute +
		float64(images*imageMinutes) +
		float64(punctuation)*punctuationMinutes
	return int(math.Ceil(minutes))
}
