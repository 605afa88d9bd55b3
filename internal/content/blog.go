package content

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/poesyliang/poesy-blog/internal/models"
)

const (
	summaryRunes  = 200
	zeroMySQLDate = "0000-00-00 00:00:00"
	isoMillis     = "2006-01-02T15:04:05.000Z07:00"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// FromBlog converts a stored blog into a catalog post.
func FromBlog(b models.BlogPost) Post {
	return fromBlog(b, time.Now())
}

func fromBlog(b models.BlogPost, now time.Time) Post {
	slug := b.BlogName
	if slug == "" {
		slug = "blog-" + b.ID.String()
	}

	blog := b
	return Post{
		Slug: slug,
		Metadata: Metadata{
			Title:       b.BlogTitle,
			PublishedAt: publishedAt(b, now),
			Summary:     summarize(b),
		},
		Content:     b.BlogContent,
		ReadingTime: int(math.Ceil(float64(len(strings.Fields(b.BlogContent))) / wordsPerMinute)),
		LikeCount:   b.LikeCount,
		Tags:        b.Tags,
		Blog:        &blog,
	}
}

func summarize(b models.BlogPost) string {
	if b.BlogExcerpt != "" {
		return b.BlogExcerpt
	}
	head := b.BlogContent
	if r := []rune(head); len(r) > summaryRunes {
		head = string(r[:summaryRunes])
	}
	return tagPattern.ReplaceAllString(head, "") + "..."
}

// publishedAt returns the first usable date of the blog, normalised to
// RFC 3339. MySQL style "YYYY-MM-DD HH:MM:SS" values are taken as UTC.
func publishedAt(b models.BlogPost, now time.Time) string {
	for _, candidate := range []string{b.BlogDate, b.BlogDateGMT, b.BlogModified, b.BlogModifiedGMT} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" || candidate == zeroMySQLDate {
			continue
		}
		if strings.Contains(candidate, " ") && !strings.Contains(candidate, "T") {
			candidate = strings.Replace(candidate, " ", "T", 1)
			if !strings.Contains(candidate, "+") && !strings.Contains(candidate, "Z") {
				candidate += "Z"
			}
		}
		if _, ok := parseDate(candidate); ok {
			return candidate
		}
	}
	return now.UTC().Format(isoMillis)
}

// visible reports whether a stored blog belongs in the public catalog.
func visible(b models.BlogPost) bool {
	if b.BlogStatus != models.StatusPublish && b.BlogStatus != models.StatusDraft {
		return false
	}
	return strings.TrimSpace(b.BlogContent) != "" &&
		strings.TrimSpace(b.BlogTitle) != "" &&
		b.BlogTitle != "Auto Draft"
}
