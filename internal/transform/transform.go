// Package transform maps legacy WordPress rows onto the blog schema and
// merges the two legacy sources into one date-ordered list.
package transform

import (
	"strings"

	"github.com/poesyliang/poesy-blog/internal/models"
)

// WpPost converts one legacy row into a blog record tagged with its origin.
// It never fails: absent fields become empty strings and unknown status
// values fall back to fixed defaults.
func WpPost(p models.WpPost, origin models.Origin) models.BlogPostWithSource {
	return models.BlogPostWithSource{
		BlogPost: models.BlogPost{
			BlogName:           p.PostName,
			BlogTitle:          p.PostTitle,
			BlogExcerpt:        p.PostExcerpt,
			BlogDate:           p.PostDate,
			BlogDateGMT:        p.PostDateGMT,
			BlogContent:        p.PostContent,
			BlogStatus:         NormalizeStatus(p.PostStatus),
			CommentStatus:      NormalizeCommentStatus(p.CommentStatus),
			NotificationStatus: NormalizeNotificationStatus(p.PingStatus),
			BlogModified:       p.PostModified,
			BlogModifiedGMT:    p.PostModifiedGMT,
			Tags:               p.TermSlug,
			BlogVisibility:     models.VisibilityPrivate,
			LikeCount:          0,
		},
		Source:       origin,
		OriginalID:   p.ID,
		OriginalData: p,
	}
}

// NormalizeStatus maps post_status onto publish|draft. Unknown values publish.
func NormalizeStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case models.StatusDraft:
		return models.StatusDraft
	default:
		// "publish", "published" and anything unrecognised
		return models.StatusPublish
	}
}

// NormalizeCommentStatus maps comment_status onto open|close.
func NormalizeCommentStatus(s string) string {
	if strings.ToLower(strings.TrimSpace(s)) == models.CommentOpen {
		return models.CommentOpen
	}
	return models.CommentClose
}

// NormalizeNotificationStatus maps ping_status onto all|none.
func NormalizeNotificationStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "open", models.NotifyAll:
		return models.NotifyAll
	}
	return models.NotifyNone
}
