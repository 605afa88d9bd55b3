package models

// Allowed values of the enumerated BlogPost fields.
const (
	StatusPublish = "publish"
	StatusDraft   = "draft"

	CommentOpen  = "open"
	CommentClose = "close"

	NotifyAll  = "all"
	NotifyNone = "none"

	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// BlogPost is the record accepted by the target blog store.
// ID is only populated on records read back from the store.
type BlogPost struct {
	ID                 RecordKey `json:"id,omitempty"`
	BlogName           string    `json:"blog_name"`
	BlogTitle          string    `json:"blog_title"`
	BlogExcerpt        string    `json:"blog_excerpt"`
	BlogDate           string    `json:"blog_date"`
	BlogDateGMT        string    `json:"blog_date_gmt"`
	BlogContent        string    `json:"blog_content"`
	BlogStatus         string    `json:"blog_status"`
	CommentStatus      string    `json:"comment_status"`
	NotificationStatus string    `json:"notification_status"`
	BlogModified       string    `json:"blog_modified"`
	BlogModifiedGMT    string    `json:"blog_modified_gmt"`
	Tags               string    `json:"tags"`
	BlogVisibility     string    `json:"blog_visibility"`
	LikeCount          int       `json:"like_count"`
}

// BlogPostWithSource is a transformed record that still carries where it
// came from. The provenance fields never reach the blog store.
type BlogPostWithSource struct {
	BlogPost
	Source       Origin `json:"_source"`
	OriginalID   string `json:"_original_id"`
	OriginalData WpPost `json:"_original_data"`
}

// Strip returns the insertable record without provenance.
func (b BlogPostWithSource) Strip() BlogPost {
	return b.BlogPost
}
