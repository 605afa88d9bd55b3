package models

// DebugInfo captures the normalized fields worth eyeballing when a
// migrated record looks wrong.
type DebugInfo struct {
	BlogName           string `json:"blog_name"`
	BlogStatus         string `json:"blog_status"`
	CommentStatus      string `json:"comment_status"`
	NotificationStatus string `json:"notification_status"`
	HasContent         bool   `json:"has_content"`
	ContentLength      int    `json:"content_length"`
}

// NewDebugInfo derives DebugInfo from an insertable record.
func NewDebugInfo(b BlogPost) DebugInfo {
	return DebugInfo{
		BlogName:           b.BlogName,
		BlogStatus:         b.BlogStatus,
		CommentStatus:      b.CommentStatus,
		NotificationStatus: b.NotificationStatus,
		HasContent:         b.BlogContent != "",
		ContentLength:      len(b.BlogContent),
	}
}

// MigratedEntry records one successfully inserted blog.
type MigratedEntry struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Date            string    `json:"date"`
	Source          Origin    `json:"source"`
	OriginalID      string    `json:"original_id"`
	OriginalData    WpPost    `json:"original_data"`
	TransformedData BlogPost  `json:"transformed_data"`
	DebugInfo       DebugInfo `json:"debug_info"`
}

// FailedEntry records one blog the store rejected or that errored in flight.
type FailedEntry struct {
	Title           string    `json:"title"`
	Date            string    `json:"date"`
	Source          Origin    `json:"source"`
	OriginalID      string    `json:"original_id"`
	OriginalData    WpPost    `json:"original_data"`
	TransformedData BlogPost  `json:"transformed_data"`
	Error           string    `json:"error"`
	ErrorDetails    string    `json:"error_details"`
	DebugInfo       DebugInfo `json:"debug_info"`
}

// MigrationSummary is the tally of one migration run. The same value is
// returned by the run and by later summary reads.
type MigrationSummary struct {
	RunID          string          `json:"run_id"`
	Timestamp      string          `json:"timestamp"`
	TotalProcessed int             `json:"total_processed"`
	Successful     int             `json:"successful"`
	Failed         int             `json:"failed"`
	SuccessData    []MigratedEntry `json:"success_data"`
	FailedData     []FailedEntry   `json:"failed_data"`
}
