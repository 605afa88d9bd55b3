package models

// WpPost is a legacy post row as served by the wp_posts endpoint of either
// upstream. Every column arrives as a string, IDs included.
type WpPost struct {
	ID                  string `json:"ID"`
	PostAuthor          string `json:"post_author"`
	PostDate            string `json:"post_date"`
	PostDateGMT         string `json:"post_date_gmt"`
	PostContent         string `json:"post_content"`
	PostTitle           string `json:"post_title"`
	PostExcerpt         string `json:"post_excerpt"`
	PostStatus          string `json:"post_status"`
	CommentStatus       string `json:"comment_status"`
	PingStatus          string `json:"ping_status"`
	PostPassword        string `json:"post_password"`
	PostName            string `json:"post_name"`
	ToPing              string `json:"to_ping"`
	Pinged              string `json:"pinged"`
	PostModified        string `json:"post_modified"`
	PostModifiedGMT     string `json:"post_modified_gmt"`
	PostContentFiltered string `json:"post_content_filtered"`
	PostParent          string `json:"post_parent"`
	GUID                string `json:"guid"`
	MenuOrder           string `json:"menu_order"`
	PostType            string `json:"post_type"`
	PostMimeType        string `json:"post_mime_type"`
	CommentCount        string `json:"comment_count"`
	TermID              string `json:"term_id"`
	TermName            string `json:"term_name"`
	TermSlug            string `json:"term_slug"`
	TermGroup           string `json:"term_group"`
	TermTaxonomyID      string `json:"term_taxonomy_id"`
	Taxonomy            string `json:"taxonomy"`
	TaxonomyDescription string `json:"taxonomy_description"`
	TaxonomyParent      string `json:"taxonomy_parent"`
	TaxonomyCount       string `json:"taxonomy_count"`
	ObjectID            string `json:"object_id"`
	TermOrder           string `json:"term_order"`
	ContentLength       string `json:"content_length"`
	EntryType           string `json:"entry_type"`
}
