package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/poesyliang/poesy-blog/internal/client"
	"github.com/poesyliang/poesy-blog/internal/models"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 500
)

// page applies the default limit and returns an error result for
// out-of-range values.
func page(limit, offset int) (int, int, *mcp.CallToolResult) {
	if limit == 0 {
		limit = defaultPageLimit
	}
	if limit < 0 || limit > maxPageLimit {
		return 0, 0, ErrorResult(fmt.Sprintf("Limit must be 1-%d", maxPageLimit), "Reduce limit value")
	}
	if offset < 0 {
		return 0, 0, ErrorResult("Offset cannot be negative", "")
	}
	return limit, offset, nil
}

// ListWpPostsInput defines the input schema for the list_wp_posts tool.
type ListWpPostsInput struct {
	Origin string `json:"origin" jsonschema:"Legacy site: poesyliang.com or poesyliang.net"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Page size 1-500, default 20"`
	Offset int    `json:"offset,omitempty" jsonschema:"Number of records to skip"`
}

// WpPostSummary is the compact view of a legacy post.
type WpPostSummary struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Name   string `json:"name,omitempty"`
	Status string `json:"status,omitempty"`
	Date   string `json:"date,omitempty"`
}

// NewListWpPostsHandler creates the list_wp_posts tool handler.
func NewListWpPostsHandler(deps *Dependencies) mcp.ToolHandlerFor[ListWpPostsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListWpPostsInput) (*mcp.CallToolResult, any, error) {
		origin, err := models.ParseOrigin(strings.TrimSpace(input.Origin))
		if err != nil {
			return ErrorResult(err.Error(), "Use poesyliang.com or poesyliang.net"), nil, nil
		}
		limit, offset, res := page(input.Limit, input.Offset)
		if res != nil {
			return res, nil, nil
		}

		posts, err := deps.API.ListWpPosts(ctx, origin, limit, offset)
		if err != nil {
			deps.Logger.Error("list wp_posts failed", "origin", origin, "error", err)
			return ErrorResult(apiMessage(err, "Failed to fetch wp_posts"), hintAPIDown), nil, nil
		}

		out := struct {
			Origin models.Origin   `json:"origin"`
			Count  int             `json:"count"`
			Posts  []WpPostSummary `json:"posts"`
		}{Origin: origin, Count: len(posts), Posts: make([]WpPostSummary, 0, len(posts))}
		for _, p := range posts {
			out.Posts = append(out.Posts, WpPostSummary{
				ID:     p.ID,
				Title:  p.PostTitle,
				Name:   p.PostName,
				Status: p.PostStatus,
				Date:   p.PostDate,
			})
		}
		return JSONResult(out), nil, nil
	}
}

// ListBlogsInput defines the input schema for the list_blogs tool.
type ListBlogsInput struct {
	Limit  int `json:"limit,omitempty" jsonschema:"Page size 1-500, default 20"`
	Offset int `json:"offset,omitempty" jsonschema:"Number of records to skip"`
}

// BlogSummary is the compact view of a blog.
type BlogSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Title  string `json:"title"`
	Status string `json:"status"`
	Date   string `json:"date,omitempty"`
}

// NewListBlogsHandler creates the list_blogs tool handler.
func NewListBlogsHandler(deps *Dependencies) mcp.ToolHandlerFor[ListBlogsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListBlogsInput) (*mcp.CallToolResult, any, error) {
		limit, offset, res := page(input.Limit, input.Offset)
		if res != nil {
			return res, nil, nil
		}

		blogs, err := deps.API.ListBlogs(ctx, limit, offset)
		if err != nil {
			deps.Logger.Error("list blogs failed", "error", err)
			return ErrorResult(apiMessage(err, "Failed to list blogs"), hintAPIDown), nil, nil
		}

		out := struct {
			Count int           `json:"count"`
			Blogs []BlogSummary `json:"blogs"`
		}{Count: len(blogs), Blogs: make([]BlogSummary, 0, len(blogs))}
		for _, b := range blogs {
			out.Blogs = append(out.Blogs, BlogSummary{
				ID:     b.ID.String(),
				Name:   b.BlogName,
				Title:  b.BlogTitle,
				Status: b.BlogStatus,
				Date:   b.BlogDate,
			})
		}
		return JSONResult(out), nil, nil
	}
}

// GetBlogInput defines the input schema for the get_blog tool.
type GetBlogInput struct {
	ID string `json:"id" jsonschema:"Blog ID as returned by list_blogs"`
}

// NewGetBlogHandler creates the get_blog tool handler.
func NewGetBlogHandler(deps *Dependencies) mcp.ToolHandlerFor[GetBlogInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetBlogInput) (*mcp.CallToolResult, any, error) {
		id := strings.TrimSpace(input.ID)
		if id == "" {
			return ErrorResult("ID cannot be empty", "Provide a blog ID"), nil, nil
		}

		blog, err := deps.API.GetBlog(ctx, id)
		if errors.Is(err, client.ErrNotFound) {
			return ErrorResult(fmt.Sprintf("Blog not found: %s", id), "Use list_blogs to find blog IDs"), nil, nil
		}
		if err != nil {
			deps.Logger.Error("get blog failed", "id", id, "error", err)
			return ErrorResult(apiMessage(err, "Failed to fetch blog"), hintAPIDown), nil, nil
		}
		return JSONResult(blog), nil, nil
	}
}

// CreateBlogInput defines the input schema for the create_blog tool.
type CreateBlogInput struct {
	Title   string `json:"title" jsonschema:"Blog title"`
	Name    string `json:"name,omitempty" jsonschema:"URL slug, derived from the title if omitted"`
	Content string `json:"content,omitempty" jsonschema:"HTML content"`
	Excerpt string `json:"excerpt,omitempty" jsonschema:"Short summary"`
	Status  string `json:"status,omitempty" jsonschema:"publish or draft, default draft"`
	Tags    string `json:"tags,omitempty" jsonschema:"Comma separated tags"`
}

// NewCreateBlogHandler creates the create_blog tool handler.
func NewCreateBlogHandler(deps *Dependencies) mcp.ToolHandlerFor[CreateBlogInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CreateBlogInput) (*mcp.CallToolResult, any, error) {
		title := strings.TrimSpace(input.Title)
		if title == "" {
			return ErrorResult("Title cannot be empty", "Provide a blog title"), nil, nil
		}

		status := strings.ToLower(strings.TrimSpace(input.Status))
		switch status {
		case "":
			status = models.StatusDraft
		case models.StatusDraft, models.StatusPublish:
		default:
			return ErrorResult(fmt.Sprintf("Invalid status %q", input.Status), "Use publish or draft"), nil, nil
		}

		name := strings.TrimSpace(input.Name)
		if name == "" {
			name = models.Slugify(title)
		}

		blog := models.BlogPost{
			BlogName:    name,
			BlogTitle:   title,
			BlogContent: input.Content,
			BlogExcerpt: input.Excerpt,
			BlogStatus:  status,
			Tags:        input.Tags,
		}
		id, err := deps.API.CreateBlog(ctx, blog)
		if err != nil {
			deps.Logger.Error("create blog failed", "title", title, "error", err)
			return ErrorResult(apiMessage(err, "Failed to create blog"), ""), nil, nil
		}

		deps.Logger.Info("blog created", "id", id, "name", name)
		return JSONResult(map[string]string{"id": id, "name": name, "status": status}), nil, nil
	}
}
