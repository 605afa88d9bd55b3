package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterAll registers every tool with the MCP server.
func RegisterAll(server *mcp.Server, deps *Dependencies) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "health",
		Description: "Check that the blog API is reachable and report its version",
	}, NewHealthHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_wp_posts",
		Description: "List one page of legacy WordPress posts from poesyliang.com or poesyliang.net",
	}, NewListWpPostsHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_blogs",
		Description: "List one page of blogs in the blog store",
	}, NewListBlogsHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_blog",
		Description: "Retrieve a blog by its ID with full content",
	}, NewGetBlogHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_blog",
		Description: "Create a blog in the blog store",
	}, NewCreateBlogHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "migrate",
		Description: "Migrate every legacy WordPress post into the blog store. Each call inserts all posts again",
	}, NewMigrateHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_job",
		Description: "Show the progress of a background migration started with migrate async=true",
	}, NewGetJobHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "migration_summary",
		Description: "Show the summary of the last migration run, or of a given run ID",
	}, NewMigrationSummaryHandler(deps))
}
