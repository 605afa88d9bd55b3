// Package tools provides the MCP tools that operate the poesy blog API.
package tools

import (
	"context"
	"log/slog"

	"github.com/poesyliang/poesy-blog/internal/client"
	"github.com/poesyliang/poesy-blog/internal/migration"
	"github.com/poesyliang/poesy-blog/internal/models"
)

// API is the part of the blog API client the tools call.
// *client.Client implements it.
type API interface {
	Health(ctx context.Context) (*models.HealthResponse, error)
	ListWpPosts(ctx context.Context, origin models.Origin, limit, offset int) ([]models.WpPost, error)
	ListBlogs(ctx context.Context, limit, offset int) ([]models.BlogPost, error)
	GetBlog(ctx context.Context, id string) (*models.BlogPost, error)
	CreateBlog(ctx context.Context, b models.BlogPost) (string, error)
	Migrate(ctx context.Context) (*models.MigrationSummary, error)
	MigrateAsync(ctx context.Context) (*migration.Job, error)
	GetJob(ctx context.Context, id string) (*migration.Job, error)
	Summary(ctx context.Context, runID string) (*models.MigrationSummary, error)
}

var _ API = (*client.Client)(nil)

// Dependencies holds shared services for tool handlers.
type Dependencies struct {
	API    API
	Logger *slog.Logger
}
