package upstream

import (
	"context"

	"github.com/poesyliang/poesy-blog/internal/metrics"
	"github.com/poesyliang/poesy-blog/internal/models"
)

const wpPostsPath = "/wp_posts"

// WpSource reads the wp_posts table of one legacy site.
type WpSource struct {
	origin   models.Origin
	client   *Client
	pageSize int
}

// NewWpSource binds client to origin. pageSize is the page used by All.
func NewWpSource(origin models.Origin, client *Client, pageSize int) *WpSource {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &WpSource{origin: origin, client: client, pageSize: pageSize}
}

// Origin returns the site this source reads from.
func (s *WpSource) Origin() models.Origin {
	return s.origin
}

// Page returns a single page. An unsuccessful envelope yields no records.
func (s *WpSource) Page(ctx context.Context, limit, offset int) ([]models.WpPost, error) {
	env, err := getPage[models.WpPost](ctx, s.client, metrics.OpUpstreamFetch, wpPostsPath, limit, offset)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return []models.WpPost{}, nil
	}
	return env.Data, nil
}

// All returns every row of the source.
func (s *WpSource) All(ctx context.Context) Result[models.WpPost] {
	return fetchAll[models.WpPost](ctx, s.client, metrics.OpUpstreamFetch, wpPostsPath, s.pageSize)
}
