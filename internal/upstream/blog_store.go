package upstream

import (
	"context"
	"net/http"
	"net/url"

	"github.com/poesyliang/poesy-blog/internal/metrics"
	"github.com/poesyliang/poesy-blog/internal/models"
)

const blogsPath = "/blogs"

// InsertResult is the store's verdict on one insert.
type InsertResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	ID      string `json:"id,omitempty"`
}

// BlogStore is the client of the target blog API.
//
// Reads swallow failures (logged) and return empty results; Insert reports
// failures in its result. Create exposes the raw error for callers that need
// to tell transport failures from rejections.
type BlogStore struct {
	client   *Client
	pageSize int
}

// NewBlogStore creates a store client. pageSize is the page used by All.
func NewBlogStore(client *Client, pageSize int) *BlogStore {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &BlogStore{client: client, pageSize: pageSize}
}

// List returns one page of blogs, or an empty list on any failure.
func (s *BlogStore) List(ctx context.Context, limit, offset int) []models.BlogPost {
	env, err := getPage[models.BlogPost](ctx, s.client, metrics.OpStoreRead, blogsPath, limit, offset)
	if err != nil {
		s.client.logger.Error("error fetching blogs", "limit", limit, "offset", offset, "error", err)
		return []models.BlogPost{}
	}
	if !env.Success || len(env.Data) == 0 {
		return []models.BlogPost{}
	}
	return env.Data
}

// Get returns one blog, or nil when it is missing or the request failed.
func (s *BlogStore) Get(ctx context.Context, id string) *models.BlogPost {
	var env models.Envelope[models.BlogPost]
	err := s.client.do(ctx, metrics.OpStoreRead, http.MethodGet, blogsPath+"/"+url.PathEscape(id), nil, nil, &env)
	if err != nil {
		s.client.logger.Error("error fetching blog", "id", id, "error", err)
		return nil
	}
	if !env.Success || len(env.Data) == 0 {
		return nil
	}
	b := env.Data[0]
	return &b
}

// All returns every blog in the store.
func (s *BlogStore) All(ctx context.Context) Result[models.BlogPost] {
	return fetchAll[models.BlogPost](ctx, s.client, metrics.OpStoreRead, blogsPath, s.pageSize)
}

// Create posts b. A transport, status or decode failure is returned as an
// error; a store-side rejection is a result with Success false.
func (s *BlogStore) Create(ctx context.Context, b models.BlogPost) (InsertResult, error) {
	var env models.Envelope[models.BlogPost]
	err := s.client.do(ctx, metrics.OpStoreInsert, http.MethodPost, blogsPath, nil, b, &env)
	if err != nil {
		return InsertResult{}, err
	}

	res := InsertResult{Success: env.Success, Message: env.Message}
	if len(env.Data) == 1 {
		res.ID = env.Data[0].ID.String()
	}
	return res, nil
}

// Insert is Create with the error folded into the result.
func (s *BlogStore) Insert(ctx context.Context, b models.BlogPost) InsertResult {
	res, err := s.Create(ctx, b)
	if err != nil {
		s.client.logger.Error("error inserting blog", "title", b.BlogTitle, "error", err)
		return InsertResult{Success: false, Message: err.Error()}
	}
	return res
}
