// Package client is a Go client for the poesy blog API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/poesyliang/poesy-blog/internal/migration"
	"github.com/poesyliang/poesy-blog/internal/models"
	"github.com/poesyliang/poesy-blog/internal/server"
)

// DefaultURL is used when neither an explicit URL nor a port file is available.
const DefaultURL = "http://localhost:3001"

const migratePath = "/migrate-wp-posts-journals-into-blogs"

var (
	// ErrNotFound indicates the API answered 404.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the API answered 409, e.g. a migration is already running.
	ErrConflict = errors.New("conflict")
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	return msg
}

// Is maps status codes onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	}
	return false
}

// Client talks to the blog API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout. The default matches the
// server's write timeout so a synchronous migration is waited for.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// New creates a client for baseURL, falling back to DefaultURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: server.WriteTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ReadPortFile reads the port file written by the API on startup.
func ReadPortFile(path string) (models.PortInfo, error) {
	var info models.PortInfo
	data, err := os.ReadFile(path)
	if err != nil {
		return info, fmt.Errorf("read port file: %w", err)
	}
	if err := json.Unmarshal(data, &info); err != nil {
		return info, fmt.Errorf("parse port file: %w", err)
	}
	if info.URL == "" && info.Port > 0 {
		info.URL = "http://localhost:" + strconv.Itoa(info.Port)
	}
	return info, nil
}

// ResolveURL returns apiURL if set, else the URL recorded in portFile,
// else DefaultURL.
func ResolveURL(apiURL, portFile string) string {
	if apiURL != "" {
		return apiURL
	}
	if portFile != "" {
		if info, err := ReadPortFile(portFile); err == nil && info.URL != "" {
			return info.URL
		}
	}
	return DefaultURL
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
		var e models.ErrorResponse
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			apiErr.Message = e.Error
			apiErr.Details = e.Details
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

func pageQuery(limit, offset int) url.Values {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	return q
}

// Health returns the root endpoint description.
func (c *Client) Health(ctx context.Context) (*models.HealthResponse, error) {
	var resp models.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListWpPosts returns one page of an origin's wp_posts.
func (c *Client) ListWpPosts(ctx context.Context, origin models.Origin, limit, offset int) ([]models.WpPost, error) {
	var resp models.ListResponse[models.WpPost]
	if err := c.do(ctx, http.MethodGet, "/"+origin.String()+"/wp-posts", pageQuery(limit, offset), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ListBlogs returns one page of blogs.
func (c *Client) ListBlogs(ctx context.Context, limit, offset int) ([]models.BlogPost, error) {
	var resp models.ListResponse[models.BlogPost]
	if err := c.do(ctx, http.MethodGet, "/blogs", pageQuery(limit, offset), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// AllBlogs pages through every blog until a page comes back short.
func (c *Client) AllBlogs(ctx context.Context, pageSize int) ([]models.BlogPost, error) {
	if pageSize <= 0 {
		pageSize = 50
	}
	var all []models.BlogPost
	for offset := 0; ; offset += pageSize {
		page, err := c.ListBlogs(ctx, pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("list blogs at offset %d: %w", offset, err)
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
	}
}

// GetBlog returns one blog or an error wrapping ErrNotFound.
func (c *Client) GetBlog(ctx context.Context, id string) (*models.BlogPost, error) {
	var resp models.ItemResponse[models.BlogPost]
	if err := c.do(ctx, http.MethodGet, "/blogs/"+url.PathEscape(id), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// CreateBlog creates a blog and returns its ID.
func (c *Client) CreateBlog(ctx context.Context, b models.BlogPost) (string, error) {
	var resp models.ItemResponse[models.CreatedID]
	if err := c.do(ctx, http.MethodPost, "/blogs", nil, b, &resp); err != nil {
		return "", err
	}
	return resp.Data.ID, nil
}

// Migrate runs a synchronous migration. An error wrapping ErrConflict
// means another run is active.
func (c *Client) Migrate(ctx context.Context) (*models.MigrationSummary, error) {
	var resp models.SummaryResponse
	if err := c.do(ctx, http.MethodPost, migratePath, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Summary, nil
}

type jobResponse struct {
	Success bool           `json:"success"`
	Job     *migration.Job `json:"job"`
}

// MigrateAsync starts a background migration and returns its job.
func (c *Client) MigrateAsync(ctx context.Context) (*migration.Job, error) {
	var resp jobResponse
	if err := c.do(ctx, http.MethodPost, migratePath, url.Values{"async": {"true"}}, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Job, nil
}

// GetJob returns the state of a background migration.
func (c *Client) GetJob(ctx context.Context, id string) (*migration.Job, error) {
	var resp jobResponse
	if err := c.do(ctx, http.MethodGet, migratePath+"/jobs/"+url.PathEscape(id), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Job, nil
}

// ListJobs returns all background migrations, most recent first.
func (c *Client) ListJobs(ctx context.Context) ([]*migration.Job, error) {
	var resp struct {
		Data []*migration.Job `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, migratePath+"/jobs", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Summary returns the last migration summary, or nil when none ran yet.
// A non-empty runID selects a specific run.
func (c *Client) Summary(ctx context.Context, runID string) (*models.MigrationSummary, error) {
	var q url.Values
	if runID != "" {
		q = url.Values{"run_id": {runID}}
	}
	var resp models.SummaryResponse
	if err := c.do(ctx, http.MethodGet, migratePath+"/summary", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Summary, nil
}

// Stats returns runtime statistics of the API.
func (c *Client) Stats(ctx context.Context) (*server.Stats, error) {
	var resp server.Stats
	if err := c.do(ctx, http.MethodGet, "/stats", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
