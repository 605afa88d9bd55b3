package content

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/poesyliang/poesy-blog/internal/client"
	"github.com/poesyliang/poesy-blog/internal/models"
)

const (
	// PageSize is the page size used to walk the blog store.
	PageSize = 50

	// DefaultCacheTTL bounds how long fetched blogs are reused.
	DefaultCacheTTL = 5 * time.Minute

	allBlogsKey = "all"
)

// BlogSource is the part of the API client the catalog reads from.
type BlogSource interface {
	AllBlogs(ctx context.Context, pageSize int) ([]models.BlogPost, error)
	GetBlog(ctx context.Context, id string) (*models.BlogPost, error)
}

// Catalog merges static content files with blogs from the API.
type Catalog struct {
	blogs     BlogSource
	staticDir string
	cacheTTL  time.Duration
	cache     *expirable.LRU[string, []models.BlogPost]
	logger    *slog.Logger
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithStaticDir sets the directory of static content files.
func WithStaticDir(dir string) CatalogOption {
	return func(c *Catalog) {
		c.staticDir = dir
	}
}

// WithCacheTTL sets how long the list of API blogs is cached.
func WithCacheTTL(ttl time.Duration) CatalogOption {
	return func(c *Catalog) {
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) CatalogOption {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCatalog creates a catalog reading blogs from src.
func NewCatalog(src BlogSource, opts ...CatalogOption) *Catalog {
	c := &Catalog{
		blogs:    src,
		cacheTTL: DefaultCacheTTL,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cache = expirable.NewLRU[string, []models.BlogPost](1, nil, c.cacheTTL)
	return c
}

// apiBlogs returns every stored blog, served from cache while fresh.
func (c *Catalog) apiBlogs(ctx context.Context) ([]models.BlogPost, error) {
	if blogs, ok := c.cache.Get(allBlogsKey); ok {
		return blogs, nil
	}
	blogs, err := c.blogs.AllBlogs(ctx, PageSize)
	if err != nil {
		return nil, err
	}
	c.cache.Add(allBlogsKey, blogs)
	return blogs, nil
}

func (c *Catalog) staticPosts() ([]Post, error) {
	if c.staticDir == "" {
		return nil, nil
	}
	posts, err := LoadDir(c.staticDir)
	if errors.Is(err, fs.ErrNotExist) {
		c.logger.Debug("content dir missing", "dir", c.staticDir)
		return nil, nil
	}
	return posts, err
}

// Published returns every visible post, newest first. When the API is
// unreachable only static posts are returned.
func (c *Catalog) Published(ctx context.Context) ([]Post, error) {
	posts, err := c.staticPosts()
	if err != nil {
		return nil, err
	}

	blogs, err := c.apiBlogs(ctx)
	if err != nil {
		c.logger.Warn("failed to load blogs from api", "error", err)
	}
	for _, b := range blogs {
		if visible(b) {
			posts = append(posts, FromBlog(b))
		}
	}

	sortNewestFirst(posts)
	return posts, nil
}

// BySlug finds a post by slug. "blog-<id>" slugs are looked up by ID
// first; otherwise blog names and static slugs are compared ignoring case
// and URL encoding.
func (c *Catalog) BySlug(ctx context.Context, slug string) (*Post, error) {
	if rest, ok := strings.CutPrefix(slug, "blog-"); ok {
		if _, err := strconv.Atoi(rest); err == nil {
			b, err := c.blogs.GetBlog(ctx, rest)
			switch {
			case err == nil:
				p := FromBlog(*b)
				return &p, nil
			case !errors.Is(err, client.ErrNotFound):
				c.logger.Warn("failed to fetch blog by id", "id", rest, "error", err)
			}
		}
	}

	blogs, err := c.apiBlogs(ctx)
	if err != nil {
		c.logger.Warn("could not search blogs by slug", "error", err)
	}
	for _, b := range blogs {
		if slugMatches(b.BlogName, slug) {
			p := FromBlog(b)
			return &p, nil
		}
	}

	posts, err := c.Published(ctx)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if slugMatches(posts[i].Slug, slug) {
			return &posts[i], nil
		}
	}
	return nil, ErrNotFound
}

func slugMatches(candidate, slug string) bool {
	if candidate == "" {
		return false
	}
	c, s := strings.ToLower(candidate), strings.ToLower(slug)
	if c == s || c == strings.ToLower(url.PathEscape(slug)) {
		return true
	}
	return unescape(c) == unescape(s)
}

func unescape(s string) string {
	if u, err := url.PathUnescape(s); err == nil {
		return strings.ToLower(u)
	}
	return s
}
