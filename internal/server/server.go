// Package server exposes the blog API and the migration endpoints over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/poesyliang/poesy-blog/internal/metrics"
	"github.com/poesyliang/poesy-blog/internal/migration"
	"github.com/poesyliang/poesy-blog/internal/models"
	"github.com/poesyliang/poesy-blog/internal/upstream"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// WriteTimeout bounds one response. A synchronous migration answers only
// when the run is over, so clients waiting for one should allow as much.
const WriteTimeout = 30 * time.Minute

const migratePath = "/migrate-wp-posts-journals-into-blogs"

// WpPager serves single pages of one origin's wp_posts.
type WpPager interface {
	Origin() models.Origin
	Page(ctx context.Context, limit, offset int) ([]models.WpPost, error)
}

// BlogService is the target blog store as seen by the API.
type BlogService interface {
	List(ctx context.Context, limit, offset int) []models.BlogPost
	Get(ctx context.Context, id string) *models.BlogPost
	Insert(ctx context.Context, b models.BlogPost) upstream.InsertResult
}

// Server holds the API dependencies.
type Server struct {
	sources      map[models.Origin]WpPager
	blogs        BlogService
	runner       *migration.Runner
	jobs         *migration.JobManager
	hub          *Hub
	metrics      *metrics.Collector
	logger       *slog.Logger
	defaultLimit int
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics exposes m on /stats.
func WithMetrics(m *metrics.Collector) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithHub serves migration events from h.
func WithHub(h *Hub) Option {
	return func(s *Server) {
		s.hub = h
	}
}

// WithJobs enables asynchronous migration runs.
func WithJobs(j *migration.JobManager) Option {
	return func(s *Server) {
		s.jobs = j
	}
}

// WithDefaultLimit sets the page size used when a request gives none.
func WithDefaultLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.defaultLimit = n
		}
	}
}

// New creates a server. sources should hold one pager per origin.
func New(sources []WpPager, blogs BlogService, runner *migration.Runner, opts ...Option) *Server {
	s := &Server{
		sources:      make(map[models.Origin]WpPager, len(sources)),
		blogs:        blogs,
		runner:       runner,
		logger:       slog.Default(),
		defaultLimit: upstream.DefaultPageSize,
	}
	for _, src := range sources {
		s.sources[src.Origin()] = src
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler wrapped in CORS and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	for _, origin := range models.Origins {
		mux.HandleFunc("GET /"+origin.String()+"/wp-posts", s.handleWpPosts(origin))
	}

	mux.HandleFunc("GET /blogs", s.handleListBlogs)
	mux.HandleFunc("GET /blogs/{id}", s.handleGetBlog)
	mux.HandleFunc("POST /blogs", s.handleCreateBlog)

	mux.HandleFunc("POST "+migratePath, s.handleMigrate)
	mux.HandleFunc("GET "+migratePath+"/summary", s.handleSummary)
	mux.HandleFunc("GET "+migratePath+"/jobs", s.handleListJobs)
	mux.HandleFunc("GET "+migratePath+"/jobs/{id}", s.handleGetJob)
	if s.hub != nil {
		mux.Handle("GET "+migratePath+"/events", s.hub)
	}

	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found", "")
	})

	return CORS(LoggingMiddleware(s.logger)(mux))
}
