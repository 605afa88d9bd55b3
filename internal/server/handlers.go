package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/poesyliang/poesy-blog/internal/metrics"
	"github.com/poesyliang/poesy-blog/internal/migration"
	"github.com/poesyliang/poesy-blog/internal/models"
)

// maxBodyBytes bounds POST /blogs payloads.
const maxBodyBytes = 10 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, models.ErrorResponse{Success: false, Error: msg, Details: details})
}

// pageParams reads limit and offset, falling back to the server defaults.
func (s *Server) pageParams(r *http.Request) (limit, offset int, err error) {
	limit, offset = s.defaultLimit, 0
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit <= 0 {
			return 0, 0, fmt.Errorf("invalid limit %q", v)
		}
	}
	if v := q.Get("offset"); v != "" {
		offset, err = strconv.Atoi(v)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid offset %q", v)
		}
	}
	return limit, offset, nil
}

// endpoints lists the routes described by the root endpoint.
var endpoints = [][2]string{
	{"GET /poesyliang.com/wp-posts", "Get wp_posts from poesyliang.com"},
	{"GET /poesyliang.net/wp-posts", "Get wp_posts from poesyliang.net"},
	{"GET /blogs", "Get all blogs"},
	{"GET /blogs/:id", "Get blog by ID"},
	{"POST /blogs", "Create a new blog"},
	{"POST " + migratePath, "Migrate wp_posts to blogs"},
	{"GET " + migratePath + "/summary", "Get the last migration summary"},
	{"GET " + migratePath + "/jobs/:id", "Get an async migration job"},
	{"GET " + migratePath + "/events", "Stream migration events (websocket)"},
	{"GET /stats", "Get runtime statistics"},
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	described := make(map[string]string, len(endpoints))
	for _, e := range endpoints {
		described[e[0]] = e[1]
	}
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Success:   true,
		Message:   "Poesy Liang Blog API",
		Version:   Version,
		Endpoints: described,
	})
}

func (s *Server) handleWpPosts(origin models.Origin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		src, ok := s.sources[origin]
		if !ok {
			writeError(w, http.StatusNotFound, "Route not found", "")
			return
		}
		limit, offset, err := s.pageParams(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), "")
			return
		}

		posts, err := src.Page(r.Context(), limit, offset)
		if err != nil {
			writeError(w, http.StatusInternalServerError,
				fmt.Sprintf("Failed to fetch %s wp_posts", origin), err.Error())
			return
		}
		if posts == nil {
			posts = []models.WpPost{}
		}
		writeJSON(w, http.StatusOK, models.ListResponse[models.WpPost]{Success: true, Count: len(posts), Data: posts})
	}
}

func (s *Server) handleListBlogs(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := s.pageParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	blogs := s.blogs.List(r.Context(), limit, offset)
	if blogs == nil {
		blogs = []models.BlogPost{}
	}
	writeJSON(w, http.StatusOK, models.ListResponse[models.BlogPost]{Success: true, Count: len(blogs), Data: blogs})
}

func (s *Server) handleGetBlog(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "Blog ID is required", "")
		return
	}
	blog := s.blogs.Get(r.Context(), id)
	if blog == nil {
		writeError(w, http.StatusNotFound, "Blog not found", "")
		return
	}
	writeJSON(w, http.StatusOK, models.ItemResponse[*models.BlogPost]{Success: true, Data: blog})
}

func (s *Server) handleCreateBlog(w http.ResponseWriter, r *http.Request) {
	var blog models.BlogPost
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&blog)
	if err != nil {
		details := err.Error()
		if errors.Is(err, io.EOF) {
			details = ""
		}
		writeError(w, http.StatusBadRequest, "Blog data is required", details)
		return
	}
	if blog == (models.BlogPost{}) {
		writeError(w, http.StatusBadRequest, "Blog data is required", "")
		return
	}

	res := s.blogs.Insert(r.Context(), blog)
	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = "Failed to create blog"
		}
		writeError(w, http.StatusInternalServerError, msg, "")
		return
	}

	msg := res.Message
	if msg == "" {
		msg = "Blog created successfully"
	}
	writeJSON(w, http.StatusCreated, models.ItemResponse[models.CreatedID]{
		Success: true,
		Message: msg,
		Data:    models.CreatedID{ID: res.ID},
	})
}

type jobResponse struct {
	Success bool           `json:"success"`
	Job     *migration.Job `json:"job"`
}

type jobsResponse struct {
	Success bool             `json:"success"`
	Count   int              `json:"count"`
	Data    []*migration.Job `json:"data"`
}

func (s *Server) handleMigrate(w http.ResponseWriter, r *http.Request) {
	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		s.startMigrationJob(w)
		return
	}

	// The run always completes, even if the caller disconnects.
	summary, err := s.runner.Run(context.WithoutCancel(r.Context()))
	switch {
	case errors.Is(err, migration.ErrRunInProgress):
		writeError(w, http.StatusConflict, "Migration already in progress", "")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Migration failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, models.SummaryResponse{Success: true, Summary: summary})
}

func (s *Server) startMigrationJob(w http.ResponseWriter) {
	if s.jobs == nil {
		writeError(w, http.StatusNotImplemented, "Async migration is not enabled", "")
		return
	}
	job, err := s.jobs.Start()
	if errors.Is(err, migration.ErrRunInProgress) {
		writeError(w, http.StatusConflict, "Migration already in progress", "")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to start migration", err.Error())
		return
	}
	snap := job.Snapshot()
	writeJSON(w, http.StatusAccepted, &jobResponse{Success: true, Job: &snap})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	store := s.runner.Store()
	if store == nil {
		writeJSON(w, http.StatusOK, models.SummaryResponse{Success: true, Message: "No migration has been run yet"})
		return
	}

	var (
		summary *models.MigrationSummary
		err     error
	)
	if runID := r.URL.Query().Get("run_id"); runID != "" {
		summary, err = store.Get(r.Context(), runID)
		if err == nil && summary == nil {
			writeError(w, http.StatusNotFound, "Migration run not found", "")
			return
		}
	} else {
		summary, err = store.Latest(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load migration summary", err.Error())
		return
	}

	if summary == nil {
		writeJSON(w, http.StatusOK, models.SummaryResponse{Success: true, Message: "No migration has been run yet"})
		return
	}
	writeJSON(w, http.StatusOK, models.SummaryResponse{Success: true, Summary: summary})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	if s.jobs == nil {
		writeError(w, http.StatusNotFound, "Job not found", "")
		return
	}
	job := s.jobs.Get(r.PathValue("id"))
	if job == nil {
		writeError(w, http.StatusNotFound, "Job not found", "")
		return
	}
	snap := job.Snapshot()
	writeJSON(w, http.StatusOK, &jobResponse{Success: true, Job: &snap})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	resp := &jobsResponse{Success: true, Data: []*migration.Job{}}
	if s.jobs != nil {
		for _, job := range s.jobs.List() {
			snap := job.Snapshot()
			resp.Data = append(resp.Data, &snap)
		}
	}
	resp.Count = len(resp.Data)
	writeJSON(w, http.StatusOK, resp)
}

// Stats is the body of GET /stats.
type Stats struct {
	Success          bool             `json:"success"`
	MigrationRunning bool             `json:"migration_running"`
	EventSubscribers int              `json:"event_subscribers"`
	StoredRuns       *int             `json:"stored_runs,omitempty"`
	Metrics          metrics.Snapshot `json:"metrics"`
}

// runCounter is implemented by summary stores that can count their runs.
type runCounter interface {
	Count(ctx context.Context) (int, error)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := Stats{
		Success:          true,
		MigrationRunning: s.runner.Running(),
		Metrics:          s.metrics.Snapshot(),
	}
	if s.hub != nil {
		stats.EventSubscribers = s.hub.Clients()
	}
	if rc, ok := s.runner.Store().(runCounter); ok {
		if n, err := rc.Count(r.Context()); err == nil {
			stats.StoredRuns = &n
		} else {
			s.logger.Warn("failed to count stored runs", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, stats)
}
