// Package server exposes the tracker's REST API: ad-hoc search-and-import,
// auto-tagging, enrichment, and CRUD for jobs, tags and saved searches.
// The dashboard only ever reads persisted state through these endpoints.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ArseneVrnd/linkedin-mcp-server/autotag"
	"github.com/ArseneVrnd/linkedin-mcp-server/config"
	"github.com/ArseneVrnd/linkedin-mcp-server/importer"
	"github.com/ArseneVrnd/linkedin-mcp-server/scheduler"
	"github.com/ArseneVrnd/linkedin-mcp-server/tracker"
)

// StatusProber reports MCP server reachability.
type StatusProber interface {
	Connected(ctx context.Context) bool
}

// Server holds the HTTP API and its collaborators.
type Server struct {
	cfg       *config.Config
	logger    *zap.SugaredLogger
	jobs      *tracker.JobStore
	tags      *tracker.TagStore
	searches  *tracker.SavedSearchStore
	runs      *tracker.RunStore
	engine    *autotag.Engine
	importer  *importer.Service
	scheduler *scheduler.Scheduler
	mcp       StatusProber

	httpServer *http.Server
}

// New creates the API server.
func New(cfg *config.Config, logger *zap.SugaredLogger,
	jobs *tracker.JobStore, tags *tracker.TagStore,
	searches *tracker.SavedSearchStore, runs *tracker.RunStore,
	engine *autotag.Engine, svc *importer.Service,
	sched *scheduler.Scheduler, mcp StatusProber) *Server {

	return &Server{
		cfg:       cfg,
		logger:    logger,
		jobs:      jobs,
		tags:      tags,
		searches:  searches,
		runs:      runs,
		engine:    engine,
		importer:  svc,
		scheduler: sched,
		mcp:       mcp,
	}
}

// Routes returns the API handler with CORS applied.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/mcp/status", s.handleMCPStatus)
	mux.HandleFunc("POST /api/mcp/search-jobs", s.handleSearchJobs)

	mux.HandleFunc("GET /api/jobs", s.handleListJobs)
	mux.HandleFunc("POST /api/jobs", s.handleCreateJob)
	mux.HandleFunc("GET /api/jobs/{id}", s.handleGetJob)
	mux.HandleFunc("PUT /api/jobs/{id}", s.handleUpdateJob)
	mux.HandleFunc("DELETE /api/jobs/{id}", s.handleDeleteJob)
	mux.HandleFunc("POST /api/jobs/{id}/tags", s.handleAttachTag)
	mux.HandleFunc("DELETE /api/jobs/{id}/tags/{tagID}", s.handleDetachTag)
	mux.HandleFunc("POST /api/jobs/{id}/enrich", s.handleEnrichJob)
	mux.HandleFunc("POST /api/jobs/{id}/auto-tag", s.handleAutoTagJob)
	mux.HandleFunc("POST /api/jobs/auto-tag", s.handleAutoTagBatch)

	mux.HandleFunc("GET /api/tags", s.handleListTags)
	mux.HandleFunc("POST /api/tags", s.handleCreateTag)
	mux.HandleFunc("DELETE /api/tags/{id}", s.handleDeleteTag)

	mux.HandleFunc("GET /api/saved-searches", s.handleListSearches)
	mux.HandleFunc("POST /api/saved-searches", s.handleCreateSearch)
	mux.HandleFunc("GET /api/saved-searches/{id}", s.handleGetSearch)
	mux.HandleFunc("PUT /api/saved-searches/{id}", s.handleUpdateSearch)
	mux.HandleFunc("DELETE /api/saved-searches/{id}", s.handleDeleteSearch)
	mux.HandleFunc("POST /api/saved-searches/{id}/run", s.handleRunSearch)

	mux.HandleFunc("GET /api/runs", s.handleListRuns)
	mux.HandleFunc("POST /api/scheduler/refresh", s.handleSchedulerRefresh)

	return s.corsMiddleware(mux)
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("API server listening", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// corsMiddleware applies the configured allowed origins to every response.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := "*"
		if len(s.cfg.Server.AllowedOrigins) > 0 {
			origin = s.cfg.Server.AllowedOrigins[0]
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
