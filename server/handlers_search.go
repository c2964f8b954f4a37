package server

import (
	"net/http"
	"strconv"

	"github.com/ArseneVrnd/linkedin-mcp-server/errors"
	"github.com/ArseneVrnd/linkedin-mcp-server/importer"
)

// handleMCPStatus probes MCP server connectivity.
// GET /api/mcp/status
func (s *Server) handleMCPStatus(w http.ResponseWriter, r *http.Request) {
	connected := s.mcp != nil && s.mcp.Connected(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"connected": connected})
}

// handleSearchJobs triggers one ad-hoc search-and-import cycle.
// POST /api/mcp/search-jobs {keywords, location?, limit?}
func (s *Server) handleSearchJobs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keywords string `json:"keywords"`
		Location string `json:"location"`
		Limit    int    `json:"limit"`
	}
	if err := readJSON(w, r, &req); err != nil {
		return
	}
	if req.Keywords == "" {
		writeError(w, http.StatusBadRequest, "keywords is required")
		return
	}

	result, err := s.importer.Execute(r.Context(), importer.Params{
		Keywords: req.Keywords,
		Location: req.Location,
		Limit:    req.Limit,
	})
	if err != nil {
		if errors.Is(err, importer.ErrToolUnavailable) {
			s.logger.Errorw("MCP search_jobs failed", "keywords", req.Keywords, "error", err)
			writeError(w, http.StatusBadGateway, "MCP server error: "+err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleListRuns returns recent search execution records.
// GET /api/runs?limit=N
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	runs, err := s.runs.ListRecent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// handleSchedulerRefresh re-syncs scheduler triggers with the store after
// bulk saved-search edits.
// POST /api/scheduler/refresh
func (s *Server) handleSchedulerRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.scheduler.Refresh(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"scheduled_searches": s.scheduler.Count()})
}
