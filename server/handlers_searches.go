package server

import (
	"net/http"

	"github.com/ArseneVrnd/linkedin-mcp-server/errors"
	"github.com/ArseneVrnd/linkedin-mcp-server/importer"
	"github.com/ArseneVrnd/linkedin-mcp-server/tracker"
)

// GET /api/saved-searches
func (s *Server) handleListSearches(w http.ResponseWriter, r *http.Request) {
	searches, err := s.searches.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, searches)
}

// GET /api/saved-searches/{id}
func (s *Server) handleGetSearch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	search, err := s.searches.Get(id)
	if err != nil {
		if errors.Is(err, tracker.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Search not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, search)
}

// POST /api/saved-searches
//
// Creating a schedulable search installs its trigger immediately.
func (s *Server) handleCreateSearch(w http.ResponseWriter, r *http.Request) {
	var search tracker.SavedSearch
	if err := readJSON(w, r, &search); err != nil {
		return
	}
	if search.Name == "" || search.Keywords == "" {
		writeError(w, http.StatusBadRequest, "name and keywords are required")
		return
	}
	search.IsActive = true

	if err := s.searches.Create(&search); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.scheduler.Schedule(&search)

	created, err := s.searches.Get(search.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// PUT /api/saved-searches/{id}
//
// Any edit re-schedules the search: a changed expression replaces the old
// trigger, a deactivated or schedule-cleared search loses it. Stale triggers
// never outlive the edit.
func (s *Server) handleUpdateSearch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var search tracker.SavedSearch
	if err := readJSON(w, r, &search); err != nil {
		return
	}
	search.ID = id

	if err := s.searches.Update(&search); err != nil {
		if errors.Is(err, tracker.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Search not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.searches.Get(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.scheduler.Schedule(updated)

	writeJSON(w, http.StatusOK, updated)
}

// DELETE /api/saved-searches/{id}
func (s *Server) handleDeleteSearch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := s.searches.Delete(id); err != nil {
		if errors.Is(err, tracker.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Search not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.scheduler.Unschedule(id)

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleRunSearch executes a saved search immediately, outside its schedule.
// POST /api/saved-searches/{id}/run
func (s *Server) handleRunSearch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	search, err := s.searches.Get(id)
	if err != nil {
		if errors.Is(err, tracker.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Search not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := s.importer.ExecuteSearch(r.Context(), search)
	if err != nil {
		if errors.Is(err, importer.ErrToolUnavailable) {
			writeError(w, http.StatusBadGateway, "MCP server error: "+err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}
