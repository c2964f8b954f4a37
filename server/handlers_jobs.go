package server

import (
	"net/http"
	"strconv"

	"github.com/ArseneVrnd/linkedin-mcp-server/db"
	"github.com/ArseneVrnd/linkedin-mcp-server/errors"
	"github.com/ArseneVrnd/linkedin-mcp-server/importer"
	"github.com/ArseneVrnd/linkedin-mcp-server/tracker"
)

// jobWithTags is the job detail representation the dashboard reads.
type jobWithTags struct {
	*tracker.Job
	Tags []tracker.Tag `json:"tags"`
}

// handleListJobs returns jobs newest first, optionally filtered by status,
// each with its tags attached.
// GET /api/jobs?status=
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.jobs.List(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]jobWithTags, 0, len(jobs))
	for _, job := range jobs {
		tags, err := s.tags.ForJob(job.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out = append(out, jobWithTags{Job: job, Tags: tags})
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /api/jobs/{id}
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	job, err := s.jobs.Get(id)
	if err != nil {
		if errors.Is(err, tracker.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Job not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	tags, err := s.tags.ForJob(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, jobWithTags{Job: job, Tags: tags})
}

// POST /api/jobs
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var job tracker.Job
	if err := readJSON(w, r, &job); err != nil {
		return
	}
	if job.Title == "" || job.Company == "" {
		writeError(w, http.StatusBadRequest, "Title and company are required")
		return
	}

	if err := s.jobs.Create(&job); err != nil {
		if db.IsUniqueViolation(err) {
			writeError(w, http.StatusConflict, "Job already exists (duplicate external id)")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	created, err := s.jobs.Get(job.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// PUT /api/jobs/{id}
func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var fields map[string]interface{}
	if err := readJSON(w, r, &fields); err != nil {
		return
	}

	if err := s.jobs.UpdateFields(id, fields); err != nil {
		if errors.Is(err, tracker.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Job not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.jobs.Get(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// DELETE /api/jobs/{id}
func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := s.jobs.Delete(id); err != nil {
		if errors.Is(err, tracker.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Job not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// POST /api/jobs/{id}/tags {tag_id}
func (s *Server) handleAttachTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		TagID int64 `json:"tag_id"`
	}
	if err := readJSON(w, r, &req); err != nil {
		return
	}
	if req.TagID == 0 {
		writeError(w, http.StatusBadRequest, "tag_id is required")
		return
	}

	if err := s.tags.EnsureAssociation(id, req.TagID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"success": true})
}

// DELETE /api/jobs/{id}/tags/{tagID}
func (s *Server) handleDetachTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	tagID, ok := pathID(w, r, "tagID")
	if !ok {
		return
	}

	if err := s.tags.RemoveAssociation(id, tagID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleEnrichJob fetches details via MCP and fills absent fields.
// POST /api/jobs/{id}/enrich
func (s *Server) handleEnrichJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	job, tags, err := s.importer.EnrichJob(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, tracker.ErrNotFound):
			writeError(w, http.StatusNotFound, "Job not found")
		case errors.Is(err, importer.ErrToolUnavailable):
			writeError(w, http.StatusBadGateway, "MCP server error: "+err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"job":          job,
		"tags_applied": tags,
	})
}

// handleAutoTagJob classifies one job.
// POST /api/jobs/{id}/auto-tag
func (s *Server) handleAutoTagJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	tags, err := s.engine.TagJob(id)
	if err != nil {
		if errors.Is(err, tracker.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Job not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"job_id":       id,
		"tags_applied": tags,
	})
}

// handleAutoTagBatch classifies an explicit id list, or every job when the
// list is empty. Per-job failures are reported per item.
// POST /api/jobs/auto-tag {job_ids?}
func (s *Server) handleAutoTagBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		JobIDs []int64 `json:"job_ids"`
	}
	if err := readJSON(w, r, &req); err != nil {
		return
	}

	var reports []interface{}
	if len(req.JobIDs) > 0 {
		for _, report := range s.engine.TagJobs(req.JobIDs) {
			reports = append(reports, report)
		}
	} else {
		all, err := s.engine.TagAll()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		for _, report := range all {
			reports = append(reports, report)
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": reports})
}

// pathID parses a numeric path parameter, answering 400 on garbage.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return id, true
}
