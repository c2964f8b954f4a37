// Package importer orchestrates one search-and-import cycle: call the
// external search tool, parse the payload, upsert candidates, auto-tag the
// newly inserted jobs and record execution metadata.
//
// The same Execute path serves ad-hoc API requests and scheduler firings, so
// behavior is identical regardless of trigger source.
package importer

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ArseneVrnd/linkedin-mcp-server/autotag"
	"github.com/ArseneVrnd/linkedin-mcp-server/errors"
	"github.com/ArseneVrnd/linkedin-mcp-server/parser"
	"github.com/ArseneVrnd/linkedin-mcp-server/tracker"
)

// ErrToolUnavailable marks failures of the external search/detail tool.
// These are fatal to the current execution only; a scheduled trigger
// survives and retries on its next occurrence.
var ErrToolUnavailable = errors.New("external tool unavailable")

// SearchTool is the contract the pipeline requires from the external
// search capability: best-effort results, possibly empty or malformed text.
type SearchTool interface {
	SearchJobs(ctx context.Context, keywords, location string, limit int) (string, error)
}

// DetailTool fetches enrichment fields for one external listing id.
type DetailTool interface {
	GetJobDetails(ctx context.Context, externalID string) (*tracker.JobDetails, error)
}

// Params describes one execution request.
type Params struct {
	Keywords string
	Location string
	Limit    int
	// Search is set when executing on behalf of a saved search; its
	// last_run is touched on every execution, imported jobs or not.
	Search *tracker.SavedSearch
}

// Result reports one completed execution.
type Result struct {
	RunID string `json:"run_id"`
	// Raw is the tool payload, kept for diagnostic display.
	Raw string `json:"raw"`
	// Degenerate is set when non-empty raw text yielded zero candidates;
	// the caller should surface Raw verbatim instead of silently showing
	// nothing.
	Degenerate   bool           `json:"degenerate"`
	JobsSeen     int            `json:"jobs_seen"`
	Imported     int            `json:"newly_imported_count"`
	Duplicates   int            `json:"duplicates"`
	Invalid      int            `json:"invalid"`
	TagsApplied  int            `json:"tags_applied"`
	ImportedJobs []*tracker.Job `json:"imported_jobs"`
}

// Service is the search execution service.
type Service struct {
	jobs     *tracker.JobStore
	searches *tracker.SavedSearchStore
	runs     *tracker.RunStore
	engine   *autotag.Engine
	search   SearchTool
	details  DetailTool

	limiter      *rate.Limiter
	defaultLimit int
	logger       *zap.SugaredLogger
}

// Config tunes a Service.
type Config struct {
	// DefaultLimit is used when a request omits a result limit.
	DefaultLimit int
	// SearchesPerMinute rate-limits tool calls across all executions
	// (0 = unlimited).
	SearchesPerMinute int
}

// New creates a search execution service.
func New(jobs *tracker.JobStore, searches *tracker.SavedSearchStore, runs *tracker.RunStore,
	engine *autotag.Engine, search SearchTool, details DetailTool, cfg Config, logger *zap.SugaredLogger) *Service {

	defaultLimit := cfg.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = 25
	}

	var limiter *rate.Limiter
	if cfg.SearchesPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.SearchesPerMinute)), 1)
	}

	return &Service{
		jobs:         jobs,
		searches:     searches,
		runs:         runs,
		engine:       engine,
		search:       search,
		details:      details,
		limiter:      limiter,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// Execute runs one full search-and-import cycle. A tool failure is fatal to
// this execution and propagates; per-candidate failures (invalid, duplicate)
// are counted, not fatal. Steps run strictly parse -> upsert -> tag per
// candidate, in parser output order.
func (s *Service) Execute(ctx context.Context, p Params) (*Result, error) {
	if strings.TrimSpace(p.Keywords) == "" {
		return nil, errors.New("keywords are required")
	}

	limit := p.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}

	run := &tracker.SearchRun{
		ID:        uuid.NewString(),
		Keywords:  p.Keywords,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if p.Location != "" {
		loc := p.Location
		run.Location = &loc
	}
	if p.Search != nil {
		id := p.Search.ID
		run.SavedSearchID = &id
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "rate limit wait")
		}
	}

	raw, err := s.search.SearchJobs(ctx, p.Keywords, p.Location, limit)
	if err != nil {
		err = errors.Mark(errors.Wrap(err, "call search_jobs"), ErrToolUnavailable)
		s.recordRun(run, err)
		return nil, err
	}

	candidates := parser.ParsePayload(raw)

	result := &Result{
		RunID:        run.ID,
		Raw:          raw,
		JobsSeen:     len(candidates),
		ImportedJobs: []*tracker.Job{},
	}
	if len(candidates) == 0 && strings.TrimSpace(raw) != "" {
		result.Degenerate = true
	}

	for _, candidate := range candidates {
		upsert, err := s.jobs.ImportCandidate(candidate)
		if err != nil {
			s.logger.Errorw("Candidate import failed", "title", candidate.Title, "error", err)
			result.Invalid++
			continue
		}

		switch upsert.Status {
		case tracker.UpsertDuplicate:
			result.Duplicates++
		case tracker.UpsertInvalid:
			result.Invalid++
		case tracker.UpsertInserted:
			result.Imported++

			// Only freshly inserted jobs are classified; duplicates keep
			// whatever tags they already have.
			tags, err := s.engine.TagJob(upsert.JobID)
			if err != nil {
				s.logger.Warnw("Auto-tagging failed", "job_id", upsert.JobID, "error", err)
			}
			result.TagsApplied += len(tags)

			if job, err := s.jobs.Get(upsert.JobID); err == nil {
				result.ImportedJobs = append(result.ImportedJobs, job)
			}
		}
	}

	if p.Search != nil {
		if err := s.searches.TouchLastRun(p.Search.ID); err != nil {
			s.logger.Warnw("Failed to update last_run", "search_id", p.Search.ID, "error", err)
		}
	}

	run.JobsSeen = result.JobsSeen
	run.JobsImported = result.Imported
	run.TagsApplied = result.TagsApplied
	s.recordRun(run, nil)

	s.logger.Infow("Search execution complete",
		"run_id", run.ID,
		"keywords", p.Keywords,
		"seen", result.JobsSeen,
		"imported", result.Imported,
		"duplicates", result.Duplicates,
		"invalid", result.Invalid,
		"tags_applied", result.TagsApplied,
		"degenerate", result.Degenerate,
	)

	return result, nil
}

// ExecuteSearch runs Execute for a saved search. Used by the scheduler and
// the run-now endpoint.
func (s *Service) ExecuteSearch(ctx context.Context, search *tracker.SavedSearch) (*Result, error) {
	p := Params{
		Keywords: search.Keywords,
		Search:   search,
	}
	if search.Location != nil {
		p.Location = *search.Location
	}
	return s.Execute(ctx, p)
}

// EnrichJob fetches detail fields for a job and fills them where absent,
// then re-classifies the job so rules reading enriched fields can fire.
// Returns the refreshed job and the tag names associated.
func (s *Service) EnrichJob(ctx context.Context, jobID int64) (*tracker.Job, []string, error) {
	job, err := s.jobs.Get(jobID)
	if err != nil {
		return nil, nil, err
	}
	if job.ExternalID == nil || *job.ExternalID == "" {
		return nil, nil, errors.Newf("job %d has no external id to fetch details for", jobID)
	}

	details, err := s.details.GetJobDetails(ctx, *job.ExternalID)
	if err != nil {
		return nil, nil, errors.Mark(errors.Wrap(err, "call get_job_details"), ErrToolUnavailable)
	}

	if err := s.jobs.Enrich(jobID, *details); err != nil {
		return nil, nil, err
	}

	tags, err := s.engine.TagJob(jobID)
	if err != nil {
		s.logger.Warnw("Auto-tagging after enrichment failed", "job_id", jobID, "error", err)
	}

	refreshed, err := s.jobs.Get(jobID)
	if err != nil {
		return nil, nil, err
	}
	return refreshed, tags, nil
}

// recordRun persists an execution record; failures to do so are logged, not
// propagated, so run history never masks the execution outcome.
func (s *Service) recordRun(run *tracker.SearchRun, execErr error) {
	if execErr != nil {
		msg := execErr.Error()
		run.Error = &msg
	}
	if err := s.runs.Record(run); err != nil {
		s.logger.Warnw("Failed to record search run", "run_id", run.ID, "error", err)
	}
}
