package autotag

import (
	"sync"

	"go.uber.org/zap"

	"github.com/ArseneVrnd/linkedin-mcp-server/tracker"
)

// Engine evaluates the rule list against persisted jobs and ensures the
// resulting tags exist and are linked. Associations are idempotent, so
// re-tagging a job is always safe.
type Engine struct {
	jobs   *tracker.JobStore
	tags   *tracker.TagStore
	logger *zap.SugaredLogger

	mu    sync.RWMutex
	rules []Rule
}

// JobReport is the per-job outcome of a batch tagging pass.
type JobReport struct {
	JobID int64    `json:"job_id"`
	Tags  []string `json:"tags_applied"`
	Error string   `json:"error,omitempty"`
}

// NewEngine creates an engine preloaded with the default rules.
func NewEngine(jobs *tracker.JobStore, tags *tracker.TagStore, logger *zap.SugaredLogger) *Engine {
	return &Engine{
		jobs:   jobs,
		tags:   tags,
		logger: logger,
		rules:  DefaultRules(),
	}
}

// AddRule appends a rule at runtime.
func (e *Engine) AddRule(rule Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = append(e.rules, rule)
}

// Rules returns a snapshot of the current rule list.
func (e *Engine) Rules() []Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// TagJob classifies one job and returns the names of all tags associated as
// a result, whether newly linked or already present. Returns
// tracker.ErrNotFound if the job does not exist.
func (e *Engine) TagJob(jobID int64) ([]string, error) {
	job, err := e.jobs.Get(jobID)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, rule := range e.Rules() {
		if !rule.Matches(job) {
			continue
		}

		tag, err := e.tags.Ensure(rule.Name, rule.Color)
		if err != nil {
			e.logger.Errorw("Failed to ensure tag", "tag", rule.Name, "job_id", jobID, "error", err)
			continue
		}
		if err := e.tags.EnsureAssociation(jobID, tag.ID); err != nil {
			e.logger.Errorw("Failed to associate tag", "tag", rule.Name, "job_id", jobID, "error", err)
			continue
		}
		applied = append(applied, tag.Name)
	}

	return applied, nil
}

// TagJobs runs TagJob over an explicit id list. Each job is processed
// independently; a missing job is reported in its item, not returned as an
// error.
func (e *Engine) TagJobs(jobIDs []int64) []JobReport {
	reports := make([]JobReport, 0, len(jobIDs))
	for _, id := range jobIDs {
		tags, err := e.TagJob(id)
		report := JobReport{JobID: id, Tags: tags}
		if err != nil {
			report.Error = err.Error()
		}
		reports = append(reports, report)
	}
	return reports
}

// TagAll runs TagJob over every job currently in the store.
func (e *Engine) TagAll() ([]JobReport, error) {
	ids, err := e.jobs.ListIDs()
	if err != nil {
		return nil, err
	}
	return e.TagJobs(ids), nil
}
