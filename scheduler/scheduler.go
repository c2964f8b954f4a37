// Package scheduler maintains one recurring cron trigger per eligible saved
// search and runs the search execution service on each firing.
//
// The trigger registry is owned by a single Scheduler instance; all mutation
// goes through its mutex. Firings for different searches may overlap, and a
// slow firing may overlap the next tick for the same search — the unique
// external_id constraint suppresses duplicate rows in that case, at the cost
// of a wasted tool call.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ArseneVrnd/linkedin-mcp-server/importer"
	"github.com/ArseneVrnd/linkedin-mcp-server/tracker"
)

// SearchRunner executes one search-and-import cycle for a saved search.
// Satisfied by *importer.Service.
type SearchRunner interface {
	ExecuteSearch(ctx context.Context, search *tracker.SavedSearch) (*importer.Result, error)
}

// Scheduler wraps robfig/cron and keeps exactly one live trigger per
// schedulable saved search.
type Scheduler struct {
	cron     *cron.Cron
	searches *tracker.SavedSearchStore
	runner   SearchRunner
	timeout  time.Duration
	logger   *zap.SugaredLogger

	mu      sync.Mutex
	entries map[int64]cron.EntryID
}

// New creates a scheduler. timeout bounds each firing's execution; loc is
// the timezone cron expressions are evaluated in (nil = local time).
func New(searches *tracker.SavedSearchStore, runner SearchRunner, timeout time.Duration, loc *time.Location, logger *zap.SugaredLogger) *Scheduler {
	var opts []cron.Option
	if loc != nil {
		opts = append(opts, cron.WithLocation(loc))
	}

	return &Scheduler{
		cron:     cron.New(opts...),
		searches: searches,
		runner:   runner,
		timeout:  timeout,
		logger:   logger,
		entries:  make(map[int64]cron.EntryID),
	}
}

// Start loads all schedulable saved searches, installs their triggers and
// starts the cron loop.
func (s *Scheduler) Start() error {
	if err := s.loadAll(); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Infow("Scheduler started", "scheduled_searches", s.Count())
	return nil
}

// Schedule installs the trigger for a saved search, cancelling any existing
// trigger for the same search id first — there are never two live triggers
// for one search. A search that is no longer eligible is simply left
// unscheduled, as is one with an unparseable cron expression (logged,
// non-fatal, does not block other searches).
func (s *Scheduler) Schedule(search *tracker.SavedSearch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, ok := s.entries[search.ID]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, search.ID)
	}

	if !search.Schedulable() {
		return
	}

	// Copy for the closure: the caller may mutate its search afterwards.
	fired := *search
	entryID, err := s.cron.AddFunc(*search.Schedule, func() {
		s.fire(fired)
	})
	if err != nil {
		s.logger.Warnw("Invalid schedule expression, search left unscheduled",
			"search_id", search.ID,
			"name", search.Name,
			"schedule", *search.Schedule,
			"error", err,
		)
		return
	}

	s.entries[search.ID] = entryID
	s.logger.Infow("Scheduled saved search",
		"search_id", search.ID,
		"name", search.Name,
		"schedule", *search.Schedule,
	)
}

// Unschedule cancels the trigger for a search id, if one is registered.
func (s *Scheduler) Unschedule(searchID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, ok := s.entries[searchID]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, searchID)
		s.logger.Infow("Unscheduled saved search", "search_id", searchID)
	}
}

// StopAll cancels every registered trigger and clears the registry. The cron
// loop keeps running so triggers can be re-installed.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, entryID := range s.entries {
		s.cron.Remove(entryID)
		delete(s.entries, id)
	}
	s.logger.Infow("All scheduled searches stopped")
}

// Refresh re-syncs the registry with the store: stop everything, then reload
// every schedulable search. Called after saved-search edits.
func (s *Scheduler) Refresh() error {
	s.StopAll()
	if err := s.loadAll(); err != nil {
		return err
	}
	s.logger.Infow("Scheduler refreshed", "scheduled_searches", s.Count())
	return nil
}

// Shutdown stops all triggers and waits for in-flight firings to finish.
func (s *Scheduler) Shutdown() {
	s.StopAll()
	<-s.cron.Stop().Done()
	s.logger.Infow("Scheduler stopped")
}

// Scheduled reports whether a live trigger exists for the search id.
func (s *Scheduler) Scheduled(searchID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[searchID]
	return ok
}

// Count returns the number of live triggers.
func (s *Scheduler) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// loadAll schedules every eligible saved search from the store.
func (s *Scheduler) loadAll() error {
	searches, err := s.searches.ListSchedulable()
	if err != nil {
		return err
	}
	for _, search := range searches {
		s.Schedule(search)
	}
	return nil
}

// fire runs one scheduled execution. A failed firing is logged and absorbed;
// the trigger persists and fires again on its next occurrence.
func (s *Scheduler) fire(search tracker.SavedSearch) {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.logger.Infow("Executing scheduled search", "search_id", search.ID, "name", search.Name)

	result, err := s.runner.ExecuteSearch(ctx, &search)
	if err != nil {
		s.logger.Errorw("Scheduled search failed",
			"search_id", search.ID,
			"name", search.Name,
			"error", err,
		)
		return
	}

	s.logger.Infow("Scheduled search complete",
		"search_id", search.ID,
		"name", search.Name,
		"imported", result.Imported,
		"seen", result.JobsSeen,
	)
}
