package tracker

import (
	"database/sql"
	"time"

	"github.com/ArseneVrnd/linkedin-mcp-server/errors"
)

// SearchRun is the execution record of one search-and-import cycle, kept for
// the dashboard's run history. Failed runs are recorded too, with Error set.
type SearchRun struct {
	ID            string  `json:"id"`
	SavedSearchID *int64  `json:"saved_search_id"`
	Keywords      string  `json:"keywords"`
	Location      *string `json:"location"`
	JobsSeen      int     `json:"jobs_seen"`
	JobsImported  int     `json:"jobs_imported"`
	TagsApplied   int     `json:"tags_applied"`
	Error         *string `json:"error"`
	StartedAt     string  `json:"started_at"`
	FinishedAt    *string `json:"finished_at"`
}

// RunStore handles persistence of search execution records
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a new run store
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// Record inserts a completed run. FinishedAt is stamped here if unset.
func (s *RunStore) Record(run *SearchRun) error {
	if run.FinishedAt == nil {
		now := time.Now().UTC().Format(time.RFC3339)
		run.FinishedAt = &now
	}

	var searchID interface{}
	if run.SavedSearchID != nil {
		searchID = *run.SavedSearchID
	}

	_, err := s.db.Exec(`
		INSERT INTO search_runs (id, saved_search_id, keywords, location, jobs_seen, jobs_imported, tags_applied, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID, searchID, run.Keywords, ptrArg(run.Location),
		run.JobsSeen, run.JobsImported, run.TagsApplied,
		ptrArg(run.Error), run.StartedAt, ptrArg(run.FinishedAt),
	)
	if err != nil {
		return errors.Wrapf(err, "record search run %s", run.ID)
	}
	return nil
}

// ListRecent returns the most recent runs, newest first.
func (s *RunStore) ListRecent(limit int) ([]*SearchRun, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT id, saved_search_id, keywords, location, jobs_seen, jobs_imported, tags_applied, error, started_at, finished_at
		FROM search_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list search runs")
	}
	defer rows.Close()

	var runs []*SearchRun
	for rows.Next() {
		var run SearchRun
		err := rows.Scan(
			&run.ID, &run.SavedSearchID, &run.Keywords, &run.Location,
			&run.JobsSeen, &run.JobsImported, &run.TagsApplied,
			&run.Error, &run.StartedAt, &run.FinishedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "scan search run")
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}
