package tracker

import (
	"database/sql"
	"strings"

	"go.uber.org/zap"

	"github.com/ArseneVrnd/linkedin-mcp-server/errors"
	"github.com/ArseneVrnd/linkedin-mcp-server/parser"
)

// Job is a tracked job posting. Optional columns are pointers so that absent
// values survive the round trip to JSON and SQL untouched.
type Job struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	Company         string  `json:"company"`
	Location        *string `json:"location"`
	Salary          *string `json:"salary"`
	Description     *string `json:"description"`
	Status          string  `json:"status"`
	ApplyURL        *string `json:"apply_url"`
	ListingURL      *string `json:"listing_url"`
	ExternalID      *string `json:"external_id"`
	Notes           *string `json:"notes"`
	Skills          *string `json:"skills"`
	SalaryRange     *string `json:"salary_range"`
	SeniorityLevel  *string `json:"seniority_level"`
	EmploymentType  *string `json:"employment_type"`
	RemoteStatus    *string `json:"remote_status"`
	Benefits        *string `json:"benefits"`
	ApplicantsCount *int64  `json:"applicants_count"`
	PostedDate      *string `json:"posted_date"`
	CompanyURL      *string `json:"company_url"`
	AutoImported    bool    `json:"auto_imported"`
	DateAdded       string  `json:"date_added"`
	DateApplied     *string `json:"date_applied"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// UpsertStatus classifies the outcome of one candidate import.
type UpsertStatus string

const (
	UpsertInserted  UpsertStatus = "inserted"
	UpsertDuplicate UpsertStatus = "duplicate"
	UpsertInvalid   UpsertStatus = "invalid"
)

// UpsertResult reports what happened to a single candidate.
type UpsertResult struct {
	Status UpsertStatus `json:"status"`
	JobID  int64        `json:"job_id,omitempty"`
	Reason string       `json:"reason,omitempty"`
}

// JobStore handles persistence of job postings
type JobStore struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// NewJobStore creates a new job store
func NewJobStore(db *sql.DB, logger *zap.SugaredLogger) *JobStore {
	return &JobStore{db: db, logger: logger}
}

const jobColumns = `id, title, company, location, salary, description, status,
	apply_url, listing_url, external_id, notes, skills, salary_range,
	seniority_level, employment_type, remote_status, benefits,
	applicants_count, posted_date, company_url, auto_imported,
	date_added, date_applied, created_at, updated_at`

// ImportCandidate persists a parsed candidate with at-most-once semantics.
// The UNIQUE constraint on external_id is the source of truth for duplicate
// suppression: INSERT OR IGNORE plus a rows-affected check, no pre-read.
// Candidates missing title or company are rejected as invalid, not errors.
func (s *JobStore) ImportCandidate(c parser.Candidate) (UpsertResult, error) {
	if strings.TrimSpace(c.Title) == "" || strings.TrimSpace(c.Company) == "" {
		return UpsertResult{Status: UpsertInvalid, Reason: "title and company are required"}, nil
	}

	res, err := s.db.Exec(`
		INSERT OR IGNORE INTO jobs (title, company, location, salary, listing_url, external_id, status, auto_imported)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1)
	`,
		strings.TrimSpace(c.Title),
		strings.TrimSpace(c.Company),
		nullable(c.Location),
		nullable(c.Salary),
		nullable(c.ListingURL),
		nullable(c.ExternalID),
		StatusSaved,
	)
	if err != nil {
		return UpsertResult{}, errors.Wrapf(err, "import candidate %q", c.Title)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return UpsertResult{}, errors.Wrap(err, "rows affected")
	}
	if affected == 0 {
		if s.logger != nil {
			s.logger.Debugw("Skipped duplicate job", "title", c.Title, "external_id", c.ExternalID)
		}
		return UpsertResult{Status: UpsertDuplicate}, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return UpsertResult{}, errors.Wrap(err, "last insert id")
	}
	return UpsertResult{Status: UpsertInserted, JobID: id}, nil
}

// Get retrieves a job by id. Returns ErrNotFound if it does not exist.
func (s *JobStore) Get(id int64) (*Job, error) {
	row := s.db.QueryRow(`SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	return scanJob(row, id)
}

// GetByExternalID retrieves a job by its external listing id.
func (s *JobStore) GetByExternalID(externalID string) (*Job, error) {
	row := s.db.QueryRow(`SELECT `+jobColumns+` FROM jobs WHERE external_id = ?`, externalID)
	job, err := scanJob(row, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "job with external id %s", externalID)
	}
	return job, nil
}

// List returns jobs, newest first, optionally filtered by status.
func (s *JobStore) List(status string) ([]*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY date_added DESC, id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list jobs")
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows, 0)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// ListIDs returns the ids of every stored job, used by whole-store tagging.
func (s *JobStore) ListIDs() ([]int64, error) {
	rows, err := s.db.Query(`SELECT id FROM jobs ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "list job ids")
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan job id")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Create inserts a manually entered job. Unlike ImportCandidate this is not
// idempotent: a duplicate external id is surfaced as an error so the API can
// answer 409.
func (s *JobStore) Create(job *Job) error {
	if strings.TrimSpace(job.Title) == "" || strings.TrimSpace(job.Company) == "" {
		return errors.New("title and company are required")
	}
	status := job.Status
	if status == "" {
		status = StatusSaved
	}

	res, err := s.db.Exec(`
		INSERT INTO jobs (title, company, location, salary, description, status, apply_url, listing_url, external_id, notes, date_applied)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		job.Title, job.Company,
		ptrArg(job.Location), ptrArg(job.Salary), ptrArg(job.Description),
		status,
		ptrArg(job.ApplyURL), ptrArg(job.ListingURL), ptrArg(job.ExternalID),
		ptrArg(job.Notes), ptrArg(job.DateApplied),
	)
	if err != nil {
		return errors.Wrapf(err, "create job %q", job.Title)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "last insert id")
	}
	job.ID = id
	job.Status = status
	return nil
}

// UpdateFields applies a partial update of user-editable columns.
func (s *JobStore) UpdateFields(id int64, fields map[string]interface{}) error {
	allowed := map[string]bool{
		"title": true, "company": true, "location": true, "salary": true,
		"description": true, "status": true, "apply_url": true,
		"listing_url": true, "notes": true, "date_applied": true,
	}

	var sets []string
	var args []interface{}
	for col, val := range fields {
		if !allowed[col] {
			continue
		}
		sets = append(sets, col+" = ?")
		args = append(args, val)
	}
	if len(sets) == 0 {
		return errors.New("no fields to update")
	}

	sets = append(sets, "updated_at = datetime('now')")
	args = append(args, id)

	res, err := s.db.Exec(`UPDATE jobs SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return errors.Wrapf(err, "update job %d", id)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a job. Tag associations cascade.
func (s *JobStore) Delete(id int64) error {
	res, err := s.db.Exec(`DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return errors.Wrapf(err, "delete job %d", id)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows so scanJob serves both.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row scanner, id int64) (*Job, error) {
	var job Job
	var autoImported int64

	err := row.Scan(
		&job.ID, &job.Title, &job.Company, &job.Location, &job.Salary,
		&job.Description, &job.Status, &job.ApplyURL, &job.ListingURL,
		&job.ExternalID, &job.Notes, &job.Skills, &job.SalaryRange,
		&job.SeniorityLevel, &job.EmploymentType, &job.RemoteStatus,
		&job.Benefits, &job.ApplicantsCount, &job.PostedDate, &job.CompanyURL,
		&autoImported, &job.DateAdded, &job.DateApplied, &job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.Wrapf(ErrNotFound, "job %d", id)
		}
		return nil, errors.Wrap(err, "scan job")
	}
	job.AutoImported = autoImported != 0
	return &job, nil
}

// ptrArg converts an optional field to a SQL argument.
func ptrArg(p *string) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
