package tracker

import (
	"database/sql"

	"github.com/ArseneVrnd/linkedin-mcp-server/errors"
)

// SavedSearch is a user-defined recurring job search. A search owns a live
// scheduler trigger only while IsActive, AutoImport and Schedule all hold.
type SavedSearch struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Keywords   string  `json:"keywords"`
	Location   *string `json:"location"`
	Filters    *string `json:"filters"`
	AutoImport bool    `json:"auto_import"`
	Schedule   *string `json:"schedule"`
	LastRun    *string `json:"last_run"`
	IsActive   bool    `json:"is_active"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

// Schedulable reports whether this search is eligible for a recurring
// trigger.
func (s *SavedSearch) Schedulable() bool {
	return s.IsActive && s.AutoImport && s.Schedule != nil && *s.Schedule != ""
}

// SavedSearchStore handles persistence of saved searches
type SavedSearchStore struct {
	db *sql.DB
}

// NewSavedSearchStore creates a new saved-search store
func NewSavedSearchStore(db *sql.DB) *SavedSearchStore {
	return &SavedSearchStore{db: db}
}

const searchColumns = `id, name, keywords, location, filters, auto_import, schedule, last_run, is_active, created_at, updated_at`

// Create inserts a new saved search and fills in its assigned id.
func (s *SavedSearchStore) Create(search *SavedSearch) error {
	if search.Name == "" || search.Keywords == "" {
		return errors.New("name and keywords are required")
	}

	res, err := s.db.Exec(`
		INSERT INTO saved_searches (name, keywords, location, filters, auto_import, schedule, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		search.Name, search.Keywords,
		ptrArg(search.Location), ptrArg(search.Filters),
		boolArg(search.AutoImport), ptrArg(search.Schedule), boolArg(search.IsActive),
	)
	if err != nil {
		return errors.Wrapf(err, "create saved search %q", search.Name)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "last insert id")
	}
	search.ID = id
	return nil
}

// Get retrieves a saved search by id.
func (s *SavedSearchStore) Get(id int64) (*SavedSearch, error) {
	row := s.db.QueryRow(`SELECT `+searchColumns+` FROM saved_searches WHERE id = ?`, id)
	return scanSearch(row, id)
}

// List returns all saved searches, newest first.
func (s *SavedSearchStore) List() ([]*SavedSearch, error) {
	rows, err := s.db.Query(`SELECT ` + searchColumns + ` FROM saved_searches ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "list saved searches")
	}
	defer rows.Close()

	var searches []*SavedSearch
	for rows.Next() {
		search, err := scanSearch(rows, 0)
		if err != nil {
			return nil, err
		}
		searches = append(searches, search)
	}
	return searches, rows.Err()
}

// ListSchedulable returns the searches eligible for a recurring trigger:
// active, auto-import enabled, schedule present.
func (s *SavedSearchStore) ListSchedulable() ([]*SavedSearch, error) {
	rows, err := s.db.Query(`
		SELECT ` + searchColumns + ` FROM saved_searches
		WHERE is_active = 1 AND auto_import = 1 AND schedule IS NOT NULL AND schedule != ''
	`)
	if err != nil {
		return nil, errors.Wrap(err, "list schedulable searches")
	}
	defer rows.Close()

	var searches []*SavedSearch
	for rows.Next() {
		search, err := scanSearch(rows, 0)
		if err != nil {
			return nil, err
		}
		searches = append(searches, search)
	}
	return searches, rows.Err()
}

// Update replaces the editable fields of a saved search.
func (s *SavedSearchStore) Update(search *SavedSearch) error {
	res, err := s.db.Exec(`
		UPDATE saved_searches
		SET name = ?, keywords = ?, location = ?, filters = ?, auto_import = ?,
		    schedule = ?, is_active = ?, updated_at = datetime('now')
		WHERE id = ?
	`,
		search.Name, search.Keywords,
		ptrArg(search.Location), ptrArg(search.Filters),
		boolArg(search.AutoImport), ptrArg(search.Schedule), boolArg(search.IsActive),
		search.ID,
	)
	if err != nil {
		return errors.Wrapf(err, "update saved search %d", search.ID)
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

// Delete removes a saved search.
func (s *SavedSearchStore) Delete(id int64) error {
	res, err := s.db.Exec(`DELETE FROM saved_searches WHERE id = ?`, id)
	if err != nil {
		return errors.Wrapf(err, "delete saved search %d", id)
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

// TouchLastRun records that the search was just executed. Called on every
// execution, imported jobs or not.
func (s *SavedSearchStore) TouchLastRun(id int64) error {
	_, err := s.db.Exec(`UPDATE saved_searches SET last_run = datetime('now') WHERE id = ?`, id)
	if err != nil {
		return errors.Wrapf(err, "touch last_run for search %d", id)
	}
	return nil
}

func scanSearch(row scanner, id int64) (*SavedSearch, error) {
	var search SavedSearch
	var autoImport, isActive int64

	err := row.Scan(
		&search.ID, &search.Name, &search.Keywords, &search.Location,
		&search.Filters, &autoImport, &search.Schedule, &search.LastRun,
		&isActive, &search.CreatedAt, &search.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.Wrapf(ErrNotFound, "saved search %d", id)
		}
		return nil, errors.Wrap(err, "scan saved search")
	}
	search.AutoImport = autoImport != 0
	search.IsActive = isActive != 0
	return &search, nil
}

func boolArg(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
