package tracker

import (
	"database/sql"

	"github.com/ArseneVrnd/linkedin-mcp-server/errors"
)

// Tag is a named label attached to jobs.
type Tag struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// TagStore handles persistence of tags and job-tag associations
type TagStore struct {
	db *sql.DB
}

// NewTagStore creates a new tag store
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

// Ensure returns the tag with the given name, creating it with the given
// color if absent. Safe under concurrent callers: INSERT OR IGNORE first,
// then read back whichever row won.
func (s *TagStore) Ensure(name, color string) (*Tag, error) {
	if _, err := s.db.Exec(`INSERT OR IGNORE INTO tags (name, color) VALUES (?, ?)`, name, color); err != nil {
		return nil, errors.Wrapf(err, "ensure tag %q", name)
	}

	var tag Tag
	err := s.db.QueryRow(`SELECT id, name, color FROM tags WHERE name = ?`, name).
		Scan(&tag.ID, &tag.Name, &tag.Color)
	if err != nil {
		return nil, errors.Wrapf(err, "read back tag %q", name)
	}
	return &tag, nil
}

// EnsureAssociation links a tag to a job. Linking an already linked pair is
// a no-op, not an error.
func (s *TagStore) EnsureAssociation(jobID, tagID int64) error {
	_, err := s.db.Exec(`INSERT OR IGNORE INTO job_tags (job_id, tag_id) VALUES (?, ?)`, jobID, tagID)
	if err != nil {
		return errors.Wrapf(err, "associate tag %d with job %d", tagID, jobID)
	}
	return nil
}

// RemoveAssociation unlinks a tag from a job.
func (s *TagStore) RemoveAssociation(jobID, tagID int64) error {
	_, err := s.db.Exec(`DELETE FROM job_tags WHERE job_id = ? AND tag_id = ?`, jobID, tagID)
	if err != nil {
		return errors.Wrapf(err, "remove tag %d from job %d", tagID, jobID)
	}
	return nil
}

// ForJob returns the tags attached to a job, in name order.
func (s *TagStore) ForJob(jobID int64) ([]Tag, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.name, t.color FROM tags t
		JOIN job_tags jt ON t.id = jt.tag_id
		WHERE jt.job_id = ?
		ORDER BY t.name
	`, jobID)
	if err != nil {
		return nil, errors.Wrapf(err, "tags for job %d", jobID)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var tag Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color); err != nil {
			return nil, errors.Wrap(err, "scan tag")
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// List returns all tags in name order.
func (s *TagStore) List() ([]Tag, error) {
	rows, err := s.db.Query(`SELECT id, name, color FROM tags ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "list tags")
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var tag Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color); err != nil {
			return nil, errors.Wrap(err, "scan tag")
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// Delete removes a tag and, via cascade, its associations.
func (s *TagStore) Delete(id int64) error {
	res, err := s.db.Exec(`DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return errors.Wrapf(err, "delete tag %d", id)
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
