package tracker

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	trackertest "github.com/ArseneVrnd/linkedin-mcp-server/internal/testing"
	"github.com/ArseneVrnd/linkedin-mcp-server/parser"
)

func newJobStore(t *testing.T) *JobStore {
	return NewJobStore(trackertest.CreateTestDB(t), zap.NewNop().Sugar())
}

func TestImportCandidateInserts(t *testing.T) {
	store := newJobStore(t)

	result, err := store.ImportCandidate(parser.Candidate{
		Title:      "Backend Engineer",
		Company:    "Acme",
		Location:   "Remote",
		Salary:     "$160k",
		ListingURL: "https://x.com/jobs/123456",
		ExternalID: "123456",
	})
	require.NoError(t, err)
	assert.Equal(t, UpsertInserted, result.Status)
	require.NotZero(t, result.JobID)

	job, err := store.Get(result.JobID)
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", job.Title)
	assert.Equal(t, "Acme", job.Company)
	require.NotNil(t, job.Location)
	assert.Equal(t, "Remote", *job.Location)
	require.NotNil(t, job.ExternalID)
	assert.Equal(t, "123456", *job.ExternalID)
	assert.True(t, job.AutoImported)
	assert.Equal(t, StatusSaved, job.Status)
}

func TestImportCandidateDuplicateExternalID(t *testing.T) {
	store := newJobStore(t)

	first, err := store.ImportCandidate(parser.Candidate{
		Title: "Backend Engineer", Company: "Acme", Location: "Remote", ExternalID: "123456",
	})
	require.NoError(t, err)
	require.Equal(t, UpsertInserted, first.Status)

	// Same external id, different fields: must not create a second row and
	// must not touch the first one.
	second, err := store.ImportCandidate(parser.Candidate{
		Title: "Totally Different", Company: "Other Corp", Location: "Onsite", ExternalID: "123456",
	})
	require.NoError(t, err)
	assert.Equal(t, UpsertDuplicate, second.Status)
	assert.Zero(t, second.JobID)

	ids, err := store.ListIDs()
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	job, err := store.Get(first.JobID)
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", job.Title)
	assert.Equal(t, "Acme", job.Company)
	assert.Equal(t, "Remote", *job.Location)
}

func TestImportCandidateInvalid(t *testing.T) {
	store := newJobStore(t)

	for _, c := range []parser.Candidate{
		{Title: "No Company"},
		{Company: "No Title"},
		{Title: "   ", Company: "Acme"},
	} {
		result, err := store.ImportCandidate(c)
		require.NoError(t, err, "invalid candidates are skipped, not errors")
		assert.Equal(t, UpsertInvalid, result.Status)
	}

	ids, err := store.ListIDs()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestImportCandidateWithoutExternalIDNeverDeduplicates(t *testing.T) {
	store := newJobStore(t)

	for i := 0; i < 2; i++ {
		result, err := store.ImportCandidate(parser.Candidate{Title: "SRE", Company: "Acme"})
		require.NoError(t, err)
		assert.Equal(t, UpsertInserted, result.Status)
	}

	ids, err := store.ListIDs()
	require.NoError(t, err)
	assert.Len(t, ids, 2, "no external id means no idempotency key")
}

func TestGetByExternalID(t *testing.T) {
	store := newJobStore(t)

	inserted, err := store.ImportCandidate(parser.Candidate{
		Title: "SRE", Company: "Acme", ExternalID: "987654",
	})
	require.NoError(t, err)

	job, err := store.GetByExternalID("987654")
	require.NoError(t, err)
	assert.Equal(t, inserted.JobID, job.ID)

	_, err = store.GetByExternalID("000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnrichFillsOnlyAbsentFields(t *testing.T) {
	store := newJobStore(t)

	inserted, err := store.ImportCandidate(parser.Candidate{
		Title: "SRE", Company: "Acme", ExternalID: "123456",
	})
	require.NoError(t, err)

	preset := "Mid-Senior level"
	require.NoError(t, store.Enrich(inserted.JobID, JobDetails{SeniorityLevel: &preset}))

	// Second fetch must not overwrite seniority, only fill what is still null.
	other := "Entry level"
	applicants := int64(42)
	remote := "Remote"
	require.NoError(t, store.Enrich(inserted.JobID, JobDetails{
		SeniorityLevel:  &other,
		ApplicantsCount: &applicants,
		RemoteStatus:    &remote,
	}))

	job, err := store.Get(inserted.JobID)
	require.NoError(t, err)
	require.NotNil(t, job.SeniorityLevel)
	assert.Equal(t, "Mid-Senior level", *job.SeniorityLevel)
	require.NotNil(t, job.ApplicantsCount)
	assert.Equal(t, int64(42), *job.ApplicantsCount)
	require.NotNil(t, job.RemoteStatus)
	assert.Equal(t, "Remote", *job.RemoteStatus)
}

func TestEnrichMissingJob(t *testing.T) {
	store := newJobStore(t)
	err := store.Enrich(42, JobDetails{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateFields(t *testing.T) {
	store := newJobStore(t)

	inserted, err := store.ImportCandidate(parser.Candidate{Title: "SRE", Company: "Acme"})
	require.NoError(t, err)

	err = store.UpdateFields(inserted.JobID, map[string]interface{}{
		"status":        StatusApplied,
		"notes":         "phone screen on Friday",
		"external_id":   "not allowed",
		"bogus_column":  "ignored",
		"auto_imported": 0,
	})
	require.NoError(t, err)

	job, err := store.Get(inserted.JobID)
	require.NoError(t, err)
	assert.Equal(t, StatusApplied, job.Status)
	require.NotNil(t, job.Notes)
	assert.Equal(t, "phone screen on Friday", *job.Notes)
	assert.Nil(t, job.ExternalID, "external_id is not user-editable")
	assert.True(t, job.AutoImported, "auto_imported is not user-editable")

	assert.ErrorIs(t, store.UpdateFields(999, map[string]interface{}{"status": StatusApplied}), ErrNotFound)
}

func TestDeleteJob(t *testing.T) {
	store := newJobStore(t)

	inserted, err := store.ImportCandidate(parser.Candidate{Title: "SRE", Company: "Acme"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(inserted.JobID))
	_, err = store.Get(inserted.JobID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Delete(inserted.JobID), ErrNotFound)
}

func TestImportCandidatePropagatesDriverError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectExec("INSERT OR IGNORE INTO jobs").
		WillReturnError(assert.AnError)

	store := NewJobStore(conn, zap.NewNop().Sugar())
	_, err = store.ImportCandidate(parser.Candidate{Title: "SRE", Company: "Acme"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
