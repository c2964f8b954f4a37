package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ArseneVrnd/linkedin-mcp-server/autotag"
	"github.com/ArseneVrnd/linkedin-mcp-server/errors"
	trackertest "github.com/ArseneVrnd/linkedin-mcp-server/internal/testing"
	"github.com/ArseneVrnd/linkedin-mcp-server/tracker"
)

type fakeTool struct {
	payload   string
	searchErr error
	calls     int

	details    *tracker.JobDetails
	detailsErr error
}

func (f *fakeTool) SearchJobs(ctx context.Context, keywords, location string, limit int) (string, error) {
	f.calls++
	if f.searchErr != nil {
		return "", f.searchErr
	}
	return f.payload, nil
}

func (f *fakeTool) GetJobDetails(ctx context.Context, externalID string) (*tracker.JobDetails, error) {
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	return f.details, nil
}

type fixture struct {
	svc      *Service
	jobs     *tracker.JobStore
	tags     *tracker.TagStore
	searches *tracker.SavedSearchStore
	runs     *tracker.RunStore
	tool     *fakeTool
}

func newFixture(t *testing.T, tool *fakeTool) *fixture {
	conn := trackertest.CreateTestDB(t)
	log := zap.NewNop().Sugar()

	jobs := tracker.NewJobStore(conn, log)
	tags := tracker.NewTagStore(conn)
	searches := tracker.NewSavedSearchStore(conn)
	runs := tracker.NewRunStore(conn)
	engine := autotag.NewEngine(jobs, tags, log)

	svc := New(jobs, searches, runs, engine, tool, tool, Config{DefaultLimit: 25}, log)
	return &fixture{svc: svc, jobs: jobs, tags: tags, searches: searches, runs: runs, tool: tool}
}

const samplePayload = `1. Title: Senior Backend Engineer
   Company: Acme
   Location: Remote
   Salary: $180k - $220k
   URL: https://www.example.com/jobs/view/9876543210

2. Title: Software Engineer
   Company: Beta Corp
   Location: Berlin
`

func TestExecuteFullCycle(t *testing.T) {
	f := newFixture(t, &fakeTool{payload: samplePayload})

	result, err := f.svc.Execute(context.Background(), Params{Keywords: "golang"})
	require.NoError(t, err)

	assert.Equal(t, 2, result.JobsSeen)
	assert.Equal(t, 2, result.Imported)
	assert.Zero(t, result.Duplicates)
	assert.Zero(t, result.Invalid)
	assert.False(t, result.Degenerate)
	require.Len(t, result.ImportedJobs, 2)

	first := result.ImportedJobs[0]
	assert.Equal(t, "Senior Backend Engineer", first.Title)
	require.NotNil(t, first.ExternalID)
	assert.Equal(t, "9876543210", *first.ExternalID)

	// The first job earns Remote, High Salary and Senior.
	assert.Equal(t, 3, result.TagsApplied)
	attached, err := f.tags.ForJob(first.ID)
	require.NoError(t, err)
	assert.Len(t, attached, 3)

	runs, err := f.runs.ListRecent(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, result.RunID, runs[0].ID)
	assert.Equal(t, 2, runs[0].JobsSeen)
	assert.Equal(t, 2, runs[0].JobsImported)
	assert.Nil(t, runs[0].Error)
}

func TestExecuteSecondRunCountsDuplicates(t *testing.T) {
	f := newFixture(t, &fakeTool{payload: samplePayload})

	_, err := f.svc.Execute(context.Background(), Params{Keywords: "golang"})
	require.NoError(t, err)

	second, err := f.svc.Execute(context.Background(), Params{Keywords: "golang"})
	require.NoError(t, err)

	// Only the listing with an external id deduplicates; the one without a
	// stable key inserts again.
	assert.Equal(t, 1, second.Duplicates)
	assert.Equal(t, 1, second.Imported)
	require.Len(t, second.ImportedJobs, 1)
	assert.Nil(t, second.ImportedJobs[0].ExternalID)
}

func TestExecuteRequiresKeywords(t *testing.T) {
	f := newFixture(t, &fakeTool{payload: samplePayload})

	_, err := f.svc.Execute(context.Background(), Params{Keywords: "   "})
	assert.Error(t, err)
	assert.Zero(t, f.tool.calls, "tool is not called without keywords")
}

func TestExecuteToolFailureIsFatal(t *testing.T) {
	f := newFixture(t, &fakeTool{searchErr: errors.New("connection refused")})

	_, err := f.svc.Execute(context.Background(), Params{Keywords: "golang"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrToolUnavailable)

	ids, err := f.jobs.ListIDs()
	require.NoError(t, err)
	assert.Empty(t, ids)

	// Failed executions still leave a run record carrying the error.
	runs, err := f.runs.ListRecent(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.NotNil(t, runs[0].Error)
	assert.Contains(t, *runs[0].Error, "connection refused")
}

func TestExecuteDegeneratePayload(t *testing.T) {
	f := newFixture(t, &fakeTool{payload: "No results found for this query."})

	result, err := f.svc.Execute(context.Background(), Params{Keywords: "golang"})
	require.NoError(t, err)
	assert.True(t, result.Degenerate)
	assert.Equal(t, "No results found for this query.", result.Raw)
	assert.Zero(t, result.JobsSeen)
}

func TestExecuteEmptyPayloadNotDegenerate(t *testing.T) {
	f := newFixture(t, &fakeTool{payload: ""})

	result, err := f.svc.Execute(context.Background(), Params{Keywords: "golang"})
	require.NoError(t, err)
	assert.False(t, result.Degenerate)
	assert.Zero(t, result.JobsSeen)
}

func TestExecuteSearchTouchesLastRun(t *testing.T) {
	f := newFixture(t, &fakeTool{payload: ""})

	search := &tracker.SavedSearch{Name: "daily", Keywords: "golang", IsActive: true}
	require.NoError(t, f.searches.Create(search))
	require.Nil(t, search.LastRun)

	// Zero candidates imported, yet last_run is still stamped.
	_, err := f.svc.ExecuteSearch(context.Background(), search)
	require.NoError(t, err)

	reloaded, err := f.searches.Get(search.ID)
	require.NoError(t, err)
	assert.NotNil(t, reloaded.LastRun)

	runs, err := f.runs.ListRecent(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.NotNil(t, runs[0].SavedSearchID)
	assert.Equal(t, search.ID, *runs[0].SavedSearchID)
}

func TestExecuteStructuredPayload(t *testing.T) {
	payload := `[{"title":"SRE","company":"Acme","location":"Remote","job_id":"123456"}]`
	f := newFixture(t, &fakeTool{payload: payload})

	result, err := f.svc.Execute(context.Background(), Params{Keywords: "sre"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.ImportedJobs, 1)
	require.NotNil(t, result.ImportedJobs[0].ExternalID)
	assert.Equal(t, "123456", *result.ImportedJobs[0].ExternalID)
}

func TestEnrichJobFillsAndRetags(t *testing.T) {
	employment := "Full-time"
	applicants := int64(250)
	tool := &fakeTool{
		payload: samplePayload,
		details: &tracker.JobDetails{
			EmploymentType:  &employment,
			ApplicantsCount: &applicants,
		},
	}
	f := newFixture(t, tool)

	result, err := f.svc.Execute(context.Background(), Params{Keywords: "golang"})
	require.NoError(t, err)
	jobID := result.ImportedJobs[0].ID

	job, tags, err := f.svc.EnrichJob(context.Background(), jobID)
	require.NoError(t, err)
	require.NotNil(t, job.EmploymentType)
	assert.Equal(t, "Full-time", *job.EmploymentType)
	require.NotNil(t, job.ApplicantsCount)
	assert.Equal(t, int64(250), *job.ApplicantsCount)

	// Enriched fields unlock Full-time and Competitive on top of the tags
	// applied at import time.
	assert.Contains(t, tags, "Full-time")
	assert.Contains(t, tags, "Competitive")
}

func TestEnrichJobWithoutExternalID(t *testing.T) {
	f := newFixture(t, &fakeTool{payload: samplePayload})

	result, err := f.svc.Execute(context.Background(), Params{Keywords: "golang"})
	require.NoError(t, err)
	require.Len(t, result.ImportedJobs, 2)

	// The second imported job has no external id.
	_, _, err = f.svc.EnrichJob(context.Background(), result.ImportedJobs[1].ID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrToolUnavailable)
}

func TestEnrichJobToolFailure(t *testing.T) {
	tool := &fakeTool{payload: samplePayload, detailsErr: errors.New("timeout")}
	f := newFixture(t, tool)

	result, err := f.svc.Execute(context.Background(), Params{Keywords: "golang"})
	require.NoError(t, err)

	_, _, err = f.svc.EnrichJob(context.Background(), result.ImportedJobs[0].ID)
	assert.ErrorIs(t, err, ErrToolUnavailable)
}

func TestEnrichJobNotFound(t *testing.T) {
	f := newFixture(t, &fakeTool{})

	_, _, err := f.svc.EnrichJob(context.Background(), 42)
	assert.ErrorIs(t, err, tracker.ErrNotFound)
}

var (
	_ SearchTool = (*fakeTool)(nil)
	_ DetailTool = (*fakeTool)(nil)
)
