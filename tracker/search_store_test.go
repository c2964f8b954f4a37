package tracker

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	trackertest "github.com/ArseneVrnd/linkedin-mcp-server/internal/testing"
)

func strp(s string) *string { return &s }

func TestSavedSearchLifecycle(t *testing.T) {
	store := NewSavedSearchStore(trackertest.CreateTestDB(t))

	search := &SavedSearch{
		Name:       "Go backend",
		Keywords:   "golang backend",
		Location:   strp("Berlin"),
		AutoImport: true,
		Schedule:   strp("0 9 * * *"),
		IsActive:   true,
	}
	require.NoError(t, store.Create(search))
	require.NotZero(t, search.ID)

	loaded, err := store.Get(search.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go backend", loaded.Name)
	assert.True(t, loaded.AutoImport)
	assert.True(t, loaded.IsActive)
	assert.Nil(t, loaded.LastRun)
	require.NotNil(t, loaded.Schedule)
	assert.Equal(t, "0 9 * * *", *loaded.Schedule)

	loaded.Keywords = "golang sre"
	loaded.Schedule = nil
	require.NoError(t, store.Update(loaded))

	reloaded, err := store.Get(search.ID)
	require.NoError(t, err)
	assert.Equal(t, "golang sre", reloaded.Keywords)
	assert.Nil(t, reloaded.Schedule)

	require.NoError(t, store.Delete(search.ID))
	_, err = store.Get(search.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(search.ID), ErrNotFound)
}

func TestCreateRequiresNameAndKeywords(t *testing.T) {
	store := NewSavedSearchStore(trackertest.CreateTestDB(t))

	assert.Error(t, store.Create(&SavedSearch{Keywords: "golang"}))
	assert.Error(t, store.Create(&SavedSearch{Name: "unnamed"}))
}

func TestListSchedulable(t *testing.T) {
	store := NewSavedSearchStore(trackertest.CreateTestDB(t))

	eligible := &SavedSearch{
		Name: "eligible", Keywords: "golang",
		AutoImport: true, Schedule: strp("0 9 * * *"), IsActive: true,
	}
	require.NoError(t, store.Create(eligible))

	for _, s := range []*SavedSearch{
		{Name: "inactive", Keywords: "golang", AutoImport: true, Schedule: strp("0 9 * * *"), IsActive: false},
		{Name: "manual", Keywords: "golang", AutoImport: false, Schedule: strp("0 9 * * *"), IsActive: true},
		{Name: "no schedule", Keywords: "golang", AutoImport: true, IsActive: true},
		{Name: "empty schedule", Keywords: "golang", AutoImport: true, Schedule: strp(""), IsActive: true},
	} {
		require.NoError(t, store.Create(s))
		assert.False(t, s.Schedulable(), s.Name)
	}

	schedulable, err := store.ListSchedulable()
	require.NoError(t, err)
	require.Len(t, schedulable, 1)
	assert.Equal(t, eligible.ID, schedulable[0].ID)
	assert.True(t, schedulable[0].Schedulable())
}

func TestTouchLastRun(t *testing.T) {
	store := NewSavedSearchStore(trackertest.CreateTestDB(t))

	search := &SavedSearch{Name: "touched", Keywords: "golang"}
	require.NoError(t, store.Create(search))

	require.NoError(t, store.TouchLastRun(search.ID))

	loaded, err := store.Get(search.ID)
	require.NoError(t, err)
	assert.NotNil(t, loaded.LastRun)
}

func TestRunStoreRecordAndList(t *testing.T) {
	conn := trackertest.CreateTestDB(t)
	store := NewRunStore(conn)

	errMsg := "MCP server unreachable"
	older := &SearchRun{
		ID:        uuid.NewString(),
		Keywords:  "golang",
		JobsSeen:  3,
		Error:     &errMsg,
		StartedAt: time.Now().UTC().Add(-time.Hour).Format(time.RFC3339),
	}
	require.NoError(t, store.Record(older))
	assert.NotNil(t, older.FinishedAt, "Record stamps finished_at when unset")

	newer := &SearchRun{
		ID:           uuid.NewString(),
		Keywords:     "golang sre",
		JobsSeen:     5,
		JobsImported: 2,
		TagsApplied:  4,
		StartedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	require.NoError(t, store.Record(newer))

	runs, err := store.ListRecent(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.ID, runs[0].ID, "newest first")
	assert.Equal(t, 2, runs[0].JobsImported)
	require.NotNil(t, runs[1].Error)
	assert.Equal(t, "MCP server unreachable", *runs[1].Error)

	limited, err := store.ListRecent(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
