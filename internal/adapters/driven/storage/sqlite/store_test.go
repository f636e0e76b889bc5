package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wmc-labs/ditele-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/wmc-labs/ditele-cli/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})

	return store
}

func sampleResult(name string) domain.DocumentResult {
	return domain.DocumentResult{
		Name:       name,
		SourceID:   "src-" + name,
		Status:     domain.StatusCompleted,
		OutputName: "DiTeLe_" + name + ".docx",
		PairCount:  12,
		Duration:   95 * time.Second,
	}
}

func TestSaveRun(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	summary := domain.RunSummary{
		RunID:          "run-1",
		Started:        time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		Finished:       time.Date(2025, 3, 10, 9, 42, 0, 0, time.UTC),
		OutputFolderID: "folder-abc",
		Results: []domain.DocumentResult{
			sampleResult("netzplantechnik"),
			{Name: "broken", Status: domain.StatusFailed, Stage: domain.StageExtracting, Error: "boom"},
		},
	}

	require.NoError(t, store.SaveRun(ctx, summary))

	var attempted, succeeded int
	var folderID string
	row := store.db.QueryRow("SELECT attempted, succeeded, output_folder_id FROM runs WHERE run_id = ?", "run-1")
	require.NoError(t, row.Scan(&attempted, &succeeded, &folderID))
	assert.Equal(t, 2, attempted)
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, "folder-abc", folderID)
}

func TestSaveRun_Upsert(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	summary := domain.RunSummary{RunID: "run-1", Started: time.Now(), Finished: time.Now()}
	require.NoError(t, store.SaveRun(ctx, summary))

	summary.OutputFolderID = "later"
	summary.Results = []domain.DocumentResult{sampleResult("doc")}
	require.NoError(t, store.SaveRun(ctx, summary))

	var count, attempted int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count))
	require.NoError(t, store.db.QueryRow("SELECT attempted FROM runs WHERE run_id = ?", "run-1").Scan(&attempted))
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, attempted)
}

func TestSaveResult(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	result := sampleResult("projektmanagement")
	result.Missing = []string{"CHECKLISTE", "LERNZIELE"}
	require.NoError(t, store.SaveResult(ctx, "run-7", result))

	var status, stage, missing string
	var pairCount int
	var durationMs int64
	row := store.db.QueryRow(
		"SELECT status, stage, missing, pair_count, duration_ms FROM run_results WHERE run_id = ?", "run-7")
	require.NoError(t, row.Scan(&status, &stage, &missing, &pairCount, &durationMs))
	assert.Equal(t, "completed", status)
	assert.Empty(t, stage)
	assert.Equal(t, "CHECKLISTE, LERNZIELE", missing)
	assert.Equal(t, 12, pairCount)
	assert.Equal(t, int64(95000), durationMs)
}

func TestSaveResult_MultiplePerRun(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, store.SaveResult(ctx, "run-1", sampleResult(name)))
	}
	require.NoError(t, store.SaveResult(ctx, "run-2", sampleResult("d")))

	var count int
	require.NoError(t, store.db.QueryRow(
		"SELECT COUNT(*) FROM run_results WHERE run_id = ?", "run-1").Scan(&count))
	assert.Equal(t, 3, count)
}

func TestMigrationsIdempotent(t *testing.T) {
	store := setupTestStore(t)

	// Re-running migrations against an up-to-date database is a no-op.
	require.NoError(t, store.migrate(migrations.FS))
}
