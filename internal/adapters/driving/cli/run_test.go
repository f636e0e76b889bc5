package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wmc-labs/ditele-cli/internal/core/domain"
	"github.com/wmc-labs/ditele-cli/internal/core/ports/driving"
)

// mockRunner implements driving.PipelineRunner for testing.
type mockRunner struct {
	summary *domain.RunSummary
	err     error
	gotOpts driving.RunOptions
}

func (m *mockRunner) Run(_ context.Context, opts driving.RunOptions) (*domain.RunSummary, error) {
	m.gotOpts = opts
	return m.summary, m.err
}

func setupRunTest(m *mockRunner) func() {
	oldRunner := pipelineRunner
	pipelineRunner = m
	return func() {
		pipelineRunner = oldRunner
		runLimit = 0
		runDryRun = false
	}
}

func successSummary() *domain.RunSummary {
	started := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	return &domain.RunSummary{
		RunID:          "run-123",
		Started:        started,
		Finished:       started.Add(4 * time.Minute),
		OutputFolderID: "out-folder",
		Results: []domain.DocumentResult{
			{Name: "a.docx", Status: domain.StatusCompleted, OutputName: "DiTeLe_a.docx", PairCount: 6},
			{Name: "b.docx", Status: domain.StatusFailed, Stage: domain.StageGenerating, Error: "quota"},
		},
	}
}

func execRoot(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRunCmd_Use(t *testing.T) {
	assert.Equal(t, "run", runCmd.Use)
}

func TestRunCmd_PrintsSummary(t *testing.T) {
	m := &mockRunner{summary: successSummary()}
	cleanup := setupRunTest(m)
	defer cleanup()

	out, err := execRoot("run")

	assert.NoError(t, err)
	assert.Contains(t, out, "run-123")
	assert.Contains(t, out, "2 attempted, 1 succeeded, 1 failed")
	assert.Contains(t, out, "DiTeLe_a.docx")
	assert.Contains(t, out, "FAIL b.docx at generating: quota")
	assert.Contains(t, out, "out-folder")
}

func TestRunCmd_PassesFlags(t *testing.T) {
	m := &mockRunner{summary: successSummary()}
	cleanup := setupRunTest(m)
	defer cleanup()

	_, err := execRoot("run", "--limit", "3", "--dry-run")

	assert.NoError(t, err)
	assert.Equal(t, 3, m.gotOpts.Limit)
	assert.True(t, m.gotOpts.DryRun)
}

func TestRunCmd_StartupFailure(t *testing.T) {
	m := &mockRunner{err: errors.New("storage credential check failed")}
	cleanup := setupRunTest(m)
	defer cleanup()

	_, err := execRoot("run")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "credential check")
}

func TestRunCmd_PerDocumentFailuresExitZero(t *testing.T) {
	// Per-document failures are reported in the summary, not via the
	// process exit code. Only startup-level errors fail the command.
	summary := successSummary()
	summary.Results = []domain.DocumentResult{
		{Name: "a.docx", Status: domain.StatusFailed, Stage: domain.StageExtracting, Error: "empty"},
	}
	m := &mockRunner{summary: summary}
	cleanup := setupRunTest(m)
	defer cleanup()

	out, err := execRoot("run")

	assert.NoError(t, err)
	assert.Contains(t, out, "FAIL a.docx")
}

func TestRunCmd_EmptyRunSucceeds(t *testing.T) {
	summary := successSummary()
	summary.Results = nil
	m := &mockRunner{summary: summary}
	cleanup := setupRunTest(m)
	defer cleanup()

	_, err := execRoot("run")

	assert.NoError(t, err)
}
