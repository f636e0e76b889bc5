package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wmc-labs/ditele-cli/internal/core/domain"
)

// writeTestConfig writes a config file with a valid credentials stub and
// returns its path.
func writeTestConfig(t *testing.T, body string) string {
	t.Helper()

	dir := t.TempDir()
	credPath := filepath.Join(dir, "sa.json")
	require.NoError(t, os.WriteFile(credPath, []byte("{}"), 0600))

	content := `
[google]
credentials_file = "` + credPath + `"
source_folder_id = "folder-src"

[gemini]
api_key = "test-key"
` + body

	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0600))
	return cfgPath
}

func TestLoadConfig_Minimal(t *testing.T) {
	path := writeTestConfig(t, "")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "folder-src", cfg.Google.SourceFolderID)
	assert.Equal(t, "test-key", cfg.Gemini.APIKey)
}

func TestLoadConfig_FullPipelineSection(t *testing.T) {
	path := writeTestConfig(t, `
[pipeline]
pause_seconds = 5
test_mode = true
test_mode_limit = 3
low_batch_size = 6
denylist = ["Chatbot", "Assistent"]
required_sections = ["THEMENLISTE", "CHECKLISTE"]
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	runner := cfg.RunnerConfig()
	assert.Equal(t, 5*time.Second, runner.PauseBetweenDocs)
	assert.True(t, runner.TestMode)
	assert.Equal(t, 3, runner.TestModeLimit)

	planner := cfg.PlannerConfig()
	assert.Equal(t, 6, planner.LowBatchSize)

	assert.Equal(t, []string{"Chatbot", "Assistent"}, cfg.CleanerConfig().Denylist)
	assert.Equal(t, []string{"THEMENLISTE", "CHECKLISTE"}, cfg.RequiredSections())
}

func TestLoadConfig_DefaultsPassThrough(t *testing.T) {
	path := writeTestConfig(t, "")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	// Unset values stay zero so service defaults apply downstream.
	assert.Zero(t, cfg.GenerationConfig().MaxRetries)
	assert.Zero(t, cfg.RunnerConfig().PauseBetweenDocs)
	assert.NotEmpty(t, cfg.RequiredSections())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingConfig)
}

func TestLoadConfig_MissingRequiredKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[google]
source_folder_id = "x"
`), 0600))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingConfig)
	assert.Contains(t, err.Error(), "credentials_file")
}

func TestLoadConfig_CredentialsFileNotReadable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[google]
credentials_file = "`+filepath.Join(dir, "missing.json")+`"
source_folder_id = "x"

[gemini]
api_key = "k"
`), 0600))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingConfig)
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [valid"), 0600))

	_, err := LoadConfig(path)
	require.Error(t, err)
}
