// Package testutil provides shared test helpers for creating config files and stored note fixtures.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/outliner/internal/note"
	"github.com/at-ishikawa/outliner/internal/outline"
)

// TestUserID is the user written into generated configs.
const TestUserID = "alice"

// SetupTestConfig creates a config file that keeps notes and exports under tmpDir.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()
	return writeConfig(t, tmpDir, "")
}

// SetupTestConfigWithAPIKey creates a config file with a fake OpenAI API key that talks to
// baseURL, usually an httptest server.
func SetupTestConfigWithAPIKey(t *testing.T, tmpDir, baseURL string) string {
	t.Helper()
	return writeConfig(t, tmpDir, fmt.Sprintf(`openai:
  api_key: fake-key-for-testing
  model: gpt-4o-mini
  base_url: %s
`, baseURL))
}

func writeConfig(t *testing.T, tmpDir, extra string) string {
	t.Helper()

	for _, d := range []string{"notes", "export"} {
		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, d), 0755))
	}

	configContent := fmt.Sprintf(`store:
  driver: local
  local_directory: %s
editor:
  user_id: %s
  save_debounce_ms: 0
export:
  output_directory: %s
`,
		StoreDirectory(tmpDir),
		TestUserID,
		ExportDirectory(tmpDir),
	) + extra

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// StoreDirectory is where the generated config keeps notes.
func StoreDirectory(tmpDir string) string {
	return filepath.Join(tmpDir, "notes")
}

// ExportDirectory is where the generated config writes exports.
func ExportDirectory(tmpDir string) string {
	return filepath.Join(tmpDir, "export")
}

// Store opens the local repository the generated config points at.
func Store(tmpDir string) *note.LocalRepository {
	return note.NewLocalRepository(StoreDirectory(tmpDir), outline.NewEngine())
}

// SeedNote stores n for TestUserID under tmpDir.
func SeedNote(t *testing.T, tmpDir string, n *note.Note) {
	t.Helper()
	require.NoError(t, Store(tmpDir).SaveNote(context.Background(), TestUserID, n.ID, n))
}

// SeedNotebook creates a notebook for TestUserID under tmpDir.
func SeedNotebook(t *testing.T, tmpDir, name string) *note.Notebook {
	t.Helper()
	nb, err := Store(tmpDir).CreateNotebook(context.Background(), TestUserID, name)
	require.NoError(t, err)
	return nb
}

// LoadNote reads a note of TestUserID back from tmpDir.
func LoadNote(t *testing.T, tmpDir, noteID string) *note.Note {
	t.Helper()
	n, err := Store(tmpDir).LoadNote(context.Background(), TestUserID, noteID)
	require.NoError(t, err)
	return n
}
