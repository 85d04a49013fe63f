package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/dartfocus/internal/config"
)

// writeTestConfig drops a minimal config with an in-memory cache so tests
// never touch the user's cache directory.
func writeTestConfig(t *testing.T, extra string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "cache:\n  backend: memory\n  enabled: true\n" + extra
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_Version(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "test")
}

func TestRootCmd_Help(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "company")
	assert.Contains(t, out, "cache")
	assert.Contains(t, out, "serve")
}

func TestRootCmd_BadConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache: ["), 0o600))

	_, err := execute(t, "--config", path, "cache", "sweep")
	assert.Error(t, err)
}

func TestCompanyCmd_RequiresAPIKey(t *testing.T) {
	if os.Getenv("DARTFOCUS_API_KEY") != "" {
		t.Skip("DARTFOCUS_API_KEY set in environment")
	}

	cfg := writeTestConfig(t, "")
	_, err := execute(t, "--config", cfg, "company", "00126380")
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
}

func TestCompanyCmd_RequiresCorpCode(t *testing.T) {
	cfg := writeTestConfig(t, "")
	_, err := execute(t, "--config", cfg, "company")
	assert.Error(t, err)
}
