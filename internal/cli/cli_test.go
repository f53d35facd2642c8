package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"catalogadmin/internal/config"
)

func runConfigCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"config"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigCommandAppliesFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := config.DefaultConfig()
	cfg.Token = "secret-token"
	require.NoError(t, config.NewConfigService(path).Save(cfg))

	out, err := runConfigCmd(t, "--config", path, "--api-url", "https://catalog.example/api/", "--lang", "lat", "--no-mouse")
	require.NoError(t, err)

	assert.Contains(t, out, "# "+path)
	assert.Contains(t, out, "https://catalog.example/api/")
	assert.Contains(t, out, "lat")
	assert.Contains(t, out, "<redacted>")
	assert.NotContains(t, out, "secret-token")
	assert.Contains(t, out, "false", "mouse is switched off")
}

func TestConfigCommandRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	_, err := runConfigCmd(t, "--config", path, "--lang", "de")
	assert.ErrorContains(t, err, "unknown language")

	_, err = runConfigCmd(t, "--config", path, "--invalid-policy", "loud")
	assert.Error(t, err)
}

func TestNewLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "catalogadmin.log")
	lggr, err := NewLogger(path, zapcore.InfoLevel)
	require.NoError(t, err)

	lggr.Debugw("hidden")
	lggr.Infow("hello", "resource", "books")
	_ = lggr.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), "books")
	assert.NotContains(t, string(data), "hidden")

	nop, err := NewLogger("", zapcore.DebugLevel)
	require.NoError(t, err)
	nop.Infow("dropped")
}
