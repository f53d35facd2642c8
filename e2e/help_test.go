//go:build e2e && unix

package e2e

import (
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpCommand(t *testing.T) {
	t.Parallel()

	// Run directly, not through a PTY, since it exits quickly
	out, err := exec.Command(binPath, "--help").CombinedOutput()
	require.NoError(t, err, "help command should run without error")

	output := string(out)
	assert.Contains(t, output, "Usage")
	assert.Contains(t, output, "--api-url")
	assert.Contains(t, output, "--invalid-policy")
}

func TestConfigCommand(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.toml")

	out, err := exec.Command(binPath, "config", "--config", path, "--lang", "lat").CombinedOutput()
	require.NoError(t, err, string(out))
	assert.Contains(t, string(out), "# "+path)
	assert.Contains(t, string(out), "lat")

	out, err = exec.Command(binPath, "config", "--config", path, "--lang", "de").CombinedOutput()
	assert.Error(t, err)
	assert.Contains(t, string(out), "unknown language")
}
