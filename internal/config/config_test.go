package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PRQUEUE_ORG", "PRQUEUE_REPO", "SLACK_NICKS_FILE", "SLACK_WEBHOOK_URL", "SLACK_NICKS_KEY"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Empty(t, cfg.Org)
	assert.Empty(t, cfg.Repo)
	assert.Equal(t, "slack_nicks_encrypted.yaml", cfg.NicksFile)
	assert.Empty(t, cfg.WebhookURL)
	assert.Empty(t, cfg.NicksKey)
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
org = "osbuild"
repo = "images"
nicks_file = "/etc/prqueue/nicks.yaml"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "osbuild", cfg.Org)
	assert.Equal(t, "images", cfg.Repo)
	assert.Equal(t, "/etc/prqueue/nicks.yaml", cfg.NicksFile)
	assert.Equal(t, path, cfg.ConfigPath)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`org = "from-file"`), 0644))

	t.Setenv("PRQUEUE_ORG", "from-env")
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.example/T123")
	t.Setenv("SLACK_NICKS_KEY", "some-key")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Org)
	assert.Equal(t, "https://hooks.slack.example/T123", cfg.WebhookURL)
	assert.Equal(t, "some-key", cfg.NicksKey)
}

func TestLoadMalformedFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`org = [broken`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
