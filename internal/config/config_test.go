package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.True(t, cfg.Rewriter.DecodeEntities)
	require.Len(t, cfg.Rewriter.Substitutions, 1)
	assert.Equal(t, `<div class="comparison-box">`, cfg.Rewriter.Substitutions[0].From)
	assert.Equal(t, `<div class="comparison-box-vertical">`, cfg.Rewriter.Substitutions[0].To)
	assert.Equal(t, 30*time.Second, cfg.Watcher.Interval)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Queue.Brokers)
	assert.Equal(t, 4, cfg.Processor.Concurrency)
}

func TestLoadFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: ":9000"
rewriter:
  decode_entities: false
  substitutions:
    - from: "old-box"
      to: "new-box"
watcher:
  interval: 5s
  documents:
    - docs/tutorial.html
storage:
  dsn: postgres://localhost/docfix
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Port)
	assert.False(t, cfg.Rewriter.DecodeEntities)
	assert.Equal(t, []Substitution{{From: "old-box", To: "new-box"}}, cfg.Rewriter.Substitutions)
	assert.Equal(t, 5*time.Second, cfg.Watcher.Interval)
	assert.Equal(t, []string{"docs/tutorial.html"}, cfg.Watcher.Documents)
	assert.Equal(t, "postgres://localhost/docfix", cfg.Storage.DSN)
}

func TestLoadFileEnvOverrides(t *testing.T) {
	t.Setenv("DOCFIX_SERVER__PORT", ":7000")
	t.Setenv("DOCFIX_QUEUE__GROUP_ID", "docfix-test")
	t.Setenv("DOCFIX_QUEUE__BROKERS", "k1:9092, k2:9092")
	t.Setenv("DOCFIX_PROCESSOR__DRY_RUN", "true")
	t.Setenv("DOCFIX_NOTIFIER__TELEGRAM_CHAT_IDS", "100,200")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Port)
	assert.Equal(t, "docfix-test", cfg.Queue.GroupID)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Queue.Brokers)
	assert.True(t, cfg.Processor.DryRun)
	assert.Equal(t, []string{"100", "200"}, cfg.Notifier.TelegramChatIDs)
}

func TestLoadFileRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadWithoutDotEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DOCFIX_CONFIG", "missing.yaml")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Port)
}

func TestLoadReportsUnreadableDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("DOCFIX_CONFIG", "missing.yaml")
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".env"), 0o755))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load .env")
}
