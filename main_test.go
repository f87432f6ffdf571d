package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahyarmirrashed/webpd/internal/config"
)

// runArgs runs the command tree and returns the Config handed to the daemon.
func runArgs(t *testing.T, args ...string) *config.Config {
	t.Helper()

	var got *config.Config
	cmd := newCommand(func(_ context.Context, cfg *config.Config) error {
		got = cfg
		return nil
	})

	require.NoError(t, cmd.Run(context.Background(), append([]string{"webpd"}, args...)))
	require.NotNil(t, got)
	return got
}

func TestCommand_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := runArgs(t)

	assert.Equal(t, config.DefaultWatchDir, cfg.WatchDir)
	assert.False(t, cfg.Crop)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, config.SettleDelay, cfg.SettleDelay)
	assert.False(t, cfg.Daemonize)
	assert.False(t, cfg.Notifications)
}

func TestCommand_Flags(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := runArgs(t, "--dir", "/srv/inbox", "--crop", "--log-level", "debug")

	assert.Equal(t, "/srv/inbox", cfg.WatchDir)
	assert.True(t, cfg.Crop)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestCommand_EnvVars(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("WEBPD_DIR", "/from/env")
	t.Setenv("WEBPD_CROP", "true")

	cfg := runArgs(t)
	assert.Equal(t, "/from/env", cfg.WatchDir)
	assert.True(t, cfg.Crop)

	cfg = runArgs(t, "--dir", "/from/flag")
	assert.Equal(t, "/from/flag", cfg.WatchDir)
}

func TestCommand_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "webpd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("watch_dir: /from/file\ncrop: true\nlog_level: warn\n"), 0644))

	cfg := runArgs(t, "--config", path)
	assert.Equal(t, "/from/file", cfg.WatchDir)
	assert.True(t, cfg.Crop)
	assert.Equal(t, "warn", cfg.LogLevel)

	t.Setenv("WEBPD_DIR", "/from/env")
	cfg = runArgs(t, "--config", path)
	assert.Equal(t, "/from/env", cfg.WatchDir)
}

func TestCommand_InvalidLogLevel(t *testing.T) {
	t.Chdir(t.TempDir())

	called := false
	cmd := newCommand(func(context.Context, *config.Config) error {
		called = true
		return nil
	})

	err := cmd.Run(context.Background(), []string{"webpd", "--log-level", "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
	assert.False(t, called)
}

func TestCommand_InitRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "generated.yaml")

	cmd := newCommand(func(context.Context, *config.Config) error {
		t.Fatal("init must not start the daemon")
		return nil
	})
	require.NoError(t, cmd.Run(context.Background(), []string{"webpd", "--dir", "/written", "--crop", "init", path}))
	require.FileExists(t, path)

	cfg := runArgs(t, "--config", path)
	assert.Equal(t, "/written", cfg.WatchDir)
	assert.True(t, cfg.Crop)
	assert.Equal(t, "info", cfg.LogLevel)
}
