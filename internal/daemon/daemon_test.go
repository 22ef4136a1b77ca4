package daemon

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/webdesk/internal/config"
	"github.com/1broseidon/webdesk/internal/ipc"
)

func restoreGlobalLevel(t *testing.T) {
	t.Helper()
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
}

func TestNew_InvalidConfigFails(t *testing.T) {
	restoreGlobalLevel(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, "stack_base: -1\n")

	_, err := New(Options{ConfigPath: cfgPath, SocketPath: filepath.Join(dir, "d.sock"), LogOutput: io.Discard})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stack_base")
}

func TestNew_UsesConfiguredStackBase(t *testing.T) {
	restoreGlobalLevel(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, "stack_base: 10\nid_prefix: win\n")

	d, err := New(Options{ConfigPath: cfgPath, SocketPath: filepath.Join(dir, "d.sock"), LogOutput: io.Discard})
	require.NoError(t, err)

	assert.Equal(t, 10, d.Registry().NextStackOrder())
	assert.Equal(t, filepath.Join(dir, "d.sock"), d.SocketPath())
	assert.Equal(t, "win", d.Config().IDPrefix)
}

func TestRun_ServesSessionAndHotReloads(t *testing.T) {
	restoreGlobalLevel(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	socket := filepath.Join(dir, "d.sock")
	writeFile(t, cfgPath, "logging:\n  level: warn\n")

	d, err := New(Options{ConfigPath: cfgPath, SocketPath: socket, LogOutput: io.Discard})
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	client := ipc.NewClientWithSocket(socket)
	require.Eventually(t, func() bool { return client.Ping() == nil }, 2*time.Second, 10*time.Millisecond)

	info, err := client.OpenWindow(ipc.OpenWindowPayload{Title: "Files"})
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().DefaultWindow.Width, info.Width)
	assert.Len(t, d.Registry().Windows(), 1)

	writeFile(t, cfgPath, "default_window:\n  x: 1\n  y: 2\n  width: 300\n  height: 200\nlogging:\n  level: debug\n")
	require.Eventually(t, func() bool {
		info, err := client.OpenWindow(ipc.OpenWindowPayload{Title: "Terminal"})
		return err == nil && info.Width == 300
	}, 3*time.Second, 50*time.Millisecond)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("daemon did not stop")
	}

	_, err = os.Stat(socket)
	assert.True(t, os.IsNotExist(err), "socket should be removed on shutdown")
}

func TestRun_ReloadCommandReadsFile(t *testing.T) {
	restoreGlobalLevel(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	socket := filepath.Join(dir, "d.sock")

	d, err := New(Options{ConfigPath: cfgPath, SocketPath: socket, LogOutput: io.Discard})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	client := ipc.NewClientWithSocket(socket)
	require.Eventually(t, func() bool { return client.Ping() == nil }, 2*time.Second, 10*time.Millisecond)

	writeFile(t, cfgPath, "bogus_key: 1\n")
	err = client.Reload()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus_key")

	writeFile(t, cfgPath, "tui:\n  move_step: 7\n  resize_step: 7\n  refresh_interval_ms: 500\n")
	require.NoError(t, client.Reload())
	assert.Equal(t, 7, d.Config().TUI.MoveStep)

	info, err := client.OpenWindow(ipc.OpenWindowPayload{Title: "Placed", X: 3, Y: 4})
	require.NoError(t, err)
	assert.Equal(t, 3, info.X)
	assert.Equal(t, config.DefaultConfig().DefaultWindow.Width, info.Width)
}

func TestReload_AppliesFileWithoutServing(t *testing.T) {
	restoreGlobalLevel(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	d, err := New(Options{ConfigPath: cfgPath, SocketPath: filepath.Join(dir, "d.sock"), LogOutput: io.Discard})
	require.NoError(t, err)

	writeFile(t, cfgPath, "logging:\n  level: error\n")
	require.NoError(t, d.Reload())
	assert.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())

	assert.Equal(t, "error", d.Config().Logging.Level)

	writeFile(t, cfgPath, "logging:\n  level: loud\n")
	require.Error(t, d.Reload())
	assert.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())
	assert.Equal(t, "error", d.Config().Logging.Level)
}
