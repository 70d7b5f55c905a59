package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	corecfg "github.com/aevon-lab/scoring/internal/core/config"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger_File(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "scoring.log")
	logs, err := setupLogger(corecfg.LogConfig{Level: "warn", File: path})
	require.NoError(t, err)
	require.NotNil(t, logs)

	slog.Info("hidden")
	slog.Warn("shown", "request_id", "r1")
	require.NoError(t, logs.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.False(t, strings.Contains(string(data), "hidden"))
	require.Contains(t, string(data), "msg=shown")
	require.Contains(t, string(data), "request_id=r1")
}

func TestSetupLogger_InvalidLevel(t *testing.T) {
	_, err := setupLogger(corecfg.LogConfig{Level: "loud"})
	require.Error(t, err)
}

func TestSetupLogger_UnwritableFile(t *testing.T) {
	_, err := setupLogger(corecfg.LogConfig{Level: "info", File: filepath.Join(t.TempDir(), "missing", "x.log")})
	require.ErrorContains(t, err, "failed to open log file")
}

func TestSetupLogger_Stdout(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logs, err := setupLogger(corecfg.LogConfig{Level: "info"})
	require.NoError(t, err)
	require.Nil(t, logs)
	require.NoError(t, logs.Close())
}

func TestReopenOnHangup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scoring.log")
	rotated := filepath.Join(dir, "scoring.log.1")

	lf, err := openLogFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = lf.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	hup := make(chan os.Signal, 1)
	done := make(chan error, 1)
	go func() { done <- reopenOnHangup(ctx, hup, lf) }()

	_, err = lf.Write([]byte("before\n"))
	require.NoError(t, err)
	require.NoError(t, os.Rename(path, rotated))

	first := lf.f
	hup <- syscall.SIGHUP
	require.Eventually(t, func() bool {
		lf.mu.Lock()
		defer lf.mu.Unlock()
		return lf.f != first
	}, time.Second, 10*time.Millisecond)

	_, err = lf.Write([]byte("after\n"))
	require.NoError(t, err)

	cancel()
	require.NoError(t, <-done)

	old, err := os.ReadFile(rotated)
	require.NoError(t, err)
	require.Equal(t, "before\n", string(old))
	current, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "after\n", string(current))
}

func TestReopenOnHangup_NoFile(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hup := make(chan os.Signal, 1)
	hup <- syscall.SIGHUP

	done := make(chan error, 1)
	go func() { done <- reopenOnHangup(ctx, hup, nil) }()

	require.Eventually(t, func() bool { return len(hup) == 0 }, time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}
