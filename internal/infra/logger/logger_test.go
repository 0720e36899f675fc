package logger

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAttachFileWritesDailyLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "session_20240501.log")

	Init("warn")
	SetWriters(io.Discard, io.Discard)
	AttachFile(FileOptions{Path: path, Level: "info", MaxSizeMB: 1})
	t.Cleanup(func() {
		Close()
		mu.Lock()
		fileWriter = nil
		rebuildLoggerLocked()
		mu.Unlock()
		SetWriters(nil, nil)
	})

	Debug("hidden debug")
	Info("session created", zap.String("library", "telethon"))
	Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "session created")
	assert.Contains(t, string(data), "telethon")
	assert.NotContains(t, string(data), "hidden debug")
	assert.NotContains(t, string(data), "\x1b[", "file log must not contain colors")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zap.DebugLevel, parseLevel("DEBUG", zap.WarnLevel))
	assert.Equal(t, zap.ErrorLevel, parseLevel(" error ", zap.WarnLevel))
	assert.Equal(t, zap.WarnLevel, parseLevel("verbose", zap.WarnLevel))
}

func TestIsDebugEnabled(t *testing.T) {
	SetWriters(io.Discard, io.Discard)
	t.Cleanup(func() {
		Init("warn")
		SetWriters(nil, nil)
	})

	Init("debug")
	assert.True(t, IsDebugEnabled())
	Init("warn")
	assert.False(t, IsDebugEnabled())
}

func TestDirectReportsCallerOfZapCall(t *testing.T) {
	var buf bytes.Buffer
	SetWriters(&buf, io.Discard)
	t.Cleanup(func() {
		Init("warn")
		SetWriters(nil, nil)
	})
	Init("info")

	Direct().Info("direct call")
	Named("mtproto").Info("named call")

	out := buf.String()
	assert.Contains(t, out, "direct call")
	assert.Contains(t, out, "mtproto")
	assert.Equal(t, 2, strings.Count(out, "logger/logger_test.go:"))
}
