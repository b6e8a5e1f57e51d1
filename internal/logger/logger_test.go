package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audiofilters/internal/logger"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for line := range strings.SplitSeq(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestSlogLoggerLevels(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := logger.NewSlogLogger(buf, logger.LogLevelInfo, time.UTC)

	log.Debug("hidden")
	log.Info("shown", logger.Int("count", 3))
	log.Warn("warned", logger.Float64("ratio", 0.123456))

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "shown", lines[0]["msg"])
	assert.InDelta(t, 3, lines[0]["count"], 0)
	assert.Equal(t, "WARN", lines[1]["level"])
	assert.InDelta(t, 0.123, lines[1]["ratio"], 1e-9)
}

func TestModuleAndFieldsAccumulate(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	base := logger.NewSlogLogger(buf, logger.LogLevelTrace, time.UTC)

	log := base.Module("audiofilters").Module("panel").With(logger.String("group", "echo"))
	log.Trace("write", logger.Bool("enabled", true))
	base.Info("plain")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "audiofilters.panel", lines[0]["module"])
	assert.Equal(t, "echo", lines[0]["group"])
	assert.Equal(t, "TRACE", lines[0]["level"])
	assert.NotContains(t, lines[1], "module")
	assert.NotContains(t, lines[1], "group")
}

func TestWithContextAddsTraceID(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := logger.NewSlogLogger(buf, logger.LogLevelInfo, time.UTC)

	ctx := logger.WithTraceID(context.Background(), "abc-123")
	log.WithContext(ctx).Info("request")
	log.WithContext(context.Background()).Info("no trace")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "abc-123", lines[0]["trace_id"])
	assert.NotContains(t, lines[1], "trace_id")
}

func TestErrorField(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := logger.NewSlogLogger(buf, logger.LogLevelInfo, time.UTC)
	log.Error("failed", logger.Error(os.ErrNotExist), logger.Duration("elapsed", 1500*time.Millisecond))

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, os.ErrNotExist.Error(), lines[0]["error"])
	assert.Equal(t, "1.5s", lines[0]["elapsed"])
}

func TestCentralLoggerConsoleAndModuleLevels(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	cl, err := logger.NewCentralLoggerWithWriter(&logger.LoggingConfig{
		DefaultLevel: "info",
		Console:      &logger.ConsoleOutput{Enabled: true, Level: "debug"},
		ModuleLevels: map[string]string{"dsp": "debug"},
	}, buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cl.Close() })

	cl.Module("conf").Debug("suppressed")
	cl.Module("dsp").Debug("kernel designed", logger.Int("taps", 1024))

	out := buf.String()
	assert.NotContains(t, out, "suppressed")
	assert.Contains(t, out, "kernel designed")
	assert.Contains(t, out, "module=dsp")
	assert.Contains(t, out, "taps=1024")
	assert.NotContains(t, out, "time=")
}

func TestCentralLoggerFileOutput(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "app.log")
	cl, err := logger.NewCentralLoggerWithWriter(&logger.LoggingConfig{
		Timezone:   "UTC",
		Console:    &logger.ConsoleOutput{Enabled: false},
		FileOutput: &logger.FileOutput{Enabled: true, Path: path, Level: "info"},
	}, &bytes.Buffer{})
	require.NoError(t, err)

	cl.Module("pipeline").Info("rebuilt", logger.String("filter", "Echo"))
	require.NoError(t, cl.Flush())
	require.NoError(t, cl.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "rebuilt", entry["msg"])
	assert.Equal(t, "pipeline", entry["module"])
	assert.Equal(t, "Echo", entry["filter"])
	_, err = time.Parse(time.RFC3339, entry["time"].(string))
	assert.NoError(t, err)
}

func TestNewCentralLoggerRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := logger.NewCentralLogger(nil)
	require.Error(t, err)

	_, err = logger.NewCentralLogger(&logger.LoggingConfig{Timezone: "Not/AZone"})
	require.Error(t, err)
}

func TestEchoAdapterRoutesFrameworkLogs(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	adapter := logger.NewEchoAdapter(logger.NewSlogLogger(buf, logger.LogLevelDebug, time.UTC).Module("echo"))

	adapter.Printf("listening on %s", ":8080")
	adapter.Errorf("[PANIC RECOVER] %v", "boom")
	adapter.Debugj(map[string]any{"route": "/health"})
	assert.Panics(t, func() { adapter.Panic("fatal") })

	lines := decodeLines(t, buf)
	require.Len(t, lines, 4)
	assert.Equal(t, "listening on :8080", lines[0]["msg"])
	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "ERROR", lines[1]["level"])
	assert.Equal(t, "[PANIC RECOVER] boom", lines[1]["msg"])
	assert.Equal(t, "echo", lines[1]["module"])
	assert.Equal(t, "DEBUG", lines[2]["level"])
	assert.Equal(t, "fatal", lines[3]["msg"])
}
