package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_WritesFileAndConsole(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var console bytes.Buffer

	runLog, err := New(Options{Dir: dir, Stamp: "2026_10_17_09-00-00", Level: "info", Console: &console})
	require.NoError(t, err)

	runLog.Logger.Info("reading settings", "path", "settings.yml")
	runLog.Logger.Debug("hidden at info")
	require.NoError(t, runLog.Close())

	require.Equal(t, filepath.Join(dir, "2026_10_17_09-00-00.log"), runLog.Path)
	data, err := os.ReadFile(runLog.Path)
	require.NoError(t, err)
	require.Contains(t, string(data), "reading settings")
	require.NotContains(t, string(data), "hidden at info")
	require.Equal(t, string(data), console.String())
}

func TestNew_RequiresStamp(t *testing.T) {
	_, err := New(Options{Dir: t.TempDir()})
	require.Error(t, err)
}

func TestRunLog_CloseNil(t *testing.T) {
	var runLog *RunLog
	require.NoError(t, runLog.Close())
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	require.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	require.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	require.Equal(t, slog.LevelError, ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLevel(""))
	require.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
