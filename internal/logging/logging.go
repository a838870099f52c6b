package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Options configures a run logger.
type Options struct {
	// Dir receives one log file per run, named after Stamp.
	Dir   string
	Stamp string
	Level string
	// Console mirrors every record; nil disables mirroring.
	Console io.Writer
}

// RunLog is the logger of one run and the file backing it.
type RunLog struct {
	Logger *slog.Logger
	Path   string
	file   *syncFile
}

// Close flushes and closes the run's log file.
func (l *RunLog) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// New opens <Dir>/<Stamp>.log and returns a logger writing to it and to Console.
func New(opts Options) (*RunLog, error) {
	if opts.Stamp == "" {
		return nil, fmt.Errorf("log file stamp is required")
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	path := filepath.Join(opts.Dir, opts.Stamp+".log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	sf := &syncFile{file: file}

	var w io.Writer = sf
	if opts.Console != nil {
		w = io.MultiWriter(sf, opts.Console)
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
	}))
	return &RunLog{Logger: logger, Path: path, file: sf}, nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type syncFile struct {
	mu   sync.Mutex
	file *os.File
}

func (f *syncFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Write(p)
}

func (f *syncFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.file.Sync(); err != nil {
		_ = f.file.Close()
		return err
	}
	return f.file.Close()
}
