package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Options defines runtime options for a reporting run.
type Options struct {
	SettingsPath   string
	Log            LogConfig
	HistoryPath    string
	PushgatewayURL string
	HTTPTimeout    time.Duration
}

// LogConfig sets where run logs go and how verbose they are.
type LogConfig struct {
	Dir   string
	Level string
}

// Load resolves runtime options relative to the executable and applies environment overrides.
func Load() (Options, error) {
	baseDir, err := executableDir()
	if err != nil {
		return Options{}, err
	}
	return LoadFrom(baseDir)
}

// LoadFrom resolves runtime options relative to baseDir and applies environment overrides.
func LoadFrom(baseDir string) (Options, error) {
	opts := Options{
		SettingsPath: filepath.Join(baseDir, "settings.yml"),
		Log: LogConfig{
			Dir:   filepath.Join(baseDir, "logs"),
			Level: "info",
		},
	}

	if path := os.Getenv("DATAPOINTS_SETTINGS_PATH"); path != "" {
		opts.SettingsPath = path
	}
	if dir := os.Getenv("DATAPOINTS_LOG_DIR"); dir != "" {
		opts.Log.Dir = dir
	}
	if level := os.Getenv("DATAPOINTS_LOG_LEVEL"); level != "" {
		opts.Log.Level = level
	}
	if path := os.Getenv("DATAPOINTS_HISTORY_PATH"); path != "" {
		opts.HistoryPath = path
	}
	if url := os.Getenv("DATAPOINTS_PUSHGATEWAY_URL"); url != "" {
		opts.PushgatewayURL = url
	}
	if timeoutStr := os.Getenv("DATAPOINTS_HTTP_TIMEOUT"); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return Options{}, fmt.Errorf("invalid DATAPOINTS_HTTP_TIMEOUT: %w", err)
		}
		if timeout < 0 {
			return Options{}, fmt.Errorf("invalid DATAPOINTS_HTTP_TIMEOUT: negative duration %s", timeout)
		}
		opts.HTTPTimeout = timeout
	}

	return opts, nil
}

func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}
