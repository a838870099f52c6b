package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidConfig indicates the settings file has missing or malformed entries.
	ErrInvalidConfig = errors.New("invalid settings")
	// ErrSettingsNotFound indicates the settings file doesn't exist.
	ErrSettingsNotFound = errors.New("settings file not found")
	// ErrEmptySettings indicates the settings file parsed to nothing.
	ErrEmptySettings = errors.New("settings file is empty")
)

// Violation is a single problem found in one site's settings.
type Violation struct {
	Site    string
	Field   string
	Problem string
}

func (v Violation) String() string {
	if v.Field == "" {
		return fmt.Sprintf("%s: %s", v.Site, v.Problem)
	}
	return fmt.Sprintf("%s: %s %s", v.Site, v.Field, v.Problem)
}

// ValidationError lists every violation found in a settings file.
type ValidationError struct {
	Path       string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("bad or missing settings in %s: %s", e.Path, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}
