package datapoint

import (
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/datapoints/internal/repository"
)

// TimestampLayout formats the code shared by every data point of a run (YYYY_MM_DD_HH-MM-SS).
const TimestampLayout = "2006_01_02_15-04-05"

// Stamp formats t as a data point code.
func Stamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Batch holds the data points pending creation on one site.
type Batch []repository.BatchRequest

// Status is the outcome of processing one site.
type Status string

const (
	StatusSkipped Status = "skipped"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// SiteResult summarizes one site of a run.
type SiteResult struct {
	URL    string
	Status Status
	Points int
	Err    error
}

// RunReport summarizes a run across all sites.
type RunReport struct {
	RunID   string
	Code    string
	Sites   []SiteResult
	Aborted bool
}

// Failed returns the results of sites whose processing failed.
func (r *RunReport) Failed() []SiteResult {
	var failed []SiteResult
	for _, res := range r.Sites {
		if res.Status == StatusFailed {
			failed = append(failed, res)
		}
	}
	return failed
}

// Points returns the number of data points created across all sites.
func (r *RunReport) Points() int {
	var n int
	for _, res := range r.Sites {
		n += res.Points
	}
	return n
}

// Err joins the errors of every failed site, or returns nil.
func (r *RunReport) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", res.URL, res.Err))
	}
	return errors.Join(errs...)
}
