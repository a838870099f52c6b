package datapoint

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rpggio/datapoints/internal/domain/activity"
	"github.com/rpggio/datapoints/internal/domain/site"
	"github.com/rpggio/datapoints/internal/logging"
	"github.com/rpggio/datapoints/internal/metrics"
)

// Options configures a reporting run.
type Options struct {
	// RunID identifies the run in the journal; generated when empty.
	RunID string
	// Code is written to every data point; defaults to the start time.
	Code string
	// DryRun counts and logs without creating fields or records.
	DryRun bool
}

// Service creates data point records on connected sites.
type Service struct {
	journal Journal
	metrics *metrics.Collector
	logger  *slog.Logger
	opts    Options
}

// NewService creates a new data point service. journal and collector may be nil.
func NewService(journal Journal, collector *metrics.Collector, logger *slog.Logger, opts Options) *Service {
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.Code == "" {
		opts.Code = Stamp(time.Now())
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{
		journal: journal,
		metrics: collector,
		logger:  logger,
		opts:    opts,
	}
}

// Code returns the code stamped on this run's data points.
func (s *Service) Code() string {
	return s.opts.Code
}

// RunID returns the journal id of this run.
func (s *Service) RunID() string {
	return s.opts.RunID
}

// Run processes sites in order. A schema mismatch stops the run; any other
// failure only fails the site it happened on.
func (s *Service) Run(ctx context.Context, sites []*site.Site) *RunReport {
	start := time.Now()
	report := &RunReport{RunID: s.opts.RunID, Code: s.opts.Code}

	s.logger.Info("run started", "sites", len(sites), "code", s.opts.Code, "dry_run", s.opts.DryRun)
	s.record(ctx, "", activity.TypeRunStarted, "run started", map[string]any{
		"code":    s.opts.Code,
		"sites":   len(sites),
		"dry_run": s.opts.DryRun,
	})

	for _, st := range sites {
		res := s.ProcessSite(ctx, st)
		report.Sites = append(report.Sites, res)
		if errors.Is(res.Err, ErrSchemaMismatch) {
			report.Aborted = true
			s.logger.Error("aborting run", "site", st.URL, "error", res.Err)
			break
		}
	}

	elapsed := time.Since(start)
	s.metrics.RunFinished(elapsed, report.Err() == nil)
	s.logger.Info("run finished",
		"points", report.Points(),
		"failed", len(report.Failed()),
		"aborted", report.Aborted,
		"elapsed", elapsed,
	)
	s.record(ctx, "", activity.TypeRunFinished, "run finished", map[string]any{
		"points":  report.Points(),
		"failed":  len(report.Failed()),
		"aborted": report.Aborted,
	})
	return report
}

// ProcessSite prepares schemas, counts every rule and submits one batch for a site.
// The pending batch never outlives the call.
func (s *Service) ProcessSite(ctx context.Context, st *site.Site) SiteResult {
	logger := s.logger.With("site", st.URL)

	if !st.HasScope() {
		logger.Error("no data point entities defined, skipping site")
		s.metrics.SiteSkipped()
		s.record(ctx, st.URL, activity.TypeSiteSkipped, "no data point entities defined", nil)
		return SiteResult{URL: st.URL, Status: StatusSkipped}
	}

	points, err := s.processSite(ctx, st, logger)
	if err != nil {
		logger.Error("site failed", "error", err)
		s.metrics.SiteFailed(st.URL)
		s.record(ctx, st.URL, activity.TypeSiteFailed, err.Error(), nil)
		return SiteResult{URL: st.URL, Status: StatusFailed, Err: err}
	}
	return SiteResult{URL: st.URL, Status: StatusDone, Points: points}
}

func (s *Service) processSite(ctx context.Context, st *site.Site, logger *slog.Logger) (int, error) {
	var batch Batch

	if st.Global != nil {
		if err := s.PrepareSchema(ctx, st, st.Global); err != nil {
			return 0, err
		}
		logger.Info("creating global data point batch command")
		point, err := s.BuildPoint(ctx, st, st.Global, nil)
		if err != nil {
			return 0, err
		}
		batch = append(batch, point)
	}

	if st.PerProject != nil {
		if err := s.PrepareSchema(ctx, st, st.PerProject); err != nil {
			return 0, err
		}
		projects, err := s.Projects(ctx, st)
		if err != nil {
			return 0, err
		}
		logger.Info("creating data point batch commands for all projects", "projects", len(projects))
		for i := range projects {
			point, err := s.BuildPoint(ctx, st, st.PerProject, &projects[i])
			if err != nil {
				return 0, err
			}
			batch = append(batch, point)
		}
	}

	return s.Submit(ctx, st, batch)
}

// record writes a journal entry; journal failures never fail the run.
func (s *Service) record(ctx context.Context, siteURL string, typ activity.EntryType, summary string, details any) {
	if s.journal == nil {
		return
	}
	entry := &activity.Entry{
		RunID:   s.opts.RunID,
		Site:    siteURL,
		Type:    typ,
		Summary: summary,
	}
	if details != nil {
		entry.Details = activity.Details(details)
	}
	if err := s.journal.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to write journal entry", "type", typ, "error", err)
	}
}
