package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rpggio/datapoints/internal/config"
	"github.com/rpggio/datapoints/internal/domain/activity"
	"github.com/rpggio/datapoints/internal/domain/datapoint"
	"github.com/rpggio/datapoints/internal/domain/site"
	"github.com/rpggio/datapoints/internal/logging"
	"github.com/rpggio/datapoints/internal/metrics"
	"github.com/rpggio/datapoints/internal/shotgrid"
	"github.com/rpggio/datapoints/internal/sqlite"
)

const usageHint = "Usage: datapoints --help"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var create, dryRun bool

	cmd := &cobra.Command{
		Use:   "datapoints",
		Short: "Record ShotGrid entity counts as data point records",
		Long: `datapoints counts entities on every ShotGrid site listed in settings.yml and
stores the counts as new data point records, one global record per site and one
record per active project.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !create {
				fmt.Fprintln(stdout, usageHint)
				return nil
			}
			return run(cmd.Context(), stderr, dryRun)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.Flags().BoolVarP(&create, "create_data_points", "c", false, "create data points on every configured site")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "count and log without creating fields or records")
	cmd.AddCommand(newHistoryCmd(stdout, stderr))
	return cmd
}

func run(ctx context.Context, stderr io.Writer, dryRun bool) error {
	opts, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config error: %v\n", err)
		return err
	}

	code := datapoint.Stamp(time.Now())
	runID := uuid.NewString()

	runLog, err := logging.New(logging.Options{
		Dir:     opts.Log.Dir,
		Stamp:   code,
		Level:   opts.Log.Level,
		Console: stderr,
	})
	if err != nil {
		fmt.Fprintf(stderr, "log file error: %v\n", err)
		return err
	}
	defer runLog.Close()
	logger := runLog.Logger.With("run_id", runID)

	settings, err := config.LoadSettings(opts.SettingsPath)
	if err != nil {
		logger.Error("failed to load settings", "error", err)
		return err
	}
	logger.Info("settings loaded", "path", settings.Path, "sites", len(settings.Sites))

	var journal datapoint.Journal
	if opts.HistoryPath != "" {
		db, err := sqlite.Open(opts.HistoryPath)
		if err != nil {
			logger.Warn("run journal disabled", "path", opts.HistoryPath, "error", err)
		} else {
			defer db.Close()
			journal = activity.NewService(sqlite.NewActivityRepository(db), logger)
		}
	}

	collector := metrics.New()
	connector := site.NewConnector(shotgrid.NewDialer(opts.HTTPTimeout), logger)
	sites, connErr := connector.ConnectAll(ctx, settings)

	svc := datapoint.NewService(journal, collector, logger, datapoint.Options{
		RunID:  runID,
		Code:   code,
		DryRun: dryRun,
	})
	report := svc.Run(ctx, sites)

	if err := collector.Push(ctx, opts.PushgatewayURL); err != nil {
		logger.Warn("failed to push metrics", "error", err)
	}

	if err := errors.Join(connErr, report.Err()); err != nil {
		logger.Error("run finished with errors", "log", runLog.Path, "error", err)
		return err
	}
	return nil
}
