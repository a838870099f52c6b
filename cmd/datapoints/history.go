package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/rpggio/datapoints/internal/config"
	"github.com/rpggio/datapoints/internal/domain/activity"
	"github.com/rpggio/datapoints/internal/sqlite"
)

// errHistoryDisabled is returned when no journal path is configured.
var errHistoryDisabled = errors.New("run history is disabled; set DATAPOINTS_HISTORY_PATH")

func newHistoryCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts activity.ListOptions
	var entryType string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if entryType != "" {
				t := activity.EntryType(entryType)
				opts.Type = &t
			}
			if err := showHistory(cmd, stdout, opts); err != nil {
				fmt.Fprintf(stderr, "history error: %v\n", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.RunID, "run", "", "only entries of this run id")
	cmd.Flags().StringVar(&opts.Site, "site", "", "only entries of this site URL")
	cmd.Flags().StringVar(&entryType, "type", "", "only entries of this type (e.g. site_failed)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of entries; 0 lists all")
	return cmd
}

func showHistory(cmd *cobra.Command, stdout io.Writer, opts activity.ListOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.HistoryPath == "" {
		return errHistoryDisabled
	}

	db, err := sqlite.Open(cfg.HistoryPath)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := activity.NewService(sqlite.NewActivityRepository(db), nil)
	entries, err := svc.Recent(cmd.Context(), opts)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(stdout, "no runs recorded")
		return nil
	}
	for _, e := range entries {
		site := e.Site
		if site == "" {
			site = "-"
		}
		fmt.Fprintf(stdout, "%s  %s  %-16s  %s  %s\n",
			e.CreatedAt.Local().Format(time.DateTime), e.RunID, e.Type, site, e.Summary)
	}
	return nil
}
