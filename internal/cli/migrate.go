package cli

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/poesyliang/poesy-blog/internal/client"
	"github.com/poesyliang/poesy-blog/internal/migration"
)

func newMigrateCmd(a *app) *cobra.Command {
	var (
		async  bool
		watch  bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate legacy WordPress posts into blogs",
		Long: `Run the WordPress to blog migration.

By default the command waits for the run and prints its summary. With
--async the run is started in the background; on a terminal a progress
bar follows it. --watch streams every record as it is migrated.

Running the migration twice inserts every record twice.

Examples:
  poesy migrate
  poesy migrate --async
  poesy migrate --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			switch {
			case watch:
				return a.migrateWatch(ctx)
			case async:
				return a.migrateAsync(ctx)
			}

			summary, err := a.client.Migrate(ctx)
			if err != nil {
				return migrateError(err)
			}
			if asJSON {
				return printJSON(a.out, summary)
			}
			fmt.Fprint(a.out, renderSummary(a.theme, summary))
			return nil
		},
	}

	cmd.Flags().BoolVar(&async, "async", false, "start the run in the background")
	cmd.Flags().BoolVar(&watch, "watch", false, "start the run in the background and stream its events")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

func migrateError(err error) error {
	if errors.Is(err, client.ErrConflict) {
		return errors.New("a migration is already running; check 'poesy jobs'")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("migrate: gave up waiting for the run, which may still be going on the server; "+
			"check 'poesy summary' or use 'poesy migrate --async' for long runs: %w", err)
	}
	return fmt.Errorf("migrate: %w", err)
}

func (a *app) migrateAsync(ctx context.Context) error {
	job, err := a.client.MigrateAsync(ctx)
	if err != nil {
		return migrateError(err)
	}

	if a.interactive() {
		return RunJobProgress(a.client, job)
	}

	fmt.Fprintf(a.out, "Started job %s (run %s)\n", job.ID, job.RunID)
	fmt.Fprintf(a.out, "Use 'poesy jobs %s' to check status.\n", job.ID)
	return nil
}

func (a *app) migrateWatch(ctx context.Context) error {
	start := func(ctx context.Context) (string, error) {
		job, err := a.client.MigrateAsync(ctx)
		if err != nil {
			return "", migrateError(err)
		}
		fmt.Fprintf(a.out, "Started job %s\n", job.ID)
		return job.RunID, nil
	}

	return a.client.WatchMigration(ctx, start, func(ev migration.Event) error {
		fmt.Fprintln(a.out, renderEvent(a.theme, ev))
		if ev.Type == migration.EventRunFailed {
			return fmt.Errorf("migration failed: %s", ev.Error)
		}
		return nil
	})
}
