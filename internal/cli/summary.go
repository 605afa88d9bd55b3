package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/poesyliang/poesy-blog/internal/metrics"
)

func newSummaryCmd(a *app) *cobra.Command {
	var (
		runID    string
		asJSON   bool
		failures bool
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the last migration summary",
		Long: `Show the summary of the last migration run, or of a given run.

Examples:
  poesy summary
  poesy summary --failures
  poesy summary --run-id 3f0c... --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := a.client.Summary(cmd.Context(), runID)
			if err != nil {
				return fmt.Errorf("get summary: %w", err)
			}
			if asJSON {
				return printJSON(a.out, summary)
			}
			if summary == nil {
				fmt.Fprintln(a.out, "No migration has been run yet")
				return nil
			}

			fmt.Fprint(a.out, renderSummary(a.theme, summary))
			if failures && len(summary.FailedData) > 0 {
				fmt.Fprintln(a.out)
				fmt.Fprint(a.out, renderFailureDetails(summary))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run-id", "", "show this run instead of the last one")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().BoolVar(&failures, "failures", false, "list every failure with its details")
	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show API runtime statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := a.client.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("get stats: %w", err)
			}
			if asJSON {
				return printJSON(a.out, stats)
			}

			uptime := time.Duration(stats.Metrics.UptimeSeconds * float64(time.Second)).Round(time.Second)
			fmt.Fprintf(a.out, "Uptime: %s\n", uptime)
			fmt.Fprintf(a.out, "Migration running: %t\n", stats.MigrationRunning)
			fmt.Fprintf(a.out, "Event subscribers: %d\n", stats.EventSubscribers)
			if stats.StoredRuns != nil {
				fmt.Fprintf(a.out, "Stored runs: %d\n", *stats.StoredRuns)
			}

			ops := []struct {
				name string
				snap *metrics.OperationSnapshot
			}{
				{metrics.OpUpstreamFetch, stats.Metrics.UpstreamFetch},
				{metrics.OpStoreRead, stats.Metrics.StoreRead},
				{metrics.OpStoreInsert, stats.Metrics.StoreInsert},
				{metrics.OpMigrationRun, stats.Metrics.MigrationRun},
				{metrics.OpSummarySave, stats.Metrics.SummarySave},
			}
			fmt.Fprintf(a.out, "\n%-16s %8s %8s %10s %10s\n", "OPERATION", "COUNT", "FAILED", "AVG MS", "MAX MS")
			for _, op := range ops {
				if op.snap == nil {
					continue
				}
				fmt.Fprintf(a.out, "%-16s %8d %8d %10.1f %10d\n",
					op.name, op.snap.Count, op.snap.Failures, op.snap.AvgTimeMs, op.snap.MaxTimeMs)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
