package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newJobsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs [job-id]",
		Short: "List or inspect background migrations",
		Long: `List all background migrations or inspect one by ID.

Examples:
  poesy jobs           # List all jobs
  poesy jobs abc123    # Show details for job abc123`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return a.showJob(cmd.Context(), args[0])
			}
			return a.listJobs(cmd.Context())
		},
	}
}

func (a *app) listJobs(ctx context.Context) error {
	jobs, err := a.client.ListJobs(ctx)
	if err != nil {
		return fmt.Errorf("list jobs: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Fprintln(a.out, "No jobs found")
		return nil
	}

	fmt.Fprintf(a.out, "%-10s %-12s %-10s %-8s %s\n", "ID", "STATUS", "PROGRESS", "FAILED", "STARTED")
	fmt.Fprintln(a.out, "------------------------------------------------------------")

	for _, job := range jobs {
		progress := ""
		if job.Total > 0 {
			progress = fmt.Sprintf("%d/%d", job.Progress, job.Total)
		}
		started := job.StartedAt.Local().Format("15:04:05")
		fmt.Fprintf(a.out, "%-10s %-12s %-10s %-8d %s\n", job.ID, job.Status, progress, job.Failed, started)
	}

	return nil
}

func (a *app) showJob(ctx context.Context, id string) error {
	job, err := a.client.GetJob(ctx, id)
	if err != nil {
		return fmt.Errorf("get job %s: %w", id, err)
	}

	fmt.Fprintf(a.out, "Job: %s\n", job.ID)
	fmt.Fprintf(a.out, "  Run: %s\n", job.RunID)
	fmt.Fprintf(a.out, "  Status: %s\n", job.Status)
	if job.Total > 0 {
		fmt.Fprintf(a.out, "  Progress: %d/%d (%d successful, %d failed)\n",
			job.Progress, job.Total, job.Successful, job.Failed)
	}
	fmt.Fprintf(a.out, "  Started: %s\n", job.StartedAt.Format(time.RFC3339))
	if job.CompletedAt != nil {
		fmt.Fprintf(a.out, "  Completed: %s\n", job.CompletedAt.Format(time.RFC3339))
		duration := job.CompletedAt.Sub(job.StartedAt)
		fmt.Fprintf(a.out, "  Duration: %s\n", duration.Round(time.Millisecond))
	}
	if job.Error != "" {
		fmt.Fprintf(a.out, "  Error: %s\n", job.Error)
	}

	if job.Summary != nil {
		fmt.Fprintln(a.out)
		fmt.Fprint(a.out, renderSummary(a.theme, job.Summary))
	}
	return nil
}
