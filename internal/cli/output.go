package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/poesyliang/poesy-blog/internal/migration"
	"github.com/poesyliang/poesy-blog/internal/models"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderSummary formats a migration summary for the terminal.
func renderSummary(theme Theme, s *models.MigrationSummary) string {
	var sb strings.Builder
	if s.Failed == 0 {
		sb.WriteString(theme.completedStyle().Render("✓ Migration completed"))
	} else {
		sb.WriteString(theme.errorStyle().Render("! Migration completed with failures"))
	}
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "  Run:             %s\n", s.RunID)
	fmt.Fprintf(&sb, "  Timestamp:       %s\n", s.Timestamp)
	fmt.Fprintf(&sb, "  Total processed: %d\n", s.TotalProcessed)
	fmt.Fprintf(&sb, "  Successful:      %d\n", s.Successful)
	fmt.Fprintf(&sb, "  Failed:          %d\n", s.Failed)

	if len(s.FailedData) > 0 {
		sb.WriteString(theme.errorStyle().Render(fmt.Sprintf("\nFailures (%d):", len(s.FailedData))))
		sb.WriteString("\n")
		for i, f := range s.FailedData {
			if i == maxListedFailures {
				fmt.Fprintf(&sb, "  ... and %d more\n", len(s.FailedData)-maxListedFailures)
				break
			}
			fmt.Fprintf(&sb, "  • %s [%s #%s]: %s\n", displayTitle(f.Title), f.Source, f.OriginalID, f.Error)
		}
	}
	return sb.String()
}

// renderFailureDetails lists every failure with its error details.
func renderFailureDetails(s *models.MigrationSummary) string {
	var sb strings.Builder
	for _, f := range s.FailedData {
		fmt.Fprintf(&sb, "%s [%s #%s]\n", displayTitle(f.Title), f.Source, f.OriginalID)
		fmt.Fprintf(&sb, "%s\n", indent(f.Error, "  error:   "))
		if f.ErrorDetails != "" && f.ErrorDetails != f.Error {
			fmt.Fprintf(&sb, "%s\n", indent(f.ErrorDetails, "  details: "))
		}
	}
	return sb.String()
}

// renderEvent formats one streamed migration event as a single line.
func renderEvent(theme Theme, ev migration.Event) string {
	switch ev.Type {
	case migration.EventRunStarted:
		return theme.statusStyle().Render("Migration "+ev.RunID+" started")
	case migration.EventRecordSucceeded:
		return fmt.Sprintf("[%d/%d] ✓ %s (%s #%s → blog %s)",
			ev.Index, ev.Total, displayTitle(ev.Title), ev.Source, ev.OriginalID, ev.BlogID)
	case migration.EventRecordFailed:
		return fmt.Sprintf("[%d/%d] %s %s (%s #%s): %s",
			ev.Index, ev.Total, theme.errorStyle().Render("✗"), displayTitle(ev.Title), ev.Source, ev.OriginalID, ev.Error)
	case migration.EventRunCompleted:
		return theme.completedStyle().Render(fmt.Sprintf("Completed: %d processed, %d successful, %d failed",
			ev.Total, ev.Successful, ev.Failed))
	case migration.EventRunFailed:
		return theme.errorStyle().Render("Migration failed: " + ev.Error)
	}
	return string(ev.Type)
}

func displayTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
