package main

import (
	"fmt"
	"io"
	"time"

	"kiln/internal/history"
	"kiln/internal/runner"
	"kiln/internal/textutil"
)

func runFromReport(report *runner.Report) history.Run {
	return history.Run{
		ID:         report.RunID,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Published:  report.Published,
		Failed:     report.Failed,
		Skipped:    report.Skipped,
	}
}

func taskRowsFromReport(report *runner.Report) []history.TaskRow {
	rows := make([]history.TaskRow, 0, len(report.Results))
	for _, result := range report.Results {
		row := history.TaskRow{
			RunID:      report.RunID,
			Item:       result.Item,
			Plugin:     result.Plugin,
			Status:     string(result.Status),
			Phase:      result.Phase,
			DurationMS: result.Duration.Milliseconds(),
		}
		if result.Err != nil {
			row.ErrorMessage = textutil.Truncate(result.Err.Error(), 500)
		}
		rows = append(rows, row)
	}
	return rows
}

func printReport(out io.Writer, report *runner.Report, colorize bool) {
	if len(report.Results) > 0 {
		rows := make([][]string, 0, len(report.Results))
		for _, result := range report.Results {
			detail := ""
			if result.Err != nil {
				detail = textutil.Truncate(result.Err.Error(), 80)
			}
			rows = append(rows, []string{
				result.Item,
				result.Plugin,
				string(result.Status),
				formatDuration(result.Duration),
				detail,
			})
		}
		renderTable(out, []string{"Item", "Plugin", "Status", "Duration", "Error"}, rows, 3)
	}

	summary := fmt.Sprintf("Run %s: %d published, %d failed, %d skipped in %s",
		report.RunID, report.Published, report.Failed, report.Skipped, formatDuration(report.Duration()))
	if colorize {
		color := ansiGreen
		if report.Failed > 0 {
			color = ansiRed
		}
		summary = color + summary + ansiReset
	}
	fmt.Fprintln(out, summary)
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}
