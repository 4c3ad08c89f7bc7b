package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"kiln/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent publish runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close()

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No publish runs recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					run.StartedAt.Local().Format(time.DateTime),
					formatDuration(run.FinishedAt.Sub(run.StartedAt)),
					fmt.Sprintf("%d", run.Published),
					fmt.Sprintf("%d", run.Failed),
					fmt.Sprintf("%d", run.Skipped),
				})
			}
			renderTable(out, []string{"Run", "Started", "Duration", "Published", "Failed", "Skipped"}, rows, 2, 3, 4, 5)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of runs to list")
	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the task outcomes of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close()

			tasks, err := store.RunTasks(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("load run tasks: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				fmt.Fprintf(out, "No tasks recorded for run %s.\n", args[0])
				return nil
			}

			rows := make([][]string, 0, len(tasks))
			for _, task := range tasks {
				rows = append(rows, []string{
					task.Item,
					task.Plugin,
					task.Status,
					formatDuration(time.Duration(task.DurationMS) * time.Millisecond),
					task.ErrorMessage,
				})
			}
			renderTable(out, []string{"Item", "Plugin", "Status", "Duration", "Error"}, rows, 3)
			return nil
		},
	}
}
