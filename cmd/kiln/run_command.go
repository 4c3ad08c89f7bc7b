package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"kiln/internal/history"
	"kiln/internal/logging"
	"kiln/internal/preflight"
	"kiln/internal/runner"
	"kiln/internal/tree"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var manifestPath string
	var checkAll bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute the publish pipeline over a manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}

			// One run at a time: concurrent runs would race on the publish
			// directory and the history database.
			lock := flock.New(filepath.Join(cfg.Paths.StateDir, "kiln.lock"))
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !ok {
				return errors.New("another kiln run is already in progress")
			}
			defer func() {
				_ = lock.Unlock()
			}()

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			checksFailed := false
			for _, check := range preflight.RunAll(cmd.Context(), cfg) {
				if !check.Passed {
					checksFailed = true
					fmt.Fprintln(out, renderCheckLine(check.Name, check.Passed, check.Detail, colorize))
				}
			}
			if checksFailed {
				return errors.New("preflight checks failed; fix the environment and retry")
			}

			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close()

			p, err := buildPublishPipeline(cfg, logger)
			if err != nil {
				return err
			}
			tr, attached, err := loadTree(p, manifestPath)
			if err != nil {
				return err
			}
			if attached == 0 {
				return errors.New("no pipeline stage matches any manifest item")
			}

			r := runner.New(
				runner.WithLogger(logger),
				runner.WithPublishTimeout(time.Duration(cfg.Workflow.PublishTimeout)*time.Second),
			)
			if err := r.Accept(cmd.Context(), tr); err != nil {
				return err
			}
			if checkAll {
				tr.SetCheckState(tr.Root(), tree.Checked, false)
			}

			report, runErr := r.Run(cmd.Context(), tr)
			if saveErr := store.SaveRun(cmd.Context(), runFromReport(report), taskRowsFromReport(report)); saveErr != nil {
				logger.Warn("failed to persist run history", logging.Error(saveErr))
			}

			printReport(out, report, colorize)
			if runErr != nil {
				return runErr
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d task(s) failed", report.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "Path to the item manifest (TOML)")
	cmd.Flags().BoolVar(&checkAll, "all", false, "Check every accepted task instead of the plugin defaults")
	_ = cmd.MarkFlagRequired("manifest")
	return cmd
}
