package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"kiln/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check the publish environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			failed := 0
			for _, check := range preflight.RunAll(cmd.Context(), cfg) {
				fmt.Fprintln(out, renderCheckLine(check.Name, check.Passed, check.Detail, colorize))
				if !check.Passed {
					failed++
				}
			}
			if cfg.Registry.Endpoint == "" {
				fmt.Fprintln(out, renderWarnLine("Asset registry not configured; publish records are skipped", colorize))
			}
			if failed > 0 {
				return errors.New("preflight checks failed")
			}
			fmt.Fprintln(out, "Environment ready.")
			return nil
		},
	}
}
