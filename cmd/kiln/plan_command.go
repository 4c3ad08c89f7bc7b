package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"kiln/internal/logging"
	"kiln/internal/runner"
	"kiln/internal/tree"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the publish tree and check states without publishing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			p, err := buildPublishPipeline(cfg, logging.NewNop())
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

			r := runner.New()
			if err := r.Accept(cmd.Context(), tr); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			renderPlan(out, tr)

			summary := tr.Summary(tr.Root())
			if len(summary) == 0 {
				fmt.Fprintln(out, "Nothing checked for publish.")
				return nil
			}
			fmt.Fprintf(out, "Will publish: %s\n", strings.Join(summary, ", "))
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "Path to the item manifest (TOML)")
	_ = cmd.MarkFlagRequired("manifest")
	return cmd
}

func renderPlan(out io.Writer, tr *tree.Tree) {
	var walk func(id tree.NodeID, depth int)
	walk = func(id tree.NodeID, depth int) {
		indent := strings.Repeat("  ", depth)
		switch {
		case tr.Task(id) != nil:
			task := tr.Task(id)
			if !task.Visible {
				return
			}
			line := fmt.Sprintf("%s%s %s", indent, checkMark(tr.CheckState(id)), task.Plugin.Name())
			if !task.Enabled {
				line += " (disabled)"
			}
			fmt.Fprintln(out, line)
		case tr.Item(id) != nil:
			it := tr.Item(id)
			if !it.Visible {
				return
			}
			line := fmt.Sprintf("%s%s %s (%s)", indent, checkMark(tr.CheckState(id)), it.Name, typeLabel(it.Type))
			if !it.Active {
				line += " (inactive)"
			}
			fmt.Fprintln(out, line)
		}
		for _, child := range tr.Children(id) {
			walk(child, depth+1)
		}
	}
	for _, child := range tr.Children(tr.Root()) {
		walk(child, 0)
	}
}

func checkMark(state tree.CheckState) string {
	switch state {
	case tree.Checked:
		return "[x]"
	case tree.PartiallyChecked:
		return "[~]"
	default:
		return "[ ]"
	}
}
