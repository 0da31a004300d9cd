package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lineagelab/idhist/pkg/cache"
	apperrors "github.com/lineagelab/idhist/pkg/errors"
	"github.com/lineagelab/idhist/pkg/graphio"
	"github.com/lineagelab/idhist/pkg/pipeline"
)

// layoutCommand creates the layout command for computing grid layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [tree.json]",
		Short: "Compute the grid layout for a history tree",
		Long: `Compute the grid layout for a history tree.

The layout command takes a tree.json file and computes release columns, row
positions, and per-node coordinates. The output is a layout.json file that
can be rendered with 'idhist render' or consumed directly.

Pass --consolidate to merge redundant no-change events before layout.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Consolidate, "consolidate", false, "merge redundant no-change events before layout")

	return cmd
}

// runLayout loads the tree, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	if err := apperrors.ValidatePath(input); err != nil {
		return err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Input = input
	opts.Logger = c.Logger

	t, treeHit, err := runner.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return fmt.Errorf("load tree %s: %w", input, err)
	}

	treeData, err := graphio.MarshalTree(graphio.FromTree(t))
	if err != nil {
		return fmt.Errorf("hash tree: %w", err)
	}

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	layout, _, layoutHit, err := runner.ComputeLayoutWithCacheInfo(ctx, t, cache.Hash(treeData), opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	out := outputPath(input, output, ".layout.json")
	data, err := graphio.MarshalLayout(layout)
	if err != nil {
		return fmt.Errorf("serialize layout: %w", err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", out, err)
	}

	printSuccess("Layout complete")
	printFile(out)
	printStats(t.NodeCount(), t.LinkCount(), len(layout.Labels), treeHit && layoutHit)
	printNewline()
	printNextStep("Render", "idhist render "+input)

	return nil
}
