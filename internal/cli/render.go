package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/lineagelab/idhist/pkg/errors"
	"github.com/lineagelab/idhist/pkg/pipeline"
)

// renderCommand creates the render command for generating visualizations.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output  string
		formats string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [tree.json]",
		Short: "Render a history tree as SVG, PNG, DOT, or JSON",
		Long: `Render a history tree as SVG, PNG, DOT, or JSON.

The render command runs the full pipeline: it loads the tree, optionally
consolidates it, computes the layout, and writes one file per requested
format. Formats are comma-separated, e.g. -f svg,png.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formats)
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path (default: input without extension)")
	cmd.Flags().StringVarP(&formats, "format", "f", "svg", "output formats, comma-separated: svg, png, dot, json")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Consolidate, "consolidate", false, "merge redundant no-change events before layout")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include release and score annotations")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
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

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	}

	printSuccess("Render complete")
	for _, format := range opts.Formats {
		path := base + "." + format
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(result.Stats.NodeCount, result.Stats.LinkCount, len(result.Layout.Labels), result.CacheInfo.RenderHit)

	return nil
}
