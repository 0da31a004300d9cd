package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/lineagelab/idhist/pkg/errors"
	"github.com/lineagelab/idhist/pkg/graphio"
)

// consolidateCommand creates the consolidate command.
func (c *CLI) consolidateCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "consolidate [tree.json]",
		Short: "Merge redundant no-change events in a history tree",
		Long: `Merge redundant no-change events in a history tree.

Consecutive events where an identifier keeps the same version are bridged
into a single link, and gaps where an identifier is absent from intermediate
releases are closed. The consolidated tree is written as JSON and can be fed
back into 'layout' or 'render'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConsolidate(cmd.Context(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.consolidated.json)")

	return cmd
}

func (c *CLI) runConsolidate(ctx context.Context, input, output string) error {
	if err := apperrors.ValidatePath(input); err != nil {
		return err
	}

	t, err := graphio.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load tree %s: %w", input, err)
	}

	p := beginStage(loggerFromContext(ctx), "consolidate")
	before := t.LinkCount()
	t.Consolidate()
	merged := before - t.LinkCount()
	p.done(fmt.Sprintf("Merged %d events", merged))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	out := outputPath(input, output, ".consolidated.json")
	if err := graphio.ExportJSON(t, out); err != nil {
		return fmt.Errorf("write output %s: %w", out, err)
	}

	printSuccess("Consolidation complete")
	printFile(out)
	printDetail("%d links before, %d after", before, t.LinkCount())

	return nil
}
