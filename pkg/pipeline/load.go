package pipeline

import (
	"context"
	"fmt"

	"github.com/lineagelab/idhist/pkg/graphio"
	"github.com/lineagelab/idhist/pkg/lineage"
)

// Loader produces a history tree from some source.
// The pipeline uses a file loader by default; record stores (e.g. MongoDB)
// plug in through this interface.
type Loader interface {
	Load(ctx context.Context, opts Options) (*lineage.Tree, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, opts Options) (*lineage.Tree, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, opts Options) (*lineage.Tree, error) {
	return f(ctx, opts)
}

// Load reads a history tree using the configured loader, or from the input
// file when no loader is set.
func Load(ctx context.Context, opts Options) (*lineage.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Loader != nil {
		return opts.Loader.Load(ctx, opts)
	}
	if opts.Input == "" {
		return nil, fmt.Errorf("no input file and no loader configured")
	}

	t, err := graphio.ImportJSON(opts.Input)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("loaded tree from file",
		"path", opts.Input,
		"nodes", t.NodeCount(),
		"links", t.LinkCount())
	return t, nil
}
