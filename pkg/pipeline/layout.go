package pipeline

import (
	"context"
	"time"

	"github.com/lineagelab/idhist/pkg/graphio"
	"github.com/lineagelab/idhist/pkg/lineage"
	"github.com/lineagelab/idhist/pkg/observability"
)

// ComputeLayout consolidates the tree (when requested) and computes the
// grid layout. The tree is modified in place: consolidation removes and
// bridges links, and the coordinate cache is populated.
//
// Returns the serializable layout plus the number of links removed by
// consolidation.
func ComputeLayout(ctx context.Context, t *lineage.Tree, opts Options) (graphio.Layout, int, error) {
	if err := ctx.Err(); err != nil {
		return graphio.Layout{}, 0, err
	}

	merged := 0
	if opts.Consolidate {
		before := t.LinkCount()
		observability.Layout().OnConsolidateStart(ctx, before)
		start := time.Now()
		t.Consolidate()
		merged = before - t.LinkCount()
		observability.Layout().OnConsolidateComplete(ctx, merged, time.Since(start))
		opts.Logger.Debug("consolidated events", "merged", merged, "links", t.LinkCount())
	}

	observability.Layout().OnLayoutStart(ctx, t.NodeCount(), t.LinkCount())
	start := time.Now()
	t.CalculateCoords()
	observability.Layout().OnLayoutComplete(ctx, t.Moves(), time.Since(start), nil)
	opts.Logger.Debug("computed layout",
		"rows", len(t.Rows()),
		"releases", len(t.Labels()),
		"moves", t.Moves())

	return graphio.FromLayout(t), merged, nil
}
