package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lineagelab/idhist/pkg/graphio"
	"github.com/lineagelab/idhist/pkg/lineage"
	"github.com/lineagelab/idhist/pkg/observability"
	"github.com/lineagelab/idhist/pkg/render"
)

// RenderFromTree renders the tree into every requested format.
// The tree must already have its layout computed; formats that rasterize
// (svg, png) go through Graphviz, "dot" returns the DOT text, and "json"
// returns the serialized layout.
func RenderFromTree(ctx context.Context, t *lineage.Tree, layout graphio.Layout, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	var dot string
	needsDOT := func() string {
		if dot == "" {
			dot = render.ToDOT(t, render.Options{Detailed: opts.Detailed})
		}
		return dot
	}

	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		observability.Layout().OnRenderStart(ctx, format)
		start := time.Now()

		var data []byte
		var err error
		switch format {
		case FormatDOT:
			data = []byte(needsDOT())
		case FormatSVG:
			data, err = render.SVG(needsDOT())
		case FormatPNG:
			data, err = render.PNG(needsDOT())
		case FormatJSON:
			data, err = json.MarshalIndent(layout, "", "  ")
		default:
			err = ValidateFormat(format)
		}

		observability.Layout().OnRenderComplete(ctx, format, len(data), time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
