package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/lineagelab/idhist/pkg/lineage"
)

// Options configures tree rendering.
type Options struct {
	// Detailed includes release and score annotations.
	// When false, only identifier and version are shown.
	Detailed bool
}

// ToDOT converts a history tree to Graphviz DOT format.
// The resulting DOT string can be rendered using [SVG] or [PNG].
//
// Releases become left-to-right columns (one rank per release) and nodes
// carry "id.version" labels. Transfer links between different identifiers
// are drawn dashed, deletion events as a small terminal marker.
func ToDOT(t *lineage.Tree, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph H {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.35;\n")
	buf.WriteString("\n")

	releases := t.Releases()
	labels := t.Labels()

	// One anchor per release keeps columns in chronological order even when
	// no real edge spans two adjacent releases.
	for i, label := range labels {
		fmt.Fprintf(&buf, "  %q [shape=plaintext, style=\"\", fontsize=12, label=%q];\n",
			anchorID(i), label)
	}
	for i := 1; i < len(labels); i++ {
		fmt.Fprintf(&buf, "  %q -> %q [style=invis];\n", anchorID(i-1), anchorID(i))
	}
	buf.WriteString("\n")

	// Group nodes by release column.
	columns := make(map[string][]lineage.Node)
	for _, n := range t.Nodes() {
		columns[n.Instance] = append(columns[n.Instance], n)
	}
	for i, r := range releases {
		fmt.Fprintf(&buf, "  { rank=same; %q;", anchorID(i))
		for _, n := range columns[r.Instance] {
			fmt.Fprintf(&buf, " %q;", nodeID(n))
		}
		buf.WriteString(" }\n")
	}
	buf.WriteString("\n")

	for _, n := range t.Nodes() {
		fmt.Fprintf(&buf, "  %q [label=%q];\n", nodeID(n), fmtLabel(n, opts.Detailed))
	}

	buf.WriteString("\n")
	for _, l := range t.Links() {
		writeLink(&buf, l, opts.Detailed)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func anchorID(i int) string {
	return fmt.Sprintf("__release_%d", i)
}

// nodeID builds a DOT-safe identifier for a node observation.
func nodeID(n lineage.Node) string {
	return n.StableID + "/" + n.Instance
}

func fmtLabel(n lineage.Node, detailed bool) string {
	label := fmt.Sprintf("%s.%d", n.StableID, n.Version)
	if detailed {
		label += fmt.Sprintf("\nrelease %d (%s)", n.Release, n.Instance)
	}
	return label
}

func writeLink(buf *bytes.Buffer, l lineage.Link, detailed bool) {
	var attrs []string
	if detailed && l.Score != 0 {
		attrs = append(attrs, fmt.Sprintf("label=%q, fontsize=10", fmt.Sprintf("%.2f", l.Score)))
	}
	if !l.IsSelf() {
		attrs = append(attrs, "style=dashed")
	}
	attr := ""
	if len(attrs) > 0 {
		attr = " [" + strings.Join(attrs, ", ") + "]"
	}

	switch {
	case l.Old != nil && l.New != nil:
		fmt.Fprintf(buf, "  %q -> %q%s;\n", nodeID(*l.Old), nodeID(*l.New), attr)
	case l.Old == nil && l.New != nil:
		// Creation event: small source marker.
		marker := "__create_" + nodeID(*l.New)
		fmt.Fprintf(buf, "  %q [shape=point, width=0.08];\n", marker)
		fmt.Fprintf(buf, "  %q -> %q%s;\n", marker, nodeID(*l.New), attr)
	case l.Old != nil && l.New == nil:
		// Deletion event: small sink marker.
		marker := "__delete_" + nodeID(*l.Old)
		fmt.Fprintf(buf, "  %q [shape=point, width=0.08];\n", marker)
		fmt.Fprintf(buf, "  %q -> %q%s;\n", nodeID(*l.Old), marker, attr)
	}
}
