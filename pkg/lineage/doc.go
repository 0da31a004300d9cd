// Package lineage models the version history of stable identifiers across
// successive releases of a dataset as a directed graph, and computes a
// two-dimensional layout suitable for rendering history diagrams.
//
// # Overview
//
// A dataset assigns every entity a stable identifier that persists while the
// entity evolves. Each release observes the identifier at some version; an
// identifier can change version, split into several identifiers, merge with
// others, appear, or disappear. idhist records each observation as a [Node]
// and each transition as a [Link], collects them in a [Tree], and derives a
// layout in which releases form columns and identifiers form rows.
//
// # Basic Usage
//
// Create a tree with [NewTree], add nodes and links, then query coordinates:
//
//	t := lineage.NewTree()
//	t.AddNode(lineage.Node{StableID: "ENSG001", Version: 1, Release: 38, Instance: "core_38"})
//	t.AddNode(lineage.Node{StableID: "ENSG001", Version: 2, Release: 40, Instance: "core_40"})
//	t.AddLink(lineage.Link{Old: &old, New: &new, Score: 0.97})
//	t.CalculateCoords()
//	c, ok := t.Coord(new)
//
// Coordinates are a derived view: any mutation marks them stale and they are
// rebuilt on the next read (or explicitly with [Tree.CalculateCoords]).
//
// # Row Ordering
//
// Rows are ordered to minimize the total vertical distance spanned by links
// whose identifier changes. The optimizer is an iterative local search: it
// repeatedly pulls the endpoints of the most-displaced link next to each
// other, keeps strictly improving orderings, and stops after a bounded number
// of consecutive failures. The result is a good local optimum, not a
// certified minimum.
//
// # Consolidation
//
// Raw event chains usually contain transitions that represent no real change
// (the same version re-observed in a later release) and gaps where a version
// silently persisted across a dataset-instance boundary. [Tree.Consolidate]
// rewrites the link set in a single left-to-right pass so that only real
// version changes and creation/deletion events remain.
//
// # Concurrency
//
// Tree instances are not safe for concurrent use. All operations are
// synchronous in-memory computation; callers must confine a tree to one
// goroutine or guard it externally.
package lineage
