package lineage

// CalculateCoords recomputes the layout from the current node and link set:
// the chronological release sequence (x-axis), the untangled identifier row
// order (y-axis), and a coordinate per stored node. It discards any prior
// layout first; for an unchanged tree the result is identical on every call.
//
// Calling this explicitly is optional - the query methods rebuild a stale
// layout on demand.
func (t *Tree) CalculateCoords() {
	t.xAxis = sequenceReleases(t.nodes)
	t.yAxis, t.moves = untangle(t.StableIDs(), t.Links())

	xpos := make(map[string]int, len(t.xAxis))
	for i, r := range t.xAxis {
		xpos[r.Instance] = i
	}
	ypos := rankOf(t.yAxis)

	t.coords = make(map[string]Coord, len(t.nodes))
	for key, n := range t.nodes {
		t.coords[key] = Coord{X: xpos[n.Instance], Y: ypos[n.StableID]}
	}
	t.dirty = false
}

func (t *Tree) ensureCoords() {
	if t.dirty {
		t.CalculateCoords()
	}
}

// Coord returns the layout position of the given node observation. The
// second return is false for a node the tree does not store; that is not an
// error, just an empty result.
func (t *Tree) Coord(n Node) (Coord, bool) {
	return t.CoordKey(n.StableID, n.Instance)
}

// CoordKey is [Tree.Coord] addressed by the identity key components.
func (t *Tree) CoordKey(stableID, instance string) (Coord, bool) {
	t.ensureCoords()
	c, ok := t.coords[stableID+keySep+instance]
	return c, ok
}

// Releases returns the chronological x-axis: one entry per release instance,
// with display labels resolving duplicate release numbers.
func (t *Tree) Releases() []Release {
	t.ensureCoords()
	out := make([]Release, len(t.xAxis))
	copy(out, t.xAxis)
	return out
}

// Instances returns the instance-name projection of the x-axis.
func (t *Tree) Instances() []string {
	t.ensureCoords()
	out := make([]string, len(t.xAxis))
	for i, r := range t.xAxis {
		out[i] = r.Instance
	}
	return out
}

// Labels returns the display-label projection of the x-axis.
func (t *Tree) Labels() []string {
	t.ensureCoords()
	out := make([]string, len(t.xAxis))
	for i, r := range t.xAxis {
		out[i] = r.Label
	}
	return out
}

// Rows returns the y-axis: all stable identifiers in their optimized row
// order.
func (t *Tree) Rows() []string {
	t.ensureCoords()
	out := make([]string, len(t.yAxis))
	copy(out, t.yAxis)
	return out
}

// Moves returns the number of row moves the last layout computation
// accepted. Mainly useful for diagnostics.
func (t *Tree) Moves() int {
	t.ensureCoords()
	return t.moves
}
