package lineage

import (
	"slices"
	"testing"
)

// historyFixture builds the canonical lineage: ENSG001 changes version and
// then continues as ENSG003 across two later instances, while ENSG002
// changes version early and is untouched by the split.
func historyFixture(t *testing.T) *Tree {
	t.Helper()

	g1v1 := node("ENSG001", 1, 38, "inst_a")
	g1v2 := node("ENSG001", 2, 40, "inst_c")
	g2v1 := node("ENSG002", 1, 38, "inst_a")
	g2v2 := node("ENSG002", 2, 39, "inst_b")
	g3d := node("ENSG003", 1, 41, "inst_d")
	g3e := node("ENSG003", 1, 42, "inst_e")

	tr := NewTree()
	if err := tr.AddNodes(g1v1, g1v2, g2v1, g2v2, g3d, g3e); err != nil {
		t.Fatalf("AddNodes: %v", err)
	}
	err := tr.AddLinks(
		link(nil, &g1v1, 0),        // creation
		link(&g1v1, &g1v2, 0.98),   // version change
		link(&g1v2, &g3d, 0.66),    // identifier change
		link(&g3d, &g3e, 1.0),      // persists across instances
		link(&g2v1, &g2v2, 0.95),   // independent lineage
	)
	if err != nil {
		t.Fatalf("AddLinks: %v", err)
	}
	return tr
}

func TestCalculateCoordsEndToEnd(t *testing.T) {
	tr := historyFixture(t)
	tr.CalculateCoords()

	if want := []string{"inst_a", "inst_b", "inst_c", "inst_d", "inst_e"}; !slices.Equal(tr.Instances(), want) {
		t.Errorf("Instances = %v, want %v", tr.Instances(), want)
	}
	if want := []string{"38", "39", "40", "41", "42"}; !slices.Equal(tr.Labels(), want) {
		t.Errorf("Labels = %v, want %v", tr.Labels(), want)
	}
	if want := []string{"ENSG001", "ENSG003", "ENSG002"}; !slices.Equal(tr.Rows(), want) {
		t.Errorf("Rows = %v, want %v", tr.Rows(), want)
	}

	wantCoords := map[[2]string]Coord{
		{"ENSG001", "inst_a"}: {X: 0, Y: 0},
		{"ENSG001", "inst_c"}: {X: 2, Y: 0},
		{"ENSG003", "inst_d"}: {X: 3, Y: 1},
		{"ENSG003", "inst_e"}: {X: 4, Y: 1},
		{"ENSG002", "inst_a"}: {X: 0, Y: 2},
		{"ENSG002", "inst_b"}: {X: 1, Y: 2},
	}
	for key, want := range wantCoords {
		got, ok := tr.CoordKey(key[0], key[1])
		if !ok {
			t.Errorf("CoordKey(%s, %s): missing", key[0], key[1])
			continue
		}
		if got != want {
			t.Errorf("CoordKey(%s, %s) = %+v, want %+v", key[0], key[1], got, want)
		}
	}
}

func TestCalculateCoordsIdempotent(t *testing.T) {
	tr := historyFixture(t)

	tr.CalculateCoords()
	first := make(map[string]Coord)
	for _, n := range tr.Nodes() {
		c, _ := tr.Coord(n)
		first[n.Key()] = c
	}

	tr.CalculateCoords()
	for _, n := range tr.Nodes() {
		c, _ := tr.Coord(n)
		if c != first[n.Key()] {
			t.Errorf("coord for %s/%s changed across recomputation: %+v vs %+v",
				n.StableID, n.Instance, first[n.Key()], c)
		}
	}
}

func TestCoordsWithinBounds(t *testing.T) {
	tr := historyFixture(t)
	maxX := len(tr.Instances())
	maxY := len(tr.Rows())

	for _, n := range tr.Nodes() {
		c, ok := tr.Coord(n)
		if !ok {
			t.Fatalf("missing coord for %s/%s", n.StableID, n.Instance)
		}
		if c.X < 0 || c.X >= maxX || c.Y < 0 || c.Y >= maxY {
			t.Errorf("coord %+v for %s/%s out of [0,%d)×[0,%d)", c, n.StableID, n.Instance, maxX, maxY)
		}
	}
}

func TestCoordUnknownNode(t *testing.T) {
	tr := historyFixture(t)
	if _, ok := tr.CoordKey("ENSG999", "inst_a"); ok {
		t.Error("unknown node returned a coordinate")
	}
}

func TestSingleNode(t *testing.T) {
	tr := NewTree()
	tr.AddNode(node("ENSG001", 1, 38, "core_38"))

	c, ok := tr.CoordKey("ENSG001", "core_38")
	if !ok {
		t.Fatal("missing coord for the only node")
	}
	if c != (Coord{X: 0, Y: 0}) {
		t.Errorf("coord = %+v, want (0,0)", c)
	}
	if tr.Moves() != 0 {
		t.Errorf("Moves = %d, want 0", tr.Moves())
	}
}

func TestMutationInvalidatesCoords(t *testing.T) {
	tr := historyFixture(t)
	tr.CalculateCoords()

	tr.AddNode(node("ENSG000", 1, 37, "inst_0"))

	// First read after the mutation rebuilds the layout: the new instance
	// shifts every release one column right.
	c, ok := tr.CoordKey("ENSG001", "inst_a")
	if !ok {
		t.Fatal("missing coord after mutation")
	}
	if c.X != 1 {
		t.Errorf("x after prepended release = %d, want 1", c.X)
	}
}
