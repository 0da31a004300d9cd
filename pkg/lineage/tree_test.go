package lineage

import (
	"errors"
	"testing"
)

func node(id string, version, release int, instance string) Node {
	return Node{StableID: id, Version: version, Release: release, Instance: instance}
}

func link(old, new *Node, score float64) Link {
	return Link{Old: old, New: new, Score: score}
}

func TestAddNode(t *testing.T) {
	tests := []struct {
		name      string
		nodes     []Node
		wantErr   error
		wantCount int
	}{
		{
			name:      "Single",
			nodes:     []Node{node("ENSG001", 1, 38, "core_38")},
			wantCount: 1,
		},
		{
			name: "DuplicateKeyReplaces",
			nodes: []Node{
				node("ENSG001", 1, 38, "core_38"),
				node("ENSG001", 2, 38, "core_38"),
			},
			wantCount: 1,
		},
		{
			name: "SameIDDifferentInstance",
			nodes: []Node{
				node("ENSG001", 1, 38, "core_38"),
				node("ENSG001", 2, 40, "core_40"),
			},
			wantCount: 2,
		},
		{
			name:    "MissingStableID",
			nodes:   []Node{node("", 1, 38, "core_38")},
			wantErr: ErrInvalidNode,
		},
		{
			name:    "MissingInstance",
			nodes:   []Node{node("ENSG001", 1, 38, "")},
			wantErr: ErrInvalidNode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTree()
			err := tr.AddNodes(tt.nodes...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("AddNodes error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("AddNodes: %v", err)
			}
			if got := tr.NodeCount(); got != tt.wantCount {
				t.Errorf("NodeCount = %d, want %d", got, tt.wantCount)
			}
		})
	}
}

func TestAddLink(t *testing.T) {
	a := node("ENSG001", 1, 38, "core_38")
	b := node("ENSG001", 2, 40, "core_40")

	t.Run("BothSidesAbsent", func(t *testing.T) {
		tr := NewTree()
		if err := tr.AddLink(Link{}); !errors.Is(err, ErrInvalidLink) {
			t.Fatalf("AddLink error = %v, want ErrInvalidLink", err)
		}
		if tr.LinkCount() != 0 {
			t.Errorf("LinkCount = %d after failed add, want 0", tr.LinkCount())
		}
	})

	t.Run("CreationAndDeletion", func(t *testing.T) {
		tr := NewTree()
		if err := tr.AddLink(link(nil, &a, 0)); err != nil {
			t.Fatalf("creation link: %v", err)
		}
		if err := tr.AddLink(link(&b, nil, 0)); err != nil {
			t.Fatalf("deletion link: %v", err)
		}
		if tr.LinkCount() != 2 {
			t.Errorf("LinkCount = %d, want 2", tr.LinkCount())
		}
	})

	t.Run("EqualKeyReplaces", func(t *testing.T) {
		tr := NewTree()
		tr.AddLink(link(&a, &b, 0.5))
		tr.AddLink(link(&a, &b, 0.9))
		if tr.LinkCount() != 1 {
			t.Fatalf("LinkCount = %d, want 1", tr.LinkCount())
		}
		if got := tr.Links()[0].Score; got != 0.9 {
			t.Errorf("Score = %v, want 0.9 (replacement)", got)
		}
	})

	t.Run("EndpointsNotAliased", func(t *testing.T) {
		tr := NewTree()
		old := a
		tr.AddLink(link(&old, &b, 0))
		old.Version = 99
		if got := tr.Links()[0].Old.Version; got != 1 {
			t.Errorf("stored old version = %d, want 1 (copy on add)", got)
		}
	})
}

func TestAddLinkNodes(t *testing.T) {
	a := node("ENSG001", 1, 38, "core_38")
	b := node("ENSG001", 2, 40, "core_40")

	tr := NewTree()
	tr.AddLink(link(nil, &a, 0))
	tr.AddLink(link(&a, &b, 0.8))

	if tr.NodeCount() != 0 {
		t.Fatalf("NodeCount = %d before AddLinkNodes, want 0", tr.NodeCount())
	}
	tr.AddLinkNodes()
	if tr.NodeCount() != 2 {
		t.Fatalf("NodeCount = %d after AddLinkNodes, want 2", tr.NodeCount())
	}
	if _, ok := tr.Node("ENSG001", "core_40"); !ok {
		t.Error("endpoint node ENSG001/core_40 missing")
	}
}

func TestRemove(t *testing.T) {
	a := node("ENSG001", 1, 38, "core_38")
	b := node("ENSG001", 2, 40, "core_40")

	tr := NewTree()
	tr.AddNodes(a, b)
	tr.AddLink(link(&a, &b, 0))

	tr.RemoveNode("ENSG001", "core_38")
	if tr.NodeCount() != 1 {
		t.Errorf("NodeCount = %d, want 1", tr.NodeCount())
	}

	// Removing an absent record is a no-op, not an error.
	tr.RemoveNode("ENSG999", "core_38")
	tr.RemoveLink(link(&b, &a, 0))
	if tr.NodeCount() != 1 || tr.LinkCount() != 1 {
		t.Errorf("counts after absent removals = (%d,%d), want (1,1)", tr.NodeCount(), tr.LinkCount())
	}

	tr.RemoveLink(link(&a, &b, 0.42)) // score is not part of identity
	if tr.LinkCount() != 0 {
		t.Errorf("LinkCount = %d, want 0", tr.LinkCount())
	}
}

func TestFlush(t *testing.T) {
	a := node("ENSG001", 1, 38, "core_38")
	b := node("ENSG002", 1, 38, "core_38")

	tr := NewTree()
	tr.AddNodes(a, b)
	tr.AddLink(link(&a, &b, 0))
	tr.CalculateCoords()

	tr.FlushNodes()
	tr.FlushLinks()

	if len(tr.Nodes()) != 0 {
		t.Errorf("Nodes after flush = %d, want 0", len(tr.Nodes()))
	}
	if len(tr.Links()) != 0 {
		t.Errorf("Links after flush = %d, want 0", len(tr.Links()))
	}
	if got := tr.Instances(); len(got) != 0 {
		t.Errorf("Instances after flush = %v, want empty", got)
	}
	if got := tr.Rows(); len(got) != 0 {
		t.Errorf("Rows after flush = %v, want empty", got)
	}
}

func TestLinksInsertionOrder(t *testing.T) {
	a := node("ENSG001", 1, 38, "core_38")
	b := node("ENSG002", 1, 38, "core_38")
	c := node("ENSG003", 1, 38, "core_38")

	tr := NewTree()
	tr.AddLink(link(&b, &c, 0))
	tr.AddLink(link(&a, &b, 0))
	tr.AddLink(link(&b, &c, 1)) // replacement keeps slot

	links := tr.Links()
	if len(links) != 2 {
		t.Fatalf("LinkCount = %d, want 2", len(links))
	}
	if links[0].Old.StableID != "ENSG002" || links[0].Score != 1 {
		t.Errorf("first link = %v→%v score %v, want replaced ENSG002 link first",
			links[0].Old.StableID, links[0].New.StableID, links[0].Score)
	}
	if links[1].Old.StableID != "ENSG001" {
		t.Errorf("second link old = %s, want ENSG001", links[1].Old.StableID)
	}
}
