package cli

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lineagelab/idhist/pkg/lineage"
)

func browserTree(t *testing.T) *lineage.Tree {
	t.Helper()
	tr := lineage.NewTree()
	nodes := []lineage.Node{
		{StableID: "ENSG001", Version: 1, Release: 38, Instance: "inst_a"},
		{StableID: "ENSG002", Version: 1, Release: 38, Instance: "inst_a"},
		{StableID: "ENSG003", Version: 1, Release: 39, Instance: "inst_b"},
	}
	if err := tr.AddNodes(nodes...); err != nil {
		t.Fatalf("AddNodes: %v", err)
	}
	tr.CalculateCoords()
	return tr
}

func keyMsg(s string) tea.KeyMsg {
	if s == "down" {
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	if s == "up" {
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTreeModelNavigation(t *testing.T) {
	m := NewTreeModel(browserTree(t))
	if len(m.IDs) != 3 {
		t.Fatalf("IDs = %v, want 3 identifiers", m.IDs)
	}
	if m.Cursor != 0 {
		t.Fatalf("initial cursor = %d, want 0", m.Cursor)
	}

	next, _ := m.Update(keyMsg("down"))
	m = next.(TreeModel)
	if m.Cursor != 1 {
		t.Errorf("cursor after down = %d, want 1", m.Cursor)
	}

	next, _ = m.Update(keyMsg("j"))
	m = next.(TreeModel)
	if m.Cursor != 2 {
		t.Errorf("cursor after j = %d, want 2", m.Cursor)
	}

	// Bottom is sticky.
	next, _ = m.Update(keyMsg("down"))
	m = next.(TreeModel)
	if m.Cursor != 2 {
		t.Errorf("cursor should stop at last entry, got %d", m.Cursor)
	}

	next, _ = m.Update(keyMsg("up"))
	m = next.(TreeModel)
	if m.Cursor != 1 {
		t.Errorf("cursor after up = %d, want 1", m.Cursor)
	}
}

func TestTreeModelQuit(t *testing.T) {
	m := NewTreeModel(browserTree(t))
	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q should produce a quit command")
	}
}

func TestTreeModelView(t *testing.T) {
	m := NewTreeModel(browserTree(t))
	view := m.View()

	for _, id := range m.IDs {
		if !strings.Contains(view, id) {
			t.Errorf("view missing identifier %s", id)
		}
	}
	if !strings.Contains(view, "release") {
		t.Error("view missing detail table header")
	}
}

func TestTreeModelScrolling(t *testing.T) {
	tr := lineage.NewTree()
	for i := 0; i < 30; i++ {
		n := lineage.Node{StableID: fmt.Sprintf("ENSG%03d", i), Version: 1, Release: 38, Instance: "inst_a"}
		if err := tr.AddNode(n); err != nil {
			t.Fatalf("AddNode: %v", err)
		}
	}
	tr.CalculateCoords()

	m := NewTreeModel(tr)
	m.Height = 5
	for i := 0; i < 10; i++ {
		next, _ := m.Update(keyMsg("down"))
		m = next.(TreeModel)
	}
	if m.Cursor != 10 {
		t.Errorf("cursor = %d, want 10", m.Cursor)
	}
	if m.Offset != 6 {
		t.Errorf("offset = %d, want 6", m.Offset)
	}
}
