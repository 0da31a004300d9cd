package graphio

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/lineagelab/idhist/pkg/lineage"
)

func node(id string, version, release int, instance string) lineage.Node {
	return lineage.Node{StableID: id, Version: version, Release: release, Instance: instance}
}

func sampleTree(t *testing.T) *lineage.Tree {
	t.Helper()
	tr := lineage.NewTree()
	a := node("ENSG001", 1, 38, "inst_a")
	b := node("ENSG001", 2, 40, "inst_b")
	if err := tr.AddNodes(a, b); err != nil {
		t.Fatalf("AddNodes: %v", err)
	}
	links := []lineage.Link{
		{New: &a, Score: 1.0},
		{Old: &a, New: &b, Score: 0.9},
	}
	if err := tr.AddLinks(links...); err != nil {
		t.Fatalf("AddLinks: %v", err)
	}
	return tr
}

func TestRoundTrip(t *testing.T) {
	tr := sampleTree(t)

	var buf bytes.Buffer
	if err := WriteJSON(tr, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	if !reflect.DeepEqual(FromTree(got), FromTree(tr)) {
		t.Errorf("round-trip mismatch:\ngot  %+v\nwant %+v", FromTree(got), FromTree(tr))
	}
}

func TestReadJSONCreationAndDeletion(t *testing.T) {
	input := `{
	  "nodes": [{"stable_id": "ENSG001", "version": 1, "release": 38, "instance": "inst_a"}],
	  "links": [
	    {"new": {"stable_id": "ENSG001", "version": 1, "release": 38, "instance": "inst_a"}},
	    {"old": {"stable_id": "ENSG001", "version": 1, "release": 38, "instance": "inst_a"}, "score": 0.5}
	  ]
	}`

	tr, err := ReadJSON(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	links := tr.Links()
	if len(links) != 2 {
		t.Fatalf("LinkCount = %d, want 2", len(links))
	}
	if links[0].Old != nil || links[0].New == nil {
		t.Errorf("first link should be a creation event, got %+v", links[0])
	}
	if links[1].Old == nil || links[1].New != nil {
		t.Errorf("second link should be a deletion event, got %+v", links[1])
	}
	if links[1].Score != 0.5 {
		t.Errorf("Score = %v, want 0.5", links[1].Score)
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{
			name:  "malformed json",
			input: `{"nodes": [`,
		},
		{
			name:  "missing stable id",
			input: `{"nodes": [{"version": 1, "release": 38, "instance": "inst_a"}]}`,
			want:  lineage.ErrInvalidNode,
		},
		{
			name:  "empty link",
			input: `{"nodes": [], "links": [{"score": 1.0}]}`,
			want:  lineage.ErrInvalidLink,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestExportImportJSON(t *testing.T) {
	tr := sampleTree(t)
	path := filepath.Join(t.TempDir(), "tree.json")

	if err := ExportJSON(tr, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	got, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if got.NodeCount() != tr.NodeCount() || got.LinkCount() != tr.LinkCount() {
		t.Errorf("imported %d nodes/%d links, want %d/%d",
			got.NodeCount(), got.LinkCount(), tr.NodeCount(), tr.LinkCount())
	}
}

func TestImportJSONMissingFile(t *testing.T) {
	if _, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFromLayout(t *testing.T) {
	tr := sampleTree(t)
	layout := FromLayout(tr)

	if want := []string{"inst_a", "inst_b"}; !reflect.DeepEqual(layout.Instances, want) {
		t.Errorf("Instances = %v, want %v", layout.Instances, want)
	}
	if want := []string{"38", "40"}; !reflect.DeepEqual(layout.Labels, want) {
		t.Errorf("Labels = %v, want %v", layout.Labels, want)
	}
	if want := []string{"ENSG001"}; !reflect.DeepEqual(layout.Rows, want) {
		t.Errorf("Rows = %v, want %v", layout.Rows, want)
	}
	if len(layout.Coords) != 2 {
		t.Fatalf("Coords count = %d, want 2", len(layout.Coords))
	}
	for _, c := range layout.Coords {
		if c.Y != 0 {
			t.Errorf("coord %s/%s Y = %d, want 0", c.StableID, c.Instance, c.Y)
		}
	}
}
