package graphio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/lineagelab/idhist/pkg/lineage"
)

// WriteJSON encodes a history tree as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON] for round-trip processing.
func WriteJSON(t *lineage.Tree, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromTree(t)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a history tree to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(t *lineage.Tree, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(t, f)
}

// ReadJSON decodes a JSON tree from r.
//
// The input must be a JSON object with "nodes" and "links" arrays:
//
//	{
//	  "nodes": [{"stable_id": "ENSG001", "version": 1, "release": 38, "instance": "inst_a"}],
//	  "links": [{"new": {"stable_id": "ENSG001", "version": 1, "release": 38, "instance": "inst_a"}}]
//	}
//
// Each node must have non-empty "stable_id" and "instance" fields. Link
// endpoints may be omitted: a link with no "old" is a creation event, a
// link with no "new" a deletion event.
//
// ReadJSON returns an error if the JSON is malformed or if a node or link
// violates the tree's structural rules. Errors wrap the underlying cause
// with context naming the offending record; use errors.Is to check for
// specific tree errors.
//
// The returned tree is independent of r and can be modified safely after
// ReadJSON returns. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*lineage.Tree, error) {
	var data Tree
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return data.ToTree()
}

// ImportJSON reads a JSON file at path and returns the decoded tree.
// The error wraps the underlying cause with the file path for context.
func ImportJSON(path string) (*lineage.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// WriteLayoutJSON encodes a computed layout as indented JSON and writes it
// to w. The layout is computed first when the tree is stale.
func WriteLayoutJSON(t *lineage.Tree, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromLayout(t)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
