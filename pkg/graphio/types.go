// Package graphio provides the canonical serialization format for history
// trees and computed layouts.
//
// The format is human-readable JSON designed for round-trip fidelity:
// import → consolidate → export → re-import produces identical results. The
// same types carry bson tags so trees can be stored as MongoDB documents.
package graphio

import (
	"encoding/json"
	"fmt"

	"github.com/lineagelab/idhist/pkg/lineage"
)

// Tree is the serialization format for a history tree.
// Used for API responses, storage, caching, and file exchange.
type Tree struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Links []Link `json:"links" bson:"links"`
}

// Node mirrors lineage.Node for serialization.
type Node struct {
	StableID string `json:"stable_id" bson:"stable_id"`
	Version  int    `json:"version" bson:"version"`
	Release  int    `json:"release" bson:"release"`
	Instance string `json:"instance" bson:"instance"`
}

// Link mirrors lineage.Link for serialization. An absent old side is a
// creation event, an absent new side a deletion event.
type Link struct {
	Old   *Node   `json:"old,omitempty" bson:"old,omitempty"`
	New   *Node   `json:"new,omitempty" bson:"new,omitempty"`
	Score float64 `json:"score,omitempty" bson:"score,omitempty"`
}

// Layout is the serialization format for a computed layout: the two axes
// plus one coordinate per node observation.
type Layout struct {
	Instances []string    `json:"instances" bson:"instances"`
	Labels    []string    `json:"labels" bson:"labels"`
	Rows      []string    `json:"rows" bson:"rows"`
	Coords    []NodeCoord `json:"coords" bson:"coords"`
}

// NodeCoord is one node observation with its layout position.
type NodeCoord struct {
	StableID string `json:"stable_id" bson:"stable_id"`
	Instance string `json:"instance" bson:"instance"`
	X        int    `json:"x" bson:"x"`
	Y        int    `json:"y" bson:"y"`
}

// FromTree converts a lineage tree to its serialization format.
// Nodes are sorted by identity key and links keep insertion order, so the
// output is deterministic.
func FromTree(t *lineage.Tree) Tree {
	nodes := t.Nodes()
	links := t.Links()

	out := Tree{
		Nodes: make([]Node, len(nodes)),
		Links: make([]Link, len(links)),
	}
	for i, n := range nodes {
		out.Nodes[i] = fromNode(n)
	}
	for i, l := range links {
		out.Links[i] = Link{Old: fromNodeRef(l.Old), New: fromNodeRef(l.New), Score: l.Score}
	}
	return out
}

// ToTree converts a serialized tree to a lineage tree.
// Returns an error if a record violates the tree's structural rules.
func (tj Tree) ToTree() (*lineage.Tree, error) {
	t := lineage.NewTree()
	for _, nj := range tj.Nodes {
		if err := t.AddNode(nj.toNode()); err != nil {
			return nil, fmt.Errorf("add node %s/%s: %w", nj.StableID, nj.Instance, err)
		}
	}
	for i, lj := range tj.Links {
		if err := t.AddLink(lineage.Link{Old: toNodeRef(lj.Old), New: toNodeRef(lj.New), Score: lj.Score}); err != nil {
			return nil, fmt.Errorf("add link %d: %w", i, err)
		}
	}
	return t, nil
}

// FromLayout captures the layout of a tree, computing it first if stale.
func FromLayout(t *lineage.Tree) Layout {
	nodes := t.Nodes()
	out := Layout{
		Instances: t.Instances(),
		Labels:    t.Labels(),
		Rows:      t.Rows(),
		Coords:    make([]NodeCoord, 0, len(nodes)),
	}
	for _, n := range nodes {
		c, ok := t.Coord(n)
		if !ok {
			continue
		}
		out.Coords = append(out.Coords, NodeCoord{
			StableID: n.StableID,
			Instance: n.Instance,
			X:        c.X,
			Y:        c.Y,
		})
	}
	return out
}

// MarshalTree serializes a Tree to compact JSON bytes, suitable for cache
// storage and content hashing.
func MarshalTree(t Tree) ([]byte, error) {
	return json.Marshal(t)
}

// UnmarshalTree deserializes JSON bytes to a Tree.
func UnmarshalTree(data []byte) (Tree, error) {
	var t Tree
	if err := json.Unmarshal(data, &t); err != nil {
		return Tree{}, err
	}
	return t, nil
}

// MarshalLayout serializes a Layout to compact JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.Marshal(l)
}

// UnmarshalLayout deserializes JSON bytes to a Layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, err
	}
	return l, nil
}

func fromNode(n lineage.Node) Node {
	return Node{StableID: n.StableID, Version: n.Version, Release: n.Release, Instance: n.Instance}
}

func fromNodeRef(n *lineage.Node) *Node {
	if n == nil {
		return nil
	}
	out := fromNode(*n)
	return &out
}

func (nj Node) toNode() lineage.Node {
	return lineage.Node{StableID: nj.StableID, Version: nj.Version, Release: nj.Release, Instance: nj.Instance}
}

func toNodeRef(nj *Node) *lineage.Node {
	if nj == nil {
		return nil
	}
	out := nj.toNode()
	return &out
}
