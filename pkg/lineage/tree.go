package lineage

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNode is returned by [Tree.AddNode] when the node's StableID
	// or Instance is empty. Both are required identity components.
	ErrInvalidNode = errors.New("node must have a stable ID and an instance name")

	// ErrInvalidLink is returned by [Tree.AddLink] when both sides of the
	// link are absent. A link needs at least one endpoint.
	ErrInvalidLink = errors.New("link must have an old or a new side")
)

// Tree owns the nodes and links of one identifier history and the layout
// derived from them. Nodes and links are keyed by their identity keys; the
// derived layout (release sequence, row order, coordinates) is invalidated
// by every mutation and rebuilt on demand.
//
// The zero value is not usable - use [NewTree].
// Tree is not safe for concurrent use without external synchronization.
type Tree struct {
	nodes map[string]Node
	links map[string]Link

	// linkOrder preserves insertion order so that optimizer tie-breaking
	// is deterministic. Replacing a link keeps its original slot.
	linkOrder []string

	dirty  bool
	xAxis  []Release
	yAxis  []string
	coords map[string]Coord
	moves  int
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{
		nodes:  make(map[string]Node),
		links:  make(map[string]Link),
		coords: make(map[string]Coord),
		dirty:  true,
	}
}

// AddNode stores a node, keyed by (StableID, Instance). Adding a node with
// an existing key replaces the stored record. Returns ErrInvalidNode if the
// stable ID or instance name is empty; no mutation happens on error.
func (t *Tree) AddNode(n Node) error {
	if n.StableID == "" || n.Instance == "" {
		return ErrInvalidNode
	}
	t.nodes[n.Key()] = n
	t.dirty = true
	return nil
}

// AddNodes stores all given nodes. On the first invalid node it stops and
// returns ErrInvalidNode; nodes before it remain stored.
func (t *Tree) AddNodes(nodes ...Node) error {
	for _, n := range nodes {
		if err := t.AddNode(n); err != nil {
			return err
		}
	}
	return nil
}

// AddLink stores a link, keyed by the identity of its endpoints. Re-adding
// an equal link replaces the prior one, keeping its position in the
// insertion order. Endpoint nodes are not required to be present in the node
// table; use [Tree.AddLinkNodes] to add them. Returns ErrInvalidLink if both
// sides are nil; no mutation happens on error.
func (t *Tree) AddLink(l Link) error {
	if l.Old == nil && l.New == nil {
		return ErrInvalidLink
	}
	// Copy endpoints so the stored link does not alias caller memory.
	if l.Old != nil {
		old := *l.Old
		l.Old = &old
	}
	if l.New != nil {
		nw := *l.New
		l.New = &nw
	}
	key := l.Key()
	if _, exists := t.links[key]; !exists {
		t.linkOrder = append(t.linkOrder, key)
	}
	t.links[key] = l
	t.dirty = true
	return nil
}

// AddLinks stores all given links. On the first invalid link it stops and
// returns ErrInvalidLink; links before it remain stored.
func (t *Tree) AddLinks(links ...Link) error {
	for _, l := range links {
		if err := t.AddLink(l); err != nil {
			return err
		}
	}
	return nil
}

// AddLinkNodes adds the endpoint nodes of every stored link to the node
// table. This is a convenience for callers that only hold link records:
// after it, every link endpoint has a coordinate.
func (t *Tree) AddLinkNodes() {
	for _, key := range t.linkOrder {
		l := t.links[key]
		if l.Old != nil {
			t.nodes[l.Old.Key()] = *l.Old
		}
		if l.New != nil {
			t.nodes[l.New.Key()] = *l.New
		}
	}
	t.dirty = true
}

// RemoveNode removes the node identified by (stableID, instance). Removing
// an absent node is a no-op.
func (t *Tree) RemoveNode(stableID, instance string) {
	key := stableID + keySep + instance
	if _, ok := t.nodes[key]; !ok {
		return
	}
	delete(t.nodes, key)
	t.dirty = true
}

// RemoveLink removes the stored link with the same identity key as l.
// Removing an absent link is a no-op.
func (t *Tree) RemoveLink(l Link) {
	t.removeLinkKey(l.Key())
}

func (t *Tree) removeLinkKey(key string) {
	if _, ok := t.links[key]; !ok {
		return
	}
	delete(t.links, key)
	t.linkOrder = slices.DeleteFunc(t.linkOrder, func(k string) bool { return k == key })
	t.dirty = true
}

// FlushNodes removes all nodes.
func (t *Tree) FlushNodes() {
	t.nodes = make(map[string]Node)
	t.dirty = true
}

// FlushLinks removes all links.
func (t *Tree) FlushLinks() {
	t.links = make(map[string]Link)
	t.linkOrder = nil
	t.dirty = true
}

// Node returns the stored node for (stableID, instance) and true, or the
// zero node and false if it is not present.
func (t *Tree) Node(stableID, instance string) (Node, bool) {
	n, ok := t.nodes[stableID+keySep+instance]
	return n, ok
}

// Nodes returns all stored nodes sorted by identity key. Sorting makes the
// output deterministic; the map itself has no order.
func (t *Tree) Nodes() []Node {
	keys := make([]string, 0, len(t.nodes))
	for k := range t.nodes {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	nodes := make([]Node, len(keys))
	for i, k := range keys {
		nodes[i] = t.nodes[k]
	}
	return nodes
}

// Links returns all stored links in insertion order.
func (t *Tree) Links() []Link {
	links := make([]Link, len(t.linkOrder))
	for i, k := range t.linkOrder {
		links[i] = t.links[k]
	}
	return links
}

// NodeCount returns the number of stored nodes.
func (t *Tree) NodeCount() int { return len(t.nodes) }

// LinkCount returns the number of stored links.
func (t *Tree) LinkCount() int { return len(t.links) }

// StableIDs returns the distinct stable identifiers of the node table,
// sorted lexicographically. This is the optimizer's initial row order, not
// the optimized one; use [Tree.Rows] for the layout order.
func (t *Tree) StableIDs() []string {
	seen := make(map[string]struct{}, len(t.nodes))
	var ids []string
	for _, n := range t.nodes {
		if _, ok := seen[n.StableID]; !ok {
			seen[n.StableID] = struct{}{}
			ids = append(ids, n.StableID)
		}
	}
	slices.Sort(ids)
	return ids
}
