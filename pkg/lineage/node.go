package lineage

import "strings"

// keySep separates identity key components. It is a control character so it
// cannot collide with identifier or instance names from real datasets.
const keySep = "\x1f"

// Node is one observation of a stable identifier: the identifier at a
// specific version, recorded by a specific release instance.
//
// Release numbers are not unique across dataset instances before a
// historical cutoff, so Instance (the name of the dataset instance that
// produced the record) is part of the identity, not Release.
type Node struct {
	StableID string  // identifier, stable across versions
	Version  int     // ordinal, increases when the entity changes
	Release  int     // release number of the observing instance
	Instance string  // dataset instance name, unique per release record
}

// Key returns the node's identity key. Two nodes with the same StableID and
// Instance are the same observation regardless of Version or Release.
func (n Node) Key() string { return n.StableID + keySep + n.Instance }

// SameVersion reports whether two nodes observe the same identifier at the
// same version, possibly in different release instances.
func (n Node) SameVersion(o Node) bool {
	return n.StableID == o.StableID && n.Version == o.Version
}

// Link is a recorded transition between two node observations. A nil Old
// side marks a creation event, a nil New side a deletion event. Score is the
// mapping confidence reported by the dataset; the layout algorithms treat it
// as opaque.
type Link struct {
	Old   *Node
	New   *Node
	Score float64
}

// Key returns the link's identity key, built from the stable ID and instance
// of both sides with empty-string sentinels for absent sides. Re-adding a
// link with an equal key replaces the stored one.
func (l Link) Key() string {
	parts := [4]string{}
	if l.Old != nil {
		parts[0], parts[1] = l.Old.StableID, l.Old.Instance
	}
	if l.New != nil {
		parts[2], parts[3] = l.New.StableID, l.New.Instance
	}
	return strings.Join(parts[:], keySep)
}

// IsSelf reports whether the link is a self-transition: the identifier does
// not change, only its version or instance. Creation and deletion events
// count as self-transitions.
func (l Link) IsSelf() bool {
	if l.Old == nil || l.New == nil {
		return true
	}
	return l.Old.StableID == l.New.StableID
}

// StableID returns the identifier the link belongs to: the old side's if
// present, otherwise the new side's. Only meaningful for self-transitions;
// for an identifier change the two sides differ.
func (l Link) StableID() string {
	if l.Old != nil {
		return l.Old.StableID
	}
	if l.New != nil {
		return l.New.StableID
	}
	return ""
}

// sortRelease returns the release used to order self-transitions
// chronologically. A creation event uses New.Release-1: it represents the
// state immediately preceding the first observed release.
func (l Link) sortRelease() int {
	if l.Old != nil {
		return l.Old.Release
	}
	if l.New != nil {
		return l.New.Release - 1
	}
	return 0
}

// Coord is a zero-based layout position: X indexes the chronological release
// sequence, Y the optimized identifier row order.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}
