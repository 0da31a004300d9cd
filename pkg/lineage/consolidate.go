package lineage

import "slices"

// Consolidate rewrites the link set so that only real version changes and
// creation/deletion events remain. Chains of self-transitions in which the
// version did not change are collapsed, and gaps where a version silently
// persisted across a dataset-instance boundary are bridged.
//
// The pass is a single left-to-right scan over the self-transitions of each
// identifier, ordered by release; longer chains are consolidated
// incrementally as the scan proceeds. The link count never increases. Nodes
// that end up unreferenced by any link are kept; pruning them is the
// caller's choice.
func (t *Tree) Consolidate() {
	events := make([]Link, 0, len(t.linkOrder))
	for _, key := range t.linkOrder {
		if l := t.links[key]; l.IsSelf() {
			events = append(events, l)
		}
	}
	slices.SortStableFunc(events, func(a, b Link) int {
		if a.StableID() != b.StableID() {
			if a.StableID() < b.StableID() {
				return -1
			}
			return 1
		}
		return a.sortRelease() - b.sortRelease()
	})

	var last Link
	haveLast := false
	for _, event := range events {
		if !haveLast || last.StableID() != event.StableID() {
			last, haveLast = event, true
			continue
		}
		last = t.merge(last, event)
	}
}

// merge compares one adjacent pair of self-transitions and applies the
// applicable rewrite rule, returning the link the next comparison continues
// from.
func (t *Tree) merge(last, event Link) Link {
	switch {
	case last.Old != nil && event.Old != nil && event.New != nil &&
		last.Old.SameVersion(*event.Old):
		// The two links carry the same version on their old side, so the
		// span between them holds no real change. Replace both with one
		// link from the first old state to the latest new state.
		t.removeLinkKey(last.Key())
		t.removeLinkKey(event.Key())
		merged := Link{Old: last.Old, New: event.New, Score: event.Score}
		t.AddLink(merged)
		return merged

	case last.New != nil && event.Old != nil && event.New != nil &&
		last.New.SameVersion(*event.Old) && last.New.Instance != event.Old.Instance:
		// The same version persisted across an instance boundary with no
		// recorded self-link there. Re-anchor the event at the last known
		// observation so the chain stays connected.
		t.removeLinkKey(event.Key())
		bridged := Link{Old: last.New, New: event.New, Score: event.Score}
		t.AddLink(bridged)
		return bridged

	case last.New != nil && event.Old != nil && event.New == nil &&
		last.New.SameVersion(*event.Old) && last.New.Instance != event.Old.Instance:
		// Instance-boundary gap ending in a deletion: extend the previous
		// link to the deletion's final observation instead.
		t.removeLinkKey(last.Key())
		t.AddLink(Link{Old: last.Old, New: event.Old, Score: last.Score})
		return event

	default:
		return event
	}
}
