package lineage

import (
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// maxFailures bounds the local search: after this many consecutive
	// non-improving move attempts the current order is final.
	maxFailures = 100

	// seenCap bounds the set of visited orderings. On large trees the set
	// would otherwise grow without limit; evicted signatures can at worst
	// cause a revisit, which the failure counter still terminates.
	seenCap = 8192
)

// untangleLink is a non-self link projected onto its two identifiers.
type untangleLink struct {
	a, b string
}

// untangle computes a permutation of ids that minimizes the total vertical
// distance spanned by links connecting different identifiers. It returns the
// permutation and the number of accepted moves.
//
// The search is deterministic: starting from lexicographic order it
// repeatedly picks the link with the largest current vertical distance and
// tries to pull its endpoints next to each other, first by moving the lower
// endpoint up, then the upper endpoint down. A move is accepted only when it
// strictly reduces the total length; accepting restarts the scan. Orderings
// already visited are skipped to avoid cycling between equal-cost states.
// The search stops after maxFailures consecutive rejected moves or after a
// full pass over all links without improvement, so total length never
// increases relative to the initial order.
func untangle(ids []string, links []Link) (order []string, moves int) {
	order = slices.Clone(ids)
	slices.Sort(order)

	pos := rankOf(order)
	var work []untangleLink
	for _, l := range links {
		if l.Old == nil || l.New == nil || l.Old.StableID == l.New.StableID {
			continue
		}
		ul := untangleLink{a: l.Old.StableID, b: l.New.StableID}
		if _, ok := pos[ul.a]; !ok {
			continue
		}
		if _, ok := pos[ul.b]; !ok {
			continue
		}
		work = append(work, ul)
	}
	if len(order) <= 1 || len(work) == 0 {
		return order, 0
	}

	seen, _ := lru.New[string, struct{}](seenCap)
	seen.Add(signature(order), struct{}{})
	best := totalLength(work, pos)
	failures := 0

	for {
		improved := false

		// Most-displaced links first; stable sort keeps discovery order
		// for ties.
		idx := make([]int, len(work))
		for i := range idx {
			idx[i] = i
		}
		slices.SortStableFunc(idx, func(i, j int) int {
			return linkDistance(work[j], pos) - linkDistance(work[i], pos)
		})

	scan:
		for _, li := range idx {
			l := work[li]
			pa, pb := pos[l.a], pos[l.b]
			if pa > pb {
				pa, pb = pb, pa
			}
			for _, cand := range [2][]string{moveUp(order, pa, pb), moveDown(order, pa, pb)} {
				sig := signature(cand)
				if seen.Contains(sig) {
					continue
				}
				seen.Add(sig, struct{}{})

				candPos := rankOf(cand)
				if length := totalLength(work, candPos); length < best {
					order, pos, best = cand, candPos, length
					moves++
					failures = 0
					improved = true
					break scan
				}

				failures++
				if failures >= maxFailures {
					return order, moves
				}
			}
		}

		if !improved {
			return order, moves
		}
	}
}

// moveUp returns the ordering where the element at pb is pulled up to rank
// pa+1 and the elements strictly between pa and pb shift up one rank.
func moveUp(order []string, pa, pb int) []string {
	out := slices.Clone(order)
	b := out[pb]
	copy(out[pa+2:pb+1], order[pa+1:pb])
	out[pa+1] = b
	return out
}

// moveDown returns the ordering where the element at pa is pushed down to
// rank pb-1 and the elements strictly between pa and pb shift down one rank.
func moveDown(order []string, pa, pb int) []string {
	out := slices.Clone(order)
	a := out[pa]
	copy(out[pa:pb-1], order[pa+1:pb])
	out[pb-1] = a
	return out
}

// signature returns a canonical representation of a full rank order.
func signature(order []string) string { return strings.Join(order, keySep) }

// rankOf maps each identifier to its index in the ordering.
func rankOf(order []string) map[string]int {
	m := make(map[string]int, len(order))
	for i, id := range order {
		m[id] = i
	}
	return m
}

func linkDistance(l untangleLink, pos map[string]int) int {
	d := pos[l.a] - pos[l.b]
	if d < 0 {
		d = -d
	}
	return d
}

func totalLength(links []untangleLink, pos map[string]int) int {
	total := 0
	for _, l := range links {
		total += linkDistance(l, pos)
	}
	return total
}
