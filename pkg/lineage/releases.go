package lineage

import (
	"fmt"
	"slices"
	"strconv"
)

// Release is one entry of the chronological x-axis: a dataset instance and
// the label shown for its column. Number is the release number the instance
// reported; before the historical cutoff several instances can share it, in
// which case labels carry a ".1", ".2", ... suffix.
type Release struct {
	Instance string `json:"instance"`
	Label    string `json:"label"`
	Number   int    `json:"number"`
}

// sequenceReleases derives the chronologically ordered, deduplicated release
// sequence from a node set. Nodes sharing a release number are split into
// one entry per distinct instance, labeled by lexicographic instance order.
// An empty node set yields an empty sequence.
func sequenceReleases(nodes map[string]Node) []Release {
	instances := make(map[int]map[string]struct{})
	for _, n := range nodes {
		set, ok := instances[n.Release]
		if !ok {
			set = make(map[string]struct{})
			instances[n.Release] = set
		}
		set[n.Instance] = struct{}{}
	}

	var out []Release
	for number, set := range instances {
		names := make([]string, 0, len(set))
		for name := range set {
			names = append(names, name)
		}
		slices.Sort(names)

		if len(names) == 1 {
			out = append(out, Release{Instance: names[0], Label: strconv.Itoa(number), Number: number})
			continue
		}
		for i, name := range names {
			out = append(out, Release{
				Instance: name,
				Label:    fmt.Sprintf("%d.%d", number, i+1),
				Number:   number,
			})
		}
	}

	slices.SortFunc(out, func(a, b Release) int {
		if a.Number != b.Number {
			return a.Number - b.Number
		}
		if a.Instance < b.Instance {
			return -1
		}
		if a.Instance > b.Instance {
			return 1
		}
		return 0
	})
	return out
}
