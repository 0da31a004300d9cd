package lineage

import "testing"

func TestConsolidateSameVersionBridge(t *testing.T) {
	v1a := node("ENSG001", 1, 38, "core_38")
	v1b := node("ENSG001", 1, 39, "core_39")
	v2c := node("ENSG001", 2, 40, "core_40")

	tr := NewTree()
	tr.AddLink(link(&v1a, &v1b, 1.0)) // no real change
	tr.AddLink(link(&v1b, &v2c, 0.9))

	tr.Consolidate()

	links := tr.Links()
	if len(links) != 1 {
		t.Fatalf("LinkCount = %d, want 1", len(links))
	}
	got := links[0]
	if got.Old == nil || got.New == nil {
		t.Fatalf("merged link has absent side: %+v", got)
	}
	if got.Old.Instance != "core_38" || got.Old.Version != 1 {
		t.Errorf("merged old = %+v, want v1@core_38", *got.Old)
	}
	if got.New.Instance != "core_40" || got.New.Version != 2 {
		t.Errorf("merged new = %+v, want v2@core_40", *got.New)
	}
}

func TestConsolidateLongChain(t *testing.T) {
	v1a := node("ENSG001", 1, 38, "core_38")
	v1b := node("ENSG001", 1, 39, "core_39")
	v1c := node("ENSG001", 1, 40, "core_40")
	v2d := node("ENSG001", 2, 41, "core_41")

	tr := NewTree()
	tr.AddLink(link(&v1a, &v1b, 1.0))
	tr.AddLink(link(&v1b, &v1c, 1.0))
	tr.AddLink(link(&v1c, &v2d, 0.8))

	tr.Consolidate()

	links := tr.Links()
	if len(links) != 1 {
		t.Fatalf("LinkCount = %d, want 1 (chain collapsed incrementally)", len(links))
	}
	got := links[0]
	if got.Old.Instance != "core_38" {
		t.Errorf("chain old = %s, want first real old core_38", got.Old.Instance)
	}
	if got.New.Instance != "core_41" || got.New.Version != 2 {
		t.Errorf("chain new = %+v, want last real new v2@core_41", *got.New)
	}
}

func TestConsolidateGapBridgeContinuing(t *testing.T) {
	v1a := node("ENSG001", 1, 38, "core_38")
	v2b := node("ENSG001", 2, 39, "core_39")
	v2c := node("ENSG001", 2, 40, "mart_40") // same version, other instance
	v3d := node("ENSG001", 3, 41, "core_41")

	tr := NewTree()
	tr.AddLink(link(&v1a, &v2b, 0.9))
	tr.AddLink(link(&v2c, &v3d, 0.7))

	tr.Consolidate()

	links := tr.Links()
	if len(links) != 2 {
		t.Fatalf("LinkCount = %d, want 2", len(links))
	}
	// The second link must now depart from the last known observation.
	var bridged *Link
	for i := range links {
		if links[i].New != nil && links[i].New.Version == 3 {
			bridged = &links[i]
		}
	}
	if bridged == nil {
		t.Fatal("no link ending at v3")
	}
	if bridged.Old.Instance != "core_39" {
		t.Errorf("bridged old instance = %s, want core_39", bridged.Old.Instance)
	}
	if bridged.Score != 0.7 {
		t.Errorf("bridged score = %v, want the rewritten event's 0.7", bridged.Score)
	}
}

func TestConsolidateGapBridgeTerminalDeletion(t *testing.T) {
	v1a := node("ENSG001", 1, 38, "core_38")
	v2b := node("ENSG001", 2, 39, "core_39")
	v2c := node("ENSG001", 2, 40, "mart_40")

	tr := NewTree()
	tr.AddLink(link(&v1a, &v2b, 0.9))
	tr.AddLink(link(&v2c, nil, 0)) // deletion after the gap

	tr.Consolidate()

	links := tr.Links()
	if len(links) != 2 {
		t.Fatalf("LinkCount = %d, want 2", len(links))
	}
	var change, deletion *Link
	for i := range links {
		if links[i].New == nil {
			deletion = &links[i]
		} else {
			change = &links[i]
		}
	}
	if deletion == nil || change == nil {
		t.Fatalf("want one change and one deletion, got %+v", links)
	}
	if change.Old.Instance != "core_38" || change.New.Instance != "mart_40" {
		t.Errorf("change = %s→%s, want core_38→mart_40", change.Old.Instance, change.New.Instance)
	}
	if deletion.Old.Instance != "mart_40" {
		t.Errorf("deletion old = %s, want mart_40", deletion.Old.Instance)
	}
}

func TestConsolidateCreationChain(t *testing.T) {
	v1a := node("ENSG001", 1, 38, "core_38")
	v1b := node("ENSG001", 1, 39, "core_39")
	v2c := node("ENSG001", 2, 40, "core_40")

	tr := NewTree()
	tr.AddLink(link(nil, &v1a, 0)) // creation, sorts before release 38
	tr.AddLink(link(&v1a, &v1b, 1.0))
	tr.AddLink(link(&v1b, &v2c, 0.9))

	tr.Consolidate()

	links := tr.Links()
	if len(links) != 2 {
		t.Fatalf("LinkCount = %d, want 2 (creation + one change)", len(links))
	}
	var creation, change *Link
	for i := range links {
		if links[i].Old == nil {
			creation = &links[i]
		} else {
			change = &links[i]
		}
	}
	if creation == nil {
		t.Fatal("creation event was lost")
	}
	if change == nil || change.Old.Instance != "core_38" || change.New.Version != 2 {
		t.Errorf("change = %+v, want v1@core_38 → v2@core_40", change)
	}
}

func TestConsolidateLeavesRealChanges(t *testing.T) {
	v1a := node("ENSG001", 1, 38, "core_38")
	v2b := node("ENSG001", 2, 39, "core_39")
	v3c := node("ENSG001", 3, 40, "core_40")
	other1 := node("ENSG002", 1, 38, "core_38")
	other2 := node("ENSG003", 1, 39, "core_39")

	tr := NewTree()
	tr.AddLink(link(&v1a, &v2b, 0.9))
	tr.AddLink(link(&v2b, &v3c, 0.9))
	tr.AddLink(link(&other1, &other2, 0.5)) // cross-identifier, untouched

	before := tr.LinkCount()
	tr.Consolidate()

	if got := tr.LinkCount(); got != before {
		t.Errorf("LinkCount = %d, want %d (every link is a real change)", got, before)
	}
}

func TestConsolidateNeverIncreasesLinkCount(t *testing.T) {
	v1a := node("ENSG001", 1, 38, "core_38")
	v1b := node("ENSG001", 1, 39, "core_39")
	v1c := node("ENSG001", 1, 40, "core_40")
	g2a := node("ENSG002", 1, 38, "core_38")
	g2b := node("ENSG002", 2, 39, "core_39")

	tr := NewTree()
	tr.AddLink(link(nil, &v1a, 0))
	tr.AddLink(link(&v1a, &v1b, 1.0))
	tr.AddLink(link(&v1b, &v1c, 1.0))
	tr.AddLink(link(&v1c, nil, 0))
	tr.AddLink(link(&g2a, &g2b, 0.9))

	before := tr.LinkCount()
	tr.Consolidate()
	if got := tr.LinkCount(); got > before {
		t.Errorf("LinkCount = %d after consolidation, was %d", got, before)
	}
}
