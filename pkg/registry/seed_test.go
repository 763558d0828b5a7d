package registry

import (
	"encoding/json"
	"testing"

	"seedcore/pkg/genome"
)

func TestSeedCloneIndependence(t *testing.T) {
	s := Seed{ID: 1, Kind: KindFounder, Code: genome.Code{1, 2, 3}, Owner: "alice"}
	cp := s.Clone()
	cp.Code[0] = 9
	cp.Owner = "bob"
	if s.Code[0] != 1 || s.Owner != "alice" {
		t.Fatalf("mutating clone leaked into original: %+v", s)
	}
}

func TestSeedConsolidated(t *testing.T) {
	if (Seed{Kind: KindFounderPending}).Consolidated() {
		t.Fatalf("pending slot without code reported consolidated")
	}
	if !(Seed{Kind: KindFounder, Code: genome.Code{1}}).Consolidated() {
		t.Fatalf("founder with code reported unconsolidated")
	}
}

func TestSnapshotCloneAndEmpty(t *testing.T) {
	if !(Snapshot{}).Empty() {
		t.Fatalf("zero snapshot must be empty")
	}
	snap := Snapshot{
		Seeds:    map[uint64]Seed{1: {ID: 1, Code: genome.Code{5}}},
		Reserved: []genome.Fingerprint{genome.HashCode(genome.Code{5})},
		Flags:    Flags{NextID: 2, Clock: 1},
	}
	if snap.Empty() {
		t.Fatalf("populated snapshot reported empty")
	}
	cp := snap.Clone()
	cp.Seeds[1] = Seed{ID: 1, Code: genome.Code{9}}
	cp.Reserved[0] = genome.HashCode(genome.Code{9})
	if snap.Seeds[1].Code[0] != 5 || snap.Reserved[0] != genome.HashCode(genome.Code{5}) {
		t.Fatalf("mutating clone leaked into original")
	}
}

func TestSnapshotJSONRoundtrip(t *testing.T) {
	snap := Snapshot{
		Seeds: map[uint64]Seed{
			1: {ID: 1, Kind: KindFounder, Code: genome.Code{5, 10}, ContentHash: genome.HashCode(genome.Code{5, 10}), Owner: "alice", CreatedAt: 2, UpdatedAt: 2},
		},
		Reserved:   []genome.Fingerprint{genome.HashCode(genome.Code{5, 10})},
		Flags:      Flags{NextID: 3, Clock: 2, MintingOpen: true, FoundingEraComplete: true},
		Succession: Succession{Authority: "alice", AccruedFees: 7, GeneratorName: "digest/v1"},
	}
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Snapshot
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Flags != snap.Flags || out.Succession != snap.Succession {
		t.Fatalf("flags/succession mismatch after roundtrip")
	}
	if len(out.Seeds) != 1 || !out.Seeds[1].Code.Equal(snap.Seeds[1].Code) {
		t.Fatalf("seed content mismatch after roundtrip")
	}
	if len(out.Reserved) != 1 || out.Reserved[0] != snap.Reserved[0] {
		t.Fatalf("reserved fingerprints mismatch after roundtrip")
	}
}
