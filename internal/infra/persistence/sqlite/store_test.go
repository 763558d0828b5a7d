package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"seedcore/pkg/genome"
	"seedcore/pkg/registry"
)

func testSnapshot() registry.Snapshot {
	code := genome.Code{5, 10}
	return registry.Snapshot{
		Seeds: map[uint64]registry.Seed{
			1: {ID: 1, Kind: registry.KindFounder, Code: code, ContentHash: genome.HashCode(code), Owner: "alice", CreatedAt: 1, UpdatedAt: 1},
			2: {ID: 2, Kind: registry.KindFounderPending, Owner: "alice"},
		},
		Reserved:   []genome.Fingerprint{genome.HashCode(code)},
		Flags:      registry.Flags{NextID: 3, Clock: 1},
		Succession: registry.Succession{Authority: "alice", AccruedFees: 9, GeneratorName: "digest/v1"},
	}
}

func TestStoreRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	if store.Path() != path {
		t.Fatalf("path = %q, want %q", store.Path(), path)
	}
	ctx := context.Background()

	empty, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if !empty.Empty() {
		t.Fatalf("fresh store must load an empty snapshot")
	}

	snap := testSnapshot()
	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Flags != snap.Flags || got.Succession != snap.Succession {
		t.Fatalf("flags/succession mismatch:\n got %+v %+v\nwant %+v %+v", got.Flags, got.Succession, snap.Flags, snap.Succession)
	}
	if len(got.Seeds) != 2 || !got.Seeds[1].Code.Equal(snap.Seeds[1].Code) {
		t.Fatalf("seed mismatch: %+v", got.Seeds)
	}
	if len(got.Reserved) != 1 || got.Reserved[0] != snap.Reserved[0] {
		t.Fatalf("reserved mismatch: %+v", got.Reserved)
	}
}

func TestStoreSaveReplacesPrior(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	ctx := context.Background()

	first := testSnapshot()
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	second := testSnapshot()
	second.Flags.Clock = 7
	second.Succession.AccruedFees = 0
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Flags.Clock != 7 || got.Succession.AccruedFees != 0 {
		t.Fatalf("second save did not replace the first: %+v %+v", got.Flags, got.Succession)
	}
}

func TestStoreReopenKeepsState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	if err := store.Save(ctx, testSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	got, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Flags.NextID != 3 || len(got.Seeds) != 2 {
		t.Fatalf("state lost across reopen: %+v", got.Flags)
	}
}
