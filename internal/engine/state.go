// Package engine implements the seed registry state machine: founder
// consolidation, derived creation by recombination, controlled mutation,
// fee bookkeeping, and the registry-level control succession scheme.
package engine

import (
	"fmt"

	"seedcore/pkg/genome"
	"seedcore/pkg/registry"
)

// Config carries the registry's construction-time constants.
type Config struct {
	// CodeLength is the fixed element count of every code buffer.
	CodeLength int
	// FounderSlots is the number of FounderPending records materialized at
	// initialization. Derived creation unlocks once all are consolidated.
	FounderSlots int
	// DeriveFee accrues to the registry authority on every derived
	// creation and is paid out on control succession.
	DeriveFee uint64
	// ReleaseHashOnReconsolidate controls whether a founder's previous
	// fingerprint is released when its code is overwritten during the
	// pre-gate re-consolidation window. Default false: the old hash stays
	// permanently reserved, same as mutation.
	ReleaseHashOnReconsolidate bool
}

// DefaultConfig returns the canonical configuration.
func DefaultConfig() Config {
	return Config{
		CodeLength:   256,
		FounderSlots: 16,
		DeriveFee:    0,
	}
}

func (c Config) validate() error {
	if c.CodeLength <= 0 {
		return fmt.Errorf("code length must be positive, got %d", c.CodeLength)
	}
	if c.FounderSlots <= 0 {
		return fmt.Errorf("founder slots must be positive, got %d", c.FounderSlots)
	}
	return nil
}

// registryState is the single owned aggregate holding all mutable registry
// state. Operations run against a clone and commit it wholesale, so a failed
// operation leaves no partial write and no partial hash reservation.
type registryState struct {
	seeds map[uint64]registry.Seed
	index *genome.Index

	nextID              uint64
	clock               uint64
	mintingOpen         bool
	foundingEraComplete bool
	gateOpen            bool

	authority   registry.Account
	previous    registry.Account
	unconfirmed bool
	accruedFees uint64
}

func newRegistryState(cfg Config, authority registry.Account) registryState {
	st := registryState{
		seeds:     make(map[uint64]registry.Seed, cfg.FounderSlots),
		index:     genome.NewIndex(),
		nextID:    uint64(cfg.FounderSlots) + 1,
		authority: authority,
	}
	for id := uint64(1); id <= uint64(cfg.FounderSlots); id++ {
		st.seeds[id] = registry.Seed{
			ID:    id,
			Kind:  registry.KindFounderPending,
			Owner: authority,
		}
	}
	return st
}

func (st registryState) clone() registryState {
	cp := st
	cp.seeds = make(map[uint64]registry.Seed, len(st.seeds))
	for id, s := range st.seeds {
		cp.seeds[id] = s.Clone()
	}
	cp.index = st.index.Clone()
	return cp
}

func (st registryState) founderCount(owner registry.Account) int {
	n := 0
	for _, s := range st.seeds {
		if s.Kind == registry.KindFounder && s.Owner == owner {
			n++
		}
	}
	return n
}

func (st registryState) export() registry.Snapshot {
	snap := registry.Snapshot{
		Seeds:    make(map[uint64]registry.Seed, len(st.seeds)),
		Reserved: st.index.Fingerprints(),
		Flags: registry.Flags{
			NextID:              st.nextID,
			Clock:               st.clock,
			MintingOpen:         st.mintingOpen,
			FoundingEraComplete: st.foundingEraComplete,
			GateOpen:            st.gateOpen,
		},
		Succession: registry.Succession{
			Authority:   st.authority,
			Previous:    st.previous,
			Unconfirmed: st.unconfirmed,
			AccruedFees: st.accruedFees,
		},
	}
	for id, s := range st.seeds {
		snap.Seeds[id] = s.Clone()
	}
	return snap
}

func stateFromSnapshot(snap registry.Snapshot) registryState {
	st := registryState{
		seeds:               make(map[uint64]registry.Seed, len(snap.Seeds)),
		index:               genome.NewIndex(),
		nextID:              snap.Flags.NextID,
		clock:               snap.Flags.Clock,
		mintingOpen:         snap.Flags.MintingOpen,
		foundingEraComplete: snap.Flags.FoundingEraComplete,
		gateOpen:            snap.Flags.GateOpen,
		authority:           snap.Succession.Authority,
		previous:            snap.Succession.Previous,
		unconfirmed:         snap.Succession.Unconfirmed,
		accruedFees:         snap.Succession.AccruedFees,
	}
	for id, s := range snap.Seeds {
		st.seeds[id] = s.Clone()
	}
	st.index.Restore(snap.Reserved)
	return st
}
