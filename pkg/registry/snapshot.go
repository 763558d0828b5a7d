package registry

import "seedcore/pkg/genome"

// Flags captures registry-wide counters and gates.
type Flags struct {
	NextID              uint64 `json:"next_id"`
	Clock               uint64 `json:"clock"`
	MintingOpen         bool   `json:"minting_open"`
	FoundingEraComplete bool   `json:"founding_era_complete"`
	GateOpen            bool   `json:"gate_open"`
}

// Succession captures the registry-level control state.
type Succession struct {
	Authority         Account `json:"authority"`
	Previous          Account `json:"previous"`
	Unconfirmed       bool    `json:"unconfirmed"`
	AccruedFees       uint64  `json:"accrued_fees"`
	GeneratorName     string  `json:"generator_name,omitempty"`
	GeneratorDelegate Account `json:"generator_delegate,omitempty"`
}

// Snapshot is the full serializable registry state. Persistence stores save
// one snapshot after every committed operation and hydrate the engine from
// the latest one at boot. The installed Generator itself is code, not data:
// only its name travels in the snapshot, and the engine re-installs the
// matching policy at startup.
type Snapshot struct {
	Seeds      map[uint64]Seed      `json:"seeds"`
	Reserved   []genome.Fingerprint `json:"reserved"`
	Flags      Flags                `json:"flags"`
	Succession Succession           `json:"succession"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	cp := s
	cp.Seeds = make(map[uint64]Seed, len(s.Seeds))
	for id, seed := range s.Seeds {
		cp.Seeds[id] = seed.Clone()
	}
	cp.Reserved = append([]genome.Fingerprint(nil), s.Reserved...)
	return cp
}

// Empty reports whether the snapshot carries no state.
func (s Snapshot) Empty() bool {
	return len(s.Seeds) == 0 && len(s.Reserved) == 0 && s.Flags == (Flags{})
}
