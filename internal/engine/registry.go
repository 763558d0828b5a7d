package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"seedcore/pkg/genome"
	"seedcore/pkg/registry"
)

// Registry owns the seed collection, the fingerprint index, lifecycle and
// authorization rules, and the currently installed recombination generator.
//
// Every operation executes as one indivisible unit against a transactional
// clone of the state: the committed state is replaced only on full success,
// so a failed ledger call, range violation, or duplicate fingerprint leaves
// no partial write. A busy flag guards the whole in-flight operation; any
// nested call into the registry (including a ledger callback re-entering
// during a value transfer) is rejected with a ReentrancyError.
type Registry struct {
	mu   sync.RWMutex
	busy atomic.Bool

	cfg    Config
	ledger registry.Ledger

	gen         genome.Generator
	genDelegate registry.Account

	state registryState
}

// New constructs a registry with cfg.FounderSlots FounderPending slots
// (ids 1..N) owned by the initial controlling authority.
func New(cfg Config, ledger registry.Ledger, authority registry.Account) (*Registry, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if ledger == nil {
		return nil, fmt.Errorf("nil ledger collaborator")
	}
	if authority == "" {
		return nil, fmt.Errorf("empty authority account")
	}
	return &Registry{
		cfg:    cfg,
		ledger: ledger,
		state:  newRegistryState(cfg, authority),
	}, nil
}

// Config returns the registry's construction configuration.
func (r *Registry) Config() Config { return r.cfg }

// write runs fn against a clone of the state and commits it on success.
// The logical clock ticks once per committed operation, which keeps
// CreatedAt/UpdatedAt markers non-decreasing across the serialized log.
func (r *Registry) write(op string, fn func(st *registryState) error) error {
	if r.busy.Load() {
		return registry.ReentrancyError{Op: op}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.busy.Store(true)
	defer r.busy.Store(false)

	st := r.state.clone()
	st.clock++
	if err := fn(&st); err != nil {
		return err
	}
	r.state = st
	return nil
}

func (r *Registry) read(op string, fn func(st *registryState)) error {
	if r.busy.Load() {
		return registry.ReentrancyError{Op: op}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(&r.state)
	return nil
}

func (r *Registry) checkLength(op string, code genome.Code) error {
	if len(code) != r.cfg.CodeLength {
		return registry.StateConflictError{Op: op, Reason: fmt.Sprintf("code length %d, registry expects %d", len(code), r.cfg.CodeLength)}
	}
	return nil
}

// candidate resolves the code for a derived creation or mutation: proposed
// by the installed generator, or caller-submitted when none is installed.
// Once a generator is installed, caller-submitted codes are refused.
func (r *Registry) candidate(ctx context.Context, op string, caller registry.Account, parentA, parentB genome.Code, submitted genome.Code) (genome.Code, error) {
	if r.gen != nil {
		if submitted != nil {
			return nil, registry.StateConflictError{Op: op, Reason: "generator installed; caller-submitted codes are refused"}
		}
		entropy, err := r.ledger.UnpredictableContext(ctx)
		if err != nil {
			return nil, registry.CollaboratorError{Op: op, Err: err}
		}
		cand, err := r.gen.Propose(parentA, parentB, genome.SeedMaterial(entropy, string(caller)))
		if err != nil {
			return nil, fmt.Errorf("%s: generator %s: %w", op, r.gen.Name(), err)
		}
		return cand, nil
	}
	if submitted == nil {
		return nil, registry.StateConflictError{Op: op, Reason: "code required: no generator installed"}
	}
	return submitted.Clone(), nil
}

// reserve maps an index collision to the duplicate-content error kind.
func reserve(st *registryState, fp genome.Fingerprint) error {
	if !st.index.Reserve(fp) {
		return registry.DuplicateContentError{Fingerprint: fp}
	}
	return nil
}

// chargeUse gates the use of a record the caller does not own: the record
// must be offered (nonzero price) and the price is paid to its owner through
// the ledger. A transfer failure aborts the whole operation.
func (r *Registry) chargeUse(ctx context.Context, op string, caller registry.Account, s registry.Seed) error {
	if s.Owner == caller {
		return nil
	}
	if s.Price == 0 {
		return registry.AuthorizationError{Op: op, Caller: caller, Reason: fmt.Sprintf("seed %d is not offered for use", s.ID)}
	}
	if err := r.ledger.Transfer(ctx, s.Owner, s.Price); err != nil {
		return registry.CollaboratorError{Op: op, Err: err}
	}
	return nil
}

// Consolidate writes a founder slot's content. Allowed only for the
// controlling authority, against a FounderPending slot, or against a Founder
// while the ownership gate is still closed (the re-consolidation window).
// Consolidating the last pending slot completes the founding era and opens
// minting.
func (r *Registry) Consolidate(ctx context.Context, caller registry.Account, id uint64, code genome.Code) (registry.Seed, error) {
	const op = "consolidate"
	var out registry.Seed
	err := r.write(op, func(st *registryState) error {
		if caller != st.authority {
			return registry.AuthorizationError{Op: op, Caller: caller, Reason: "only the controlling authority consolidates founders"}
		}
		s, ok := st.seeds[id]
		if !ok {
			return registry.StateConflictError{Op: op, Reason: fmt.Sprintf("unknown seed %d", id)}
		}
		switch s.Kind {
		case registry.KindFounderPending:
		case registry.KindFounder:
			if st.gateOpen {
				return registry.StateConflictError{Op: op, Reason: "re-consolidation window closed: ownership gate is open"}
			}
		default:
			return registry.StateConflictError{Op: op, Reason: fmt.Sprintf("seed %d has kind %s, want founder", id, s.Kind)}
		}
		if err := r.checkLength(op, code); err != nil {
			return err
		}

		fp := genome.HashCode(code)
		if st.index.Contains(fp) {
			// Overwriting a founder with its own current code is the one
			// permitted self-collision.
			if s.Kind != registry.KindFounder || fp != s.ContentHash {
				return registry.DuplicateContentError{Fingerprint: fp}
			}
		}
		if s.Kind == registry.KindFounder && r.cfg.ReleaseHashOnReconsolidate && fp != s.ContentHash {
			st.index.Release(s.ContentHash)
		}
		if !st.index.Contains(fp) {
			if err := reserve(st, fp); err != nil {
				return err
			}
		}

		s.Code = code.Clone()
		s.ContentHash = fp
		s.Kind = registry.KindFounder
		s.CreatedAt = st.clock
		s.UpdatedAt = st.clock
		st.seeds[id] = s
		out = s.Clone()

		if !st.foundingEraComplete {
			complete := true
			for _, other := range st.seeds {
				if other.Kind == registry.KindFounderPending {
					complete = false
					break
				}
			}
			if complete {
				st.foundingEraComplete = true
				st.mintingOpen = true
			}
		}
		return nil
	})
	return out, err
}

// CreateDerived creates a new Derived record for `to` by recombining two
// Founder parents. When `to` is empty the record goes to the caller. The
// candidate code comes from the installed generator or, absent one, from the
// caller; it is always re-validated against the parents' current codes.
func (r *Registry) CreateDerived(ctx context.Context, caller, to registry.Account, parentAID, parentBID uint64, code genome.Code) (registry.Seed, error) {
	const op = "create_derived"
	if to == "" {
		to = caller
	}
	var out registry.Seed
	err := r.write(op, func(st *registryState) error {
		if !st.foundingEraComplete {
			return registry.StateConflictError{Op: op, Reason: "founding era not complete"}
		}
		if !st.mintingOpen {
			return registry.StateConflictError{Op: op, Reason: "minting is closed"}
		}
		parentA, ok := st.seeds[parentAID]
		if !ok {
			return registry.StateConflictError{Op: op, Reason: fmt.Sprintf("unknown parent %d", parentAID)}
		}
		parentB, ok := st.seeds[parentBID]
		if !ok {
			return registry.StateConflictError{Op: op, Reason: fmt.Sprintf("unknown parent %d", parentBID)}
		}
		if parentA.Kind != registry.KindFounder {
			return registry.StateConflictError{Op: op, Reason: fmt.Sprintf("parent %d has kind %s, want founder", parentAID, parentA.Kind)}
		}
		if parentB.Kind != registry.KindFounder {
			return registry.StateConflictError{Op: op, Reason: fmt.Sprintf("parent %d has kind %s, want founder", parentBID, parentB.Kind)}
		}

		cand, err := r.candidate(ctx, op, caller, parentA.Code, parentB.Code, code)
		if err != nil {
			return err
		}
		if err := r.checkLength(op, cand); err != nil {
			return err
		}
		if err := genome.Validate(parentA.Code, parentB.Code, cand); err != nil {
			var re genome.RangeError
			if asRange(err, &re) {
				return registry.ValidationError{Index: re.Index, Min: re.Min, Value: re.Value, Max: re.Max}
			}
			return err
		}

		fp := genome.HashCode(cand)
		if err := reserve(st, fp); err != nil {
			return err
		}
		if err := r.chargeUse(ctx, op, caller, parentA); err != nil {
			return err
		}
		if err := r.chargeUse(ctx, op, caller, parentB); err != nil {
			return err
		}
		st.accruedFees += r.cfg.DeriveFee

		id := st.nextID
		st.nextID++
		s := registry.Seed{
			ID:          id,
			Kind:        registry.KindDerived,
			Code:        cand,
			ContentHash: fp,
			Owner:       to,
			CreatedAt:   st.clock,
			UpdatedAt:   st.clock,
		}
		st.seeds[id] = s
		out = s.Clone()
		return nil
	})
	return out, err
}

// Mutate replaces a Derived record's code with one validated against the
// record's current code and the current code of the mutator record (which
// may be of any consolidated kind). The caller must be the record's current
// owner per the ledger, unless the record opted into unsigned mutation, in
// which case the installed generator's delegated account may proceed. The
// old fingerprint stays reserved forever.
func (r *Registry) Mutate(ctx context.Context, caller registry.Account, id, mutatorID uint64, code genome.Code) (registry.Seed, error) {
	const op = "mutate"
	var out registry.Seed
	err := r.write(op, func(st *registryState) error {
		s, ok := st.seeds[id]
		if !ok {
			return registry.StateConflictError{Op: op, Reason: fmt.Sprintf("unknown seed %d", id)}
		}
		if s.Kind != registry.KindDerived {
			return registry.StateConflictError{Op: op, Reason: fmt.Sprintf("seed %d has kind %s, only derived records mutate", id, s.Kind)}
		}
		mutator, ok := st.seeds[mutatorID]
		if !ok {
			return registry.StateConflictError{Op: op, Reason: fmt.Sprintf("unknown mutator %d", mutatorID)}
		}
		if !mutator.Consolidated() {
			return registry.StateConflictError{Op: op, Reason: fmt.Sprintf("mutator %d has no consolidated code", mutatorID)}
		}

		owner, err := r.ledger.OwnerOf(ctx, id)
		if err != nil {
			return registry.CollaboratorError{Op: op, Err: err}
		}
		s.Owner = owner
		if caller != owner {
			if !(s.AllowUnsignedMutation && r.gen != nil && caller == r.genDelegate) {
				return registry.AuthorizationError{Op: op, Caller: caller, Reason: fmt.Sprintf("seed %d is owned by %s", id, owner)}
			}
		}

		cand, err := r.candidate(ctx, op, caller, s.Code, mutator.Code, code)
		if err != nil {
			return err
		}
		if err := r.checkLength(op, cand); err != nil {
			return err
		}
		if err := genome.Validate(s.Code, mutator.Code, cand); err != nil {
			var re genome.RangeError
			if asRange(err, &re) {
				return registry.ValidationError{Index: re.Index, Min: re.Min, Value: re.Value, Max: re.Max}
			}
			return err
		}

		fp := genome.HashCode(cand)
		// A mutation must change content; the current fingerprint is
		// already reserved, so an identical candidate collides like any
		// other reuse.
		if err := reserve(st, fp); err != nil {
			return err
		}
		if err := r.chargeUse(ctx, op, caller, mutator); err != nil {
			return err
		}

		s.Code = cand
		s.ContentHash = fp
		s.MutationCount++
		s.UpdatedAt = st.clock
		st.seeds[id] = s
		out = s.Clone()
		return nil
	})
	return out, err
}

// SetUnsignedMutation toggles the per-record opt-in that lets the installed
// generator's delegated account mutate the record without the owner's
// signature. Owner only.
func (r *Registry) SetUnsignedMutation(ctx context.Context, caller registry.Account, id uint64, allow bool) error {
	const op = "set_unsigned_mutation"
	return r.write(op, func(st *registryState) error {
		s, ok := st.seeds[id]
		if !ok {
			return registry.StateConflictError{Op: op, Reason: fmt.Sprintf("unknown seed %d", id)}
		}
		owner, err := r.ledger.OwnerOf(ctx, id)
		if err != nil {
			return registry.CollaboratorError{Op: op, Err: err}
		}
		s.Owner = owner
		if caller != owner {
			return registry.AuthorizationError{Op: op, Caller: caller, Reason: fmt.Sprintf("seed %d is owned by %s", id, owner)}
		}
		s.AllowUnsignedMutation = allow
		st.seeds[id] = s
		return nil
	})
}

// SetPrice sets the per-record fee charged when a third party uses the
// record as a recombination input. Owner only; zero withdraws the offer.
func (r *Registry) SetPrice(ctx context.Context, caller registry.Account, id uint64, price uint64) error {
	const op = "set_price"
	return r.write(op, func(st *registryState) error {
		s, ok := st.seeds[id]
		if !ok {
			return registry.StateConflictError{Op: op, Reason: fmt.Sprintf("unknown seed %d", id)}
		}
		owner, err := r.ledger.OwnerOf(ctx, id)
		if err != nil {
			return registry.CollaboratorError{Op: op, Err: err}
		}
		s.Owner = owner
		if caller != owner {
			return registry.AuthorizationError{Op: op, Caller: caller, Reason: fmt.Sprintf("seed %d is owned by %s", id, owner)}
		}
		s.Price = price
		st.seeds[id] = s
		return nil
	})
}

// SetMintingOpen toggles derived creation. Authority only.
func (r *Registry) SetMintingOpen(caller registry.Account, open bool) error {
	const op = "set_minting_open"
	return r.write(op, func(st *registryState) error {
		if caller != st.authority {
			return registry.AuthorizationError{Op: op, Caller: caller, Reason: "only the controlling authority toggles minting"}
		}
		st.mintingOpen = open
		return nil
	})
}

// SetGenerator installs or replaces the recombination generator and its
// delegated caller account. Authority only. Installation is one-way: once a
// generator has been chosen the registry refuses to revert to accepting
// arbitrary caller-submitted codes.
func (r *Registry) SetGenerator(caller registry.Account, gen genome.Generator, delegate registry.Account) error {
	const op = "set_generator"
	if r.busy.Load() {
		return registry.ReentrancyError{Op: op}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.busy.Store(true)
	defer r.busy.Store(false)

	if caller != r.state.authority {
		return registry.AuthorizationError{Op: op, Caller: caller, Reason: "only the controlling authority installs generators"}
	}
	if gen == nil {
		if r.gen != nil {
			return registry.StateConflictError{Op: op, Reason: "generator installation is one-way: cannot uninstall"}
		}
		return registry.StateConflictError{Op: op, Reason: "nil generator"}
	}
	r.gen = gen
	r.genDelegate = delegate
	return nil
}

// RecordTransfer re-reads a record's owner from the ledger and updates the
// registry's mirror. The external transfer protocol calls this after moving
// a token so succession holdings stay accurate.
func (r *Registry) RecordTransfer(ctx context.Context, id uint64) error {
	const op = "record_transfer"
	return r.write(op, func(st *registryState) error {
		s, ok := st.seeds[id]
		if !ok {
			return registry.StateConflictError{Op: op, Reason: fmt.Sprintf("unknown seed %d", id)}
		}
		owner, err := r.ledger.OwnerOf(ctx, id)
		if err != nil {
			return registry.CollaboratorError{Op: op, Err: err}
		}
		s.Owner = owner
		st.seeds[id] = s
		return nil
	})
}

// GetSeed returns a snapshot of one record.
func (r *Registry) GetSeed(id uint64) (registry.Seed, error) {
	var out registry.Seed
	var found bool
	if err := r.read("get_seed", func(st *registryState) {
		if s, ok := st.seeds[id]; ok {
			out = s.Clone()
			found = true
		}
	}); err != nil {
		return registry.Seed{}, err
	}
	if !found {
		return registry.Seed{}, registry.StateConflictError{Op: "get_seed", Reason: fmt.Sprintf("unknown seed %d", id)}
	}
	return out, nil
}

// HashExists reports whether a fingerprint has ever been reserved.
func (r *Registry) HashExists(fp genome.Fingerprint) (bool, error) {
	var out bool
	err := r.read("hash_exists", func(st *registryState) {
		out = st.index.Contains(fp)
	})
	return out, err
}

// CodeExists reports whether a code's fingerprint has ever been reserved.
func (r *Registry) CodeExists(c genome.Code) (bool, error) {
	return r.HashExists(genome.HashCode(c))
}

// IsGateOpen reports whether the ownership gate has been opened.
func (r *Registry) IsGateOpen() (bool, error) {
	var out bool
	err := r.read("is_gate_open", func(st *registryState) { out = st.gateOpen })
	return out, err
}

// IsMintingOpen reports whether derived creation is currently allowed.
func (r *Registry) IsMintingOpen() (bool, error) {
	var out bool
	err := r.read("is_minting_open", func(st *registryState) { out = st.mintingOpen })
	return out, err
}

// Authority returns the account currently holding registry control.
func (r *Registry) Authority() (registry.Account, error) {
	var out registry.Account
	err := r.read("authority", func(st *registryState) { out = st.authority })
	return out, err
}

// Status returns the registry-wide flags and succession state.
func (r *Registry) Status() (registry.Flags, registry.Succession, error) {
	var flags registry.Flags
	var succ registry.Succession
	err := r.read("status", func(st *registryState) {
		flags = registry.Flags{
			NextID:              st.nextID,
			Clock:               st.clock,
			MintingOpen:         st.mintingOpen,
			FoundingEraComplete: st.foundingEraComplete,
			GateOpen:            st.gateOpen,
		}
		succ = registry.Succession{
			Authority:   st.authority,
			Previous:    st.previous,
			Unconfirmed: st.unconfirmed,
			AccruedFees: st.accruedFees,
		}
	})
	if err != nil {
		return registry.Flags{}, registry.Succession{}, err
	}
	succ.GeneratorDelegate = r.genDelegate
	if r.gen != nil {
		succ.GeneratorName = r.gen.Name()
	}
	return flags, succ, nil
}

// FounderCount returns the number of Founder-kind records the account holds
// per the registry's ownership mirror.
func (r *Registry) FounderCount(a registry.Account) (int, error) {
	var n int
	err := r.read("founder_count", func(st *registryState) {
		n = st.founderCount(a)
	})
	return n, err
}

// Export returns the full serializable registry state.
func (r *Registry) Export() (registry.Snapshot, error) {
	var snap registry.Snapshot
	if err := r.read("export", func(st *registryState) {
		snap = st.export()
	}); err != nil {
		return registry.Snapshot{}, err
	}
	snap.Succession.GeneratorDelegate = r.genDelegate
	if r.gen != nil {
		snap.Succession.GeneratorName = r.gen.Name()
	}
	return snap, nil
}

// Restore replaces the registry state from a snapshot. When the snapshot
// names an installed generator, a matching policy must be supplied; the
// one-way installation rule carries across restarts.
func (r *Registry) Restore(snap registry.Snapshot, gen genome.Generator, delegate registry.Account) error {
	const op = "restore"
	if r.busy.Load() {
		return registry.ReentrancyError{Op: op}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.busy.Store(true)
	defer r.busy.Store(false)

	if name := snap.Succession.GeneratorName; name != "" {
		if gen == nil {
			return registry.StateConflictError{Op: op, Reason: fmt.Sprintf("snapshot requires generator %q", name)}
		}
		if gen.Name() != name {
			return registry.StateConflictError{Op: op, Reason: fmt.Sprintf("snapshot requires generator %q, got %q", name, gen.Name())}
		}
	}
	r.state = stateFromSnapshot(snap)
	if gen != nil {
		r.gen = gen
		r.genDelegate = delegate
	}
	return nil
}

func asRange(err error, target *genome.RangeError) bool {
	re, ok := err.(genome.RangeError)
	if ok {
		*target = re
	}
	return ok
}
