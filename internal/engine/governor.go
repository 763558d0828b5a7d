package engine

import (
	"context"
	"fmt"

	"seedcore/pkg/registry"
)

// Governor operations move registry-level control between accounts based on
// founder holdings. The gate opens once, after the founding era; from then
// on any account holding a strict founder majority over the sitting
// authority can claim control. A claim stays provisional until the claimant
// confirms it, and the displaced authority may roll it back in the interim.

// OpenGate opens the ownership gate. Authority only, one-way, and only after
// the founding era is complete. Opening the gate permanently closes the
// founder re-consolidation window.
func (r *Registry) OpenGate(caller registry.Account) error {
	const op = "open_gate"
	return r.write(op, func(st *registryState) error {
		if caller != st.authority {
			return registry.AuthorizationError{Op: op, Caller: caller, Reason: "only the controlling authority opens the gate"}
		}
		if !st.foundingEraComplete {
			return registry.StateConflictError{Op: op, Reason: "founding era not complete"}
		}
		if st.gateOpen {
			return registry.StateConflictError{Op: op, Reason: "gate already open"}
		}
		st.gateOpen = true
		return nil
	})
}

// Claim moves control to the caller, who must hold strictly more Founder
// records than the sitting authority per the registry's ownership mirror.
// Fees accrued under the displaced authority are paid out to it through the
// ledger before the handover commits; a failed payout aborts the claim.
func (r *Registry) Claim(ctx context.Context, caller registry.Account) error {
	const op = "claim"
	return r.write(op, func(st *registryState) error {
		if !st.gateOpen {
			return registry.StateConflictError{Op: op, Reason: "ownership gate is closed"}
		}
		if st.unconfirmed {
			return registry.StateConflictError{Op: op, Reason: "a provisional claim is already pending"}
		}
		if caller == st.authority {
			return registry.StateConflictError{Op: op, Reason: "caller already holds control"}
		}
		have := st.founderCount(caller)
		sitting := st.founderCount(st.authority)
		if have <= sitting {
			return registry.AuthorizationError{Op: op, Caller: caller, Reason: fmt.Sprintf("holds %d founders, sitting authority holds %d", have, sitting)}
		}
		if st.accruedFees > 0 {
			if err := r.ledger.Transfer(ctx, st.authority, st.accruedFees); err != nil {
				return registry.CollaboratorError{Op: op, Err: err}
			}
			st.accruedFees = 0
		}
		st.previous = st.authority
		st.authority = caller
		st.unconfirmed = true
		return nil
	})
}

// Confirm finalizes a provisional claim. Claimant only; afterwards the
// displaced authority can no longer roll back.
func (r *Registry) Confirm(caller registry.Account) error {
	const op = "confirm"
	return r.write(op, func(st *registryState) error {
		if !st.unconfirmed {
			return registry.StateConflictError{Op: op, Reason: "no provisional claim pending"}
		}
		if caller != st.authority {
			return registry.AuthorizationError{Op: op, Caller: caller, Reason: "only the claimant confirms"}
		}
		st.unconfirmed = false
		st.previous = ""
		return nil
	})
}

// Rollback lets the displaced authority undo a claim that was never
// confirmed and resume control. It must still out-hold the claimant, which
// blocks a rollback staged by shedding founders right before the claim.
func (r *Registry) Rollback(caller registry.Account) error {
	const op = "rollback"
	return r.write(op, func(st *registryState) error {
		if !st.unconfirmed {
			return registry.StateConflictError{Op: op, Reason: "no provisional claim pending"}
		}
		if caller != st.previous {
			return registry.AuthorizationError{Op: op, Caller: caller, Reason: "only the displaced authority rolls back"}
		}
		have := st.founderCount(st.previous)
		sitting := st.founderCount(st.authority)
		if have <= sitting {
			return registry.AuthorizationError{Op: op, Caller: caller, Reason: fmt.Sprintf("holds %d founders, claimant holds %d", have, sitting)}
		}
		st.authority = st.previous
		st.previous = ""
		st.unconfirmed = false
		return nil
	})
}
