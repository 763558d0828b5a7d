package registry

import (
	"fmt"

	"seedcore/pkg/genome"
)

// AuthorizationError reports a caller lacking the required role, ownership,
// or holdings margin for an operation.
type AuthorizationError struct {
	Op     string
	Caller Account
	Reason string
}

func (e AuthorizationError) Error() string {
	return fmt.Sprintf("%s: caller %s not authorized: %s", e.Op, e.Caller, e.Reason)
}

// StateConflictError reports an operation attempted against a record or
// registry flag in the wrong lifecycle state.
type StateConflictError struct {
	Op     string
	Reason string
}

func (e StateConflictError) Error() string {
	return fmt.Sprintf("%s: state conflict: %s", e.Op, e.Reason)
}

// ValidationError reports a candidate code failing the parent range check.
// It carries the offending position and bounds for diagnosability.
type ValidationError struct {
	Index int
	Min   uint8
	Value uint8
	Max   uint8
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid code: position %d value %d outside [%d,%d]", e.Index, e.Value, e.Min, e.Max)
}

// DuplicateContentError reports a candidate whose fingerprint is already
// reserved in the registry's hash index.
type DuplicateContentError struct {
	Fingerprint genome.Fingerprint
}

func (e DuplicateContentError) Error() string {
	return fmt.Sprintf("duplicate content: fingerprint %s already reserved", e.Fingerprint)
}

// CollaboratorError reports a failed or rejected external ledger call. The
// surrounding operation is fully rolled back.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e CollaboratorError) Error() string {
	return fmt.Sprintf("%s: ledger collaborator: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying collaborator failure.
func (e CollaboratorError) Unwrap() error { return e.Err }

// ReentrancyError reports a nested call into the registry while another
// operation was in flight.
type ReentrancyError struct {
	Op string
}

func (e ReentrancyError) Error() string {
	return fmt.Sprintf("%s: rejected reentrant call into registry", e.Op)
}
