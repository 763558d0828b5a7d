// Package registry defines the persistent seed record model, the error
// taxonomy of the registry engine, the external ledger collaborator
// boundary, and the snapshot form used by the persistence stores.
package registry

import "seedcore/pkg/genome"

// Account identifies a holder in the external ownership ledger.
type Account string

// Kind identifies a seed's lifecycle classification.
type Kind string

// Seed lifecycle kinds. FounderPending slots are materialized at registry
// initialization and become Founder on consolidation; Derived records are
// created by recombination and are the only kind eligible for mutation.
const (
	KindFounderPending Kind = "founder_pending"
	KindFounder        Kind = "founder"
	KindDerived        Kind = "derived"
)

// Seed is one registered record. Identifiers are densely allocated starting
// at 1 and immutable once assigned; records are never deleted.
type Seed struct {
	ID                    uint64             `json:"id"`
	Kind                  Kind               `json:"kind"`
	Code                  genome.Code        `json:"code"`
	ContentHash           genome.Fingerprint `json:"content_hash"`
	MutationCount         uint64             `json:"mutation_count"`
	AllowUnsignedMutation bool               `json:"allow_unsigned_mutation"`
	Owner                 Account            `json:"owner"`
	Price                 uint64             `json:"price"`
	CreatedAt             uint64             `json:"created_at"`
	UpdatedAt             uint64             `json:"updated_at"`
}

// Clone returns an independent copy of the record.
func (s Seed) Clone() Seed {
	cp := s
	cp.Code = s.Code.Clone()
	return cp
}

// Consolidated reports whether the record carries content yet. FounderPending
// slots have no code until the registry records one.
func (s Seed) Consolidated() bool {
	return len(s.Code) > 0
}
