package registry

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
)

// Ledger is the external ownership/value collaborator. The registry treats
// each call as a single atomic external step: a failure aborts and rolls
// back the surrounding operation.
type Ledger interface {
	// OwnerOf resolves the current holder of a record's token.
	OwnerOf(ctx context.Context, id uint64) (Account, error)
	// Transfer moves value from the calling context to the target account.
	Transfer(ctx context.Context, to Account, amount uint64) error
	// UnpredictableContext supplies non-reproducible seed material, e.g. a
	// round identifier.
	UnpredictableContext(ctx context.Context) ([]byte, error)
}

// StaticLedger is an in-process Ledger for tests and the local CLI harness.
// Ownership is set explicitly; transfers accumulate per-account balances;
// entropy is random unless pinned.
type StaticLedger struct {
	mu       sync.Mutex
	owners   map[uint64]Account
	balances map[Account]uint64
	entropy  []byte
}

// NewStaticLedger returns an empty static ledger.
func NewStaticLedger() *StaticLedger {
	return &StaticLedger{
		owners:   make(map[uint64]Account),
		balances: make(map[Account]uint64),
	}
}

// SetOwner records the holder of a token.
func (l *StaticLedger) SetOwner(id uint64, owner Account) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.owners[id] = owner
}

// SetEntropy pins the unpredictable context to a fixed value.
func (l *StaticLedger) SetEntropy(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entropy = append([]byte(nil), b...)
}

// Balance returns the value accumulated by an account through Transfer.
func (l *StaticLedger) Balance(a Account) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[a]
}

// OwnerOf implements Ledger.
func (l *StaticLedger) OwnerOf(_ context.Context, id uint64) (Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	owner, ok := l.owners[id]
	if !ok {
		return "", fmt.Errorf("no owner recorded for token %d", id)
	}
	return owner, nil
}

// Transfer implements Ledger.
func (l *StaticLedger) Transfer(_ context.Context, to Account, amount uint64) error {
	if to == "" {
		return fmt.Errorf("transfer to empty account")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[to] += amount
	return nil
}

// UnpredictableContext implements Ledger.
func (l *StaticLedger) UnpredictableContext(_ context.Context) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.entropy != nil {
		return append([]byte(nil), l.entropy...), nil
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
