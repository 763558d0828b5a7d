package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"seedcore/pkg/genome"
)

func TestErrorMessagesCarryContext(t *testing.T) {
	cases := []struct {
		err  error
		want []string
	}{
		{AuthorizationError{Op: "mutate", Caller: "bob", Reason: "not the owner"}, []string{"mutate", "bob", "not the owner"}},
		{StateConflictError{Op: "consolidate", Reason: "gate is open"}, []string{"consolidate", "gate is open"}},
		{ValidationError{Index: 3, Min: 2, Value: 9, Max: 5}, []string{"position 3", "value 9", "[2,5]"}},
		{DuplicateContentError{Fingerprint: genome.HashCode(genome.Code{1})}, []string{genome.HashCode(genome.Code{1}).String()}},
		{ReentrancyError{Op: "claim"}, []string{"claim", "reentrant"}},
	}
	for _, tc := range cases {
		msg := tc.err.Error()
		for _, want := range tc.want {
			if !strings.Contains(msg, want) {
				t.Errorf("%T message %q missing %q", tc.err, msg, want)
			}
		}
	}
}

func TestCollaboratorErrorUnwrap(t *testing.T) {
	inner := fmt.Errorf("connection reset")
	err := CollaboratorError{Op: "create_derived", Err: inner}
	if !errors.Is(err, inner) {
		t.Fatalf("collaborator error must unwrap to the ledger failure")
	}
	if !strings.Contains(err.Error(), "create_derived") {
		t.Fatalf("collaborator error missing operation: %q", err.Error())
	}
}

func TestStaticLedger(t *testing.T) {
	l := NewStaticLedger()
	ctx := context.Background()

	if _, err := l.OwnerOf(ctx, 1); err == nil {
		t.Fatalf("expected error for unrecorded token")
	}
	l.SetOwner(1, "alice")
	owner, err := l.OwnerOf(ctx, 1)
	if err != nil || owner != "alice" {
		t.Fatalf("owner = %q, %v", owner, err)
	}

	if err := l.Transfer(ctx, "", 5); err == nil {
		t.Fatalf("expected error for empty transfer target")
	}
	if err := l.Transfer(ctx, "alice", 5); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if err := l.Transfer(ctx, "alice", 2); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if got := l.Balance("alice"); got != 7 {
		t.Fatalf("balance = %d, want 7", got)
	}

	l.SetEntropy([]byte("pinned"))
	b, err := l.UnpredictableContext(ctx)
	if err != nil || string(b) != "pinned" {
		t.Fatalf("entropy = %q, %v", b, err)
	}
}
