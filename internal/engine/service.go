package engine

import (
	"context"
	"fmt"
	"time"

	"seedcore/pkg/genome"
	"seedcore/pkg/registry"
)

// Archiver writes long-term copies of registry snapshots to blob storage.
type Archiver interface {
	Archive(ctx context.Context, snap registry.Snapshot) (string, error)
}

// Service wraps the registry with observability and durability. Every
// mutating operation is logged, measured, and traced, and the full state
// snapshot is persisted after each successful commit so a restart resumes
// from the last committed operation.
type Service struct {
	reg       *Registry
	log       Logger
	metrics   MetricsRecorder
	tracer    Tracer
	snapshots SnapshotStore
	archiver  Archiver
}

// ServiceOption customizes service construction.
type ServiceOption func(*Service)

// WithLogger installs a structured logger.
func WithLogger(l Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetricsRecorder installs a metrics recorder.
func WithMetricsRecorder(m MetricsRecorder) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithTracer installs a tracer.
func WithTracer(t Tracer) ServiceOption {
	return func(s *Service) { s.tracer = t }
}

// WithSnapshotStore installs the durability store. When set, the service
// hydrates from the latest snapshot at construction and persists one after
// every committed operation.
func WithSnapshotStore(st SnapshotStore) ServiceOption {
	return func(s *Service) { s.snapshots = st }
}

// WithArchiver installs a blob archiver for the Archive operation.
func WithArchiver(a Archiver) ServiceOption {
	return func(s *Service) { s.archiver = a }
}

// NewService builds a registry service. When a snapshot store holds prior
// state, the registry is restored from it; gen must then match the snapshot's
// recorded generator name.
func NewService(cfg Config, ledger registry.Ledger, authority registry.Account, gen genome.Generator, delegate registry.Account, opts ...ServiceOption) (*Service, error) {
	reg, err := New(cfg, ledger, authority)
	if err != nil {
		return nil, err
	}
	svc := &Service{
		reg: reg,
		log: NoopLogger{},
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.snapshots != nil {
		snap, err := svc.snapshots.Load(context.Background())
		if err != nil {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		if !snap.Empty() {
			if err := reg.Restore(snap, gen, delegate); err != nil {
				return nil, err
			}
			return svc, nil
		}
	}
	if gen != nil {
		if err := reg.SetGenerator(authority, gen, delegate); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

// Registry exposes the wrapped registry for read paths.
func (s *Service) Registry() *Registry { return s.reg }

// instrument runs fn as one observed operation and persists the snapshot
// when fn commits.
func (s *Service) instrument(ctx context.Context, op string, fields map[string]any, fn func(ctx context.Context) error) error {
	start := time.Now()
	var span TraceSpan
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, op)
	}
	err := fn(ctx)
	if err == nil && s.snapshots != nil {
		if snap, expErr := s.reg.Export(); expErr != nil {
			err = expErr
		} else if saveErr := s.snapshots.Save(ctx, snap); saveErr != nil {
			err = fmt.Errorf("save snapshot: %w", saveErr)
		}
	}
	if span != nil {
		span.End(err)
	}
	if s.metrics != nil {
		s.metrics.Observe(ctx, op, err == nil, time.Since(start))
	}
	if err != nil {
		s.log.Error(op, err, fields)
		return err
	}
	s.log.Info(op, fields)
	return nil
}

// Consolidate writes a founder slot's content. See Registry.Consolidate.
func (s *Service) Consolidate(ctx context.Context, caller registry.Account, id uint64, code genome.Code) (registry.Seed, error) {
	var out registry.Seed
	err := s.instrument(ctx, "consolidate", map[string]any{"caller": caller, "id": id}, func(ctx context.Context) error {
		var err error
		out, err = s.reg.Consolidate(ctx, caller, id, code)
		return err
	})
	return out, err
}

// CreateDerived creates a derived record. See Registry.CreateDerived.
func (s *Service) CreateDerived(ctx context.Context, caller, to registry.Account, parentAID, parentBID uint64, code genome.Code) (registry.Seed, error) {
	var out registry.Seed
	err := s.instrument(ctx, "create_derived", map[string]any{"caller": caller, "parent_a": parentAID, "parent_b": parentBID}, func(ctx context.Context) error {
		var err error
		out, err = s.reg.CreateDerived(ctx, caller, to, parentAID, parentBID, code)
		return err
	})
	return out, err
}

// Mutate replaces a derived record's code. See Registry.Mutate.
func (s *Service) Mutate(ctx context.Context, caller registry.Account, id, mutatorID uint64, code genome.Code) (registry.Seed, error) {
	var out registry.Seed
	err := s.instrument(ctx, "mutate", map[string]any{"caller": caller, "id": id, "mutator": mutatorID}, func(ctx context.Context) error {
		var err error
		out, err = s.reg.Mutate(ctx, caller, id, mutatorID, code)
		return err
	})
	return out, err
}

// SetUnsignedMutation toggles the per-record unsigned mutation opt-in.
func (s *Service) SetUnsignedMutation(ctx context.Context, caller registry.Account, id uint64, allow bool) error {
	return s.instrument(ctx, "set_unsigned_mutation", map[string]any{"caller": caller, "id": id, "allow": allow}, func(ctx context.Context) error {
		return s.reg.SetUnsignedMutation(ctx, caller, id, allow)
	})
}

// SetPrice sets a record's third-party use fee.
func (s *Service) SetPrice(ctx context.Context, caller registry.Account, id uint64, price uint64) error {
	return s.instrument(ctx, "set_price", map[string]any{"caller": caller, "id": id, "price": price}, func(ctx context.Context) error {
		return s.reg.SetPrice(ctx, caller, id, price)
	})
}

// SetMintingOpen toggles derived creation.
func (s *Service) SetMintingOpen(ctx context.Context, caller registry.Account, open bool) error {
	return s.instrument(ctx, "set_minting_open", map[string]any{"caller": caller, "open": open}, func(context.Context) error {
		return s.reg.SetMintingOpen(caller, open)
	})
}

// SetGenerator installs the recombination generator.
func (s *Service) SetGenerator(ctx context.Context, caller registry.Account, gen genome.Generator, delegate registry.Account) error {
	return s.instrument(ctx, "set_generator", map[string]any{"caller": caller, "delegate": delegate}, func(context.Context) error {
		return s.reg.SetGenerator(caller, gen, delegate)
	})
}

// RecordTransfer refreshes a record's ownership mirror from the ledger.
func (s *Service) RecordTransfer(ctx context.Context, id uint64) error {
	return s.instrument(ctx, "record_transfer", map[string]any{"id": id}, func(ctx context.Context) error {
		return s.reg.RecordTransfer(ctx, id)
	})
}

// OpenGate opens the ownership gate.
func (s *Service) OpenGate(ctx context.Context, caller registry.Account) error {
	return s.instrument(ctx, "open_gate", map[string]any{"caller": caller}, func(context.Context) error {
		return s.reg.OpenGate(caller)
	})
}

// Claim moves registry control to the caller.
func (s *Service) Claim(ctx context.Context, caller registry.Account) error {
	return s.instrument(ctx, "claim", map[string]any{"caller": caller}, func(ctx context.Context) error {
		return s.reg.Claim(ctx, caller)
	})
}

// Confirm finalizes a provisional claim.
func (s *Service) Confirm(ctx context.Context, caller registry.Account) error {
	return s.instrument(ctx, "confirm", map[string]any{"caller": caller}, func(context.Context) error {
		return s.reg.Confirm(caller)
	})
}

// Rollback undoes an unconfirmed claim.
func (s *Service) Rollback(ctx context.Context, caller registry.Account) error {
	return s.instrument(ctx, "rollback", map[string]any{"caller": caller}, func(context.Context) error {
		return s.reg.Rollback(caller)
	})
}

// Archive writes the current snapshot to the configured blob archiver and
// returns the stored object key.
func (s *Service) Archive(ctx context.Context) (string, error) {
	var key string
	err := s.instrument(ctx, "archive", nil, func(ctx context.Context) error {
		if s.archiver == nil {
			return fmt.Errorf("no archiver configured")
		}
		snap, err := s.reg.Export()
		if err != nil {
			return err
		}
		key, err = s.archiver.Archive(ctx, snap)
		return err
	})
	return key, err
}

// Close releases the snapshot store, if any.
func (s *Service) Close() error {
	if s.snapshots != nil {
		return s.snapshots.Close()
	}
	return nil
}
