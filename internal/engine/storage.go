package engine

import (
	"context"
	"fmt"
	"os"

	"seedcore/internal/infra/persistence/memory"
	"seedcore/internal/infra/persistence/postgres"
	"seedcore/internal/infra/persistence/sqlite"
	"seedcore/pkg/registry"
)

// StorageDriver identifies a concrete snapshot store implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// SnapshotStore persists full registry snapshots. Save replaces the stored
// snapshot wholesale; Load returns a zero-value snapshot when the store
// holds no prior state.
type SnapshotStore interface {
	Load(ctx context.Context) (registry.Snapshot, error)
	Save(ctx context.Context, snap registry.Snapshot) error
	Close() error
}

// OpenSnapshotStore selects a backend using environment variables.
// Defaults to sqlite when unset.
//
//	SEEDCORE_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	SEEDCORE_SQLITE_PATH: path to sqlite file (default ./seedcore.db)
//	SEEDCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenSnapshotStore() (SnapshotStore, error) {
	driver := os.Getenv("SEEDCORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		return sqlite.NewStore(os.Getenv("SEEDCORE_SQLITE_PATH"))
	case StoragePostgres:
		return postgres.NewStore(os.Getenv("SEEDCORE_POSTGRES_DSN"))
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
