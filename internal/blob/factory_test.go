package blob

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpenDefaultsToFilesystem(t *testing.T) {
	t.Setenv("SEEDCORE_BLOB_DRIVER", "")
	t.Setenv("SEEDCORE_BLOB_FS_ROOT", filepath.Join(t.TempDir(), "blobs"))
	store, err := Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("driver = %s, want fs", store.Driver())
	}
}

func TestOpenMemory(t *testing.T) {
	t.Setenv("SEEDCORE_BLOB_DRIVER", "memory")
	store, err := Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.Driver() != DriverMemory {
		t.Fatalf("driver = %s, want memory", store.Driver())
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Setenv("SEEDCORE_BLOB_DRIVER", "tape")
	if _, err := Open(context.Background()); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestOpenS3RequiresBucket(t *testing.T) {
	t.Setenv("SEEDCORE_BLOB_DRIVER", "s3")
	t.Setenv("SEEDCORE_BLOB_S3_BUCKET", "")
	if _, err := Open(context.Background()); err == nil {
		t.Fatalf("expected error for missing bucket")
	}
}
