package genome

import (
	"sort"
	"testing"
)

func TestIndexReserveAndContains(t *testing.T) {
	x := NewIndex()
	fp := HashCode(Code{1, 2, 3})
	if x.Contains(fp) {
		t.Fatalf("empty index must not contain anything")
	}
	if !x.Reserve(fp) {
		t.Fatalf("first reservation must succeed")
	}
	if x.Reserve(fp) {
		t.Fatalf("second reservation of the same fingerprint must fail")
	}
	if !x.Contains(fp) || x.Len() != 1 {
		t.Fatalf("reservation not recorded")
	}
}

func TestIndexRelease(t *testing.T) {
	x := NewIndex()
	fp := HashCode(Code{4})
	x.Reserve(fp)
	x.Release(fp)
	if x.Contains(fp) {
		t.Fatalf("released fingerprint still present")
	}
	if !x.Reserve(fp) {
		t.Fatalf("released fingerprint must be reservable again")
	}
}

func TestIndexCloneIndependence(t *testing.T) {
	x := NewIndex()
	fp := HashCode(Code{7})
	x.Reserve(fp)
	cp := x.Clone()
	cp.Reserve(HashCode(Code{8}))
	if x.Len() != 1 {
		t.Fatalf("mutating clone leaked into the original")
	}
}

func TestIndexFingerprintsSortedAndRestorable(t *testing.T) {
	x := NewIndex()
	for _, c := range []Code{{1}, {2}, {3}} {
		x.Reserve(HashCode(c))
	}
	fps := x.Fingerprints()
	if !sort.SliceIsSorted(fps, func(i, j int) bool { return fps[i].String() < fps[j].String() }) {
		t.Fatalf("fingerprints not in stable order")
	}

	restored := NewIndex()
	restored.Restore(fps)
	if restored.Len() != x.Len() {
		t.Fatalf("restore lost reservations: got %d want %d", restored.Len(), x.Len())
	}
	for _, fp := range fps {
		if !restored.Contains(fp) {
			t.Fatalf("restore missing %s", fp)
		}
	}
}
