package genome

import "sort"

// Index tracks every content fingerprint ever written into the registry.
// Reservations are permanent by default: a code string stays reserved even
// after the record that held it mutates away, so retired sequences cannot be
// resurrected. Release exists only for the optional pre-gate founder
// re-consolidation window.
type Index struct {
	reserved map[Fingerprint]struct{}
}

// NewIndex returns an empty fingerprint index.
func NewIndex() *Index {
	return &Index{reserved: make(map[Fingerprint]struct{})}
}

// Reserve marks the fingerprint as used. It returns false if the
// fingerprint was already reserved.
func (x *Index) Reserve(fp Fingerprint) bool {
	if _, ok := x.reserved[fp]; ok {
		return false
	}
	x.reserved[fp] = struct{}{}
	return true
}

// Contains reports whether the fingerprint has been reserved.
func (x *Index) Contains(fp Fingerprint) bool {
	_, ok := x.reserved[fp]
	return ok
}

// Release removes a reservation. Only the founder re-consolidation window
// uses this, and only when the registry is configured to release hashes.
func (x *Index) Release(fp Fingerprint) {
	delete(x.reserved, fp)
}

// Len returns the number of reserved fingerprints.
func (x *Index) Len() int {
	return len(x.reserved)
}

// Fingerprints returns all reservations in stable (hex) order, for
// snapshot export.
func (x *Index) Fingerprints() []Fingerprint {
	out := make([]Fingerprint, 0, len(x.reserved))
	for fp := range x.reserved {
		out = append(out, fp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Clone returns an independent copy of the index.
func (x *Index) Clone() *Index {
	out := NewIndex()
	for fp := range x.reserved {
		out.reserved[fp] = struct{}{}
	}
	return out
}

// Restore reinstates reservations from a snapshot.
func (x *Index) Restore(fps []Fingerprint) {
	for _, fp := range fps {
		x.reserved[fp] = struct{}{}
	}
}
