// Package genome defines the heritable content primitives of the seed
// registry: fixed-length code buffers, their content fingerprints, the
// permanent fingerprint reservation index, the recombination range
// validator, and the pluggable recombination generator policy.
package genome

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Code is the fixed-length ordered sequence of small unsigned integers that
// makes up one record's heritable content. The canonical lengths are 256 and
// 300 elements; the registry treats the length as configuration.
type Code []uint8

// Clone returns an independent copy of the code buffer.
func (c Code) Clone() Code {
	if c == nil {
		return nil
	}
	out := make(Code, len(c))
	copy(out, c)
	return out
}

// Equal reports whether two code buffers hold identical sequences.
func (c Code) Equal(other Code) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders the buffer as comma-separated decimal values.
func (c Code) String() string {
	parts := make([]string, len(c))
	for i, v := range c {
		parts[i] = strconv.Itoa(int(v))
	}
	return strings.Join(parts, ",")
}

// ParseCode parses the comma-separated decimal form produced by String.
func ParseCode(s string) (Code, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty code")
	}
	parts := strings.Split(s, ",")
	out := make(Code, 0, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return nil, fmt.Errorf("code element %d: %w", i, err)
		}
		out = append(out, uint8(v))
	}
	return out, nil
}

// Fingerprint is the order-sensitive content digest of a code buffer.
type Fingerprint [sha256.Size]byte

// HashCode computes the content fingerprint of a code buffer. Two buffers
// with identical element sequences hash identically; any element or position
// difference produces a different fingerprint with overwhelming probability.
func HashCode(c Code) Fingerprint {
	return sha256.Sum256(c)
}

// String returns the lowercase hex form of the fingerprint.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// MarshalText implements encoding.TextMarshaler so fingerprints serialize
// as hex strings in JSON snapshots.
func (f Fingerprint) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Fingerprint) UnmarshalText(text []byte) error {
	raw, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("decode fingerprint: %w", err)
	}
	if len(raw) != sha256.Size {
		return fmt.Errorf("fingerprint length %d, want %d", len(raw), sha256.Size)
	}
	copy(f[:], raw)
	return nil
}

// ParseFingerprint parses the hex form produced by String.
func ParseFingerprint(s string) (Fingerprint, error) {
	var f Fingerprint
	if err := f.UnmarshalText([]byte(s)); err != nil {
		return Fingerprint{}, err
	}
	return f, nil
}
