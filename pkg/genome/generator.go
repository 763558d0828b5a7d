package genome

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// Generator proposes a candidate child code from two parent codes and an
// unpredictable seed. It is a policy the registry delegates to, replaceable
// over the registry's lifetime; the registry always re-validates proposals
// against the parent envelope, so implementations that violate the range
// law are caught rather than trusted.
type Generator interface {
	Name() string
	Propose(parentA, parentB Code, seed []byte) (Code, error)
}

// DigestGenerator is the reference recombination policy. For each position
// it derives a position-local value from the seed via the registry's digest
// function, reduces it into the inclusive parent envelope, and emits it, so
// the output satisfies the range law by construction.
//
// The seed is expected to mix chain- or environment-level unpredictable
// input with the calling account identity (see SeedMaterial). This is not
// cryptographically secure randomness: a party with influence over the
// unpredictable input can bias or discard attempts. That is a known,
// accepted weakness of the reference policy; deployments wanting stronger
// guarantees should install a verifiable-randomness generator instead.
type DigestGenerator struct{}

// DigestGeneratorName is the registered name of the reference policy.
const DigestGeneratorName = "digest/v1"

// Name identifies the reference policy.
func (DigestGenerator) Name() string { return DigestGeneratorName }

// Propose derives each position as lo + (digest(seed, i) mod (hi-lo+1)).
func (DigestGenerator) Propose(parentA, parentB Code, seed []byte) (Code, error) {
	if len(parentA) != len(parentB) {
		return nil, fmt.Errorf("parent code lengths differ: %d vs %d", len(parentA), len(parentB))
	}
	if len(seed) == 0 {
		return nil, fmt.Errorf("empty generator seed")
	}
	out := make(Code, len(parentA))
	buf := make([]byte, 0, len(seed)+4)
	for i := range parentA {
		lo, hi := parentA[i], parentB[i]
		if lo > hi {
			lo, hi = hi, lo
		}
		span := uint64(hi-lo) + 1
		buf = buf[:0]
		buf = append(buf, seed...)
		buf = binary.BigEndian.AppendUint32(buf, uint32(i))
		digest := sha256.Sum256(buf)
		v := binary.BigEndian.Uint64(digest[:8]) % span
		out[i] = lo + uint8(v)
	}
	return out, nil
}

// SeedMaterial combines collaborator-supplied unpredictable context with the
// calling account identity so proposals cannot be cheaply pre-computed by an
// unrelated third party.
func SeedMaterial(entropy []byte, caller string) []byte {
	h := sha256.New()
	h.Write(entropy)
	h.Write([]byte{0})
	h.Write([]byte(caller))
	return h.Sum(nil)
}
