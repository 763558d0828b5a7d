package genome

import (
	"bytes"
	"testing"
)

func TestDigestGeneratorDeterministic(t *testing.T) {
	gen := DigestGenerator{}
	if gen.Name() != DigestGeneratorName {
		t.Fatalf("generator name = %q", gen.Name())
	}
	parentA := Code{5, 10, 0, 200}
	parentB := Code{2, 8, 0, 100}
	seed := []byte("round-42")

	first, err := gen.Propose(parentA, parentB, seed)
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	second, err := gen.Propose(parentA, parentB, seed)
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if !first.Equal(second) {
		t.Fatalf("same inputs must produce the same proposal")
	}
}

func TestDigestGeneratorStaysInsideEnvelope(t *testing.T) {
	gen := DigestGenerator{}
	parentA := Code{5, 10, 0, 200, 255}
	parentB := Code{2, 8, 0, 100, 0}
	for _, seed := range [][]byte{[]byte("a"), []byte("b"), []byte("c")} {
		out, err := gen.Propose(parentA, parentB, seed)
		if err != nil {
			t.Fatalf("propose: %v", err)
		}
		if err := Validate(parentA, parentB, out); err != nil {
			t.Fatalf("proposal violates range law with seed %q: %v", seed, err)
		}
	}
}

func TestDigestGeneratorSeedSensitive(t *testing.T) {
	gen := DigestGenerator{}
	parentA := Code{0, 0, 0, 0, 0, 0, 0, 0}
	parentB := Code{255, 255, 255, 255, 255, 255, 255, 255}
	a, err := gen.Propose(parentA, parentB, []byte("seed-a"))
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	b, err := gen.Propose(parentA, parentB, []byte("seed-b"))
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if a.Equal(b) {
		t.Fatalf("different seeds produced identical proposals over a wide envelope")
	}
}

func TestDigestGeneratorRejectsBadInput(t *testing.T) {
	gen := DigestGenerator{}
	if _, err := gen.Propose(Code{1, 2}, Code{1}, []byte("s")); err == nil {
		t.Fatalf("expected parent length mismatch error")
	}
	if _, err := gen.Propose(Code{1, 2}, Code{1, 2}, nil); err == nil {
		t.Fatalf("expected empty seed error")
	}
}

func TestSeedMaterialCallerSensitive(t *testing.T) {
	entropy := []byte("block-entropy")
	a := SeedMaterial(entropy, "alice")
	b := SeedMaterial(entropy, "bob")
	if bytes.Equal(a, b) {
		t.Fatalf("seed material must differ per caller")
	}
	if !bytes.Equal(a, SeedMaterial(entropy, "alice")) {
		t.Fatalf("seed material must be deterministic")
	}
}
