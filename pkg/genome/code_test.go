package genome

import "testing"

func TestHashCodeDeterministic(t *testing.T) {
	a := Code{1, 2, 3, 4}
	b := Code{1, 2, 3, 4}
	if HashCode(a) != HashCode(b) {
		t.Fatalf("identical codes must hash identically")
	}
}

func TestHashCodeOrderSensitive(t *testing.T) {
	a := Code{1, 2, 3, 4}
	b := Code{4, 3, 2, 1}
	if HashCode(a) == HashCode(b) {
		t.Fatalf("reordered codes must not hash identically")
	}
	c := Code{1, 2, 3, 5}
	if HashCode(a) == HashCode(c) {
		t.Fatalf("codes differing in one element must not hash identically")
	}
}

func TestCloneIndependence(t *testing.T) {
	a := Code{1, 2, 3}
	cp := a.Clone()
	cp[0] = 9
	if a[0] != 1 {
		t.Fatalf("mutating clone must not touch the original")
	}
	if Code(nil).Clone() != nil {
		t.Fatalf("nil clone must stay nil")
	}
}

func TestParseCodeRoundtrip(t *testing.T) {
	in := Code{0, 7, 255, 42}
	out, err := ParseCode(in.String())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !out.Equal(in) {
		t.Fatalf("roundtrip mismatch: got %v want %v", out, in)
	}
}

func TestParseCodeRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "256", "1,-2", "1,x"} {
		if _, err := ParseCode(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestFingerprintTextRoundtrip(t *testing.T) {
	fp := HashCode(Code{9, 9, 9})
	text, err := fp.MarshalText()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	parsed, err := ParseFingerprint(string(text))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != fp {
		t.Fatalf("roundtrip mismatch")
	}
	if _, err := ParseFingerprint("zz"); err == nil {
		t.Fatalf("expected error for invalid hex")
	}
	if _, err := ParseFingerprint("abcd"); err == nil {
		t.Fatalf("expected error for short fingerprint")
	}
}
