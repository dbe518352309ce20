package settings

import (
	"strings"
	"testing"
)

func TestNewVersionMintsDistinctTokens(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		v := NewVersion()
		if v.IsZero() {
			t.Fatal("minted token is zero")
		}
		if seen[v.String()] {
			t.Fatalf("duplicate token %q", v.String())
		}
		seen[v.String()] = true
	}
}

func TestVersionEqualIsStrict(t *testing.T) {
	a := NewVersion()
	b := NewVersion()
	if a.Equal(b) {
		t.Fatal("distinct tokens compare equal")
	}
	if !a.Equal(ParseVersion(a.String())) {
		t.Fatal("round-tripped token no longer equal")
	}
}

func TestParseVersionEmptyIsZero(t *testing.T) {
	v := ParseVersion("")
	if !v.IsZero() {
		t.Fatal("empty string should yield the zero version")
	}
	if !v.Equal(Version{}) {
		t.Fatal("zero versions should compare equal")
	}
}

func TestVersionStringShape(t *testing.T) {
	v := NewVersion()
	parts := strings.Split(v.String(), "/")
	if len(parts) != 2 {
		t.Fatalf("token %q should be timestamp/suffix", v.String())
	}
	if len(parts[1]) != 8 {
		t.Fatalf("suffix %q should be 8 chars", parts[1])
	}
}
