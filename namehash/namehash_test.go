package namehash

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tos-network/gpns/fault"
)

func mustHash(t *testing.T, name string) common.Hash {
	t.Helper()
	h, err := NodeHash(name)
	if err != nil {
		t.Fatalf("NodeHash(%q): %v", name, err)
	}
	return h
}

// EIP-137 reference vectors.
func TestNodeHashVectors(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"", "0x0000000000000000000000000000000000000000000000000000000000000000"},
		{"eth", "0x93cdeb708b7545dc668eb9280176169d1c33cfd8ed6f04690a0bcc88a93fc4ae"},
		{"foo.eth", "0xde9b09fd7c5f901e23a3f19fecc54828e9c848539801e86591bd9801b019f84f"},
	}
	for _, tt := range tests {
		if got := mustHash(t, tt.name); got != common.HexToHash(tt.want) {
			t.Errorf("NodeHash(%q): have %x want %s", tt.name, got, tt.want)
		}
	}
}

func TestNodeHashCollapsesEmptyLabels(t *testing.T) {
	want := mustHash(t, "a.b")
	for _, name := range []string{"a..b", ".a.b", "a.b.", "..a...b.."} {
		if got := mustHash(t, name); got != want {
			t.Errorf("NodeHash(%q) = %x, want %x", name, got, want)
		}
	}
	if got := mustHash(t, "..."); got != Root {
		t.Errorf("dots only should hash to root, got %x", got)
	}
}

func TestNodeHashRejectsInvalidCharacters(t *testing.T) {
	for _, name := range []string{"a!.b", "a b", "über.pns", "a_b", "x/y"} {
		_, err := NodeHash(name)
		if !errors.Is(err, ErrInvalidName) {
			t.Errorf("NodeHash(%q): want ErrInvalidName, got %v", name, err)
		}
		if !errors.Is(err, fault.ErrInvalidInput) {
			t.Errorf("NodeHash(%q): want invalid input kind, got %v", name, err)
		}
	}
}

func TestNodeHashDistinct(t *testing.T) {
	names := []string{"a", "b", "a.b", "b.a", "ab", "a-b", "abc.pns", "abd.pns", "pay.abc.pns", "A.pns"}
	seen := make(map[common.Hash]string)
	for _, n := range names {
		h := mustHash(t, n)
		if prev, ok := seen[h]; ok {
			t.Fatalf("collision between %q and %q", prev, n)
		}
		seen[h] = n
	}
}

func TestSubnodeComposes(t *testing.T) {
	parent := mustHash(t, "pns")
	if got, want := Subnode(parent, LabelHash("abc")), mustHash(t, "abc.pns"); got != want {
		t.Fatalf("subnode mismatch: have %x want %x", got, want)
	}
}

func TestNormalize(t *testing.T) {
	got, err := Normalize("..pay..abc.pns.")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got != "pay.abc.pns" {
		t.Fatalf("have %q want %q", got, "pay.abc.pns")
	}
}

func TestValidateLabel(t *testing.T) {
	if err := ValidateLabel("abc-1"); err != nil {
		t.Fatalf("valid label rejected: %v", err)
	}
	for _, l := range []string{"", "a.b", "a!"} {
		if err := ValidateLabel(l); !errors.Is(err, ErrInvalidName) {
			t.Errorf("ValidateLabel(%q): want ErrInvalidName, got %v", l, err)
		}
	}
}

func TestTokenIDMatchesLabelHash(t *testing.T) {
	if TokenID("abc").Cmp(LabelHash("abc").Big()) != 0 {
		t.Fatalf("token id must be the numeric label hash")
	}
}

func TestCache(t *testing.T) {
	c := NewCache(2)
	h1, err := c.NodeHash("abc.pns")
	if err != nil {
		t.Fatalf("cache hash: %v", err)
	}
	h2, _ := c.NodeHash("abc.pns")
	if h1 != h2 || h1 != mustHash(t, "abc.pns") {
		t.Fatalf("cached node mismatch")
	}
	if _, err := c.NodeHash("bad!"); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("want ErrInvalidName, got %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("invalid names must not be cached, len=%d", c.Len())
	}
}
