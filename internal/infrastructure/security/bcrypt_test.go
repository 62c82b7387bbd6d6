package security

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndCompare(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("Sup3rSecret")
	if err != nil {
		t.Fatalf("hash err: %v", err)
	}
	if hash == "Sup3rSecret" || hash == "" {
		t.Fatalf("hash must not be the plaintext: %q", hash)
	}

	if err := h.Compare(hash, "Sup3rSecret"); err != nil {
		t.Fatalf("compare should match: %v", err)
	}
	if err := h.Compare(hash, "wrong"); err == nil {
		t.Fatalf("compare should fail for wrong password")
	}
}

func TestBcryptHasher_HashesDiffer(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(bcrypt.MinCost)

	h1, err := h.Hash("same")
	if err != nil {
		t.Fatalf("hash err: %v", err)
	}
	h2, err := h.Hash("same")
	if err != nil {
		t.Fatalf("hash err: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("expected salted hashes to differ")
	}
}

func TestBcryptHasher_TooLongPassword(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(bcrypt.MinCost)

	// bcrypt rejects inputs over 72 bytes.
	if _, err := h.Hash(strings.Repeat("x", 100)); err == nil {
		t.Fatalf("expected error for >72 byte password")
	}
}

func TestBcryptHasher_DefaultCost(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(0)
	if h.cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", h.cost)
	}
}
