package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHash_NotPlaintext(t *testing.T) {
	t.Parallel()

	hasher := NewPasswordHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("hunter2")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if hash == "hunter2" || strings.Contains(hash, "hunter2") {
		t.Errorf("hash must not contain the plaintext, got: %s", hash)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("expected a bcrypt hash, got: %s", hash)
	}
}

func TestHash_Uniqueness(t *testing.T) {
	t.Parallel()

	hasher := NewPasswordHasher(bcrypt.MinCost)
	password := "the_same_password_12345"

	hash1, err := hasher.Hash(password)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	hash2, err := hasher.Hash(password)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	// Same password should produce different hashes (different salts)
	if hash1 == hash2 {
		t.Error("same password should produce different hashes due to random salt")
	}
	if !hasher.Verify(password, hash1) || !hasher.Verify(password, hash2) {
		t.Error("both hashes should verify correctly")
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	t.Parallel()

	hasher := NewPasswordHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("correct-password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if hasher.Verify("wrong-password", hash) {
		t.Error("wrong password should not verify")
	}
	if hasher.Verify("", hash) {
		t.Error("empty password should not verify")
	}
}

func TestNewPasswordHasher_CostFallback(t *testing.T) {
	t.Parallel()

	hasher := NewPasswordHasher(999)
	if hasher.cost != bcrypt.DefaultCost {
		t.Errorf("expected fallback to default cost %d, got %d", bcrypt.DefaultCost, hasher.cost)
	}
}
