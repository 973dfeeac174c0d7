package auth

import (
	"strings"
	"testing"
)

// Bcrypt cost 4 keeps the tests fast; the logic under test is identical.

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := NewBcryptHasher(WithCost(4))

	digest, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if digest == "secret1" {
		t.Fatal("digest must not equal the plaintext")
	}
	if err := h.Verify("secret1", digest); err != nil {
		t.Errorf("Verify rejected the correct password: %v", err)
	}
}

func TestBcryptHasher_WrongPassword(t *testing.T) {
	h := NewBcryptHasher(WithCost(4))

	digest, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if err := h.Verify("secret2", digest); err == nil {
		t.Error("Verify accepted the wrong password")
	}
}

func TestBcryptHasher_SaltedDigestsDiffer(t *testing.T) {
	h := NewBcryptHasher(WithCost(4))

	a, _ := h.Hash("secret1")
	b, _ := h.Hash("secret1")
	if a == b {
		t.Error("two digests of the same password should differ (random salt)")
	}
}

func TestBcryptHasher_MalformedDigest(t *testing.T) {
	h := NewBcryptHasher(WithCost(4))

	for _, digest := range []string{"", "not-a-digest", "$2a$garbage"} {
		if err := h.Verify("secret1", digest); err == nil {
			t.Errorf("Verify accepted malformed digest %q", digest)
		}
	}
}

func TestBcryptHasher_TooLong(t *testing.T) {
	h := NewBcryptHasher(WithCost(4))

	if _, err := h.Hash(strings.Repeat("x", 73)); err == nil {
		t.Error("expected error for password above the 72-byte bcrypt limit")
	}
}

func TestArgon2Hasher_RoundTrip(t *testing.T) {
	h := NewArgon2Hasher(WithArgon2Memory(8 * 1024))

	digest, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if !strings.HasPrefix(digest, "$argon2id$") {
		t.Fatalf("unexpected digest format: %s", digest)
	}
	if err := h.Verify("secret1", digest); err != nil {
		t.Errorf("Verify rejected the correct password: %v", err)
	}
	if err := h.Verify("other", digest); err == nil {
		t.Error("Verify accepted the wrong password")
	}
}

func TestArgon2Hasher_SelfContainedParams(t *testing.T) {
	// A digest produced with one parameter set must verify with a hasher
	// configured differently: the parameters travel inside the digest.
	writer := NewArgon2Hasher(WithArgon2Memory(8*1024), WithArgon2Time(2))
	reader := NewArgon2Hasher()

	digest, err := writer.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if err := reader.Verify("secret1", digest); err != nil {
		t.Errorf("Verify failed across parameter sets: %v", err)
	}
}

func TestArgon2Hasher_MalformedDigest(t *testing.T) {
	h := NewArgon2Hasher()

	for _, digest := range []string{"", "$argon2id$v=19$broken", "$2a$12$bcryptdigest"} {
		if err := h.Verify("secret1", digest); err == nil {
			t.Errorf("Verify accepted malformed digest %q", digest)
		}
	}
}

func TestNewHasher_AlgorithmSelection(t *testing.T) {
	if _, ok := NewHasher(Config{PasswordAlgorithm: AlgorithmBcrypt}).(*BcryptHasher); !ok {
		t.Error("expected a BcryptHasher for bcrypt")
	}
	if _, ok := NewHasher(Config{PasswordAlgorithm: AlgorithmArgon2id}).(*Argon2Hasher); !ok {
		t.Error("expected an Argon2Hasher for argon2id")
	}
	if _, ok := NewHasher(Config{}).(*BcryptHasher); !ok {
		t.Error("expected bcrypt as the default algorithm")
	}
}
