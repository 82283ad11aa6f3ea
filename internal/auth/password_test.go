package auth

import (
	"encoding/base64"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	digest, salt, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	if !VerifyPassword("correct horse battery staple", digest, salt) {
		t.Fatalf("expected correct password to verify")
	}
	if VerifyPassword("wrong password", digest, salt) {
		t.Fatalf("expected wrong password to fail verification")
	}
	if VerifyPassword("correct horse battery staple", digest, "") {
		t.Fatalf("expected empty salt to fail verification")
	}
}

func TestHashPasswordSaltLength(t *testing.T) {
	_, salt, err := HashPassword("pw")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		t.Fatalf("decode salt: %v", err)
	}
	if len(raw) != 32 {
		t.Fatalf("expected 32-byte salt, got %d", len(raw))
	}
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	digest1, salt1, err := HashPassword("same password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	digest2, salt2, err := HashPassword("same password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	if salt1 == salt2 {
		t.Fatalf("expected distinct salts for repeated hashing")
	}
	if digest1 == digest2 {
		t.Fatalf("expected distinct digests under distinct salts")
	}

	// Each pair still verifies independently.
	if !VerifyPassword("same password", digest1, salt1) || !VerifyPassword("same password", digest2, salt2) {
		t.Fatalf("expected both digest/salt pairs to verify")
	}
}

func TestVerifyPasswordUndecodableStored(t *testing.T) {
	if VerifyPassword("pw", "not base64 !!!", "also not base64 !!!") {
		t.Fatalf("expected undecodable stored values to verify as false")
	}
}
