// Package auth implements the credential store: salted one-way
// password digests and verification.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltBytes  = 32
	digestLen  = 32
	iterations = 120_000
)

// HashPassword generates a fresh random salt and returns the PBKDF2
// digest of the password under it. Both values are base64 encoded for
// storage.
func HashPassword(password string) (digest, salt string, err error) {
	saltRaw := make([]byte, saltBytes)
	if _, err := rand.Read(saltRaw); err != nil {
		return "", "", err
	}

	digestRaw := pbkdf2.Key([]byte(password), saltRaw, iterations, digestLen, sha256.New)
	return base64.StdEncoding.EncodeToString(digestRaw),
		base64.StdEncoding.EncodeToString(saltRaw),
		nil
}

// VerifyPassword recomputes the digest for the candidate password and
// compares it against the stored one in constant time. Undecodable
// stored values verify as false.
func VerifyPassword(password, digest, salt string) bool {
	digestRaw, err := base64.StdEncoding.DecodeString(digest)
	if err != nil {
		return false
	}
	saltRaw, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return false
	}

	computed := pbkdf2.Key([]byte(password), saltRaw, iterations, digestLen, sha256.New)
	return subtle.ConstantTimeCompare(computed, digestRaw) == 1
}
