// Package password implements one-way password hashing and verification.
//
// The stored digest is the lowercase SHA-256 hex of the password; that exact
// format is the persisted settings contract, so the digest stays comparable
// across restarts and deployments.
package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Hash returns the SHA-256 hex digest of password.
func Hash(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether password hashes to digest. Comparison is
// constant-time; an empty digest never verifies.
func Verify(password, digest string) bool {
	if digest == "" {
		return false
	}
	computed := Hash(password)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}
