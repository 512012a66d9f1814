package hashing

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"regexp"
)

// digests are SHA-256, hex-encoded, lowercase
var hashPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Hash returns the SHA-256 digest of s, hex-encoded. Used as the lookup key
// for registration tokens, GUIDs and TeleTANs so plaintext values are never
// persisted.
func Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// IsHashValid reports whether s has the shape of a hex-encoded SHA-256
// digest. This is a format check only, not a cryptographic verification.
func IsHashValid(s string) bool {
	return hashPattern.MatchString(s)
}

// Equal performs a constant-time comparison of two digests.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
