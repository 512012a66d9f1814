package teletan

import (
	"crypto/rand"
	"regexp"
)

// TeleTANs are short human-enterable one-time codes. The charset drops
// characters that are easy to misread over the phone (0/O, 1/I/L).
const (
	codeLength = 10
	charset    = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"
)

var codePattern = regexp.MustCompile(`^[2-9A-HJKMNP-Z]{10}$`)

// Generate returns a new random TeleTAN code using crypto/rand.
func Generate() (string, error) {
	b := make([]byte, codeLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	out := make([]byte, codeLength)
	for i := 0; i < codeLength; i++ {
		out[i] = charset[int(b[i])%len(charset)]
	}
	return string(out), nil
}

// IsWellFormed reports whether code matches the TeleTAN format.
func IsWellFormed(code string) bool {
	return codePattern.MatchString(code)
}
