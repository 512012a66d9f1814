package tokens

import (
	"regexp"

	"github.com/google/uuid"
)

var tokenPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// NewRegistrationToken returns a new opaque registration token: a
// cryptographically random 128-bit value rendered in canonical UUID text
// form. Collision probability is negligible and not handled.
func NewRegistrationToken() string {
	return uuid.New().String()
}

// IsWellFormed reports whether s looks like a registration token issued by
// this service. Callers can use it to reject garbage before hashing.
func IsWellFormed(s string) bool {
	return tokenPattern.MatchString(s)
}
