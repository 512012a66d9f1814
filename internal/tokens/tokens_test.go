package tokens

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewRegistrationToken_CanonicalForm(t *testing.T) {
	tok := NewRegistrationToken()
	if !IsWellFormed(tok) {
		t.Fatalf("token not in canonical form: %q", tok)
	}
	// must round-trip through the uuid parser
	if _, err := uuid.Parse(tok); err != nil {
		t.Fatalf("token does not parse as UUID: %v", err)
	}
}

func TestNewRegistrationToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		tok := NewRegistrationToken()
		if seen[tok] {
			t.Fatalf("duplicate token generated: %q", tok)
		}
		seen[tok] = true
	}
}

func TestIsWellFormed_Rejects(t *testing.T) {
	cases := []string{
		"",
		"not-a-token",
		"123e4567-e89b-12d3-a456",                  // truncated
		"123E4567-E89B-12D3-A456-426614174000",     // uppercase
		"123e4567e89b12d3a456426614174000",         // no dashes
		"123e4567-e89b-12d3-a456-4266141740000000", // too long
	}
	for _, c := range cases {
		if IsWellFormed(c) {
			t.Fatalf("expected %q to be rejected", c)
		}
	}
}
