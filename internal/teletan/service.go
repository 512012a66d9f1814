package teletan

import (
	"context"
	"time"

	"github.com/medverify/verification-services/internal/hashing"
)

// Service mints TeleTAN codes and answers validity checks for the token
// issuer. Only code digests reach the store.
type Service struct {
	store Store
	ttl   time.Duration
}

// NewService wraps the store. ttl bounds how long a minted code stays
// redeemable.
func NewService(store Store, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Service{store: store, ttl: ttl}
}

// GenerateTeleTan mints a new code and records it so IsValid will accept it
// until it expires or is redeemed.
func (s *Service) GenerateTeleTan(ctx context.Context) (string, error) {
	code, err := Generate()
	if err != nil {
		return "", err
	}
	if err := s.store.Save(ctx, hashing.Hash(code), s.ttl); err != nil {
		return "", err
	}
	return code, nil
}

// IsValid reports whether code is well-formed, known, and not yet consumed.
func (s *Service) IsValid(ctx context.Context, code string) (bool, error) {
	if !IsWellFormed(code) {
		return false, nil
	}
	return s.store.Exists(ctx, hashing.Hash(code))
}

// Redeem consumes the one-time code. Subsequent IsValid calls return false.
func (s *Service) Redeem(ctx context.Context, code string) error {
	return s.store.Delete(ctx, hashing.Hash(code))
}
