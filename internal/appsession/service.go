package appsession

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/medverify/verification-services/internal/hashing"
	"github.com/medverify/verification-services/internal/tokens"
	"github.com/medverify/verification-services/pkg/logger"
)

// KeyType names the proof a caller presents when requesting a registration
// token. The enum is closed; anything else is rejected at the boundary.
type KeyType string

const (
	KeyTypeGuid    KeyType = "GUID"
	KeyTypeTeleTan KeyType = "TELETAN"
)

var (
	// ErrInvalidKey means the proof failed validation (malformed GUID digest,
	// invalid or consumed TeleTAN, unknown key type). Nothing was persisted.
	ErrInvalidKey = errors.New("registration key is not valid")
	// ErrAlreadyRegistered means a session already exists for this proof.
	// Issuance is idempotent per proof, not per call: no new token is minted.
	ErrAlreadyRegistered = errors.New("registration token already exists for this key")
)

// TeleTanOracle is the external validity check for one-time TeleTAN codes.
type TeleTanOracle interface {
	IsValid(ctx context.Context, code string) (bool, error)
	Redeem(ctx context.Context, code string) error
}

// Service issues registration tokens and owns the per-proof idempotency
// guarantee. The repository's uniqueness constraints back it up under
// concurrent callers.
type Service struct {
	repo     Repository
	teleTans TeleTanOracle
}

func NewService(r Repository, oracle TeleTanOracle) *Service {
	return &Service{repo: r, teleTans: oracle}
}

// IssueToken validates the proof, checks that no session exists for it yet,
// then mints a token and persists the session. The token is only returned
// once the record is durably saved.
func (s *Service) IssueToken(ctx context.Context, key string, keyType KeyType) (string, error) {
	switch keyType {
	case KeyTypeGuid:
		if !hashing.IsHashValid(key) {
			return "", ErrInvalidKey
		}
		// GUIDs arrive pre-hashed; the value is the digest
		exists, err := s.repo.ExistsByGuidHash(ctx, key)
		if err != nil {
			return "", fmt.Errorf("guid existence check: %w", err)
		}
		if exists {
			return "", ErrAlreadyRegistered
		}
		return s.create(ctx, func(sess *Session) {
			sess.HashedGuid = key
			sess.SourceOfTrust = SourceHashedGuid
		})

	case KeyTypeTeleTan:
		if s.teleTans == nil {
			return "", ErrInvalidKey
		}
		ok, err := s.teleTans.IsValid(ctx, key)
		if err != nil {
			return "", fmt.Errorf("teletan validity check: %w", err)
		}
		if !ok {
			return "", ErrInvalidKey
		}
		tanHash := hashing.Hash(key)
		exists, err := s.repo.ExistsByTeleTanHash(ctx, tanHash)
		if err != nil {
			return "", fmt.Errorf("teletan existence check: %w", err)
		}
		if exists {
			return "", ErrAlreadyRegistered
		}
		token, err := s.create(ctx, func(sess *Session) {
			sess.TeleTanHash = tanHash
			sess.SourceOfTrust = SourceTeleTan
		})
		if err != nil {
			return "", err
		}
		// one-time code: consume it now that a session is bound to it.
		// Best-effort; the unique teleTanHash index already blocks reuse.
		if err := s.teleTans.Redeem(ctx, key); err != nil {
			logger.Warnf("failed to redeem teletan after issuance: %v", err)
		}
		return token, nil

	default:
		return "", ErrInvalidKey
	}
}

// create mints a fresh token and persists the session. A duplicate-key error
// from the store means a concurrent call won the race for the same proof.
func (s *Service) create(ctx context.Context, bind func(*Session)) (string, error) {
	token := tokens.NewRegistrationToken()
	now := time.Now().UTC()
	sess := &Session{
		RegistrationTokenHash: hashing.Hash(token),
		TanCounter:            0,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	bind(sess)
	if err := s.repo.Create(ctx, sess); err != nil {
		if errors.Is(err, ErrDuplicateSession) {
			return "", ErrAlreadyRegistered
		}
		return "", fmt.Errorf("save app session: %w", err)
	}
	return token, nil
}

// GetSessionByToken hashes the raw token and returns the matching session,
// or nil when none exists.
func (s *Service) GetSessionByToken(ctx context.Context, rawToken string) (*Session, error) {
	return s.repo.GetByTokenHash(ctx, hashing.Hash(rawToken))
}

// ExistsForTokenHash reports whether a session is recorded for the given
// registration token digest.
func (s *Service) ExistsForTokenHash(ctx context.Context, tokenHash string) (bool, error) {
	return s.repo.ExistsByTokenHash(ctx, tokenHash)
}

// ExistsForGuidHash reports whether a session is bound to the given GUID digest.
func (s *Service) ExistsForGuidHash(ctx context.Context, guidHash string) (bool, error) {
	return s.repo.ExistsByGuidHash(ctx, guidHash)
}

// ExistsForTeleTan reports whether a session is bound to the given raw
// TeleTAN. The lookup goes against the dedicated teleTanHash field.
func (s *Service) ExistsForTeleTan(ctx context.Context, teleTan string) (bool, error) {
	return s.repo.ExistsByTeleTanHash(ctx, hashing.Hash(teleTan))
}

// IncrementTanCounter records one TAN-redemption attempt against the session
// identified by the raw registration token. Called by the downstream TAN flow.
func (s *Service) IncrementTanCounter(ctx context.Context, rawToken string) error {
	return s.repo.IncrementTanCounter(ctx, hashing.Hash(rawToken))
}
