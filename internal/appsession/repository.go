package appsession

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrDuplicateSession is returned by Create when the store's uniqueness
// constraint on a proof-hash or token-hash field is violated. The unique
// indexes are the source of truth against check-then-act races between
// concurrent issuance calls.
var ErrDuplicateSession = errors.New("session already exists for this key")

// ErrSessionNotFound is returned by mutations that target a missing session.
var ErrSessionNotFound = errors.New("no session for this token")

// Repository provides session persistence operations
type Repository interface {
	Create(ctx context.Context, s *Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*Session, error)
	ExistsByTokenHash(ctx context.Context, tokenHash string) (bool, error)
	ExistsByGuidHash(ctx context.Context, guidHash string) (bool, error)
	ExistsByTeleTanHash(ctx context.Context, teleTanHash string) (bool, error)
	IncrementTanCounter(ctx context.Context, tokenHash string) error
}

// MongoRepository implements Repository using a Mongo collection.
// database.EnsureSessionIndexes must have been run against the collection so
// duplicate proofs surface as duplicate-key errors.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, s *Session) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.CreatedAt
	}
	_, err := r.col.InsertOne(ctx, s)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateSession
	}
	return err
}

func (r *MongoRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*Session, error) {
	var s Session
	if err := r.col.FindOne(ctx, bson.M{"registrationTokenHash": tokenHash}).Decode(&s); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *MongoRepository) ExistsByTokenHash(ctx context.Context, tokenHash string) (bool, error) {
	return r.exists(ctx, bson.M{"registrationTokenHash": tokenHash})
}

func (r *MongoRepository) ExistsByGuidHash(ctx context.Context, guidHash string) (bool, error) {
	return r.exists(ctx, bson.M{"hashedGuid": guidHash})
}

func (r *MongoRepository) ExistsByTeleTanHash(ctx context.Context, teleTanHash string) (bool, error) {
	return r.exists(ctx, bson.M{"teleTanHash": teleTanHash})
}

// IncrementTanCounter bumps the session's TAN usage counter and refreshes
// updatedAt. The mutation is owned by the downstream TAN-redemption flow.
func (r *MongoRepository) IncrementTanCounter(ctx context.Context, tokenHash string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"registrationTokenHash": tokenHash},
		bson.M{
			"$inc": bson.M{"tanCounter": 1},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// exists runs an exact-match filter and reports whether any document matches.
func (r *MongoRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	err := r.col.FindOne(ctx, filter).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
