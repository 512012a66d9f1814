package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo opens a connection and returns the client. Caller should call client.Disconnect(ctx).
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	clientOpts := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// EnsureSessionIndexes creates the unique indexes the issuance flow relies
// on. registrationTokenHash is always present; hashedGuid and teleTanHash
// are each unique only when set, hence the partial filters.
func EnsureSessionIndexes(ctx context.Context, coll *mongo.Collection) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "registrationTokenHash", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_registration_token_hash"),
		},
		{
			Keys: bson.D{{Key: "hashedGuid", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_hashed_guid").
				SetPartialFilterExpression(bson.D{{Key: "hashedGuid", Value: bson.D{{Key: "$type", Value: "string"}}}}),
		},
		{
			Keys: bson.D{{Key: "teleTanHash", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_teletan_hash").
				SetPartialFilterExpression(bson.D{{Key: "teleTanHash", Value: bson.D{{Key: "$type", Value: "string"}}}}),
		},
	}
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("create session indexes: %w", err)
	}
	return nil
}
