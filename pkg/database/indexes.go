package database

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UsersCollection is the canonical collection name for account documents.
const UsersCollection = "users"

// EnsureIndexes creates the indexes the user store depends on. It is
// idempotent; Mongo treats a matching existing index as a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	users := db.Collection(UsersCollection)

	_, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	})
	if err != nil {
		return errors.Wrap(err, "create user indexes")
	}
	return nil
}
