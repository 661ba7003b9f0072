package identity

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"rendezvous/internal/database"
	"rendezvous/pkg/interfaces"
	"rendezvous/pkg/types"
)

// UserStore is the persistence contract the account service and the resolver
// consume. Backed by MongoDB in production, by an in-memory fake in tests.
type UserStore interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, userID string) (*User, error)
}

// MongoStore implements UserStore over the users collection.
type MongoStore struct {
	users   *mongo.Collection
	timeout time.Duration
}

// NewMongoStore creates a store over the manager's user collection.
func NewMongoStore(manager *database.Manager) *MongoStore {
	return &MongoStore{
		users:   manager.Users(),
		timeout: manager.QueryTimeout(),
	}
}

// Create inserts a new account document. A duplicate email surfaces as
// ErrEmailTaken.
func (s *MongoStore) Create(ctx context.Context, user *User) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrEmailTaken
	}
	return errors.Wrap(err, "insert user")
}

// FindByEmail fetches the account with the given email.
func (s *MongoStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

// FindByID fetches the account with the given opaque user ID.
func (s *MongoStore) FindByID(ctx context.Context, userID string) (*User, error) {
	return s.findOne(ctx, bson.M{"user_id": userID})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var user User
	err := s.users.FindOne(ctx, filter).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user")
	}
	return &user, nil
}

// Resolver adapts a UserStore to the relay's identity-resolver contract.
type Resolver struct {
	store UserStore
}

// NewResolver creates a resolver over store.
func NewResolver(store UserStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve maps an opaque user identifier to its durable identity record.
func (r *Resolver) Resolve(ctx context.Context, opaqueID string) (*types.Identity, error) {
	user, err := r.store.FindByID(ctx, opaqueID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, interfaces.ErrIdentityNotFound
	}
	if err != nil {
		return nil, err
	}
	return &types.Identity{
		ID:    user.UserID,
		Name:  user.Name,
		Email: user.Email,
	}, nil
}
