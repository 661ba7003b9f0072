package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	pkgdatabase "rendezvous/pkg/database"
)

// Manager owns the MongoDB client backing the user store. Connecting is
// lazy: construction succeeds even while the database is unreachable, so an
// unavailable identity store degrades registration without taking the relay
// down.
type Manager struct {
	config *pkgdatabase.Config
	client *mongo.Client
	db     *mongo.Database
}

// NewManager validates cfg and prepares a client.
func NewManager(cfg *pkgdatabase.Config) (*Manager, error) {
	if cfg == nil {
		cfg = pkgdatabase.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid database config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo")
	}

	return &Manager{
		config: cfg,
		client: client,
		db:     client.Database(cfg.Database),
	}, nil
}

// Ping verifies the database is reachable. Callers decide whether a failure
// is fatal; the relay treats it as a startup warning only.
func (m *Manager) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.config.ConnectTimeout)
	defer cancel()
	return errors.Wrap(m.client.Ping(ctx, readpref.Primary()), "ping mongo")
}

// EnsureIndexes applies the user-store indexes.
func (m *Manager) EnsureIndexes(ctx context.Context) error {
	return pkgdatabase.EnsureIndexes(ctx, m.db)
}

// Users returns the account collection.
func (m *Manager) Users() *mongo.Collection {
	return m.db.Collection(pkgdatabase.UsersCollection)
}

// QueryTimeout returns the per-operation timeout for store queries.
func (m *Manager) QueryTimeout() time.Duration {
	return m.config.QueryTimeout
}

// Close disconnects the client.
func (m *Manager) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.config.ConnectTimeout)
	defer cancel()
	return errors.Wrap(m.client.Disconnect(ctx), "disconnect mongo")
}
