package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"rendezvous/internal/api"
	"rendezvous/internal/config"
	"rendezvous/internal/database"
	"rendezvous/internal/hub"
	"rendezvous/internal/identity"
	"rendezvous/internal/presence"
	"rendezvous/internal/router"
	"rendezvous/internal/websocket"
)

// Application wires all components in dependency order:
// database -> identity -> registry -> presence -> router -> hub -> transport -> HTTP.
type Application struct {
	config     *config.Config
	log        *logrus.Logger
	dbManager  *database.Manager
	registry   *websocket.Registry
	httpServer *http.Server
}

// NewApplication builds the full component graph. An unreachable user store
// is a startup warning, not an error: the relay keeps forwarding traffic and
// only registration degrades.
func NewApplication(cfg *config.Config, log *logrus.Logger) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if log == nil {
		log = config.NewLogger(cfg.LogLevel)
	}

	dbManager, err := database.NewManager(cfg.MongoConfig())
	if err != nil {
		return nil, fmt.Errorf("initialize database manager: %w", err)
	}

	store := identity.NewMongoStore(dbManager)
	resolver := identity.NewResolver(store)
	accounts := identity.NewService(store, identity.Options{
		JWTSecret:  []byte(cfg.Auth.JWTSecret),
		TokenTTL:   cfg.Auth.TokenTTL,
		BcryptCost: cfg.Auth.BcryptCost,
	})

	registry := websocket.NewRegistry()
	broadcaster := presence.NewBroadcaster(registry, log.WithField("component", "presence"))
	messageRouter := router.NewRouter(registry, resolver, broadcaster, log.WithField("component", "router"))
	lifecycle := hub.NewHub(registry, messageRouter, broadcaster, log.WithField("component", "hub"))

	wsHandler := websocket.NewHandler(lifecycle, websocket.Options{
		PingInterval: cfg.WebSocket.PingInterval,
		ReadTimeout:  cfg.WebSocket.ReadTimeout,
		WriteTimeout: cfg.WebSocket.WriteTimeout,
		SendBuffer:   cfg.WebSocket.SendBuffer,
	}, log.WithField("component", "websocket"))

	apiServer := api.NewServer(accounts, wsHandler, registry, log.WithField("component", "api"))

	return &Application{
		config:    cfg,
		log:       log,
		dbManager: dbManager,
		registry:  registry,
		httpServer: &http.Server{
			Addr:         cfg.HTTP.Addr(),
			Handler:      apiServer,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		},
	}, nil
}

// Start checks the user store, applies its indexes and serves HTTP until the
// listener fails or Shutdown is called.
func (a *Application) Start(ctx context.Context) error {
	if err := a.dbManager.Ping(ctx); err != nil {
		a.log.WithError(err).Warn("user store unreachable; registration will fail until it recovers")
	} else if err := a.dbManager.EnsureIndexes(ctx); err != nil {
		a.log.WithError(err).Warn("could not ensure user store indexes")
	}

	a.log.WithField("addr", a.config.HTTP.Addr()).Info("server listening")
	if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops the HTTP listener and disconnects the user store. Live
// WebSocket connections close when the process exits.
func (a *Application) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.config.HTTP.ShutdownTimeout)
	defer cancel()

	a.log.Info("shutting down")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.WithError(err).Warn("http shutdown")
	}
	if err := a.dbManager.Close(ctx); err != nil {
		a.log.WithError(err).Warn("database close")
	}
	return nil
}
