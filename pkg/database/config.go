package database

import (
	"fmt"
	"time"
)

// Config holds MongoDB connection settings for the user store.
type Config struct {
	URI            string        `json:"uri"`
	Database       string        `json:"database"`
	ConnectTimeout time.Duration `json:"connect_timeout"`
	QueryTimeout   time.Duration `json:"query_timeout"`
}

// DefaultConfig returns settings suitable for a local development store.
func DefaultConfig() *Config {
	return &Config{
		URI:            "mongodb://localhost:27017",
		Database:       "rendezvous",
		ConnectTimeout: 10 * time.Second,
		QueryTimeout:   5 * time.Second,
	}
}

// Validate checks the configuration before any connection attempt.
func (c *Config) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("database URI cannot be empty")
	}
	if c.Database == "" {
		return fmt.Errorf("database name cannot be empty")
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("connect timeout must be positive")
	}
	if c.QueryTimeout <= 0 {
		return fmt.Errorf("query timeout must be positive")
	}
	return nil
}
