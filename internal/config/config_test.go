package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestLoad_DefaultsWithSecret(t *testing.T) {
	t.Setenv("RENDEZVOUS_AUTH_JWT_SECRET", "test-secret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTP.Addr() != "0.0.0.0:5000" {
		t.Errorf("Addr = %q", cfg.HTTP.Addr())
	}
	if cfg.WebSocket.PingInterval != 30*time.Second || cfg.WebSocket.ReadTimeout != 60*time.Second {
		t.Errorf("websocket timings = %+v", cfg.WebSocket)
	}
	if cfg.Database.URI != "mongodb://localhost:27017" || cfg.Database.Name != "rendezvous" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Auth.JWTSecret != "test-secret" || cfg.Auth.TokenTTL != 7*24*time.Hour || cfg.Auth.BcryptCost != 10 {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
}

func TestLoad_MissingSecretRejected(t *testing.T) {
	t.Setenv("RENDEZVOUS_AUTH_JWT_SECRET", "")
	if _, err := Load(""); err == nil {
		t.Fatal("Load succeeded without a JWT secret")
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("RENDEZVOUS_AUTH_JWT_SECRET", "test-secret")
	t.Setenv("RENDEZVOUS_HTTP_PORT", "8443")
	t.Setenv("RENDEZVOUS_DATABASE_URI", "mongodb://db.internal:27017")
	t.Setenv("RENDEZVOUS_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTP.Port != 8443 {
		t.Errorf("port = %d, want 8443", cfg.HTTP.Port)
	}
	if cfg.Database.URI != "mongodb://db.internal:27017" {
		t.Errorf("database uri = %q", cfg.Database.URI)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	t.Setenv("RENDEZVOUS_AUTH_JWT_SECRET", "test-secret")
	t.Setenv("RENDEZVOUS_HTTP_PORT", "9000")

	path := filepath.Join(t.TempDir(), "rendezvous.yaml")
	body := "http:\n  host: 127.0.0.1\n  port: 8080\nlog_level: warning\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTP.Host != "127.0.0.1" {
		t.Errorf("host = %q, want file value", cfg.HTTP.Host)
	}
	if cfg.HTTP.Port != 9000 {
		t.Errorf("port = %d, want environment to override the file", cfg.HTTP.Port)
	}
	if cfg.LogLevel != "warning" {
		t.Errorf("log level = %q, want file value", cfg.LogLevel)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("RENDEZVOUS_AUTH_JWT_SECRET", "test-secret")
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load succeeded with a nonexistent config file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := Default()
		c.Auth.JWTSecret = "s"
		return c
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults with secret", func(*Config) {}, true},
		{"zero port", func(c *Config) { c.HTTP.Port = 0 }, false},
		{"port too high", func(c *Config) { c.HTTP.Port = 70000 }, false},
		{"read timeout under ping interval", func(c *Config) { c.WebSocket.ReadTimeout = c.WebSocket.PingInterval }, false},
		{"zero send buffer", func(c *Config) { c.WebSocket.SendBuffer = 0 }, false},
		{"empty database uri", func(c *Config) { c.Database.URI = "" }, false},
		{"empty jwt secret", func(c *Config) { c.Auth.JWTSecret = "" }, false},
		{"negative token ttl", func(c *Config) { c.Auth.TokenTTL = -time.Hour }, false},
		{"bogus log level", func(c *Config) { c.LogLevel = "loud" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate failed: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("Validate accepted a broken config")
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("debug")
	if err != nil || level != logrus.DebugLevel {
		t.Errorf("ParseLogLevel(debug) = %v, %v", level, err)
	}
	if _, err := ParseLogLevel("loud"); err == nil {
		t.Error("ParseLogLevel accepted an unknown level")
	}
}

func TestMongoConfig(t *testing.T) {
	c := Default()
	mc := c.MongoConfig()
	if mc.URI != c.Database.URI || mc.Database != c.Database.Name {
		t.Errorf("MongoConfig = %+v", mc)
	}
	if mc.ConnectTimeout != c.Database.ConnectTimeout || mc.QueryTimeout != c.Database.QueryTimeout {
		t.Errorf("MongoConfig timeouts = %+v", mc)
	}
}
