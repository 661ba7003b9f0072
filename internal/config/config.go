package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	pkgdatabase "rendezvous/pkg/database"
)

// Config is the full server configuration. Values come from defaults, an
// optional YAML file, and RENDEZVOUS_* environment overrides, in that order.
type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	LogLevel  string          `mapstructure:"log_level"`
}

// HTTPConfig configures the combined HTTP/WebSocket listener.
type HTTPConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// WebSocketConfig configures per-connection transport behavior.
type WebSocketConfig struct {
	PingInterval time.Duration `mapstructure:"ping_interval"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	SendBuffer   int           `mapstructure:"send_buffer"`
}

// DatabaseConfig configures the MongoDB user store.
type DatabaseConfig struct {
	URI            string        `mapstructure:"uri"`
	Name           string        `mapstructure:"name"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	QueryTimeout   time.Duration `mapstructure:"query_timeout"`
}

// AuthConfig configures token issuance and password hashing.
type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
}

// Default returns the development defaults.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Host:            "0.0.0.0",
			Port:            5000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		WebSocket: WebSocketConfig{
			PingInterval: 30 * time.Second,
			ReadTimeout:  60 * time.Second,
			WriteTimeout: 5 * time.Second,
			SendBuffer:   100,
		},
		Database: DatabaseConfig{
			URI:            "mongodb://localhost:27017",
			Name:           "rendezvous",
			ConnectTimeout: 10 * time.Second,
			QueryTimeout:   5 * time.Second,
		},
		Auth: AuthConfig{
			JWTSecret:  "",
			TokenTTL:   7 * 24 * time.Hour,
			BcryptCost: 10,
		},
		LogLevel: "info",
	}
}

// Load builds the configuration. path names an optional YAML file; an empty
// path means defaults plus environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix("RENDEZVOUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "read config file")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("http.host", d.HTTP.Host)
	v.SetDefault("http.port", d.HTTP.Port)
	v.SetDefault("http.read_timeout", d.HTTP.ReadTimeout)
	v.SetDefault("http.write_timeout", d.HTTP.WriteTimeout)
	v.SetDefault("http.shutdown_timeout", d.HTTP.ShutdownTimeout)
	v.SetDefault("websocket.ping_interval", d.WebSocket.PingInterval)
	v.SetDefault("websocket.read_timeout", d.WebSocket.ReadTimeout)
	v.SetDefault("websocket.write_timeout", d.WebSocket.WriteTimeout)
	v.SetDefault("websocket.send_buffer", d.WebSocket.SendBuffer)
	v.SetDefault("database.uri", d.Database.URI)
	v.SetDefault("database.name", d.Database.Name)
	v.SetDefault("database.connect_timeout", d.Database.ConnectTimeout)
	v.SetDefault("database.query_timeout", d.Database.QueryTimeout)
	v.SetDefault("auth.jwt_secret", d.Auth.JWTSecret)
	v.SetDefault("auth.token_ttl", d.Auth.TokenTTL)
	v.SetDefault("auth.bcrypt_cost", d.Auth.BcryptCost)
	v.SetDefault("log_level", d.LogLevel)
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http port must be between 1 and 65535")
	}
	if c.HTTP.ReadTimeout <= 0 || c.HTTP.WriteTimeout <= 0 {
		return fmt.Errorf("http timeouts must be positive")
	}
	if c.WebSocket.PingInterval <= 0 || c.WebSocket.ReadTimeout <= 0 {
		return fmt.Errorf("websocket timings must be positive")
	}
	if c.WebSocket.ReadTimeout <= c.WebSocket.PingInterval {
		return fmt.Errorf("websocket read timeout must exceed ping interval")
	}
	if c.WebSocket.SendBuffer <= 0 {
		return fmt.Errorf("websocket send buffer must be positive")
	}
	if c.Database.URI == "" || c.Database.Name == "" {
		return fmt.Errorf("database uri and name are required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth jwt secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth token ttl must be positive")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// MongoConfig converts the database section to the store's config type.
func (c *Config) MongoConfig() *pkgdatabase.Config {
	return &pkgdatabase.Config{
		URI:            c.Database.URI,
		Database:       c.Database.Name,
		ConnectTimeout: c.Database.ConnectTimeout,
		QueryTimeout:   c.Database.QueryTimeout,
	}
}
