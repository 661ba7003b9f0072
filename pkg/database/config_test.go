package database

import "testing"

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty uri", func(c *Config) { c.URI = "" }},
		{"empty database", func(c *Config) { c.Database = "" }},
		{"zero connect timeout", func(c *Config) { c.ConnectTimeout = 0 }},
		{"negative query timeout", func(c *Config) { c.QueryTimeout = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("Validate accepted a broken config")
			}
		})
	}
}
