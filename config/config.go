// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the dashboard server configuration.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/crypto/bcrypt"
)

// Config holds configuration for the dashboard server.
type Config struct {
	// Listen is the address the HTTP server binds.
	// Example: ":8080", "127.0.0.1:9000"
	Listen string `toml:"listen"`

	// DatabasePath is the BadgerDB directory. Ignored when InMemory is set.
	DatabasePath string `toml:"database_path"`

	// InMemory keeps all data in memory; nothing survives a restart.
	InMemory bool `toml:"in_memory"`

	// CatalogPath is an optional YAML file replacing the built-in search catalog.
	CatalogPath string `toml:"catalog_path"`

	// AllowedOrigins lists the origins allowed by CORS.
	AllowedOrigins []string `toml:"allowed_origins"`

	// SessionTTL is how long a plain login lasts.
	// Default: 24h
	SessionTTL time.Duration `toml:"session_ttl"`

	// RememberTTL is how long a "remember me" login lasts.
	// Default: 720h
	RememberTTL time.Duration `toml:"remember_ttl"`

	// HashCost is the bcrypt cost for stored passwords.
	HashCost int `toml:"hash_cost"`

	// PoolSize bounds password hashing workers. Zero picks a default.
	PoolSize int `toml:"pool_size"`

	// SeedAdmin creates the default admin account when no users exist.
	SeedAdmin bool `toml:"seed_admin"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithListen sets the listen address.
func WithListen(addr string) ConfigOption {
	return func(c *Config) {
		c.Listen = addr
	}
}

// WithDatabasePath sets the database directory.
func WithDatabasePath(path string) ConfigOption {
	return func(c *Config) {
		c.DatabasePath = path
	}
}

// WithInMemory toggles the in-memory database.
func WithInMemory(inMemory bool) ConfigOption {
	return func(c *Config) {
		c.InMemory = inMemory
	}
}

// WithCatalogPath sets the catalog override file.
func WithCatalogPath(path string) ConfigOption {
	return func(c *Config) {
		c.CatalogPath = path
	}
}

// WithAllowedOrigins replaces the CORS origins.
func WithAllowedOrigins(origins ...string) ConfigOption {
	return func(c *Config) {
		c.AllowedOrigins = origins
	}
}

// WithSessionTTL sets the plain login lifetime.
func WithSessionTTL(ttl time.Duration) ConfigOption {
	return func(c *Config) {
		c.SessionTTL = ttl
	}
}

// WithRememberTTL sets the "remember me" login lifetime.
func WithRememberTTL(ttl time.Duration) ConfigOption {
	return func(c *Config) {
		c.RememberTTL = ttl
	}
}

// WithHashCost sets the bcrypt cost.
func WithHashCost(cost int) ConfigOption {
	return func(c *Config) {
		c.HashCost = cost
	}
}

// WithSeedAdmin toggles seeding of the default admin.
func WithSeedAdmin(seed bool) ConfigOption {
	return func(c *Config) {
		c.SeedAdmin = seed
	}
}

// WithPoolSize sets the number of password hashing workers.
func WithPoolSize(size int) ConfigOption {
	return func(c *Config) {
		c.PoolSize = size
	}
}

// WithShutdownTimeout sets how long shutdown waits for open requests.
func WithShutdownTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.ShutdownTimeout = timeout
	}
}

// DefaultConfig returns a Config suitable for local development against the
// UI's dev server.
func DefaultConfig() *Config {
	return &Config{
		Listen:          ":8080",
		DatabasePath:    "./dashboard_db",
		AllowedOrigins:  []string{"http://localhost:3000"},
		SessionTTL:      24 * time.Hour,
		RememberTTL:     30 * 24 * time.Hour,
		HashCost:        bcrypt.DefaultCost,
		SeedAdmin:       true,
		ShutdownTimeout: 10 * time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithListen(":9000"),
//	    WithAllowedOrigins("https://admin.example.com"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Load reads a TOML file over the defaults. Keys the file sets replace the
// defaults; unknown keys are an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return nil, fmt.Errorf("config: load %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Normalize ensures the configuration is in a canonical form.
// A bare port becomes ":port" and origins lose surrounding blanks and
// trailing slashes; empty origins are dropped.
func (c *Config) Normalize() {
	c.Listen = strings.TrimSpace(c.Listen)
	if c.Listen != "" && !strings.Contains(c.Listen, ":") {
		c.Listen = ":" + c.Listen
	}

	origins := make([]string, 0, len(c.AllowedOrigins))
	for _, origin := range c.AllowedOrigins {
		origin = strings.TrimSuffix(strings.TrimSpace(origin), "/")
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	c.AllowedOrigins = origins
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	// Normalize first so bare ports pass
	c.Normalize()

	if c.Listen == "" {
		return errors.New("config: Listen is required")
	}
	if !c.InMemory && c.DatabasePath == "" {
		return errors.New("config: DatabasePath is required unless InMemory is set")
	}
	if c.SessionTTL <= 0 {
		return errors.New("config: SessionTTL must be positive")
	}
	if c.RememberTTL <= 0 {
		return errors.New("config: RememberTTL must be positive")
	}
	if c.HashCost < bcrypt.MinCost || c.HashCost > bcrypt.MaxCost {
		return fmt.Errorf("config: HashCost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.PoolSize < 0 {
		return errors.New("config: PoolSize cannot be negative")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("config: ShutdownTimeout must be positive")
	}
	return nil
}
