package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "./dashboard_db", cfg.DatabasePath)
	assert.False(t, cfg.InMemory)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.SeedAdmin)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithListen(":9000"),
			WithInMemory(true),
			WithCatalogPath("catalog.yaml"),
			WithAllowedOrigins("https://a.example.com", "https://b.example.com"),
			WithSessionTTL(time.Hour),
			WithRememberTTL(48*time.Hour),
			WithHashCost(4),
			WithSeedAdmin(false),
		)

		assert.Equal(t, ":9000", cfg.Listen)
		assert.True(t, cfg.InMemory)
		assert.Equal(t, "catalog.yaml", cfg.CatalogPath)
		assert.Len(t, cfg.AllowedOrigins, 2)
		assert.Equal(t, time.Hour, cfg.SessionTTL)
		assert.Equal(t, 48*time.Hour, cfg.RememberTTL)
		assert.Equal(t, 4, cfg.HashCost)
		assert.False(t, cfg.SeedAdmin)
	})
}

func TestNormalize(t *testing.T) {
	cfg := NewConfig(
		WithListen(" 9000 "),
		WithAllowedOrigins(" https://a.example.com/ ", "", "http://localhost:3000"),
	)
	cfg.Normalize()

	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, []string{"https://a.example.com", "http://localhost:3000"}, cfg.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    []ConfigOption
		wantErr string
	}{
		{"defaults", nil, ""},
		{"missing listen", []ConfigOption{WithListen("")}, "Listen is required"},
		{"missing database", []ConfigOption{WithDatabasePath("")}, "DatabasePath is required"},
		{"in memory needs no database", []ConfigOption{WithDatabasePath(""), WithInMemory(true)}, ""},
		{"zero session ttl", []ConfigOption{WithSessionTTL(0)}, "SessionTTL must be positive"},
		{"negative remember ttl", []ConfigOption{WithRememberTTL(-time.Second)}, "RememberTTL must be positive"},
		{"hash cost too low", []ConfigOption{WithHashCost(1)}, "HashCost must be between"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfig(tt.opts...).Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen = ":9100"
in_memory = true
allowed_origins = ["https://admin.example.com"]
session_ttl = "2h"
seed_admin = false
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.Listen)
	assert.True(t, cfg.InMemory)
	assert.Equal(t, []string{"https://admin.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.SeedAdmin)

	// Unset keys keep their defaults
	assert.Equal(t, "./dashboard_db", cfg.DatabasePath)
	assert.Equal(t, 30*24*time.Hour, cfg.RememberTTL)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "missing.toml"))
		assert.Error(t, err)
	})

	t.Run("unknown key", func(t *testing.T) {
		path := filepath.Join(dir, "unknown.toml")
		require.NoError(t, os.WriteFile(path, []byte("listen = \":1\"\nlisten_port = 2\n"), 0o644))
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "listen_port")
	})

	t.Run("bad syntax", func(t *testing.T) {
		path := filepath.Join(dir, "bad.toml")
		require.NoError(t, os.WriteFile(path, []byte("listen = \n"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}
