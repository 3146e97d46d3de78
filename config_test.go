/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Seednode/impostor/games/impostor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		bind:           "127.0.0.1",
		catalogTimeout: 10 * time.Second,
		players:        impostor.DefaultPlayers,
		port:           8080,
		sessionTimeout: time.Hour,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"tls pair", func(c *Config) { c.tlsCert, c.tlsKey = "cert.pem", "key.pem" }, ""},
		{"lone cert", func(c *Config) { c.tlsCert = "cert.pem" }, "--tls-cert and --tls-key"},
		{"lone key", func(c *Config) { c.tlsKey = "key.pem" }, "--tls-cert and --tls-key"},
		{"port zero", func(c *Config) { c.port = 0 }, "invalid port"},
		{"port too high", func(c *Config) { c.port = 65536 }, "invalid port"},
		{"too few players", func(c *Config) { c.players = 2 }, "invalid player count"},
		{"too many players", func(c *Config) { c.players = 13 }, "invalid player count"},
		{"no catalog timeout", func(c *Config) { c.catalogTimeout = 0 }, "invalid catalog timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConfigScheme(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "http", cfg.scheme())

	cfg.tlsCert, cfg.tlsKey = "cert.pem", "key.pem"
	assert.Equal(t, "https", cfg.scheme())
}

func TestNewCmdDefaults(t *testing.T) {
	cfg := &Config{}
	cmd := newCmd(cfg)
	require.NoError(t, cmd.ParseFlags(nil))

	assert.Equal(t, "0.0.0.0", cfg.bind)
	assert.Equal(t, 8080, cfg.port)
	assert.Equal(t, impostor.DefaultPlayers, cfg.players)
	assert.Equal(t, 10*time.Second, cfg.catalogTimeout)
	assert.Equal(t, time.Hour, cfg.sessionTimeout)
	assert.Empty(t, cfg.catalog)
	assert.NoError(t, cfg.validate())
}

func TestNewCmdReadsEnvironment(t *testing.T) {
	t.Setenv("IMPOSTOR_PLAYERS", "7")
	t.Setenv("IMPOSTOR_CATALOG", "https://example.com/items.json")
	t.Setenv("IMPOSTOR_CATALOG_TIMEOUT", "30s")
	t.Setenv("IMPOSTOR_VERBOSE", "true")

	cfg := &Config{}
	newCmd(cfg)

	assert.Equal(t, 7, cfg.players)
	assert.Equal(t, "https://example.com/items.json", cfg.catalog)
	assert.Equal(t, 30*time.Second, cfg.catalogTimeout)
	assert.True(t, cfg.verbose)
}

func TestNewCmdFlagsOverrideDefaults(t *testing.T) {
	cfg := &Config{}
	cmd := newCmd(cfg)
	require.NoError(t, cmd.ParseFlags([]string{"--players", "12", "-p", "9000", "--session_timeout", "5m"}))

	assert.Equal(t, 12, cfg.players)
	assert.Equal(t, 9000, cfg.port)
	assert.Equal(t, 5*time.Minute, cfg.sessionTimeout)
}

func TestLoadDotEnv(t *testing.T) {
	const key = "IMPOSTOR_DOTENV_TEST"

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	loadDotEnv(path)
	assert.Equal(t, "from-file", os.Getenv(key))

	// A missing file is silently ignored.
	loadDotEnv(filepath.Join(t.TempDir(), "missing.env"))
}
