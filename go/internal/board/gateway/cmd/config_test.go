package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Marketplace.APIURL)
	assert.Equal(t, "auction.events.>", cfg.Gateway.JetStreamConfig.SubjectFilter)
	assert.Equal(t, 30*time.Second, cfg.Gateway.ConnectionConfig.PingInterval)
	assert.NotNil(t, cfg.Gateway.ConnectionConfig.CheckOrigin)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9000"
marketplace:
  api_url: http://market.internal
  timeout: 5s
gateway:
  websocket:
    ping_interval: 15s
  jetstream:
    stream_name: MARKET
`), 0o600))

	t.Setenv("MARKETPLACE_API_TOKEN", "secret")
	t.Setenv("NATS_MAX_DELIVER", "9")

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "http://market.internal", cfg.Marketplace.APIURL)
	assert.Equal(t, "secret", cfg.Marketplace.Token)
	assert.Equal(t, 5*time.Second, cfg.Marketplace.Timeout)
	assert.Equal(t, 15*time.Second, cfg.Gateway.ConnectionConfig.PingInterval)
	assert.Equal(t, 10*time.Second, cfg.Gateway.ConnectionConfig.WriteTimeout, "unset keys keep defaults")
	assert.Equal(t, "MARKET", cfg.Gateway.JetStreamConfig.StreamName)
	assert.Equal(t, 9, cfg.Gateway.JetStreamConfig.MaxDeliver)
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := loadConfig(path)
	assert.Error(t, err)
}
