package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:53", cfg.Server.ListenAddr)
	assert.False(t, cfg.Server.RecursionAvailable)
	assert.True(t, cfg.Cache.RoundRobin)
	assert.Greater(t, cfg.Cache.MaxBytes, int64(0))
	assert.Greater(t, cfg.Cache.MaxRecords, 0)
	assert.Equal(t, "INFO", cfg.Logging.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("GONSD_SERVER_LISTEN_ADDR", "127.0.0.1:5353")
	t.Setenv("GONSD_SERVER_RECURSION_AVAILABLE", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:5353", cfg.Server.ListenAddr)
	assert.True(t, cfg.Server.RecursionAvailable)
}

func TestLoadRejectsEmptyListenAddr(t *testing.T) {
	t.Setenv("GONSD_SERVER_LISTEN_ADDR", "")
	_, err := Load("")
	assert.Error(t, err)
}
