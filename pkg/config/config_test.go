package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPERATOR_ID", "6191416030")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "mongo", cfg.StorageBackend)
	assert.Equal(t, "memory", cfg.SessionBackend)
	assert.Equal(t, int64(6191416030), cfg.OperatorID)
	assert.Equal(t, "50ms", cfg.BroadcastPace.String())
}

func TestLoadRequiresOperator(t *testing.T) {
	t.Setenv("OPERATOR_ID", "0")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsBadDurations(t *testing.T) {
	t.Setenv("OPERATOR_ID", "1")
	t.Setenv("BROADCAST_PACE", "fast")

	_, err := Load()
	require.Error(t, err)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("SOME_KEY", "value")
	assert.Equal(t, "value", GetEnv("SOME_KEY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("SOME_MISSING_KEY", "fallback"))
}
