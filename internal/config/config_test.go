package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "PARK_STORAGE", "LOG_LEVEL", "PARK_PROGRAM_ID", "PARK_SETUP_AUTHORITY",
		"PARK_SWEEP_INTERVAL", "TOKEN_EXPIRE_TIME", "REDIS_ADDR", "PARK_DEV_LEDGER", "HISTORIAN_BATCH_SIZE"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Address())
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.Equal(t, defaultProgramID, cfg.ProgramID.String())
	assert.Nil(t, cfg.SetupAuthority)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.Zero(t, cfg.TokenExpiry)
	assert.Equal(t, 20, cfg.Historian.BatchSize)
	assert.False(t, cfg.DevLedger)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("PARK_STORAGE", "postgres")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PARK_SETUP_AUTHORITY", defaultProgramID)
	t.Setenv("PARK_SWEEP_INTERVAL", "30s")
	t.Setenv("TOKEN_EXPIRE_TIME", "72h")
	t.Setenv("POSTGRES_USER", "u")
	t.Setenv("POSTGRES_PASSWORD", "p")
	t.Setenv("PG_HOST", "db")
	t.Setenv("PG_PORT", "5433")
	t.Setenv("PG_DATABASE", "park_test")
	t.Setenv("PARK_DEV_LEDGER", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Address())
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	require.NotNil(t, cfg.SetupAuthority)
	assert.Equal(t, defaultProgramID, cfg.SetupAuthority.String())
	assert.Equal(t, 30*time.Second, cfg.SweepInterval)
	assert.Equal(t, 72*time.Hour, cfg.TokenExpiry)
	assert.Equal(t, "postgres://u:p@db:5433/park_test", cfg.Postgres.ConnString())
	assert.True(t, cfg.DevLedger)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("PARK_STORAGE", "sqlite")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("PARK_STORAGE", "")
	t.Setenv("PARK_PROGRAM_ID", "0OIl")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("PARK_PROGRAM_ID", "")
	t.Setenv("TOKEN_EXPIRE_TIME", "soon")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadPostgresRequiresSetupAuthority(t *testing.T) {
	t.Setenv("PARK_STORAGE", "postgres")
	t.Setenv("PARK_SETUP_AUTHORITY", "")

	_, err := Load()
	assert.ErrorContains(t, err, "PARK_SETUP_AUTHORITY")
}
