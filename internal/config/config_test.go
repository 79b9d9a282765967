package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE", "memory")

	cfg, err := fromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, "migrations", cfg.MigrationsPath)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, time.Monday, cfg.WeekStart)
	assert.Equal(t, 24*time.Hour, cfg.BatchInterval)
	assert.Equal(t, 4, cfg.BatchWorkers)
	assert.Equal(t, uint64(3), cfg.BatchMaxRetries)
	assert.Equal(t, 168*time.Hour, cfg.StaffBackfillWindow)
	assert.True(t, cfg.StaffBackfillCanceled)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("DB_DSN", "postgres://localhost/clinic")
	t.Setenv("TIMEZONE", "Europe/Moscow")
	t.Setenv("WEEK_START", "sunday")
	t.Setenv("BATCH_INTERVAL", "6h")
	t.Setenv("BATCH_WORKERS", "8")
	t.Setenv("ENROLLMENT_STAFF_BACKFILL_CANCELED", "false")

	cfg, err := fromViper(newViper())
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, "Europe/Moscow", cfg.Location.String())
	assert.Equal(t, time.Sunday, cfg.WeekPolicy().Start)
	assert.Equal(t, 6*time.Hour, cfg.BatchInterval)
	assert.Equal(t, 8, cfg.BatchWorkers)
	assert.False(t, cfg.StaffBackfillCanceled)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "postgres without dsn", env: map[string]string{"STORAGE": "postgres"}},
		{name: "unknown storage", env: map[string]string{"STORAGE": "redis"}},
		{name: "bad week start", env: map[string]string{"STORAGE": "memory", "WEEK_START": "someday"}},
		{name: "bad timezone", env: map[string]string{"STORAGE": "memory", "TIMEZONE": "Mars/Olympus"}},
		{name: "zero workers", env: map[string]string{"STORAGE": "memory", "BATCH_WORKERS": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := fromViper(newViper())
			assert.Error(t, err)
		})
	}
}
