package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Freeeeeet/clinic_bot/internal/config"
	"github.com/Freeeeeet/clinic_bot/internal/model"
)

func TestNewStorage_MemoryRunsWeeklyBatch(t *testing.T) {
	ctx := t.Context()
	logger := zaptest.NewLogger(t)
	cfg := &config.Config{
		Storage:               config.StorageMemory,
		Location:              time.UTC,
		WeekStart:             time.Monday,
		BatchWorkers:          2,
		BatchMaxRetries:       1,
		StaffBackfillWindow:   time.Hour,
		StaffBackfillCanceled: true,
	}

	storage, err := NewStorage(ctx, cfg, logger)
	require.NoError(t, err)
	defer storage.Close()

	services := NewServices(storage.Stores, cfg, logger)
	user, err := services.Users.RegisterUser(ctx, 42, "teacher", "Ирина", "", "ru")
	require.NoError(t, err)
	assert.Equal(t, model.RoleStudent, user.Role)

	report, err := services.Batch.RunWeekly(ctx, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, report.SessionsCreated)
	assert.Equal(t, "2024-03-04", report.WeekStart.Format(time.DateOnly))
}
