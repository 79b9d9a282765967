package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Freeeeeet/clinic_bot/internal/model"
	"github.com/Freeeeeet/clinic_bot/internal/repository/memory"
)

func TestRegisterUser(t *testing.T) {
	ctx := t.Context()
	users := NewUserService(memory.NewUserRepository(memory.NewDB()), zaptest.NewLogger(t))

	created, err := users.RegisterUser(ctx, 777, "anna", "Анна", "", "ru")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, model.RoleStudent, created.Role)

	updated, err := users.RegisterUser(ctx, 777, "anna_k", "Анна", "К.", "ru")
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	got, err := users.GetByTelegramID(ctx, 777)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "anna_k", got.Username)

	missing, err := users.GetByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
