package service

import (
	"context"
	"testing"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user, err := f.users.RegisterUser(ctx, 42, "anna", "Anna", "")
	require.NoError(t, err)
	assert.False(t, user.IsAdmin)
	assert.Empty(t, user.GroupID)

	again, err := f.users.RegisterUser(ctx, 42, "anna_k", "Anna", "K")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, "anna_k", again.Username)

	boss, err := f.users.RegisterUser(ctx, 1000, "boss", "Boss", "")
	require.NoError(t, err)
	assert.True(t, boss.IsAdmin)
}

func TestAssignGroup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.users.RegisterUser(ctx, 42, "anna", "Anna", "")
	require.NoError(t, err)

	_, err = f.users.AssignGroup(ctx, group("1@wh.de"), 42, "7@wh.de")
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = f.users.AssignGroup(ctx, admin, 42, "gruppe sieben")
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = f.users.AssignGroup(ctx, admin, 77, "7@wh.de")
	assert.ErrorIs(t, err, model.ErrNotFound)

	user, err := f.users.AssignGroup(ctx, admin, 42, " 7@WH.de ")
	require.NoError(t, err)
	assert.Equal(t, "7@wh.de", user.GroupID)

	stored, err := f.users.GetByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, model.Actor{GroupID: "7@wh.de"}, stored.Actor())
}
