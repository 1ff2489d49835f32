package service

import (
	"context"
	"testing"

	"github.com/rekk2/event-registration/internal/domain"
	"github.com/rekk2/event-registration/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDoorService(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewDoorService(store, zap.NewNop())
	ctx := context.Background()

	_, err := svc.CreateDoor(ctx, "  ")
	assert.True(t, domain.IsValidation(err))

	side, err := svc.CreateDoor(ctx, " Side ")
	require.NoError(t, err)
	assert.Equal(t, "Side", side.Door)
	_, err = svc.CreateDoor(ctx, "Main")
	require.NoError(t, err)
	_, err = svc.CreateDoor(ctx, " Main ")
	var ce *domain.ConflictError
	assert.ErrorAs(t, err, &ce)

	doors, err := svc.ListDoors(ctx)
	require.NoError(t, err)
	require.Len(t, doors, 2)
	assert.Equal(t, "Main", doors[0].Door)

	ok, err := svc.DoorExists(ctx, "Side")
	require.NoError(t, err)
	assert.True(t, ok)

	renamed, err := svc.RenameDoor(ctx, side.ID, "West")
	require.NoError(t, err)
	assert.Equal(t, "West", renamed.Door)

	_, err = svc.RenameDoor(ctx, side.ID, "")
	assert.True(t, domain.IsValidation(err))
	_, err = svc.RenameDoor(ctx, "missing", "North")
	assert.True(t, domain.IsNotFound(err))

	require.NoError(t, svc.DeleteDoor(ctx, side.ID))
	assert.True(t, domain.IsNotFound(svc.DeleteDoor(ctx, side.ID)))
}

func TestDoorService_RenameKeepsEntries(t *testing.T) {
	store := repository.NewMemoryStore()
	doors := NewDoorService(store, zap.NewNop())
	reg := NewRegistrationService(store, store, nil, RegistrationOptions{RequireKnownDoor: true}, zap.NewNop())
	ctx := context.Background()

	door, err := doors.CreateDoor(ctx, "A")
	require.NoError(t, err)
	_, err = reg.Register(ctx, "A", "Ann Lee")
	require.NoError(t, err)

	_, err = doors.RenameDoor(ctx, door.ID, "Z")
	require.NoError(t, err)

	agg, err := reg.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 1}, agg.DoorCounts)
}
