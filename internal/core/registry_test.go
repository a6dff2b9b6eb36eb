package core

import (
	"errors"
	"github.com/google/uuid"
	"github.com/gotoplanb/kzrk/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestRegistryCreateAndGet(t *testing.T) {
	reg := NewRegistry()
	room, _ := newTestRoom(t, 4, newFakeClock())

	snap, err := reg.Create(room)
	require.NoError(t, err)
	assert.Equal(t, room.ID, snap.ID)
	assert.Equal(t, "Test room", snap.Name)
	assert.NotEmpty(t, snap.Data)

	summary, err := reg.Get(room.ID)
	require.NoError(t, err)
	assert.Equal(t, "Host", summary.HostPlayerName)
	assert.Equal(t, 1, summary.CurrentPlayers)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryNotFound(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Get(uuid.New())
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = reg.Apply(uuid.New(), func(*Room) error { return nil })
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = reg.RemoveIfEmpty(uuid.New())
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRegistryApplyErrorSkipsSnapshot(t *testing.T) {
	reg := NewRegistry()
	room, _ := newTestRoom(t, 4, newFakeClock())
	_, err := reg.Create(room)
	require.NoError(t, err)

	boom := errors.New("boom")
	snap, err := reg.Apply(room.ID, func(*Room) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, uuid.Nil, snap.ID)
	assert.Zero(t, room.Revision)

	snap, err = reg.Apply(room.ID, func(*Room) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.Revision)
	assert.True(t, reg.Has(room.ID))
	assert.False(t, reg.Has(uuid.New()))
}

func TestRegistryPoisonedAfterPanic(t *testing.T) {
	reg := NewRegistry()
	room, _ := newTestRoom(t, 4, newFakeClock())
	_, err := reg.Create(room)
	require.NoError(t, err)

	_, err = reg.Apply(room.ID, func(*Room) error { panic("invariant broken") })
	assert.ErrorIs(t, err, ErrLockPoisoned)

	_, err = reg.Get(room.ID)
	assert.ErrorIs(t, err, ErrLockPoisoned)
	_, err = reg.List()
	assert.ErrorIs(t, err, ErrLockPoisoned)
	_, err = reg.Create(room)
	assert.ErrorIs(t, err, ErrLockPoisoned)
}

func TestRegistryListIsOrdered(t *testing.T) {
	reg := NewRegistry()
	clock := newFakeClock()

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		room := NewRoom("Room", uuid.New(), "Host", 4, game.DefaultCatalog(), Options{Clock: clock.Now})
		_, err := reg.Create(room)
		require.NoError(t, err)
		ids = append(ids, room.ID)
		clock.Advance(time.Second)
	}

	list, err := reg.List()
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, summary := range list {
		assert.Equal(t, ids[i], summary.ID)
	}
}

func TestRegistryRemoveIfEmpty(t *testing.T) {
	reg := NewRegistry()
	room, host := newTestRoom(t, 4, newFakeClock())
	_, err := reg.Create(room)
	require.NoError(t, err)

	removed, err := reg.RemoveIfEmpty(room.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = reg.Apply(room.ID, func(r *Room) error { return r.MarkPlayerOffline(host) })
	require.NoError(t, err)

	removed, err = reg.RemoveIfEmpty(room.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Zero(t, reg.Len())
}

func TestRegistryIdle(t *testing.T) {
	reg := NewRegistry()
	clock := newFakeClock()
	room, host := newTestRoom(t, 4, clock)
	_, err := reg.Create(room)
	require.NoError(t, err)

	ids, err := reg.Idle(clock.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, ids, "rooms with online players are never idle")

	_, err = reg.Apply(room.ID, func(r *Room) error { return r.MarkPlayerOffline(host) })
	require.NoError(t, err)

	ids, err = reg.Idle(clock.Now())
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = reg.Idle(clock.Now().Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{room.ID}, ids)
}
