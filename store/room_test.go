package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musubi-chat/musubi/store"
)

func TestEnsureDefaultRooms(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh install seeds three rooms in canonical order", func(t *testing.T) {
		st, _ := newTestStore(t)

		rooms, err := st.EnsureDefaultRooms(ctx)
		require.NoError(t, err)
		require.Len(t, rooms, 3)
		assert.Equal(t, "リビング", rooms[0].Name)
		assert.Equal(t, "灯の書斎", rooms[1].Name)
		assert.Equal(t, "雨音の間", rooms[2].Name)
		for _, r := range rooms {
			assert.NotEmpty(t, r.ID)
			assert.NotEmpty(t, r.RoomInstruction)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		st, _ := newTestStore(t)

		first, err := st.EnsureDefaultRooms(ctx)
		require.NoError(t, err)
		second, err := st.EnsureDefaultRooms(ctx)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("custom rooms sort after the defaults", func(t *testing.T) {
		st, _ := newTestStore(t)

		_, err := st.EnsureDefaultRooms(ctx)
		require.NoError(t, err)
		custom, err := st.CreateRoom(ctx, "秘密基地", "")
		require.NoError(t, err)

		rooms, err := st.EnsureDefaultRooms(ctx)
		require.NoError(t, err)
		require.Len(t, rooms, 4)
		assert.Equal(t, "リビング", rooms[0].Name)
		assert.Equal(t, custom.ID, rooms[3].ID)
	})
}

func TestCreateRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("prepends", func(t *testing.T) {
		st, _ := newTestStore(t)
		_, err := st.CreateRoom(ctx, "one", "")
		require.NoError(t, err)
		second, err := st.CreateRoom(ctx, "two", "")
		require.NoError(t, err)

		rooms, err := st.Rooms(ctx)
		require.NoError(t, err)
		require.Len(t, rooms, 2)
		assert.Equal(t, second.ID, rooms[0].ID)
	})

	t.Run("default name picks up its canonical instruction", func(t *testing.T) {
		st, _ := newTestStore(t)
		room, err := st.CreateRoom(ctx, "雨音の間", "")
		require.NoError(t, err)
		assert.Equal(t, store.DefaultRooms[2].RoomInstruction, room.RoomInstruction)
	})

	t.Run("explicit instruction wins over the canonical one", func(t *testing.T) {
		st, _ := newTestStore(t)
		room, err := st.CreateRoom(ctx, "リビング", "custom instruction")
		require.NoError(t, err)
		assert.Equal(t, "custom instruction", room.RoomInstruction)
	})
}

func TestUpdateRoom(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	room, err := st.CreateRoom(ctx, "before", "old")
	require.NoError(t, err)

	t.Run("renames and replaces the instruction", func(t *testing.T) {
		updated, err := st.UpdateRoom(ctx, room.ID, "after", "new")
		require.NoError(t, err)
		assert.Equal(t, "after", updated.Name)
		assert.Equal(t, "new", updated.RoomInstruction)
	})

	t.Run("empty name keeps the current one", func(t *testing.T) {
		updated, err := st.UpdateRoom(ctx, room.ID, "", "newer")
		require.NoError(t, err)
		assert.Equal(t, "after", updated.Name)
		assert.Equal(t, "newer", updated.RoomInstruction)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := st.UpdateRoom(ctx, "room_missing", "x", "y")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestDeleteRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the room", func(t *testing.T) {
		st, _ := newTestStore(t)
		rooms, err := st.EnsureDefaultRooms(ctx)
		require.NoError(t, err)

		require.NoError(t, st.DeleteRoom(ctx, rooms[1].ID))
		remaining, err := st.Rooms(ctx)
		require.NoError(t, err)
		require.Len(t, remaining, 2)
	})

	t.Run("last room is protected", func(t *testing.T) {
		st, _ := newTestStore(t)
		room, err := st.CreateRoom(ctx, "only", "")
		require.NoError(t, err)
		assert.ErrorIs(t, st.DeleteRoom(ctx, room.ID), store.ErrLastRoom)
	})
}

func TestResolveRoom(t *testing.T) {
	rooms := []store.Room{
		{ID: "room_a", Name: "a"},
		{ID: "room_b", Name: "b"},
	}

	t.Run("finds by id", func(t *testing.T) {
		room, ok := store.ResolveRoom(rooms, "room_b")
		require.True(t, ok)
		assert.Equal(t, "b", room.Name)
	})

	t.Run("dangling reference falls back to the first room", func(t *testing.T) {
		room, ok := store.ResolveRoom(rooms, "room_deleted")
		require.True(t, ok)
		assert.Equal(t, "a", room.Name)
	})

	t.Run("no rooms at all", func(t *testing.T) {
		_, ok := store.ResolveRoom(nil, "room_a")
		assert.False(t, ok)
	})
}
