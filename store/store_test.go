package store_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musubi-chat/musubi/store"
	"github.com/musubi-chat/musubi/store/db/memory"
)

func newTestStore(t *testing.T) (*store.Store, store.Driver) {
	t.Helper()
	driver := memory.NewDB()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return store.New(driver, logger), driver
}

func TestCorruptCollectionDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	st, driver := newTestStore(t)

	require.NoError(t, driver.Set(ctx, store.KeyChats, "{not json"))
	chats, err := st.Chats(ctx)
	require.NoError(t, err)
	assert.Empty(t, chats)

	require.NoError(t, driver.Set(ctx, store.KeyRooms, "42"))
	rooms, err := st.Rooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestGenerateID(t *testing.T) {
	a := store.GenerateID("msg")
	b := store.GenerateID("msg")
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^msg_\d+_`, a)
}

func TestFormatTimestamp(t *testing.T) {
	ts := "2026-03-01T09:05:42Z"
	parsed, err := time.Parse(time.RFC3339, ts)
	require.NoError(t, err)
	assert.Equal(t, parsed.Local().Format("2006/01/02 15:04"), store.FormatTimestamp(ts))

	// Unparseable input passes through untouched.
	assert.Equal(t, "garbage", store.FormatTimestamp("garbage"))
}
