package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musubi-chat/musubi/store"
)

func TestMessageConstructors(t *testing.T) {
	t.Run("user message stays flat", func(t *testing.T) {
		msg := store.NewUserMessage("hello", nil)
		assert.Equal(t, store.RoleUser, msg.Role)
		assert.Equal(t, "hello", msg.Content)
		assert.Empty(t, msg.Variants)
		assert.Equal(t, "hello", msg.ActiveContent())
	})

	t.Run("assistant message starts with one variant", func(t *testing.T) {
		msg := store.NewAssistantMessage("reply")
		assert.Equal(t, store.RoleAssistant, msg.Role)
		require.Len(t, msg.Variants, 1)
		assert.Equal(t, 0, msg.ActiveVariant)
		assert.Empty(t, msg.Content)
		assert.Equal(t, "reply", msg.ActiveContent())
	})

	t.Run("active variant selection", func(t *testing.T) {
		msg := store.NewAssistantMessage("v0")
		msg.Variants = append(msg.Variants, store.Variant{Content: "v1", Timestamp: store.Timestamp()})

		msg.ActiveVariant = 1
		assert.Equal(t, "v1", msg.ActiveContent())

		// An out-of-range index never panics.
		msg.ActiveVariant = 7
		assert.Empty(t, msg.ActiveContent())
	})
}

func TestMessageLogRoundTrip(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	chat, err := st.CreateChat(ctx, "room_a")
	require.NoError(t, err)

	messages := []store.Message{
		store.NewUserMessage("question", nil),
		store.NewAssistantMessage("answer"),
	}
	require.NoError(t, st.SaveMessageLog(ctx, chat.ID, "room_a", messages))

	loaded, err := st.MessageLog(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "question", loaded[0].Content)
	assert.Equal(t, "answer", loaded[1].ActiveContent())

	// Saving a log touches the owning chat.
	touched, found, err := st.FindChat(ctx, chat.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.NotEmpty(t, touched.UpdatedAt)
}

func TestMessageLogMigratesOnLoad(t *testing.T) {
	ctx := context.Background()
	st, driver := newTestStore(t)

	chat, err := st.CreateChat(ctx, "room_a")
	require.NoError(t, err)

	// Old-format log written directly: flat assistant content, no ids.
	raw := `[{"role":"user","content":"q"},{"role":"assistant","content":"a"}]`
	require.NoError(t, driver.Set(ctx, store.ChatLogKey(chat.ID), raw))

	loaded, err := st.MessageLog(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.NotEmpty(t, loaded[0].ID)
	require.Len(t, loaded[1].Variants, 1)
	assert.Equal(t, "a", loaded[1].ActiveContent())
}
