package store_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musubi-chat/musubi/store"
)

func TestAddKnowledge(t *testing.T) {
	ctx := context.Background()

	t.Run("accepts markdown and plain text only", func(t *testing.T) {
		st, _ := newTestStore(t)

		_, err := st.AddKnowledge(ctx, "guide.md", "text/markdown", "content")
		require.NoError(t, err)
		_, err = st.AddKnowledge(ctx, "notes.txt", "", "content")
		require.NoError(t, err)

		// CSV is fine as a message attachment but not as knowledge.
		_, err = st.AddKnowledge(ctx, "data.csv", "text/csv", "a,b")
		var unsupported *store.UnsupportedAttachmentError
		assert.ErrorAs(t, err, &unsupported)
	})

	t.Run("appends in upload order", func(t *testing.T) {
		st, _ := newTestStore(t)
		first, err := st.AddKnowledge(ctx, "a.md", "text/markdown", "a")
		require.NoError(t, err)
		second, err := st.AddKnowledge(ctx, "b.md", "text/markdown", "b")
		require.NoError(t, err)

		items, err := st.Knowledge(ctx)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, first.ID, items[0].ID)
		assert.Equal(t, second.ID, items[1].ID)
	})

	t.Run("truncates long content", func(t *testing.T) {
		st, _ := newTestStore(t)
		item, err := st.AddKnowledge(ctx, "big.md", "text/markdown", strings.Repeat("x", store.MaxTextChars+5))
		require.NoError(t, err)
		assert.Len(t, item.Content, store.MaxTextChars)
	})
}

func TestRemoveKnowledge(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	item, err := st.AddKnowledge(ctx, "a.md", "text/markdown", "a")
	require.NoError(t, err)
	require.NoError(t, st.RemoveKnowledge(ctx, item.ID))

	items, err := st.Knowledge(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	// Removing an unknown id is a no-op.
	assert.NoError(t, st.RemoveKnowledge(ctx, "knw_missing"))
}
