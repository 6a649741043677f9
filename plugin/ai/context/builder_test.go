package context

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musubi-chat/musubi/plugin/ai"
	"github.com/musubi-chat/musubi/store"
)

func TestBuildSystemPrompt(t *testing.T) {
	builder := NewBuilder(DefaultConfig())

	t.Run("all sections in order", func(t *testing.T) {
		result := builder.Build(&Request{
			Persona: "あなたは律です。",
			Room:    &store.Room{Name: "灯の書斎", RoomInstruction: "落ち着いた書斎です。"},
			Knowledge: []store.KnowledgeItem{
				{Name: "notes.md", Content: "メモの内容"},
			},
			Memories: []store.CoreMemory{
				{Content: "紅茶が好き"},
			},
			UserText: "こんにちは",
		})

		prompt := result.SystemPrompt
		personaIdx := strings.Index(prompt, "あなたは律です。")
		roomIdx := strings.Index(prompt, "## 現在の部屋")
		knowledgeIdx := strings.Index(prompt, "## ナレッジベース（長期記憶）")
		memoryIdx := strings.Index(prompt, "## ユーザーコアメモリ")

		require.NotEqual(t, -1, personaIdx)
		require.NotEqual(t, -1, roomIdx)
		require.NotEqual(t, -1, knowledgeIdx)
		require.NotEqual(t, -1, memoryIdx)
		assert.Less(t, personaIdx, roomIdx)
		assert.Less(t, roomIdx, knowledgeIdx)
		assert.Less(t, knowledgeIdx, memoryIdx)

		assert.Contains(t, prompt, "落ち着いた書斎です。")
		assert.Contains(t, prompt, "以下は参照用のナレッジです。必要に応じて活用してください。")
		assert.Contains(t, prompt, "### notes.md\nメモの内容")
		assert.Contains(t, prompt, "ユーザーがあなたに覚えておいて欲しいこと：")
		assert.Contains(t, prompt, "- 紅茶が好き")
	})

	t.Run("empty sections omitted", func(t *testing.T) {
		result := builder.Build(&Request{
			Persona:  "persona",
			Room:     &store.Room{Name: "リビング"},
			UserText: "hi",
		})

		assert.Equal(t, "persona", result.SystemPrompt)
		assert.NotContains(t, result.SystemPrompt, "## 現在の部屋")
		assert.NotContains(t, result.SystemPrompt, "## ナレッジベース（長期記憶）")
		assert.NotContains(t, result.SystemPrompt, "## ユーザーコアメモリ")
	})
}

func TestBuildMessages(t *testing.T) {
	t.Run("history window keeps most recent", func(t *testing.T) {
		builder := NewBuilder(Config{MaxHistoryMessages: 3})

		var history []store.Message
		for i := 0; i < 10; i++ {
			history = append(history, store.Message{
				Role:    store.RoleUser,
				Content: fmt.Sprintf("msg-%d", i),
			})
		}

		result := builder.Build(&Request{Messages: history, UserText: "now"})

		// Three windowed messages plus the current turn.
		require.Len(t, result.Messages, 4)
		assert.Equal(t, "msg-7", result.Messages[0].Parts[0].Text)
		assert.Equal(t, "msg-9", result.Messages[2].Parts[0].Text)
		assert.Equal(t, "now", result.Messages[3].Parts[0].Text)
	})

	t.Run("system notices excluded by default", func(t *testing.T) {
		builder := NewBuilder(DefaultConfig())

		result := builder.Build(&Request{
			Messages: []store.Message{
				{Role: store.RoleUser, Content: "a"},
				{Role: store.RoleSystem, Content: "「灯の書斎」に移動しました"},
				{Role: store.RoleUser, Content: "b"},
			},
			UserText: "c",
		})

		require.Len(t, result.Messages, 3)
		for _, msg := range result.Messages {
			assert.NotContains(t, msg.Parts[0].Text, "移動しました")
		}
	})

	t.Run("system notices forwarded when enabled", func(t *testing.T) {
		builder := NewBuilder(Config{MaxHistoryMessages: 20, IncludeSystemNotices: true})

		result := builder.Build(&Request{
			Messages: []store.Message{
				{Role: store.RoleSystem, Content: "「雨音の間」に移動しました"},
			},
			UserText: "hi",
		})

		require.Len(t, result.Messages, 2)
		assert.Equal(t, ai.RoleUser, result.Messages[0].Role)
		assert.Contains(t, result.Messages[0].Parts[0].Text, "雨音の間")
	})

	t.Run("assistant active variant only", func(t *testing.T) {
		builder := NewBuilder(DefaultConfig())

		msg := store.NewAssistantMessage("first")
		msg.Variants = append(msg.Variants, store.Variant{Content: "second", Timestamp: store.Timestamp()})
		msg.ActiveVariant = 1

		result := builder.Build(&Request{
			Messages: []store.Message{msg},
			UserText: "hi",
		})

		require.Len(t, result.Messages, 2)
		assert.Equal(t, ai.RoleModel, result.Messages[0].Role)
		assert.Equal(t, "second", result.Messages[0].Parts[0].Text)
	})

	t.Run("attachments precede turn text", func(t *testing.T) {
		builder := NewBuilder(DefaultConfig())

		result := builder.Build(&Request{
			Pending: []store.Attachment{
				{Type: store.AttachmentImage, Name: "photo.png", MimeType: "image/png", Data: "aGVsbG8="},
				{Type: store.AttachmentText, Name: "notes.txt", MimeType: "text/plain", Content: "file body"},
			},
			UserText: "look at these",
		})

		require.Len(t, result.Messages, 1)
		parts := result.Messages[0].Parts
		require.Len(t, parts, 3)
		require.NotNil(t, parts[0].InlineData)
		assert.Equal(t, "image/png", parts[0].InlineData.MimeType)
		assert.Equal(t, "[添付ファイル: notes.txt]\nfile body", parts[1].Text)
		assert.Equal(t, "look at these", parts[2].Text)
	})

	t.Run("empty user message skipped in history", func(t *testing.T) {
		builder := NewBuilder(DefaultConfig())

		result := builder.Build(&Request{
			Messages: []store.Message{{Role: store.RoleUser, Content: ""}},
			UserText: "hi",
		})

		require.Len(t, result.Messages, 1)
		assert.Equal(t, "hi", result.Messages[0].Parts[0].Text)
	})
}
