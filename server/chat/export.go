package chat

import (
	"context"
	"strings"

	"github.com/musubi-chat/musubi/store"
)

const (
	exportTitle   = "# 結びの部屋"
	speakerUser   = "**あなた**"
	speakerModel  = "**律**"
	speakerSystem = "**システム**"
)

// ExportMarkdown renders a chat's persisted log as a markdown transcript
// without changing which chat is open. An empty chatID exports the open
// chat. Assistant messages contribute their active variant only.
func (s *Session) ExportMarkdown(ctx context.Context, chatID string) (string, error) {
	if chatID == "" {
		chatID = s.ChatID()
	}
	if chatID == "" {
		return "", ErrNoChat
	}

	_, found, err := s.store.FindChat(ctx, chatID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", store.ErrNotFound
	}
	messages, err := s.store.MessageLog(ctx, chatID)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(exportTitle)
	sb.WriteString("\n\n")
	sb.WriteString("エクスポート日時: ")
	sb.WriteString(store.FormatTimestamp(store.Timestamp()))
	sb.WriteString("\n\n---\n\n")

	for _, msg := range messages {
		speaker := ""
		switch msg.Role {
		case store.RoleUser:
			speaker = speakerUser
		case store.RoleAssistant:
			speaker = speakerModel
		case store.RoleSystem:
			speaker = speakerSystem
		default:
			continue
		}

		sb.WriteString("### ")
		sb.WriteString(speaker)
		sb.WriteString("\n")
		sb.WriteString("*")
		sb.WriteString(store.FormatTimestamp(msg.ActiveTimestamp()))
		sb.WriteString("*\n\n")

		for _, att := range msg.Attachments {
			sb.WriteString("[添付ファイル: ")
			sb.WriteString(att.Name)
			sb.WriteString("]\n")
		}
		sb.WriteString(msg.ActiveContent())
		sb.WriteString("\n\n---\n\n")
	}

	return sb.String(), nil
}
