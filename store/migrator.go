package store

import (
	"context"
	"log/slog"
)

// Migration overview:
//
// The message log's storage format evolved: early installations stored
// assistant turns with a flat content field and no id or timestamp, and
// pre-multi-chat installations kept a single log under a legacy key.
// MigrateMessages upgrades individual messages; MigrateLegacyHistory adopts
// the legacy single-log data into a regular chat. Both run on load so old
// data stays readable indefinitely.

// MigrateMessages normalizes heterogeneous historical message shapes into
// the current canonical shape. Pure and idempotent: a message that already
// carries an id and a timestamp passes through unchanged.
func MigrateMessages(messages []Message) []Message {
	out := make([]Message, len(messages))
	for i, msg := range messages {
		if msg.ID != "" && msg.Timestamp != "" {
			out[i] = msg
			continue
		}

		if msg.ID == "" {
			msg.ID = GenerateID("msg")
		}
		if msg.Timestamp == "" {
			msg.Timestamp = Timestamp()
		}

		if msg.Role == RoleAssistant {
			// Wrap flat content into the variant shape; keep existing
			// variants when already present.
			if len(msg.Variants) == 0 {
				msg.Variants = []Variant{{Content: msg.Content, Timestamp: msg.Timestamp}}
				msg.ActiveVariant = 0
			}
			msg.Content = ""
		}
		out[i] = msg
	}
	return out
}

// MigrateLegacyHistory adopts a pre-multi-chat single log into a fresh chat.
// It only fires when the legacy key exists and no chats do; the legacy keys
// are removed afterwards.
func (s *Store) MigrateLegacyHistory(ctx context.Context) error {
	chats, err := s.Chats(ctx)
	if err != nil {
		return err
	}
	if len(chats) > 0 {
		return nil
	}

	raw, ok, err := s.getRaw(ctx, legacyHistoryKey)
	if err != nil || !ok {
		return err
	}

	chat, err := s.CreateChat(ctx, "")
	if err != nil {
		return err
	}
	if err := s.setRaw(ctx, ChatLogKey(chat.ID), raw); err != nil {
		return err
	}
	if err := s.removeRaw(ctx, legacyHistoryKey); err != nil {
		return err
	}
	if err := s.removeRaw(ctx, legacyThreadsKey); err != nil {
		return err
	}

	s.logger.Info("migrated legacy chat history", slog.String("chat_id", chat.ID))
	return nil
}
