package store

import "context"

// Chat is one persistent conversation session. It remembers which room was
// active; the reference is weak (lookup with first-room fallback, never
// ownership). The title defaults to the creation timestamp and is not renamed
// afterwards.
type Chat struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	CurrentRoomID string `json:"currentRoomId"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

// Chats returns all chats, newest first.
func (s *Store) Chats(ctx context.Context) ([]Chat, error) {
	var chats []Chat
	if err := s.loadCollection(ctx, KeyChats, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// SaveChats rewrites the chat collection in full.
func (s *Store) SaveChats(ctx context.Context, chats []Chat) error {
	return s.saveCollection(ctx, KeyChats, chats)
}

// CreateChat prepends a new chat. roomID may be empty, in which case the
// first room becomes the chat's room.
func (s *Store) CreateChat(ctx context.Context, roomID string) (Chat, error) {
	if roomID == "" {
		rooms, err := s.Rooms(ctx)
		if err != nil {
			return Chat{}, err
		}
		if len(rooms) > 0 {
			roomID = rooms[0].ID
		}
	}

	now := Timestamp()
	chat := Chat{
		ID:            GenerateID("chat"),
		Title:         FormatTimestamp(now),
		CurrentRoomID: roomID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	chats, err := s.Chats(ctx)
	if err != nil {
		return Chat{}, err
	}
	chats = append([]Chat{chat}, chats...)
	if err := s.SaveChats(ctx, chats); err != nil {
		return Chat{}, err
	}
	return chat, nil
}

// TouchChat updates a chat's timestamp and remembered room after its log
// changed.
func (s *Store) TouchChat(ctx context.Context, chatID, roomID string) error {
	chats, err := s.Chats(ctx)
	if err != nil {
		return err
	}
	for i := range chats {
		if chats[i].ID != chatID {
			continue
		}
		chats[i].UpdatedAt = Timestamp()
		if roomID != "" {
			chats[i].CurrentRoomID = roomID
		}
		return s.SaveChats(ctx, chats)
	}
	return nil
}

// DeleteChat removes a chat and its message log together.
func (s *Store) DeleteChat(ctx context.Context, chatID string) error {
	chats, err := s.Chats(ctx)
	if err != nil {
		return err
	}
	kept := chats[:0]
	for _, c := range chats {
		if c.ID != chatID {
			kept = append(kept, c)
		}
	}
	if err := s.SaveChats(ctx, kept); err != nil {
		return err
	}
	return s.removeRaw(ctx, ChatLogKey(chatID))
}

// FindChat looks a chat up by ID.
func (s *Store) FindChat(ctx context.Context, chatID string) (Chat, bool, error) {
	chats, err := s.Chats(ctx)
	if err != nil {
		return Chat{}, false, err
	}
	for _, c := range chats {
		if c.ID == chatID {
			return c, true, nil
		}
	}
	return Chat{}, false, nil
}

// CurrentChatID returns the active-chat pointer, empty when none is set.
func (s *Store) CurrentChatID(ctx context.Context) (string, error) {
	v, _, err := s.getRaw(ctx, KeyCurrentChat)
	return v, err
}

// SetCurrentChatID persists the active-chat pointer. An empty ID clears it.
func (s *Store) SetCurrentChatID(ctx context.Context, chatID string) error {
	if chatID == "" {
		return s.removeRaw(ctx, KeyCurrentChat)
	}
	return s.setRaw(ctx, KeyCurrentChat, chatID)
}
