package store

import "context"

// MessageRole discriminates the message union. The role decides which fields
// are populated: user messages carry Content and Attachments, assistant
// messages carry Variants and ActiveVariant, system messages carry Content
// only.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Variant is one regenerated version of an assistant reply. The log keeps
// every variant; ActiveVariant selects the displayed one.
type Variant struct {
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Message is one turn in a chat's log.
type Message struct {
	ID        string      `json:"id"`
	Role      MessageRole `json:"role"`
	Timestamp string      `json:"timestamp"`

	// user and system roles only.
	Content     string       `json:"content,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`

	// assistant role only. Variants is never empty once the message exists
	// and ActiveVariant is always a valid index into it.
	Variants      []Variant `json:"variants,omitempty"`
	ActiveVariant int       `json:"activeVariant,omitempty"`
}

// NewUserMessage builds a user turn from text and captured attachments.
func NewUserMessage(content string, attachments []Attachment) Message {
	return Message{
		ID:          GenerateID("msg"),
		Role:        RoleUser,
		Timestamp:   Timestamp(),
		Content:     content,
		Attachments: attachments,
	}
}

// NewAssistantMessage builds an assistant turn with a single initial variant.
func NewAssistantMessage(content string) Message {
	now := Timestamp()
	return Message{
		ID:        GenerateID("msg"),
		Role:      RoleAssistant,
		Timestamp: now,
		Variants:  []Variant{{Content: content, Timestamp: now}},
	}
}

// NewSystemMessage builds an informational turn, such as a room-change
// notice. System messages are display-only unless explicitly folded into the
// outbound history.
func NewSystemMessage(content string) Message {
	return Message{
		ID:        GenerateID("msg"),
		Role:      RoleSystem,
		Timestamp: Timestamp(),
		Content:   content,
	}
}

// ActiveContent returns the displayed text of a message: the active variant
// for assistant messages, the flat content otherwise.
func (m *Message) ActiveContent() string {
	if m.Role == RoleAssistant {
		if m.ActiveVariant >= 0 && m.ActiveVariant < len(m.Variants) {
			return m.Variants[m.ActiveVariant].Content
		}
		return ""
	}
	return m.Content
}

// ActiveTimestamp returns the timestamp shown for a message: the active
// variant's for assistant messages, the message's own otherwise.
func (m *Message) ActiveTimestamp() string {
	if m.Role == RoleAssistant && m.ActiveVariant >= 0 && m.ActiveVariant < len(m.Variants) {
		return m.Variants[m.ActiveVariant].Timestamp
	}
	return m.Timestamp
}

// MessageLog loads a chat's messages, upgrading any historical message
// shapes to the current one. Corrupt stored data degrades to an empty log.
func (s *Store) MessageLog(ctx context.Context, chatID string) ([]Message, error) {
	var messages []Message
	if err := s.loadCollection(ctx, ChatLogKey(chatID), &messages); err != nil {
		return nil, err
	}
	return MigrateMessages(messages), nil
}

// SaveMessageLog rewrites a chat's message log in full and touches the
// owning chat.
func (s *Store) SaveMessageLog(ctx context.Context, chatID, roomID string, messages []Message) error {
	if err := s.saveCollection(ctx, ChatLogKey(chatID), messages); err != nil {
		return err
	}
	return s.TouchChat(ctx, chatID, roomID)
}
