// Package chat implements the conversation controller. A Session owns one
// open conversation at a time: the current chat, its message log, the
// active room, and the attachments staged for the next turn.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/musubi-chat/musubi/internal/observability"
	"github.com/musubi-chat/musubi/plugin/ai"
	aicontext "github.com/musubi-chat/musubi/plugin/ai/context"
	"github.com/musubi-chat/musubi/store"
)

var (
	// ErrBusy indicates a generation is already in flight for this session.
	ErrBusy = errors.New("a request is already in flight")

	// ErrEmptyMessage indicates a send with no text and no attachments.
	ErrEmptyMessage = errors.New("empty message")

	// ErrNoChat indicates an operation that needs an open chat before one exists.
	ErrNoChat = errors.New("no chat is open")

	// ErrNotEditable indicates the target message cannot be edited or
	// regenerated (wrong role or unknown ID).
	ErrNotEditable = errors.New("message cannot be modified")
)

// Session drives one open conversation. All operations serialize on an
// internal mutex; Send, Edit, and Regenerate additionally hold an inFlight
// gate for the duration of the provider call. While the gate is held,
// concurrent generations and chat switches return ErrBusy rather than queue,
// so a late reply always lands in the chat that dispatched it.
type Session struct {
	store   *store.Store
	llm     ai.LLMService
	builder *aicontext.Builder
	logger  *slog.Logger

	mu       sync.Mutex
	chatID   string
	roomID   string
	messages []store.Message
	pending  []store.Attachment
	inFlight bool
}

// NewSession creates a session over the given store and inference service.
func NewSession(st *store.Store, llm ai.LLMService, builder *aicontext.Builder, logger *slog.Logger) *Session {
	return &Session{
		store:   st,
		llm:     llm,
		builder: builder,
		logger:  logger,
	}
}

// SetLLM swaps the inference service, used after the provider settings
// change. In-flight generations finish on the old service.
func (s *Session) SetLLM(llm ai.LLMService) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.llm = llm
}

// Home opens the chat recorded as current, or the newest chat, or creates a
// fresh one when none exist. Called on startup after default rooms are seeded.
func (s *Session) Home(ctx context.Context) (store.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return store.Chat{}, ErrBusy
	}

	currentID, err := s.store.CurrentChatID(ctx)
	if err != nil {
		return store.Chat{}, err
	}
	if currentID != "" {
		chat, found, err := s.store.FindChat(ctx, currentID)
		if err != nil {
			return store.Chat{}, err
		}
		if found {
			return chat, s.openLocked(ctx, chat)
		}
	}

	chats, err := s.store.Chats(ctx)
	if err != nil {
		return store.Chat{}, err
	}
	if len(chats) > 0 {
		return chats[0], s.openLocked(ctx, chats[0])
	}

	return s.newChatLocked(ctx)
}

// Open loads an existing chat into the session. Rejected while a generation
// is in flight so a late reply cannot land in the newly opened chat.
func (s *Session) Open(ctx context.Context, chatID string) (store.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return store.Chat{}, ErrBusy
	}

	chat, found, err := s.store.FindChat(ctx, chatID)
	if err != nil {
		return store.Chat{}, err
	}
	if !found {
		return store.Chat{}, store.ErrNotFound
	}
	return chat, s.openLocked(ctx, chat)
}

func (s *Session) openLocked(ctx context.Context, chat store.Chat) error {
	messages, err := s.store.MessageLog(ctx, chat.ID)
	if err != nil {
		return err
	}

	rooms, err := s.store.Rooms(ctx)
	if err != nil {
		return err
	}
	room, ok := store.ResolveRoom(rooms, chat.CurrentRoomID)
	if !ok {
		return store.ErrNotFound
	}

	s.chatID = chat.ID
	s.roomID = room.ID
	s.messages = messages
	s.pending = nil
	return s.store.SetCurrentChatID(ctx, chat.ID)
}

// NewChat creates a fresh chat in the session's current room (or the first
// room) and opens it.
func (s *Session) NewChat(ctx context.Context) (store.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return store.Chat{}, ErrBusy
	}
	return s.newChatLocked(ctx)
}

func (s *Session) newChatLocked(ctx context.Context) (store.Chat, error) {
	rooms, err := s.store.Rooms(ctx)
	if err != nil {
		return store.Chat{}, err
	}
	room, ok := store.ResolveRoom(rooms, s.roomID)
	if !ok {
		return store.Chat{}, store.ErrNotFound
	}

	chat, err := s.store.CreateChat(ctx, room.ID)
	if err != nil {
		return store.Chat{}, err
	}
	return chat, s.openLocked(ctx, chat)
}

// DeleteChat removes a chat and its log. Deleting the open chat switches the
// session to the newest remaining chat, creating one when none remain.
func (s *Session) DeleteChat(ctx context.Context, chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return ErrBusy
	}
	if err := s.store.DeleteChat(ctx, chatID); err != nil {
		return err
	}
	if chatID != s.chatID {
		return nil
	}

	chats, err := s.store.Chats(ctx)
	if err != nil {
		return err
	}
	if len(chats) > 0 {
		return s.openLocked(ctx, chats[0])
	}
	_, err = s.newChatLocked(ctx)
	return err
}

// ChatID returns the open chat's ID, empty before Home/Open.
func (s *Session) ChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chatID
}

// RoomID returns the active room's ID.
func (s *Session) RoomID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomID
}

// Messages returns a copy of the open chat's log.
func (s *Session) Messages() []store.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Pending returns a copy of the staged attachments.
func (s *Session) Pending() []store.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.Attachment, len(s.pending))
	copy(out, s.pending)
	return out
}

// Attach stages a file for the next turn. Oversized images are rejected,
// overlong text is truncated, unsupported types return
// *store.UnsupportedAttachmentError.
func (s *Session) Attach(ctx context.Context, name, mimeType string, data []byte) (store.Attachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var att store.Attachment
	var err error
	switch {
	case store.IsImageMimeType(mimeType):
		att, err = store.NewImageAttachment(name, mimeType, data)
	case store.IsTextFile(name, mimeType):
		att, err = store.NewTextAttachment(name, mimeType, string(data))
	default:
		err = &store.UnsupportedAttachmentError{Name: name, Reason: "unsupported file type"}
	}
	if err != nil {
		return store.Attachment{}, err
	}

	s.pending = append(s.pending, att)
	return att, nil
}

// RemoveAttachment unstages one attachment by ID.
func (s *Session) RemoveAttachment(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, att := range s.pending {
		if att.ID == id {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// ClearAttachments unstages everything.
func (s *Session) ClearAttachments() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// Send appends the user's turn to the log, requests a reply, and appends the
// assistant's answer. Provider failures become assistant content so the
// conversation records them; only storage errors are returned.
func (s *Session) Send(ctx context.Context, text string) (store.Message, error) {
	s.mu.Lock()
	text = strings.TrimSpace(text)
	if s.inFlight {
		s.mu.Unlock()
		return store.Message{}, ErrBusy
	}
	if text == "" && len(s.pending) == 0 {
		s.mu.Unlock()
		return store.Message{}, ErrEmptyMessage
	}

	// Capture the staged attachments before any chat is created; opening a
	// chat resets the pending buffer.
	attachments := s.pending
	s.pending = nil

	if s.chatID == "" {
		if _, err := s.newChatLocked(ctx); err != nil {
			s.pending = attachments
			s.mu.Unlock()
			return store.Message{}, err
		}
	}
	s.inFlight = true
	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	rc := observability.NewRequestContext(s.logger, s.chatID)

	// History for the prompt is everything before this turn; the turn itself
	// travels as the current user message.
	prompt, err := s.assembleLocked(ctx, s.messages, attachments, text)
	if err != nil {
		s.pending = attachments
		s.mu.Unlock()
		return store.Message{}, err
	}

	userMsg := store.NewUserMessage(text, attachments)
	s.messages = append(s.messages, userMsg)
	if err := s.saveLogLocked(ctx); err != nil {
		s.mu.Unlock()
		return store.Message{}, err
	}
	llm := s.llm
	s.mu.Unlock()

	reply, callErr := llm.Chat(ctx, prompt.SystemPrompt, prompt.Messages)

	s.mu.Lock()
	var assistant store.Message
	if callErr != nil {
		failure := ai.Classify(callErr)
		rc.Error("generation failed", failure,
			slog.Int64(observability.LogFieldDuration, rc.DurationMs()))
		assistant = store.NewAssistantMessage("エラー: " + failure.UserMessage())
	} else {
		rc.Info("generation complete",
			slog.Int64(observability.LogFieldDuration, rc.DurationMs()),
			slog.Int(observability.LogFieldMessageLen, len(reply)))
		assistant = store.NewAssistantMessage(reply)
	}
	s.messages = append(s.messages, assistant)
	err = s.saveLogLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return store.Message{}, err
	}
	return assistant, nil
}

// Edit rewrites a user message in place and discards everything after it,
// then requests a fresh reply for the edited turn. The message's original
// attachments are kept.
func (s *Session) Edit(ctx context.Context, messageID, text string) (store.Message, error) {
	s.mu.Lock()
	text = strings.TrimSpace(text)
	if s.inFlight {
		s.mu.Unlock()
		return store.Message{}, ErrBusy
	}

	idx := s.indexOfLocked(messageID)
	if idx < 0 || s.messages[idx].Role != store.RoleUser {
		s.mu.Unlock()
		return store.Message{}, ErrNotEditable
	}
	if text == "" {
		s.mu.Unlock()
		return store.Message{}, ErrEmptyMessage
	}
	s.inFlight = true
	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	rc := observability.NewRequestContext(s.logger, s.chatID)

	attachments := s.messages[idx].Attachments
	prompt, err := s.assembleLocked(ctx, s.messages[:idx], attachments, text)
	if err != nil {
		s.mu.Unlock()
		return store.Message{}, err
	}

	edited := s.messages[idx]
	edited.Content = text
	edited.Timestamp = store.Timestamp()
	s.messages = append(s.messages[:idx], edited)
	if err := s.saveLogLocked(ctx); err != nil {
		s.mu.Unlock()
		return store.Message{}, err
	}
	llm := s.llm
	s.mu.Unlock()

	reply, callErr := llm.Chat(ctx, prompt.SystemPrompt, prompt.Messages)

	s.mu.Lock()
	var assistant store.Message
	if callErr != nil {
		failure := ai.Classify(callErr)
		rc.Error("regeneration after edit failed", failure)
		assistant = store.NewAssistantMessage("エラー: " + failure.UserMessage())
	} else {
		rc.Info("edit regeneration complete",
			slog.Int64(observability.LogFieldDuration, rc.DurationMs()))
		assistant = store.NewAssistantMessage(reply)
	}
	s.messages = append(s.messages, assistant)
	err = s.saveLogLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return store.Message{}, err
	}
	return assistant, nil
}

// Regenerate requests another answer for an assistant message and appends it
// as a new variant. On failure the log is left untouched and the error is
// returned for transient display.
func (s *Session) Regenerate(ctx context.Context, messageID string) (store.Message, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return store.Message{}, ErrBusy
	}

	idx := s.indexOfLocked(messageID)
	if idx < 0 || s.messages[idx].Role != store.RoleAssistant {
		s.mu.Unlock()
		return store.Message{}, ErrNotEditable
	}

	// The turn to replay is the closest preceding user message.
	userIdx := -1
	for i := idx - 1; i >= 0; i-- {
		if s.messages[i].Role == store.RoleUser {
			userIdx = i
			break
		}
	}
	if userIdx < 0 {
		s.mu.Unlock()
		return store.Message{}, ErrNotEditable
	}
	s.inFlight = true
	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	rc := observability.NewRequestContext(s.logger, s.chatID)

	turn := s.messages[userIdx]
	prompt, err := s.assembleLocked(ctx, s.messages[:userIdx], turn.Attachments, turn.Content)
	if err != nil {
		s.mu.Unlock()
		return store.Message{}, err
	}
	llm := s.llm
	s.mu.Unlock()

	reply, callErr := llm.Chat(ctx, prompt.SystemPrompt, prompt.Messages)

	s.mu.Lock()
	defer s.mu.Unlock()
	if callErr != nil {
		failure := ai.Classify(callErr)
		rc.Error("regeneration failed", failure)
		return store.Message{}, failure
	}

	// Re-locate in case the log changed while unlocked.
	idx = s.indexOfLocked(messageID)
	if idx < 0 || s.messages[idx].Role != store.RoleAssistant {
		return store.Message{}, ErrNotEditable
	}
	s.messages[idx].Variants = append(s.messages[idx].Variants, store.Variant{
		Content:   reply,
		Timestamp: store.Timestamp(),
	})
	s.messages[idx].ActiveVariant = len(s.messages[idx].Variants) - 1
	rc.Info("regeneration complete",
		slog.Int64(observability.LogFieldDuration, rc.DurationMs()))

	if err := s.saveLogLocked(ctx); err != nil {
		return store.Message{}, err
	}
	return s.messages[idx], nil
}

// NavigateVariant moves an assistant message's active variant by delta,
// clamped to the valid range. Out-of-range navigation is a no-op.
func (s *Session) NavigateVariant(ctx context.Context, messageID string, delta int) (store.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfLocked(messageID)
	if idx < 0 || s.messages[idx].Role != store.RoleAssistant {
		return store.Message{}, ErrNotEditable
	}

	msg := &s.messages[idx]
	target := msg.ActiveVariant + delta
	if target < 0 {
		target = 0
	}
	if max := len(msg.Variants) - 1; target > max {
		target = max
	}
	if target == msg.ActiveVariant {
		return *msg, nil
	}

	msg.ActiveVariant = target
	if err := s.saveLogLocked(ctx); err != nil {
		return store.Message{}, err
	}
	return *msg, nil
}

// SwitchRoom moves the open chat to another room and records the transition
// as a system message in the log.
func (s *Session) SwitchRoom(ctx context.Context, roomID string) (store.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.chatID == "" {
		return store.Room{}, ErrNoChat
	}

	rooms, err := s.store.Rooms(ctx)
	if err != nil {
		return store.Room{}, err
	}
	var room store.Room
	found := false
	for _, r := range rooms {
		if r.ID == roomID {
			room, found = r, true
			break
		}
	}
	if !found {
		return store.Room{}, store.ErrNotFound
	}
	if room.ID == s.roomID {
		return room, nil
	}

	s.roomID = room.ID
	s.messages = append(s.messages, store.NewSystemMessage(fmt.Sprintf("「%s」に移動しました", room.Name)))
	if err := s.saveLogLocked(ctx); err != nil {
		return store.Room{}, err
	}
	return room, nil
}

// DeleteRoom removes a room. When the session's active room is deleted, the
// session falls back to the first remaining room without a log entry.
func (s *Session) DeleteRoom(ctx context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteRoom(ctx, roomID); err != nil {
		return err
	}
	if roomID != s.roomID {
		return nil
	}

	rooms, err := s.store.Rooms(ctx)
	if err != nil {
		return err
	}
	room, ok := store.ResolveRoom(rooms, "")
	if !ok {
		return store.ErrNotFound
	}
	s.roomID = room.ID
	if s.chatID != "" {
		return s.store.TouchChat(ctx, s.chatID, room.ID)
	}
	return nil
}

// assembleLocked builds the prompt for a turn. history is the log slice to
// window over, excluding the turn being sent.
func (s *Session) assembleLocked(ctx context.Context, history []store.Message, attachments []store.Attachment, text string) (*aicontext.Result, error) {
	persona, err := s.store.SystemInstruction(ctx)
	if err != nil {
		return nil, err
	}
	rooms, err := s.store.Rooms(ctx)
	if err != nil {
		return nil, err
	}
	knowledge, err := s.store.Knowledge(ctx)
	if err != nil {
		return nil, err
	}
	memories, err := s.store.CoreMemories(ctx)
	if err != nil {
		return nil, err
	}

	req := &aicontext.Request{
		Persona:   persona,
		Messages:  history,
		Knowledge: knowledge,
		Memories:  memories,
		Pending:   attachments,
		UserText:  text,
	}
	if room, ok := store.ResolveRoom(rooms, s.roomID); ok {
		req.Room = &room
	}
	return s.builder.Build(req), nil
}

func (s *Session) saveLogLocked(ctx context.Context) error {
	return s.store.SaveMessageLog(ctx, s.chatID, s.roomID, s.messages)
}

func (s *Session) indexOfLocked(messageID string) int {
	for i := range s.messages {
		if s.messages[i].ID == messageID {
			return i
		}
	}
	return -1
}
