// Package context assembles the prompt sent to the inference provider.
// It combines the persona instruction, room instruction, knowledge base,
// core memories, and a bounded window of conversation history into the
// wire messages for a single completion request.
package context

import (
	"strings"

	"github.com/musubi-chat/musubi/plugin/ai"
	"github.com/musubi-chat/musubi/store"
)

const (
	roomHeading      = "## 現在の部屋"
	knowledgeHeading = "## ナレッジベース（長期記憶）"
	knowledgePrelude = "以下は参照用のナレッジです。必要に応じて活用してください。"
	memoryHeading    = "## ユーザーコアメモリ"
	memoryPrelude    = "ユーザーがあなたに覚えておいて欲しいこと："
)

// Config configures the context builder.
type Config struct {
	// MaxHistoryMessages bounds the history window. Only the most recent
	// messages up to this count are included (default: 20).
	MaxHistoryMessages int

	// IncludeSystemNotices controls whether system-role notices such as
	// room transitions are forwarded to the provider. They are kept out
	// of the outbound history by default.
	IncludeSystemNotices bool
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		MaxHistoryMessages: store.MaxHistoryMessages,
	}
}

// Request contains everything the builder needs for one completion.
type Request struct {
	Persona   string
	Room      *store.Room
	Messages  []store.Message
	Knowledge []store.KnowledgeItem
	Memories  []store.CoreMemory

	// Pending are attachments staged for the current turn.
	Pending []store.Attachment

	// UserText is the current turn's text. It is appended after the
	// history window as the final user message.
	UserText string
}

// Result is the assembled prompt.
type Result struct {
	SystemPrompt string
	Messages     []ai.Message
}

// Builder assembles prompts from conversation state.
type Builder struct {
	cfg Config
}

// NewBuilder creates a builder with the given configuration.
func NewBuilder(cfg Config) *Builder {
	if cfg.MaxHistoryMessages <= 0 {
		cfg.MaxHistoryMessages = store.MaxHistoryMessages
	}
	return &Builder{cfg: cfg}
}

// Build assembles the system prompt and wire messages for one request.
func (b *Builder) Build(req *Request) *Result {
	return &Result{
		SystemPrompt: b.buildSystemPrompt(req),
		Messages:     b.buildMessages(req),
	}
}

// buildSystemPrompt concatenates the prompt sections in fixed order.
// Empty sections are omitted entirely, heading included.
func (b *Builder) buildSystemPrompt(req *Request) string {
	var sections []string

	persona := strings.TrimSpace(req.Persona)
	if persona != "" {
		sections = append(sections, persona)
	}

	if req.Room != nil && strings.TrimSpace(req.Room.RoomInstruction) != "" {
		sections = append(sections, roomHeading+"\n"+strings.TrimSpace(req.Room.RoomInstruction))
	}

	if len(req.Knowledge) > 0 {
		var sb strings.Builder
		sb.WriteString(knowledgeHeading)
		sb.WriteString("\n")
		sb.WriteString(knowledgePrelude)
		for _, item := range req.Knowledge {
			sb.WriteString("\n\n### ")
			sb.WriteString(item.Name)
			sb.WriteString("\n")
			sb.WriteString(item.Content)
		}
		sections = append(sections, sb.String())
	}

	if len(req.Memories) > 0 {
		var sb strings.Builder
		sb.WriteString(memoryHeading)
		sb.WriteString("\n")
		sb.WriteString(memoryPrelude)
		for _, memory := range req.Memories {
			sb.WriteString("\n- ")
			sb.WriteString(memory.Content)
		}
		sections = append(sections, sb.String())
	}

	return strings.Join(sections, "\n\n")
}

// buildMessages converts the history window plus the current turn into
// wire messages.
func (b *Builder) buildMessages(req *Request) []ai.Message {
	history := b.window(req.Messages)

	messages := make([]ai.Message, 0, len(history)+1)
	for _, msg := range history {
		wire, ok := b.convertStored(msg)
		if !ok {
			continue
		}
		messages = append(messages, wire)
	}

	messages = append(messages, b.currentTurn(req))
	return messages
}

// window returns the most recent messages up to the configured bound,
// dropping system notices unless configured otherwise.
func (b *Builder) window(messages []store.Message) []store.Message {
	filtered := messages
	if !b.cfg.IncludeSystemNotices {
		filtered = make([]store.Message, 0, len(messages))
		for _, msg := range messages {
			if msg.Role == store.RoleSystem {
				continue
			}
			filtered = append(filtered, msg)
		}
	}

	if len(filtered) > b.cfg.MaxHistoryMessages {
		filtered = filtered[len(filtered)-b.cfg.MaxHistoryMessages:]
	}
	return filtered
}

// convertStored maps a stored message to a wire message. Assistant
// messages contribute their active variant only.
func (b *Builder) convertStored(msg store.Message) (ai.Message, bool) {
	switch msg.Role {
	case store.RoleUser:
		parts := attachmentParts(msg.Attachments)
		if msg.Content != "" {
			parts = append(parts, ai.TextPart(msg.Content))
		}
		if len(parts) == 0 {
			return ai.Message{}, false
		}
		return ai.Message{Role: ai.RoleUser, Parts: parts}, true
	case store.RoleAssistant:
		content := msg.ActiveContent()
		if content == "" {
			return ai.Message{}, false
		}
		return ai.Message{Role: ai.RoleModel, Parts: []ai.Part{ai.TextPart(content)}}, true
	case store.RoleSystem:
		// Forwarded only when IncludeSystemNotices is set; represented
		// as user text because the provider history has no system slot.
		if msg.Content == "" {
			return ai.Message{}, false
		}
		return ai.Message{Role: ai.RoleUser, Parts: []ai.Part{ai.TextPart(msg.Content)}}, true
	default:
		return ai.Message{}, false
	}
}

// currentTurn builds the final user message from the pending attachments
// and the turn's text, attachments first.
func (b *Builder) currentTurn(req *Request) ai.Message {
	parts := attachmentParts(req.Pending)
	if req.UserText != "" || len(parts) == 0 {
		parts = append(parts, ai.TextPart(req.UserText))
	}
	return ai.Message{Role: ai.RoleUser, Parts: parts}
}

// attachmentParts converts attachments to wire parts. Images travel as
// inline data, text files as a labelled text block.
func attachmentParts(attachments []store.Attachment) []ai.Part {
	var parts []ai.Part
	for _, att := range attachments {
		switch att.Type {
		case store.AttachmentImage:
			parts = append(parts, ai.InlinePart(att.MimeType, att.Data))
		case store.AttachmentText:
			parts = append(parts, ai.TextPart("[添付ファイル: "+att.Name+"]\n"+att.Content))
		}
	}
	return parts
}
