package store

import (
	"fmt"
	"time"

	"github.com/lithammer/shortuuid/v4"
)

// Storage keys. One key per global collection, plus one key per chat's
// message log (see ChatLogKey).
const (
	KeyAPIKey            = "musubi_api_key"
	KeyProvider          = "musubi_provider"
	KeyModel             = "musubi_model"
	KeyBaseURL           = "musubi_base_url"
	KeySystemInstruction = "musubi_system_instruction"
	KeyRooms             = "musubi_rooms"
	KeyChats             = "musubi_chats"
	KeyCurrentChat       = "musubi_current_chat"
	KeyKnowledge         = "musubi_knowledge"
	KeyCoreMemories      = "musubi_core_memories"

	chatLogKeyPrefix = "musubi_chat_"

	// Pre-multi-chat installations kept a single log under this key.
	legacyHistoryKey = "ritsu_chat_history"
	legacyThreadsKey = "ritsu_threads"
)

// Content limits.
const (
	// MaxHistoryMessages is the recent-history window: the suffix of the
	// message log sent to the inference backend per request.
	MaxHistoryMessages = 20

	// MaxImageBytes is the hard cap for image attachments. Oversized images
	// are rejected outright, never truncated.
	MaxImageBytes = 5 * 1024 * 1024

	// MaxTextChars is the cap for text attachment and knowledge content,
	// counted in runes. Longer content is truncated to exactly this length.
	MaxTextChars = 30000
)

// ChatLogKey returns the storage key for a chat's message log.
func ChatLogKey(chatID string) string {
	return chatLogKeyPrefix + chatID
}

// GenerateID returns a unique opaque ID with the given prefix. The
// millisecond prefix keeps IDs roughly sortable; the shortuuid suffix makes
// collisions negligible.
func GenerateID(prefix string) string {
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), shortuuid.New())
}

// Timestamp returns the current time serialized the way all entities store
// timestamps at rest.
func Timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// FormatTimestamp renders a stored timestamp for display and export
// (e.g. 2026/08/28 14:05). Unparseable values are returned as-is.
func FormatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006/01/02 15:04")
}
