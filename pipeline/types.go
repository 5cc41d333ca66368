package pipeline

import "time"

// Message roles as they appear in ChatGPT exports. Roles other than these
// four occasionally show up (e.g. "browsing"); the parser keeps anything
// that isn't system or tool.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// ParsedMessage is one message on the active branch of a conversation tree.
// Content is always non-empty after trimming; system/tool messages and
// empty messages never survive parsing.
type ParsedMessage struct {
	ID        string     `json:"id"`
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// ParsedConversation is the flat, ordered form of one raw conversation
// tree. Immutable once built; conversations whose message list parses to
// empty are filtered out of parser output entirely.
type ParsedConversation struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Messages  []ParsedMessage `json:"messages"`
}

// ChunkMetadata identifies where a chunk came from. TotalChunks is only
// known once all chunks for a conversation exist and is back-filled then.
type ChunkMetadata struct {
	ConversationID        string     `json:"conversation_id"`
	ConversationTitle     string     `json:"conversation_title"`
	ConversationCreatedAt time.Time  `json:"conversation_created_at"`
	ChunkIndex            int        `json:"chunk_index"`
	TotalChunks           int        `json:"total_chunks"`
	MessageIDs            []string   `json:"message_ids"`
	StartTimestamp        *time.Time `json:"start_timestamp,omitempty"`
	EndTimestamp          *time.Time `json:"end_timestamp,omitempty"`
}

// Chunk is an embedding-ready slice of a conversation. Content always
// begins with the conversation context header, and a chunk boundary never
// falls inside a single message.
type Chunk struct {
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}
