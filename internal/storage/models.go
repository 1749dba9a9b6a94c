package storage

import (
	"fmt"
	"time"
)

// Role identifies the author of a chat message.
type Role string

// Valid message roles. The set mirrors the chat-completions API surface;
// only a subset is produced by this service, but the store accepts all of
// them so persisted histories survive model/provider changes.
const (
	RoleSystem    Role = "system"
	RoleDeveloper Role = "developer"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleFunction  Role = "function"
	RoleTool      Role = "tool"
	RoleChatbot   Role = "chatbot"
	RoleModel     Role = "model"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleDeveloper, RoleUser, RoleAssistant, RoleFunction, RoleTool, RoleChatbot, RoleModel:
		return true
	}
	return false
}

// ContentBlock is a single typed block of message content.
type ContentBlock struct {
	Type string `json:"block_type"`
	Text string `json:"text"`
}

// ToolCall records a capability invocation requested by the model inside
// an assistant message.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// MessageData is the structured payload of a message. Each role's required
// fields are explicit: assistant messages may carry ToolCalls, tool
// messages must carry the ToolCallID linking them to the assistant message
// that requested the call.
type MessageData struct {
	Role       Role           `json:"role"`
	Blocks     []ContentBlock `json:"blocks"`
	ToolCalls  []ToolCall     `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

// Validate checks the role-specific field requirements.
func (d MessageData) Validate() error {
	if !d.Role.Valid() {
		return fmt.Errorf("invalid message role %q", d.Role)
	}
	if d.Role == RoleTool && d.ToolCallID == "" {
		return fmt.Errorf("tool message requires a tool_call_id")
	}
	if len(d.ToolCalls) > 0 && d.Role != RoleAssistant {
		return fmt.Errorf("tool calls are only valid on assistant messages, got role %q", d.Role)
	}
	return nil
}

// Text concatenates the text blocks of the message.
func (d MessageData) Text() string {
	switch len(d.Blocks) {
	case 0:
		return ""
	case 1:
		return d.Blocks[0].Text
	}
	var out string
	for i, b := range d.Blocks {
		if i > 0 {
			out += "\n"
		}
		out += b.Text
	}
	return out
}

// NewTextData builds a MessageData with a single text block.
func NewTextData(role Role, text string) MessageData {
	return MessageData{
		Role:   role,
		Blocks: []ContentBlock{{Type: "text", Text: text}},
	}
}

// SessionRecord represents a chat session in the database.
type SessionRecord struct {
	SessionID    string // UUID
	UserID       string // Owning user; empty when created without auth context
	Title        string
	CreatedAt    time.Time
	LastActiveAt time.Time
	// Messages is populated by GetFullSession, ordered by creation.
	Messages []MessageRecord
}

// MessageRecord represents a persisted message. Messages are immutable
// once created and strictly ordered by creation within a session.
type MessageRecord struct {
	MessageID string // UUID
	SessionID string // UUID (foreign key to sessions.session_id)
	Data      MessageData
	Tokens    *int
	CreatedAt time.Time
}

// DocumentRecord tracks an indexed corpus document. Hash is compared to
// the current document hash at build time so unchanged documents are not
// re-embedded; ChunkCount allows stale vector points to be deleted by
// their deterministic IDs on re-index.
type DocumentRecord struct {
	ID         string // Document ID (relative file path)
	Title      string
	FilePath   string
	Hash       string // sha256 hex of content at index time
	ChunkCount int
	IndexedAt  time.Time
}
