package conversation

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn of a conversation. Immutable once appended.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is one session's full transcript plus its domain binding.
// Messages are append-only; insertion order is chronological order.
type Conversation struct {
	SessionID string    `json:"session_id"`
	Domain    string    `json:"domain"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary is the lightweight per-session view served by the API.
type Summary struct {
	SessionID    string    `json:"session_id"`
	Domain       string    `json:"domain"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	LastMessage  string    `json:"last_message,omitempty"`
}
