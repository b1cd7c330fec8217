// Package chat manages chat sessions and streams assistant replies over SSE.
package chat

import "time"

// Session is one chat conversation.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	AgentID   *string   `json:"agent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MessageRole enumerates who authored a message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one turn in a session.
type Message struct {
	ID        string      `json:"id"`
	SessionID string      `json:"session_id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

// CreateSessionInput carries fields for opening a session.
type CreateSessionInput struct {
	Title   string  `json:"title" validate:"required,min=1,max=200"`
	AgentID *string `json:"agent_id" validate:"omitempty,uuid4"`
}

// SendMessageInput carries the user's message content.
type SendMessageInput struct {
	Content string `json:"content" validate:"required,min=1"`
}

// ListFilters narrows session listings.
type ListFilters struct {
	Search string
	Limit  int
	Offset int
}
