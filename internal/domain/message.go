package domain

import "time"

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Valid reports whether the role is one of the known senders
func (r MessageRole) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Metadata keys written on assistant messages
const (
	MetaFunctionCalled = "functionCalled"
	MetaFunctionResult = "functionResult"
)

// Message represents a chat message in a session
type Message struct {
	ID        string         `json:"id,omitempty" bson:"id,omitempty"`
	Role      MessageRole    `json:"role" bson:"role"`
	Content   string         `json:"content" bson:"content"`
	Metadata  map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt" bson:"createdAt"`
}

// HistoryEntry is a message as handed to the language model
type HistoryEntry struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}
