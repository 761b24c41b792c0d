package domain

// ChatRequest is one shopper message sent to the assistant
type ChatRequest struct {
	Message   string `json:"message" validate:"required,min=1,max=1000"`
	SessionID string `json:"sessionId,omitempty" validate:"omitempty,max=128"`
}

// ChatResponse is the reply envelope for a conversational turn
type ChatResponse struct {
	Success   bool          `json:"success"`
	SessionID string        `json:"sessionId,omitempty"`
	Message   string        `json:"message"`
	Data      any           `json:"data,omitempty"`
	Metadata  *ChatMetadata `json:"metadata,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// ChatMetadata describes how a turn was handled
type ChatMetadata struct {
	Intent         string `json:"intent"`
	FunctionCalled bool   `json:"functionCalled"`
	TokensUsed     int    `json:"tokensUsed,omitempty"`
	DurationMs     int64  `json:"durationMs"`
}

// GeneralConversation is the intent reported for plain text turns
const GeneralConversation = "general_conversation"

// SessionHistory is a session's transcript and working context
type SessionHistory struct {
	SessionID string    `json:"sessionId"`
	Messages  []Message `json:"messages"`
	Context   Context   `json:"context"`
}
