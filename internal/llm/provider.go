package llm

import (
	"context"

	"github.com/Rrens/shop-assistant/internal/domain"
)

// ToolParam describes one argument of a callable tool
type ToolParam struct {
	Name        string
	Type        string
	Description string
	Enum        []string
}

// Tool is a function the model may ask to call
type Tool struct {
	Name        string
	Description string
	Params      []ToolParam
	Required    []string
}

// ClassifyRequest asks the model to pick a tool or answer in text
type ClassifyRequest struct {
	History []domain.HistoryEntry
	Message string
	Tools   []Tool
}

// Decision is the model's choice for a turn. FunctionName is empty when the
// model answered in plain text.
type Decision struct {
	FunctionName string
	Arguments    map[string]any
	Text         string
	Model        string
	TokensUsed   int
	LatencyMs    int64
}

// IsFunctionCall reports whether the model selected a tool
func (d *Decision) IsFunctionCall() bool {
	return d != nil && d.FunctionName != ""
}

// RespondRequest asks the model to phrase a reply
type RespondRequest struct {
	History []domain.HistoryEntry
	Prompt  string
}

// Response contains LLM generation result
type Response struct {
	Text       string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Classify selects a tool call or a text answer for the latest message
	Classify(ctx context.Context, req ClassifyRequest, model string) (*Decision, error)

	// Respond generates a natural-language reply
	Respond(ctx context.Context, req RespondRequest, model string) (*Response, error)
}

// ProviderFactory creates a provider instance from per-request settings
type ProviderFactory func(config map[string]any) (Provider, error)
