package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/Rrens/shop-assistant/internal/llm"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Provider implements llm.Provider for OpenAI and any endpoint speaking the
// chat completions protocol (DeepSeek, Ollama's /v1).
type Provider struct {
	apiKey       string
	defaultModel string
	client       *http.Client
	baseURL      string
}

// NewProvider creates a new OpenAI provider. An empty baseURL targets api.openai.com.
func NewProvider(apiKey, defaultModel, baseURL string) *Provider {
	if defaultModel == "" {
		defaultModel = "gpt-4o-mini"
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Provider{
		apiKey:       apiKey,
		defaultModel: defaultModel,
		client:       &http.Client{Timeout: 120 * time.Second},
		baseURL:      strings.TrimRight(baseURL, "/"),
	}
}

// Factory builds a provider from per-request settings (api_key, model, base_url)
func Factory(config map[string]any) (llm.Provider, error) {
	apiKey, _ := config["api_key"].(string)
	model, _ := config["model"].(string)
	baseURL, _ := config["base_url"].(string)
	if apiKey == "" && baseURL == "" {
		return nil, fmt.Errorf("openai: api_key or base_url is required")
	}
	return NewProvider(apiKey, model, baseURL), nil
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "openai"
}

// AvailableModels returns list of supported models
func (p *Provider) AvailableModels() []string {
	return []string{
		"gpt-4o",
		"gpt-4o-mini",
		"gpt-4-turbo",
		"gpt-3.5-turbo",
	}
}

// DefaultModel returns the default model
func (p *Provider) DefaultModel() string {
	return p.defaultModel
}

// IsConfigured checks if provider has valid credentials
func (p *Provider) IsConfigured() bool {
	return p.apiKey != "" || p.baseURL != defaultBaseURL
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Tools       []chatTool    `json:"tools,omitempty"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatTool struct {
	Type     string       `json:"type"`
	Function toolFunction `json:"function"`
}

type toolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  *jsonSchemaProp `json:"parameters,omitempty"`
}

type jsonSchemaProp struct {
	Type        string                     `json:"type"`
	Description string                     `json:"description,omitempty"`
	Enum        []string                   `json:"enum,omitempty"`
	Items       *jsonSchemaProp            `json:"items,omitempty"`
	Properties  map[string]*jsonSchemaProp `json:"properties,omitempty"`
	Required    []string                   `json:"required,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Classify asks the model to choose one of the tools or reply in text
func (p *Provider) Classify(ctx context.Context, req llm.ClassifyRequest, model string) (*llm.Decision, error) {
	chatReq := chatRequest{
		Messages:    p.messages(req.History, req.Message),
		Tools:       toTools(req.Tools),
		Temperature: 0.7,
		MaxTokens:   1000,
	}

	resp, latencyMs, err := p.complete(ctx, chatReq, model)
	if err != nil {
		return nil, err
	}

	msg := resp.Choices[0].Message
	decision := &llm.Decision{
		Model:      resp.Model,
		TokensUsed: resp.Usage.TotalTokens,
		LatencyMs:  latencyMs,
	}
	if len(msg.ToolCalls) > 0 {
		call := msg.ToolCalls[0].Function
		args, err := llm.ParseArguments(call.Arguments)
		if err != nil {
			return nil, fmt.Errorf("tool call %s: %w", call.Name, err)
		}
		decision.FunctionName = call.Name
		decision.Arguments = args
		return decision, nil
	}
	decision.Text = msg.Content
	return decision, nil
}

// Respond generates a plain-text reply
func (p *Provider) Respond(ctx context.Context, req llm.RespondRequest, model string) (*llm.Response, error) {
	chatReq := chatRequest{
		Messages:    p.messages(req.History, req.Prompt),
		Temperature: 0.8,
		MaxTokens:   500,
	}

	resp, latencyMs, err := p.complete(ctx, chatReq, model)
	if err != nil {
		return nil, err
	}

	return &llm.Response{
		Text:       resp.Choices[0].Message.Content,
		Model:      resp.Model,
		TokensUsed: resp.Usage.TotalTokens,
		LatencyMs:  latencyMs,
	}, nil
}

func (p *Provider) messages(history []domain.HistoryEntry, latest string) []chatMessage {
	msgs := []chatMessage{{Role: "system", Content: llm.SystemInstruction}}
	for _, h := range llm.TrimLeadingNonUser(history) {
		role := "user"
		if h.Role == domain.RoleAssistant {
			role = "assistant"
		}
		msgs = append(msgs, chatMessage{Role: role, Content: h.Content})
	}
	return append(msgs, chatMessage{Role: "user", Content: latest})
}

func (p *Provider) complete(ctx context.Context, chatReq chatRequest, model string) (*chatResponse, int64, error) {
	if model == "" {
		model = p.defaultModel
	}
	chatReq.Model = model

	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("openai returned status %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, 0, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return nil, 0, fmt.Errorf("no response from OpenAI")
	}
	if chatResp.Model == "" {
		chatResp.Model = model
	}

	return &chatResp, time.Since(start).Milliseconds(), nil
}

func toTools(tools []llm.Tool) []chatTool {
	out := make([]chatTool, 0, len(tools))
	for _, t := range tools {
		params := &jsonSchemaProp{Type: "object", Properties: map[string]*jsonSchemaProp{}, Required: t.Required}
		for _, param := range t.Params {
			prop := &jsonSchemaProp{Type: param.Type, Description: param.Description, Enum: param.Enum}
			if param.Type == "array" {
				prop.Items = &jsonSchemaProp{Type: "string"}
			}
			params.Properties[param.Name] = prop
		}
		out = append(out, chatTool{
			Type:     "function",
			Function: toolFunction{Name: t.Name, Description: t.Description, Parameters: params},
		})
	}
	return out
}
