package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Rrens/shop-assistant/internal/config"
	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/Rrens/shop-assistant/internal/llm"
	"github.com/Rrens/shop-assistant/internal/observability"
	"github.com/Rrens/shop-assistant/internal/resilience"
	"github.com/google/generative-ai-go/genai"
	"github.com/sony/gobreaker"
	"google.golang.org/api/option"
)

const (
	opClassify = "classify"
	opRespond  = "respond"
)

type generation struct {
	temperature float32
	maxTokens   int32
}

type Provider struct {
	apiKey   string
	model    string
	timeout  time.Duration
	classify generation
	respond  generation
	breaker  *gobreaker.CircuitBreaker
	metrics  *observability.Metrics

	mu     sync.Mutex
	client *genai.Client
}

func NewProvider(cfg config.GeminiConfig, metrics *observability.Metrics) *Provider {
	return &Provider{
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		timeout:  cfg.Timeout,
		classify: generation{temperature: orDefault(cfg.ClassifyTemperature, 0.7), maxTokens: orDefault(cfg.ClassifyMaxTokens, 1000)},
		respond:  generation{temperature: orDefault(cfg.RespondTemperature, 0.8), maxTokens: orDefault(cfg.RespondMaxTokens, 500)},
		breaker:  resilience.NewCircuitBreaker("gemini"),
		metrics:  metrics,
	}
}

func orDefault[T float32 | int32](v, def T) T {
	if v <= 0 {
		return def
	}
	return v
}

// genaiClient returns the shared client, dialing it on first use. A failed
// dial is not cached so the next turn tries again.
func (p *Provider) genaiClient() (*genai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(p.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	p.client = client
	return client, nil
}

// Close releases the shared client
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client == nil {
		return nil
	}
	err := p.client.Close()
	p.client = nil
	return err
}

func (p *Provider) Name() string {
	return "gemini"
}

func (p *Provider) AvailableModels() []string {
	return []string{
		"gemini-2.5-pro",
		"gemini-2.5-flash",
		"gemini-1.5-flash",
		"gemini-1.5-pro",
	}
}

func (p *Provider) DefaultModel() string {
	if p.model != "" {
		return p.model
	}
	return "gemini-2.5-flash"
}

func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

func (p *Provider) Classify(ctx context.Context, req llm.ClassifyRequest, model string) (*llm.Decision, error) {
	resp, model, latency, err := p.send(ctx, opClassify, model, p.classify, req.History, req.Message, func(m *genai.GenerativeModel) {
		if len(req.Tools) > 0 {
			m.Tools = []*genai.Tool{{FunctionDeclarations: toDeclarations(req.Tools)}}
		}
	})
	if err != nil {
		return nil, err
	}

	decision, err := decisionFromResponse(resp)
	if err != nil {
		return nil, err
	}
	decision.Model = model
	decision.LatencyMs = latency
	return decision, nil
}

func (p *Provider) Respond(ctx context.Context, req llm.RespondRequest, model string) (*llm.Response, error) {
	resp, model, latency, err := p.send(ctx, opRespond, model, p.respond, req.History, req.Prompt, nil)
	if err != nil {
		return nil, err
	}

	return &llm.Response{
		Text:       responseText(resp),
		Model:      model,
		TokensUsed: tokenCount(resp),
		LatencyMs:  latency,
	}, nil
}

// send opens a chat seeded with history and sends one message through the breaker
func (p *Provider) send(ctx context.Context, op, model string, gen generation, history []domain.HistoryEntry, message string, configure func(*genai.GenerativeModel)) (*genai.GenerateContentResponse, string, int64, error) {
	if !p.IsConfigured() {
		return nil, "", 0, fmt.Errorf("gemini provider is not configured (missing API key)")
	}
	if model == "" {
		model = p.DefaultModel()
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	client, err := p.genaiClient()
	if err != nil {
		p.metrics.IncrLLMError(p.Name(), op)
		return nil, model, 0, err
	}

	generativeModel := client.GenerativeModel(model)
	generativeModel.SetTemperature(gen.temperature)
	generativeModel.SetMaxOutputTokens(gen.maxTokens)
	generativeModel.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(llm.SystemInstruction)}}
	if configure != nil {
		configure(generativeModel)
	}

	chat := generativeModel.StartChat()
	chat.History = toHistory(llm.TrimLeadingNonUser(history))

	start := time.Now()
	out, err := p.breaker.Execute(func() (any, error) {
		return chat.SendMessage(ctx, genai.Text(message))
	})
	elapsed := time.Since(start)

	if err != nil {
		p.metrics.IncrLLMError(p.Name(), op)
		return nil, model, 0, fmt.Errorf("gemini %s error: %w", op, err)
	}

	resp := out.(*genai.GenerateContentResponse)
	p.metrics.RecordLLMCall(p.Name(), op, tokenCount(resp), elapsed)
	return resp, model, elapsed.Milliseconds(), nil
}

func toHistory(history []domain.HistoryEntry) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, h := range history {
		role := "user"
		if h.Role == domain.RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(h.Content)}})
	}
	return contents
}

func toDeclarations(tools []llm.Tool) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		decl := &genai.FunctionDeclaration{Name: t.Name, Description: t.Description}
		if len(t.Params) > 0 {
			props := make(map[string]*genai.Schema, len(t.Params))
			for _, param := range t.Params {
				props[param.Name] = toSchema(param)
			}
			decl.Parameters = &genai.Schema{
				Type:       genai.TypeObject,
				Properties: props,
				Required:   t.Required,
			}
		}
		decls = append(decls, decl)
	}
	return decls
}

func toSchema(param llm.ToolParam) *genai.Schema {
	s := &genai.Schema{Description: param.Description, Enum: param.Enum}
	switch param.Type {
	case "number":
		s.Type = genai.TypeNumber
	case "integer":
		s.Type = genai.TypeInteger
	case "boolean":
		s.Type = genai.TypeBoolean
	case "array":
		s.Type = genai.TypeArray
		s.Items = &genai.Schema{Type: genai.TypeString}
	default:
		s.Type = genai.TypeString
	}
	return s
}

func decisionFromResponse(resp *genai.GenerateContentResponse) (*llm.Decision, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from gemini")
	}

	decision := &llm.Decision{TokensUsed: tokenCount(resp)}
	for _, part := range resp.Candidates[0].Content.Parts {
		switch v := part.(type) {
		case genai.FunctionCall:
			decision.FunctionName = v.Name
			decision.Arguments = nonNil(v.Args)
			return decision, nil
		case *genai.FunctionCall:
			decision.FunctionName = v.Name
			decision.Arguments = nonNil(v.Args)
			return decision, nil
		}
	}
	decision.Text = responseText(resp)
	return decision, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}

func tokenCount(resp *genai.GenerateContentResponse) int {
	if resp == nil || resp.UsageMetadata == nil {
		return 0
	}
	return int(resp.UsageMetadata.TotalTokenCount)
}

func nonNil(args map[string]any) map[string]any {
	if args == nil {
		return map[string]any{}
	}
	return args
}
