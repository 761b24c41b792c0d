package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/Rrens/shop-assistant/internal/intent"
	"github.com/Rrens/shop-assistant/internal/llm"
	"github.com/Rrens/shop-assistant/internal/observability"
	"github.com/rs/zerolog/log"
)

// ErrModelUnavailable wraps every failure of the language model round trip
var ErrModelUnavailable = errors.New("language model unavailable")

// Replies shorter than this are treated as degenerate
const minReplyLength = 10

const completedReply = "Done! Your request has been completed."

// ClassificationType tags the two shapes a classification can take
type ClassificationType string

const (
	ClassificationFunctionCall ClassificationType = "function_call"
	ClassificationText         ClassificationType = "text"
)

// Classification is the model's decision for one shopper message
type Classification struct {
	Type         ClassificationType
	FunctionName string
	Arguments    map[string]any
	Content      string
	TokensUsed   int
}

// IntentClassifier maps shopper messages to catalog functions and phrases replies
type IntentClassifier struct {
	llmRouter *llm.Router
	handlers  *intent.Handlers
	tools     []llm.Tool
	metrics   *observability.Metrics
}

// NewIntentClassifier creates a classifier over the registered providers
func NewIntentClassifier(llmRouter *llm.Router, handlers *intent.Handlers, metrics *observability.Metrics) *IntentClassifier {
	return &IntentClassifier{
		llmRouter: llmRouter,
		handlers:  handlers,
		tools:     Tools(),
		metrics:   metrics,
	}
}

// Tools converts the function catalog into model tool declarations
func Tools() []llm.Tool {
	catalog := intent.Catalog()
	tools := make([]llm.Tool, len(catalog))
	for i, fn := range catalog {
		params := make([]llm.ToolParam, len(fn.Params))
		for j, p := range fn.Params {
			params[j] = llm.ToolParam{
				Name:        p.Name,
				Type:        string(p.Type),
				Description: p.Description,
				Enum:        p.Enum,
			}
		}
		tools[i] = llm.Tool{
			Name:        fn.Name,
			Description: fn.Description,
			Params:      params,
			Required:    fn.Required,
		}
	}
	return tools
}

// Classify asks the model whether the message needs a catalog function
func (c *IntentClassifier) Classify(ctx context.Context, text string, history []domain.HistoryEntry, userID string) (*Classification, error) {
	decision, err := c.llmRouter.Classify(ctx, llm.ClassifyRequest{
		History: llm.TrimLeadingNonUser(history),
		Message: text,
		Tools:   c.tools,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}

	if decision.IsFunctionCall() {
		log.Debug().
			Str("user_id", userID).
			Str("function", decision.FunctionName).
			Int("tokens_used", decision.TokensUsed).
			Msg("model selected function")
		args := decision.Arguments
		if args == nil {
			args = map[string]any{}
		}
		return &Classification{
			Type:         ClassificationFunctionCall,
			FunctionName: decision.FunctionName,
			Arguments:    args,
			TokensUsed:   decision.TokensUsed,
		}, nil
	}

	return &Classification{
		Type:       ClassificationText,
		Content:    decision.Text,
		TokensUsed: decision.TokensUsed,
	}, nil
}

// ExecuteFunction validates the arguments and runs the bound handler. It never
// fails: unknown functions, bad arguments and handler panics all come back as
// unsuccessful results.
func (c *IntentClassifier) ExecuteFunction(ctx context.Context, name string, args map[string]any, caller intent.Caller) (result intent.Result) {
	defer func() {
		c.metrics.RecordFunctionCall(name, result.Success)
	}()

	fn, ok := intent.Lookup(name)
	if !ok {
		log.Warn().Str("function", name).Msg("model selected unknown function")
		return intent.Result{Success: false, Message: name + " does not exist"}
	}

	cleaned, err := fn.Validate(args)
	if err != nil {
		var argErr *intent.ArgumentError
		if errors.As(err, &argErr) {
			log.Info().Err(err).Str("function", name).Msg("rejected model arguments")
			return intent.Result{Success: false, Message: argErr.Clarification(), Error: err.Error()}
		}
		return intent.Result{Success: false, Message: "Error executing: " + err.Error()}
	}

	call, ok := intent.NewTable(c.handlers, caller)[name]
	if !ok {
		return intent.Result{Success: false, Message: name + " does not exist"}
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("function", name).
				Str("user_id", caller.UserID).
				Interface("panic", r).
				Msg("handler panicked")
			result = intent.Result{Success: false, Message: fmt.Sprintf("Error executing: %v", r)}
		}
	}()

	return normalizeResult(call(ctx, cleaned))
}

// normalizeResult turns handler data into plain decoded JSON so it can be
// stored in message metadata and read back by context updates.
func normalizeResult(r intent.Result) intent.Result {
	if r.Data == nil {
		return r
	}
	raw, err := json.Marshal(r.Data)
	if err != nil {
		log.Warn().Err(err).Msg("failed to encode function result")
		return r
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return r
	}
	r.Data = data
	return r
}

// GenerateResponse phrases a function result for the shopper. Model errors and
// degenerate replies fall back to the result's own message.
func (c *IntentClassifier) GenerateResponse(ctx context.Context, text string, result intent.Result, history []domain.HistoryEntry) string {
	resp, err := c.llmRouter.Respond(ctx, llm.RespondRequest{
		History: llm.TrimLeadingNonUser(history),
		Prompt:  llm.BuildResponsePrompt(text, result),
	})
	if err != nil {
		log.Warn().Err(err).Msg("response synthesis failed")
		return fallbackReply(result)
	}

	reply := strings.TrimSpace(resp.Text)
	if len([]rune(reply)) < minReplyLength {
		return fallbackReply(result)
	}
	return reply
}

func fallbackReply(result intent.Result) string {
	if strings.TrimSpace(result.Message) != "" {
		return result.Message
	}
	return completedReply
}
