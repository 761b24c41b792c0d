package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Rrens/shop-assistant/internal/domain"
)

// SystemInstruction frames every conversation with the shop assistant persona
const SystemInstruction = `You are the shopping assistant of an online store.
Help shoppers find products, manage their cart, place and track orders, pay, and use vouchers.

Rules:
1. Call a function whenever the request needs store data or changes the cart, orders or profile
2. Never invent product IDs, order IDs or prices; use the ones shown earlier in the conversation
3. When the shopper says "this", "that one" or "it", refer to the product or order shown most recently
4. Ask a short question when required information is missing
5. Answer briefly and politely`

// TrimLeadingNonUser drops messages before the first user turn. Chat models
// require the history to open with the user.
func TrimLeadingNonUser(history []domain.HistoryEntry) []domain.HistoryEntry {
	for i, h := range history {
		if h.Role == domain.RoleUser {
			return history[i:]
		}
	}
	return []domain.HistoryEntry{}
}

// BuildResponsePrompt asks the model to summarize a function result for the shopper
func BuildResponsePrompt(message string, result any) string {
	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		payload = []byte(fmt.Sprintf("%+v", result))
	}

	return fmt.Sprintf(`The shopper asked: "%s"

Result from the store system: %s

Reply to the shopper in a friendly, concise way. If the result contains products, vouchers or orders, introduce them in detail.`, message, payload)
}

// ParseArguments decodes a JSON argument object returned by a model, tolerating
// markdown code fences around it.
func ParseArguments(raw string) (map[string]any, error) {
	content := raw
	if inner := extractFromCodeBlock(raw, "```json", "```"); inner != "" {
		content = inner
	} else if inner := extractFromCodeBlock(raw, "```", "```"); inner != "" {
		content = inner
	}
	content = strings.TrimSpace(content)

	args := map[string]any{}
	if content == "" {
		return args, nil
	}
	dec := json.NewDecoder(strings.NewReader(content))
	dec.UseNumber()
	if err := dec.Decode(&args); err != nil {
		return nil, fmt.Errorf("invalid function arguments: %w", err)
	}
	return args, nil
}

func extractFromCodeBlock(content, startMarker, endMarker string) string {
	startIdx := strings.Index(content, startMarker)
	if startIdx == -1 {
		return ""
	}

	contentStart := startIdx + len(startMarker)
	if contentStart < len(content) && content[contentStart] == '\n' {
		contentStart++
	}

	endIdx := strings.Index(content[contentStart:], endMarker)
	if endIdx == -1 {
		return ""
	}

	return strings.TrimSpace(content[contentStart : contentStart+endIdx])
}
