package llm_test

import (
	"encoding/json"
	"testing"

	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/Rrens/shop-assistant/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrimLeadingNonUser(t *testing.T) {
	tests := []struct {
		name    string
		history []domain.HistoryEntry
		want    int
		first   string
	}{
		{
			name: "leading assistant and system dropped",
			history: []domain.HistoryEntry{
				{Role: domain.RoleAssistant, Content: "Welcome!"},
				{Role: domain.RoleSystem, Content: "note"},
				{Role: domain.RoleUser, Content: "hi"},
				{Role: domain.RoleAssistant, Content: "hello"},
			},
			want:  2,
			first: "hi",
		},
		{
			name: "already starts with user",
			history: []domain.HistoryEntry{
				{Role: domain.RoleUser, Content: "find shoes"},
				{Role: domain.RoleAssistant, Content: "here"},
			},
			want:  2,
			first: "find shoes",
		},
		{
			name: "all assistant becomes empty",
			history: []domain.HistoryEntry{
				{Role: domain.RoleAssistant, Content: "a"},
				{Role: domain.RoleAssistant, Content: "b"},
			},
			want: 0,
		},
		{
			name: "empty",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := llm.TrimLeadingNonUser(tt.history)
			require.NotNil(t, got)
			assert.Len(t, got, tt.want)
			if tt.want > 0 {
				assert.Equal(t, tt.first, got[0].Content)
			}
		})
	}
}

func TestBuildResponsePrompt(t *testing.T) {
	result := map[string]any{
		"success": true,
		"message": "Found 2 products",
		"data":    map[string]any{"total": 2},
	}

	prompt := llm.BuildResponsePrompt("show me sneakers", result)

	for _, s := range []string{`"show me sneakers"`, `"message": "Found 2 products"`, `"total": 2`, "friendly"} {
		assert.Contains(t, prompt, s)
	}
}

func TestParseArguments(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    map[string]any
		wantErr bool
	}{
		{
			name: "plain json",
			raw:  `{"productId":"p1","quantity":2}`,
			want: map[string]any{"productId": "p1", "quantity": json.Number("2")},
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"query\":\"shoes\"}\n```",
			want: map[string]any{"query": "shoes"},
		},
		{
			name: "empty",
			raw:  "  ",
			want: map[string]any{},
		},
		{
			name:    "garbage",
			raw:     "not json",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := llm.ParseArguments(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
