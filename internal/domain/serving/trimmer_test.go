package serving_test

import (
	"strings"
	"testing"

	"jan-server/services/assistant-api/internal/domain/serving"
)

func TestEstimateTokenCount(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected int
	}{
		{"empty string", "", 0},
		{"short text", "hello world!", 3},
		{"exact multiple", strings.Repeat("a", 400), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := serving.EstimateTokenCount(tt.content); got != tt.expected {
				t.Errorf("EstimateTokenCount() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestTrimHistoryToFitContext_NoTrimNeeded(t *testing.T) {
	messages := []serving.Message{
		{Role: serving.RoleUser, Content: "hello"},
		{Role: serving.RoleAssistant, Content: "hi there"},
	}

	result := serving.TrimHistoryToFitContext(messages, 1000)
	if result.TrimmedCount != 0 {
		t.Errorf("TrimmedCount = %d, want 0", result.TrimmedCount)
	}
	if len(result.Messages) != 2 {
		t.Errorf("Messages length = %d, want 2", len(result.Messages))
	}
}

func TestTrimHistoryToFitContext_DropsOldestFirst(t *testing.T) {
	long := strings.Repeat("x", 2000) // ~500 tokens each
	messages := []serving.Message{
		{Role: serving.RoleUser, Content: long},
		{Role: serving.RoleAssistant, Content: long},
		{Role: serving.RoleUser, Content: "latest question"},
		{Role: serving.RoleAssistant, Content: "latest answer"},
	}

	// Budget fits roughly two long messages after the safety margin.
	result := serving.TrimHistoryToFitContext(messages, 700)

	if result.TrimmedCount == 0 {
		t.Fatal("TrimmedCount = 0, want oldest messages dropped")
	}
	last := result.Messages[len(result.Messages)-1]
	if last.Content != "latest answer" {
		t.Errorf("last message = %q, want the most recent answer kept", last.Content)
	}
}

func TestTrimHistoryToFitContext_KeepsMostRecentExchange(t *testing.T) {
	huge := strings.Repeat("y", 100000)
	messages := []serving.Message{
		{Role: serving.RoleUser, Content: huge},
		{Role: serving.RoleAssistant, Content: huge},
		{Role: serving.RoleUser, Content: huge},
	}

	result := serving.TrimHistoryToFitContext(messages, 100)
	if len(result.Messages) != serving.MinMessagesToKeep {
		t.Errorf("Messages length = %d, want %d even over budget", len(result.Messages), serving.MinMessagesToKeep)
	}
}

func TestTrimHistoryToFitContext_ZeroContextUsesDefault(t *testing.T) {
	messages := []serving.Message{
		{Role: serving.RoleUser, Content: "hello"},
	}

	result := serving.TrimHistoryToFitContext(messages, 0)
	if result.TrimmedCount != 0 {
		t.Errorf("TrimmedCount = %d, want 0 under the default budget", result.TrimmedCount)
	}
}
