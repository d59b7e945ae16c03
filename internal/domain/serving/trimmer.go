package serving

import "unicode/utf8"

const (
	// DefaultContextLength is used when the endpoint's context length is unknown.
	DefaultContextLength = 128000

	// TokenEstimateRatio estimates ~4 characters per token (conservative estimate).
	TokenEstimateRatio = 4

	// MinMessagesToKeep ensures the most recent exchange always survives trimming.
	MinMessagesToKeep = 2

	// SafetyMarginRatio reserves space for the response and overhead (20% margin).
	SafetyMarginRatio = 0.80
)

// EstimateTokenCount provides a rough estimate of token count for a message.
// Uses character count / 4 as a conservative approximation.
func EstimateTokenCount(content string) int {
	return utf8.RuneCountInString(content) / TokenEstimateRatio
}

// EstimateHistoryTokenCount estimates total tokens across all messages.
func EstimateHistoryTokenCount(messages []Message) int {
	total := 0
	for _, msg := range messages {
		// Overhead for role and structure (~10 tokens per message)
		total += 10
		total += EstimateTokenCount(msg.Content)
	}
	return total
}

// TrimResult contains the result of trimming a history.
type TrimResult struct {
	Messages        []Message
	TrimmedCount    int
	EstimatedTokens int
}

// TrimHistoryToFitContext drops the oldest messages until the history fits
// within the context length limit. The most recent exchange is never
// dropped, even if it alone exceeds the budget.
func TrimHistoryToFitContext(messages []Message, contextLength int) TrimResult {
	if contextLength <= 0 {
		contextLength = DefaultContextLength
	}

	maxTokens := int(float64(contextLength) * SafetyMarginRatio)

	currentTokens := EstimateHistoryTokenCount(messages)
	if currentTokens <= maxTokens {
		return TrimResult{
			Messages:        messages,
			TrimmedCount:    0,
			EstimatedTokens: currentTokens,
		}
	}

	result := make([]Message, len(messages))
	copy(result, messages)
	trimmedCount := 0

	for currentTokens > maxTokens && len(result) > MinMessagesToKeep {
		result = result[1:]
		trimmedCount++
		currentTokens = EstimateHistoryTokenCount(result)
	}

	return TrimResult{
		Messages:        result,
		TrimmedCount:    trimmedCount,
		EstimatedTokens: currentTokens,
	}
}
