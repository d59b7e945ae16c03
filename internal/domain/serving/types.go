// Package serving defines the contract for hosted model serving endpoints
// that answer user turns given prior conversation context.
package serving

import "context"

// Message is one entry of prior context sent to the serving endpoint.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Roles used in serving payloads.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Answer is the endpoint's reply for one user turn, including the retrieval
// artifacts some providers report alongside the content.
type Answer struct {
	Content           string         `json:"content"`
	RephrasedQuery    string         `json:"rephrased_query,omitempty"`
	CheckQuery        string         `json:"check_query,omitempty"`
	Context           string         `json:"context,omitempty"`
	ComparisonDetails map[string]any `json:"comparison_details,omitempty"`
	RequestID         string         `json:"request_id,omitempty"`
}

// Provider calls a hosted serving endpoint with the user's query and the
// prior context, and returns the generated answer.
type Provider interface {
	Generate(ctx context.Context, query string, history []Message) (*Answer, error)
}
