// Package webhook notifies external listeners about assistant events, such
// as recorded feedback and reconciliation tasks that were given up on.
package webhook

import (
	"context"
)

// Event names sent to webhook listeners.
const (
	EventFeedbackRecorded = "feedback.recorded"
	EventMirrorAbandoned  = "mirror.abandoned"
)

// Service delivers assistant event notifications.
type Service interface {
	// NotifyFeedback reports that a user filed feedback on a message.
	NotifyFeedback(ctx context.Context, conversationID, messageID string, vote int, comment string) error

	// NotifyAbandoned reports that a mirror task exhausted its retries and
	// the two stores remain diverged for this conversation.
	NotifyAbandoned(ctx context.Context, conversationID, messageID, kind string, cause error) error
}

// ErrorDetails contains machine readable error info.
type ErrorDetails struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// EventPayload is the structure sent to webhook URLs.
type EventPayload struct {
	Event          string        `json:"event"`
	ConversationID string        `json:"conversation_id"`
	MessageID      string        `json:"message_id,omitempty"`
	Kind           string        `json:"kind,omitempty"`
	Vote           *int          `json:"vote,omitempty"`
	Comment        string        `json:"comment,omitempty"`
	Error          *ErrorDetails `json:"error,omitempty"`
	OccurredAt     string        `json:"occurred_at"`
}
