// Package chat is the synchronization core between the conversation store
// and the thread/step store. It is the only component that writes both
// stores for a single logical event, and it decides the ordering and the
// failure tolerance between the two writes.
package chat

import (
	"context"

	"jan-server/services/assistant-api/internal/domain/conversation"
	"jan-server/services/assistant-api/internal/domain/outbox"
)

// ConverseParams carries one text turn from the caller.
type ConverseParams struct {
	// ConversationID is the target conversation. Empty mints a new one.
	ConversationID string
	// SessionID selects the caller's saved settings, optional.
	SessionID string
	// Query is the user's message.
	Query string
	// Language overrides the session language for this turn, optional.
	Language string
}

// ConverseResult is the answer for one turn plus the identifiers the UI
// needs to reference it later. Persisted is false when the answer could not
// be recorded; the caller still gets the answer.
type ConverseResult struct {
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
	StepID         string `json:"step_id"`
	Answer         string `json:"answer"`
	RephrasedQuery string `json:"rephrased_query,omitempty"`
	Context        string `json:"context,omitempty"`
	RequestID      string `json:"request_id,omitempty"`
	Persisted      bool   `json:"persisted"`
}

// ConverseAudioParams carries one spoken turn.
type ConverseAudioParams struct {
	ConversationID string
	SessionID      string
	Audio          []byte
	ContentType    string
	// Locales are the candidate recognition locales. Empty falls back to
	// the session's locales, then the transcriber defaults.
	Locales []string
	// Language overrides the session language for this turn, optional.
	Language string
}

// ConverseAudioResult extends the text result with what was recognized.
type ConverseAudioResult struct {
	ConverseResult
	Transcript string `json:"transcript"`
	Locale     string `json:"locale,omitempty"`
}

// RecordTurnParams describes one completed exchange to persist.
type RecordTurnParams struct {
	ConversationID    string
	MessageID         string
	UserMessage       string
	Answer            string
	Context           string
	RephrasedQuery    string
	CheckQuery        string
	ComparisonDetails map[string]any
	RequestID         string
}

// Service is the caller-facing surface of the synchronization core.
type Service interface {
	// Converse answers one text turn and records it in both stores.
	Converse(ctx context.Context, params ConverseParams) (*ConverseResult, error)
	// ConverseAudio transcribes the audio and runs the same flow as
	// Converse for the recognized text.
	ConverseAudio(ctx context.Context, params ConverseAudioParams) (*ConverseAudioResult, error)
	// CreateConversation provisions an empty conversation record. An empty
	// id asks the service to mint one.
	CreateConversation(ctx context.Context, conversationID string) (*conversation.Conversation, error)
	// GetContext returns the conversation's role-tagged message history. An
	// id that has never recorded a turn gets an empty record and an empty
	// history, idempotently.
	GetContext(ctx context.Context, conversationID string) ([]conversation.Message, error)
	// RecordTurn appends one exchange to the conversation record, creating
	// the record on first use.
	RecordTurn(ctx context.Context, params RecordTurnParams) error
	// SubmitFeedback resolves the step to its turn, records the feedback in
	// the thread store, and mirrors it onto the conversation turn. Returns
	// the resolved message id.
	SubmitFeedback(ctx context.Context, stepID string, vote int, comment string) (string, error)
	// RetractFeedback removes the feedback entry for the message id and
	// resets the mirrored turn. Returns whether an entry was found; an
	// absent entry is not an error.
	RetractFeedback(ctx context.Context, messageID string) (bool, error)
	// DeleteConversation deletes the thread with its steps and then the
	// paired conversation record.
	DeleteConversation(ctx context.Context, conversationID string) error
	// ApplyMirrorTask applies one queued mirror write to the conversation
	// store, on behalf of the reconciliation workers.
	ApplyMirrorTask(ctx context.Context, task *outbox.Task) error
}
