package responses

import (
	"time"

	"jan-server/services/assistant-api/internal/domain/chat"
	"jan-server/services/assistant-api/internal/domain/conversation"
	"jan-server/services/assistant-api/internal/domain/thread"
)

// ConversationPayload is returned when a conversation is created or ensured.
type ConversationPayload struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// FromConversation maps the domain conversation to its payload.
func FromConversation(conv *conversation.Conversation) ConversationPayload {
	return ConversationPayload{
		ID:        conv.PublicID,
		CreatedAt: conv.CreatedAt,
	}
}

// ContextPayload carries the role-tagged model context for a conversation.
type ContextPayload struct {
	ConversationID string                 `json:"conversation_id"`
	Messages       []conversation.Message `json:"messages"`
}

// AudioChatPayload extends the audio turn result with optional synthesized
// speech, base64 encoded.
type AudioChatPayload struct {
	chat.ConverseAudioResult
	Audio string `json:"audio,omitempty"`
}

// FeedbackPayload identifies the turn a feedback submission landed on.
type FeedbackPayload struct {
	MessageID string `json:"message_id"`
}

// RetractPayload reports whether a feedback entry existed to remove.
type RetractPayload struct {
	Removed bool `json:"removed"`
}

// ThreadListPayload wraps a thread page for consistent list responses.
type ThreadListPayload struct {
	Data  []thread.Thread `json:"data"`
	Total int64           `json:"total"`
}

// ThreadDetailPayload joins a thread with its steps.
type ThreadDetailPayload struct {
	Thread *thread.Thread `json:"thread"`
	Steps  []thread.Step  `json:"steps"`
}

// DeletedPayload acknowledges a cascade delete.
type DeletedPayload struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}
