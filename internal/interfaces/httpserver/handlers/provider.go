package handlers

import (
	"github.com/rs/zerolog"

	"jan-server/services/assistant-api/internal/domain/chat"
	"jan-server/services/assistant-api/internal/domain/session"
	"jan-server/services/assistant-api/internal/domain/speech"
	"jan-server/services/assistant-api/internal/domain/thread"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Chat         *ChatHandler
	Conversation *ConversationHandler
	Feedback     *FeedbackHandler
	Thread       *ThreadHandler
	Session      *SessionHandler
	Speech       *SpeechHandler
}

// NewProvider constructs the handler provider with domain services. The
// synthesizer may be nil when speech synthesis is not configured.
func NewProvider(
	chatService chat.Service,
	threadService thread.Service,
	synthesizer speech.Synthesizer,
	sessions session.Store,
	log zerolog.Logger,
) *Provider {
	return &Provider{
		Chat:         NewChatHandler(chatService, synthesizer, sessions, log),
		Conversation: NewConversationHandler(chatService, log),
		Feedback:     NewFeedbackHandler(chatService, log),
		Thread:       NewThreadHandler(threadService, chatService, log),
		Session:      NewSessionHandler(sessions, log),
		Speech:       NewSpeechHandler(synthesizer, sessions, log),
	}
}
