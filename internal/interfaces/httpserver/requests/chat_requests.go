package requests

// SendMessageRequest models POST /v1/chat/messages input. An empty
// conversation id asks the service to mint one.
type SendMessageRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message" binding:"required"`
	Language       string `json:"language,omitempty"`
	SessionID      string `json:"session_id,omitempty"`
}

// CreateConversationRequest models POST /v1/conversations input.
type CreateConversationRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
}
