package conversation

import (
	"time"
)

// ===============================================
// Conversation Structure
// ===============================================

// PartitionSuffix is appended to the conversation ID to build the partition
// value stored alongside the document.
const PartitionSuffix = "_partkey"

// Conversation is the model-facing record of a dialogue. It holds the turn
// history that gets flattened into context for the serving endpoint, plus the
// mirrored feedback state for each turn.
type Conversation struct {
	ID             uint      `json:"-"`
	PublicID       string    `json:"id"`
	PartitionValue string    `json:"partition_value"`
	Turns          []Turn    `json:"turns"`
	Version        int64     `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Turn captures one user/assistant exchange along with the retrieval
// artifacts the serving endpoint reported for it.
//
// MessageID is unique within a conversation. Feedback operations locate a
// turn by linear scan over it.
type Turn struct {
	MessageID         string         `json:"message_id"`
	UserMessage       string         `json:"user_message"`
	RephrasedMessage  string         `json:"rephrased_message,omitempty"`
	CheckQuery        string         `json:"check_query,omitempty"`
	AIAnswer          string         `json:"ai_answer"`
	Context           string         `json:"context,omitempty"`
	ComparisonDetails map[string]any `json:"comparison_details,omitempty"`
	FeedbackVote      int            `json:"feedback_vote"`
	FeedbackText      string         `json:"feedback_text,omitempty"`
	Timestamp         time.Time      `json:"timestamp"`
	RequestID         string         `json:"request_id,omitempty"`
}

// ===============================================
// Message Types
// ===============================================

// Role indicates who authored a context message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry in the flattened context sent to the serving
// endpoint.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ===============================================
// Factory Functions
// ===============================================

// NewConversation creates an empty conversation record for the given public
// ID.
func NewConversation(publicID string) *Conversation {
	now := time.Now().UTC()
	return &Conversation{
		PublicID:       publicID,
		PartitionValue: publicID + PartitionSuffix,
		Turns:          []Turn{},
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// NewTurn creates a turn for the given exchange. Feedback starts unset.
func NewTurn(messageID, userMessage, aiAnswer string) Turn {
	return Turn{
		MessageID:   messageID,
		UserMessage: userMessage,
		AIAnswer:    aiAnswer,
		Timestamp:   time.Now().UTC(),
	}
}

// ===============================================
// Mutations
// ===============================================

// AppendTurn adds a turn to the end of the history.
func (c *Conversation) AppendTurn(turn Turn) {
	c.Turns = append(c.Turns, turn)
	c.UpdatedAt = time.Now().UTC()
}

// FindTurn returns the turn with the given message ID, or nil.
func (c *Conversation) FindTurn(messageID string) *Turn {
	for i := range c.Turns {
		if c.Turns[i].MessageID == messageID {
			return &c.Turns[i]
		}
	}
	return nil
}

// SetFeedback records a vote and optional comment on the turn with the given
// message ID. Returns false when no such turn exists.
func (c *Conversation) SetFeedback(messageID string, vote int, comment string) bool {
	turn := c.FindTurn(messageID)
	if turn == nil {
		return false
	}
	turn.FeedbackVote = vote
	turn.FeedbackText = comment
	c.UpdatedAt = time.Now().UTC()
	return true
}

// ResetFeedback clears the vote and comment on the turn with the given
// message ID. Returns false when no such turn exists.
func (c *Conversation) ResetFeedback(messageID string) bool {
	turn := c.FindTurn(messageID)
	if turn == nil {
		return false
	}
	turn.FeedbackVote = 0
	turn.FeedbackText = ""
	c.UpdatedAt = time.Now().UTC()
	return true
}

// History flattens the turn list into role-tagged messages, oldest first,
// in the payload shape the serving endpoint expects as prior context.
//
// Each turn contributes a user message if its user message is non-empty,
// then an assistant message if its answer is non-empty. Turn order is
// preserved.
func (c *Conversation) History() []Message {
	messages := make([]Message, 0, len(c.Turns)*2)
	for _, turn := range c.Turns {
		if turn.UserMessage != "" {
			messages = append(messages, Message{Role: RoleUser, Content: turn.UserMessage})
		}
		if turn.AIAnswer != "" {
			messages = append(messages, Message{Role: RoleAssistant, Content: turn.AIAnswer})
		}
	}
	return messages
}
