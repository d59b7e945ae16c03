package conversation

import (
	"context"
	"fmt"

	domainErrors "jan-server/services/assistant-api/internal/domain/errors"
	"jan-server/services/assistant-api/internal/domain/retry"
	"jan-server/services/assistant-api/internal/utils/platformerrors"
)

// Service defines the business logic over conversation records.
//
// Writes go through read-modify-write loops that re-apply the mutation to a
// fresh read whenever the conditional replace reports a version conflict.
type Service interface {
	// Create inserts a new empty conversation. Fails with a Conflict error
	// when the ID is already taken.
	Create(ctx context.Context, publicID string) (*Conversation, error)
	// EnsureExists initializes an empty conversation if none exists yet.
	// Idempotent: losing a creation race is not an error.
	EnsureExists(ctx context.Context, publicID string) (*Conversation, error)
	// History returns the flattened context messages. Pure read: an absent
	// conversation yields an empty sequence, never a mutation.
	History(ctx context.Context, publicID string) ([]Message, error)
	// AppendTurn adds a turn to an existing conversation. Fails with a
	// NotFound error when the conversation is absent.
	AppendTurn(ctx context.Context, publicID string, turn Turn) error
	// SetFeedback records a vote and comment on the turn with the given
	// message ID. Fails with a NotFound error when the conversation or the
	// turn is absent.
	SetFeedback(ctx context.Context, publicID, messageID string, vote int, comment string) error
	// ResetFeedback returns the turn's feedback to its unset state. Fails
	// with a NotFound error when the conversation or the turn is absent.
	ResetFeedback(ctx context.Context, publicID, messageID string) error
	// Delete removes the conversation record.
	Delete(ctx context.Context, publicID string) error
}

// DefaultService implements the Service interface.
type DefaultService struct {
	repo     Repository
	occRetry *retry.Executor
}

// NewService creates a new conversation service.
func NewService(repo Repository) Service {
	return &DefaultService{
		repo:     repo,
		occRetry: retry.NewExecutor(retry.ConflictPolicy(), domainErrors.Classify),
	}
}

// Create inserts a new empty conversation record.
func (s *DefaultService) Create(ctx context.Context, publicID string) (*Conversation, error) {
	conv := NewConversation(publicID)
	if err := s.repo.Create(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// EnsureExists initializes an empty conversation record if none exists.
func (s *DefaultService) EnsureExists(ctx context.Context, publicID string) (*Conversation, error) {
	var result *Conversation
	err := s.occRetry.Execute(ctx, func(ctx context.Context, attempt int) error {
		existing, err := s.repo.FindByPublicID(ctx, publicID)
		if err != nil {
			return err
		}
		if existing != nil {
			result = existing
			return nil
		}

		created := NewConversation(publicID)
		if err := s.repo.Create(ctx, created); err != nil {
			// A conflict means another writer created it between our read
			// and insert. The next attempt picks up their record.
			return err
		}
		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// History returns the conversation flattened into role-tagged messages.
func (s *DefaultService) History(ctx context.Context, publicID string) ([]Message, error) {
	conv, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return []Message{}, nil
	}
	return conv.History(), nil
}

// AppendTurn adds a turn to the end of an existing conversation.
func (s *DefaultService) AppendTurn(ctx context.Context, publicID string, turn Turn) error {
	return s.occRetry.Execute(ctx, func(ctx context.Context, attempt int) error {
		conv, err := s.repo.FindByPublicID(ctx, publicID)
		if err != nil {
			return err
		}
		if conv == nil {
			return s.notFound(ctx, fmt.Sprintf("conversation %s not found", publicID))
		}
		if conv.FindTurn(turn.MessageID) != nil {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerDomain,
				platformerrors.ErrorTypeConflict,
				fmt.Sprintf("turn %s already recorded in conversation %s", turn.MessageID, publicID),
				nil,
				"",
			)
		}

		conv.AppendTurn(turn)
		return s.repo.Replace(ctx, conv)
	})
}

// SetFeedback records a vote and comment on the matching turn.
func (s *DefaultService) SetFeedback(ctx context.Context, publicID, messageID string, vote int, comment string) error {
	return s.occRetry.Execute(ctx, func(ctx context.Context, attempt int) error {
		conv, err := s.repo.FindByPublicID(ctx, publicID)
		if err != nil {
			return err
		}
		if conv == nil {
			return s.notFound(ctx, fmt.Sprintf("conversation %s not found", publicID))
		}
		if !conv.SetFeedback(messageID, vote, comment) {
			return s.notFound(ctx, fmt.Sprintf("turn %s not found in conversation %s", messageID, publicID))
		}

		return s.repo.Replace(ctx, conv)
	})
}

// ResetFeedback clears the vote and comment on the matching turn.
func (s *DefaultService) ResetFeedback(ctx context.Context, publicID, messageID string) error {
	return s.occRetry.Execute(ctx, func(ctx context.Context, attempt int) error {
		conv, err := s.repo.FindByPublicID(ctx, publicID)
		if err != nil {
			return err
		}
		if conv == nil {
			return s.notFound(ctx, fmt.Sprintf("conversation %s not found", publicID))
		}
		if !conv.ResetFeedback(messageID) {
			return s.notFound(ctx, fmt.Sprintf("turn %s not found in conversation %s", messageID, publicID))
		}

		return s.repo.Replace(ctx, conv)
	})
}

// Delete removes the conversation record.
func (s *DefaultService) Delete(ctx context.Context, publicID string) error {
	return s.repo.Delete(ctx, publicID)
}

func (s *DefaultService) notFound(ctx context.Context, message string) error {
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerDomain,
		platformerrors.ErrorTypeNotFound,
		message,
		nil,
		"",
	)
}
