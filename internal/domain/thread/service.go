package thread

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	domainErrors "jan-server/services/assistant-api/internal/domain/errors"
	"jan-server/services/assistant-api/internal/domain/retry"
	"jan-server/services/assistant-api/internal/utils/identity"
	"jan-server/services/assistant-api/internal/utils/platformerrors"
)

// stepDeleteConcurrency bounds the fan-out when deleting a thread's steps.
const stepDeleteConcurrency = 4

// Service defines the business logic over thread and step records.
type Service interface {
	// GetThread returns the thread. Fails with a NotFound error when absent.
	GetThread(ctx context.Context, publicID string) (*Thread, error)
	// ListThreads returns a page of threads and the total count, scoped to
	// one user's threads when userID is non-empty.
	ListThreads(ctx context.Context, userID string, limit, offset int) ([]Thread, int64, error)
	// RecordStep validates the step's logical name against the closed kind
	// set and persists it. Unknown names fail with a Validation error.
	RecordStep(ctx context.Context, params RecordStepParams) (*Step, error)
	// GetStep returns the step. Fails with a NotFound error when absent.
	GetStep(ctx context.Context, publicID string) (*Step, error)
	// ListSteps returns all steps for a thread, oldest first.
	ListSteps(ctx context.Context, threadID string) ([]Step, error)
	// UpsertFeedbackEntry records a feedback entry on the thread, creating
	// the thread first if it does not exist yet.
	UpsertFeedbackEntry(ctx context.Context, threadID string, entry FeedbackEntry) error
	// RemoveFeedbackEntry locates the thread containing a feedback entry for
	// the message ID and removes it. Returns the owning thread ID and
	// whether a match was found; an absent entry is not an error.
	RemoveFeedbackEntry(ctx context.Context, messageID string) (string, bool, error)
	// DeleteThreadAndSteps deletes the thread record, then each of its step
	// records individually. Not transactional: a failure mid-sequence can
	// leave orphaned steps behind.
	DeleteThreadAndSteps(ctx context.Context, threadID string) error
}

// RecordStepParams contains parameters for recording a step event.
type RecordStepParams struct {
	StepID   string
	ThreadID string
	ParentID string
	Name     string
	Input    string
	Output   string
}

// DefaultService implements the Service interface.
type DefaultService struct {
	repo     Repository
	occRetry *retry.Executor
}

// NewService creates a new thread service.
func NewService(repo Repository) Service {
	return &DefaultService{
		repo:     repo,
		occRetry: retry.NewExecutor(retry.ConflictPolicy(), domainErrors.Classify),
	}
}

// GetThread returns the thread with the given public ID.
func (s *DefaultService) GetThread(ctx context.Context, publicID string) (*Thread, error) {
	t, err := s.repo.FindThreadByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, s.notFound(ctx, fmt.Sprintf("thread %s not found", publicID))
	}
	return t, nil
}

// ListThreads returns a page of threads and the total count.
func (s *DefaultService) ListThreads(ctx context.Context, userID string, limit, offset int) ([]Thread, int64, error) {
	return s.repo.ListThreads(ctx, userID, limit, offset)
}

// RecordStep resolves the step kind and persists the step.
func (s *DefaultService) RecordStep(ctx context.Context, params RecordStepParams) (*Step, error) {
	kind, err := ParseStepKind(params.Name)
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			fmt.Sprintf("step %s has unrecognized kind %q", params.StepID, params.Name),
			err,
			"",
		)
	}

	step := &Step{
		PublicID:  params.StepID,
		ThreadID:  params.ThreadID,
		ParentID:  params.ParentID,
		Kind:      kind,
		Input:     params.Input,
		Output:    params.Output,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.SaveStep(ctx, step); err != nil {
		return nil, err
	}
	return step, nil
}

// GetStep returns the step with the given public ID.
func (s *DefaultService) GetStep(ctx context.Context, publicID string) (*Step, error) {
	step, err := s.repo.FindStepByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if step == nil {
		return nil, s.notFound(ctx, fmt.Sprintf("step %s not found", publicID))
	}
	return step, nil
}

// ListSteps returns all steps for a thread.
func (s *DefaultService) ListSteps(ctx context.Context, threadID string) ([]Step, error) {
	return s.repo.ListStepsByThreadID(ctx, threadID)
}

// UpsertFeedbackEntry records a feedback entry on the thread, lazily
// creating the thread record on first write. New threads take their owner
// from the request context and their display name from the rated message.
func (s *DefaultService) UpsertFeedbackEntry(ctx context.Context, threadID string, entry FeedbackEntry) error {
	return s.occRetry.Execute(ctx, func(ctx context.Context, attempt int) error {
		t, err := s.repo.FindThreadByPublicID(ctx, threadID)
		if err != nil {
			return err
		}
		if t == nil {
			created := NewThread(threadID)
			created.UserID = identity.SubjectFromContext(ctx)
			created.Name = NameFromMessage(entry.UserMessage)
			created.UpsertFeedback(entry)
			// A conflict here means another writer created the thread
			// between our read and insert. The next attempt re-reads it.
			return s.repo.CreateThread(ctx, created)
		}

		t.UpsertFeedback(entry)
		return s.repo.ReplaceThread(ctx, t)
	})
}

// RemoveFeedbackEntry removes the feedback entry for the given message ID
// from whichever thread holds it.
func (s *DefaultService) RemoveFeedbackEntry(ctx context.Context, messageID string) (string, bool, error) {
	var (
		threadID string
		found    bool
	)
	err := s.occRetry.Execute(ctx, func(ctx context.Context, attempt int) error {
		threadID = ""
		found = false

		t, err := s.repo.FindThreadByFeedbackMessageID(ctx, messageID)
		if err != nil {
			return err
		}
		if t == nil {
			return nil
		}
		if !t.RemoveFeedback(messageID) {
			return nil
		}
		if err := s.repo.ReplaceThread(ctx, t); err != nil {
			return err
		}

		threadID = t.PublicID
		found = true
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return threadID, found, nil
}

// DeleteThreadAndSteps deletes the thread record and then each step record.
func (s *DefaultService) DeleteThreadAndSteps(ctx context.Context, threadID string) error {
	if err := s.repo.DeleteThread(ctx, threadID); err != nil {
		return err
	}

	steps, err := s.repo.ListStepsByThreadID(ctx, threadID)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(stepDeleteConcurrency)
	for _, step := range steps {
		publicID := step.PublicID
		g.Go(func() error {
			return s.repo.DeleteStep(gctx, publicID)
		})
	}
	return g.Wait()
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
