package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	domainerrors "jan-server/services/assistant-api/internal/domain/errors"
	"jan-server/services/assistant-api/internal/domain/outbox"
	"jan-server/services/assistant-api/internal/domain/retry"
	"jan-server/services/assistant-api/internal/domain/status"
	"jan-server/services/assistant-api/internal/infrastructure/metrics"
	"jan-server/services/assistant-api/internal/infrastructure/observability"
	"jan-server/services/assistant-api/internal/webhook"
)

// Worker drains mirror tasks from the queue and applies them to the
// conversation store.
type Worker struct {
	id           int
	queue        outbox.Queue
	applier      outbox.Applier
	notifier     webhook.Service
	policy       retry.Policy
	taskTimeout  time.Duration
	pollInterval time.Duration
	log          zerolog.Logger
	stopChan     chan struct{}
}

// NewWorker creates a new reconciliation worker. The notifier may be nil;
// abandoned tasks then go unannounced.
func NewWorker(
	id int,
	queue outbox.Queue,
	applier outbox.Applier,
	notifier webhook.Service,
	policy retry.Policy,
	taskTimeout time.Duration,
	pollInterval time.Duration,
	log zerolog.Logger,
) *Worker {
	return &Worker{
		id:           id,
		queue:        queue,
		applier:      applier,
		notifier:     notifier,
		policy:       policy,
		taskTimeout:  taskTimeout,
		pollInterval: pollInterval,
		log:          log.With().Int("worker_id", id).Str("component", "worker").Logger(),
		stopChan:     make(chan struct{}),
	}
}

// Start begins processing tasks from the queue.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info().Msg("worker started")

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("worker stopped by context")
			return
		case <-w.stopChan:
			w.log.Info().Msg("worker stopped")
			return
		case <-ticker.C:
			w.processNextTask(ctx)
		}
	}
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() {
	close(w.stopChan)
}

func (w *Worker) processNextTask(ctx context.Context) {
	task, err := w.queue.Dequeue(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("failed to dequeue mirror task")
		return
	}

	if task == nil {
		// Nothing due.
		return
	}

	w.log.Info().
		Str("task_id", task.PublicID).
		Str("kind", string(task.Kind)).
		Str("conversation_id", task.ConversationID).
		Int("attempts", task.Attempts).
		Msg("applying mirror task")

	taskCtx, cancel := context.WithTimeout(ctx, w.taskTimeout)
	defer cancel()
	taskCtx, span := observability.StartMirrorTaskSpan(taskCtx, task.PublicID, string(task.Kind), task.Attempts)
	defer span.End()

	if err := w.applier.ApplyMirrorTask(taskCtx, task); err != nil {
		severity := domainerrors.Classify(err)
		observability.RecordError(span, err, severity.String())
		w.resolveFailure(ctx, task, err, severity)
		return
	}

	if err := w.queue.MarkCompleted(ctx, task.PublicID); err != nil {
		w.log.Error().Err(err).Str("task_id", task.PublicID).Msg("failed to mark task completed")
		return
	}

	metrics.RecordMirrorTask(string(task.Kind), "completed")
	w.log.Info().Str("task_id", task.PublicID).Msg("mirror task applied")
}

// resolveFailure routes a failed application by severity. The attempt was
// already counted when the task was claimed.
func (w *Worker) resolveFailure(ctx context.Context, task *outbox.Task, taskErr error, severity status.ErrorSeverity) {
	switch {
	case severity == status.ErrorSeveritySkippable:
		// The target record is gone; the stores cannot diverge over it.
		if err := w.queue.MarkCompleted(ctx, task.PublicID); err != nil {
			w.log.Error().Err(err).Str("task_id", task.PublicID).Msg("failed to mark task completed")
			return
		}
		metrics.RecordMirrorTask(string(task.Kind), "skipped")
		w.log.Info().
			Str("task_id", task.PublicID).
			Str("kind", string(task.Kind)).
			AnErr("cause", taskErr).
			Msg("mirror task target gone, nothing to reconcile")

	case severity.IsFatal():
		if err := w.queue.MarkAbandoned(ctx, task.PublicID, taskErr); err != nil {
			w.log.Error().Err(err).Str("task_id", task.PublicID).Msg("failed to mark task abandoned")
			return
		}
		metrics.RecordMirrorTask(string(task.Kind), "abandoned")
		w.log.Error().
			Err(taskErr).
			Str("task_id", task.PublicID).
			Str("kind", string(task.Kind)).
			Msg("mirror task failed fatally, abandoned")
		w.announceAbandoned(ctx, task, taskErr)

	case task.Attempts > w.policy.MaxRetries:
		if err := w.queue.MarkAbandoned(ctx, task.PublicID, taskErr); err != nil {
			w.log.Error().Err(err).Str("task_id", task.PublicID).Msg("failed to mark task abandoned")
			return
		}
		metrics.RecordMirrorTask(string(task.Kind), "abandoned")
		w.log.Error().
			Err(taskErr).
			Str("task_id", task.PublicID).
			Str("kind", string(task.Kind)).
			Int("attempts", task.Attempts).
			Msg("mirror task retry budget exhausted, abandoned")
		w.announceAbandoned(ctx, task, taskErr)

	default:
		delay := w.policy.CalculateDelay(task.Attempts)
		nextAttemptAt := time.Now().UTC().Add(delay)
		if err := w.queue.MarkFailed(ctx, task.PublicID, nextAttemptAt, taskErr); err != nil {
			w.log.Error().Err(err).Str("task_id", task.PublicID).Msg("failed to reschedule task")
			return
		}
		metrics.RecordMirrorTask(string(task.Kind), "retried")
		w.log.Warn().
			Err(taskErr).
			Str("task_id", task.PublicID).
			Str("kind", string(task.Kind)).
			Int("attempts", task.Attempts).
			Dur("retry_in", delay).
			Msg("mirror task failed, rescheduled")
	}
}

// announceAbandoned reports an abandoned task to the configured webhook so
// operators learn the stores stay diverged. Delivery is best effort.
func (w *Worker) announceAbandoned(ctx context.Context, task *outbox.Task, cause error) {
	if w.notifier == nil {
		return
	}
	if err := w.notifier.NotifyAbandoned(ctx, task.ConversationID, task.MessageID, string(task.Kind), cause); err != nil {
		w.log.Warn().Err(err).Str("task_id", task.PublicID).Msg("abandoned-task notification failed")
	}
}
