// Package outbox provides the PostgreSQL-backed mirror task queue.
package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"jan-server/services/assistant-api/internal/domain/outbox"
	"jan-server/services/assistant-api/internal/domain/status"
	"jan-server/services/assistant-api/internal/infrastructure/database/entities"
)

// PostgresQueue implements outbox.Queue using the mirror_tasks table.
type PostgresQueue struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewPostgresQueue creates a new PostgreSQL-backed mirror task queue.
func NewPostgresQueue(db *gorm.DB, log zerolog.Logger) *PostgresQueue {
	return &PostgresQueue{
		db:  db,
		log: log.With().Str("component", "mirror-queue").Logger(),
	}
}

// Enqueue records a task for later application.
func (q *PostgresQueue) Enqueue(ctx context.Context, task *outbox.Task) error {
	entity := entities.NewSchemaMirrorTask(task)
	if err := q.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("enqueue mirror task: %w", err)
	}
	task.ID = entity.ID
	return nil
}

// Dequeue claims the next due pending task. The claim marks the row in
// flight and counts the attempt in the same statement, so concurrent workers
// relying on SKIP LOCKED never double-claim. Returns (nil, nil) when nothing
// is due.
func (q *PostgresQueue) Dequeue(ctx context.Context) (*outbox.Task, error) {
	now := time.Now().UTC()
	var entity entities.MirrorTask

	err := q.db.WithContext(ctx).
		Raw(`UPDATE mirror_tasks
			SET status = ?, attempts = attempts + 1, updated_at = ?
			WHERE id = (
				SELECT id FROM mirror_tasks
				WHERE status = ? AND next_attempt_at <= ?
				ORDER BY next_attempt_at ASC
				LIMIT 1
				FOR UPDATE SKIP LOCKED
			)
			RETURNING *`,
			status.StatusInFlight.String(), now,
			status.StatusPending.String(), now,
		).
		Scan(&entity).Error
	if err != nil {
		return nil, fmt.Errorf("dequeue mirror task: %w", err)
	}

	// No rows returned leaves the entity zero-valued.
	if entity.ID == 0 {
		return nil, nil
	}

	q.log.Debug().
		Str("task_id", entity.PublicID).
		Str("kind", entity.Kind).
		Int("attempts", entity.Attempts).
		Msg("claimed mirror task")

	return entity.EtoD(), nil
}

// MarkCompleted finishes a claimed task. A task that lost its claim in the
// meantime is left alone.
func (q *PostgresQueue) MarkCompleted(ctx context.Context, publicID string) error {
	result := q.db.WithContext(ctx).
		Model(&entities.MirrorTask{}).
		Where("public_id = ? AND status = ?", publicID, status.StatusInFlight.String()).
		Updates(map[string]interface{}{
			"status":     status.StatusCompleted.String(),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("mark mirror task completed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// The claim was released as stale and the task moved on without us.
		q.log.Warn().Str("task_id", publicID).Msg("completed task no longer in flight")
	}
	return nil
}

// MarkFailed returns a task to pending, scheduled for another attempt.
func (q *PostgresQueue) MarkFailed(ctx context.Context, publicID string, nextAttemptAt time.Time, taskErr error) error {
	result := q.db.WithContext(ctx).
		Model(&entities.MirrorTask{}).
		Where("public_id = ? AND status = ?", publicID, status.StatusInFlight.String()).
		Updates(map[string]interface{}{
			"status":          status.StatusPending.String(),
			"next_attempt_at": nextAttemptAt,
			"last_error":      taskErr.Error(),
			"updated_at":      time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("mark mirror task failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("mirror task not in flight: %s", publicID)
	}
	return nil
}

// MarkAbandoned parks a task permanently.
func (q *PostgresQueue) MarkAbandoned(ctx context.Context, publicID string, taskErr error) error {
	result := q.db.WithContext(ctx).
		Model(&entities.MirrorTask{}).
		Where("public_id = ? AND status = ?", publicID, status.StatusInFlight.String()).
		Updates(map[string]interface{}{
			"status":     status.StatusAbandoned.String(),
			"last_error": taskErr.Error(),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("mark mirror task abandoned: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("mirror task not in flight: %s", publicID)
	}
	return nil
}

// ReleaseStale returns in-flight tasks older than the cutoff to pending so
// work claimed by a crashed worker is retried.
func (q *PostgresQueue) ReleaseStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	now := time.Now().UTC()
	result := q.db.WithContext(ctx).
		Model(&entities.MirrorTask{}).
		Where("status = ? AND updated_at < ?", status.StatusInFlight.String(), now.Add(-olderThan)).
		Updates(map[string]interface{}{
			"status":     status.StatusPending.String(),
			"updated_at": now,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("release stale mirror tasks: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		q.log.Info().
			Int64("count", result.RowsAffected).
			Dur("older_than", olderThan).
			Msg("released stale mirror tasks")
	}
	return result.RowsAffected, nil
}

// Depth returns the number of pending tasks.
func (q *PostgresQueue) Depth(ctx context.Context) (int64, error) {
	var count int64
	if err := q.db.WithContext(ctx).
		Model(&entities.MirrorTask{}).
		Where("status = ?", status.StatusPending.String()).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count pending mirror tasks: %w", err)
	}
	return count, nil
}
