package thread

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "jan-server/services/assistant-api/internal/domain/thread"
	"jan-server/services/assistant-api/internal/infrastructure/database/entities"
	"jan-server/services/assistant-api/internal/utils/platformerrors"
)

// Repository persists thread and step records in PostgreSQL. Thread feedback
// is stored as one JSONB document per thread; steps are individual rows keyed
// by public ID.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a thread repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ===============================================
// Threads
// ===============================================

// FindThreadByPublicID fetches a thread by its public ID. Returns (nil, nil)
// when no record exists.
func (r *Repository) FindThreadByPublicID(ctx context.Context, publicID string) (*domain.Thread, error) {
	defer track("thread_find")()

	var entity entities.Thread
	if err := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch thread",
			err,
			"thread-find-error",
		)
	}
	return r.decodeThread(ctx, &entity)
}

// FindThreadByFeedbackMessageID locates the thread whose feedback document
// contains an entry for the message, using a JSONB containment probe.
func (r *Repository) FindThreadByFeedbackMessageID(ctx context.Context, messageID string) (*domain.Thread, error) {
	defer track("thread_find_by_feedback")()

	probe, err := json.Marshal([]map[string]string{{"message_id": messageID}})
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeInternal,
			"failed to encode feedback probe",
			err,
			"thread-feedback-probe-error",
		)
	}

	var entity entities.Thread
	if err := r.db.WithContext(ctx).
		Where("feedback @> ?", datatypes.JSON(probe)).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to search thread feedback",
			err,
			"thread-feedback-search-error",
		)
	}
	return r.decodeThread(ctx, &entity)
}

// CreateThread inserts the thread record.
func (r *Repository) CreateThread(ctx context.Context, t *domain.Thread) error {
	defer track("thread_create")()

	entity, err := entities.NewSchemaThread(t)
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeInternal,
			"failed to encode thread",
			err,
			"thread-encode-error",
		)
	}

	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeConflict,
				fmt.Sprintf("thread already exists: %s", t.PublicID),
				err,
				"thread-create-conflict",
			)
		}
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create thread",
			err,
			"thread-create-error",
		)
	}

	t.ID = entity.ID
	t.CreatedAt = entity.CreatedAt
	t.UpdatedAt = entity.UpdatedAt
	return nil
}

// ReplaceThread overwrites the record when its stored version still matches
// the version the caller read. The stored version is bumped on success.
func (r *Repository) ReplaceThread(ctx context.Context, t *domain.Thread) error {
	defer track("thread_replace")()

	entity, err := entities.NewSchemaThread(t)
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeInternal,
			"failed to encode thread",
			err,
			"thread-encode-error",
		)
	}

	result := r.db.WithContext(ctx).
		Model(&entities.Thread{}).
		Where("public_id = ? AND version = ?", t.PublicID, t.Version).
		Updates(map[string]interface{}{
			"feedback":   entity.Feedback,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to replace thread",
			result.Error,
			"thread-replace-error",
		)
	}
	if result.RowsAffected == 0 {
		return r.replaceMiss(ctx, t.PublicID)
	}
	return nil
}

// replaceMiss reports whether a failed conditional replace lost a version
// race or targeted a record that no longer exists.
func (r *Repository) replaceMiss(ctx context.Context, publicID string) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Thread{}).
		Where("public_id = ?", publicID).
		Count(&count).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to check thread",
			err,
			"thread-replace-check-error",
		)
	}
	if count == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("thread not found: %s", publicID),
			nil,
			"thread-replace-not-found",
		)
	}
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerRepository,
		platformerrors.ErrorTypeConflict,
		fmt.Sprintf("thread modified concurrently: %s", publicID),
		nil,
		"thread-replace-conflict",
	)
}

// DeleteThread removes the thread record.
func (r *Repository) DeleteThread(ctx context.Context, publicID string) error {
	defer track("thread_delete")()

	result := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		Delete(&entities.Thread{})
	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete thread",
			result.Error,
			"thread-delete-error",
		)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("thread not found: %s", publicID),
			nil,
			"thread-delete-not-found",
		)
	}
	return nil
}

// ListThreads returns a page of threads ordered newest first, plus the total
// record count. A non-empty userID narrows both to that user's threads.
func (r *Repository) ListThreads(ctx context.Context, userID string, limit, offset int) ([]domain.Thread, int64, error) {
	defer track("thread_list")()

	countQuery := r.db.WithContext(ctx).Model(&entities.Thread{})
	if userID != "" {
		countQuery = countQuery.Where("user_id = ?", userID)
	}

	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to count threads",
			err,
			"thread-count-error",
		)
	}

	query := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []entities.Thread
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list threads",
			err,
			"thread-list-error",
		)
	}

	threads := make([]domain.Thread, 0, len(rows))
	for i := range rows {
		t, err := r.decodeThread(ctx, &rows[i])
		if err != nil {
			return nil, 0, err
		}
		threads = append(threads, *t)
	}
	return threads, total, nil
}

func (r *Repository) decodeThread(ctx context.Context, entity *entities.Thread) (*domain.Thread, error) {
	t, err := entity.EtoD()
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeInternal,
			"failed to decode thread",
			err,
			"thread-decode-error",
		)
	}
	return t, nil
}

// ===============================================
// Steps
// ===============================================

// SaveStep inserts the step, or updates the existing row when the public ID
// is already present.
func (r *Repository) SaveStep(ctx context.Context, step *domain.Step) error {
	defer track("step_save")()

	entity := entities.NewSchemaStep(step)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "public_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"thread_id", "parent_id", "kind", "input", "output"}),
		}).
		Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to save step",
			err,
			"step-save-error",
		)
	}

	step.ID = entity.ID
	step.CreatedAt = entity.CreatedAt
	return nil
}

// FindStepByPublicID fetches a step by its public ID. Returns (nil, nil) when
// no record exists.
func (r *Repository) FindStepByPublicID(ctx context.Context, publicID string) (*domain.Step, error) {
	defer track("step_find")()

	var entity entities.Step
	if err := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch step",
			err,
			"step-find-error",
		)
	}
	return entity.EtoD(), nil
}

// ListStepsByThreadID returns every step in the thread, oldest first.
func (r *Repository) ListStepsByThreadID(ctx context.Context, threadID string) ([]domain.Step, error) {
	defer track("step_list")()

	var rows []entities.Step
	if err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list steps",
			err,
			"step-list-error",
		)
	}

	steps := make([]domain.Step, 0, len(rows))
	for i := range rows {
		steps = append(steps, *rows[i].EtoD())
	}
	return steps, nil
}

// DeleteStep removes a single step record. Deleting an absent step is a
// no-op.
func (r *Repository) DeleteStep(ctx context.Context, publicID string) error {
	defer track("step_delete")()

	if err := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		Delete(&entities.Step{}).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete step",
			err,
			"step-delete-error",
		)
	}
	return nil
}
