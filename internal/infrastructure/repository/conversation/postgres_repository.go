package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	domain "jan-server/services/assistant-api/internal/domain/conversation"
	"jan-server/services/assistant-api/internal/infrastructure/database/entities"
	"jan-server/services/assistant-api/internal/utils/platformerrors"
)

// Repository persists conversation records in PostgreSQL, storing the turn
// sequence as one JSONB document per conversation.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a conversation repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByPublicID fetches a conversation by its public ID. Returns (nil, nil)
// when no record exists.
func (r *Repository) FindByPublicID(ctx context.Context, publicID string) (*domain.Conversation, error) {
	defer track("conversation_find")()

	var entity entities.Conversation
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
			"failed to fetch conversation",
			err,
			"conversation-find-error",
		)
	}

	conv, err := entity.EtoD()
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeInternal,
			"failed to decode conversation",
			err,
			"conversation-decode-error",
		)
	}
	return conv, nil
}

// Create inserts the conversation record.
func (r *Repository) Create(ctx context.Context, conv *domain.Conversation) error {
	defer track("conversation_create")()

	entity, err := entities.NewSchemaConversation(conv)
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeInternal,
			"failed to encode conversation",
			err,
			"conversation-encode-error",
		)
	}

	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeConflict,
				fmt.Sprintf("conversation already exists: %s", conv.PublicID),
				err,
				"conversation-create-conflict",
			)
		}
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create conversation",
			err,
			"conversation-create-error",
		)
	}

	conv.ID = entity.ID
	conv.CreatedAt = entity.CreatedAt
	conv.UpdatedAt = entity.UpdatedAt
	return nil
}

// Replace overwrites the record when its stored version still matches the
// version the caller read. The stored version is bumped on success.
func (r *Repository) Replace(ctx context.Context, conv *domain.Conversation) error {
	defer track("conversation_replace")()

	entity, err := entities.NewSchemaConversation(conv)
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeInternal,
			"failed to encode conversation",
			err,
			"conversation-encode-error",
		)
	}

	result := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("public_id = ? AND version = ?", conv.PublicID, conv.Version).
		Updates(map[string]interface{}{
			"partition_value": entity.PartitionValue,
			"turns":           entity.Turns,
			"version":         gorm.Expr("version + 1"),
			"updated_at":      time.Now().UTC(),
		})
	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to replace conversation",
			result.Error,
			"conversation-replace-error",
		)
	}
	if result.RowsAffected == 0 {
		return r.replaceMiss(ctx, conv.PublicID)
	}
	return nil
}

// replaceMiss reports whether a failed conditional replace lost a version
// race or targeted a record that no longer exists.
func (r *Repository) replaceMiss(ctx context.Context, publicID string) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("public_id = ?", publicID).
		Count(&count).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to check conversation",
			err,
			"conversation-replace-check-error",
		)
	}
	if count == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("conversation not found: %s", publicID),
			nil,
			"conversation-replace-not-found",
		)
	}
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerRepository,
		platformerrors.ErrorTypeConflict,
		fmt.Sprintf("conversation modified concurrently: %s", publicID),
		nil,
		"conversation-replace-conflict",
	)
}

// Delete removes the conversation record.
func (r *Repository) Delete(ctx context.Context, publicID string) error {
	defer track("conversation_delete")()

	result := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		Delete(&entities.Conversation{})
	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete conversation",
			result.Error,
			"conversation-delete-error",
		)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("conversation not found: %s", publicID),
			nil,
			"conversation-delete-not-found",
		)
	}
	return nil
}
