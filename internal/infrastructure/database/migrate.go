package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"jan-server/services/assistant-api/internal/infrastructure/database/entities"
)

// AutoMigrate applies database schema changes for the conversation and
// thread stores plus the mirror task queue.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&entities.Conversation{},
		&entities.Thread{},
		&entities.Step{},
		&entities.MirrorTask{},
	); err != nil {
		return err
	}

	log.Info().Msg("database schema up to date")
	return nil
}
