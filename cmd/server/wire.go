//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"jan-server/services/assistant-api/internal/config"
	"jan-server/services/assistant-api/internal/domain/chat"
	"jan-server/services/assistant-api/internal/domain/conversation"
	domainoutbox "jan-server/services/assistant-api/internal/domain/outbox"
	domainserving "jan-server/services/assistant-api/internal/domain/serving"
	domainsession "jan-server/services/assistant-api/internal/domain/session"
	domainspeech "jan-server/services/assistant-api/internal/domain/speech"
	"jan-server/services/assistant-api/internal/domain/thread"
	domaintranslate "jan-server/services/assistant-api/internal/domain/translate"
	"jan-server/services/assistant-api/internal/infrastructure/auth"
	"jan-server/services/assistant-api/internal/infrastructure/database"
	"jan-server/services/assistant-api/internal/infrastructure/logger"
	"jan-server/services/assistant-api/internal/infrastructure/outbox"
	conversationrepo "jan-server/services/assistant-api/internal/infrastructure/repository/conversation"
	threadrepo "jan-server/services/assistant-api/internal/infrastructure/repository/thread"
	"jan-server/services/assistant-api/internal/interfaces/httpserver"
	"jan-server/services/assistant-api/internal/webhook"
)

var assistantSet = wire.NewSet(
	conversationrepo.NewRepository,
	wire.Bind(new(conversation.Repository), new(*conversationrepo.Repository)),
	conversation.NewService,
	threadrepo.NewRepository,
	wire.Bind(new(thread.Repository), new(*threadrepo.Repository)),
	thread.NewService,
	newServingProvider,
	newTranslator,
	newTranscriber,
	newSynthesizer,
	newSessionStore,
	outbox.NewPostgresQueue,
	wire.Bind(new(domainoutbox.Queue), new(*outbox.PostgresQueue)),
	newWebhookService,
	wire.Bind(new(webhook.Service), new(*webhook.HTTPService)),
	newChatService,
)

// BuildApplication demonstrates how to assemble the assistant service with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newDatabaseConfig,
		newGormDB,
		newAuthValidator,
		assistantSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func newAuthValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, error) {
	return auth.NewValidator(ctx, cfg, log)
}

func newTranscriber(cfg *config.Config, log zerolog.Logger) domainspeech.Transcriber {
	transcriber, _ := newSpeechClients(cfg, log)
	return transcriber
}

func newSynthesizer(cfg *config.Config, log zerolog.Logger) domainspeech.Synthesizer {
	_, synthesizer := newSpeechClients(cfg, log)
	return synthesizer
}

func newWebhookService(cfg *config.Config, log zerolog.Logger) *webhook.HTTPService {
	return webhook.NewHTTPService(cfg.WebhookURL, log)
}

func newChatService(
	cfg *config.Config,
	conversations conversation.Service,
	threads thread.Service,
	provider domainserving.Provider,
	translator domaintranslate.Translator,
	transcriber domainspeech.Transcriber,
	sessions domainsession.Store,
	mirrorQueue domainoutbox.Queue,
	notifier webhook.Service,
	log zerolog.Logger,
) chat.Service {
	return chat.NewService(conversations, threads, provider, translator, transcriber, sessions, mirrorQueue, notifier, cfg.ServingContextLength, log)
}
