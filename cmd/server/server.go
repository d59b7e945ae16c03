package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"jan-server/services/assistant-api/internal/config"
	"jan-server/services/assistant-api/internal/domain/chat"
	"jan-server/services/assistant-api/internal/domain/conversation"
	domainserving "jan-server/services/assistant-api/internal/domain/serving"
	domainsession "jan-server/services/assistant-api/internal/domain/session"
	domainspeech "jan-server/services/assistant-api/internal/domain/speech"
	"jan-server/services/assistant-api/internal/domain/thread"
	domaintranslate "jan-server/services/assistant-api/internal/domain/translate"
	"jan-server/services/assistant-api/internal/infrastructure/auth"
	"jan-server/services/assistant-api/internal/infrastructure/crontab"
	"jan-server/services/assistant-api/internal/infrastructure/database"
	"jan-server/services/assistant-api/internal/infrastructure/logger"
	"jan-server/services/assistant-api/internal/infrastructure/observability"
	"jan-server/services/assistant-api/internal/infrastructure/outbox"
	conversationrepo "jan-server/services/assistant-api/internal/infrastructure/repository/conversation"
	threadrepo "jan-server/services/assistant-api/internal/infrastructure/repository/thread"
	"jan-server/services/assistant-api/internal/infrastructure/serving"
	"jan-server/services/assistant-api/internal/infrastructure/session"
	"jan-server/services/assistant-api/internal/infrastructure/speech"
	"jan-server/services/assistant-api/internal/infrastructure/translate"
	"jan-server/services/assistant-api/internal/interfaces/httpserver"
	"jan-server/services/assistant-api/internal/webhook"
	"jan-server/services/assistant-api/internal/worker"
)

// @title Assistant API
// @version 1.0
// @description Conversational assistant with dual-store persistence, feedback mirroring, and optional speech turns.
// @contact.name Jan Server Team
// @contact.url https://github.com/janhq/jan-server
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth validator")
	}

	conversationService := conversation.NewService(conversationrepo.NewRepository(db))
	threadService := thread.NewService(threadrepo.NewRepository(db))

	servingProvider := newServingProvider(cfg, log)
	translator := newTranslator(cfg, log)
	transcriber, synthesizer := newSpeechClients(cfg, log)

	sessions, err := newSessionStore(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize session store")
	}

	mirrorQueue := outbox.NewPostgresQueue(db, log)
	notifier := webhook.NewHTTPService(cfg.WebhookURL, log)

	chatService := chat.NewService(
		conversationService,
		threadService,
		servingProvider,
		translator,
		transcriber,
		sessions,
		mirrorQueue,
		notifier,
		cfg.ServingContextLength,
		log,
	)

	workerPool := worker.NewPool(
		mirrorQueue,
		chatService,
		notifier,
		worker.Config{
			WorkerCount:  cfg.WorkerCount,
			TaskTimeout:  cfg.WorkerTaskTimeout,
			PollInterval: cfg.WorkerPollInterval,
		},
		log,
	)

	if err := workerPool.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("start worker pool")
	}
	defer func() {
		log.Info().Msg("stopping worker pool")
		workerPool.Stop()
	}()

	queueCron := crontab.NewCrontab(mirrorQueue, cfg.StaleTaskAge, log)
	go func() {
		if err := queueCron.Run(ctx); err != nil {
			log.Error().Err(err).Msg("queue maintenance stopped")
		}
	}()

	httpServer := httpserver.New(cfg, log, chatService, threadService, synthesizer, sessions, authValidator)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func newServingProvider(cfg *config.Config, log zerolog.Logger) domainserving.Provider {
	switch cfg.ServingProvider {
	case config.ProviderOpenAI:
		return serving.NewOpenAIClient(serving.OpenAIConfig{
			BaseURL: cfg.OpenAIBaseURL,
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
		}, log)
	default:
		return serving.NewDatabricksClient(serving.DatabricksConfig{
			Host:         cfg.DatabricksHost,
			Token:        cfg.DatabricksToken,
			EndpointName: cfg.ServingEndpointName,
			Timeout:      cfg.ServingTimeout,
		}, log)
	}
}

// newTranslator returns nil when translation is disabled; turns then pass
// through in the serving language.
func newTranslator(cfg *config.Config, log zerolog.Logger) domaintranslate.Translator {
	if !cfg.TranslateEnabled {
		return nil
	}
	return translate.NewClient(translate.Config{
		Endpoint: cfg.TranslateEndpoint,
		Key:      cfg.TranslateKey,
		Region:   cfg.TranslateRegion,
	}, log)
}

// newSpeechClients returns nil clients when speech is disabled; the audio
// endpoints then answer with a not-implemented error.
func newSpeechClients(cfg *config.Config, log zerolog.Logger) (domainspeech.Transcriber, domainspeech.Synthesizer) {
	if !cfg.SpeechEnabled {
		return nil, nil
	}
	client := speech.NewClient(speech.Config{
		Region:  cfg.SpeechRegion,
		Key:     cfg.SpeechKey,
		Timeout: cfg.SpeechTimeout,
	}, log)
	return client, client
}

func newSessionStore(cfg *config.Config, log zerolog.Logger) (domainsession.Store, error) {
	if cfg.RedisURL != "" {
		return session.NewRedisStore(session.RedisConfig{
			URL: cfg.RedisURL,
			TTL: cfg.SessionTTL,
		}, log)
	}
	return session.NewMemoryStore(cfg.SessionCacheSize, cfg.SessionTTL)
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
