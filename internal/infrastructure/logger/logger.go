package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"jan-server/services/assistant-api/internal/config"
)

// New creates a zerolog.Logger for the assistant service. LOG_FORMAT
// selects raw JSON for container log pipelines or a console writer for
// local development.
func New(cfg *config.Config) zerolog.Logger {
	var out zerolog.Logger
	switch strings.ToLower(cfg.LogFormat) {
	case "json":
		out = zerolog.New(os.Stdout)
	default:
		out = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}
	return out.With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Logger().
		Level(parseLevel(cfg.LogLevel))
}

func parseLevel(raw string) zerolog.Level {
	if raw == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
