package serving

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	domain "jan-server/services/assistant-api/internal/domain/serving"
	"jan-server/services/assistant-api/internal/infrastructure/metrics"
	"jan-server/services/assistant-api/internal/utils/platformerrors"
)

// OpenAIConfig configures the OpenAI-compatible serving client.
type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// OpenAIClient implements domain.Provider against any OpenAI-compatible chat
// completion API. Unlike the Databricks endpoint it reports no retrieval
// artifacts, only the answer content and a request ID.
type OpenAIClient struct {
	client *openai.Client
	model  string
	log    zerolog.Logger
}

// NewOpenAIClient creates an OpenAI-compatible serving client.
func NewOpenAIClient(cfg OpenAIConfig, log zerolog.Logger) *OpenAIClient {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		log:    log.With().Str("component", "openai-serving").Logger(),
	}
}

// Generate sends the prior context plus the new user turn as a chat
// completion request.
func (c *OpenAIClient) Generate(ctx context.Context, query string, history []domain.Message) (*domain.Answer, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	for _, msg := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: query,
	})

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	duration := time.Since(start).Seconds()

	if err != nil {
		metrics.RecordServingCall("openai", "error", duration)
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal,
			"chat completion failed",
			err,
			"openai-call-error",
		)
	}
	metrics.RecordServingCall("openai", "ok", duration)

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal,
			"empty chat completion response",
			nil,
			"openai-empty-response",
		)
	}

	return &domain.Answer{
		Content:   resp.Choices[0].Message.Content,
		RequestID: resp.ID,
	}, nil
}

var _ domain.Provider = (*OpenAIClient)(nil)
