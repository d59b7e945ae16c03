// Package translate provides the Azure Translator client used to move text
// between the caller's language and the serving endpoint's language.
package translate

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	domain "jan-server/services/assistant-api/internal/domain/translate"
	"jan-server/services/assistant-api/internal/infrastructure/metrics"
	"jan-server/services/assistant-api/internal/utils/platformerrors"
)

const translateAPIVersion = "3.0"

// Config configures the Azure Translator client. Endpoint is the service
// base URL without the /translate path.
type Config struct {
	Endpoint string
	Key      string
	Region   string
	Timeout  time.Duration
}

// Client implements domain.Translator against the Azure Translator API.
type Client struct {
	httpClient *resty.Client
	log        zerolog.Logger
}

// NewClient creates an Azure Translator client.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: resty.New().
			SetBaseURL(cfg.Endpoint).
			SetHeader("Ocp-Apim-Subscription-Key", cfg.Key).
			SetHeader("Ocp-Apim-Subscription-Region", cfg.Region).
			SetHeader("Content-Type", "application/json").
			SetTimeout(timeout),
		log: log.With().Str("component", "azure-translate").Logger(),
	}
}

type translateRequest struct {
	Text string `json:"text"`
}

type translateResult struct {
	DetectedLanguage *detectedLanguage `json:"detectedLanguage"`
	Translations     []translatedText  `json:"translations"`
}

type detectedLanguage struct {
	Language string  `json:"language"`
	Score    float64 `json:"score"`
}

type translatedText struct {
	Text string `json:"text"`
	To   string `json:"to"`
}

// Translate converts text between languages. An empty from lets the service
// detect the source language.
func (c *Client) Translate(ctx context.Context, text, from, to string) (string, error) {
	if text == "" {
		return "", nil
	}

	request := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("api-version", translateAPIVersion).
		SetQueryParam("to", to).
		SetHeader("X-ClientTraceId", uuid.NewString()).
		SetBody([]translateRequest{{Text: text}})
	if from != "" {
		request.SetQueryParam("from", from)
	}

	var results []translateResult
	resp, err := request.SetResult(&results).Post("/translate")
	if err != nil {
		metrics.RecordSpeechCall("translate", "error")
		return "", platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal,
			"translator unreachable",
			err,
			"translate-call-error",
		)
	}
	if resp.IsError() {
		metrics.RecordSpeechCall("translate", "error")
		return "", c.statusError(ctx, resp)
	}
	metrics.RecordSpeechCall("translate", "ok")

	if len(results) == 0 || len(results[0].Translations) == 0 {
		return "", platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal,
			"empty translation response",
			nil,
			"translate-empty-response",
		)
	}

	if detected := results[0].DetectedLanguage; detected != nil {
		c.log.Debug().
			Str("language", detected.Language).
			Float64("score", detected.Score).
			Msg("detected source language")
	}

	return results[0].Translations[0].Text, nil
}

func (c *Client) statusError(ctx context.Context, resp *resty.Response) error {
	errorType := platformerrors.ErrorTypeExternal
	if resp.StatusCode() == http.StatusTooManyRequests {
		errorType = platformerrors.ErrorTypeRateLimited
	}
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerInfrastructure,
		errorType,
		fmt.Sprintf("translation failed: %d %s", resp.StatusCode(), resp.String()),
		nil,
		"translate-status-error",
	)
}

var _ domain.Translator = (*Client)(nil)
