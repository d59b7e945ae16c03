// Package speech provides the Azure Speech clients for transcribing caller
// audio and synthesizing spoken replies.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	domain "jan-server/services/assistant-api/internal/domain/speech"
	"jan-server/services/assistant-api/internal/infrastructure/metrics"
	"jan-server/services/assistant-api/internal/utils/platformerrors"
)

const transcribeAPIVersion = "2024-11-15"

// Config configures the Azure Speech clients. The endpoint overrides exist
// for tests; when empty they are derived from the region.
type Config struct {
	Region      string
	Key         string
	STTEndpoint string
	TTSEndpoint string
	Timeout     time.Duration
}

// Client implements both domain.Transcriber and domain.Synthesizer against
// the Azure Speech service.
type Client struct {
	sttClient *resty.Client
	ttsClient *resty.Client
	log       zerolog.Logger
}

// NewClient creates the Azure Speech client pair.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	sttEndpoint := cfg.STTEndpoint
	if sttEndpoint == "" {
		sttEndpoint = fmt.Sprintf("https://%s.api.cognitive.microsoft.com", cfg.Region)
	}
	ttsEndpoint := cfg.TTSEndpoint
	if ttsEndpoint == "" {
		ttsEndpoint = fmt.Sprintf("https://%s.tts.speech.microsoft.com", cfg.Region)
	}

	return &Client{
		sttClient: resty.New().
			SetBaseURL(sttEndpoint).
			SetHeader("Ocp-Apim-Subscription-Key", cfg.Key).
			SetTimeout(timeout),
		ttsClient: resty.New().
			SetBaseURL(ttsEndpoint).
			SetHeader("Ocp-Apim-Subscription-Key", cfg.Key).
			SetTimeout(timeout),
		log: log.With().Str("component", "azure-speech").Logger(),
	}
}

type transcribeDefinition struct {
	Locales []string `json:"locales"`
}

type transcribeResponse struct {
	DurationMilliseconds int64            `json:"durationMilliseconds"`
	CombinedPhrases      []combinedPhrase `json:"combinedPhrases"`
}

type combinedPhrase struct {
	Channel    int     `json:"channel"`
	Locale     string  `json:"locale"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Transcribe submits the audio to the fast transcription API and returns the
// recognized text. When the service recognizes the audio in more than one
// candidate locale, the phrase with the highest confidence wins. No
// recognizable speech yields an empty transcript, not an error.
func (c *Client) Transcribe(ctx context.Context, audio []byte, contentType string, locales []string) (*domain.Transcription, error) {
	if len(locales) == 0 {
		locales = domain.DefaultLocales
	}
	definition, err := json.Marshal(transcribeDefinition{Locales: locales})
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeInternal,
			"failed to encode transcription definition",
			err,
			"speech-definition-error",
		)
	}

	var result transcribeResponse
	resp, err := c.sttClient.R().
		SetContext(ctx).
		SetMultipartField("audio", "audio", contentType, bytes.NewReader(audio)).
		SetMultipartField("definition", "", "application/json", bytes.NewReader(definition)).
		SetQueryParam("api-version", transcribeAPIVersion).
		SetResult(&result).
		Post("/speechtotext/transcriptions:transcribe")
	if err != nil {
		metrics.RecordSpeechCall("transcribe", "error")
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal,
			"speech service unreachable",
			err,
			"speech-transcribe-error",
		)
	}
	if resp.IsError() {
		metrics.RecordSpeechCall("transcribe", "error")
		return nil, statusError(ctx, resp, "speech transcription")
	}
	metrics.RecordSpeechCall("transcribe", "ok")

	best := bestPhrase(result.CombinedPhrases)
	if best == nil {
		return &domain.Transcription{DurationMs: result.DurationMilliseconds}, nil
	}

	if len(result.CombinedPhrases) > 1 {
		c.log.Info().
			Str("locale", best.Locale).
			Float64("confidence", best.Confidence).
			Msg("selected highest confidence transcription")
	}

	return &domain.Transcription{
		Text:       best.Text,
		Locale:     best.Locale,
		Confidence: best.Confidence,
		DurationMs: result.DurationMilliseconds,
	}, nil
}

func bestPhrase(phrases []combinedPhrase) *combinedPhrase {
	var best *combinedPhrase
	for i := range phrases {
		if best == nil || phrases[i].Confidence > best.Confidence {
			best = &phrases[i]
		}
	}
	return best
}

var ssmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Synthesize renders the text as speech audio in RIFF 24kHz 16-bit mono PCM.
func (c *Client) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if voice == "" {
		voice = domain.DefaultVoice
	}
	ssml := fmt.Sprintf(
		"<speak version='1.0' xml:lang='en-US'><voice name='%s'>%s</voice></speak>",
		voice, ssmlEscaper.Replace(text),
	)

	resp, err := c.ttsClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/ssml+xml").
		SetHeader("X-Microsoft-OutputFormat", "riff-24khz-16bit-mono-pcm").
		SetBody(ssml).
		Post("/cognitiveservices/v1")
	if err != nil {
		metrics.RecordSpeechCall("synthesize", "error")
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal,
			"speech service unreachable",
			err,
			"speech-synthesize-error",
		)
	}
	if resp.IsError() {
		metrics.RecordSpeechCall("synthesize", "error")
		return nil, statusError(ctx, resp, "speech synthesis")
	}
	metrics.RecordSpeechCall("synthesize", "ok")

	return resp.Body(), nil
}

func statusError(ctx context.Context, resp *resty.Response, operation string) error {
	errorType := platformerrors.ErrorTypeExternal
	switch resp.StatusCode() {
	case http.StatusTooManyRequests:
		errorType = platformerrors.ErrorTypeRateLimited
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		errorType = platformerrors.ErrorTypeTimeout
	}
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerInfrastructure,
		errorType,
		fmt.Sprintf("%s failed: %d %s", operation, resp.StatusCode(), resp.String()),
		nil,
		"speech-status-error",
	)
}

var (
	_ domain.Transcriber = (*Client)(nil)
	_ domain.Synthesizer = (*Client)(nil)
)
