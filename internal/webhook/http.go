package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// HTTPService delivers event payloads to a configured webhook URL.
type HTTPService struct {
	url        string
	httpClient *http.Client
	log        zerolog.Logger
	maxRetries int
	retryDelay time.Duration
}

// NewHTTPService creates a webhook service posting to url. An empty url
// disables delivery; notifications become no-ops.
func NewHTTPService(url string, log zerolog.Logger) *HTTPService {
	return &HTTPService{
		url: url,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log:        log.With().Str("component", "webhook").Logger(),
		maxRetries: 3,
		retryDelay: 2 * time.Second,
	}
}

// NotifyFeedback sends a feedback.recorded event.
func (s *HTTPService) NotifyFeedback(ctx context.Context, conversationID, messageID string, vote int, comment string) error {
	payload := EventPayload{
		Event:          EventFeedbackRecorded,
		ConversationID: conversationID,
		MessageID:      messageID,
		Vote:           &vote,
		Comment:        comment,
		OccurredAt:     time.Now().UTC().Format(time.RFC3339),
	}
	return s.send(ctx, payload)
}

// NotifyAbandoned sends a mirror.abandoned event.
func (s *HTTPService) NotifyAbandoned(ctx context.Context, conversationID, messageID, kind string, cause error) error {
	payload := EventPayload{
		Event:          EventMirrorAbandoned,
		ConversationID: conversationID,
		MessageID:      messageID,
		Kind:           kind,
		OccurredAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if cause != nil {
		payload.Error = &ErrorDetails{
			Code:    "mirror_abandoned",
			Message: cause.Error(),
		}
	}
	return s.send(ctx, payload)
}

func (s *HTTPService) send(ctx context.Context, payload EventPayload) error {
	if s.url == "" {
		s.log.Debug().
			Str("event", payload.Event).
			Msg("no webhook url configured, skipping notification")
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.retryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create webhook request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "Jan-Assistant-API/1.0")
		req.Header.Set("X-Jan-Event", payload.Event)
		req.Header.Set("X-Jan-Conversation-ID", payload.ConversationID)

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
			s.log.Warn().
				Err(err).
				Str("event", payload.Event).
				Int("attempt", attempt).
				Msg("webhook request failed")
			continue
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			s.log.Info().
				Str("event", payload.Event).
				Str("conversation_id", payload.ConversationID).
				Int("attempt", attempt).
				Msg("webhook delivered")
			return nil
		}

		lastErr = fmt.Errorf("webhook returned status %d", resp.StatusCode)
		s.log.Warn().
			Str("event", payload.Event).
			Int("status", resp.StatusCode).
			Int("attempt", attempt).
			Msg("webhook rejected")
	}

	return fmt.Errorf("webhook delivery failed after %d attempts: %w", s.maxRetries, lastErr)
}

var _ Service = (*HTTPService)(nil)
