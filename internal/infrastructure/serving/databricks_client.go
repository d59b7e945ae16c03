// Package serving provides clients for the hosted model endpoints that
// generate assistant answers.
package serving

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	domain "jan-server/services/assistant-api/internal/domain/serving"
	"jan-server/services/assistant-api/internal/infrastructure/metrics"
	"jan-server/services/assistant-api/internal/utils/platformerrors"
)

// DatabricksConfig configures the Databricks serving endpoint client.
type DatabricksConfig struct {
	Host         string
	Token        string
	EndpointName string
	Timeout      time.Duration
}

// DatabricksClient implements domain.Provider against a Databricks model
// serving endpoint.
type DatabricksClient struct {
	httpClient *resty.Client
	endpoint   string
	log        zerolog.Logger
}

// NewDatabricksClient creates a Resty-backed Databricks client.
func NewDatabricksClient(cfg DatabricksConfig, log zerolog.Logger) *DatabricksClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 75 * time.Second
	}
	return &DatabricksClient{
		httpClient: resty.New().
			SetBaseURL(cfg.Host).
			SetHeader("Content-Type", "application/json").
			SetAuthToken(cfg.Token).
			SetTimeout(timeout),
		endpoint: cfg.EndpointName,
		log:      log.With().Str("component", "databricks-serving").Logger(),
	}
}

type invocationRequest struct {
	Messages []domain.Message `json:"messages"`
}

type invocationResponse struct {
	Messages         []domain.Message   `json:"messages"`
	CustomOutputs    *invocationOutputs `json:"custom_outputs"`
	DatabricksOutput *databricksOutput  `json:"databricks_output"`
}

type invocationOutputs struct {
	RephrasedQuery    string         `json:"rephrased_query"`
	CheckQuery        string         `json:"check_query"`
	Context           string         `json:"context"`
	ComparisonDetails map[string]any `json:"comparison_details"`
}

type databricksOutput struct {
	RequestID string `json:"databricks_request_id"`
}

// Generate sends the prior context plus the new user turn to the serving
// endpoint and returns the generated answer with its retrieval artifacts.
func (c *DatabricksClient) Generate(ctx context.Context, query string, history []domain.Message) (*domain.Answer, error) {
	messages := make([]domain.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, domain.Message{Role: domain.RoleUser, Content: query})

	start := time.Now()
	var result invocationResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(invocationRequest{Messages: messages}).
		SetResult(&result).
		Post(fmt.Sprintf("/serving-endpoints/%s/invocations", c.endpoint))
	duration := time.Since(start).Seconds()

	if err != nil {
		metrics.RecordServingCall("databricks", "error", duration)
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal,
			"serving endpoint unreachable",
			err,
			"databricks-call-error",
		)
	}
	if resp.IsError() {
		metrics.RecordServingCall("databricks", "error", duration)
		return nil, c.statusError(ctx, resp)
	}
	metrics.RecordServingCall("databricks", "ok", duration)

	if len(result.Messages) == 0 || result.Messages[0].Content == "" {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal,
			"empty response from serving endpoint",
			nil,
			"databricks-empty-response",
		)
	}

	answer := &domain.Answer{Content: result.Messages[0].Content}
	if outputs := result.CustomOutputs; outputs != nil {
		answer.RephrasedQuery = outputs.RephrasedQuery
		answer.CheckQuery = outputs.CheckQuery
		answer.Context = outputs.Context
		answer.ComparisonDetails = outputs.ComparisonDetails
	}
	if result.DatabricksOutput != nil {
		answer.RequestID = result.DatabricksOutput.RequestID
	}

	c.log.Debug().
		Str("endpoint", c.endpoint).
		Str("request_id", answer.RequestID).
		Float64("duration_sec", duration).
		Msg("serving endpoint answered")

	return answer, nil
}

func (c *DatabricksClient) statusError(ctx context.Context, resp *resty.Response) error {
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
		fmt.Sprintf("serving endpoint error: %d %s", resp.StatusCode(), resp.String()),
		nil,
		"databricks-status-error",
	)
}

var _ domain.Provider = (*DatabricksClient)(nil)
