package interactions

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jvaldezc/tienda-core/internal/config"
	"github.com/jvaldezc/tienda-core/internal/domain/models"
)

// Client exposes the interaction sink operations used by the application.
type Client interface {
	Send(ctx context.Context, event models.InteractionEvent) error
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds an interaction sink client using the provided configuration values.
func NewClient(cfg config.InteractionsConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)

	if cfg.APIKey != "" {
		restyClient.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey))
	}

	return &APIClient{httpClient: restyClient}
}

// apiError represents the sink's error payload.
type apiError struct {
	Error string `json:"error"`
}

// Send delivers one interaction event to the sink.
func (c *APIClient) Send(ctx context.Context, event models.InteractionEvent) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(event).
		SetError(apiErr).
		Post("/interactions")
	if err != nil {
		return fmt.Errorf("send interaction event: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("interaction sink error: code=%d, message=%s", resp.StatusCode(), apiErr.Error)
	}

	return nil
}
