package notifier

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultWebhookTimeout = 10 * time.Second

// WebhookNotifier posts distribution outcomes to a configured HTTP endpoint.
type WebhookNotifier struct {
	client   *resty.Client
	endpoint string
}

func NewWebhookNotifier(endpoint string) (*WebhookNotifier, error) {
	client := resty.New()
	client.SetTimeout(defaultWebhookTimeout)
	client.SetRetryCount(0)

	return NewWebhookNotifierWithClient(endpoint, client)
}

func NewWebhookNotifierWithClient(endpoint string, client *resty.Client) (*WebhookNotifier, error) {
	trimmedEndpoint := strings.TrimSpace(endpoint)
	if trimmedEndpoint == "" {
		return nil, fmt.Errorf("webhook endpoint is required")
	}
	if _, err := url.ParseRequestURI(trimmedEndpoint); err != nil {
		return nil, fmt.Errorf("invalid webhook endpoint: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultWebhookTimeout)
	}
	client.SetRetryCount(0)

	return &WebhookNotifier{
		client:   client,
		endpoint: trimmedEndpoint,
	}, nil
}

func (n *WebhookNotifier) NotifyDistribution(ctx context.Context, event DistributionEvent) error {
	if n == nil || n.client == nil {
		return fmt.Errorf("notifier is not initialized")
	}
	if strings.TrimSpace(event.DistributionID) == "" {
		return fmt.Errorf("distribution id is required")
	}

	response, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(event).
		Post(n.endpoint)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	if response == nil {
		return fmt.Errorf("webhook returned empty response")
	}

	statusCode := response.StatusCode()
	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(response.String())
	if body == "" {
		return fmt.Errorf("webhook returned status %d", statusCode)
	}
	return fmt.Errorf("webhook returned status %d: %s", statusCode, body)
}
