package broadcast

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// WebhookSink POSTs each event frame to a fixed URL.
type WebhookSink struct {
	httpClient *resty.Client
	url        string
	logger     *zap.Logger
}

// NewWebhookSink retries up to retries times on transport errors.
func NewWebhookSink(url string, timeout time.Duration, retries int, logger *zap.Logger) *WebhookSink {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &WebhookSink{httpClient: client, url: url, logger: logger}
}

var _ Publisher = (*WebhookSink)(nil)

func (s *WebhookSink) Publish(ctx context.Context, ev Event) error {
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetBody(ev).
		Post(s.url)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	if resp.IsError() {
		s.logger.Warn("Webhook rejected event",
			zap.String("topic", ev.Topic),
			zap.Int("status_code", resp.StatusCode()),
		)
		return fmt.Errorf("webhook returned status %d", resp.StatusCode())
	}
	return nil
}
