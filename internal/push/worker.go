package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/luna-live/backend/pkg/queue"
)

// ErrEndpointGone marks a subscription whose endpoint rejected delivery
// permanently. The deliverer removes the subscription and does not retry.
var ErrEndpointGone = fmt.Errorf("push endpoint gone")

// Deliverer sends push delivery jobs to subscription endpoints over HTTP.
type Deliverer struct {
	repo        *Repository
	client      *http.Client
	providerURL string
	logger      *zap.Logger
}

// NewDeliverer creates a push deliverer. When providerURL is set, all
// notifications are POSTed there instead of the per-subscription endpoint.
func NewDeliverer(repo *Repository, providerURL string, timeout time.Duration, logger *zap.Logger) *Deliverer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deliverer{
		repo:        repo,
		client:      &http.Client{Timeout: timeout},
		providerURL: providerURL,
		logger:      logger,
	}
}

// Deliver sends one notification. A 404 or 410 from the endpoint deletes the
// subscription and returns ErrEndpointGone; other failures are retryable.
func (d *Deliverer) Deliver(ctx context.Context, p queue.PushDeliveryPayload) error {
	target := p.Endpoint
	if d.providerURL != "" {
		target = d.providerURL
	}

	body, err := json.Marshal(map[string]interface{}{
		"endpoint": p.Endpoint,
		"event_id": p.EventID,
		"title":    p.Title,
		"body":     p.Body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("push delivery: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		if err := d.repo.Delete(ctx, p.SubscriptionID); err != nil {
			d.logger.Warn("delete gone subscription failed", zap.Error(err),
				zap.String("subscription_id", p.SubscriptionID.String()))
		} else {
			d.logger.Info("removed gone subscription",
				zap.String("subscription_id", p.SubscriptionID.String()),
				zap.Int("status", resp.StatusCode))
		}
		return ErrEndpointGone
	default:
		return fmt.Errorf("push delivery: endpoint returned %d", resp.StatusCode)
	}
}
