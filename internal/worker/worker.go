// Package worker processes background jobs: push deliveries and invite emails.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/luna-live/backend/internal/email"
	"github.com/luna-live/backend/internal/push"
	"github.com/luna-live/backend/pkg/queue"
)

// Processor consumes the worker queues and dispatches jobs by type.
type Processor struct {
	queue     *queue.Queue
	deliverer *push.Deliverer
	mailer    email.Mailer
	logger    *zap.Logger
}

// NewProcessor creates a job processor.
func NewProcessor(q *queue.Queue, deliverer *push.Deliverer, mailer email.Mailer, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{queue: q, deliverer: deliverer, mailer: mailer, logger: logger}
}

// Process executes one job.
func (p *Processor) Process(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypePushDelivery:
		var payload queue.PushDeliveryPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
		err := p.deliverer.Deliver(ctx, payload)
		if errors.Is(err, push.ErrEndpointGone) {
			// Subscription already removed; nothing left to deliver to.
			return nil
		}
		return err

	case queue.JobTypeInviteEmail:
		var payload queue.InviteEmailPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
		subject := email.InviteSubject(payload.EventTitle)
		body := email.InviteBody(payload.EventTitle, payload.InviteURL)
		if err := p.mailer.Send(payload.RecipientEmail, subject, body); err != nil {
			return fmt.Errorf("invite email: %w", err)
		}
		p.logger.Info("invite email sent",
			zap.String("invitation_id", payload.InvitationID.String()),
			zap.String("event_id", payload.EventID.String()))
		return nil

	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *Processor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("worker stopping")
			return
		default:
		}

		job, origin, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("worker stopping")
				return
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job, origin); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
