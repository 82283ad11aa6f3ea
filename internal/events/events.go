// Package events publishes claim workflow notifications to a message
// broker. The broker is optional; a nil Publisher is a no-op so the
// workflow never depends on one being configured.
package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Message represents a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker-agnostic operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// ClaimStatusChanged is emitted after a claim transitions between
// workflow states.
type ClaimStatusChanged struct {
	ClaimID    int       `json:"claim_id"`
	UserID     int       `json:"user_id"`
	ActorID    int       `json:"actor_id"`
	FromStatus int       `json:"from_status"`
	ToStatus   int       `json:"to_status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher sends claim events to a single channel. Publishing is
// best-effort: failures are logged, never returned, so a broker outage
// cannot fail an approval.
type Publisher struct {
	backend Backend
	channel string
	logger  *zap.Logger
}

// NewPublisher constructs a Publisher over the given backend.
func NewPublisher(backend Backend, channel string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		backend: backend,
		channel: channel,
		logger:  logger,
	}
}

// ClaimStatusChanged publishes a status-change event. Safe to call on
// a nil Publisher.
func (p *Publisher) ClaimStatusChanged(ctx context.Context, event ClaimStatusChanged) {
	if p == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("marshal claim status event", zap.Error(err))
		return
	}

	attrs := map[string]string{
		"claim_id":  strconv.Itoa(event.ClaimID),
		"to_status": strconv.Itoa(event.ToStatus),
	}
	if _, err := p.backend.Publish(ctx, p.channel, data, attrs); err != nil {
		p.logger.Warn("publish claim status event",
			zap.Int("claim_id", event.ClaimID),
			zap.Error(err),
		)
	}
}

// Close closes the underlying backend. Safe to call on a nil Publisher.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.backend.Close()
}
