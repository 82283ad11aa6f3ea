package events

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/cmcs/claimserver/config"
)

// NewBackend constructs the configured broker backend.
func NewBackend(ctx context.Context, cfg config.EventsConfig) (Backend, error) {
	switch cfg.Backend {
	case "rabbitmq":
		return NewRabbitMQClient(cfg.RabbitMQ)
	case "pubsub":
		return NewPubSubClient(ctx, cfg.PubSub)
	case "":
		return nil, errors.New("events backend is not configured")
	default:
		return nil, errors.New("unknown events backend " + cfg.Backend)
	}
}

// Listener consumes claim status events from a channel and logs them.
// It is the counterpart of Publisher, used by the listen command so
// operators can follow the approval pipeline without a database query.
type Listener struct {
	backend Backend
	channel string
	logger  *zap.Logger
}

// NewListener constructs a Listener over the given backend.
func NewListener(backend Backend, channel string, logger *zap.Logger) *Listener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Listener{
		backend: backend,
		channel: channel,
		logger:  logger,
	}
}

// Listen subscribes to the channel and handles events until ctx ends.
func (l *Listener) Listen(ctx context.Context) error {
	return l.backend.Subscribe(ctx, l.channel, l.handle)
}

// Close closes the underlying backend.
func (l *Listener) Close() error {
	return l.backend.Close()
}

func (l *Listener) handle(ctx context.Context, msg Message) error {
	var event ClaimStatusChanged
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		// Malformed payloads are dropped, not redelivered forever.
		l.logger.Warn("drop malformed claim status event",
			zap.String("message_id", msg.ID),
			zap.Error(err),
		)
		return nil
	}

	l.logger.Info("claim status changed",
		zap.Int("claim_id", event.ClaimID),
		zap.Int("user_id", event.UserID),
		zap.Int("actor_id", event.ActorID),
		zap.Int("from_status", event.FromStatus),
		zap.Int("to_status", event.ToStatus),
		zap.Time("occurred_at", event.OccurredAt),
	)
	return nil
}
