package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/arman-qz/parking-system/internal/domain/models"
	"github.com/arman-qz/parking-system/internal/domain/types"
	"github.com/arman-qz/parking-system/pkg/logger"
	wrap "github.com/arman-qz/parking-system/pkg/logger/wrapper"
	"github.com/arman-qz/parking-system/pkg/metrics"
	"github.com/arman-qz/parking-system/pkg/rabbit"
)

const (
	SessionExchange = "parking_topic"

	KeySessionStarted = "session.started"
	KeySessionStopped = "session.stopped"
	KeySessionPaid    = "session.paid"
)

// SessionBroker publishes parking-session lifecycle events. Publishing is
// best-effort: callers fire it after their transaction commits and only log
// failures.
type SessionBroker struct {
	client   *rabbit.RabbitMQ
	exchange string

	l logger.Logger
}

func NewSessionBroker(client *rabbit.RabbitMQ, log logger.Logger) *SessionBroker {
	return &SessionBroker{
		client:   client,
		exchange: SessionExchange,

		l: log,
	}
}

func (b *SessionBroker) PublishSessionStarted(ctx context.Context, msg models.SessionStartedMessage) error {
	ctx = wrap.WithAction(ctx, "rabbitmq_publish_session_started")
	return b.publish(ctx, KeySessionStarted, msg.CorrelationID, msg)
}

func (b *SessionBroker) PublishSessionStopped(ctx context.Context, msg models.SessionStoppedMessage) error {
	ctx = wrap.WithAction(ctx, "rabbitmq_publish_session_stopped")
	return b.publish(ctx, KeySessionStopped, msg.CorrelationID, msg)
}

func (b *SessionBroker) PublishSessionPaid(ctx context.Context, msg models.SessionPaidMessage) error {
	ctx = wrap.WithAction(ctx, "rabbitmq_publish_session_paid")
	return b.publish(ctx, KeySessionPaid, msg.CorrelationID, msg)
}

func (b *SessionBroker) publish(ctx context.Context, key, correlationID string, msg any) (err error) {
	defer func() {
		metrics.RecordRabbitMQPublish(string(types.DriverService), key, err)
	}()

	if err := b.client.EnsureConnection(ctx); err != nil {
		b.l.Error(ctx, "ensure connection failed", err)
		return wrap.Error(ctx, err)
	}

	if err := b.client.Channel.ExchangeDeclare(b.exchange, "topic", true, false, false, false, nil); err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to declare exchange: %w", err))
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to marshal message: %w", err))
	}

	if err := retry(5, time.Second, func() error {
		if err := b.client.Channel.PublishWithContext(
			ctx,
			b.exchange, // exchange
			key,        // routing key
			false,      // mandatory
			false,      // immediate
			amqp091.Publishing{
				ContentType:   "application/json",
				CorrelationId: correlationID,
				Body:          body,
				Timestamp:     time.Now(),
			},
		); err != nil {
			return fmt.Errorf("failed to publish with context: %w", err)
		}

		return nil
	}); err != nil {
		return wrap.Error(ctx, err)
	}

	return nil
}

func retry(n int, sleep time.Duration, fn func() error) error {
	var err error
	for range n {
		if err = fn(); err == nil {
			return nil
		}
		time.Sleep(sleep)
	}
	return err
}
