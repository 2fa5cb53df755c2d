package notify

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// DeclareQueue declares the durable notification queue.
func DeclareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("failed to declare queue %s: %w", name, err)
	}
	return q, nil
}

// Publisher is the subset of *amqp.Channel used to publish.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPNotifier publishes messages as JSON to a queue consumed by the
// notifier worker.
type AMQPNotifier struct {
	ch    Publisher
	queue string
	log   *zap.Logger
}

func NewAMQPNotifier(ch Publisher, queue string, log *zap.Logger) *AMQPNotifier {
	return &AMQPNotifier{ch: ch, queue: queue, log: log}
}

func (n *AMQPNotifier) Notify(ctx context.Context, msg Message) {
	body, err := json.Marshal(msg)
	if err != nil {
		n.log.Error("failed to encode notification", zap.Error(err))
		return
	}

	if err := n.ch.PublishWithContext(ctx,
		"",      // default exchange
		n.queue, // routing key
		true,    // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	); err != nil {
		n.log.Warn("failed to publish notification",
			zap.Error(err),
			zap.String("queue", n.queue),
			zap.Uint64("user_id", msg.UserID),
		)
	}
}
