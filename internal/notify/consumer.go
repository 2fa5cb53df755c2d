package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/yukikurage/workforce-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errBadPayload = errors.New("bad notification payload")

// Consumer stores queued notifications and optionally e-mails them.
type Consumer struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	mailer        Mailer
	log           *zap.Logger
}

// NewConsumer creates a Consumer. mailer may be nil.
func NewConsumer(notifications repository.NotificationRepository, users repository.UserRepository, mailer Mailer, log *zap.Logger) *Consumer {
	return &Consumer{
		notifications: notifications,
		users:         users,
		mailer:        mailer,
		log:           log,
	}
}

// Handle processes one message body. The returned bool tells whether the
// message is worth redelivering.
func (c *Consumer) Handle(ctx context.Context, body []byte) (requeue bool, err error) {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return false, fmt.Errorf("%w: %v", errBadPayload, err)
	}
	if msg.UserID == 0 || msg.Title == "" {
		return false, fmt.Errorf("%w: missing recipient or title", errBadPayload)
	}

	user, err := c.users.FindByID(ctx, msg.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("recipient %d does not exist", msg.UserID)
		}
		return true, fmt.Errorf("failed to load recipient: %w", err)
	}

	if err := c.notifications.Create(ctx, msg.ToModel()); err != nil {
		return true, fmt.Errorf("failed to store notification: %w", err)
	}

	if c.mailer != nil && user.IsActive {
		// the row is already stored; a mail failure must not duplicate it
		if err := c.mailer.Send(ctx, user.Email, msg.Title, msg.Message); err != nil {
			c.log.Warn("failed to e-mail notification", zap.Error(err), zap.Uint64("user_id", user.ID))
		}
	}

	return false, nil
}

// Run consumes deliveries until ctx is done or the channel closes.
func (c *Consumer) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				c.log.Warn("delivery channel closed")
				return
			}

			requeue, err := c.Handle(ctx, d.Body)
			if err != nil {
				c.log.Error("failed to handle notification", zap.Error(err), zap.Bool("requeue", requeue))
				_ = d.Nack(false, requeue)
				continue
			}
			_ = d.Ack(false)
		}
	}
}
