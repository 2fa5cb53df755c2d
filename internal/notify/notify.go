// Package notify delivers in-app notifications. Delivery is fire-and-forget:
// a failed notification is logged and never fails the request that caused it.
package notify

import (
	"context"
	"time"

	"github.com/yukikurage/workforce-api/internal/models"
	"go.uber.org/zap"
)

// Message is one notification for one recipient.
type Message struct {
	UserID  uint64                  `json:"userId"`
	Type    models.NotificationType `json:"type"`
	Title   string                  `json:"title"`
	Message string                  `json:"message"`
	Link    string                  `json:"link"`
}

// Notifier delivers messages. Implementations log their own failures.
type Notifier interface {
	Notify(ctx context.Context, msg Message)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, msg Message)

func (f NotifierFunc) Notify(ctx context.Context, msg Message) { f(ctx, msg) }

// Nop discards every message.
var Nop Notifier = NotifierFunc(func(context.Context, Message) {})

type asyncNotifier struct {
	next    Notifier
	timeout time.Duration
	log     *zap.Logger
}

// Async runs next in its own goroutine, detached from the caller's
// cancellation and bounded by timeout.
func Async(next Notifier, timeout time.Duration, log *zap.Logger) Notifier {
	return &asyncNotifier{next: next, timeout: timeout, log: log}
}

func (a *asyncNotifier) Notify(ctx context.Context, msg Message) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				a.log.Error("notifier panicked", zap.Any("panic", r), zap.Uint64("user_id", msg.UserID))
			}
		}()

		ctx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()
		a.next.Notify(ctx, msg)
	}()
}

// ToModel converts a message into its stored form.
func (m Message) ToModel() *models.Notification {
	return &models.Notification{
		UserID:  m.UserID,
		Type:    m.Type,
		Title:   m.Title,
		Message: m.Message,
		Link:    m.Link,
	}
}
