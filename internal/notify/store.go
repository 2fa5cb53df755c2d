package notify

import (
	"context"

	"github.com/yukikurage/workforce-api/internal/repository"
	"go.uber.org/zap"
)

// StoreNotifier writes notifications straight to the database. It is used
// when no message broker is configured.
type StoreNotifier struct {
	repo repository.NotificationRepository
	log  *zap.Logger
}

func NewStoreNotifier(repo repository.NotificationRepository, log *zap.Logger) *StoreNotifier {
	return &StoreNotifier{repo: repo, log: log}
}

func (n *StoreNotifier) Notify(ctx context.Context, msg Message) {
	if err := n.repo.Create(ctx, msg.ToModel()); err != nil {
		n.log.Warn("failed to store notification",
			zap.Error(err),
			zap.Uint64("user_id", msg.UserID),
			zap.String("type", string(msg.Type)),
		)
	}
}
