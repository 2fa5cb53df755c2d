package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// auditor writes audit entries. A failed write is logged; the mutation it
// describes has already been committed.
type auditor struct {
	repo repository.AuditLogRepository
	log  *zap.Logger
}

func (a auditor) record(ctx context.Context, actorID uint64, action, entity string, entityID uint64, oldValue, newValue interface{}) {
	entry := &models.AuditLog{
		UserID:   actorID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		OldValue: toJSON(oldValue),
		NewValue: toJSON(newValue),
	}
	if err := a.repo.Record(ctx, entry); err != nil {
		a.log.Error("failed to record audit log",
			zap.Error(err),
			zap.String("action", action),
			zap.String("entity", entity),
			zap.Uint64("entity_id", entityID),
		)
	}
}

func toJSON(v interface{}) datatypes.JSON {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
