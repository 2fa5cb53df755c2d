package database

import (
	"fmt"

	"github.com/yukikurage/workforce-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models lists every table owned by the API, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Project{},
		&models.Task{},
		&models.TaskComment{},
		&models.Attendance{},
		&models.Notification{},
		&models.AuditLog{},
	}
}

// Migrate creates or updates the schema and the secondary indexes gorm tags
// cannot express.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := AddIndexes(db, log); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	log.Info("database migrations completed")
	return nil
}

// AddIndexes adds the composite indexes used by dashboard and list queries.
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	indexes := []struct {
		model   interface{}
		name    string
		columns string
	}{
		// personal task counters and the member task scope
		{&models.Task{}, "idx_tasks_assignee_status", "assigned_to_id, status"},
		// leader task scope
		{&models.Task{}, "idx_tasks_team_status", "team_id, status"},
		// today's attendance across the company
		{&models.Attendance{}, "idx_attendance_date_status", "date, status"},
		// unread notifications
		{&models.Notification{}, "idx_notifications_user_read", "user_id, is_read"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			continue
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(idx.model); err != nil {
			return fmt.Errorf("failed to parse model for index %s: %w", idx.name, err)
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, stmt.Schema.Table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index", zap.String("index", idx.name), zap.String("table", stmt.Schema.Table))
	}

	return nil
}
