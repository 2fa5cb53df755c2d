package repository

import (
	"context"

	"github.com/yukikurage/workforce-api/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Omit("Manager", "Team", "Tasks").Create(project).Error
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(ctx context.Context, id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).Preload("Manager").Preload("Team").First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// List retrieves projects, newest first
func (r *GormProjectRepository) List(ctx context.Context, page, pageSize int) ([]models.Project, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Project{})

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Session(&gorm.Session{}).Order("created_at DESC").Order("id DESC")
	listQuery = listQuery.Scopes(pageScope(page, pageSize))

	var projects []models.Project
	if err := listQuery.Preload("Manager").Preload("Team").Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// Count counts non-deleted projects
func (r *GormProjectRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Project{}).Count(&count).Error
	return count, err
}
