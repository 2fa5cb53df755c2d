package services

import (
	"context"
	"fmt"
	"time"

	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/policy"
	"github.com/yukikurage/workforce-api/internal/repository"
	"github.com/yukikurage/workforce-api/internal/utils"
	"go.uber.org/zap"
)

var (
	ErrProjectNameRequired  = apierrors.New(apierrors.ErrInvalidInput, "project name is required")
	ErrInvalidProjectStatus = apierrors.New(apierrors.ErrInvalidInput, "invalid project status")
	ErrInvalidProjectDates  = apierrors.New(apierrors.ErrInvalidInput, "end date must not be before start date")
)

// ProjectService handles project business logic
type ProjectService struct {
	projectRepo repository.ProjectRepository
	taskRepo    repository.TaskRepository
	teamRepo    repository.TeamRepository
	audit       auditor
}

// NewProjectService creates a new ProjectService
func NewProjectService(
	projectRepo repository.ProjectRepository,
	taskRepo repository.TaskRepository,
	teamRepo repository.TeamRepository,
	auditRepo repository.AuditLogRepository,
	log *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
		teamRepo:    teamRepo,
		audit:       auditor{repo: auditRepo, log: log},
	}
}

// ProjectSummary is a project with its number of non-deleted tasks
type ProjectSummary struct {
	models.Project
	TaskCount int64
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	Name        string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
	TeamID      *uint64
	Status      models.ProjectStatus
}

// ListProjects lists projects newest first with their task counts
func (s *ProjectService) ListProjects(ctx context.Context, page, pageSize int) ([]ProjectSummary, int64, error) {
	projects, total, err := s.projectRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}

	ids := make([]uint64, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	counts, err := s.taskRepo.CountByProjects(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count project tasks: %w", err)
	}

	summaries := make([]ProjectSummary, len(projects))
	for i, p := range projects {
		summaries[i] = ProjectSummary{Project: p, TaskCount: counts[p.ID]}
	}
	return summaries, total, nil
}

// CreateProject creates a project managed by the actor
func (s *ProjectService) CreateProject(ctx context.Context, actor *models.User, input CreateProjectInput) (*models.Project, error) {
	if err := policy.Authorize(actor.Role, policy.CreateProject); err != nil {
		return nil, err
	}

	name := utils.SanitizePlain(input.Name)
	if name == "" {
		return nil, ErrProjectNameRequired
	}
	if input.Status == "" {
		input.Status = models.ProjectStatusActive
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidProjectStatus
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, ErrInvalidProjectDates
	}
	if input.TeamID != nil {
		if err := findTeam(ctx, s.teamRepo, *input.TeamID); err != nil {
			return nil, err
		}
	}

	project := &models.Project{
		Name:        name,
		Description: utils.SanitizeText(input.Description),
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		ManagerID:   actor.ID,
		TeamID:      input.TeamID,
		Status:      input.Status,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.audit.record(ctx, actor.ID, models.AuditActionCreateProject, models.AuditEntityProject, project.ID, nil, project)

	created, err := s.projectRepo.FindByID(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload project: %w", err)
	}
	return created, nil
}
