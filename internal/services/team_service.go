package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/workforce-api/internal/constants"
	"github.com/yukikurage/workforce-api/internal/database"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/notify"
	"github.com/yukikurage/workforce-api/internal/policy"
	"github.com/yukikurage/workforce-api/internal/repository"
	"github.com/yukikurage/workforce-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrTeamNameRequired = apierrors.New(apierrors.ErrInvalidInput, "team name is required")
	ErrLeaderNotFound   = apierrors.New(apierrors.ErrInvalidInput, "leader does not exist")
	ErrMemberNotFound   = apierrors.New(apierrors.ErrNotFound, "user is not a member of this team")
	ErrAlreadyMember    = apierrors.New(apierrors.ErrConflict, "user is already a member of this team")
	ErrNotTeamManager   = apierrors.New(apierrors.ErrForbidden, "only the team leader or an administrator can manage members")
)

// TeamService handles team business logic
type TeamService struct {
	teamRepo repository.TeamRepository
	userRepo repository.UserRepository
	notifier notify.Notifier
	audit    auditor
}

// NewTeamService creates a new TeamService
func NewTeamService(
	teamRepo repository.TeamRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditLogRepository,
	notifier notify.Notifier,
	log *zap.Logger,
) *TeamService {
	return &TeamService{
		teamRepo: teamRepo,
		userRepo: userRepo,
		notifier: notifier,
		audit:    auditor{repo: auditRepo, log: log},
	}
}

// TeamSummary is a team with member and project counts
type TeamSummary struct {
	models.Team
	MemberCount  int64
	ProjectCount int64
}

// CreateTeamInput represents input for creating a team. A nil LeaderID makes
// the actor the leader.
type CreateTeamInput struct {
	Name        string
	Description string
	LeaderID    *uint64
}

// ListTeams lists teams newest first with their counts
func (s *TeamService) ListTeams(ctx context.Context, page, pageSize int) ([]TeamSummary, int64, error) {
	teams, total, err := s.teamRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list teams: %w", err)
	}

	ids := make([]uint64, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}
	members, err := s.teamRepo.CountMembers(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count team members: %w", err)
	}
	projects, err := s.teamRepo.CountProjects(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count team projects: %w", err)
	}

	summaries := make([]TeamSummary, len(teams))
	for i, t := range teams {
		summaries[i] = TeamSummary{
			Team:         t,
			MemberCount:  members[t.ID],
			ProjectCount: projects[t.ID],
		}
	}
	return summaries, total, nil
}

// GetTeam returns a team with its leader and members
func (s *TeamService) GetTeam(ctx context.Context, teamID uint64) (*models.Team, error) {
	team, err := s.teamRepo.FindByID(ctx, teamID, "Leader", "Members.User")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	return team, nil
}

// CreateTeam creates a team led by input.LeaderID, or by the actor when unset
func (s *TeamService) CreateTeam(ctx context.Context, actor *models.User, input CreateTeamInput) (*models.Team, error) {
	if err := policy.Authorize(actor.Role, policy.CreateTeam); err != nil {
		return nil, err
	}

	name := utils.SanitizePlain(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	leaderID := actor.ID
	if input.LeaderID != nil {
		leaderID = *input.LeaderID
		if _, err := s.userRepo.FindByID(ctx, leaderID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrLeaderNotFound
			}
			return nil, fmt.Errorf("failed to find leader: %w", err)
		}
	}

	team := &models.Team{
		Name:        name,
		Description: utils.SanitizeText(input.Description),
		LeaderID:    leaderID,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	s.audit.record(ctx, actor.ID, models.AuditActionCreateTeam, models.AuditEntityTeam, team.ID, nil, team)

	return s.GetTeam(ctx, team.ID)
}

// AddMember adds userID to a team and notifies them
func (s *TeamService) AddMember(ctx context.Context, actor *models.User, teamID, userID uint64) (*models.TeamMember, error) {
	team, err := s.managedTeam(ctx, actor, teamID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	member := &models.TeamMember{TeamID: team.ID, UserID: user.ID}
	if err := s.teamRepo.AddMember(ctx, member); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to add team member: %w", err)
	}
	member.User = *user

	s.audit.record(ctx, actor.ID, models.AuditActionAddTeamMember, models.AuditEntityTeam, team.ID, nil, map[string]uint64{"userId": user.ID})

	if user.ID != actor.ID {
		s.notifier.Notify(ctx, notify.Message{
			UserID:  user.ID,
			Type:    models.NotificationTeamJoined,
			Title:   "Added to a team",
			Message: fmt.Sprintf("%s added you to %q", actor.FullName, team.Name),
			Link:    fmt.Sprintf("%s/%d", constants.TeamsLink, team.ID),
		})
	}

	return member, nil
}

// RemoveMember removes userID from a team
func (s *TeamService) RemoveMember(ctx context.Context, actor *models.User, teamID, userID uint64) error {
	team, err := s.managedTeam(ctx, actor, teamID)
	if err != nil {
		return err
	}
	removed, err := s.teamRepo.RemoveMember(ctx, team.ID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove team member: %w", err)
	}
	if !removed {
		return ErrMemberNotFound
	}

	s.audit.record(ctx, actor.ID, models.AuditActionRemoveTeamMember, models.AuditEntityTeam, team.ID, map[string]uint64{"userId": userID}, nil)
	return nil
}

// managedTeam loads a team the actor may manage members of: administrators
// with ManageTeamMembers, or the team's own leader.
func (s *TeamService) managedTeam(ctx context.Context, actor *models.User, teamID uint64) (*models.Team, error) {
	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}

	if team.LeaderID != actor.ID && !policy.Allowed(actor.Role, policy.ManageTeamMembers) {
		return nil, ErrNotTeamManager
	}
	return team, nil
}

func findTeam(ctx context.Context, teams repository.TeamRepository, id uint64) error {
	if _, err := teams.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to find team: %w", err)
	}
	return nil
}
