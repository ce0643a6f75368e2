package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/cyberhunter-club/cyber-hunter-backend/internal/dto"
	"github.com/cyberhunter-club/cyber-hunter-backend/internal/model"
	"github.com/cyberhunter-club/cyber-hunter-backend/internal/repository"
	"github.com/cyberhunter-club/cyber-hunter-backend/pkg/apperror"
)

type ProjectService interface {
	Create(ctx context.Context, userID uuid.UUID, req dto.CreateProjectRequest) (*dto.ProjectResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ProjectResponse, error)
	List(ctx context.Context, status string, page, limit int) ([]dto.ProjectResponse, *dto.Pagination, error)
	Search(ctx context.Context, query string) ([]dto.ProjectResponse, error)
	// Update and Delete are owner-only: callerID must be the owning user, or
	// the creator of the owning team.
	Update(ctx context.Context, callerID, id uuid.UUID, req dto.UpdateProjectRequest) (*dto.ProjectResponse, error)
	// UpdateStatus approves or rejects a project; approval adds the awarded
	// points to the owner's authoritative total and pushes it to the
	// leaderboard.
	UpdateStatus(ctx context.Context, id uuid.UUID, req dto.UpdateProjectStatusRequest) (*dto.ProjectResponse, error)
	Delete(ctx context.Context, callerID, id uuid.UUID) error
}

type projectService struct {
	repo           repository.ProjectRepository
	individualRepo repository.IndividualRepository
	teamRepo       repository.TeamRepository
	leaderboard    LeaderboardService
	search         MeiliSearchService
	notifier       NotificationService
	log            *zap.Logger
}

func NewProjectService(
	repo repository.ProjectRepository,
	individualRepo repository.IndividualRepository,
	teamRepo repository.TeamRepository,
	leaderboard LeaderboardService,
	search MeiliSearchService,
	notifier NotificationService,
	log *zap.Logger,
) ProjectService {
	return &projectService{
		repo:           repo,
		individualRepo: individualRepo,
		teamRepo:       teamRepo,
		leaderboard:    leaderboard,
		search:         search,
		notifier:       notifier,
		log:            log,
	}
}

func (s *projectService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	project := &model.Project{
		OwnerKind:   req.OwnerKind,
		Name:        req.Name,
		Description: req.Description,
		Link:        req.Link,
		Status:      model.ProjectStatusPending,
		TechStacks:  pq.StringArray(req.TechStacks),
	}

	switch req.OwnerKind {
	case model.KindIndividual:
		project.OwnerUserID = &userID
	case model.KindTeam:
		if req.OwnerTeamID == nil {
			return nil, fmt.Errorf("%w: owner_team_id is required for team projects", apperror.ErrInvalidInput)
		}
		teamID, err := uuid.Parse(*req.OwnerTeamID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid owner_team_id", apperror.ErrInvalidInput)
		}
		team, err := s.teamRepo.FindByID(ctx, teamID)
		if err != nil {
			return nil, err
		}
		project.OwnerTeamID = &team.ID
	}

	if err := s.repo.Create(ctx, project); err != nil {
		return nil, err
	}

	if s.search != nil {
		if err := s.search.IndexProject(project); err != nil {
			s.log.Warn("failed to index project", zap.String("project_id", project.ID.String()), zap.Error(err))
		}
	}

	return toProjectResponse(project), nil
}

func (s *projectService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProjectResponse, error) {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProjectResponse(project), nil
}

func (s *projectService) List(ctx context.Context, status string, page, limit int) ([]dto.ProjectResponse, *dto.Pagination, error) {
	pageQuery := dto.PageQuery{Page: page, Limit: limit}
	pageQuery.Normalize()

	projects, total, err := s.repo.List(ctx, status, (pageQuery.Page-1)*pageQuery.Limit, pageQuery.Limit)
	if err != nil {
		return nil, nil, err
	}

	responses := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		responses = append(responses, *toProjectResponse(&projects[i]))
	}

	pagination := &dto.Pagination{
		Page:       pageQuery.Page,
		Limit:      pageQuery.Limit,
		TotalCount: total,
		TotalPages: int((total + int64(pageQuery.Limit) - 1) / int64(pageQuery.Limit)),
	}
	return responses, pagination, nil
}

func (s *projectService) Search(ctx context.Context, query string) ([]dto.ProjectResponse, error) {
	if s.search == nil {
		return nil, apperror.ErrUnavailable
	}

	ids, err := s.search.SearchProjects(query, 20)
	if err != nil {
		return nil, err
	}

	projectIDs := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		projectIDs = append(projectIDs, parsed)
	}

	projects, err := s.repo.FindByIDs(ctx, projectIDs)
	if err != nil {
		return nil, err
	}

	// Preserve the search engine's relevance ordering.
	projectMap := make(map[uuid.UUID]*model.Project, len(projects))
	for i := range projects {
		projectMap[projects[i].ID] = &projects[i]
	}
	responses := make([]dto.ProjectResponse, 0, len(projectIDs))
	for _, id := range projectIDs {
		if project, ok := projectMap[id]; ok {
			responses = append(responses, *toProjectResponse(project))
		}
	}
	return responses, nil
}

// checkOwnership verifies callerID owns the project: directly for individual
// projects, via the team's creator for team projects.
func (s *projectService) checkOwnership(ctx context.Context, callerID uuid.UUID, project *model.Project) error {
	switch project.OwnerKind {
	case model.KindIndividual:
		if project.OwnerUserID != nil && *project.OwnerUserID == callerID {
			return nil
		}
	case model.KindTeam:
		if project.OwnerTeamID == nil {
			break
		}
		team, err := s.teamRepo.FindByID(ctx, *project.OwnerTeamID)
		if err != nil {
			return err
		}
		if team.CreatorID == callerID {
			return nil
		}
	}
	return fmt.Errorf("%w: only the project owner can modify it", apperror.ErrForbidden)
}

func (s *projectService) Update(ctx context.Context, callerID, id uuid.UUID, req dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwnership(ctx, callerID, project); err != nil {
		return nil, err
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = req.Description
	}
	if req.Link != nil {
		project.Link = req.Link
	}
	if req.TechStacks != nil {
		project.TechStacks = pq.StringArray(req.TechStacks)
	}

	if err := s.repo.Update(ctx, project); err != nil {
		return nil, err
	}

	if s.search != nil {
		if err := s.search.IndexProject(project); err != nil {
			s.log.Warn("failed to reindex project", zap.String("project_id", project.ID.String()), zap.Error(err))
		}
	}

	return toProjectResponse(project), nil
}

func (s *projectService) UpdateStatus(ctx context.Context, id uuid.UUID, req dto.UpdateProjectStatusRequest) (*dto.ProjectResponse, error) {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.Status != model.ProjectStatusPending {
		return nil, fmt.Errorf("%w: project already reviewed", apperror.ErrConflict)
	}

	project.Status = req.Status
	if req.Status == model.ProjectStatusApproved {
		project.PointsAwarded = req.Points
	}
	if err := s.repo.Update(ctx, project); err != nil {
		return nil, err
	}

	if project.Status == model.ProjectStatusApproved && project.PointsAwarded > 0 {
		s.awardPoints(ctx, project)
	}

	if s.search != nil {
		if err := s.search.IndexProject(project); err != nil {
			s.log.Warn("failed to reindex project", zap.String("project_id", project.ID.String()), zap.Error(err))
		}
	}

	return toProjectResponse(project), nil
}

// awardPoints adds the award to the owner's authoritative total, then pushes
// the new absolute value through the score source adapter. Both the push and
// the notification are best-effort.
func (s *projectService) awardPoints(ctx context.Context, project *model.Project) {
	switch project.OwnerKind {
	case model.KindIndividual:
		if project.OwnerUserID == nil {
			return
		}
		individual, err := s.individualRepo.FindByUserID(ctx, *project.OwnerUserID)
		if err != nil {
			s.log.Warn("cannot award points, individual profile missing",
				zap.String("user_id", project.OwnerUserID.String()), zap.Error(err))
			return
		}
		newTotal := individual.Points + project.PointsAwarded
		if _, err := s.individualRepo.UpdatePoints(ctx, individual.ID, newTotal); err != nil {
			s.log.Error("failed to persist awarded points",
				zap.String("user_id", project.OwnerUserID.String()), zap.Error(err))
			return
		}
		if err := s.leaderboard.RecordScore(ctx, model.KindIndividual, individual.UserID, newTotal, ScoreSourceProject); err != nil {
			s.log.Warn("score push failed, leaderboard will lag until next refresh",
				zap.String("user_id", individual.UserID.String()), zap.Error(err))
		}
		s.notifyAward(ctx, *project.OwnerUserID, project)

	case model.KindTeam:
		if project.OwnerTeamID == nil {
			return
		}
		team, err := s.teamRepo.FindByID(ctx, *project.OwnerTeamID)
		if err != nil {
			s.log.Warn("cannot award points, team missing",
				zap.String("team_id", project.OwnerTeamID.String()), zap.Error(err))
			return
		}
		newTotal := team.Points + project.PointsAwarded
		if _, err := s.teamRepo.UpdatePoints(ctx, team.ID, newTotal); err != nil {
			s.log.Error("failed to persist awarded points",
				zap.String("team_id", team.ID.String()), zap.Error(err))
			return
		}
		if err := s.leaderboard.RecordScore(ctx, model.KindTeam, team.ID, newTotal, ScoreSourceProject); err != nil {
			s.log.Warn("score push failed, leaderboard will lag until next refresh",
				zap.String("team_id", team.ID.String()), zap.Error(err))
		}
		s.notifyAward(ctx, team.CreatorID, project)
	}
}

func (s *projectService) notifyAward(ctx context.Context, userID uuid.UUID, project *model.Project) {
	if s.notifier == nil {
		return
	}
	notification := &model.Notification{
		UserID:     userID,
		EntityID:   project.ID,
		EntityType: "project",
		Type:       "project_approved",
		Message:    fmt.Sprintf("Your project %q was approved and earned %d points!", project.Name, project.PointsAwarded),
	}
	if err := s.notifier.CreateNotification(ctx, notification); err != nil {
		s.log.Warn("failed to send project approval notification",
			zap.String("user_id", userID.String()), zap.Error(err))
	}
}

func (s *projectService) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkOwnership(ctx, callerID, project); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.search != nil {
		if err := s.search.DeleteProject(id.String()); err != nil {
			s.log.Warn("failed to remove project from search index",
				zap.String("project_id", id.String()), zap.Error(err))
		}
	}
	return nil
}

func toProjectResponse(project *model.Project) *dto.ProjectResponse {
	resp := &dto.ProjectResponse{
		ID:            project.ID,
		OwnerKind:     project.OwnerKind,
		OwnerUserID:   project.OwnerUserID,
		OwnerTeamID:   project.OwnerTeamID,
		Name:          project.Name,
		Description:   project.Description,
		Link:          project.Link,
		Status:        project.Status,
		PointsAwarded: project.PointsAwarded,
		TechStacks:    project.TechStacks,
		CreatedAt:     project.CreatedAt,
	}
	if resp.TechStacks == nil {
		resp.TechStacks = []string{}
	}
	return resp
}
