package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/cyberhunter-club/cyber-hunter-backend/internal/dto"
	"github.com/cyberhunter-club/cyber-hunter-backend/internal/model"
	"github.com/cyberhunter-club/cyber-hunter-backend/internal/repository"
	"github.com/cyberhunter-club/cyber-hunter-backend/pkg/apperror"
)

type TeamService interface {
	Create(ctx context.Context, creatorID uuid.UUID, req dto.CreateTeamRequest) (*dto.TeamResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.TeamResponse, error)
	List(ctx context.Context) ([]dto.TeamResponse, error)
	// GetTopTeams is the quick podium view backed directly by the ranking
	// store's page read.
	GetTopTeams(ctx context.Context, limit int) ([]dto.TeamResponse, error)
	// Update and Delete are creator-only: callerID must match the team's
	// creator.
	Update(ctx context.Context, callerID, id uuid.UUID, req dto.UpdateTeamRequest) (*dto.TeamResponse, error)
	// AddMember is creator-only and caps the roster at MaxTeamMembers active
	// members.
	AddMember(ctx context.Context, callerID, id uuid.UUID, req dto.AddTeamMemberRequest) (*dto.TeamResponse, error)
	UpdatePoints(ctx context.Context, id uuid.UUID, points int) (*dto.TeamResponse, error)
	Delete(ctx context.Context, callerID, id uuid.UUID) error
}

type teamService struct {
	repo            repository.TeamRepository
	userRepo        repository.UserRepository
	leaderboardRepo repository.LeaderboardRepository
	leaderboard     LeaderboardService
	log             *zap.Logger
}

func NewTeamService(
	repo repository.TeamRepository,
	userRepo repository.UserRepository,
	leaderboardRepo repository.LeaderboardRepository,
	leaderboard LeaderboardService,
	log *zap.Logger,
) TeamService {
	return &teamService{
		repo:            repo,
		userRepo:        userRepo,
		leaderboardRepo: leaderboardRepo,
		leaderboard:     leaderboard,
		log:             log,
	}
}

func (s *teamService) Create(ctx context.Context, creatorID uuid.UUID, req dto.CreateTeamRequest) (*dto.TeamResponse, error) {
	if _, err := s.repo.FindByCreatorID(ctx, creatorID); err == nil {
		return nil, fmt.Errorf("%w: you already created a team", apperror.ErrConflict)
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	team := &model.Team{
		CreatorID:   creatorID,
		Name:        req.Name,
		Logo:        req.Logo,
		Description: req.Description,
		TechStacks:  pq.StringArray(req.TechStacks),
		Members: []model.TeamMember{
			{UserID: creatorID, Role: "Leader", Status: "Active"},
		},
	}
	if err := s.repo.Create(ctx, team); err != nil {
		return nil, err
	}

	if err := s.leaderboard.RecordScore(ctx, model.KindTeam, team.ID, team.Points, ScoreSourceRegister); err != nil {
		s.log.Warn("could not register team on leaderboard",
			zap.String("team_id", team.ID.String()), zap.Error(err))
	}

	return s.toResponse(ctx, team)
}

func (s *teamService) GetByID(ctx context.Context, id uuid.UUID) (*dto.TeamResponse, error) {
	team, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, team)
}

func (s *teamService) List(ctx context.Context) ([]dto.TeamResponse, error) {
	teams, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TeamResponse, 0, len(teams))
	for i := range teams {
		resp, err := s.toResponse(ctx, &teams[i])
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}
	return responses, nil
}

func (s *teamService) GetTopTeams(ctx context.Context, limit int) ([]dto.TeamResponse, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}

	entries, _, err := s.leaderboardRepo.Page(ctx, model.KindTeam, repository.LeaderboardFilter{}, 0, limit)
	if err != nil {
		return nil, storeErr(err)
	}

	teamIDs := make([]uuid.UUID, 0, len(entries))
	for i := range entries {
		if entries[i].TeamID != nil {
			teamIDs = append(teamIDs, *entries[i].TeamID)
		}
	}
	teams, err := s.repo.FindByIDs(ctx, teamIDs)
	if err != nil {
		return nil, err
	}
	teamMap := make(map[uuid.UUID]model.Team, len(teams))
	for _, team := range teams {
		teamMap[team.ID] = team
	}

	responses := make([]dto.TeamResponse, 0, len(entries))
	for i := range entries {
		if entries[i].TeamID == nil {
			continue
		}
		team, ok := teamMap[*entries[i].TeamID]
		if !ok {
			continue
		}
		resp, err := s.toResponse(ctx, &team)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}
	return responses, nil
}

func (s *teamService) Update(ctx context.Context, callerID, id uuid.UUID, req dto.UpdateTeamRequest) (*dto.TeamResponse, error) {
	team, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if team.CreatorID != callerID {
		return nil, fmt.Errorf("%w: only the team creator can update it", apperror.ErrForbidden)
	}

	if req.Name != nil {
		team.Name = *req.Name
	}
	if req.Logo != nil {
		team.Logo = req.Logo
	}
	if req.Description != nil {
		team.Description = req.Description
	}
	if req.TechStacks != nil {
		team.TechStacks = pq.StringArray(req.TechStacks)
	}
	if req.Languages != nil {
		team.Languages = pq.StringArray(req.Languages)
	}
	if req.Tags != nil {
		team.Tags = pq.StringArray(req.Tags)
	}

	if err := s.repo.Update(ctx, team); err != nil {
		return nil, err
	}

	return s.toResponse(ctx, team)
}

func (s *teamService) AddMember(ctx context.Context, callerID, id uuid.UUID, req dto.AddTeamMemberRequest) (*dto.TeamResponse, error) {
	team, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if team.CreatorID != callerID {
		return nil, fmt.Errorf("%w: only the team creator can add members", apperror.ErrForbidden)
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user_id", apperror.ErrInvalidInput)
	}
	if _, err := s.userRepo.FindByID(ctx, userID.String()); err != nil {
		return nil, err
	}

	active := 0
	for _, member := range team.Members {
		if member.UserID == userID {
			return nil, fmt.Errorf("%w: user is already a member of this team", apperror.ErrConflict)
		}
		if member.Status == "Active" {
			active++
		}
	}
	if active >= model.MaxTeamMembers {
		return nil, fmt.Errorf("%w: team already has %d active members", apperror.ErrConflict, model.MaxTeamMembers)
	}

	role := req.Role
	if role == "" {
		role = "Member"
	}
	member := &model.TeamMember{
		TeamID: team.ID,
		UserID: userID,
		Role:   role,
		Status: "Active",
	}
	if err := s.repo.AddMember(ctx, member); err != nil {
		return nil, err
	}

	team, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, team)
}

func (s *teamService) UpdatePoints(ctx context.Context, id uuid.UUID, points int) (*dto.TeamResponse, error) {
	team, err := s.repo.UpdatePoints(ctx, id, points)
	if err != nil {
		return nil, err
	}

	if err := s.leaderboard.RecordScore(ctx, model.KindTeam, team.ID, points, ScoreSourceTeam); err != nil {
		s.log.Warn("score push failed, leaderboard will lag until next refresh",
			zap.String("team_id", team.ID.String()),
			zap.Int("points", points),
			zap.Error(err))
	}

	return s.toResponse(ctx, team)
}

func (s *teamService) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	team, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if team.CreatorID != callerID {
		return fmt.Errorf("%w: only the team creator can delete it", apperror.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.leaderboard.RemoveSubject(ctx, model.KindTeam, id); err != nil {
		s.log.Warn("could not cascade leaderboard delete",
			zap.String("team_id", id.String()), zap.Error(err))
	}

	return nil
}

func (s *teamService) toResponse(ctx context.Context, team *model.Team) (*dto.TeamResponse, error) {
	resp := &dto.TeamResponse{
		ID:          team.ID,
		Name:        team.Name,
		Logo:        team.Logo,
		Description: team.Description,
		Points:      team.Points,
		TechStacks:  team.TechStacks,
		Members:     make([]dto.TeamMemberResponse, 0, len(team.Members)),
		CreatedAt:   team.CreatedAt,
	}
	if resp.TechStacks == nil {
		resp.TechStacks = []string{}
	}

	memberIDs := make([]uuid.UUID, 0, len(team.Members))
	for _, member := range team.Members {
		memberIDs = append(memberIDs, member.UserID)
	}
	details, err := s.userRepo.FindDetailsByUserIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	nameMap := make(map[uuid.UUID]string, len(details))
	for _, detail := range details {
		nameMap[detail.UserID] = detail.Name
	}

	for _, member := range team.Members {
		resp.Members = append(resp.Members, dto.TeamMemberResponse{
			UserID: member.UserID,
			Name:   nameMap[member.UserID],
			Role:   member.Role,
			Status: member.Status,
			Points: member.Points,
		})
	}

	return resp, nil
}
