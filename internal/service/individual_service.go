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

type IndividualService interface {
	Create(ctx context.Context, userID uuid.UUID, req dto.CreateIndividualRequest) (*dto.IndividualResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.IndividualResponse, error)
	// Update is owner-only: callerID must match the profile's user.
	Update(ctx context.Context, callerID, id uuid.UUID, req dto.UpdateIndividualRequest) (*dto.IndividualResponse, error)
	UpdatePoints(ctx context.Context, id uuid.UUID, points int) (*dto.IndividualResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type individualService struct {
	repo        repository.IndividualRepository
	userRepo    repository.UserRepository
	leaderboard LeaderboardService
	log         *zap.Logger
}

func NewIndividualService(
	repo repository.IndividualRepository,
	userRepo repository.UserRepository,
	leaderboard LeaderboardService,
	log *zap.Logger,
) IndividualService {
	return &individualService{
		repo:        repo,
		userRepo:    userRepo,
		leaderboard: leaderboard,
		log:         log,
	}
}

func (s *individualService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateIndividualRequest) (*dto.IndividualResponse, error) {
	if _, err := s.repo.FindByUserID(ctx, userID); err == nil {
		return nil, fmt.Errorf("%w: profile already exists", apperror.ErrConflict)
	}

	individual := &model.Individual{
		UserID:      userID,
		Description: req.Description,
		Tags:        pq.StringArray(req.TagIDs),
	}
	if err := s.repo.Create(ctx, individual); err != nil {
		return nil, err
	}

	// Register on the leaderboard right away. Ranking is a secondary index:
	// a failure here is logged and the profile creation still succeeds.
	if err := s.leaderboard.RecordScore(ctx, model.KindIndividual, userID, individual.Points, ScoreSourceRegister); err != nil {
		s.log.Warn("could not register individual on leaderboard",
			zap.String("user_id", userID.String()), zap.Error(err))
	}

	return s.toResponse(ctx, individual)
}

func (s *individualService) GetByID(ctx context.Context, id uuid.UUID) (*dto.IndividualResponse, error) {
	individual, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, individual)
}

func (s *individualService) Update(ctx context.Context, callerID, id uuid.UUID, req dto.UpdateIndividualRequest) (*dto.IndividualResponse, error) {
	individual, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if individual.UserID != callerID {
		return nil, fmt.Errorf("%w: only the profile owner can update it", apperror.ErrForbidden)
	}

	if req.Description != nil {
		individual.Description = req.Description
	}
	if req.TechStackIDs != nil {
		individual.TechStacks = pq.StringArray(req.TechStackIDs)
	}
	if req.LanguageIDs != nil {
		individual.Languages = pq.StringArray(req.LanguageIDs)
	}
	if req.TagIDs != nil {
		individual.Tags = pq.StringArray(req.TagIDs)
	}

	if err := s.repo.Update(ctx, individual); err != nil {
		return nil, err
	}

	// Mirror the skill sets onto the ranking entry for filtered reads.
	if err := s.leaderboard.SyncSkills(ctx, individual.UserID, individual.TechStacks, individual.Languages, individual.Tags); err != nil {
		s.log.Warn("could not sync skills to leaderboard",
			zap.String("user_id", individual.UserID.String()), zap.Error(err))
	}

	return s.toResponse(ctx, individual)
}

// UpdatePoints persists the authoritative point value, then pushes it through
// the score source adapter. The push is best-effort by contract.
func (s *individualService) UpdatePoints(ctx context.Context, id uuid.UUID, points int) (*dto.IndividualResponse, error) {
	individual, err := s.repo.UpdatePoints(ctx, id, points)
	if err != nil {
		return nil, err
	}

	if err := s.leaderboard.RecordScore(ctx, model.KindIndividual, individual.UserID, points, ScoreSourceIndividual); err != nil {
		s.log.Warn("score push failed, leaderboard will lag until next refresh",
			zap.String("user_id", individual.UserID.String()),
			zap.Int("points", points),
			zap.Error(err))
	}

	return s.toResponse(ctx, individual)
}

func (s *individualService) Delete(ctx context.Context, id uuid.UUID) error {
	individual, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	// Cascade into the ranking table; a miss here becomes drift that the
	// refresh sweep repairs.
	if err := s.leaderboard.RemoveSubject(ctx, model.KindIndividual, individual.UserID); err != nil {
		s.log.Warn("could not cascade leaderboard delete",
			zap.String("user_id", individual.UserID.String()), zap.Error(err))
	}

	return nil
}

func (s *individualService) toResponse(ctx context.Context, individual *model.Individual) (*dto.IndividualResponse, error) {
	resp := &dto.IndividualResponse{
		ID:          individual.ID,
		UserID:      individual.UserID,
		Description: individual.Description,
		Points:      individual.Points,
		TechStacks:  individual.TechStacks,
		Languages:   individual.Languages,
		Tags:        individual.Tags,
		CreatedAt:   individual.CreatedAt,
	}
	if resp.TechStacks == nil {
		resp.TechStacks = []string{}
	}
	if resp.Languages == nil {
		resp.Languages = []string{}
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}

	details, err := s.userRepo.FindDetailsByUserIDs(ctx, []uuid.UUID{individual.UserID})
	if err != nil {
		return nil, err
	}
	if len(details) > 0 {
		resp.Name = details[0].Name
	}

	return resp, nil
}
