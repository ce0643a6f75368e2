package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cyberhunter-club/cyber-hunter-backend/internal/model"
	"github.com/cyberhunter-club/cyber-hunter-backend/pkg/apperror"
)

type TeamRepository interface {
	Create(ctx context.Context, team *model.Team) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Team, error)
	FindByCreatorID(ctx context.Context, creatorID uuid.UUID) (*model.Team, error)
	// FindByIDs is the batched directory lookup for leaderboard joins.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Team, error)
	ListAll(ctx context.Context) ([]model.Team, error)
	Update(ctx context.Context, team *model.Team) error
	AddMember(ctx context.Context, member *model.TeamMember) error
	UpdatePoints(ctx context.Context, id uuid.UUID, points int) (*model.Team, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type teamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) Create(ctx context.Context, team *model.Team) error {
	return r.db.WithContext(ctx).Create(team).Error
}

func (r *teamRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	var team model.Team
	err := r.db.WithContext(ctx).Preload("Members").Where("id = ?", id).First(&team).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) FindByCreatorID(ctx context.Context, creatorID uuid.UUID) (*model.Team, error) {
	var team model.Team
	err := r.db.WithContext(ctx).Preload("Members").Where("creator_id = ?", creatorID).First(&team).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Team, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var teams []model.Team
	err := r.db.WithContext(ctx).Preload("Members").Where("id IN ?", ids).Find(&teams).Error
	return teams, err
}

func (r *teamRepository) ListAll(ctx context.Context) ([]model.Team, error) {
	var teams []model.Team
	err := r.db.WithContext(ctx).Order("points DESC").Find(&teams).Error
	return teams, err
}

func (r *teamRepository) Update(ctx context.Context, team *model.Team) error {
	return r.db.WithContext(ctx).Save(team).Error
}

func (r *teamRepository) AddMember(ctx context.Context, member *model.TeamMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *teamRepository) UpdatePoints(ctx context.Context, id uuid.UUID, points int) (*model.Team, error) {
	result := r.db.WithContext(ctx).Model(&model.Team{}).
		Where("id = ?", id).
		Update("points", points)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, apperror.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *teamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Team{}).Error
}
