package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cyberhunter-club/cyber-hunter-backend/internal/model"
	"github.com/cyberhunter-club/cyber-hunter-backend/pkg/apperror"
)

type IndividualRepository interface {
	Create(ctx context.Context, individual *model.Individual) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Individual, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Individual, error)
	// ListAll feeds the reconciliation sweep; it returns every profile with
	// its authoritative points.
	ListAll(ctx context.Context) ([]model.Individual, error)
	Update(ctx context.Context, individual *model.Individual) error
	// UpdatePoints sets the absolute point value and returns the updated row.
	UpdatePoints(ctx context.Context, id uuid.UUID, points int) (*model.Individual, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type individualRepository struct {
	db *gorm.DB
}

func NewIndividualRepository(db *gorm.DB) IndividualRepository {
	return &individualRepository{db: db}
}

func (r *individualRepository) Create(ctx context.Context, individual *model.Individual) error {
	return r.db.WithContext(ctx).Create(individual).Error
}

func (r *individualRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Individual, error) {
	var individual model.Individual
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&individual).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &individual, nil
}

func (r *individualRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Individual, error) {
	var individual model.Individual
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&individual).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &individual, nil
}

func (r *individualRepository) ListAll(ctx context.Context) ([]model.Individual, error) {
	var individuals []model.Individual
	err := r.db.WithContext(ctx).Find(&individuals).Error
	return individuals, err
}

func (r *individualRepository) Update(ctx context.Context, individual *model.Individual) error {
	return r.db.WithContext(ctx).Save(individual).Error
}

func (r *individualRepository) UpdatePoints(ctx context.Context, id uuid.UUID, points int) (*model.Individual, error) {
	result := r.db.WithContext(ctx).Model(&model.Individual{}).
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

func (r *individualRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Individual{}).Error
}
