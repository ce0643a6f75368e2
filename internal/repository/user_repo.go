package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cyberhunter-club/cyber-hunter-backend/internal/model"
	"github.com/cyberhunter-club/cyber-hunter-backend/pkg/apperror"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	CreateDetail(ctx context.Context, detail *model.UserDetail) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// FindByIDs is the batched directory lookup used by the leaderboard
	// query facade; one query per id-set, never per row.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error)
	FindDetailsByUserIDs(ctx context.Context, ids []uuid.UUID) ([]model.UserDetail, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) CreateDetail(ctx context.Context, detail *model.UserDetail) error {
	return r.db.WithContext(ctx).Create(detail).Error
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Preload("Role").Preload("Detail").
		Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Preload("Role").Preload("Detail").
		Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []model.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *userRepository) FindDetailsByUserIDs(ctx context.Context, ids []uuid.UUID) ([]model.UserDetail, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var details []model.UserDetail
	err := r.db.WithContext(ctx).Where("user_id IN ?", ids).Find(&details).Error
	return details, err
}
