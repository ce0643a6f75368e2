package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cyberhunter-club/cyber-hunter-backend/internal/model"
	"github.com/cyberhunter-club/cyber-hunter-backend/pkg/apperror"
)

// TaxonomyRepository covers the four flat lookup tables. FindXByContent does a
// case-insensitive substring match, which is how leaderboard filter names are
// resolved to ids.
type TaxonomyRepository interface {
	CreateTechStack(ctx context.Context, t *model.TechStack) error
	CreateLanguage(ctx context.Context, l *model.Language) error
	CreateTag(ctx context.Context, t *model.Tag) error
	CreateInterest(ctx context.Context, i *model.Interest) error

	ListTechStacks(ctx context.Context, search string, limit int) ([]model.TechStack, error)
	ListLanguages(ctx context.Context, search string, limit int) ([]model.Language, error)
	ListTags(ctx context.Context, search string, limit int) ([]model.Tag, error)
	ListInterests(ctx context.Context, search string, limit int) ([]model.Interest, error)

	FindTechStackByContent(ctx context.Context, content string) (*model.TechStack, error)
	FindLanguageByContent(ctx context.Context, content string) (*model.Language, error)
	FindTagByContent(ctx context.Context, content string) (*model.Tag, error)

	DeleteTechStack(ctx context.Context, id uuid.UUID) error
	DeleteLanguage(ctx context.Context, id uuid.UUID) error
	DeleteTag(ctx context.Context, id uuid.UUID) error
	DeleteInterest(ctx context.Context, id uuid.UUID) error
}

type taxonomyRepository struct {
	db *gorm.DB
}

func NewTaxonomyRepository(db *gorm.DB) TaxonomyRepository {
	return &taxonomyRepository{db: db}
}

func (r *taxonomyRepository) CreateTechStack(ctx context.Context, t *model.TechStack) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *taxonomyRepository) CreateLanguage(ctx context.Context, l *model.Language) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *taxonomyRepository) CreateTag(ctx context.Context, t *model.Tag) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *taxonomyRepository) CreateInterest(ctx context.Context, i *model.Interest) error {
	return r.db.WithContext(ctx).Create(i).Error
}

func (r *taxonomyRepository) ListTechStacks(ctx context.Context, search string, limit int) ([]model.TechStack, error) {
	var items []model.TechStack
	err := r.listQuery(ctx, search, limit).Find(&items).Error
	return items, err
}

func (r *taxonomyRepository) ListLanguages(ctx context.Context, search string, limit int) ([]model.Language, error) {
	var items []model.Language
	err := r.listQuery(ctx, search, limit).Find(&items).Error
	return items, err
}

func (r *taxonomyRepository) ListTags(ctx context.Context, search string, limit int) ([]model.Tag, error) {
	var items []model.Tag
	err := r.listQuery(ctx, search, limit).Find(&items).Error
	return items, err
}

func (r *taxonomyRepository) ListInterests(ctx context.Context, search string, limit int) ([]model.Interest, error) {
	var items []model.Interest
	err := r.listQuery(ctx, search, limit).Find(&items).Error
	return items, err
}

func (r *taxonomyRepository) listQuery(ctx context.Context, search string, limit int) *gorm.DB {
	query := r.db.WithContext(ctx).Order("content ASC")
	if search != "" {
		query = query.Where("content ILIKE ?", "%"+search+"%")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	return query
}

func (r *taxonomyRepository) FindTechStackByContent(ctx context.Context, content string) (*model.TechStack, error) {
	var item model.TechStack
	if err := r.findByContent(ctx, content, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *taxonomyRepository) FindLanguageByContent(ctx context.Context, content string) (*model.Language, error) {
	var item model.Language
	if err := r.findByContent(ctx, content, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *taxonomyRepository) FindTagByContent(ctx context.Context, content string) (*model.Tag, error) {
	var item model.Tag
	if err := r.findByContent(ctx, content, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *taxonomyRepository) findByContent(ctx context.Context, content string, dest interface{}) error {
	err := r.db.WithContext(ctx).Where("content ILIKE ?", "%"+content+"%").First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.ErrNotFound
	}
	return err
}

func (r *taxonomyRepository) DeleteTechStack(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.TechStack{}).Error
}

func (r *taxonomyRepository) DeleteLanguage(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Language{}).Error
}

func (r *taxonomyRepository) DeleteTag(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Tag{}).Error
}

func (r *taxonomyRepository) DeleteInterest(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Interest{}).Error
}
