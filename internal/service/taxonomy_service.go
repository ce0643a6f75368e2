package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/cyberhunter-club/cyber-hunter-backend/internal/dto"
	"github.com/cyberhunter-club/cyber-hunter-backend/internal/model"
	"github.com/cyberhunter-club/cyber-hunter-backend/internal/repository"
)

const taxonomyListLimit = 100

// TaxonomyService is thin CRUD over the four lookup tables that back skill
// tagging and leaderboard filtering.
type TaxonomyService interface {
	CreateTechStack(ctx context.Context, req dto.CreateTaxonomyRequest) (*dto.TaxonomyResponse, error)
	CreateLanguage(ctx context.Context, req dto.CreateTaxonomyRequest) (*dto.TaxonomyResponse, error)
	CreateTag(ctx context.Context, req dto.CreateTaxonomyRequest) (*dto.TaxonomyResponse, error)
	CreateInterest(ctx context.Context, req dto.CreateTaxonomyRequest) (*dto.TaxonomyResponse, error)

	ListTechStacks(ctx context.Context, search string) ([]dto.TaxonomyResponse, error)
	ListLanguages(ctx context.Context, search string) ([]dto.TaxonomyResponse, error)
	ListTags(ctx context.Context, search string) ([]dto.TaxonomyResponse, error)
	ListInterests(ctx context.Context, search string) ([]dto.TaxonomyResponse, error)

	DeleteTechStack(ctx context.Context, id uuid.UUID) error
	DeleteLanguage(ctx context.Context, id uuid.UUID) error
	DeleteTag(ctx context.Context, id uuid.UUID) error
	DeleteInterest(ctx context.Context, id uuid.UUID) error
}

type taxonomyService struct {
	repo repository.TaxonomyRepository
}

func NewTaxonomyService(repo repository.TaxonomyRepository) TaxonomyService {
	return &taxonomyService{repo: repo}
}

func (s *taxonomyService) CreateTechStack(ctx context.Context, req dto.CreateTaxonomyRequest) (*dto.TaxonomyResponse, error) {
	item := &model.TechStack{Content: req.Content, Logo: req.Logo}
	if err := s.repo.CreateTechStack(ctx, item); err != nil {
		return nil, err
	}
	return &dto.TaxonomyResponse{ID: item.ID, Content: item.Content, Logo: item.Logo}, nil
}

func (s *taxonomyService) CreateLanguage(ctx context.Context, req dto.CreateTaxonomyRequest) (*dto.TaxonomyResponse, error) {
	item := &model.Language{Content: req.Content, Logo: req.Logo}
	if err := s.repo.CreateLanguage(ctx, item); err != nil {
		return nil, err
	}
	return &dto.TaxonomyResponse{ID: item.ID, Content: item.Content, Logo: item.Logo}, nil
}

func (s *taxonomyService) CreateTag(ctx context.Context, req dto.CreateTaxonomyRequest) (*dto.TaxonomyResponse, error) {
	item := &model.Tag{Content: req.Content}
	if err := s.repo.CreateTag(ctx, item); err != nil {
		return nil, err
	}
	return &dto.TaxonomyResponse{ID: item.ID, Content: item.Content}, nil
}

func (s *taxonomyService) CreateInterest(ctx context.Context, req dto.CreateTaxonomyRequest) (*dto.TaxonomyResponse, error) {
	item := &model.Interest{Content: req.Content, Logo: req.Logo}
	if err := s.repo.CreateInterest(ctx, item); err != nil {
		return nil, err
	}
	return &dto.TaxonomyResponse{ID: item.ID, Content: item.Content, Logo: item.Logo}, nil
}

func (s *taxonomyService) ListTechStacks(ctx context.Context, search string) ([]dto.TaxonomyResponse, error) {
	items, err := s.repo.ListTechStacks(ctx, search, taxonomyListLimit)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.TaxonomyResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, dto.TaxonomyResponse{ID: item.ID, Content: item.Content, Logo: item.Logo})
	}
	return responses, nil
}

func (s *taxonomyService) ListLanguages(ctx context.Context, search string) ([]dto.TaxonomyResponse, error) {
	items, err := s.repo.ListLanguages(ctx, search, taxonomyListLimit)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.TaxonomyResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, dto.TaxonomyResponse{ID: item.ID, Content: item.Content, Logo: item.Logo})
	}
	return responses, nil
}

func (s *taxonomyService) ListTags(ctx context.Context, search string) ([]dto.TaxonomyResponse, error) {
	items, err := s.repo.ListTags(ctx, search, taxonomyListLimit)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.TaxonomyResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, dto.TaxonomyResponse{ID: item.ID, Content: item.Content})
	}
	return responses, nil
}

func (s *taxonomyService) ListInterests(ctx context.Context, search string) ([]dto.TaxonomyResponse, error) {
	items, err := s.repo.ListInterests(ctx, search, taxonomyListLimit)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.TaxonomyResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, dto.TaxonomyResponse{ID: item.ID, Content: item.Content, Logo: item.Logo})
	}
	return responses, nil
}

func (s *taxonomyService) DeleteTechStack(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteTechStack(ctx, id)
}

func (s *taxonomyService) DeleteLanguage(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteLanguage(ctx, id)
}

func (s *taxonomyService) DeleteTag(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteTag(ctx, id)
}

func (s *taxonomyService) DeleteInterest(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteInterest(ctx, id)
}
