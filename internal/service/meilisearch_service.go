package service

import (
	"encoding/json"
	"html"
	"strings"

	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/cyberhunter-club/cyber-hunter-backend/internal/model"
)

const projectIndex = "projects"

type MeiliSearchService interface {
	IndexProject(project *model.Project) error
	DeleteProject(id string) error
	// SearchProjects returns matching project ids; callers hydrate them from
	// the primary store.
	SearchProjects(query string, limit int64) ([]string, error)
}

type meiliSearchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
	log       *zap.Logger
}

func NewMeiliSearchService(client meilisearch.ServiceManager, log *zap.Logger) MeiliSearchService {
	s := &meiliSearchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
		log:       log,
	}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	filterableAttrs := []string{"status", "owner_kind"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	if _, err := s.client.Index(projectIndex).UpdateFilterableAttributes(&filterableInterface); err != nil {
		s.log.Warn("failed to update projects filterable attributes", zap.Error(err))
	}

	sortableAttrs := []string{"created_at"}
	if _, err := s.client.Index(projectIndex).UpdateSortableAttributes(&sortableAttrs); err != nil {
		s.log.Warn("failed to update projects sortable attributes", zap.Error(err))
	}
}

type meiliProjectDoc struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	OwnerKind   string `json:"owner_kind"`
	CreatedAt   int64  `json:"created_at"`
}

func (s *meiliSearchService) cleanContentForIndex(content string) string {
	sanitized := s.sanitizer.Sanitize(content)
	cleanText := html.UnescapeString(sanitized)
	return strings.Join(strings.Fields(cleanText), " ")
}

func (s *meiliSearchService) IndexProject(project *model.Project) error {
	doc := meiliProjectDoc{
		ID:        project.ID.String(),
		Name:      project.Name,
		Status:    project.Status,
		OwnerKind: project.OwnerKind,
		CreatedAt: project.CreatedAt.Unix(),
	}
	if project.Description != nil {
		doc.Description = s.cleanContentForIndex(*project.Description)
	}

	task, err := s.client.Index(projectIndex).AddDocuments([]meiliProjectDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	s.log.Debug("indexed project",
		zap.String("project_id", doc.ID),
		zap.Int64("task_id", task.TaskUID))
	return nil
}

func (s *meiliSearchService) DeleteProject(id string) error {
	_, err := s.client.Index(projectIndex).DeleteDocument(id)
	return err
}

func (s *meiliSearchService) SearchProjects(query string, limit int64) ([]string, error) {
	if limit < 1 || limit > 50 {
		limit = 20
	}

	resp, err := s.client.Index(projectIndex).Search(query, &meilisearch.SearchRequest{
		Limit: limit,
	})
	if err != nil {
		return nil, err
	}

	return searchHitIDs(resp.Hits), nil
}

// searchHitIDs pulls the id field out of each hit. Hits are maps of raw JSON
// fields; only the id is needed here, the primary store hydrates the rest.
func searchHitIDs(hits []meilisearch.Hit) []string {
	ids := make([]string, 0, len(hits))
	for _, hit := range hits {
		raw, ok := hit["id"]
		if !ok {
			continue
		}
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func strPtr(s string) *string {
	return &s
}
