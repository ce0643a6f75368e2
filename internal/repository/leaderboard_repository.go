package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cyberhunter-club/cyber-hunter-backend/internal/model"
	"github.com/cyberhunter-club/cyber-hunter-backend/pkg/apperror"
)

// LeaderboardFilter narrows a page read to entries whose denormalized skill
// sets contain the given taxonomy ids. Empty fields are ignored.
type LeaderboardFilter struct {
	TechStackID string
	LanguageID  string
	TagID       string
}

// LeaderboardRepository is the ranking store. It only ever sees
// (kind, subjectID) keys and never joins display data; joins belong to the
// query facade in the service layer.
type LeaderboardRepository interface {
	// Upsert sets points and last_updated for a subject, creating the entry
	// if missing. Rank is never touched here.
	Upsert(ctx context.Context, kind string, subjectID uuid.UUID, points int, updatedAt time.Time) error
	// UpsertSkills replaces the denormalized filter sets on an individual's
	// entry. Entries that don't exist yet are left alone; the next score push
	// creates them.
	UpsertSkills(ctx context.Context, userID uuid.UUID, techStacks, languages, tags []string) error
	Get(ctx context.Context, kind string, subjectID uuid.UUID) (*model.LeaderboardEntry, error)
	// ListAll returns every entry of a kind sorted by points desc, then
	// last_updated desc (the recompute ordering).
	ListAll(ctx context.Context, kind string) ([]model.LeaderboardEntry, error)
	// ListFiltered is ListAll narrowed by taxonomy membership, same ordering.
	// The query facade reads through this when a search term forces the
	// search-then-paginate path.
	ListFiltered(ctx context.Context, kind string, filter LeaderboardFilter) ([]model.LeaderboardEntry, error)
	// Page returns one sorted, filtered slice plus the total match count.
	Page(ctx context.Context, kind string, filter LeaderboardFilter, offset, limit int) ([]model.LeaderboardEntry, int64, error)
	UpdateRank(ctx context.Context, kind string, subjectID uuid.UUID, rank int) error
	Delete(ctx context.Context, kind string, subjectID uuid.UUID) error
	CreateScoreLog(ctx context.Context, log *model.ScoreLog) error
}

type leaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

func subjectColumn(kind string) string {
	if kind == model.KindTeam {
		return "team_id"
	}
	return "user_id"
}

func (r *leaderboardRepository) Upsert(ctx context.Context, kind string, subjectID uuid.UUID, points int, updatedAt time.Time) error {
	entry := model.LeaderboardEntry{
		Kind:        kind,
		Points:      points,
		LastUpdated: updatedAt,
	}
	if kind == model.KindTeam {
		entry.TeamID = &subjectID
	} else {
		entry.UserID = &subjectID
	}

	// Keyed upsert; concurrent writers race at last-write-wins granularity,
	// which is fine because points are absolute values.
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "kind"}, {Name: subjectColumn(kind)}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"points":       points,
			"last_updated": updatedAt,
		}),
	}).Create(&entry).Error
}

func (r *leaderboardRepository) UpsertSkills(ctx context.Context, userID uuid.UUID, techStacks, languages, tags []string) error {
	return r.db.WithContext(ctx).Model(&model.LeaderboardEntry{}).
		Where("kind = ? AND user_id = ?", model.KindIndividual, userID).
		Updates(map[string]interface{}{
			"tech_stacks":  pq.StringArray(techStacks),
			"languages":    pq.StringArray(languages),
			"tags":         pq.StringArray(tags),
			"last_updated": time.Now(),
		}).Error
}

func (r *leaderboardRepository) Get(ctx context.Context, kind string, subjectID uuid.UUID) (*model.LeaderboardEntry, error) {
	var entry model.LeaderboardEntry
	err := r.db.WithContext(ctx).
		Where("kind = ? AND "+subjectColumn(kind)+" = ?", kind, subjectID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *leaderboardRepository) ListAll(ctx context.Context, kind string) ([]model.LeaderboardEntry, error) {
	var entries []model.LeaderboardEntry
	err := r.db.WithContext(ctx).
		Where("kind = ?", kind).
		Order("points DESC, last_updated DESC").
		Find(&entries).Error
	return entries, err
}

func (r *leaderboardRepository) ListFiltered(ctx context.Context, kind string, filter LeaderboardFilter) ([]model.LeaderboardEntry, error) {
	var entries []model.LeaderboardEntry
	err := r.filterQuery(ctx, kind, filter).
		Order("points DESC, last_updated DESC").
		Find(&entries).Error
	return entries, err
}

func (r *leaderboardRepository) filterQuery(ctx context.Context, kind string, filter LeaderboardFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&model.LeaderboardEntry{}).Where("kind = ?", kind)

	if filter.TechStackID != "" {
		query = query.Where("? = ANY(tech_stacks)", filter.TechStackID)
	}
	if filter.LanguageID != "" {
		query = query.Where("? = ANY(languages)", filter.LanguageID)
	}
	if filter.TagID != "" {
		query = query.Where("? = ANY(tags)", filter.TagID)
	}
	return query
}

func (r *leaderboardRepository) Page(ctx context.Context, kind string, filter LeaderboardFilter, offset, limit int) ([]model.LeaderboardEntry, int64, error) {
	query := r.filterQuery(ctx, kind, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []model.LeaderboardEntry
	err := query.
		Order("points DESC, last_updated DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error
	return entries, total, err
}

func (r *leaderboardRepository) UpdateRank(ctx context.Context, kind string, subjectID uuid.UUID, rank int) error {
	return r.db.WithContext(ctx).Model(&model.LeaderboardEntry{}).
		Where("kind = ? AND "+subjectColumn(kind)+" = ?", kind, subjectID).
		Update("rank", rank).Error
}

func (r *leaderboardRepository) Delete(ctx context.Context, kind string, subjectID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("kind = ? AND "+subjectColumn(kind)+" = ?", kind, subjectID).
		Delete(&model.LeaderboardEntry{}).Error
}

func (r *leaderboardRepository) CreateScoreLog(ctx context.Context, log *model.ScoreLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}
