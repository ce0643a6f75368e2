package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cyberhunter-club/cyber-hunter-backend/internal/dto"
	"github.com/cyberhunter-club/cyber-hunter-backend/internal/model"
	"github.com/cyberhunter-club/cyber-hunter-backend/internal/repository"
	"github.com/cyberhunter-club/cyber-hunter-backend/pkg/apperror"
)

// Score sources recorded in the audit log.
const (
	ScoreSourceIndividual = "individual_update"
	ScoreSourceTeam       = "team_update"
	ScoreSourceProject    = "project_award"
	ScoreSourceRegister   = "registration"
	ScoreSourceRefresh    = "refresh_sweep"
)

const filterFacetLimit = 20

// LeaderboardService owns the derived ranking table: score pushes, skill
// sync, dense-rank recomputation, reconciliation, and the read facade.
//
// Score pushes are best-effort by contract: callers log the returned error
// and never fail their own operation on it. The ranking table is a secondary
// index, not a system of record, and is repaired by Refresh/UpdateRankings.
type LeaderboardService interface {
	RecordScore(ctx context.Context, kind string, subjectID uuid.UUID, points int, source string) error
	SyncSkills(ctx context.Context, userID uuid.UUID, techStackIDs, languageIDs, tagIDs []string) error
	RemoveSubject(ctx context.Context, kind string, subjectID uuid.UUID) error

	RecomputeRanks(ctx context.Context, kind string) (int, error)
	UpdateRankings(ctx context.Context) (*dto.RecomputeResult, error)
	Refresh(ctx context.Context) (*dto.RefreshResult, error)
	Initialize(ctx context.Context) (*dto.RefreshResult, error)

	GetLeaderboard(ctx context.Context, query dto.LeaderboardQuery) (*dto.LeaderboardPage, error)
	GetFilters(ctx context.Context) (*dto.LeaderboardFilters, error)
}

type leaderboardService struct {
	repo           repository.LeaderboardRepository
	userRepo       repository.UserRepository
	teamRepo       repository.TeamRepository
	individualRepo repository.IndividualRepository
	taxonomyRepo   repository.TaxonomyRepository
	notifier       NotificationService
	log            *zap.Logger
}

func NewLeaderboardService(
	repo repository.LeaderboardRepository,
	userRepo repository.UserRepository,
	teamRepo repository.TeamRepository,
	individualRepo repository.IndividualRepository,
	taxonomyRepo repository.TaxonomyRepository,
	notifier NotificationService,
	log *zap.Logger,
) LeaderboardService {
	return &leaderboardService{
		repo:           repo,
		userRepo:       userRepo,
		teamRepo:       teamRepo,
		individualRepo: individualRepo,
		taxonomyRepo:   taxonomyRepo,
		notifier:       notifier,
		log:            log,
	}
}

// storeErr surfaces store deadline misses as a retryable error.
func storeErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", apperror.ErrUnavailable, err)
	}
	return err
}

// RecordScore upserts (points, last_updated) for the subject without touching
// its rank; the rank stays stale until the next recompute pass.
func (s *leaderboardService) RecordScore(ctx context.Context, kind string, subjectID uuid.UUID, points int, source string) error {
	if !model.ValidKind(kind) {
		return fmt.Errorf("%w: unknown kind %q", apperror.ErrInvalidInput, kind)
	}
	if subjectID == uuid.Nil {
		return fmt.Errorf("%w: missing subject id", apperror.ErrInvalidInput)
	}

	if err := s.repo.Upsert(ctx, kind, subjectID, points, time.Now()); err != nil {
		return storeErr(err)
	}

	// The audit trail is itself best-effort.
	logEntry := &model.ScoreLog{Kind: kind, SubjectID: subjectID, Points: points, Source: source}
	if err := s.repo.CreateScoreLog(ctx, logEntry); err != nil {
		s.log.Warn("failed to append score log",
			zap.String("kind", kind),
			zap.String("subject_id", subjectID.String()),
			zap.Error(err))
	}

	return nil
}

func (s *leaderboardService) SyncSkills(ctx context.Context, userID uuid.UUID, techStackIDs, languageIDs, tagIDs []string) error {
	if userID == uuid.Nil {
		return fmt.Errorf("%w: missing user id", apperror.ErrInvalidInput)
	}
	return storeErr(s.repo.UpsertSkills(ctx, userID, techStackIDs, languageIDs, tagIDs))
}

func (s *leaderboardService) RemoveSubject(ctx context.Context, kind string, subjectID uuid.UUID) error {
	if !model.ValidKind(kind) {
		return fmt.Errorf("%w: unknown kind %q", apperror.ErrInvalidInput, kind)
	}
	return storeErr(s.repo.Delete(ctx, kind, subjectID))
}

// RecomputeRanks runs one full dense-ranking pass over a kind: sort by points
// descending, ties broken by most recent update, ranks 1..N with no gaps or
// shares. Single-entry write failures are logged and skipped; a partial pass
// self-heals on the next invocation.
func (s *leaderboardService) RecomputeRanks(ctx context.Context, kind string) (int, error) {
	if !model.ValidKind(kind) {
		return 0, fmt.Errorf("%w: unknown kind %q", apperror.ErrInvalidInput, kind)
	}

	entries, err := s.repo.ListAll(ctx, kind)
	if err != nil {
		return 0, storeErr(err)
	}

	// Sort here rather than trusting store ordering, so the engine stays
	// correct against any store implementation.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].LastUpdated.After(entries[j].LastUpdated)
	})

	updated := 0
	for i := range entries {
		entry := &entries[i]
		rank := i + 1
		if entry.Rank == rank {
			continue
		}

		if err := s.repo.UpdateRank(ctx, kind, entry.SubjectID(), rank); err != nil {
			s.log.Error("rank write failed mid-pass, continuing",
				zap.String("kind", kind),
				zap.String("subject_id", entry.SubjectID().String()),
				zap.Int("rank", rank),
				zap.Error(err))
			continue
		}
		updated++

		s.notifyPodiumEntry(ctx, entry, rank)
	}

	return updated, nil
}

// notifyPodiumEntry tells an individual when a recompute moves them into the
// top three. Best-effort, like everything downstream of ranking.
func (s *leaderboardService) notifyPodiumEntry(ctx context.Context, entry *model.LeaderboardEntry, newRank int) {
	if s.notifier == nil || entry.Kind != model.KindIndividual || entry.UserID == nil {
		return
	}
	if newRank > 3 || (entry.Rank != 0 && entry.Rank <= 3) {
		return
	}

	notification := &model.Notification{
		UserID:     *entry.UserID,
		EntityID:   entry.ID,
		EntityType: "leaderboard",
		Type:       "rank_change",
		Message:    fmt.Sprintf("You climbed to rank %d on the leaderboard!", newRank),
	}
	if err := s.notifier.CreateNotification(ctx, notification); err != nil {
		s.log.Warn("failed to send rank change notification",
			zap.String("user_id", entry.UserID.String()),
			zap.Error(err))
	}
}

// UpdateRankings recomputes both kinds. The passes are independent: a failure
// in one does not stop the other, and partial success is reported.
func (s *leaderboardService) UpdateRankings(ctx context.Context) (*dto.RecomputeResult, error) {
	result := &dto.RecomputeResult{}

	individualCount, indErr := s.RecomputeRanks(ctx, model.KindIndividual)
	if indErr != nil {
		s.log.Error("individual rank recompute failed", zap.Error(indErr))
	}
	result.IndividualCount = individualCount

	teamCount, teamErr := s.RecomputeRanks(ctx, model.KindTeam)
	if teamErr != nil {
		s.log.Error("team rank recompute failed", zap.Error(teamErr))
	}
	result.TeamCount = teamCount

	if indErr != nil && teamErr != nil {
		return nil, indErr
	}
	return result, nil
}

// Refresh is the reconciliation sweep: register live subjects that have no
// ranking entry, drop entries whose subject is gone, then recompute.
func (s *leaderboardService) Refresh(ctx context.Context) (*dto.RefreshResult, error) {
	result := &dto.RefreshResult{}

	individuals, err := s.individualRepo.ListAll(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	liveUsers := make(map[uuid.UUID]bool, len(individuals))
	for _, individual := range individuals {
		liveUsers[individual.UserID] = true
		if _, err := s.repo.Get(ctx, model.KindIndividual, individual.UserID); err == nil {
			continue
		} else if !errors.Is(err, apperror.ErrNotFound) {
			return nil, storeErr(err)
		}

		if err := s.RecordScore(ctx, model.KindIndividual, individual.UserID, individual.Points, ScoreSourceRefresh); err != nil {
			s.log.Warn("refresh could not register individual",
				zap.String("user_id", individual.UserID.String()), zap.Error(err))
			continue
		}
		if err := s.SyncSkills(ctx, individual.UserID, individual.TechStacks, individual.Languages, individual.Tags); err != nil {
			s.log.Warn("refresh could not sync skills",
				zap.String("user_id", individual.UserID.String()), zap.Error(err))
		}
		result.IndividualsRegistered++
	}

	teams, err := s.teamRepo.ListAll(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	liveTeams := make(map[uuid.UUID]bool, len(teams))
	for _, team := range teams {
		liveTeams[team.ID] = true
		if _, err := s.repo.Get(ctx, model.KindTeam, team.ID); err == nil {
			continue
		} else if !errors.Is(err, apperror.ErrNotFound) {
			return nil, storeErr(err)
		}

		if err := s.RecordScore(ctx, model.KindTeam, team.ID, team.Points, ScoreSourceRefresh); err != nil {
			s.log.Warn("refresh could not register team",
				zap.String("team_id", team.ID.String()), zap.Error(err))
			continue
		}
		result.TeamsRegistered++
	}

	result.OrphansRemoved = s.removeOrphans(ctx, model.KindIndividual, liveUsers) +
		s.removeOrphans(ctx, model.KindTeam, liveTeams)

	recompute, err := s.UpdateRankings(ctx)
	if err != nil {
		return nil, err
	}
	result.IndividualCount = recompute.IndividualCount
	result.TeamCount = recompute.TeamCount

	return result, nil
}

// removeOrphans deletes ranking entries whose backing subject no longer
// exists (missed delete-cascades). Best-effort.
func (s *leaderboardService) removeOrphans(ctx context.Context, kind string, live map[uuid.UUID]bool) int {
	entries, err := s.repo.ListAll(ctx, kind)
	if err != nil {
		s.log.Warn("orphan scan failed", zap.String("kind", kind), zap.Error(err))
		return 0
	}

	removed := 0
	for i := range entries {
		subjectID := entries[i].SubjectID()
		if live[subjectID] {
			continue
		}
		if err := s.repo.Delete(ctx, kind, subjectID); err != nil {
			s.log.Warn("failed to remove orphaned entry",
				zap.String("kind", kind),
				zap.String("subject_id", subjectID.String()),
				zap.Error(err))
			continue
		}
		removed++
	}
	return removed
}

// Initialize rebuilds the ranking table from every current subject and then
// recomputes. Unlike Refresh it overwrites points for entries that already
// exist.
func (s *leaderboardService) Initialize(ctx context.Context) (*dto.RefreshResult, error) {
	result := &dto.RefreshResult{}

	individuals, err := s.individualRepo.ListAll(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	for _, individual := range individuals {
		if err := s.RecordScore(ctx, model.KindIndividual, individual.UserID, individual.Points, ScoreSourceRegister); err != nil {
			s.log.Warn("initialize could not register individual",
				zap.String("user_id", individual.UserID.String()), zap.Error(err))
			continue
		}
		if err := s.SyncSkills(ctx, individual.UserID, individual.TechStacks, individual.Languages, individual.Tags); err != nil {
			s.log.Warn("initialize could not sync skills",
				zap.String("user_id", individual.UserID.String()), zap.Error(err))
		}
		result.IndividualsRegistered++
	}

	teams, err := s.teamRepo.ListAll(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	for _, team := range teams {
		if err := s.RecordScore(ctx, model.KindTeam, team.ID, team.Points, ScoreSourceRegister); err != nil {
			s.log.Warn("initialize could not register team",
				zap.String("team_id", team.ID.String()), zap.Error(err))
			continue
		}
		result.TeamsRegistered++
	}

	recompute, err := s.UpdateRankings(ctx)
	if err != nil {
		return nil, err
	}
	result.IndividualCount = recompute.IndividualCount
	result.TeamCount = recompute.TeamCount

	return result, nil
}

// GetLeaderboard serves one page of the ranked view. It fetches every
// filter-matching entry, joins directory records in one batched lookup per
// directory, applies the display-name/email search on the joined rows, and
// only then paginates, so totals stay correct under search. Rows whose
// directory record is missing are dropped, not surfaced as errors.
func (s *leaderboardService) GetLeaderboard(ctx context.Context, query dto.LeaderboardQuery) (*dto.LeaderboardPage, error) {
	kind := query.Type
	if kind == "" {
		kind = model.KindIndividual
	}
	if !model.ValidKind(kind) {
		return nil, fmt.Errorf("%w: type must be 'individual' or 'team'", apperror.ErrInvalidInput)
	}

	page := dto.PageQuery{Page: query.Page, Limit: query.Limit}
	page.Normalize()

	filter, err := s.resolveFilter(ctx, query)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.ListFiltered(ctx, kind, filter)
	if err != nil {
		return nil, storeErr(err)
	}

	var rows []dto.LeaderboardRow
	if kind == model.KindIndividual {
		rows, err = s.joinIndividuals(ctx, entries)
	} else {
		rows, err = s.joinTeams(ctx, entries)
	}
	if err != nil {
		return nil, storeErr(err)
	}

	if search := strings.ToLower(strings.TrimSpace(query.Search)); search != "" {
		filtered := rows[:0]
		for _, row := range rows {
			if strings.Contains(strings.ToLower(row.Name), search) ||
				strings.Contains(strings.ToLower(row.Email), search) {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	total := int64(len(rows))
	totalPages := int((total + int64(page.Limit) - 1) / int64(page.Limit))

	start := (page.Page - 1) * page.Limit
	if start > len(rows) {
		start = len(rows)
	}
	end := start + page.Limit
	if end > len(rows) {
		end = len(rows)
	}

	result := &dto.LeaderboardPage{
		Results:  rows[start:end],
		TopThree: []dto.LeaderboardRow{},
		Pagination: dto.Pagination{
			Page:       page.Page,
			Limit:      page.Limit,
			TotalCount: total,
			TotalPages: totalPages,
		},
	}
	if result.Results == nil {
		result.Results = []dto.LeaderboardRow{}
	}

	// Podium rows come from the fully sorted set, not the current page, and
	// only accompany page one.
	if page.Page == 1 && len(rows) > 0 {
		top := 3
		if len(rows) < top {
			top = len(rows)
		}
		result.TopThree = rows[:top]
	}

	return result, nil
}

// resolveFilter translates taxonomy names into ids. A name that matches
// nothing simply doesn't constrain the query, matching how the filter UI
// offers free-text facet values.
func (s *leaderboardService) resolveFilter(ctx context.Context, query dto.LeaderboardQuery) (repository.LeaderboardFilter, error) {
	var filter repository.LeaderboardFilter

	if query.TechStack != "" {
		item, err := s.taxonomyRepo.FindTechStackByContent(ctx, query.TechStack)
		if err == nil {
			filter.TechStackID = item.ID.String()
		} else if !errors.Is(err, apperror.ErrNotFound) {
			return filter, storeErr(err)
		}
	}
	if query.Language != "" {
		item, err := s.taxonomyRepo.FindLanguageByContent(ctx, query.Language)
		if err == nil {
			filter.LanguageID = item.ID.String()
		} else if !errors.Is(err, apperror.ErrNotFound) {
			return filter, storeErr(err)
		}
	}
	if query.Tag != "" {
		item, err := s.taxonomyRepo.FindTagByContent(ctx, query.Tag)
		if err == nil {
			filter.TagID = item.ID.String()
		} else if !errors.Is(err, apperror.ErrNotFound) {
			return filter, storeErr(err)
		}
	}

	return filter, nil
}

func (s *leaderboardService) joinIndividuals(ctx context.Context, entries []model.LeaderboardEntry) ([]dto.LeaderboardRow, error) {
	userIDs := make([]uuid.UUID, 0, len(entries))
	for i := range entries {
		if entries[i].UserID != nil {
			userIDs = append(userIDs, *entries[i].UserID)
		}
	}

	users, err := s.userRepo.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	details, err := s.userRepo.FindDetailsByUserIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	userMap := make(map[uuid.UUID]model.User, len(users))
	for _, user := range users {
		userMap[user.ID] = user
	}
	detailMap := make(map[uuid.UUID]model.UserDetail, len(details))
	for _, detail := range details {
		detailMap[detail.UserID] = detail
	}

	rows := make([]dto.LeaderboardRow, 0, len(entries))
	for i := range entries {
		entry := &entries[i]
		if entry.UserID == nil {
			continue
		}
		user, ok := userMap[*entry.UserID]
		if !ok {
			// Entry survived a user deletion; the refresh sweep will
			// collect it.
			s.log.Debug("dropping leaderboard entry with missing user",
				zap.String("user_id", entry.UserID.String()))
			continue
		}

		name := user.Email
		if at := strings.Index(name, "@"); at > 0 {
			name = name[:at]
		}
		if detail, ok := detailMap[*entry.UserID]; ok && detail.Name != "" {
			name = detail.Name
		}

		rows = append(rows, dto.LeaderboardRow{
			Rank:           displayRank(entry.Rank, len(rows)),
			Name:           name,
			Points:         entry.Points,
			UserID:         entry.UserID,
			Email:          user.Email,
			ProfilePicture: user.ProfilePicture,
			TechStack:      skillLabel(entry.TechStacks),
			Language:       skillLabel(entry.Languages),
		})
	}
	return rows, nil
}

func (s *leaderboardService) joinTeams(ctx context.Context, entries []model.LeaderboardEntry) ([]dto.LeaderboardRow, error) {
	teamIDs := make([]uuid.UUID, 0, len(entries))
	for i := range entries {
		if entries[i].TeamID != nil {
			teamIDs = append(teamIDs, *entries[i].TeamID)
		}
	}

	teams, err := s.teamRepo.FindByIDs(ctx, teamIDs)
	if err != nil {
		return nil, err
	}
	teamMap := make(map[uuid.UUID]model.Team, len(teams))
	for _, team := range teams {
		teamMap[team.ID] = team
	}

	rows := make([]dto.LeaderboardRow, 0, len(entries))
	for i := range entries {
		entry := &entries[i]
		if entry.TeamID == nil {
			continue
		}
		team, ok := teamMap[*entry.TeamID]
		if !ok {
			s.log.Debug("dropping leaderboard entry with missing team",
				zap.String("team_id", entry.TeamID.String()))
			continue
		}

		rows = append(rows, dto.LeaderboardRow{
			Rank:      displayRank(entry.Rank, len(rows)),
			Name:      team.Name,
			Points:    entry.Points,
			TeamID:    entry.TeamID,
			TeamLogo:  team.Logo,
			Members:   len(team.Members),
			TechStack: skillLabel(entry.TechStacks),
		})
	}
	return rows, nil
}

// displayRank trusts the persisted rank; entries never touched by a recompute
// pass (rank 0) fall back to their position in the sorted result.
func displayRank(persisted, position int) int {
	if persisted > 0 {
		return persisted
	}
	return position + 1
}

func skillLabel(ids []string) string {
	if len(ids) > 0 {
		return "Multiple"
	}
	return "Not specified"
}

func (s *leaderboardService) GetFilters(ctx context.Context) (*dto.LeaderboardFilters, error) {
	techStacks, err := s.taxonomyRepo.ListTechStacks(ctx, "", filterFacetLimit)
	if err != nil {
		return nil, storeErr(err)
	}
	languages, err := s.taxonomyRepo.ListLanguages(ctx, "", filterFacetLimit)
	if err != nil {
		return nil, storeErr(err)
	}
	tags, err := s.taxonomyRepo.ListTags(ctx, "", filterFacetLimit)
	if err != nil {
		return nil, storeErr(err)
	}

	filters := &dto.LeaderboardFilters{
		TechStacks: make([]string, 0, len(techStacks)),
		Languages:  make([]string, 0, len(languages)),
		Tags:       make([]string, 0, len(tags)),
	}
	for _, item := range techStacks {
		filters.TechStacks = append(filters.TechStacks, item.Content)
	}
	for _, item := range languages {
		filters.Languages = append(filters.Languages, item.Content)
	}
	for _, item := range tags {
		filters.Tags = append(filters.Tags, item.Content)
	}
	return filters, nil
}
