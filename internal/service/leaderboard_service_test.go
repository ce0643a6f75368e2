package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cyberhunter-club/cyber-hunter-backend/internal/dto"
	"github.com/cyberhunter-club/cyber-hunter-backend/internal/model"
	"github.com/cyberhunter-club/cyber-hunter-backend/internal/repository"
	"github.com/cyberhunter-club/cyber-hunter-backend/pkg/apperror"
)

// --- in-memory fakes -------------------------------------------------------

type fakeLeaderboardRepo struct {
	entries  []model.LeaderboardEntry
	logs     []model.ScoreLog
	failRank map[uuid.UUID]bool
}

func newFakeLeaderboardRepo() *fakeLeaderboardRepo {
	return &fakeLeaderboardRepo{failRank: map[uuid.UUID]bool{}}
}

func (f *fakeLeaderboardRepo) find(kind string, subjectID uuid.UUID) *model.LeaderboardEntry {
	for i := range f.entries {
		if f.entries[i].Kind == kind && f.entries[i].SubjectID() == subjectID {
			return &f.entries[i]
		}
	}
	return nil
}

func (f *fakeLeaderboardRepo) Upsert(ctx context.Context, kind string, subjectID uuid.UUID, points int, updatedAt time.Time) error {
	if entry := f.find(kind, subjectID); entry != nil {
		entry.Points = points
		entry.LastUpdated = updatedAt
		return nil
	}
	entry := model.LeaderboardEntry{ID: uuid.New(), Kind: kind, Points: points, LastUpdated: updatedAt}
	id := subjectID
	if kind == model.KindTeam {
		entry.TeamID = &id
	} else {
		entry.UserID = &id
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeLeaderboardRepo) UpsertSkills(ctx context.Context, userID uuid.UUID, techStacks, languages, tags []string) error {
	if entry := f.find(model.KindIndividual, userID); entry != nil {
		entry.TechStacks = techStacks
		entry.Languages = languages
		entry.Tags = tags
	}
	return nil
}

func (f *fakeLeaderboardRepo) Get(ctx context.Context, kind string, subjectID uuid.UUID) (*model.LeaderboardEntry, error) {
	if entry := f.find(kind, subjectID); entry != nil {
		copied := *entry
		return &copied, nil
	}
	return nil, apperror.ErrNotFound
}

func (f *fakeLeaderboardRepo) sorted(kind string, filter repository.LeaderboardFilter) []model.LeaderboardEntry {
	contains := func(set []string, id string) bool {
		for _, s := range set {
			if s == id {
				return true
			}
		}
		return false
	}

	var out []model.LeaderboardEntry
	for _, entry := range f.entries {
		if entry.Kind != kind {
			continue
		}
		if filter.TechStackID != "" && !contains(entry.TechStacks, filter.TechStackID) {
			continue
		}
		if filter.LanguageID != "" && !contains(entry.Languages, filter.LanguageID) {
			continue
		}
		if filter.TagID != "" && !contains(entry.Tags, filter.TagID) {
			continue
		}
		out = append(out, entry)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].LastUpdated.After(out[j].LastUpdated)
	})
	return out
}

func (f *fakeLeaderboardRepo) ListAll(ctx context.Context, kind string) ([]model.LeaderboardEntry, error) {
	return f.sorted(kind, repository.LeaderboardFilter{}), nil
}

func (f *fakeLeaderboardRepo) ListFiltered(ctx context.Context, kind string, filter repository.LeaderboardFilter) ([]model.LeaderboardEntry, error) {
	return f.sorted(kind, filter), nil
}

func (f *fakeLeaderboardRepo) Page(ctx context.Context, kind string, filter repository.LeaderboardFilter, offset, limit int) ([]model.LeaderboardEntry, int64, error) {
	all := f.sorted(kind, filter)
	total := int64(len(all))
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (f *fakeLeaderboardRepo) UpdateRank(ctx context.Context, kind string, subjectID uuid.UUID, rank int) error {
	if f.failRank[subjectID] {
		return fmt.Errorf("rank write refused")
	}
	if entry := f.find(kind, subjectID); entry != nil {
		entry.Rank = rank
	}
	return nil
}

func (f *fakeLeaderboardRepo) Delete(ctx context.Context, kind string, subjectID uuid.UUID) error {
	for i := range f.entries {
		if f.entries[i].Kind == kind && f.entries[i].SubjectID() == subjectID {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeLeaderboardRepo) CreateScoreLog(ctx context.Context, log *model.ScoreLog) error {
	f.logs = append(f.logs, *log)
	return nil
}

type fakeUserRepo struct {
	users   map[uuid.UUID]model.User
	details map[uuid.UUID]model.UserDetail
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]model.User{}, details: map[uuid.UUID]model.UserDetail{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) CreateDetail(ctx context.Context, detail *model.UserDetail) error {
	f.details[detail.UserID] = *detail
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.ErrNotFound
	}
	if user, ok := f.users[parsed]; ok {
		return &user, nil
	}
	return nil, apperror.ErrNotFound
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (f *fakeUserRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error) {
	var out []model.User
	for _, id := range ids {
		if user, ok := f.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) FindDetailsByUserIDs(ctx context.Context, ids []uuid.UUID) ([]model.UserDetail, error) {
	var out []model.UserDetail
	for _, id := range ids {
		if detail, ok := f.details[id]; ok {
			out = append(out, detail)
		}
	}
	return out, nil
}

type fakeTeamRepo struct {
	teams map[uuid.UUID]model.Team
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: map[uuid.UUID]model.Team{}}
}

func (f *fakeTeamRepo) Create(ctx context.Context, team *model.Team) error {
	if team.ID == uuid.Nil {
		team.ID = uuid.New()
	}
	f.teams[team.ID] = *team
	return nil
}

func (f *fakeTeamRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	if team, ok := f.teams[id]; ok {
		return &team, nil
	}
	return nil, apperror.ErrNotFound
}

func (f *fakeTeamRepo) FindByCreatorID(ctx context.Context, creatorID uuid.UUID) (*model.Team, error) {
	for _, team := range f.teams {
		if team.CreatorID == creatorID {
			t := team
			return &t, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (f *fakeTeamRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Team, error) {
	var out []model.Team
	for _, id := range ids {
		if team, ok := f.teams[id]; ok {
			out = append(out, team)
		}
	}
	return out, nil
}

func (f *fakeTeamRepo) ListAll(ctx context.Context) ([]model.Team, error) {
	var out []model.Team
	for _, team := range f.teams {
		out = append(out, team)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	return out, nil
}

func (f *fakeTeamRepo) Update(ctx context.Context, team *model.Team) error {
	f.teams[team.ID] = *team
	return nil
}

func (f *fakeTeamRepo) AddMember(ctx context.Context, member *model.TeamMember) error {
	team, ok := f.teams[member.TeamID]
	if !ok {
		return apperror.ErrNotFound
	}
	team.Members = append(team.Members, *member)
	f.teams[member.TeamID] = team
	return nil
}

func (f *fakeTeamRepo) UpdatePoints(ctx context.Context, id uuid.UUID, points int) (*model.Team, error) {
	team, ok := f.teams[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	team.Points = points
	f.teams[id] = team
	return &team, nil
}

func (f *fakeTeamRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.teams, id)
	return nil
}

type fakeIndividualRepo struct {
	individuals map[uuid.UUID]model.Individual
}

func newFakeIndividualRepo() *fakeIndividualRepo {
	return &fakeIndividualRepo{individuals: map[uuid.UUID]model.Individual{}}
}

// seed stores a profile keyed by its own ID, the way Create does, so lookups
// by ID find what was planted.
func (f *fakeIndividualRepo) seed(individual model.Individual) model.Individual {
	if individual.ID == uuid.Nil {
		individual.ID = uuid.New()
	}
	f.individuals[individual.ID] = individual
	return individual
}

func (f *fakeIndividualRepo) Create(ctx context.Context, individual *model.Individual) error {
	if individual.ID == uuid.Nil {
		individual.ID = uuid.New()
	}
	f.individuals[individual.ID] = *individual
	return nil
}

func (f *fakeIndividualRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Individual, error) {
	if individual, ok := f.individuals[id]; ok {
		return &individual, nil
	}
	return nil, apperror.ErrNotFound
}

func (f *fakeIndividualRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Individual, error) {
	for _, individual := range f.individuals {
		if individual.UserID == userID {
			i := individual
			return &i, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (f *fakeIndividualRepo) ListAll(ctx context.Context) ([]model.Individual, error) {
	var out []model.Individual
	for _, individual := range f.individuals {
		out = append(out, individual)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID.String() < out[j].UserID.String() })
	return out, nil
}

func (f *fakeIndividualRepo) Update(ctx context.Context, individual *model.Individual) error {
	f.individuals[individual.ID] = *individual
	return nil
}

func (f *fakeIndividualRepo) UpdatePoints(ctx context.Context, id uuid.UUID, points int) (*model.Individual, error) {
	individual, ok := f.individuals[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	individual.Points = points
	f.individuals[id] = individual
	return &individual, nil
}

func (f *fakeIndividualRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.individuals, id)
	return nil
}

type fakeTaxonomyRepo struct {
	techStacks []model.TechStack
	languages  []model.Language
	tags       []model.Tag
	interests  []model.Interest
}

func (f *fakeTaxonomyRepo) CreateTechStack(ctx context.Context, t *model.TechStack) error {
	f.techStacks = append(f.techStacks, *t)
	return nil
}

func (f *fakeTaxonomyRepo) CreateLanguage(ctx context.Context, l *model.Language) error {
	f.languages = append(f.languages, *l)
	return nil
}

func (f *fakeTaxonomyRepo) CreateTag(ctx context.Context, t *model.Tag) error {
	f.tags = append(f.tags, *t)
	return nil
}

func (f *fakeTaxonomyRepo) CreateInterest(ctx context.Context, i *model.Interest) error {
	f.interests = append(f.interests, *i)
	return nil
}

func (f *fakeTaxonomyRepo) ListTechStacks(ctx context.Context, search string, limit int) ([]model.TechStack, error) {
	if limit > len(f.techStacks) {
		limit = len(f.techStacks)
	}
	return f.techStacks[:limit], nil
}

func (f *fakeTaxonomyRepo) ListLanguages(ctx context.Context, search string, limit int) ([]model.Language, error) {
	if limit > len(f.languages) {
		limit = len(f.languages)
	}
	return f.languages[:limit], nil
}

func (f *fakeTaxonomyRepo) ListTags(ctx context.Context, search string, limit int) ([]model.Tag, error) {
	if limit > len(f.tags) {
		limit = len(f.tags)
	}
	return f.tags[:limit], nil
}

func (f *fakeTaxonomyRepo) ListInterests(ctx context.Context, search string, limit int) ([]model.Interest, error) {
	if limit > len(f.interests) {
		limit = len(f.interests)
	}
	return f.interests[:limit], nil
}

func (f *fakeTaxonomyRepo) FindTechStackByContent(ctx context.Context, content string) (*model.TechStack, error) {
	for _, item := range f.techStacks {
		if strings.EqualFold(item.Content, content) {
			t := item
			return &t, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (f *fakeTaxonomyRepo) FindLanguageByContent(ctx context.Context, content string) (*model.Language, error) {
	for _, item := range f.languages {
		if strings.EqualFold(item.Content, content) {
			l := item
			return &l, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (f *fakeTaxonomyRepo) FindTagByContent(ctx context.Context, content string) (*model.Tag, error) {
	for _, item := range f.tags {
		if strings.EqualFold(item.Content, content) {
			t := item
			return &t, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (f *fakeTaxonomyRepo) DeleteTechStack(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakeTaxonomyRepo) DeleteLanguage(ctx context.Context, id uuid.UUID) error  { return nil }
func (f *fakeTaxonomyRepo) DeleteTag(ctx context.Context, id uuid.UUID) error       { return nil }
func (f *fakeTaxonomyRepo) DeleteInterest(ctx context.Context, id uuid.UUID) error  { return nil }

type fakeNotifier struct {
	notifications []model.Notification
}

func (f *fakeNotifier) CreateNotification(ctx context.Context, notification *model.Notification) error {
	f.notifications = append(f.notifications, *notification)
	return nil
}

func (f *fakeNotifier) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, error) {
	return nil, nil
}

func (f *fakeNotifier) MarkAsRead(ctx context.Context, id uuid.UUID) error        { return nil }
func (f *fakeNotifier) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error { return nil }
func (f *fakeNotifier) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

type leaderboardFixture struct {
	repo        *fakeLeaderboardRepo
	users       *fakeUserRepo
	teams       *fakeTeamRepo
	individuals *fakeIndividualRepo
	taxonomies  *fakeTaxonomyRepo
	notifier    *fakeNotifier
	service     LeaderboardService
}

func newLeaderboardFixture() *leaderboardFixture {
	f := &leaderboardFixture{
		repo:        newFakeLeaderboardRepo(),
		users:       newFakeUserRepo(),
		teams:       newFakeTeamRepo(),
		individuals: newFakeIndividualRepo(),
		taxonomies:  &fakeTaxonomyRepo{},
		notifier:    &fakeNotifier{},
	}
	f.service = NewLeaderboardService(
		f.repo, f.users, f.teams, f.individuals, f.taxonomies, f.notifier, zap.NewNop(),
	)
	return f
}

func (f *leaderboardFixture) addUser(name string, points int, at time.Time) uuid.UUID {
	userID := uuid.New()
	f.users.users[userID] = model.User{ID: userID, Email: strings.ToLower(name) + "@example.com"}
	f.users.details[userID] = model.UserDetail{UserID: userID, Name: name}
	entry := model.LeaderboardEntry{
		ID: uuid.New(), Kind: model.KindIndividual, UserID: &userID,
		Points: points, LastUpdated: at,
	}
	f.repo.entries = append(f.repo.entries, entry)
	return userID
}

// --- tests -----------------------------------------------------------------

func TestRecordScoreValidation(t *testing.T) {
	f := newLeaderboardFixture()
	ctx := context.Background()

	if err := f.service.RecordScore(ctx, "guild", uuid.New(), 10, ScoreSourceIndividual); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown kind, got %v", err)
	}
	if err := f.service.RecordScore(ctx, model.KindIndividual, uuid.Nil, 10, ScoreSourceIndividual); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for nil subject, got %v", err)
	}
}

func TestRecordScoreUpsertIsKeyed(t *testing.T) {
	f := newLeaderboardFixture()
	ctx := context.Background()
	userID := uuid.New()

	if err := f.service.RecordScore(ctx, model.KindIndividual, userID, 40, ScoreSourceIndividual); err != nil {
		t.Fatalf("first push: %v", err)
	}
	if err := f.service.RecordScore(ctx, model.KindIndividual, userID, 90, ScoreSourceProject); err != nil {
		t.Fatalf("second push: %v", err)
	}

	if len(f.repo.entries) != 1 {
		t.Fatalf("expected a single entry per (kind, subject), got %d", len(f.repo.entries))
	}
	entry := f.repo.entries[0]
	if entry.Points != 90 {
		t.Fatalf("expected points overwritten to 90, got %d", entry.Points)
	}
	if entry.Rank != 0 {
		t.Fatalf("score push must not assign a rank, got %d", entry.Rank)
	}
	if len(f.repo.logs) != 2 {
		t.Fatalf("expected 2 audit log rows, got %d", len(f.repo.logs))
	}
}

func TestRecomputeRanksDenseWithTieBreak(t *testing.T) {
	f := newLeaderboardFixture()
	ctx := context.Background()
	base := time.Now()

	low := f.addUser("Carol", 50, base)
	older := f.addUser("Alice", 80, base.Add(-time.Hour))
	newer := f.addUser("Bob", 80, base.Add(time.Hour))

	updated, err := f.service.RecomputeRanks(ctx, model.KindIndividual)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if updated != 3 {
		t.Fatalf("expected 3 rank writes, got %d", updated)
	}

	wantRanks := map[uuid.UUID]int{newer: 1, older: 2, low: 3}
	for subjectID, want := range wantRanks {
		entry := f.repo.find(model.KindIndividual, subjectID)
		if entry == nil {
			t.Fatalf("entry for %s missing", subjectID)
		}
		if entry.Rank != want {
			t.Fatalf("subject %s: want rank %d, got %d", subjectID, want, entry.Rank)
		}
	}
}

func TestRecomputeRanksIdempotent(t *testing.T) {
	f := newLeaderboardFixture()
	ctx := context.Background()
	f.addUser("Alice", 10, time.Now())
	f.addUser("Bob", 20, time.Now())

	if _, err := f.service.RecomputeRanks(ctx, model.KindIndividual); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	updated, err := f.service.RecomputeRanks(ctx, model.KindIndividual)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if updated != 0 {
		t.Fatalf("second pass over unchanged scores should write nothing, wrote %d", updated)
	}
}

func TestRecomputeRanksSkipsFailedWrites(t *testing.T) {
	f := newLeaderboardFixture()
	ctx := context.Background()
	base := time.Now()

	f.addUser("Alice", 30, base)
	stuck := f.addUser("Bob", 20, base)
	f.addUser("Carol", 10, base)
	f.repo.failRank[stuck] = true

	updated, err := f.service.RecomputeRanks(ctx, model.KindIndividual)
	if err != nil {
		t.Fatalf("partial failure must not abort the pass: %v", err)
	}
	if updated != 2 {
		t.Fatalf("expected 2 successful writes, got %d", updated)
	}
	if entry := f.repo.find(model.KindIndividual, stuck); entry.Rank != 0 {
		t.Fatalf("failed write should leave rank untouched, got %d", entry.Rank)
	}
}

func TestRecomputePodiumNotification(t *testing.T) {
	f := newLeaderboardFixture()
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 4; i++ {
		f.addUser(fmt.Sprintf("User%d", i), 10*(i+1), base)
	}

	if _, err := f.service.RecomputeRanks(ctx, model.KindIndividual); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	// All four entries were unranked; the three that land on the podium get
	// notified, the fourth does not.
	if len(f.notifier.notifications) != 3 {
		t.Fatalf("expected 3 podium notifications, got %d", len(f.notifier.notifications))
	}
	for _, n := range f.notifier.notifications {
		if n.Type != "rank_change" {
			t.Fatalf("unexpected notification type %q", n.Type)
		}
	}

	// A second unchanged pass writes nothing and notifies no one.
	f.notifier.notifications = nil
	if _, err := f.service.RecomputeRanks(ctx, model.KindIndividual); err != nil {
		t.Fatalf("second recompute: %v", err)
	}
	if len(f.notifier.notifications) != 0 {
		t.Fatalf("unchanged pass must not re-notify, got %d", len(f.notifier.notifications))
	}
}

func TestUpdateRankingsCoversBothKinds(t *testing.T) {
	f := newLeaderboardFixture()
	ctx := context.Background()
	base := time.Now()

	f.addUser("Alice", 10, base)
	f.addUser("Bob", 20, base)

	teamID := uuid.New()
	f.teams.teams[teamID] = model.Team{ID: teamID, Name: "Phantom Bytes"}
	f.repo.entries = append(f.repo.entries, model.LeaderboardEntry{
		ID: uuid.New(), Kind: model.KindTeam, TeamID: &teamID, Points: 70, LastUpdated: base,
	})

	result, err := f.service.UpdateRankings(ctx)
	if err != nil {
		t.Fatalf("update rankings: %v", err)
	}
	if result.IndividualCount != 2 || result.TeamCount != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
}

func TestRefreshRegistersMissingAndRemovesOrphans(t *testing.T) {
	f := newLeaderboardFixture()
	ctx := context.Background()
	base := time.Now()

	// A live profile with no ranking entry.
	missingUser := uuid.New()
	f.users.users[missingUser] = model.User{ID: missingUser, Email: "missing@example.com"}
	f.individuals.seed(model.Individual{
		UserID: missingUser, Points: 42,
		TechStacks: []string{"ts-1"},
	})

	// An entry whose profile is gone.
	orphan := uuid.New()
	f.repo.entries = append(f.repo.entries, model.LeaderboardEntry{
		ID: uuid.New(), Kind: model.KindIndividual, UserID: &orphan, Points: 5, LastUpdated: base,
	})

	result, err := f.service.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if result.IndividualsRegistered != 1 {
		t.Fatalf("expected 1 registered individual, got %d", result.IndividualsRegistered)
	}
	if result.OrphansRemoved != 1 {
		t.Fatalf("expected 1 orphan removed, got %d", result.OrphansRemoved)
	}

	entry := f.repo.find(model.KindIndividual, missingUser)
	if entry == nil {
		t.Fatal("missing profile was not registered")
	}
	if entry.Points != 42 {
		t.Fatalf("registered entry should carry authoritative points, got %d", entry.Points)
	}
	if len(entry.TechStacks) != 1 || entry.TechStacks[0] != "ts-1" {
		t.Fatalf("skills not synced on register: %v", entry.TechStacks)
	}
	if f.repo.find(model.KindIndividual, orphan) != nil {
		t.Fatal("orphaned entry survived the sweep")
	}
}

func TestRefreshLeavesExistingPointsAlone(t *testing.T) {
	f := newLeaderboardFixture()
	ctx := context.Background()

	userID := f.addUser("Alice", 10, time.Now())
	f.individuals.seed(model.Individual{UserID: userID, Points: 99})

	if _, err := f.service.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	// Refresh registers, it does not repair drifted points; that is what
	// Initialize is for.
	if entry := f.repo.find(model.KindIndividual, userID); entry.Points != 10 {
		t.Fatalf("refresh must not overwrite existing points, got %d", entry.Points)
	}
}

func TestInitializeOverwritesStalePoints(t *testing.T) {
	f := newLeaderboardFixture()
	ctx := context.Background()

	userID := f.addUser("Alice", 10, time.Now())
	f.individuals.seed(model.Individual{UserID: userID, Points: 99})

	teamID := uuid.New()
	f.teams.teams[teamID] = model.Team{ID: teamID, Name: "Phantom Bytes", Points: 55}

	result, err := f.service.Initialize(ctx)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if result.IndividualsRegistered != 1 || result.TeamsRegistered != 1 {
		t.Fatalf("unexpected registration counts: %+v", result)
	}
	if entry := f.repo.find(model.KindIndividual, userID); entry.Points != 99 {
		t.Fatalf("initialize must overwrite to authoritative points, got %d", entry.Points)
	}
	if entry := f.repo.find(model.KindTeam, teamID); entry == nil || entry.Points != 55 {
		t.Fatal("team was not seeded from its authoritative record")
	}
}

func TestGetLeaderboardRanksAndPodium(t *testing.T) {
	f := newLeaderboardFixture()
	ctx := context.Background()
	base := time.Now()

	f.addUser("Carol", 50, base)
	f.addUser("Alice", 80, base.Add(-time.Hour))
	f.addUser("Bob", 80, base.Add(time.Hour))

	if _, err := f.service.UpdateRankings(ctx); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	page, err := f.service.GetLeaderboard(ctx, dto.LeaderboardQuery{})
	if err != nil {
		t.Fatalf("get leaderboard: %v", err)
	}

	wantOrder := []struct {
		name string
		rank int
	}{{"Bob", 1}, {"Alice", 2}, {"Carol", 3}}

	if len(page.Results) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(page.Results))
	}
	for i, want := range wantOrder {
		row := page.Results[i]
		if row.Name != want.name || row.Rank != want.rank {
			t.Fatalf("row %d: want %s rank %d, got %s rank %d", i, want.name, want.rank, row.Name, row.Rank)
		}
	}
	if len(page.TopThree) != 3 {
		t.Fatalf("page one must carry the podium, got %d rows", len(page.TopThree))
	}
	if page.Pagination.TotalCount != 3 || page.Pagination.TotalPages != 1 {
		t.Fatalf("unexpected pagination: %+v", page.Pagination)
	}
}

func TestGetLeaderboardPagination(t *testing.T) {
	f := newLeaderboardFixture()
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 5; i++ {
		f.addUser(fmt.Sprintf("User%d", i), 100-i*10, base.Add(time.Duration(i)*time.Minute))
	}

	page, err := f.service.GetLeaderboard(ctx, dto.LeaderboardQuery{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("get leaderboard: %v", err)
	}
	if len(page.Results) != 2 {
		t.Fatalf("expected 2 rows on page 2, got %d", len(page.Results))
	}
	if page.Pagination.TotalCount != 5 || page.Pagination.TotalPages != 3 {
		t.Fatalf("unexpected pagination: %+v", page.Pagination)
	}
	if len(page.TopThree) != 0 {
		t.Fatalf("podium belongs to page one only, got %d rows", len(page.TopThree))
	}
	// Unranked rows fall back to positional ranks, which must continue across
	// page boundaries.
	if page.Results[0].Rank != 3 || page.Results[1].Rank != 4 {
		t.Fatalf("positional rank fallback broke across pages: %d, %d", page.Results[0].Rank, page.Results[1].Rank)
	}
}

func TestGetLeaderboardSearchCountsAfterFiltering(t *testing.T) {
	f := newLeaderboardFixture()
	ctx := context.Background()
	base := time.Now()

	f.addUser("Alina", 30, base)
	f.addUser("Boris", 20, base)
	f.addUser("Galina", 10, base)

	page, err := f.service.GetLeaderboard(ctx, dto.LeaderboardQuery{Search: "lina"})
	if err != nil {
		t.Fatalf("get leaderboard: %v", err)
	}
	if len(page.Results) != 2 {
		t.Fatalf("expected 2 matches for 'lina', got %d", len(page.Results))
	}
	if page.Pagination.TotalCount != 2 {
		t.Fatalf("total count must reflect the searched set, got %d", page.Pagination.TotalCount)
	}
	if page.Results[0].Name != "Alina" || page.Results[1].Name != "Galina" {
		t.Fatalf("unexpected search results: %s, %s", page.Results[0].Name, page.Results[1].Name)
	}
}

func TestGetLeaderboardDropsDriftedRows(t *testing.T) {
	f := newLeaderboardFixture()
	ctx := context.Background()
	base := time.Now()

	f.addUser("Alice", 30, base)

	// An entry that outlived its user record.
	ghost := uuid.New()
	f.repo.entries = append(f.repo.entries, model.LeaderboardEntry{
		ID: uuid.New(), Kind: model.KindIndividual, UserID: &ghost, Points: 99, LastUpdated: base,
	})

	page, err := f.service.GetLeaderboard(ctx, dto.LeaderboardQuery{})
	if err != nil {
		t.Fatalf("drifted rows must not fail the read: %v", err)
	}
	if len(page.Results) != 1 || page.Results[0].Name != "Alice" {
		t.Fatalf("expected the drifted row dropped, got %d rows", len(page.Results))
	}
	if page.Pagination.TotalCount != 1 {
		t.Fatalf("total count must exclude dropped rows, got %d", page.Pagination.TotalCount)
	}
}

func TestGetLeaderboardTagFilter(t *testing.T) {
	f := newLeaderboardFixture()
	ctx := context.Background()
	base := time.Now()

	tagID := uuid.New()
	f.taxonomies.tags = append(f.taxonomies.tags, model.Tag{ID: tagID, Content: "CTF"})

	for i := 0; i < 5; i++ {
		teamID := uuid.New()
		f.teams.teams[teamID] = model.Team{ID: teamID, Name: fmt.Sprintf("Team%d", i)}
		entry := model.LeaderboardEntry{
			ID: uuid.New(), Kind: model.KindTeam, TeamID: &teamID,
			Points: 10 * (i + 1), LastUpdated: base,
		}
		if i < 2 {
			entry.Tags = []string{tagID.String()}
		}
		f.repo.entries = append(f.repo.entries, entry)
	}

	page, err := f.service.GetLeaderboard(ctx, dto.LeaderboardQuery{Type: model.KindTeam, Tag: "ctf"})
	if err != nil {
		t.Fatalf("get leaderboard: %v", err)
	}
	if len(page.Results) != 2 {
		t.Fatalf("expected exactly the 2 tagged teams, got %d", len(page.Results))
	}
	if page.Pagination.TotalCount != 2 {
		t.Fatalf("total count must honor the filter, got %d", page.Pagination.TotalCount)
	}
}

func TestGetLeaderboardIgnoresUnknownFilterName(t *testing.T) {
	f := newLeaderboardFixture()
	ctx := context.Background()

	f.addUser("Alice", 30, time.Now())

	page, err := f.service.GetLeaderboard(ctx, dto.LeaderboardQuery{TechStack: "no-such-stack"})
	if err != nil {
		t.Fatalf("unknown facet names must not error: %v", err)
	}
	if len(page.Results) != 1 {
		t.Fatalf("unmatched filter name should not constrain, got %d rows", len(page.Results))
	}
}

func TestGetLeaderboardRejectsUnknownKind(t *testing.T) {
	f := newLeaderboardFixture()
	if _, err := f.service.GetLeaderboard(context.Background(), dto.LeaderboardQuery{Type: "guild"}); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRemoveSubjectDeletesEntry(t *testing.T) {
	f := newLeaderboardFixture()
	ctx := context.Background()

	userID := f.addUser("Alice", 30, time.Now())
	if err := f.service.RemoveSubject(ctx, model.KindIndividual, userID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if f.repo.find(model.KindIndividual, userID) != nil {
		t.Fatal("entry survived removal")
	}
}

func TestGetFiltersCapsFacets(t *testing.T) {
	f := newLeaderboardFixture()
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		f.taxonomies.techStacks = append(f.taxonomies.techStacks, model.TechStack{ID: uuid.New(), Content: fmt.Sprintf("Stack%d", i)})
	}
	f.taxonomies.languages = append(f.taxonomies.languages, model.Language{ID: uuid.New(), Content: "Go"})

	filters, err := f.service.GetFilters(ctx)
	if err != nil {
		t.Fatalf("get filters: %v", err)
	}
	if len(filters.TechStacks) != filterFacetLimit {
		t.Fatalf("expected facet list capped at %d, got %d", filterFacetLimit, len(filters.TechStacks))
	}
	if len(filters.Languages) != 1 || len(filters.Tags) != 0 {
		t.Fatalf("unexpected facets: %+v", filters)
	}
}

func TestStoreErrMapsDeadline(t *testing.T) {
	err := storeErr(fmt.Errorf("query: %w", context.DeadlineExceeded))
	if !errors.Is(err, apperror.ErrUnavailable) {
		t.Fatalf("deadline should map to ErrUnavailable, got %v", err)
	}
	plain := errors.New("boom")
	if got := storeErr(plain); !errors.Is(got, plain) {
		t.Fatalf("other errors must pass through, got %v", got)
	}
}
