package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cyberhunter-club/cyber-hunter-backend/internal/dto"
	"github.com/cyberhunter-club/cyber-hunter-backend/internal/model"
	"github.com/cyberhunter-club/cyber-hunter-backend/pkg/apperror"
)

func newIndividualFixture() (*leaderboardFixture, IndividualService) {
	f := newLeaderboardFixture()
	svc := NewIndividualService(f.individuals, f.users, f.service, zap.NewNop())
	return f, svc
}

func TestIndividualCreateRegistersOnLeaderboard(t *testing.T) {
	f, svc := newIndividualFixture()
	ctx := context.Background()
	userID := uuid.New()

	resp, err := svc.Create(ctx, userID, dto.CreateIndividualRequest{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if resp.UserID != userID {
		t.Fatalf("unexpected user id %s", resp.UserID)
	}

	entry := f.repo.find(model.KindIndividual, userID)
	if entry == nil {
		t.Fatal("profile creation did not register a ranking entry")
	}
	if entry.Points != 0 {
		t.Fatalf("fresh profile should register with 0 points, got %d", entry.Points)
	}

	if _, err := svc.Create(ctx, userID, dto.CreateIndividualRequest{}); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("second profile for the same user: expected ErrConflict, got %v", err)
	}
}

func TestIndividualUpdatePointsPushesScore(t *testing.T) {
	f, svc := newIndividualFixture()
	ctx := context.Background()
	userID := uuid.New()

	created, err := svc.Create(ctx, userID, dto.CreateIndividualRequest{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	resp, err := svc.UpdatePoints(ctx, created.ID, 120)
	if err != nil {
		t.Fatalf("update points: %v", err)
	}
	if resp.Points != 120 {
		t.Fatalf("authoritative points not persisted, got %d", resp.Points)
	}

	entry := f.repo.find(model.KindIndividual, userID)
	if entry == nil || entry.Points != 120 {
		t.Fatal("score push did not reach the ranking store")
	}
	if entry.Rank != 0 {
		t.Fatalf("push must not assign a rank, got %d", entry.Rank)
	}
}

func TestIndividualUpdateSyncsSkills(t *testing.T) {
	f, svc := newIndividualFixture()
	ctx := context.Background()
	userID := uuid.New()

	created, err := svc.Create(ctx, userID, dto.CreateIndividualRequest{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	stackID := uuid.New().String()
	if _, err := svc.Update(ctx, userID, created.ID, dto.UpdateIndividualRequest{
		TechStackIDs: []string{stackID},
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	entry := f.repo.find(model.KindIndividual, userID)
	if entry == nil || len(entry.TechStacks) != 1 || entry.TechStacks[0] != stackID {
		t.Fatal("skill sets were not mirrored onto the ranking entry")
	}
}

func TestIndividualUpdateRejectsNonOwner(t *testing.T) {
	_, svc := newIndividualFixture()
	ctx := context.Background()
	userID := uuid.New()

	created, err := svc.Create(ctx, userID, dto.CreateIndividualRequest{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	desc := "not my profile"
	if _, err := svc.Update(ctx, uuid.New(), created.ID, dto.UpdateIndividualRequest{
		Description: &desc,
	}); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for a non-owner, got %v", err)
	}

	profile, err := svc.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if profile.Description != nil {
		t.Fatal("rejected update must not change the profile")
	}
}

func TestIndividualDeleteCascadesToLeaderboard(t *testing.T) {
	f, svc := newIndividualFixture()
	ctx := context.Background()
	userID := uuid.New()

	created, err := svc.Create(ctx, userID, dto.CreateIndividualRequest{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if f.repo.find(model.KindIndividual, userID) != nil {
		t.Fatal("ranking entry survived profile deletion")
	}
	if _, err := svc.GetByID(ctx, created.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
