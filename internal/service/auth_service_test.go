package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cyberhunter-club/cyber-hunter-backend/internal/config"
	"github.com/cyberhunter-club/cyber-hunter-backend/internal/dto"
	"github.com/cyberhunter-club/cyber-hunter-backend/pkg/apperror"
)

func newTestAuthService(users *fakeUserRepo) AuthService {
	return NewAuthService(users, &config.Config{
		JWTSecret: "test-secret",
		JWTExpiry: time.Hour,
	})
}

func TestRegisterAndLogin(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(users)
	ctx := context.Background()

	resp, err := svc.Register(ctx, dto.RegisterRequest{
		Email:    "hunter@example.com",
		Password: "correct-horse",
		Name:     "Hunter",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("register must issue a token")
	}
	if resp.User.Name != "Hunter" {
		t.Fatalf("unexpected user name %q", resp.User.Name)
	}

	// The issued token carries the user id as its subject.
	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(resp.Token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != resp.User.ID.String() {
		t.Fatalf("token subject %q does not match user id %q", claims.Subject, resp.User.ID)
	}

	login, err := svc.Login(ctx, dto.LoginRequest{Email: "hunter@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.User.ID != resp.User.ID {
		t.Fatal("login resolved a different user")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(users)
	ctx := context.Background()

	req := dto.RegisterRequest{Email: "hunter@example.com", Password: "correct-horse", Name: "Hunter"}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, req); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(users)
	ctx := context.Background()

	if _, err := svc.Register(ctx, dto.RegisterRequest{
		Email: "hunter@example.com", Password: "correct-horse", Name: "Hunter",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(ctx, dto.LoginRequest{Email: "hunter@example.com", Password: "wrong"}); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("wrong password: expected ErrUnauthorized, got %v", err)
	}
	// Unknown emails get the same answer as wrong passwords.
	if _, err := svc.Login(ctx, dto.LoginRequest{Email: "nobody@example.com", Password: "whatever"}); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("unknown email: expected ErrUnauthorized, got %v", err)
	}
}
