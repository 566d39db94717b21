package service_test

import (
	"AssetVault/internal/apperr"
	"AssetVault/internal/dto"
	"AssetVault/internal/repo"
	"AssetVault/internal/repo/repotest"
	"AssetVault/internal/service"
	"AssetVault/model"
	"AssetVault/utils"
	"context"
	"testing"
	"time"
)

func newUserService(t *testing.T) (*service.UserService, *utils.TokenManager) {
	t.Helper()
	db := repotest.Open(t)
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	return service.NewUserService(repo.NewUserRepo(db), tokens, repo.NewActivityRepo(db), nil), tokens
}

func TestRegisterAndLogin(t *testing.T) {
	svc, tokens := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, dto.RegisterRequest{Name: "Ann", Email: " Ann@Test.com ", Password: "secret1"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Role != model.RoleUser || user.Email != "ann@test.com" {
		t.Errorf("unexpected user %+v", user)
	}
	if user.Password == "secret1" {
		t.Errorf("password stored in clear")
	}

	token, loggedIn, err := svc.Login(ctx, dto.LoginRequest{Email: "ann@test.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Errorf("logged in as %d, want %d", loggedIn.ID, user.ID)
	}
	identity, err := tokens.VerifyToken(token)
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if identity.UserID != user.ID || identity.Role != model.RoleUser {
		t.Errorf("unexpected identity %+v", identity)
	}

	profile, err := svc.Profile(ctx, user.ID)
	if err != nil || profile.Email != user.Email {
		t.Errorf("profile = %+v, %v", profile, err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()
	req := dto.RegisterRequest{Name: "A", Email: "dup@test.com", Password: "secret1"}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := svc.Register(ctx, req); apperr.KindOf(err) != apperr.Conflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, dto.RegisterRequest{Name: "A", Email: "a@test.com", Password: "secret1"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	for _, req := range []dto.LoginRequest{
		{Email: "a@test.com", Password: "wrong-pass"},
		{Email: "nobody@test.com", Password: "secret1"},
	} {
		_, _, err := svc.Login(ctx, req)
		if apperr.KindOf(err) != apperr.InvalidLogin || apperr.Message(err) != "invalid credentials" {
			t.Errorf("%s: expected invalid login, got %v", req.Email, err)
		}
	}
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	svc, tokens := newUserService(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := svc.EnsureAdmin(ctx, "root@test.com", "rootpass"); err != nil {
			t.Fatalf("ensure admin %d: %v", i, err)
		}
	}
	users, err := svc.ListUsers(ctx)
	if err != nil || len(users) != 1 {
		t.Fatalf("expected exactly one user, got %d (%v)", len(users), err)
	}
	token, _, err := svc.Login(ctx, dto.LoginRequest{Email: "root@test.com", Password: "rootpass"})
	if err != nil {
		t.Fatalf("admin login failed: %v", err)
	}
	identity, _ := tokens.VerifyToken(token)
	if identity.Role != model.RoleAdmin {
		t.Errorf("role = %q", identity.Role)
	}
	if err := svc.EnsureAdmin(ctx, "", ""); err != nil {
		t.Errorf("empty bootstrap config should be a no-op: %v", err)
	}
}
