package service

import (
	"context"
	"testing"
	"time"

	"github.com/climatecare/repairdesk/internal/auth"
	"github.com/climatecare/repairdesk/internal/config"
	"github.com/climatecare/repairdesk/internal/domain"
)

func newAuthFixture(t *testing.T) (*AuthService, *memUserRepo, *domain.User) {
	t.Helper()
	users := newMemUserRepo()
	hash, err := auth.HashPassword("workshop-rules")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	account := users.add(domain.User{
		FullName:     "Sten Holm",
		Login:        "sten",
		PasswordHash: hash,
		Role:         domain.RoleSpecialist,
	})
	cfg := config.Config{
		Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 30},
	}
	return NewAuthService(cfg, AuthDependencies{UserRepo: users}), users, account
}

func TestLoginIssuesToken(t *testing.T) {
	svc, _, account := newAuthFixture(t)

	user, token, expiry, err := svc.Login(context.Background(), "  sten  ", "workshop-rules")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != account.ID {
		t.Errorf("user ID = %s, want %s", user.ID, account.ID)
	}
	if token == "" {
		t.Fatal("expected a token")
	}
	if !expiry.After(time.Now()) {
		t.Errorf("expiry %v is not in the future", expiry)
	}

	claims, err := svc.TokenManager().ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != account.ID {
		t.Errorf("token subject = %s, want %s", claims.Subject, account.ID)
	}
	if claims.Role != domain.RoleSpecialist {
		t.Errorf("token role = %s, want %s", claims.Role, domain.RoleSpecialist)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, _, _, wrongPassword := svc.Login(context.Background(), "sten", "guessing")
	_, _, _, unknownLogin := svc.Login(context.Background(), "nobody", "guessing")

	assertCode(t, wrongPassword, "UNAUTHORIZED")
	assertCode(t, unknownLogin, "UNAUTHORIZED")
	if wrongPassword.Error() != unknownLogin.Error() {
		t.Errorf("failure messages differ: %q vs %q", wrongPassword, unknownLogin)
	}
}

func TestChangePassword(t *testing.T) {
	svc, users, account := newAuthFixture(t)
	ctx := context.Background()

	assertCode(t, svc.ChangePassword(ctx, account.ID, "guessing", "next-password"), "UNAUTHORIZED")

	if err := svc.ChangePassword(ctx, account.ID, "workshop-rules", "next-password"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	stored, err := users.GetByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !auth.VerifyPassword("next-password", stored.PasswordHash) {
		t.Error("new password does not verify against stored hash")
	}
	if auth.VerifyPassword("workshop-rules", stored.PasswordHash) {
		t.Error("old password still verifies")
	}

	assertCode(t, svc.ChangePassword(ctx, account.ID, "next-password", ""), "VALIDATION_FAILED")
}

func TestLogoutIsNoop(t *testing.T) {
	svc, _, account := newAuthFixture(t)
	if err := svc.Logout(context.Background(), account.ID); err != nil {
		t.Fatalf("Logout: %v", err)
	}
}
