package auth

import (
	"testing"
	"time"

	"github.com/climatecare/repairdesk/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("unit-test-secret", 30)

	token, expiresAt, err := tm.GenerateToken("user-7", domain.RoleSpecialist)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if until := time.Until(expiresAt); until < 29*time.Minute || until > 31*time.Minute {
		t.Errorf("expiry %v from now, want about 30m", until)
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != "user-7" {
		t.Errorf("subject = %q, want user-7", claims.Subject)
	}
	if claims.Role != domain.RoleSpecialist {
		t.Errorf("role = %q, want %q", claims.Role, domain.RoleSpecialist)
	}
}

func TestParseTokenRejectsForeignSignature(t *testing.T) {
	issuer := NewTokenManager("secret-one", 30)
	verifier := NewTokenManager("secret-two", 30)

	token, _, err := issuer.GenerateToken("user-7", domain.RoleClient)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := verifier.ParseToken(token); err == nil {
		t.Fatal("token signed with a different secret parsed")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tm := NewTokenManager("unit-test-secret", 30)
	tm.ttl = -time.Minute

	token, _, err := tm.GenerateToken("user-7", domain.RoleManager)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := tm.ParseToken(token); err == nil {
		t.Fatal("expired token parsed")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("unit-test-secret", 30)
	for _, tokenStr := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := tm.ParseToken(tokenStr); err == nil {
			t.Errorf("ParseToken(%q) succeeded", tokenStr)
		}
	}
}

func TestNewTokenManagerDefaultsTTL(t *testing.T) {
	tm := NewTokenManager("unit-test-secret", 0)
	if tm.ttl != time.Hour {
		t.Errorf("ttl = %v, want 1h default", tm.ttl)
	}
}
