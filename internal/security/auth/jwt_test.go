package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/arbeit/talentportal/internal/domain"
)

func TestGenerateAndValidateToken(t *testing.T) {
	tm := NewTokenManager("secret", "talentportal", time.Hour)
	user := &domain.User{Email: "client@acme.com", Name: "Acme User", Role: domain.RoleClientUser, ClientID: "client_001"}

	tok, err := tm.GenerateToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := tm.ValidateToken(tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Email != user.Email || claims.Subject != user.Email {
		t.Fatalf("unexpected subject/email: %+v", claims)
	}
	pr, err := claims.Principal()
	if err != nil {
		t.Fatalf("principal: %v", err)
	}
	if pr.Role != domain.RoleClientUser || pr.ClientID != "client_001" || pr.Name != "Acme User" {
		t.Fatalf("unexpected principal: %+v", pr)
	}
}

func TestValidateTokenExpired(t *testing.T) {
	tm := NewTokenManager("secret", "", time.Hour)
	past := time.Now().Add(-2 * time.Hour)
	tm.now = func() time.Time { return past }
	tok, err := tm.GenerateToken(&domain.User{Email: "a@b.io", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	tm.now = time.Now
	if _, err := tm.ValidateToken(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestValidateTokenInvalid(t *testing.T) {
	tm := NewTokenManager("secret", "", time.Hour)
	other := NewTokenManager("other-secret", "", time.Hour)
	tok, _ := other.GenerateToken(&domain.User{Email: "a@b.io", Role: domain.RoleAdmin})

	for _, s := range []string{tok, "not-a-jwt", ""} {
		if _, err := tm.ValidateToken(s); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("ValidateToken(%q) = %v, want ErrTokenInvalid", s, err)
		}
	}
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		err    error
	}{
		{"Bearer abc", "abc", nil},
		{"bearer abc", "abc", nil},
		{"", "", ErrMissingToken},
		{"Basic abc", "", ErrTokenInvalid},
		{"Bearer", "", ErrTokenInvalid},
	}
	for _, tt := range tests {
		got, err := ExtractToken(tt.header)
		if got != tt.want || !errors.Is(err, tt.err) {
			t.Errorf("ExtractToken(%q) = (%q, %v), want (%q, %v)", tt.header, got, err, tt.want, tt.err)
		}
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("recruiter123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "recruiter123") {
		t.Fatalf("expected password to match")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("expected mismatch")
	}
}
