package domain_test

import (
	"testing"

	"github.com/arbeit/talentportal/internal/domain"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.Role
		wantErr bool
		staff   bool
	}{
		{"admin", domain.RoleAdmin, false, true},
		{"recruiter", domain.RoleRecruiter, false, true},
		{"client_user", domain.RoleClientUser, false, false},
		{"candidate", domain.RoleCandidate, false, false},
		{"Admin", "", true, false},
		{"", "", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := domain.ParseRole(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRole(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if got.IsStaff() != tt.staff {
				t.Fatalf("IsStaff(%q) = %v, want %v", got, got.IsStaff(), tt.staff)
			}
		})
	}
}

func TestReviewActionCandidateStatus(t *testing.T) {
	tests := []struct {
		action     string
		wantStatus string
		changes    bool
	}{
		{"APPROVE", "APPROVE", true},
		{"PIPELINE", "PIPELINE", true},
		{"REJECT", "REJECT", true},
		{"COMMENT", "", false},
	}
	for _, tt := range tests {
		a, err := domain.ParseReviewAction(tt.action)
		if err != nil {
			t.Fatalf("ParseReviewAction(%q): %v", tt.action, err)
		}
		status, ok := a.CandidateStatus()
		if ok != tt.changes || status != tt.wantStatus {
			t.Errorf("%s: got (%q, %v), want (%q, %v)", tt.action, status, ok, tt.wantStatus, tt.changes)
		}
	}

	if _, err := domain.ParseReviewAction("APPROVED"); err == nil {
		t.Fatalf("expected APPROVED to be rejected as an action token")
	}
}

func TestClampFitScore(t *testing.T) {
	s := &domain.CandidateStory{FitScore: 140}
	s.ClampFitScore()
	if s.FitScore != 100 {
		t.Fatalf("expected 100, got %d", s.FitScore)
	}
	s.FitScore = -3
	s.ClampFitScore()
	if s.FitScore != 0 {
		t.Fatalf("expected 0, got %d", s.FitScore)
	}
}
