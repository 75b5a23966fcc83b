package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arbeit/talentportal/internal/domain"
)

func TestClientNamesUniqueIgnoringCase(t *testing.T) {
	ctx := context.Background()
	repo := NewClientRepository()
	if err := repo.Create(ctx, &domain.Client{ClientID: "client_1", CompanyName: "Acme Corporation"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := repo.Create(ctx, &domain.Client{ClientID: "client_2", CompanyName: "ACME corporation"})
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	if err := repo.Create(ctx, &domain.Client{ClientID: "client_3", CompanyName: "Globex"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Update(ctx, &domain.Client{ClientID: "client_3", CompanyName: "acme corporation"}); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("rename onto existing name should fail, got %v", err)
	}
	if err := repo.Update(ctx, &domain.Client{ClientID: "client_1", CompanyName: "Acme Corporation", Status: domain.ClientStatusInactive}); err != nil {
		t.Fatalf("keeping own name must be allowed: %v", err)
	}
}

func TestClientListSearchAndPaging(t *testing.T) {
	ctx := context.Background()
	repo := NewClientRepository()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"Acme", "Globex", "Acme Labs", "Initech"} {
		repo.Create(ctx, &domain.Client{ClientID: name, CompanyName: name, CreatedAt: base.Add(time.Duration(i) * time.Hour)})
	}

	got, _ := repo.List(ctx, domain.ClientFilter{Search: "acme"})
	if len(got) != 2 || got[0].CompanyName != "Acme" || got[1].CompanyName != "Acme Labs" {
		t.Fatalf("unexpected search result %+v", got)
	}

	got, _ = repo.List(ctx, domain.ClientFilter{Skip: 1, Limit: 2})
	if len(got) != 2 || got[0].CompanyName != "Globex" {
		t.Fatalf("unexpected page %+v", got)
	}

	got, _ = repo.List(ctx, domain.ClientFilter{Skip: 10})
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil page, got %#v", got)
	}
}

func TestJobSearchMatchesTitleOrSkill(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepository()
	repo.Create(ctx, &domain.Job{JobID: "job_1", ClientID: "c1", Title: "Senior Go Engineer", RequiredSkills: []string{"Go"}})
	repo.Create(ctx, &domain.Job{JobID: "job_2", ClientID: "c1", Title: "Data Scientist", RequiredSkills: []string{"Python", "PostgreSQL"}})
	repo.Create(ctx, &domain.Job{JobID: "job_3", ClientID: "c2", Title: "Backend Developer", RequiredSkills: []string{"postgresql"}, Status: domain.JobStatusActive})

	got, _ := repo.List(ctx, domain.JobFilter{Search: "POSTGRES"})
	if len(got) != 2 {
		t.Fatalf("expected 2 jobs by skill, got %d", len(got))
	}
	got, _ = repo.List(ctx, domain.JobFilter{Search: "postgres", ClientID: "c2", Status: domain.JobStatusActive})
	if len(got) != 1 || got[0].JobID != "job_3" {
		t.Fatalf("unexpected filtered jobs %+v", got)
	}
}

func TestRepositoriesReturnCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewCandidateRepository()
	c := &domain.Candidate{CandidateID: "cand_1", JobID: "job_1", Name: "Ada", Skills: []string{"Go"}}
	repo.Create(ctx, c)
	c.Skills[0] = "mutated"

	got, _ := repo.GetByID(ctx, "cand_1")
	if got.Skills[0] != "Go" {
		t.Fatalf("stored candidate aliased caller slice")
	}
	got.Name = "changed"
	again, _ := repo.GetByID(ctx, "cand_1")
	if again.Name != "Ada" {
		t.Fatalf("returned candidate aliased stored value")
	}

	if _, err := repo.GetByID(ctx, "cand_missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReviewsNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewReviewRepository()
	t0 := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	repo.Create(ctx, &domain.Review{ReviewID: "rev_1", CandidateID: "cand_1", Timestamp: t0})
	repo.Create(ctx, &domain.Review{ReviewID: "rev_2", CandidateID: "cand_1", Timestamp: t0.Add(time.Minute)})
	repo.Create(ctx, &domain.Review{ReviewID: "rev_3", CandidateID: "cand_2", Timestamp: t0})
	repo.Create(ctx, &domain.Review{ReviewID: "rev_4", CandidateID: "cand_1", Timestamp: t0.Add(time.Minute)})

	got, _ := repo.ListByCandidate(ctx, "cand_1")
	if len(got) != 3 {
		t.Fatalf("expected 3 reviews, got %d", len(got))
	}
	if got[0].ReviewID != "rev_4" || got[1].ReviewID != "rev_2" || got[2].ReviewID != "rev_1" {
		t.Fatalf("unexpected order %s %s %s", got[0].ReviewID, got[1].ReviewID, got[2].ReviewID)
	}
}

func TestUserCountByClient(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	store.Users.Create(ctx, &domain.User{Email: "a@acme.com", Role: domain.RoleClientUser, ClientID: "client_1"})
	store.Users.Create(ctx, &domain.User{Email: "b@acme.com", Role: domain.RoleClientUser, ClientID: "client_1"})
	store.Users.Create(ctx, &domain.User{Email: "r@arbeit.com", Role: domain.RoleRecruiter})

	if n, _ := store.Users.CountByClient(ctx, "client_1"); n != 2 {
		t.Fatalf("expected 2 users, got %d", n)
	}
	if err := store.Users.Create(ctx, &domain.User{Email: "a@acme.com"}); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("expected duplicate email, got %v", err)
	}
}

func TestCandidateAccountsEmailUniqueAndNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewCandidateAccountRepository()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	years := 4
	accounts := []domain.CandidateAccount{
		{AccountID: "cand_1", Email: "ana@example.com", Name: "Ana", Status: domain.AccountStatusActive, CreatedAt: base, ExperienceYears: &years},
		{AccountID: "cand_2", Email: "ben@example.com", Name: "Ben", Status: domain.AccountStatusDisabled, CreatedAt: base.Add(time.Hour)},
		{AccountID: "cand_3", Email: "cleo@example.com", Name: "Cleo Ana", Status: domain.AccountStatusActive, CreatedAt: base.Add(2 * time.Hour)},
	}
	for i := range accounts {
		if err := repo.Create(ctx, &accounts[i]); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := repo.Create(ctx, &domain.CandidateAccount{AccountID: "cand_4", Email: "ANA@example.com"}); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	got, err := repo.GetByEmail(ctx, "Ana@Example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	*got.ExperienceYears = 99
	again, _ := repo.GetByID(ctx, "cand_1")
	if *again.ExperienceYears != 4 {
		t.Fatalf("repository must return copies, got %d", *again.ExperienceYears)
	}

	list, _ := repo.List(ctx, domain.CandidateAccountFilter{Search: "ana"})
	if len(list) != 2 || list[0].AccountID != "cand_3" || list[1].AccountID != "cand_1" {
		t.Fatalf("unexpected search result %+v", list)
	}
	list, _ = repo.List(ctx, domain.CandidateAccountFilter{Status: domain.AccountStatusDisabled})
	if len(list) != 1 || list[0].AccountID != "cand_2" {
		t.Fatalf("unexpected status filter result %+v", list)
	}
}
