package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arbeit/talentportal/internal/domain"
	"github.com/arbeit/talentportal/internal/security/auth"
)

// Demo tenant and accounts created by Seed
const (
	DemoClientID = "client_001"
	DemoJobID    = "job_001"
)

type demoUser struct {
	email, name, password string
	role                  domain.Role
	clientID              string
}

var demoUsers = []demoUser{
	{"admin@arbeit.com", "Admin User", "admin123", domain.RoleAdmin, ""},
	{"recruiter@arbeit.com", "Sarah Recruiter", "recruiter123", domain.RoleRecruiter, ""},
	{"client@acme.com", "John Client", "client123", domain.RoleClientUser, DemoClientID},
}

// Seed inserts the demo tenant, its users and one job. Existing records are
// left untouched so it is safe to run on every start.
func Seed(ctx context.Context, users domain.UserRepository, clients domain.ClientRepository, jobs domain.JobRepository, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	now := time.Now().UTC()

	if _, err := clients.GetByID(ctx, DemoClientID); errors.Is(err, domain.ErrNotFound) {
		err := clients.Create(ctx, &domain.Client{
			ClientID:    DemoClientID,
			CompanyName: "Acme Corporation",
			Status:      domain.ClientStatusActive,
			CreatedAt:   now,
			CreatedBy:   "admin@arbeit.com",
			UpdatedAt:   now,
		})
		if err != nil && !errors.Is(err, domain.ErrDuplicate) {
			return fmt.Errorf("seed client: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("seed client: %w", err)
	}

	for _, u := range demoUsers {
		if _, err := users.GetByEmail(ctx, u.email); err == nil {
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("seed user %s: %w", u.email, err)
		}
		hash, err := auth.HashPassword(u.password)
		if err != nil {
			return err
		}
		err = users.Create(ctx, &domain.User{
			Email:        u.email,
			Name:         u.name,
			Role:         u.role,
			ClientID:     u.clientID,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil && !errors.Is(err, domain.ErrDuplicate) {
			return fmt.Errorf("seed user %s: %w", u.email, err)
		}
	}

	if _, err := jobs.GetByID(ctx, DemoJobID); errors.Is(err, domain.ErrNotFound) {
		err := jobs.Create(ctx, &domain.Job{
			JobID:           DemoJobID,
			ClientID:        DemoClientID,
			Title:           "Senior Software Engineer",
			Location:        "San Francisco, CA",
			EmploymentType:  "Full-time",
			ExperienceRange: domain.ExperienceRange{MinYears: 3, MaxYears: 8},
			SalaryRange:     &domain.SalaryRange{MinAmount: 120000, MaxAmount: 180000, Currency: "USD"},
			WorkModel:       "Hybrid",
			RequiredSkills:  []string{"Python", "React", "AWS", "Docker"},
			Description:     "We are looking for a senior software engineer to join our growing team.",
			Status:          domain.JobStatusActive,
			CreatedAt:       now,
			CreatedBy:       "admin@arbeit.com",
			UpdatedAt:       now,
		})
		if err != nil && !errors.Is(err, domain.ErrDuplicate) {
			return fmt.Errorf("seed job: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("seed job: %w", err)
	}

	logger.Info("demo data seeded", slog.String("client_id", DemoClientID), slog.Int("users", len(demoUsers)))
	return nil
}
