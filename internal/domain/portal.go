package domain

import (
	"context"
	"time"
)

// Candidate portal account status values
const (
	AccountStatusActive   = "active"
	AccountStatusDisabled = "disabled"
)

// CandidateAccount is a job seeker's login on the candidate portal. It is
// kept apart from staff and tenant users and never grants API access
// outside the portal.
type CandidateAccount struct {
	AccountID          string
	Email              string
	Name               string
	Phone              string
	LinkedInURL        string
	CurrentCompany     string
	ExperienceYears    *int
	PasswordHash       string
	MustChangePassword bool
	Status             string
	CreatedAt          time.Time
	CreatedBy          string // "self" for registrations
	UpdatedAt          time.Time
	LastLoginAt        *time.Time
}

// CandidateAccountFilter narrows account listings
type CandidateAccountFilter struct {
	Search string // case-insensitive substring of name or email
	Status string
	Skip   int
	Limit  int
}

// CandidateAccountRepository defines data access for portal accounts
type CandidateAccountRepository interface {
	Create(ctx context.Context, account *CandidateAccount) error
	GetByID(ctx context.Context, id string) (*CandidateAccount, error)
	GetByEmail(ctx context.Context, email string) (*CandidateAccount, error)
	Update(ctx context.Context, account *CandidateAccount) error
	List(ctx context.Context, filter CandidateAccountFilter) ([]*CandidateAccount, error)
}
