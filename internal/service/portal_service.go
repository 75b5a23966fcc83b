package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/arbeit/talentportal/internal/domain"
	"github.com/arbeit/talentportal/internal/observability/metrics"
	"github.com/arbeit/talentportal/internal/security"
	"github.com/arbeit/talentportal/internal/security/auth"
	"github.com/arbeit/talentportal/internal/security/ratelimit"
)

// CandidateOnly is the detail returned when a non-candidate calls a
// candidate-only portal operation, and the reverse at the middleware.
const CandidateOnly = "Candidate portal access only"

// PortalRegisterInput is a self-registration or a staff-created account
type PortalRegisterInput struct {
	Email           string
	Password        string
	Name            string
	Phone           string
	LinkedInURL     string
	CurrentCompany  string
	ExperienceYears *int
}

// PortalLoginResult carries the bearer token for a candidate. When
// MustChangePassword is set the client should force a password change
// before anything else.
type PortalLoginResult struct {
	AccessToken        string
	TokenType          string
	ExpiresIn          int
	MustChangePassword bool
	Account            *domain.CandidateAccount
}

// PortalService runs the candidate portal: job seekers sign up and sign
// in here, and staff manage their accounts.
type PortalService struct {
	accounts domain.CandidateAccountRepository
	tokens   *auth.TokenManager
	guard    *ratelimit.LoginGuard
	policy   *security.Policy
	logger   *slog.Logger
	now      func() time.Time
}

func NewPortalService(
	accounts domain.CandidateAccountRepository,
	tokens *auth.TokenManager,
	guard *ratelimit.LoginGuard,
	policy *security.Policy,
	logger *slog.Logger,
) *PortalService {
	if logger == nil {
		logger = slog.Default()
	}
	if guard == nil {
		guard = ratelimit.NewLoginGuard(0)
	}
	return &PortalService{
		accounts: accounts,
		tokens:   tokens,
		guard:    guard,
		policy:   policy,
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates a self-service account. Self-registered candidates
// chose their own password so they are not asked to change it.
func (s *PortalService) Register(ctx context.Context, in PortalRegisterInput) (*domain.CandidateAccount, error) {
	a, err := s.create(ctx, in, "self", false)
	if err != nil {
		return nil, err
	}
	s.logger.Info("candidate registered", slog.String("account_id", a.AccountID))
	return a, nil
}

func (s *PortalService) create(ctx context.Context, in PortalRegisterInput, createdBy string, mustChange bool) (*domain.CandidateAccount, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || name == "" {
		return nil, validationError("name and email are required")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, validationError(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	if in.ExperienceYears != nil && *in.ExperienceYears < 0 {
		return nil, validationError("experience_years must not be negative")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, internalError(s.logger, "failed to hash password", err)
	}
	now := s.now().UTC()
	a := &domain.CandidateAccount{
		AccountID:          newID("cand_acct"),
		Email:              email,
		Name:               name,
		Phone:              strings.TrimSpace(in.Phone),
		LinkedInURL:        strings.TrimSpace(in.LinkedInURL),
		CurrentCompany:     strings.TrimSpace(in.CurrentCompany),
		ExperienceYears:    in.ExperienceYears,
		PasswordHash:       hash,
		MustChangePassword: mustChange,
		Status:             domain.AccountStatusActive,
		CreatedAt:          now,
		CreatedBy:          createdBy,
		UpdatedAt:          now,
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, badRequest("Email already registered")
		}
		return nil, internalError(s.logger, "failed to create candidate account", err)
	}
	return a, nil
}

// Login authenticates a candidate. Staff credentials are never accepted
// here because portal accounts live in their own store.
func (s *PortalService) Login(ctx context.Context, email, password string) (*PortalLoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, validationError("email and password are required")
	}
	key := "candidate:" + email
	if !s.guard.Allow(key) {
		metrics.ObserveLogin("throttled")
		s.logger.Warn("candidate login throttled", slog.String("email", email))
		return nil, &Error{Kind: KindTooManyRequests, Detail: "Too many login attempts, try again later"}
	}

	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, internalError(s.logger, "failed to load candidate account", err)
		}
		metrics.ObserveLogin("failure")
		return nil, unauthorized("Invalid email or password")
	}
	if !auth.CheckPassword(a.PasswordHash, password) {
		metrics.ObserveLogin("failure")
		s.logger.Info("candidate login failed with wrong password", slog.String("account_id", a.AccountID))
		return nil, unauthorized("Invalid email or password")
	}
	if a.Status != domain.AccountStatusActive {
		metrics.ObserveLogin("failure")
		return nil, forbidden("Account is disabled")
	}

	token, err := s.tokens.GenerateToken(&domain.User{Email: a.Email, Name: a.Name, Role: domain.RoleCandidate})
	if err != nil {
		return nil, internalError(s.logger, "failed to sign token", err)
	}
	s.guard.Reset(key)
	metrics.ObserveLogin("success")

	now := s.now().UTC()
	a.LastLoginAt = &now
	if err := s.accounts.Update(ctx, a); err != nil {
		s.logger.Warn("failed to record candidate login", slog.String("account_id", a.AccountID), slog.String("error", err.Error()))
	}
	s.logger.Info("candidate logged in", slog.String("account_id", a.AccountID))

	return &PortalLoginResult{
		AccessToken:        token,
		TokenType:          "bearer",
		ExpiresIn:          int(s.tokens.TTL().Seconds()),
		MustChangePassword: a.MustChangePassword,
		Account:            a,
	}, nil
}

// Me returns the signed-in candidate's account
func (s *PortalService) Me(ctx context.Context, p security.Principal) (*domain.CandidateAccount, error) {
	if p.Role != domain.RoleCandidate {
		return nil, forbidden(CandidateOnly)
	}
	a, err := s.accounts.GetByEmail(ctx, p.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, notFound("Account not found")
		}
		return nil, internalError(s.logger, "failed to load candidate account", err)
	}
	if a.Status != domain.AccountStatusActive {
		return nil, forbidden("Account is disabled")
	}
	return a, nil
}

// ChangePassword replaces the candidate's password and clears any
// pending forced change.
func (s *PortalService) ChangePassword(ctx context.Context, p security.Principal, oldPassword, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return validationError(fmt.Sprintf("New password must be at least %d characters", MinPasswordLength))
	}
	a, err := s.Me(ctx, p)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(a.PasswordHash, oldPassword) {
		return badRequest("Current password is incorrect")
	}
	if oldPassword == newPassword {
		return badRequest("New password must be different from current password")
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return internalError(s.logger, "failed to hash new password", err)
	}
	a.PasswordHash = hash
	a.MustChangePassword = false
	a.UpdatedAt = s.now().UTC()
	if err := s.accounts.Update(ctx, a); err != nil {
		return internalError(s.logger, "failed to update candidate password", err)
	}
	s.logger.Info("candidate changed password", slog.String("account_id", a.AccountID))
	return nil
}

// ListAccounts lists portal accounts for staff
func (s *PortalService) ListAccounts(ctx context.Context, p security.Principal, filter domain.CandidateAccountFilter) ([]*domain.CandidateAccount, error) {
	if err := s.policy.Require(p, security.PermManagePortal); err != nil {
		return nil, err
	}
	if filter.Status != "" && filter.Status != domain.AccountStatusActive && filter.Status != domain.AccountStatusDisabled {
		return nil, validationError("Invalid status")
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	out, err := s.accounts.List(ctx, filter)
	if err != nil {
		return nil, internalError(s.logger, "failed to list candidate accounts", err)
	}
	return out, nil
}

// CreateAccount lets staff open an account with a temporary password.
// The candidate must change it on first sign-in.
func (s *PortalService) CreateAccount(ctx context.Context, p security.Principal, in PortalRegisterInput) (*domain.CandidateAccount, error) {
	if err := s.policy.Require(p, security.PermManagePortal); err != nil {
		return nil, err
	}
	a, err := s.create(ctx, in, p.Email, true)
	if err != nil {
		return nil, err
	}
	s.logger.Info("candidate account created",
		slog.String("account_id", a.AccountID),
		slog.String("created_by", p.Email),
	)
	return a, nil
}

// DisableAccount blocks further candidate sign-ins. Tokens already issued
// stop working at the next Me lookup.
func (s *PortalService) DisableAccount(ctx context.Context, p security.Principal, id string) (*domain.CandidateAccount, error) {
	if err := s.policy.Require(p, security.PermManagePortal); err != nil {
		return nil, err
	}
	a, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, notFound("Account not found")
		}
		return nil, internalError(s.logger, "failed to load candidate account", err)
	}
	if a.Status == domain.AccountStatusDisabled {
		return a, nil
	}
	a.Status = domain.AccountStatusDisabled
	a.UpdatedAt = s.now().UTC()
	if err := s.accounts.Update(ctx, a); err != nil {
		return nil, internalError(s.logger, "failed to disable candidate account", err)
	}
	s.logger.Info("candidate account disabled",
		slog.String("account_id", a.AccountID),
		slog.String("by", p.Email),
	)
	return a, nil
}
