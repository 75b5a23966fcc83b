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

// MinPasswordLength applies to registration, user creation and password changes
const MinPasswordLength = 6

// AuthService handles authentication operations
type AuthService struct {
	users   domain.UserRepository
	clients domain.ClientRepository
	tokens  *auth.TokenManager
	guard   *ratelimit.LoginGuard
	logger  *slog.Logger
	now     func() time.Time
}

// NewAuthService creates a new authentication service. A nil guard disables
// login throttling.
func NewAuthService(
	users domain.UserRepository,
	clients domain.ClientRepository,
	tokens *auth.TokenManager,
	guard *ratelimit.LoginGuard,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	if guard == nil {
		guard = ratelimit.NewLoginGuard(0)
	}

	return &AuthService{
		users:   users,
		clients: clients,
		tokens:  tokens,
		guard:   guard,
		logger:  logger,
		now:     time.Now,
	}
}

// RegisterInput is the payload of a self-registration
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	ClientID string
}

// LoginResult represents login response
type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int // seconds
	User        *domain.User
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user account. Staff roles never carry a client_id.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	role, err := domain.ParseRole(in.Role)
	if err != nil || role == domain.RoleCandidate {
		return nil, validationError("Invalid role")
	}
	clientID := strings.TrimSpace(in.ClientID)
	if role.IsStaff() {
		clientID = ""
	} else {
		if clientID == "" {
			return nil, badRequest("client_id is required")
		}
		if _, err := s.clients.GetByID(ctx, clientID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, badRequest("Invalid client_id")
			}
			return nil, internalError(s.logger, "failed to load client", err)
		}
	}

	user, err := s.createUser(ctx, in.Name, in.Email, in.Password, role, clientID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered",
		slog.String("email", user.Email),
		slog.String("role", string(user.Role)),
	)
	return user, nil
}

// createUser is shared by registration and tenant user management
func (s *AuthService) createUser(ctx context.Context, name, email, password string, role domain.Role, clientID string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || strings.TrimSpace(name) == "" {
		return nil, validationError("name and email are required")
	}
	if len(password) < MinPasswordLength {
		return nil, validationError(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, badRequest("Email already registered")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, internalError(s.logger, "failed to hash password", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		Role:         role,
		ClientID:     clientID,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, badRequest("Email already registered")
		}
		return nil, internalError(s.logger, "failed to create user", err)
	}
	return user, nil
}

// Login authenticates a user and returns a bearer token
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, validationError("email and password are required")
	}

	if !s.guard.Allow(email) {
		metrics.ObserveLogin("throttled")
		s.logger.Warn("login throttled", slog.String("email", email))
		return nil, &Error{Kind: KindTooManyRequests, Detail: "Too many login attempts, try again later"}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, internalError(s.logger, "failed to load user", err)
		}
		metrics.ObserveLogin("failure")
		s.logger.Info("login attempt with non-existent email", slog.String("email", email))
		return nil, unauthorized("Invalid email or password")
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		metrics.ObserveLogin("failure")
		s.logger.Info("login failed with wrong password", slog.String("email", email))
		return nil, unauthorized("Invalid email or password")
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, internalError(s.logger, "failed to sign token", err)
	}
	s.guard.Reset(email)
	metrics.ObserveLogin("success")

	s.logger.Info("user logged in",
		slog.String("email", user.Email),
		slog.String("role", string(user.Role)),
	)

	return &LoginResult{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(s.tokens.TTL().Seconds()),
		User:        user,
	}, nil
}

// Me returns the authenticated caller's account
func (s *AuthService) Me(ctx context.Context, p security.Principal) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, p.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, internalError(s.logger, "failed to load user", err)
	}
	return user, nil
}

// ChangePassword changes the caller's password
func (s *AuthService) ChangePassword(ctx context.Context, p security.Principal, oldPassword, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return validationError(fmt.Sprintf("New password must be at least %d characters", MinPasswordLength))
	}

	user, err := s.Me(ctx, p)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(user.PasswordHash, oldPassword) {
		return badRequest("Current password is incorrect")
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return internalError(s.logger, "failed to hash new password", err)
	}

	user.PasswordHash = hash
	user.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return internalError(s.logger, "failed to update user password", err)
	}

	s.logger.Info("user changed password", slog.String("email", user.Email))
	return nil
}
