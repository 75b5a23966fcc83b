package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/arbeit/talentportal/internal/domain"
	"github.com/arbeit/talentportal/internal/security"
	"github.com/arbeit/talentportal/pkg/cache"
)

const companyNameTTL = 5 * time.Minute

// ClientView is a client with the number of its users
type ClientView struct {
	*domain.Client
	UserCount int
}

// ClientPatch holds the fields of a partial client update
type ClientPatch struct {
	CompanyName *string
	Status      *string
}

// ClientService manages tenants and their users
type ClientService struct {
	clients domain.ClientRepository
	users   domain.UserRepository
	auth    *AuthService
	policy  *security.Policy
	names   *cache.Cache[string]
	logger  *slog.Logger
	now     func() time.Time
}

func NewClientService(clients domain.ClientRepository, users domain.UserRepository, authSvc *AuthService, policy *security.Policy, logger *slog.Logger) *ClientService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientService{
		clients: clients,
		users:   users,
		auth:    authSvc,
		policy:  policy,
		names:   cache.New[string](),
		logger:  logger,
		now:     time.Now,
	}
}

func validClientStatus(s string) bool {
	return s == domain.ClientStatusActive || s == domain.ClientStatusInactive
}

func (s *ClientService) List(ctx context.Context, p security.Principal, filter domain.ClientFilter) ([]ClientView, error) {
	if err := s.policy.Require(p, security.PermListClients); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	clients, err := s.clients.List(ctx, filter)
	if err != nil {
		return nil, internalError(s.logger, "failed to list clients", err)
	}
	out := make([]ClientView, 0, len(clients))
	for _, c := range clients {
		n, err := s.users.CountByClient(ctx, c.ClientID)
		if err != nil {
			return nil, internalError(s.logger, "failed to count client users", err)
		}
		out = append(out, ClientView{Client: c, UserCount: n})
	}
	return out, nil
}

func (s *ClientService) Create(ctx context.Context, p security.Principal, companyName, status string) (*domain.Client, error) {
	if err := s.policy.Require(p, security.PermCreateClient); err != nil {
		return nil, err
	}
	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return nil, validationError("company_name is required")
	}
	if status == "" {
		status = domain.ClientStatusActive
	}
	if !validClientStatus(status) {
		return nil, validationError("status must be active or inactive")
	}

	if _, err := s.clients.GetByName(ctx, companyName); err == nil {
		return nil, badRequest("Client with this company name already exists")
	}

	now := s.now().UTC()
	client := &domain.Client{
		ClientID:    newID("client"),
		CompanyName: companyName,
		Status:      status,
		CreatedAt:   now,
		CreatedBy:   p.Email,
		UpdatedAt:   now,
	}
	if err := s.clients.Create(ctx, client); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, badRequest("Client with this company name already exists")
		}
		return nil, internalError(s.logger, "failed to create client", err)
	}
	s.logger.Info("client created",
		slog.String("client_id", client.ClientID),
		slog.String("company_name", client.CompanyName),
		slog.String("created_by", p.Email),
	)
	return client, nil
}

// load returns 404 for unknown ids before any tenant check
func (s *ClientService) load(ctx context.Context, id string) (*domain.Client, error) {
	c, err := s.clients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, notFound("Client not found")
		}
		return nil, internalError(s.logger, "failed to load client", err)
	}
	return c, nil
}

func (s *ClientService) Get(ctx context.Context, p security.Principal, id string) (*ClientView, error) {
	if err := s.policy.Require(p, security.PermReadClient); err != nil {
		return nil, err
	}
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.AuthorizeResource(p, security.Resource{Type: security.ResourceClient, ID: c.ClientID, OwnerClientID: c.ClientID}); err != nil {
		return nil, err
	}
	n, err := s.users.CountByClient(ctx, c.ClientID)
	if err != nil {
		return nil, internalError(s.logger, "failed to count client users", err)
	}
	return &ClientView{Client: c, UserCount: n}, nil
}

func (s *ClientService) Update(ctx context.Context, p security.Principal, id string, patch ClientPatch) (*domain.Client, error) {
	if err := s.policy.Require(p, security.PermUpdateClient); err != nil {
		return nil, err
	}
	if patch.CompanyName == nil && patch.Status == nil {
		return nil, badRequest("No fields to update")
	}
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.CompanyName != nil {
		name := strings.TrimSpace(*patch.CompanyName)
		if name == "" {
			return nil, validationError("company_name cannot be empty")
		}
		if other, err := s.clients.GetByName(ctx, name); err == nil && other.ClientID != c.ClientID {
			return nil, badRequest("Client with this company name already exists")
		}
		c.CompanyName = name
	}
	if patch.Status != nil {
		if !validClientStatus(*patch.Status) {
			return nil, validationError("status must be active or inactive")
		}
		c.Status = *patch.Status
	}
	c.UpdatedAt = s.now().UTC()

	if err := s.clients.Update(ctx, c); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, badRequest("Client with this company name already exists")
		}
		return nil, internalError(s.logger, "failed to update client", err)
	}
	s.names.Delete(c.ClientID)
	return c, nil
}

// Disable marks the client inactive. Its data stays readable.
func (s *ClientService) Disable(ctx context.Context, p security.Principal, id string) error {
	if err := s.policy.Require(p, security.PermDisableClient); err != nil {
		return err
	}
	c, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	c.Status = domain.ClientStatusInactive
	c.UpdatedAt = s.now().UTC()
	if err := s.clients.Update(ctx, c); err != nil {
		return internalError(s.logger, "failed to disable client", err)
	}
	s.logger.Info("client disabled", slog.String("client_id", id), slog.String("by", p.Email))
	return nil
}

func (s *ClientService) ListUsers(ctx context.Context, p security.Principal, id string) ([]*domain.User, error) {
	if err := s.policy.Require(p, security.PermManageClientUsers); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	users, err := s.users.ListByClient(ctx, id)
	if err != nil {
		return nil, internalError(s.logger, "failed to list client users", err)
	}
	return users, nil
}

// CreateUser adds a client_user to the tenant
func (s *ClientService) CreateUser(ctx context.Context, p security.Principal, id, name, email, password string) (*domain.User, error) {
	if err := s.policy.Require(p, security.PermManageClientUsers); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	user, err := s.auth.createUser(ctx, name, email, password, domain.RoleClientUser, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("client user created",
		slog.String("client_id", id),
		slog.String("email", user.Email),
		slog.String("created_by", p.Email),
	)
	return user, nil
}

// CompanyName returns the client's company name, or "" when it cannot be
// loaded. Lookups are cached for a few minutes.
func (s *ClientService) CompanyName(ctx context.Context, clientID string) string {
	if clientID == "" {
		return ""
	}
	name, err := s.names.GetOrLoad(clientID, companyNameTTL, func() (string, error) {
		c, err := s.clients.GetByID(ctx, clientID)
		if err != nil {
			return "", err
		}
		return c.CompanyName, nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("company name lookup failed", slog.String("client_id", clientID), slog.String("error", err.Error()))
		}
		return ""
	}
	return name
}

// exists reports whether clientID names a known client
func (s *ClientService) exists(ctx context.Context, clientID string) (bool, error) {
	if _, err := s.clients.GetByID(ctx, clientID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
