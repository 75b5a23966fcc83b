package security

import (
	"log/slog"

	"github.com/arbeit/talentportal/internal/domain"
)

// AccessDenied is the detail returned for tenant mismatches
const AccessDenied = "Access denied"

// Principal is the authenticated caller
type Principal struct {
	Email    string
	Name     string
	Role     domain.Role
	ClientID string
}

// IsStaff reports whether the caller is an admin or recruiter
func (p Principal) IsStaff() bool { return p.Role.IsStaff() }

// ResourceType identifies the kind of resource being accessed
type ResourceType string

const (
	ResourceClient    ResourceType = "client"
	ResourceJob       ResourceType = "job"
	ResourceCandidate ResourceType = "candidate"
	ResourceReview    ResourceType = "review"
)

// Resource is a tenant-owned entity under an access check
type Resource struct {
	Type          ResourceType
	ID            string
	OwnerClientID string
}

// Policy is the single place role and tenant decisions are made
type Policy struct {
	authz  *AuthorizationService
	logger *slog.Logger
}

// NewPolicy creates a policy evaluator
func NewPolicy(logger *slog.Logger) *Policy {
	if logger == nil {
		logger = slog.Default()
	}
	return &Policy{authz: NewAuthorizationService(logger), logger: logger}
}

// Require checks the role permission table
func (p *Policy) Require(pr Principal, perm Permission) error {
	return p.authz.ValidatePermission(pr.Role, perm)
}

// AuthorizeResource allows staff on any tenant and client users on their own.
func (p *Policy) AuthorizeResource(pr Principal, res Resource) error {
	if pr.IsStaff() {
		return nil
	}
	if pr.Role == domain.RoleClientUser && pr.ClientID != "" && res.OwnerClientID == pr.ClientID {
		return nil
	}
	p.logger.Warn("resource access denied",
		slog.String("user", pr.Email),
		slog.String("role", string(pr.Role)),
		slog.String("caller_client", pr.ClientID),
		slog.String("resource_type", string(res.Type)),
		slog.String("resource_id", res.ID),
		slog.String("owner_client", res.OwnerClientID),
	)
	return &DeniedError{Detail: AccessDenied}
}

// ListScope returns the client filter a list query must apply. Client users
// are pinned to their tenant; staff get whatever they asked for ("" = all).
func (p *Policy) ListScope(pr Principal, requested string) string {
	if pr.IsStaff() {
		return requested
	}
	return pr.ClientID
}

// RestrictUpdate rejects, as a whole, client user payloads touching any
// field other than status.
func (p *Policy) RestrictUpdate(pr Principal, fields []string) error {
	if pr.IsStaff() {
		return nil
	}
	for _, f := range fields {
		if f != "status" {
			p.logger.Warn("field-restricted update rejected",
				slog.String("user", pr.Email),
				slog.String("field", f),
			)
			return &DeniedError{Detail: "Client users can only update status"}
		}
	}
	return nil
}

// RedactCV decides whether a CV view is served redacted. Client users are
// always redacted; staff follow the requested flag, which defaults to true.
func (p *Policy) RedactCV(pr Principal, requested *bool) bool {
	if !pr.IsStaff() {
		return true
	}
	if requested == nil {
		return true
	}
	return *requested
}
