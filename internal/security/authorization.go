package security

import (
	"errors"
	"log/slog"

	"github.com/arbeit/talentportal/internal/domain"
)

// Permission represents an action permission
type Permission string

const (
	PermCreateJob         Permission = "create_job"
	PermReadJob           Permission = "read_job"
	PermUpdateJob         Permission = "update_job"
	PermCloseJob          Permission = "close_job"
	PermCreateCandidate   Permission = "create_candidate"
	PermUploadCandidate   Permission = "upload_candidate"
	PermReadCandidate     Permission = "read_candidate"
	PermUpdateCandidate   Permission = "update_candidate"
	PermRegenerateStory   Permission = "regenerate_story"
	PermExportStory       Permission = "export_story"
	PermListClients       Permission = "list_clients"
	PermCreateClient      Permission = "create_client"
	PermReadClient        Permission = "read_client"
	PermUpdateClient      Permission = "update_client"
	PermDisableClient     Permission = "disable_client"
	PermManageClientUsers Permission = "manage_client_users"
	PermCreateReview      Permission = "create_review"
	PermListReviews       Permission = "list_reviews"
	PermManagePortal      Permission = "manage_candidate_portal"
)

var staffPermissions = []Permission{
	PermCreateJob, PermReadJob, PermUpdateJob, PermCloseJob,
	PermCreateCandidate, PermUploadCandidate, PermReadCandidate, PermUpdateCandidate,
	PermRegenerateStory, PermExportStory,
	PermListClients, PermCreateClient, PermReadClient, PermUpdateClient, PermDisableClient, PermManageClientUsers,
	PermCreateReview, PermListReviews,
	PermManagePortal,
}

// RolePermissions maps roles to their permissions. Tenant scoping for
// client users is enforced separately by Policy.AuthorizeResource.
// Candidates hold no permissions on the portal API.
var RolePermissions = map[domain.Role][]Permission{
	domain.RoleAdmin:     staffPermissions,
	domain.RoleRecruiter: staffPermissions,
	domain.RoleClientUser: {
		PermCreateJob,
		PermReadJob,
		PermUpdateJob,
		PermCloseJob,
		PermReadCandidate,
		PermUpdateCandidate,
		PermExportStory,
		PermReadClient,
		PermCreateReview,
		PermListReviews,
	},
}

// denialDetails are the messages returned to callers lacking a permission
var denialDetails = map[Permission]string{
	PermCreateCandidate:   "Only admin/recruiter can create candidates",
	PermUploadCandidate:   "Only admin/recruiter can upload candidates",
	PermRegenerateStory:   "Only admin/recruiter can regenerate stories",
	PermListClients:       "Admin or recruiter access required",
	PermCreateClient:      "Admin or recruiter access required",
	PermUpdateClient:      "Admin or recruiter access required",
	PermDisableClient:     "Admin or recruiter access required",
	PermManageClientUsers: "Admin or recruiter access required",
	PermManagePortal:      "Admin or recruiter access required",
}

// ErrForbidden is wrapped by every DeniedError
var ErrForbidden = errors.New("forbidden")

// DeniedError is a policy denial carrying the caller-facing detail
type DeniedError struct {
	Detail string
}

func (e *DeniedError) Error() string { return "access denied: " + e.Detail }

func (e *DeniedError) Unwrap() error { return ErrForbidden }

// AuthorizationService handles role based permission checks
type AuthorizationService struct {
	logger *slog.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{
		logger: logger,
	}
}

// HasPermission checks if a role has a specific permission
func (as *AuthorizationService) HasPermission(role domain.Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// ValidatePermission returns a *DeniedError when the role lacks the permission
func (as *AuthorizationService) ValidatePermission(role domain.Role, permission Permission) error {
	if as.HasPermission(role, permission) {
		return nil
	}
	as.logger.Warn("permission denied",
		slog.String("role", string(role)),
		slog.String("permission", string(permission)),
	)
	detail, ok := denialDetails[permission]
	if !ok {
		detail = AccessDenied
	}
	return &DeniedError{Detail: detail}
}
