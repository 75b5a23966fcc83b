package domain

import (
	"context"
	"fmt"
	"time"
)

// Role is the caller's role inside the portal
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleRecruiter  Role = "recruiter"
	RoleClientUser Role = "client_user"
	// RoleCandidate is a job seeker signed in to the candidate portal
	RoleCandidate Role = "candidate"
)

// ParseRole converts a raw role string into a Role
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleRecruiter, RoleClientUser, RoleCandidate:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// IsStaff reports whether the role belongs to the portal operator (admin or recruiter)
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleRecruiter
}

func (r Role) String() string { return string(r) }

// User represents a portal account. Email doubles as the user id.
type User struct {
	Email        string
	Name         string
	Role         Role
	ClientID     string // empty unless Role == RoleClientUser
	PasswordHash string // bcrypt hash, never serialized
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRepository defines data access for users
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	ListByClient(ctx context.Context, clientID string) ([]*User, error)
	CountByClient(ctx context.Context, clientID string) (int, error)
}

// Client status values
const (
	ClientStatusActive   = "active"
	ClientStatusInactive = "inactive"
)

// Client is a tenant organization
type Client struct {
	ClientID    string
	CompanyName string
	Status      string
	CreatedAt   time.Time
	CreatedBy   string
	UpdatedAt   time.Time
}

// ClientFilter narrows client listings
type ClientFilter struct {
	Search string // case-insensitive substring of CompanyName
	Skip   int
	Limit  int
}

// ClientRepository defines data access for clients
type ClientRepository interface {
	Create(ctx context.Context, client *Client) error
	GetByID(ctx context.Context, id string) (*Client, error)
	GetByName(ctx context.Context, name string) (*Client, error)
	Update(ctx context.Context, client *Client) error
	List(ctx context.Context, filter ClientFilter) ([]*Client, error)
}
