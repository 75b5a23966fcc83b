package security

import (
	"errors"
	"testing"

	"github.com/arbeit/talentportal/internal/domain"
)

var (
	admin     = Principal{Email: "admin@arbeit.com", Role: domain.RoleAdmin}
	recruiter = Principal{Email: "recruiter@arbeit.com", Role: domain.RoleRecruiter}
	acmeUser  = Principal{Email: "client@acme.com", Role: domain.RoleClientUser, ClientID: "test_client_001"}
)

func boolPtr(b bool) *bool { return &b }

func TestAuthorizeResourceStaffAnyTenant(t *testing.T) {
	p := NewPolicy(nil)
	for _, pr := range []Principal{admin, recruiter} {
		for _, owner := range []string{"", "test_client_001", "test_client_002"} {
			for _, typ := range []ResourceType{ResourceJob, ResourceCandidate, ResourceClient, ResourceReview} {
				if err := p.AuthorizeResource(pr, Resource{Type: typ, ID: "x", OwnerClientID: owner}); err != nil {
					t.Fatalf("%s on %s owned by %q denied: %v", pr.Role, typ, owner, err)
				}
			}
		}
	}
}

func TestAuthorizeResourceClientUser(t *testing.T) {
	p := NewPolicy(nil)

	if err := p.AuthorizeResource(acmeUser, Resource{Type: ResourceJob, ID: "job_1", OwnerClientID: "test_client_001"}); err != nil {
		t.Fatalf("own tenant denied: %v", err)
	}

	for _, typ := range []ResourceType{ResourceJob, ResourceCandidate, ResourceClient, ResourceReview} {
		err := p.AuthorizeResource(acmeUser, Resource{Type: typ, ID: "x", OwnerClientID: "test_client_002"})
		if err == nil {
			t.Fatalf("cross-tenant %s allowed", typ)
		}
		var denied *DeniedError
		if !errors.As(err, &denied) || denied.Detail != AccessDenied {
			t.Fatalf("expected DeniedError %q, got %v", AccessDenied, err)
		}
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected error to wrap ErrForbidden")
		}
	}

	orphan := Principal{Email: "x@y.z", Role: domain.RoleClientUser}
	if err := p.AuthorizeResource(orphan, Resource{Type: ResourceJob, OwnerClientID: ""}); err == nil {
		t.Fatalf("client user without tenant must never match an unowned resource")
	}
}

func TestRequireDetails(t *testing.T) {
	p := NewPolicy(nil)
	tests := []struct {
		perm   Permission
		detail string
	}{
		{PermCreateCandidate, "Only admin/recruiter can create candidates"},
		{PermUploadCandidate, "Only admin/recruiter can upload candidates"},
		{PermRegenerateStory, "Only admin/recruiter can regenerate stories"},
		{PermListClients, "Admin or recruiter access required"},
		{PermCreateClient, "Admin or recruiter access required"},
	}
	for _, tt := range tests {
		err := p.Require(acmeUser, tt.perm)
		var denied *DeniedError
		if !errors.As(err, &denied) {
			t.Fatalf("%s: expected denial, got %v", tt.perm, err)
		}
		if denied.Detail != tt.detail {
			t.Errorf("%s: detail = %q, want %q", tt.perm, denied.Detail, tt.detail)
		}
		if err := p.Require(recruiter, tt.perm); err != nil {
			t.Errorf("%s: recruiter denied: %v", tt.perm, err)
		}
	}

	for _, perm := range []Permission{PermReadJob, PermCreateJob, PermUpdateCandidate, PermExportStory, PermCreateReview, PermReadClient} {
		if err := p.Require(acmeUser, perm); err != nil {
			t.Errorf("client user should hold %s: %v", perm, err)
		}
	}
}

func TestListScope(t *testing.T) {
	p := NewPolicy(nil)
	if got := p.ListScope(acmeUser, "test_client_002"); got != "test_client_001" {
		t.Fatalf("client user scope = %q, want own tenant", got)
	}
	if got := p.ListScope(acmeUser, ""); got != "test_client_001" {
		t.Fatalf("client user scope = %q, want own tenant", got)
	}
	if got := p.ListScope(admin, ""); got != "" {
		t.Fatalf("admin unfiltered scope = %q, want all", got)
	}
	if got := p.ListScope(recruiter, "test_client_002"); got != "test_client_002" {
		t.Fatalf("recruiter explicit scope = %q", got)
	}
}

func TestRestrictUpdate(t *testing.T) {
	p := NewPolicy(nil)
	if err := p.RestrictUpdate(acmeUser, []string{"status"}); err != nil {
		t.Fatalf("status-only update rejected: %v", err)
	}
	err := p.RestrictUpdate(acmeUser, []string{"status", "name"})
	var denied *DeniedError
	if !errors.As(err, &denied) || denied.Detail != "Client users can only update status" {
		t.Fatalf("mixed update should be rejected whole, got %v", err)
	}
	if err := p.RestrictUpdate(recruiter, []string{"status", "name", "skills"}); err != nil {
		t.Fatalf("recruiter update rejected: %v", err)
	}
}

func TestRedactCV(t *testing.T) {
	p := NewPolicy(nil)
	tests := []struct {
		name      string
		pr        Principal
		requested *bool
		want      bool
	}{
		{"client default", acmeUser, nil, true},
		{"client asks original", acmeUser, boolPtr(false), true},
		{"client asks redacted", acmeUser, boolPtr(true), true},
		{"recruiter default", recruiter, nil, true},
		{"recruiter original", recruiter, boolPtr(false), false},
		{"admin redacted", admin, boolPtr(true), true},
	}
	for _, tt := range tests {
		if got := p.RedactCV(tt.pr, tt.requested); got != tt.want {
			t.Errorf("%s: RedactCV = %v, want %v", tt.name, got, tt.want)
		}
	}
}
