package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/arbeit/talentportal/internal/domain"
	"github.com/arbeit/talentportal/internal/service"
)

// PortalHandler serves the candidate portal under /api/candidate-portal
type PortalHandler struct {
	portal *service.PortalService
	logger *slog.Logger
}

func NewPortalHandler(portal *service.PortalService, logger *slog.Logger) *PortalHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PortalHandler{portal: portal, logger: logger}
}

// PortalRegisterRequest is used both for self-registration and for staff
// creating an account with a temporary password
type PortalRegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	Name            string `json:"name" validate:"required"`
	Phone           string `json:"phone"`
	LinkedInURL     string `json:"linkedin_url" validate:"omitempty,url"`
	CurrentCompany  string `json:"current_company"`
	ExperienceYears *int   `json:"experience_years" validate:"omitempty,min=0"`
}

func (req PortalRegisterRequest) input() service.PortalRegisterInput {
	return service.PortalRegisterInput{
		Email:           req.Email,
		Password:        req.Password,
		Name:            req.Name,
		Phone:           req.Phone,
		LinkedInURL:     req.LinkedInURL,
		CurrentCompany:  req.CurrentCompany,
		ExperienceYears: req.ExperienceYears,
	}
}

// CandidateAccountResponse never carries the password hash
type CandidateAccountResponse struct {
	AccountID          string     `json:"account_id"`
	Email              string     `json:"email"`
	Name               string     `json:"name"`
	Phone              string     `json:"phone"`
	LinkedInURL        string     `json:"linkedin_url"`
	CurrentCompany     string     `json:"current_company"`
	ExperienceYears    *int       `json:"experience_years"`
	MustChangePassword bool       `json:"must_change_password"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	CreatedBy          string     `json:"created_by"`
	LastLoginAt        *time.Time `json:"last_login_at"`
}

func candidateAccountView(a *domain.CandidateAccount) CandidateAccountResponse {
	return CandidateAccountResponse{
		AccountID:          a.AccountID,
		Email:              a.Email,
		Name:               a.Name,
		Phone:              a.Phone,
		LinkedInURL:        a.LinkedInURL,
		CurrentCompany:     a.CurrentCompany,
		ExperienceYears:    a.ExperienceYears,
		MustChangePassword: a.MustChangePassword,
		Status:             a.Status,
		CreatedAt:          a.CreatedAt,
		CreatedBy:          a.CreatedBy,
		LastLoginAt:        a.LastLoginAt,
	}
}

// PortalLoginResponse is the candidate bearer token
type PortalLoginResponse struct {
	AccessToken        string                   `json:"access_token"`
	TokenType          string                   `json:"token_type"`
	ExpiresIn          int                      `json:"expires_in"`
	MustChangePassword bool                     `json:"must_change_password"`
	Account            CandidateAccountResponse `json:"account"`
}

// Register handles POST /api/candidate-portal/register
func (h *PortalHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req PortalRegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := h.portal.Register(r.Context(), req.input())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, candidateAccountView(a))
}

// Login handles POST /api/candidate-portal/login
func (h *PortalHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.portal.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, PortalLoginResponse{
		AccessToken:        res.AccessToken,
		TokenType:          res.TokenType,
		ExpiresIn:          res.ExpiresIn,
		MustChangePassword: res.MustChangePassword,
		Account:            candidateAccountView(res.Account),
	})
}

// Me handles GET /api/candidate-portal/me
func (h *PortalHandler) Me(w http.ResponseWriter, r *http.Request) {
	a, err := h.portal.Me(r.Context(), principal(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, candidateAccountView(a))
}

// ChangePassword handles POST /api/candidate-portal/change-password
func (h *PortalHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.portal.ChangePassword(r.Context(), principal(r), req.OldPassword, req.NewPassword); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Password changed successfully"})
}

// ListAccounts handles GET /api/candidate-portal/accounts?search=&status=&skip=&limit=
func (h *PortalHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.CandidateAccountFilter{
		Search: q.Get("search"),
		Status: q.Get("status"),
		Skip:   queryInt(r, "skip", 0),
		Limit:  queryInt(r, "limit", 100),
	}
	accounts, err := h.portal.ListAccounts(r.Context(), principal(r), filter)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	out := make([]CandidateAccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, candidateAccountView(a))
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateAccount handles POST /api/candidate-portal/accounts
func (h *PortalHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req PortalRegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := h.portal.CreateAccount(r.Context(), principal(r), req.input())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, candidateAccountView(a))
}

// DisableAccount handles PATCH /api/candidate-portal/accounts/{id}/disable
func (h *PortalHandler) DisableAccount(w http.ResponseWriter, r *http.Request) {
	a, err := h.portal.DisableAccount(r.Context(), principal(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, candidateAccountView(a))
}
