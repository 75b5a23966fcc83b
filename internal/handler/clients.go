package handler

import (
	"log/slog"
	"net/http"

	"github.com/arbeit/talentportal/internal/domain"
	"github.com/arbeit/talentportal/internal/service"
)

// ClientHandler serves tenant management under /api/clients
type ClientHandler struct {
	clients *service.ClientService
	logger  *slog.Logger
}

func NewClientHandler(clients *service.ClientService, logger *slog.Logger) *ClientHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientHandler{clients: clients, logger: logger}
}

type CreateClientRequest struct {
	CompanyName string `json:"company_name" validate:"required"`
	Status      string `json:"status" validate:"omitempty,oneof=active inactive"`
}

type UpdateClientRequest struct {
	CompanyName *string `json:"company_name" validate:"omitempty,min=1"`
	Status      *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

type CreateClientUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// List handles GET /api/clients?search=&skip=&limit=
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.ClientFilter{
		Search: r.URL.Query().Get("search"),
		Skip:   queryInt(r, "skip", 0),
		Limit:  queryInt(r, "limit", 100),
	}
	clients, err := h.clients.List(r.Context(), principal(r), filter)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	out := make([]ClientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, clientCountView(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// Create handles POST /api/clients
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.clients.Create(r.Context(), principal(r), req.CompanyName, req.Status)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, clientView(c))
}

// Get handles GET /api/clients/{id}
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.clients.Get(r.Context(), principal(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, clientCountView(*c))
}

// Update handles PUT /api/clients/{id}
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateClientRequest
	if _, ok := decodePatch(w, r, &req); !ok {
		return
	}
	c, err := h.clients.Update(r.Context(), principal(r), r.PathValue("id"), service.ClientPatch{
		CompanyName: req.CompanyName,
		Status:      req.Status,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, clientView(c))
}

// Disable handles PATCH /api/clients/{id}/disable
func (h *ClientHandler) Disable(w http.ResponseWriter, r *http.Request) {
	if err := h.clients.Disable(r.Context(), principal(r), r.PathValue("id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Client disabled successfully"})
}

// ListUsers handles GET /api/clients/{id}/users
func (h *ClientHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.clients.ListUsers(r.Context(), principal(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userView(u))
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateUser handles POST /api/clients/{id}/users
func (h *ClientHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateClientUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := h.clients.CreateUser(r.Context(), principal(r), r.PathValue("id"), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, userView(u))
}
