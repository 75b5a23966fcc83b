package handler

import (
	"log/slog"
	"net/http"

	"github.com/arbeit/talentportal/internal/service"
)

// ReviewHandler serves /api/candidates/{id}/review(s)
type ReviewHandler struct {
	reviews *service.ReviewService
	logger  *slog.Logger
}

func NewReviewHandler(reviews *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewHandler{reviews: reviews, logger: logger}
}

type ReviewRequest struct {
	Action  string `json:"action" validate:"required"`
	Comment string `json:"comment"`
}

// Create handles POST /api/candidates/{id}/review
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	review, err := h.reviews.Create(r.Context(), principal(r), r.PathValue("id"), req.Action, req.Comment)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, reviewView(review))
}

// List handles GET /api/candidates/{id}/reviews
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.List(r.Context(), principal(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	out := make([]ReviewResponse, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, reviewView(rv))
	}
	writeJSON(w, http.StatusOK, out)
}
