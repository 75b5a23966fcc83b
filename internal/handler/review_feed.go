package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/arbeit/talentportal/internal/service"
)

const (
	feedPingInterval = 15 * time.Second
	feedWriteTimeout = 5 * time.Second
)

// ReviewFeedHandler streams new reviews of one candidate over a websocket
type ReviewFeedHandler struct {
	reviews        *service.ReviewService
	logger         *slog.Logger
	allowedOrigins []string
}

// NewReviewFeedHandler creates a new review feed handler
func NewReviewFeedHandler(reviews *service.ReviewService, logger *slog.Logger, allowedOrigins []string) *ReviewFeedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewFeedHandler{
		reviews:        reviews,
		logger:         logger,
		allowedOrigins: allowedOrigins,
	}
}

// upgrader is initialized per-request to use instance's allowed origins
func (h *ReviewFeedHandler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range h.allowedOrigins {
				if allowed == "*" || origin == allowed {
					return true
				}
			}
			h.logger.Warn("websocket origin rejected", slog.String("origin", origin))
			return false
		},
	}
}

// ServeHTTP handles GET /ws/candidates/{id}/reviews?token=...
// Access is checked before the upgrade so denials are plain HTTP errors.
func (h *ReviewFeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	candidateID := r.PathValue("id")
	events, unsubscribe, err := h.reviews.Subscribe(r.Context(), principal(r), candidateID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	defer unsubscribe()

	upgrader := h.getUpgrader()
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer ws.Close()

	// reader goroutine only notices the client going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := ws.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(feedPingInterval)
	defer ticker.Stop()

	h.logger.Debug("review feed opened", slog.String("candidate_id", candidateID))
	for {
		select {
		case review, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(reviewView(review))
			if err != nil {
				h.logger.Error("failed to encode review", slog.String("error", err.Error()))
				continue
			}
			ws.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
			if err := ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.logger.Debug("websocket closed", slog.String("candidate_id", candidateID))
				}
				return
			}
		case <-ticker.C:
			_ = ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(feedWriteTimeout))
		case <-closed:
			h.logger.Debug("review feed closed by client", slog.String("candidate_id", candidateID))
			return
		case <-r.Context().Done():
			return
		}
	}
}
