package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/arbeit/talentportal/internal/observability/requestid"
)

type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger}
}

func (al *Logger) LogAction(ctx context.Context, clientID, actor, action, resource, resourceID, status, details string) {
	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("client_id", clientID),
		slog.String("actor", actor),
		slog.String("status", status),
		slog.String("details", details),
		slog.String("request_id", requestid.FromContext(ctx)),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogReview(ctx context.Context, clientID, actor, candidateID, action string) {
	al.LogAction(ctx, clientID, actor, "review", "candidate", candidateID, "recorded", action)
}

func (al *Logger) LogDenied(ctx context.Context, clientID, actor, reason string) {
	al.LogAction(ctx, clientID, actor, "access_denied", "api", "", "denied", reason)
}
