package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/arbeit/talentportal/internal/domain"
)

// ReviewRepository implements domain.ReviewRepository using PostgreSQL
type ReviewRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewReviewRepository(db *sql.DB, logger *slog.Logger) *ReviewRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewRepository{db: db, logger: logger}
}

func (r *ReviewRepository) Create(ctx context.Context, rev *domain.Review) error {
	query := `
		INSERT INTO reviews (review_id, candidate_id, user_id, user_name, user_role, action, comment, reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		rev.ReviewID, rev.CandidateID, rev.UserID, rev.UserName, string(rev.UserRole), string(rev.Action), rev.Comment, rev.Timestamp,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("review %s: %w", rev.ReviewID, domain.ErrDuplicate)
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *ReviewRepository) ListByCandidate(ctx context.Context, candidateID string) ([]*domain.Review, error) {
	query := `
		SELECT review_id, candidate_id, user_id, user_name, user_role, action, comment, reviewed_at
		FROM reviews
		WHERE candidate_id = $1
		ORDER BY reviewed_at DESC, review_id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	out := []*domain.Review{}
	for rows.Next() {
		rev := &domain.Review{}
		var role, action string
		if err := rows.Scan(&rev.ReviewID, &rev.CandidateID, &rev.UserID, &rev.UserName, &role, &action, &rev.Comment, &rev.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		rev.UserRole = domain.Role(role)
		rev.Action = domain.ReviewAction(action)
		out = append(out, rev)
	}
	return out, rows.Err()
}
