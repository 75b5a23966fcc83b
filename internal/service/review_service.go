package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/arbeit/talentportal/internal/domain"
	"github.com/arbeit/talentportal/internal/observability/metrics"
	"github.com/arbeit/talentportal/internal/security"
	"github.com/arbeit/talentportal/internal/security/audit"
)

// ReviewService records review decisions on candidates
type ReviewService struct {
	reviews    domain.ReviewRepository
	candidates *CandidateService
	broker     *ReviewBroker
	audit      *audit.Logger
	logger     *slog.Logger
	now        func() time.Time
}

func NewReviewService(reviews domain.ReviewRepository, candidates *CandidateService, broker *ReviewBroker, auditLog *audit.Logger, logger *slog.Logger) *ReviewService {
	if logger == nil {
		logger = slog.Default()
	}
	if broker == nil {
		broker = NewReviewBroker()
	}
	if auditLog == nil {
		auditLog = audit.NewLogger(logger)
	}
	return &ReviewService{
		reviews:    reviews,
		candidates: candidates,
		broker:     broker,
		audit:      auditLog,
		logger:     logger,
		now:        time.Now,
	}
}

// Create appends a review. Every action except COMMENT writes its token
// onto the candidate's status.
func (s *ReviewService) Create(ctx context.Context, p security.Principal, candidateID, action, comment string) (*domain.Review, error) {
	act, err := domain.ParseReviewAction(strings.ToUpper(strings.TrimSpace(action)))
	if err != nil {
		return nil, badRequest("Invalid action")
	}
	c, job, err := s.candidates.load(ctx, p, candidateID, security.PermCreateReview)
	if err != nil {
		return nil, err
	}

	review := &domain.Review{
		ReviewID:    newID("rev"),
		CandidateID: c.CandidateID,
		UserID:      p.Email,
		UserName:    p.Name,
		UserRole:    p.Role,
		Action:      act,
		Comment:     comment,
		Timestamp:   s.now().UTC(),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, internalError(s.logger, "failed to create review", err)
	}

	if status, ok := act.CandidateStatus(); ok {
		c.Status = status
		if err := s.candidates.save(ctx, c); err != nil {
			return nil, err
		}
	}

	clientID := p.ClientID
	if job != nil {
		clientID = job.ClientID
	}
	metrics.ObserveReview(string(act))
	s.audit.LogReview(ctx, clientID, p.Email, c.CandidateID, string(act))
	s.broker.Publish(review)
	return review, nil
}

// List returns the candidate's reviews, newest first
func (s *ReviewService) List(ctx context.Context, p security.Principal, candidateID string) ([]*domain.Review, error) {
	if _, _, err := s.candidates.load(ctx, p, candidateID, security.PermListReviews); err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, internalError(s.logger, "failed to list reviews", err)
	}
	return reviews, nil
}

// Subscribe opens a live feed of new reviews after the usual access check
func (s *ReviewService) Subscribe(ctx context.Context, p security.Principal, candidateID string) (<-chan *domain.Review, func(), error) {
	if _, _, err := s.candidates.load(ctx, p, candidateID, security.PermListReviews); err != nil {
		return nil, nil, err
	}
	ch, cancel := s.broker.Subscribe(candidateID)
	return ch, cancel, nil
}
