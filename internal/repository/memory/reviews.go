package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/arbeit/talentportal/internal/domain"
)

// ReviewRepository implements domain.ReviewRepository in memory. Reviews are
// append-only so there is no Update.
type ReviewRepository struct {
	mu      sync.RWMutex
	reviews []domain.Review
	ids     map[string]struct{}
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{ids: make(map[string]struct{})}
}

func (r *ReviewRepository) Create(_ context.Context, review *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ids[review.ReviewID]; exists {
		return fmt.Errorf("review %s: %w", review.ReviewID, domain.ErrDuplicate)
	}
	r.ids[review.ReviewID] = struct{}{}
	r.reviews = append(r.reviews, *review)
	return nil
}

func (r *ReviewRepository) ListByCandidate(_ context.Context, candidateID string) ([]*domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.Review{}
	for i := len(r.reviews) - 1; i >= 0; i-- {
		if r.reviews[i].CandidateID == candidateID {
			rev := r.reviews[i]
			out = append(out, &rev)
		}
	}
	// insertion order breaks timestamp ties, newest append first
	slices.SortStableFunc(out, func(a, b *domain.Review) int {
		return cmp.Compare(b.Timestamp.UnixNano(), a.Timestamp.UnixNano())
	})
	return out, nil
}
