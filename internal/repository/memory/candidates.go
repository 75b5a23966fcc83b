package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/arbeit/talentportal/internal/domain"
)

// CandidateRepository implements domain.CandidateRepository in memory
type CandidateRepository struct {
	mu         sync.RWMutex
	candidates map[string]*domain.Candidate
}

func NewCandidateRepository() *CandidateRepository {
	return &CandidateRepository{candidates: make(map[string]*domain.Candidate)}
}

func (r *CandidateRepository) Create(_ context.Context, c *domain.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.candidates[c.CandidateID]; exists {
		return fmt.Errorf("candidate %s: %w", c.CandidateID, domain.ErrDuplicate)
	}
	r.candidates[c.CandidateID] = cloneCandidate(c)
	return nil
}

func (r *CandidateRepository) GetByID(_ context.Context, id string) (*domain.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.candidates[id]
	if !ok {
		return nil, fmt.Errorf("candidate %s: %w", id, domain.ErrNotFound)
	}
	return cloneCandidate(c), nil
}

func (r *CandidateRepository) Update(_ context.Context, c *domain.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.candidates[c.CandidateID]; !ok {
		return fmt.Errorf("candidate %s: %w", c.CandidateID, domain.ErrNotFound)
	}
	r.candidates[c.CandidateID] = cloneCandidate(c)
	return nil
}

// ListByJob returns the job's candidates newest first
func (r *CandidateRepository) ListByJob(_ context.Context, jobID string) ([]*domain.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.Candidate{}
	for _, c := range r.candidates {
		if c.JobID == jobID {
			out = append(out, cloneCandidate(c))
		}
	}
	slices.SortFunc(out, func(a, b *domain.Candidate) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.CandidateID, b.CandidateID))
	})
	return out, nil
}

func (r *CandidateRepository) Exists(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.candidates[id]
	return ok, nil
}
