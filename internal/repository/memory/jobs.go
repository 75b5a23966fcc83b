package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/arbeit/talentportal/internal/domain"
)

// JobRepository implements domain.JobRepository in memory
type JobRepository struct {
	mu   sync.RWMutex
	jobs map[string]*domain.Job
}

func NewJobRepository() *JobRepository {
	return &JobRepository{jobs: make(map[string]*domain.Job)}
}

func (r *JobRepository) Create(_ context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobs[job.JobID]; exists {
		return fmt.Errorf("job %s: %w", job.JobID, domain.ErrDuplicate)
	}
	r.jobs[job.JobID] = cloneJob(job)
	return nil
}

func (r *JobRepository) GetByID(_ context.Context, id string) (*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
	}
	return cloneJob(j), nil
}

func (r *JobRepository) Update(_ context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[job.JobID]; !ok {
		return fmt.Errorf("job %s: %w", job.JobID, domain.ErrNotFound)
	}
	r.jobs[job.JobID] = cloneJob(job)
	return nil
}

func matchesJob(j *domain.Job, f domain.JobFilter) bool {
	if f.ClientID != "" && j.ClientID != f.ClientID {
		return false
	}
	if f.Status != "" && j.Status != f.Status {
		return false
	}
	if f.Search == "" {
		return true
	}
	if containsFold(j.Title, f.Search) {
		return true
	}
	for _, s := range j.RequiredSkills {
		if containsFold(s, f.Search) {
			return true
		}
	}
	return false
}

// List returns matching jobs newest first
func (r *JobRepository) List(_ context.Context, filter domain.JobFilter) ([]*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.Job{}
	for _, j := range r.jobs {
		if matchesJob(j, filter) {
			out = append(out, cloneJob(j))
		}
	}
	slices.SortFunc(out, func(a, b *domain.Job) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.JobID, b.JobID))
	})
	return page(out, filter.Skip, filter.Limit), nil
}
