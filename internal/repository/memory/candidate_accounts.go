package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/arbeit/talentportal/internal/domain"
)

// CandidateAccountRepository implements domain.CandidateAccountRepository
// in memory. Emails are unique ignoring case.
type CandidateAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]domain.CandidateAccount
}

func NewCandidateAccountRepository() *CandidateAccountRepository {
	return &CandidateAccountRepository{accounts: make(map[string]domain.CandidateAccount)}
}

func cloneAccount(a domain.CandidateAccount) *domain.CandidateAccount {
	if a.ExperienceYears != nil {
		years := *a.ExperienceYears
		a.ExperienceYears = &years
	}
	if a.LastLoginAt != nil {
		at := *a.LastLoginAt
		a.LastLoginAt = &at
	}
	return &a
}

func (r *CandidateAccountRepository) emailTaken(email, exceptID string) bool {
	for id, a := range r.accounts {
		if id != exceptID && strings.EqualFold(a.Email, email) {
			return true
		}
	}
	return false
}

func (r *CandidateAccountRepository) Create(_ context.Context, account *domain.CandidateAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[account.AccountID]; exists || r.emailTaken(account.Email, "") {
		return fmt.Errorf("candidate account %s: %w", account.Email, domain.ErrDuplicate)
	}
	r.accounts[account.AccountID] = *cloneAccount(*account)
	return nil
}

func (r *CandidateAccountRepository) GetByID(_ context.Context, id string) (*domain.CandidateAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, fmt.Errorf("candidate account %s: %w", id, domain.ErrNotFound)
	}
	return cloneAccount(a), nil
}

func (r *CandidateAccountRepository) GetByEmail(_ context.Context, email string) (*domain.CandidateAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if strings.EqualFold(a.Email, email) {
			return cloneAccount(a), nil
		}
	}
	return nil, fmt.Errorf("candidate account %s: %w", email, domain.ErrNotFound)
}

func (r *CandidateAccountRepository) Update(_ context.Context, account *domain.CandidateAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[account.AccountID]; !ok {
		return fmt.Errorf("candidate account %s: %w", account.AccountID, domain.ErrNotFound)
	}
	if r.emailTaken(account.Email, account.AccountID) {
		return fmt.Errorf("candidate account %s: %w", account.Email, domain.ErrDuplicate)
	}
	r.accounts[account.AccountID] = *cloneAccount(*account)
	return nil
}

func (r *CandidateAccountRepository) List(_ context.Context, filter domain.CandidateAccountFilter) ([]*domain.CandidateAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.CandidateAccount{}
	for _, a := range r.accounts {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !containsFold(a.Name, filter.Search) && !containsFold(a.Email, filter.Search) {
			continue
		}
		out = append(out, cloneAccount(a))
	}
	slices.SortFunc(out, func(a, b *domain.CandidateAccount) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.AccountID, b.AccountID))
	})
	return page(out, filter.Skip, filter.Limit), nil
}
