package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/arbeit/talentportal/internal/domain"
)

// UserRepository implements domain.UserRepository in memory
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]domain.User)}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Email]; exists {
		return fmt.Errorf("user %s: %w", user.Email, domain.ErrDuplicate)
	}
	r.users[user.Email] = *user
	return nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[email]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
	}
	return &u, nil
}

func (r *UserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Email]; !ok {
		return fmt.Errorf("user %s: %w", user.Email, domain.ErrNotFound)
	}
	r.users[user.Email] = *user
	return nil
}

func (r *UserRepository) ListByClient(_ context.Context, clientID string) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.User{}
	for _, u := range r.users {
		if u.ClientID == clientID {
			u := u
			out = append(out, &u)
		}
	}
	slices.SortFunc(out, func(a, b *domain.User) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.Email, b.Email))
	})
	return out, nil
}

func (r *UserRepository) CountByClient(_ context.Context, clientID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, u := range r.users {
		if u.ClientID == clientID {
			n++
		}
	}
	return n, nil
}
