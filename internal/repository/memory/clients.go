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

// ClientRepository implements domain.ClientRepository in memory.
// Company names are unique ignoring case.
type ClientRepository struct {
	mu      sync.RWMutex
	clients map[string]domain.Client
}

func NewClientRepository() *ClientRepository {
	return &ClientRepository{clients: make(map[string]domain.Client)}
}

func (r *ClientRepository) nameTaken(name, exceptID string) bool {
	for id, c := range r.clients {
		if id != exceptID && strings.EqualFold(c.CompanyName, name) {
			return true
		}
	}
	return false
}

func (r *ClientRepository) Create(_ context.Context, client *domain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.clients[client.ClientID]; exists || r.nameTaken(client.CompanyName, "") {
		return fmt.Errorf("client %s: %w", client.CompanyName, domain.ErrDuplicate)
	}
	r.clients[client.ClientID] = *client
	return nil
}

func (r *ClientRepository) GetByID(_ context.Context, id string) (*domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[id]
	if !ok {
		return nil, fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
	}
	return &c, nil
}

func (r *ClientRepository) GetByName(_ context.Context, name string) (*domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.clients {
		if strings.EqualFold(c.CompanyName, name) {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("client %s: %w", name, domain.ErrNotFound)
}

func (r *ClientRepository) Update(_ context.Context, client *domain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[client.ClientID]; !ok {
		return fmt.Errorf("client %s: %w", client.ClientID, domain.ErrNotFound)
	}
	if r.nameTaken(client.CompanyName, client.ClientID) {
		return fmt.Errorf("client %s: %w", client.CompanyName, domain.ErrDuplicate)
	}
	r.clients[client.ClientID] = *client
	return nil
}

func (r *ClientRepository) List(_ context.Context, filter domain.ClientFilter) ([]*domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.Client{}
	for _, c := range r.clients {
		if filter.Search != "" && !containsFold(c.CompanyName, filter.Search) {
			continue
		}
		c := c
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *domain.Client) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ClientID, b.ClientID))
	})
	return page(out, filter.Skip, filter.Limit), nil
}
