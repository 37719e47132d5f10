package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"keypulse/internal/client/models"
	"keypulse/pkg/platform/sentinel"
)

// InMemory keeps records in a map guarded by an RWMutex. It favors
// clarity over performance and backs unit tests plus single-node
// deployments without a database. Records are deep-copied on the way in
// and out so callers never alias store-owned slices.
type InMemory struct {
	mu      sync.RWMutex
	clients map[string]*models.Client
}

func NewInMemory() *InMemory {
	return &InMemory{clients: make(map[string]*models.Client)}
}

func identityKey(clientName, cin string) string {
	return strings.ToLower(clientName) + "\x00" + strings.ToLower(cin)
}

func (s *InMemory) FindByIdentity(_ context.Context, clientName, cin string) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want := identityKey(clientName, cin)
	for _, c := range s.clients {
		if identityKey(c.ClientName, c.CIN) == want {
			return c.Clone(), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByID(_ context.Context, id string) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.clients[id]; ok {
		return c.Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindAll(_ context.Context, filter Filter) ([]*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*models.Client, 0, len(s.clients))
	for _, c := range s.clients {
		if filter.Locked != nil && c.Locked != *filter.Locked {
			continue
		}
		result = append(result, c.Clone())
	}
	// Stable listing order for handlers and tests.
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Insert enforces identity uniqueness under the write lock, making the
// service's check-then-insert safe against concurrent duplicates.
func (s *InMemory) Insert(_ context.Context, client *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[client.ID]; ok {
		return sentinel.ErrAlreadyUsed
	}
	want := identityKey(client.ClientName, client.CIN)
	for _, existing := range s.clients {
		if identityKey(existing.ClientName, existing.CIN) == want {
			return sentinel.ErrAlreadyUsed
		}
	}
	s.clients[client.ID] = client.Clone()
	return nil
}

func (s *InMemory) Update(_ context.Context, client *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[client.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.clients[client.ID] = client.Clone()
	return nil
}

func (s *InMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.clients, id)
	return nil
}
