// Package store persists client records. The interface is record
// oriented: every mutation is one read-modify-write round trip, and the
// store is the single shared mutable resource; services hold no state
// between calls.
package store

import (
	"context"

	"keypulse/internal/client/models"
)

// Filter narrows FindAll. A nil field means "don't care".
type Filter struct {
	Locked *bool
}

// Store is the persistence contract for client records.
//
// Insert enforces (clientName, cin) uniqueness and returns
// sentinel.ErrAlreadyUsed on conflict; this is the actual safety net
// behind the service-level duplicate check. FindByID, Update and Delete
// return sentinel.ErrNotFound when no record matches.
type Store interface {
	FindByIdentity(ctx context.Context, clientName, cin string) (*models.Client, error)
	FindByID(ctx context.Context, id string) (*models.Client, error)
	FindAll(ctx context.Context, filter Filter) ([]*models.Client, error)
	Insert(ctx context.Context, client *models.Client) error
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, id string) error
}

// Unlocked is a ready-made filter for the issuance and sweep jobs.
func Unlocked() Filter {
	locked := false
	return Filter{Locked: &locked}
}
