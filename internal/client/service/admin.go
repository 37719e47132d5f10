package service

import (
	"context"
	"errors"

	"keypulse/internal/client/models"
	"keypulse/internal/client/store"
	dErrors "keypulse/pkg/domain-errors"
	"keypulse/pkg/platform/sentinel"
	"keypulse/pkg/requestcontext"
)

// Reactivate unlocks a previously locked client. Reactivation is only
// meaningful on a locked record; token and ping history are untouched.
func (s *Service) Reactivate(ctx context.Context, id string) error {
	client, err := s.store.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "client not found")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up client")
	}

	if err := client.CanReactivate(); err != nil {
		return dErrors.New(dErrors.CodeConflict, "client is not locked")
	}
	client.ApplyReactivation(requestcontext.Now(ctx).In(s.location))
	if err := s.store.Update(ctx, client); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reactivate client")
	}

	s.logger.InfoContext(ctx, "client reactivated",
		"request_id", requestcontext.RequestID(ctx),
		"client_name", client.ClientName,
		"cin", client.CIN,
	)
	return nil
}

// List returns all client records, locked and unlocked.
func (s *Service) List(ctx context.Context) ([]*models.Client, error) {
	clients, err := s.store.FindAll(ctx, store.Filter{})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list clients")
	}
	return clients, nil
}

// Remove deletes a client record unconditionally. Deletion is not
// gated by lock state and has no cascading side effects.
func (s *Service) Remove(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "client not found")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete client")
	}

	s.logger.InfoContext(ctx, "client deleted",
		"request_id", requestcontext.RequestID(ctx),
		"client_id", id,
	)
	return nil
}
