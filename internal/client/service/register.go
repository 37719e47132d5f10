package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"keypulse/internal/client/keys"
	"keypulse/internal/client/models"
	dErrors "keypulse/pkg/domain-errors"
	"keypulse/pkg/platform/sentinel"
	"keypulse/pkg/requestcontext"
)

// Registration is returned to the caller on successful registration so
// the client can start checking in immediately.
type Registration struct {
	ShortKey string
	Token    string
}

// Register creates a client record with its first daily token. The
// identity must be complete and not already registered. The store's
// uniqueness constraint backs the duplicate check, so a concurrent
// identical registration still yields exactly one record.
func (s *Service) Register(ctx context.Context, identity models.Identity) (*Registration, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}

	_, err := s.store.FindByIdentity(ctx, identity.ClientName, identity.CIN)
	if err == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "client already registered")
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up client")
	}

	now := requestcontext.Now(ctx).In(s.location)
	today := now.Format(models.DateFormat)
	shortKey := keys.DeriveShortKey(identity)
	token := keys.DailyToken(shortKey, today)

	client := &models.Client{
		ID:           uuid.NewString(),
		Identity:     identity,
		ShortKey:     shortKey,
		TokenHistory: []models.TokenEntry{{Date: today, Token: token}},
		PingLog:      []models.Ping{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Insert(ctx, client); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "client already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create client")
	}

	if s.metrics != nil {
		s.metrics.IncrementRegistrations()
	}
	s.logger.InfoContext(ctx, "client registered",
		"request_id", requestcontext.RequestID(ctx),
		"client_name", identity.ClientName,
		"short_key", shortKey,
		"start_date", identity.StartDate,
		"end_date", identity.EndDate,
	)

	return &Registration{ShortKey: shortKey, Token: token}, nil
}
