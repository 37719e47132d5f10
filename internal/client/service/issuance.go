package service

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"keypulse/internal/client/keys"
	"keypulse/internal/client/models"
	"keypulse/internal/client/store"
	dErrors "keypulse/pkg/domain-errors"
	"keypulse/pkg/requestcontext"
)

// IssueToday ensures every unlocked client has a token for the current
// date and returns how many tokens were issued. Running it twice the
// same day issues nothing the second time. Locked clients are skipped:
// no new tokens for inactive clients.
func (s *Service) IssueToday(ctx context.Context) (int, error) {
	clients, err := s.store.FindAll(ctx, store.Unlocked())
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list unlocked clients")
	}

	now := requestcontext.Now(ctx).In(s.location)
	today := now.Format(models.DateFormat)

	var issued atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(issueConcurrency)
	for _, client := range clients {
		g.Go(func() error {
			token := keys.DailyToken(client.ShortKey, today)
			if err := client.AppendToken(today, token, now); err != nil {
				// Already has today's entry.
				return nil
			}
			if err := s.store.Update(gctx, client); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist issued token")
			}
			issued.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(issued.Load()), err
	}

	count := int(issued.Load())
	if s.metrics != nil {
		s.metrics.AddTokensIssued(count)
	}
	s.logger.InfoContext(ctx, "daily tokens issued",
		"date", today,
		"issued", count,
		"unlocked_clients", len(clients),
	)
	return count, nil
}
