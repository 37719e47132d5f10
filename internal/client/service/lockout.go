package service

import (
	"context"

	"keypulse/internal/client/store"
	dErrors "keypulse/pkg/domain-errors"
	"keypulse/pkg/requestcontext"
)

// Sweep locks every unlocked client whose most recent ping is older than
// the inactivity threshold and returns how many were locked. A client
// that has never pinged is maximally stale and locks on the first sweep.
// The sweep is monotonic: it never unlocks, so re-runs are idempotent
// and interleaving with live verification traffic is harmless.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	clients, err := s.store.FindAll(ctx, store.Unlocked())
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list unlocked clients")
	}

	now := requestcontext.Now(ctx).In(s.location)
	cutoff := now.Add(-s.inactivityThreshold)

	locked := 0
	for _, client := range clients {
		if !client.StaleSince(cutoff, s.location) {
			continue
		}
		if err := client.CanLock(); err != nil {
			continue
		}
		client.ApplyLock(now)
		if err := s.store.Update(ctx, client); err != nil {
			return locked, dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock client")
		}
		locked++
		if s.metrics != nil {
			s.metrics.IncrementLockouts()
		}
		s.logger.WarnContext(ctx, "client locked due to inactivity",
			"client_name", client.ClientName,
			"cin", client.CIN,
		)
	}

	s.logger.InfoContext(ctx, "inactivity sweep finished",
		"scanned", len(clients),
		"locked", locked,
		"threshold", s.inactivityThreshold.String(),
	)
	return locked, nil
}
