package service

import (
	"context"
	"errors"

	"keypulse/internal/client/keys"
	"keypulse/internal/client/models"
	dErrors "keypulse/pkg/domain-errors"
	"keypulse/pkg/platform/sentinel"
	"keypulse/pkg/requestcontext"
)

// Outcome classifies a verification attempt. Negative outcomes are
// expected, frequent results rather than faults, so they are returned
// as values and callers branch on them. Only store failures surface as
// errors.
type Outcome string

const (
	OutcomeValid      Outcome = "valid"
	OutcomeNotFound   Outcome = "not_found"
	OutcomeLocked     Outcome = "locked"
	OutcomeOutOfRange Outcome = "out_of_range"
	OutcomeMismatch   Outcome = "mismatch"
)

// VerifyResult is the outcome of one check-in attempt.
type VerifyResult struct {
	Outcome Outcome
	Valid   bool
}

func verdict(outcome Outcome) *VerifyResult {
	return &VerifyResult{Outcome: outcome, Valid: outcome == OutcomeValid}
}

// Verify validates a presented token against today's expected token for
// the client. Outcomes are evaluated in order: not found, locked, out of
// active range, token mismatch, valid. Only a valid attempt has a side
// effect: a ping is appended and persisted. The expected token is always
// recomputed from the short key; stored history is consulted only for
// the issued-today check, so a tampered stored entry can never cause a
// false accept.
func (s *Service) Verify(ctx context.Context, clientName, cin, presented string) (*VerifyResult, error) {
	result, err := s.verify(ctx, clientName, cin, presented)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ObserveVerification(string(result.Outcome))
	}
	s.logger.InfoContext(ctx, "verification attempt",
		"request_id", requestcontext.RequestID(ctx),
		"client_name", clientName,
		"outcome", result.Outcome,
	)
	return result, nil
}

func (s *Service) verify(ctx context.Context, clientName, cin, presented string) (*VerifyResult, error) {
	client, err := s.store.FindByIdentity(ctx, clientName, cin)
	if errors.Is(err, sentinel.ErrNotFound) {
		return verdict(OutcomeNotFound), nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up client")
	}

	if client.Locked {
		return verdict(OutcomeLocked), nil
	}

	now := requestcontext.Now(ctx).In(s.location)
	today := now.Format(models.DateFormat)
	if !client.InRange(today) {
		return verdict(OutcomeOutOfRange), nil
	}

	expected := keys.DailyToken(client.ShortKey, today)
	if !client.HasTokenFor(today) || presented != expected {
		return verdict(OutcomeMismatch), nil
	}

	// The write is the final step: a failed update leaves the record in
	// its pre-call state with no partial append.
	client.RecordPing(today, now.Format(models.TimeFormat), now)
	if err := s.store.Update(ctx, client); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record ping")
	}

	return verdict(OutcomeValid), nil
}
