// Package service implements the licensing check-in state machine:
// registration, daily token issuance, verification with ping logging,
// the inactivity lock sweep, and administrative reactivation.
//
// Services are stateless over the store; the current time is always
// taken from the request context so tests and batch jobs inject clocks.
package service

import (
	"errors"
	"log/slog"
	"time"

	"keypulse/internal/client/metrics"
	"keypulse/internal/client/store"
)

// DefaultInactivityThreshold locks a client after two calendar days
// without a successful check-in. Deployments tune this via config.
const DefaultInactivityThreshold = 48 * time.Hour

// issueConcurrency bounds the issuance fan-out so a large client set
// doesn't exhaust store connections.
const issueConcurrency = 8

type Service struct {
	store               store.Store
	logger              *slog.Logger
	metrics             *metrics.Metrics
	location            *time.Location
	inactivityThreshold time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLocation sets the reference timezone used to derive calendar dates
// and recorded ping times.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		s.location = loc
	}
}

func WithInactivityThreshold(threshold time.Duration) Option {
	return func(s *Service) {
		s.inactivityThreshold = threshold
	}
}

func New(st store.Store, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, errors.New("client store is required")
	}

	svc := &Service{
		store:               st,
		logger:              slog.Default(),
		location:            time.UTC,
		inactivityThreshold: DefaultInactivityThreshold,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}
