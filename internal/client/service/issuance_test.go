package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"keypulse/internal/client/models"
	"keypulse/internal/client/store"
	"keypulse/pkg/requestcontext"
)

type IssuanceSuite struct {
	suite.Suite
	store   *store.InMemory
	service *Service
	now     time.Time
	ctx     context.Context
}

func TestIssuanceSuite(t *testing.T) {
	suite.Run(t, new(IssuanceSuite))
}

func (s *IssuanceSuite) SetupTest() {
	s.store = store.NewInMemory()

	var err error
	s.service, err = New(s.store)
	s.Require().NoError(err)

	s.now = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *IssuanceSuite) register(name, cin string) {
	s.T().Helper()
	identity := acmeIdentity()
	identity.ClientName = name
	identity.CIN = cin
	_, err := s.service.Register(s.ctx, identity)
	s.Require().NoError(err)
}

func (s *IssuanceSuite) tokenCount(name, cin string) int {
	c, err := s.store.FindByIdentity(context.Background(), name, cin)
	s.Require().NoError(err)
	return len(c.TokenHistory)
}

func (s *IssuanceSuite) TestIssuesForNewDay() {
	s.register("Acme", "CIN1")
	s.register("Globex", "CIN2")

	tomorrow := requestcontext.WithTime(context.Background(), s.now.Add(24*time.Hour))
	count, err := s.service.IssueToday(tomorrow)
	s.Require().NoError(err)
	s.Equal(2, count)

	s.Equal(2, s.tokenCount("Acme", "CIN1"))
	s.Equal(2, s.tokenCount("Globex", "CIN2"))
}

func (s *IssuanceSuite) TestIdempotentSameDay() {
	s.register("Acme", "CIN1")

	// Registration already issued today's token.
	count, err := s.service.IssueToday(s.ctx)
	s.Require().NoError(err)
	s.Zero(count)

	count, err = s.service.IssueToday(s.ctx)
	s.Require().NoError(err)
	s.Zero(count)

	s.Equal(1, s.tokenCount("Acme", "CIN1"), "at most one entry per calendar date")
}

func (s *IssuanceSuite) TestSkipsLockedClients() {
	s.register("Acme", "CIN1")
	s.register("Globex", "CIN2")

	c, err := s.store.FindByIdentity(s.ctx, "Globex", "CIN2")
	s.Require().NoError(err)
	c.ApplyLock(s.now)
	s.Require().NoError(s.store.Update(s.ctx, c))

	tomorrow := requestcontext.WithTime(context.Background(), s.now.Add(24*time.Hour))
	count, err := s.service.IssueToday(tomorrow)
	s.Require().NoError(err)
	s.Equal(1, count)

	s.Equal(2, s.tokenCount("Acme", "CIN1"))
	s.Equal(1, s.tokenCount("Globex", "CIN2"), "locked clients get no new tokens")
}

func (s *IssuanceSuite) TestIssuedTokenVerifies() {
	s.register("Acme", "CIN1")

	tomorrow := s.now.Add(24 * time.Hour)
	ctx := requestcontext.WithTime(context.Background(), tomorrow)
	_, err := s.service.IssueToday(ctx)
	s.Require().NoError(err)

	c, err := s.store.FindByIdentity(ctx, "Acme", "CIN1")
	s.Require().NoError(err)
	var issued string
	for _, entry := range c.TokenHistory {
		if entry.Date == "2025-06-11" {
			issued = entry.Token
		}
	}
	s.Require().NotEmpty(issued)

	result, err := s.service.Verify(ctx, "Acme", "CIN1", issued)
	s.Require().NoError(err)
	s.Equal(OutcomeValid, result.Outcome)
}

func (s *IssuanceSuite) TestManyClients() {
	// More clients than the fan-out limit.
	for i := range 25 {
		identity := models.Identity{
			ClientName: "Client" + string(rune('A'+i)),
			StartDate:  "2025-01-01",
			EndDate:    "2025-12-31",
			CIN:        "CIN" + string(rune('A'+i)),
		}
		_, err := s.service.Register(s.ctx, identity)
		s.Require().NoError(err)
	}

	tomorrow := requestcontext.WithTime(context.Background(), s.now.Add(24*time.Hour))
	count, err := s.service.IssueToday(tomorrow)
	s.Require().NoError(err)
	s.Equal(25, count)
}
