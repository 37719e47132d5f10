package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "keypulse/pkg/domain-errors"
)

func testClient() *Client {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return &Client{
		ID: "client-1",
		Identity: Identity{
			ClientName: "Acme",
			StartDate:  "2025-01-01",
			EndDate:    "2025-12-31",
			CIN:        "CIN1",
		},
		ShortKey:  "abcdef0123456789",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestIdentityValidate(t *testing.T) {
	valid := Identity{ClientName: "Acme", StartDate: "2025-01-01", EndDate: "2025-12-31", CIN: "CIN1"}
	require.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*Identity)
	}{
		{"missing clientName", func(i *Identity) { i.ClientName = "" }},
		{"missing startDate", func(i *Identity) { i.StartDate = "" }},
		{"missing endDate", func(i *Identity) { i.EndDate = "" }},
		{"missing cin", func(i *Identity) { i.CIN = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			identity := valid
			tc.mutate(&identity)
			err := identity.Validate()
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func TestTokenHistory(t *testing.T) {
	now := time.Now()

	t.Run("appends one entry per date", func(t *testing.T) {
		c := testClient()
		require.NoError(t, c.AppendToken("2025-06-01", "tok-1", now))
		assert.True(t, c.HasTokenFor("2025-06-01"))
		assert.Len(t, c.TokenHistory, 1)
	})

	t.Run("rejects second entry for same date", func(t *testing.T) {
		c := testClient()
		require.NoError(t, c.AppendToken("2025-06-01", "tok-1", now))
		err := c.AppendToken("2025-06-01", "tok-2", now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		assert.Len(t, c.TokenHistory, 1)
	})
}

func TestInRange(t *testing.T) {
	c := testClient()
	assert.True(t, c.InRange("2025-01-01"), "start bound is inclusive")
	assert.True(t, c.InRange("2025-12-31"), "end bound is inclusive")
	assert.True(t, c.InRange("2025-06-15"))
	assert.False(t, c.InRange("2024-12-31"))
	assert.False(t, c.InRange("2026-01-01"))
}

func TestStaleSince(t *testing.T) {
	loc := time.UTC
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, loc)
	cutoff := now.Add(-48 * time.Hour)

	t.Run("never pinged is maximally stale", func(t *testing.T) {
		c := testClient()
		assert.True(t, c.StaleSince(cutoff, loc))
	})

	t.Run("old ping is stale", func(t *testing.T) {
		c := testClient()
		c.RecordPing("2025-06-01", "09:30:00", now)
		assert.True(t, c.StaleSince(cutoff, loc))
	})

	t.Run("recent ping is fresh", func(t *testing.T) {
		c := testClient()
		c.RecordPing("2025-06-09", "09:30:00", now)
		assert.False(t, c.StaleSince(cutoff, loc))
	})

	t.Run("unparseable ping is treated as stale", func(t *testing.T) {
		c := testClient()
		c.PingLog = append(c.PingLog, Ping{Date: "garbage", Time: "nope"})
		assert.True(t, c.StaleSince(cutoff, loc))
	})
}

func TestLockTransitions(t *testing.T) {
	now := time.Now()

	t.Run("lock then reactivate", func(t *testing.T) {
		c := testClient()
		require.NoError(t, c.CanLock())
		c.ApplyLock(now)
		assert.True(t, c.Locked)

		require.NoError(t, c.CanReactivate())
		c.ApplyReactivation(now)
		assert.False(t, c.Locked)
	})

	t.Run("cannot lock twice", func(t *testing.T) {
		c := testClient()
		c.ApplyLock(now)
		err := c.CanLock()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("cannot reactivate an unlocked client", func(t *testing.T) {
		c := testClient()
		err := c.CanReactivate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestClone(t *testing.T) {
	c := testClient()
	require.NoError(t, c.AppendToken("2025-06-01", "tok-1", time.Now()))
	c.RecordPing("2025-06-01", "10:00:00", time.Now())

	clone := c.Clone()
	clone.TokenHistory[0].Token = "mutated"
	clone.PingLog[0].Time = "23:59:59"

	assert.Equal(t, "tok-1", c.TokenHistory[0].Token)
	assert.Equal(t, "10:00:00", c.PingLog[0].Time)
}
