package models

import (
	"time"

	dErrors "keypulse/pkg/domain-errors"
)

// DateFormat is the fixed-width calendar date layout used everywhere a
// date is stored or compared. Fixed width makes lexicographic comparison
// equivalent to calendar comparison.
const DateFormat = "2006-01-02"

// TimeFormat is the wall-clock layout recorded in the ping log. Times are
// for log readability and inactivity-window precision only; they are
// never compared against tokens.
const TimeFormat = "15:04:05"

// Identity is the immutable registration tuple. CIN is the external
// client identification code. (ClientName, CIN) must be unique across
// the store.
type Identity struct {
	ClientName string `json:"client_name"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	CIN        string `json:"cin"`
}

// Validate checks that all identity fields are present. Field content is
// otherwise caller-defined; dates are expected in DateFormat.
func (i Identity) Validate() error {
	switch {
	case i.ClientName == "":
		return dErrors.New(dErrors.CodeValidation, "clientName is required")
	case i.StartDate == "":
		return dErrors.New(dErrors.CodeValidation, "startDate is required")
	case i.EndDate == "":
		return dErrors.New(dErrors.CodeValidation, "endDate is required")
	case i.CIN == "":
		return dErrors.New(dErrors.CodeValidation, "cin is required")
	}
	return nil
}

// TokenEntry is one issued daily token.
type TokenEntry struct {
	Date  string `json:"date"`
	Token string `json:"token"`
}

// Ping is one successful verification event.
type Ping struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Client is the aggregate root for a registered client.
//
// Invariants:
//   - ShortKey is a pure function of Identity, set once at registration
//   - TokenHistory holds at most one entry per date and is append-only
//   - PingLog is append-only, insertion-ordered
//   - Locked transitions: unlocked → locked (inactivity sweep),
//     locked → unlocked (explicit reactivation only)
type Client struct {
	ID string `json:"id"`
	Identity
	ShortKey     string       `json:"short_key"`
	TokenHistory []TokenEntry `json:"token_history"`
	PingLog      []Ping       `json:"ping_log"`
	Locked       bool         `json:"locked"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// HasTokenFor reports whether a token was already issued for the date.
func (c *Client) HasTokenFor(date string) bool {
	for _, entry := range c.TokenHistory {
		if entry.Date == date {
			return true
		}
	}
	return false
}

// AppendToken records the daily token for a date. Appending twice for the
// same date violates the one-entry-per-date invariant.
func (c *Client) AppendToken(date, token string, now time.Time) error {
	if c.HasTokenFor(date) {
		return dErrors.New(dErrors.CodeInvariantViolation, "token already issued for date")
	}
	c.TokenHistory = append(c.TokenHistory, TokenEntry{Date: date, Token: token})
	c.UpdatedAt = now
	return nil
}

// RecordPing appends a successful verification event.
func (c *Client) RecordPing(date, wallClock string, now time.Time) {
	c.PingLog = append(c.PingLog, Ping{Date: date, Time: wallClock})
	c.UpdatedAt = now
}

// LastPing returns the most recent ping, or false if the client has
// never pinged.
func (c *Client) LastPing() (Ping, bool) {
	if len(c.PingLog) == 0 {
		return Ping{}, false
	}
	return c.PingLog[len(c.PingLog)-1], true
}

// InRange reports whether the date falls inside [StartDate, EndDate],
// bounds inclusive. Lexicographic comparison is calendar comparison
// because all dates share DateFormat.
func (c *Client) InRange(date string) bool {
	return date >= c.StartDate && date <= c.EndDate
}

// StaleSince reports whether the client's last ping is older than the
// cutoff. A client that has never pinged is maximally stale. The ping
// timestamp is parsed in the given location; an unparseable entry is
// treated as stale rather than silently trusted.
func (c *Client) StaleSince(cutoff time.Time, loc *time.Location) bool {
	last, ok := c.LastPing()
	if !ok {
		return true
	}
	at, err := time.ParseInLocation(DateFormat+" "+TimeFormat, last.Date+" "+last.Time, loc)
	if err != nil {
		return true
	}
	return at.Before(cutoff)
}

// CanLock checks whether the inactivity sweep may lock this client.
func (c *Client) CanLock() error {
	if c.Locked {
		return dErrors.New(dErrors.CodeInvariantViolation, "client is already locked")
	}
	return nil
}

// ApplyLock transitions the client to locked. Call CanLock first.
func (c *Client) ApplyLock(now time.Time) {
	c.Locked = true
	c.UpdatedAt = now
}

// CanReactivate checks whether the client may be unlocked. Reactivation
// is only meaningful on a locked record.
func (c *Client) CanReactivate() error {
	if !c.Locked {
		return dErrors.New(dErrors.CodeInvariantViolation, "client is not locked")
	}
	return nil
}

// ApplyReactivation transitions the client back to unlocked. Token and
// ping history are untouched. Call CanReactivate first.
func (c *Client) ApplyReactivation(now time.Time) {
	c.Locked = false
	c.UpdatedAt = now
}

// Clone returns a deep copy so store reads never alias live slices.
func (c *Client) Clone() *Client {
	clone := *c
	clone.TokenHistory = append([]TokenEntry(nil), c.TokenHistory...)
	clone.PingLog = append([]Ping(nil), c.PingLog...)
	return &clone
}
