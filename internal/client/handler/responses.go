package handler

import (
	"time"

	"keypulse/internal/client/models"
)

// RegisterResponse returns the derived short key and today's token so
// the client can start checking in immediately.
type RegisterResponse struct {
	ShortKey string `json:"short_key"`
	Token    string `json:"token"`
}

// VerifyResponse reports a verification outcome.
type VerifyResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason"`
}

// IssueResponse reports how many daily tokens the manual trigger issued.
type IssueResponse struct {
	Issued int `json:"issued"`
}

// ClientResponse is the admin listing view of one client record.
type ClientResponse struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	CIN        string    `json:"cin"`
	ShortKey   string    `json:"short_key"`
	Locked     bool      `json:"locked"`
	Tokens     int       `json:"tokens"`
	Pings      int       `json:"pings"`
	LastPing   string    `json:"last_ping,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func ToClientResponses(clients []*models.Client) []ClientResponse {
	out := make([]ClientResponse, 0, len(clients))
	for _, c := range clients {
		resp := ClientResponse{
			ID:         c.ID,
			ClientName: c.ClientName,
			StartDate:  c.StartDate,
			EndDate:    c.EndDate,
			CIN:        c.CIN,
			ShortKey:   c.ShortKey,
			Locked:     c.Locked,
			Tokens:     len(c.TokenHistory),
			Pings:      len(c.PingLog),
			CreatedAt:  c.CreatedAt,
		}
		if last, ok := c.LastPing(); ok {
			resp.LastPing = last.Date + " " + last.Time
		}
		out = append(out, resp)
	}
	return out
}
