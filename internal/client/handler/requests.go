package handler

import (
	"strings"

	"keypulse/internal/client/models"
	dErrors "keypulse/pkg/domain-errors"
)

// RegisterRequest is the HTTP request body for POST /clients.
type RegisterRequest struct {
	ClientName string `json:"client_name"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	CIN        string `json:"cin"`
}

// Validate trims and checks the identity fields. Implements the
// Validatable interface for httputil.DecodeAndPrepare.
func (r *RegisterRequest) Validate() error {
	r.ClientName = strings.TrimSpace(r.ClientName)
	r.StartDate = strings.TrimSpace(r.StartDate)
	r.EndDate = strings.TrimSpace(r.EndDate)
	r.CIN = strings.TrimSpace(r.CIN)
	return r.Identity().Validate()
}

// Identity returns the validated registration identity.
func (r *RegisterRequest) Identity() models.Identity {
	return models.Identity{
		ClientName: r.ClientName,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		CIN:        r.CIN,
	}
}

// VerifyRequest is the HTTP request body for POST /verify.
type VerifyRequest struct {
	ClientName string `json:"client_name"`
	CIN        string `json:"cin"`
	Token      string `json:"token"`
}

func (r *VerifyRequest) Validate() error {
	r.ClientName = strings.TrimSpace(r.ClientName)
	r.CIN = strings.TrimSpace(r.CIN)
	switch {
	case r.ClientName == "":
		return dErrors.New(dErrors.CodeValidation, "client_name is required")
	case r.CIN == "":
		return dErrors.New(dErrors.CodeValidation, "cin is required")
	case r.Token == "":
		return dErrors.New(dErrors.CodeValidation, "token is required")
	}
	return nil
}
