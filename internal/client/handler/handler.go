package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"keypulse/internal/client/models"
	"keypulse/internal/client/service"
	"keypulse/pkg/platform/httputil"
	"keypulse/pkg/requestcontext"
)

// Service defines the client operations the transport layer needs.
type Service interface {
	Register(ctx context.Context, identity models.Identity) (*service.Registration, error)
	Verify(ctx context.Context, clientName, cin, token string) (*service.VerifyResult, error)
	IssueToday(ctx context.Context) (int, error)
	Reactivate(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.Client, error)
	Remove(ctx context.Context, id string) error
}

// Handler wires client endpoints to the client service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a client handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts client endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/clients", h.HandleRegister)
	r.Get("/clients", h.HandleList)
	r.Delete("/clients/{id}", h.HandleDelete)
	r.Post("/clients/{id}/reactivate", h.HandleReactivate)
	r.Post("/verify", h.HandleVerify)
	r.Post("/tokens/issue", h.HandleIssue)
}

// HandleRegister handles POST /clients.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	reg, err := h.service.Register(ctx, req.Identity())
	if err != nil {
		h.logger.ErrorContext(ctx, "registration failed",
			"request_id", requestID,
			"client_name", req.ClientName,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, RegisterResponse{
		ShortKey: reg.ShortKey,
		Token:    reg.Token,
	})
}

// HandleVerify handles POST /verify. Negative outcomes are regular
// responses, not HTTP errors; callers branch on the reason field.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Verify(ctx, req.ClientName, req.CIN, req.Token)
	if err != nil {
		h.logger.ErrorContext(ctx, "verification failed",
			"request_id", requestID,
			"client_name", req.ClientName,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "verification handled",
		"request_id", requestID,
		"client_name", req.ClientName,
		"outcome", result.Outcome,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, VerifyResponse{
		Valid:  result.Valid,
		Reason: string(result.Outcome),
	})
}

// HandleIssue handles POST /tokens/issue, the manual issuance trigger.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	count, err := h.service.IssueToday(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "manual issuance failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, IssueResponse{Issued: count})
}

// HandleList handles GET /clients.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clients, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "listing clients failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ToClientResponses(clients))
}

// HandleDelete handles DELETE /clients/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.service.Remove(ctx, id); err != nil {
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleReactivate handles POST /clients/{id}/reactivate.
func (h *Handler) HandleReactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.service.Reactivate(ctx, id); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "reactivated"})
}
