// Package handler is the thin HTTP layer over the account service. It
// decodes requests, pulls the verified principal from context, and delegates;
// validation and authorization live in the service.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"account-gateway/internal/account/models"
	"account-gateway/internal/identity"
	"account-gateway/internal/platform/metrics"
	"account-gateway/internal/platform/middleware"
	"account-gateway/internal/transport/http/shared"
	dErrors "account-gateway/pkg/domain-errors"
	"account-gateway/pkg/requestcontext"
)

// Service is the account operations contract the handler depends on.
type Service interface {
	DeleteAccount(ctx context.Context, principal identity.Principal, req *models.DeleteAccountRequest) (string, error)
	AddTokens(ctx context.Context, principal identity.Principal, userID string, tokens int64) error
}

type Handler struct {
	service  Service
	verifier identity.Verifier
	logger   *slog.Logger
	metrics  *metrics.Metrics
	timeout  time.Duration
}

func New(service Service, verifier identity.Verifier, logger *slog.Logger, m *metrics.Metrics, timeout time.Duration) *Handler {
	return &Handler{
		service:  service,
		verifier: verifier,
		logger:   logger,
		metrics:  m,
		timeout:  timeout,
	}
}

// Register mounts the two account endpoints behind the full middleware
// chain. Both accept POST only.
func (h *Handler) Register(r chi.Router) {
	accountRouter := chi.NewRouter()
	accountRouter.Use(middleware.Recovery(h.logger))
	accountRouter.Use(middleware.RequestID)
	accountRouter.Use(middleware.Logger(h.logger))
	accountRouter.Use(middleware.Timeout(h.timeout))
	accountRouter.Use(middleware.Latency(h.metrics))

	// The method check happens before authentication: a GET with no
	// credential is a 405, not a 401. RequireAuth therefore wraps the
	// routes, not the router.
	requireAuth := middleware.RequireAuth(h.verifier, h.logger, h.metrics)
	accountRouter.MethodNotAllowed(handleMethodNotAllowed)
	accountRouter.With(requireAuth).Post("/deleteAccount", h.handleDeleteAccount)
	accountRouter.With(requireAuth).Post("/addTokens", h.handleAddTokens)

	r.Mount("/", accountRouter)
}

func (h *Handler) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.DeleteAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid delete account request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Email is required"))
		return
	}

	serverHash, err := h.service.DeleteAccount(ctx, requestcontext.Principal(ctx), &req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, models.DeleteAccountResponse{
		Success:           true,
		Message:           "Account deleted",
		ServerHashedEmail: serverHash,
	})
}

func (h *Handler) handleAddTokens(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.AddTokensRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid add tokens request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Missing userId or tokens"))
		return
	}

	if err := h.service.AddTokens(ctx, requestcontext.Principal(ctx), req.UserID, req.Tokens); err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, models.AddTokensResponse{
		Success: true,
		Message: "Tokens added",
	})
}

func handleMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	shared.WriteError(w, dErrors.New(dErrors.CodeMethodNotAllowed, "Method not allowed"))
}
