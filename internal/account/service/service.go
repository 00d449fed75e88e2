// Package service orchestrates the two account lifecycle operations:
// pseudonymized erasure and atomic token crediting. Handlers stay thin; all
// validation, authorization, and store sequencing lives here.
package service

import (
	"context"
	"errors"
	"log/slog"

	"account-gateway/internal/account/models"
	"account-gateway/internal/account/store"
	"account-gateway/internal/identity"
	"account-gateway/internal/platform/metrics"
	dErrors "account-gateway/pkg/domain-errors"
	"account-gateway/pkg/platform/sentinel"
	"account-gateway/pkg/requestcontext"
)

// Hasher derives the pseudonymous storage key from an email address.
type Hasher interface {
	Hash(email string) string
}

type Service struct {
	hashes  store.HashStore
	users   store.UserStore
	hasher  Hasher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(hashes store.HashStore, users store.UserStore, hasher Hasher, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		hashes:  hashes,
		users:   users,
		hasher:  hasher,
		logger:  logger,
		metrics: m,
	}
}

// RequireSelf is the ownership guard applied before every mutating
// operation: the verified principal identity must equal the resource's
// declared owner. It runs before any store interaction so rejected requests
// have no side effects.
func RequireSelf(got, want, message string) error {
	if got != want {
		return dErrors.New(dErrors.CodeForbidden, message)
	}
	return nil
}

// DeleteAccount moves the caller's token balance into a pseudonymous record
// and deletes the identifiable record. The upsert-then-read-then-delete
// sequence is strictly ordered but not atomic; every step is idempotent so
// re-invocation after a partial failure is safe.
func (s *Service) DeleteAccount(ctx context.Context, principal identity.Principal, req *models.DeleteAccountRequest) (string, error) {
	if req.Email == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "Email is required")
	}
	if err := RequireSelf(principal.Email, req.Email, "Unauthorized: Can only delete your own account"); err != nil {
		s.logger.WarnContext(ctx, "account deletion denied",
			"request_id", requestcontext.RequestID(ctx),
			"uid", principal.UID,
		)
		return "", err
	}

	serverHash := s.hasher.Hash(req.Email)

	// Client-side hash comparison is diagnostic only; a mismatch points at a
	// client with a stale secret but never blocks the erasure.
	if req.ClientEncryptedEmail != "" && req.ClientEncryptedEmail != serverHash {
		s.logger.WarnContext(ctx, "client hash mismatch",
			"request_id", requestcontext.RequestID(ctx),
			"uid", principal.UID,
		)
	}

	record := &models.HashRecord{
		ID:        serverHash,
		Tokens:    req.Tokens,
		Email:     req.Email,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.hashes.Save(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "failed to save hash record",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		return "", dErrors.Wrap(err, dErrors.CodeStorage, err.Error())
	}

	// Read-back verification: the snapshot must exist before the
	// identifiable record may be removed.
	if _, err := s.hashes.Find(ctx, serverHash); err != nil {
		s.logger.ErrorContext(ctx, "hash record verification failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		return "", dErrors.Wrap(err, dErrors.CodeStorage, "failed to verify hash record")
	}

	// Absence of a uid is valid: the record is already gone or the caller
	// chose not to remove it.
	if req.UID != "" {
		if err := s.users.Delete(ctx, req.UID); err != nil {
			s.logger.ErrorContext(ctx, "failed to delete user record",
				"request_id", requestcontext.RequestID(ctx),
				"uid", req.UID,
				"error", err.Error(),
			)
			return "", dErrors.Wrap(err, dErrors.CodeStorage, err.Error())
		}
	}

	s.metrics.AccountsErased.Inc()
	s.logger.InfoContext(ctx, "account erased",
		"request_id", requestcontext.RequestID(ctx),
		"server_hash", serverHash,
		"tokens_preserved", req.Tokens,
	)
	return serverHash, nil
}

// AddTokens credits the caller's balance through the store's atomic
// transaction. A tokens value of 0 is rejected as missing; this mirrors the
// mobile client's contract and is intentional.
func (s *Service) AddTokens(ctx context.Context, principal identity.Principal, userID string, tokens int64) error {
	if userID == "" || tokens == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "Missing userId or tokens")
	}
	if err := RequireSelf(principal.UID, userID, "Unauthorized: Can only add tokens for your own account"); err != nil {
		s.logger.WarnContext(ctx, "token credit denied",
			"request_id", requestcontext.RequestID(ctx),
			"uid", principal.UID,
			"target", userID,
		)
		return err
	}

	balance, err := s.users.AddTokens(ctx, userID, tokens)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// The record must exist before it can be credited. Surfaced as a
			// storage-level failure, matching the established API contract.
			return dErrors.Wrap(err, dErrors.CodeStorage, "User not found")
		}
		s.logger.ErrorContext(ctx, "failed to credit tokens",
			"request_id", requestcontext.RequestID(ctx),
			"uid", userID,
			"error", err.Error(),
		)
		return dErrors.Wrap(err, dErrors.CodeStorage, err.Error())
	}

	// Counters reject negative deltas; a debit still commits, it just
	// doesn't move the credit counter.
	if tokens > 0 {
		s.metrics.TokensCredited.Add(float64(tokens))
	}
	s.logger.InfoContext(ctx, "tokens credited",
		"request_id", requestcontext.RequestID(ctx),
		"uid", userID,
		"amount", tokens,
		"balance", balance,
	)
	return nil
}
