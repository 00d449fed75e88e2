// Package store defines the persistence contracts for account records.
// Stores are interface-driven so the service logic stays testable and the
// backing document store (memory, Redis, Postgres) can be swapped without
// rewiring business code.
package store

import (
	"context"

	"account-gateway/internal/account/models"
)

// HashStore owns the pseudonymized snapshot collection. Save has overwrite
// semantics: writing the same key twice keeps only the latest record.
type HashStore interface {
	Save(ctx context.Context, record *models.HashRecord) error
	Find(ctx context.Context, id string) (*models.HashRecord, error)
}

// UserStore owns the live account collection.
//
// AddTokens performs the balance increment as a single atomic
// read-modify-write against the record: it aborts with sentinel.ErrNotFound
// when the record does not exist and never loses concurrent updates.
// Delete is idempotent; removing an absent record is not an error.
type UserStore interface {
	Get(ctx context.Context, uid string) (*models.UserRecord, error)
	Delete(ctx context.Context, uid string) error
	AddTokens(ctx context.Context, uid string, amount int64) (int64, error)
}

// Pinger reports backend reachability for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}
