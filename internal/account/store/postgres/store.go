// Package postgres implements the account stores on PostgreSQL. User token
// maps live in a jsonb column; the balance increment runs inside a
// transaction with a row lock so concurrent credits serialize without lost
// updates.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"account-gateway/internal/account/models"
	"account-gateway/pkg/platform/sentinel"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// RunMigrations applies the embedded goose migrations through the stdlib
// driver; the pool itself stays on native pgx.
func RunMigrations(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (s *Store) Save(ctx context.Context, record *models.HashRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO hash_records (id, tokens, email, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET tokens = EXCLUDED.tokens,
		    email = EXCLUDED.email,
		    created_at = EXCLUDED.created_at`,
		record.ID, record.Tokens, record.Email, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("save hash record: %w", err)
	}
	return nil
}

func (s *Store) Find(ctx context.Context, id string) (*models.HashRecord, error) {
	var record models.HashRecord
	err := s.pool.QueryRow(ctx, `
		SELECT id, tokens, email, created_at
		FROM hash_records
		WHERE id = $1`, id).
		Scan(&record.ID, &record.Tokens, &record.Email, &record.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find hash record: %w", err)
	}
	return &record, nil
}

func (s *Store) Get(ctx context.Context, uid string) (*models.UserRecord, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `SELECT tokens FROM users WHERE uid = $1`, uid).
		Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user record: %w", err)
	}
	user := models.UserRecord{UID: uid}
	if err := json.Unmarshal(payload, &user.Tokens); err != nil {
		return nil, fmt.Errorf("decode user tokens: %w", err)
	}
	return &user, nil
}

// Put seeds a user record. Used by wiring code and tests.
func (s *Store) Put(ctx context.Context, user *models.UserRecord) error {
	tokens := user.Tokens
	if tokens == nil {
		tokens = map[string]int64{}
	}
	payload, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("marshal user tokens: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO users (uid, tokens)
		VALUES ($1, $2)
		ON CONFLICT (uid) DO UPDATE SET tokens = EXCLUDED.tokens`,
		user.UID, payload)
	if err != nil {
		return fmt.Errorf("put user record: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, uid string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM users WHERE uid = $1`, uid); err != nil {
		return fmt.Errorf("delete user record: %w", err)
	}
	return nil
}

// AddTokens locks the row, reads the current balance, and writes back the
// sum inside one transaction. A missing row aborts with sentinel.ErrNotFound
// and no write.
func (s *Store) AddTokens(ctx context.Context, uid string, amount int64) (int64, error) {
	var balance int64
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var current int64
		err := tx.QueryRow(ctx, `
			SELECT COALESCE((tokens->>$2)::bigint, 0)
			FROM users
			WHERE uid = $1
			FOR UPDATE`, uid, models.PremiumTokenField).
			Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return err
		}

		balance = current + amount
		_, err = tx.Exec(ctx, `
			UPDATE users
			SET tokens = jsonb_set(tokens, ARRAY[$2::text], to_jsonb($3::bigint))
			WHERE uid = $1`, uid, models.PremiumTokenField, balance)
		return err
	})
	if errors.Is(err, sentinel.ErrNotFound) {
		return 0, sentinel.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("add tokens: %w", err)
	}
	return balance, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
