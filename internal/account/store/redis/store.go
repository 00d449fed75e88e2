// Package redis implements the account stores on top of Redis. Records are
// stored as JSON documents; the balance increment runs inside a WATCH/MULTI
// optimistic transaction so concurrent credits for the same user never lose
// updates.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"account-gateway/internal/account/models"
	"account-gateway/pkg/platform/sentinel"
)

const (
	hashKeyPrefix = "hash:"
	userKeyPrefix = "user:"

	// addTokensRetries bounds the optimistic transaction retry loop; beyond
	// this the store reports contention instead of spinning.
	addTokensRetries = 16
)

type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Save(ctx context.Context, record *models.HashRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal hash record: %w", err)
	}
	if err := s.client.Set(ctx, hashKeyPrefix+record.ID, payload, 0).Err(); err != nil {
		return fmt.Errorf("save hash record: %w", err)
	}
	return nil
}

func (s *Store) Find(ctx context.Context, id string) (*models.HashRecord, error) {
	payload, err := s.client.Get(ctx, hashKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find hash record: %w", err)
	}
	var record models.HashRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("decode hash record: %w", err)
	}
	return &record, nil
}

func (s *Store) Get(ctx context.Context, uid string) (*models.UserRecord, error) {
	payload, err := s.client.Get(ctx, userKeyPrefix+uid).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user record: %w", err)
	}
	var user models.UserRecord
	if err := json.Unmarshal(payload, &user); err != nil {
		return nil, fmt.Errorf("decode user record: %w", err)
	}
	return &user, nil
}

// Put seeds a user record. Used by wiring code and tests.
func (s *Store) Put(ctx context.Context, user *models.UserRecord) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user record: %w", err)
	}
	if err := s.client.Set(ctx, userKeyPrefix+user.UID, payload, 0).Err(); err != nil {
		return fmt.Errorf("put user record: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, uid string) error {
	if err := s.client.Del(ctx, userKeyPrefix+uid).Err(); err != nil {
		return fmt.Errorf("delete user record: %w", err)
	}
	return nil
}

// AddTokens increments the premium balance with an optimistic WATCH
// transaction: the key is watched, the record re-read, and the write
// discarded and retried whenever another client touches the record between
// read and EXEC.
func (s *Store) AddTokens(ctx context.Context, uid string, amount int64) (int64, error) {
	key := userKeyPrefix + uid
	var balance int64

	txn := func(tx *redis.Tx) error {
		payload, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return err
		}
		var user models.UserRecord
		if err := json.Unmarshal(payload, &user); err != nil {
			return err
		}
		if user.Tokens == nil {
			user.Tokens = make(map[string]int64)
		}
		user.Tokens[models.PremiumTokenField] += amount
		balance = user.Tokens[models.PremiumTokenField]

		updated, err := json.Marshal(&user)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}

	for i := 0; i < addTokensRetries; i++ {
		err := s.client.Watch(ctx, txn, key)
		if err == nil {
			return balance, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0, sentinel.ErrNotFound
		}
		return 0, fmt.Errorf("add tokens: %w", err)
	}
	return 0, fmt.Errorf("add tokens: %w", sentinel.ErrUnavailable)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
