// Package memory provides mutex-guarded in-memory implementations of the
// account stores. It is the default backend for local development and the
// store used by service and handler tests.
package memory

import (
	"context"
	"sync"

	"account-gateway/internal/account/models"
	"account-gateway/pkg/platform/sentinel"
)

type Store struct {
	mu    sync.RWMutex
	hash  map[string]models.HashRecord
	users map[string]models.UserRecord
}

func New() *Store {
	return &Store{
		hash:  make(map[string]models.HashRecord),
		users: make(map[string]models.UserRecord),
	}
}

func (s *Store) Save(_ context.Context, record *models.HashRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hash[record.ID] = *record
	return nil
}

func (s *Store) Find(_ context.Context, id string) (*models.HashRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.hash[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &record, nil
}

func (s *Store) Get(_ context.Context, uid string) (*models.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[uid]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := user
	copied.Tokens = cloneTokens(user.Tokens)
	return &copied, nil
}

// Put seeds a user record. Used by wiring code and tests; the service itself
// never creates users.
func (s *Store) Put(_ context.Context, user *models.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *user
	copied.Tokens = cloneTokens(user.Tokens)
	s.users[user.UID] = copied
	return nil
}

func (s *Store) Delete(_ context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, uid)
	return nil
}

// AddTokens serializes the read-modify-write under the store's write lock,
// matching the serializable single-document transaction the external
// document store provides.
func (s *Store) AddTokens(_ context.Context, uid string, amount int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[uid]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	if user.Tokens == nil {
		user.Tokens = make(map[string]int64)
	}
	user.Tokens[models.PremiumTokenField] += amount
	s.users[uid] = user
	return user.Tokens[models.PremiumTokenField], nil
}

func (s *Store) Ping(context.Context) error { return nil }

func cloneTokens(tokens map[string]int64) map[string]int64 {
	if tokens == nil {
		return nil
	}
	copied := make(map[string]int64, len(tokens))
	for k, v := range tokens {
		copied[k] = v
	}
	return copied
}
