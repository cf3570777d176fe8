package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// BalanceLoader lê o saldo espelhado na base (users.balance)
type BalanceLoader interface {
	Balance(ctx context.Context, userID string) (int64, error)
}

// Store persiste snapshots em Redis (session:{userID}) e serializa a
// escrita por usuário dentro do processo.
type Store struct {
	rdb    *redis.Client
	loader BalanceLoader
	ttl    time.Duration

	mu    sync.Mutex
	locks map[string]*userLock
}

// userLock é removido do mapa quando ninguém mais o referencia
type userLock struct {
	sync.Mutex
	refs int
}

func NewStore(rdb *redis.Client, loader BalanceLoader, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{rdb: rdb, loader: loader, ttl: ttl, locks: map[string]*userLock{}}
}

func key(userID string) string { return "session:" + userID }

// Get devolve a sessão do usuário; ausente ou com saldo desatualizado,
// o saldo é recarregado da base.
func (s *Store) Get(ctx context.Context, userID string) (*Session, error) {
	raw, err := s.rdb.Get(ctx, key(userID)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		bal, err := s.loader.Balance(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load balance: %w", err)
		}
		sess := New(userID, bal)
		return sess, s.Save(ctx, sess)
	case err != nil:
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	sess := FromSnapshot(snap)
	if snap.Stale {
		bal, err := s.loader.Balance(ctx, userID)
		if err != nil {
			return sess, fmt.Errorf("reload balance: %w", err)
		}
		sess.Refresh(bal)
		if err := s.Save(ctx, sess); err != nil {
			return sess, err
		}
	}
	return sess, nil
}

func (s *Store) Save(ctx context.Context, sess *Session) error {
	snap := sess.Snapshot()
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key(snap.UserID), b, s.ttl).Err()
}

// Update executa fn sobre a sessão do usuário e grava o resultado.
// Chamadas concorrentes para o mesmo usuário são serializadas.
func (s *Store) Update(ctx context.Context, userID string, fn func(*Session)) (*Session, error) {
	s.acquire(userID)
	defer s.release(userID)

	sess, err := s.Get(ctx, userID)
	if err != nil && sess == nil {
		return nil, err
	}
	fn(sess)
	return sess, s.Save(ctx, sess)
}

func (s *Store) acquire(userID string) {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &userLock{}
		s.locks[userID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()
}

func (s *Store) release(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.locks[userID]
	l.Unlock()
	if l.refs--; l.refs == 0 {
		delete(s.locks, userID)
	}
}
