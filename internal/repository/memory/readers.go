package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/finance-tracker/internal/domain"
	"github.com/josh-kwaku/finance-tracker/internal/repository"
)

// Accounts reads committed account state without taking row locks.
type Accounts struct{ s *Store }

func (s *Store) Accounts() *Accounts { return &Accounts{s: s} }

func (r *Accounts) GetByID(_ context.Context, ownerID, id uuid.UUID) (*domain.Account, error) {
	a, ok := r.s.committed(id)
	if !ok || a.OwnerID != ownerID {
		return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
	}
	return &a, nil
}

func (r *Accounts) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]domain.Account, error) {
	out := r.s.committedByOwner(ownerID)
	sortByCreated(out)
	return out, nil
}

type Transactions struct{ s *Store }

func (s *Store) Transactions() *Transactions { return &Transactions{s: s} }

// ListByOwner pages through the owner's log newest first.
func (r *Transactions) ListByOwner(_ context.Context, ownerID uuid.UUID, limit, offset int) ([]domain.Transaction, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var mine []domain.Transaction
	for i := len(r.s.transactions) - 1; i >= 0; i-- {
		if t := r.s.transactions[i]; t.OwnerID == ownerID {
			mine = append(mine, t)
		}
	}

	total := len(mine)
	if offset >= total {
		return nil, total, nil
	}
	end := min(offset+limit, total)
	return mine[offset:end], total, nil
}

type Users struct{ s *Store }

func (s *Store) Users() *Users { return &Users{s: s} }

func (r *Users) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		if !r.s.autoProvision {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		u = domain.User{ID: id, Status: domain.UserStatusActive, CreatedAt: r.s.now()}
		r.s.users[id] = u
	}
	return &u, nil
}

type idempotencyKey struct {
	key     string
	ownerID uuid.UUID
}

type idempotencyEntry = repository.IdempotencyCacheEntry

// IdempotencyCache keeps replayable responses in memory.
type IdempotencyCache struct{ s *Store }

func (s *Store) Idempotency() *IdempotencyCache { return &IdempotencyCache{s: s} }

func (c *IdempotencyCache) Get(_ context.Context, key string, ownerID uuid.UUID) (*repository.IdempotencyCacheEntry, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	e, ok := c.s.idempotency[idempotencyKey{key, ownerID}]
	if !ok || !e.ExpiresAt.After(c.s.now()) {
		return nil, nil
	}
	return &e, nil
}

func (c *IdempotencyCache) Set(_ context.Context, entry *repository.IdempotencyCacheEntry) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	k := idempotencyKey{entry.Key, entry.OwnerID}
	if e, exists := c.s.idempotency[k]; exists && e.ExpiresAt.After(c.s.now()) {
		return nil
	}
	c.s.idempotency[k] = *entry
	return nil
}

func (c *IdempotencyCache) CleanExpired(_ context.Context) (int64, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	var n int64
	now := c.s.now()
	for k, e := range c.s.idempotency {
		if e.ExpiresAt.Before(now) {
			delete(c.s.idempotency, k)
			n++
		}
	}
	return n, nil
}
