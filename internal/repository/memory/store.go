// Package memory is an in-process storage.Store. Row locks are per-account
// channels acquired in ascending id order, mirroring SELECT ... FOR UPDATE;
// writes are staged on the Tx and applied atomically on Commit.
package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/finance-tracker/internal/domain"
	"github.com/josh-kwaku/finance-tracker/internal/storage"
)

var errTxDone = errors.New("memory: transaction has already been committed or rolled back")

type Store struct {
	mu           sync.RWMutex
	users        map[uuid.UUID]domain.User
	accounts     map[uuid.UUID]domain.Account
	transactions []domain.Transaction
	idempotency  map[idempotencyKey]idempotencyEntry

	locksMu sync.Mutex
	locks   map[uuid.UUID]chan struct{}

	autoProvision bool
	now           func() time.Time
}

type Option func(*Store)

// WithAutoProvisionedOwners makes Users().GetByID create an active owner on
// first sight. Used when the service runs without a user database.
func WithAutoProvisionedOwners() Option {
	return func(s *Store) { s.autoProvision = true }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		users:       make(map[uuid.UUID]domain.User),
		accounts:    make(map[uuid.UUID]domain.Account),
		idempotency: make(map[idempotencyKey]idempotencyEntry),
		locks:       make(map[uuid.UUID]chan struct{}),
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ storage.Store = (*Store)(nil)

func (s *Store) Begin(_ context.Context) (storage.Tx, error) {
	return &tx{
		s:      s,
		held:   make(map[uuid.UUID]struct{}),
		staged: make(map[uuid.UUID]domain.Account),
		fresh:  make(map[uuid.UUID]struct{}),
	}, nil
}

func (s *Store) PingContext(_ context.Context) error {
	return nil
}

// AddUser and AddAccount seed committed state directly.
func (s *Store) AddUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *Store) AddAccount(a domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = a
}

func (s *Store) rowLock(id uuid.UUID) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = make(chan struct{}, 1)
		s.locks[id] = l
	}
	return l
}

func (s *Store) committed(id uuid.UUID) (domain.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	return a, ok
}

func (s *Store) committedByOwner(ownerID uuid.UUID) []domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Account
	for _, a := range s.accounts {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out
}

func sortByCreated(accounts []domain.Account) {
	slices.SortFunc(accounts, func(a, b domain.Account) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
}

func lockWaitError(id uuid.UUID, err error) error {
	return fmt.Errorf("lock account %s: %w", id, err)
}
