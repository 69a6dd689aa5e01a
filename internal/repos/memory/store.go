// Package memory is the default, process-local implementation of repos.Store.
//
// Each user has its own mutex, held for the whole of an Atomic call, so every
// check-then-act sequence on a wallet is serialized. Writes made inside Atomic
// are staged in the unit and only become visible to other readers when the
// unit commits. A failed unit is discarded and the store never changes.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/fastprodman/campushub/internal/models"
	"github.com/fastprodman/campushub/internal/repos"
	"github.com/fastprodman/campushub/internal/repos/fines"
	"github.com/fastprodman/campushub/internal/repos/ledger"
	"github.com/fastprodman/campushub/internal/repos/orders"
	"github.com/fastprodman/campushub/internal/repos/seed"
)

var _ repos.Store = (*Store)(nil)

type Store struct {
	// mu guards the maps below. Per-user serialization is done by userLocks.
	mu      sync.RWMutex
	wallets map[string]int64
	txns    map[string][]models.WalletTransaction
	orders  map[string]models.CanteenOrder
	fines   map[string]models.Fine

	locksMu   sync.Mutex
	userLocks map[string]*sync.Mutex

	now   func() time.Time
	newID func() string
}

type Option func(*Store)

// WithClock overrides the time source used to stamp ledger entries.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		wallets:   make(map[string]int64),
		txns:      make(map[string][]models.WalletTransaction),
		orders:    make(map[string]models.CanteenOrder),
		fines:     make(map[string]models.Fine),
		userLocks: make(map[string]*sync.Mutex),
		now:       time.Now,
		newID:     func() string { return ulid.Make().String() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// NewSeeded returns a store loaded with data. It panics if data is inconsistent,
// since the fixtures are part of the program.
func NewSeeded(data seed.Data, opts ...Option) *Store {
	s := New(opts...)

	err := s.Seed(data)
	if err != nil {
		panic(fmt.Sprintf("seed memory store: %v", err))
	}

	return s
}

// Seed opens the wallets, replays the historical ledger and loads orders and fines.
func (s *Store) Seed(data seed.Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, userID := range data.Wallets {
		_, ok := s.wallets[userID]
		if ok {
			return fmt.Errorf("wallet %s: already open", userID)
		}

		s.wallets[userID] = 0
	}

	for _, e := range data.Ledger {
		bal, ok := s.wallets[e.UserID]
		if !ok {
			return fmt.Errorf("ledger entry for %s: %w", e.UserID, ledger.ErrWalletNotFound)
		}

		entry := models.WalletTransaction{
			ID:          s.newID(),
			UserID:      e.UserID,
			AmountMinor: e.AmountMinor,
			Type:        e.Type,
			Description: e.Description,
			Date:        e.Date,
		}

		bal += entry.Signed()
		if bal < 0 {
			return fmt.Errorf("ledger entry for %s: %w", e.UserID, ledger.ErrInsufficientFunds)
		}

		s.wallets[e.UserID] = bal
		s.txns[e.UserID] = append(s.txns[e.UserID], entry)
	}

	for _, o := range data.Orders {
		s.orders[o.ID] = cloneOrder(o)
	}

	for _, f := range data.Fines {
		s.fines[f.ID] = f
	}

	return nil
}

// OpenWallet creates an empty wallet for userID.
func (s *Store) OpenWallet(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.wallets[userID]
	if ok {
		return fmt.Errorf("open wallet %s: already exists", userID)
	}

	s.wallets[userID] = 0

	return nil
}

func (s *Store) userLock(userID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l, ok := s.userLocks[userID]
	if !ok {
		l = new(sync.Mutex)
		s.userLocks[userID] = l
	}

	return l
}

func (s *Store) Atomic(ctx context.Context, userID string, fn func(tx repos.Tx) error) error {
	err := ctx.Err()
	if err != nil {
		return fmt.Errorf("atomic: %w", err)
	}

	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	tx := newUnit(s, userID)

	err = fn(tx)
	if err != nil {
		return err
	}

	tx.commit()

	return nil
}

func (s *Store) Ledger() ledger.Reader { return ledgerView{s: s} }
func (s *Store) Orders() orders.Reader { return ordersView{s: s} }
func (s *Store) Fines() fines.Reader   { return finesView{s: s} }

// unit is the repos.Tx handed to Atomic callbacks. It stages writes on top of
// the committed maps; reads through the unit see its own staged writes.
// A unit is used by a single goroutine.
type unit struct {
	store  *Store
	userID string

	balances map[string]int64
	entries  map[string][]models.WalletTransaction
	orders   map[string]models.CanteenOrder
	fines    map[string]models.Fine
}

func newUnit(s *Store, userID string) *unit {
	return &unit{
		store:    s,
		userID:   userID,
		balances: make(map[string]int64),
		entries:  make(map[string][]models.WalletTransaction),
		orders:   make(map[string]models.CanteenOrder),
		fines:    make(map[string]models.Fine),
	}
}

func (u *unit) Ledger() ledger.Store { return ledgerView{s: u.store, tx: u} }
func (u *unit) Orders() orders.Store { return ordersView{s: u.store, tx: u} }
func (u *unit) Fines() fines.Store   { return finesView{s: u.store, tx: u} }

// commit publishes every staged write at once.
func (u *unit) commit() {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	maps.Copy(u.store.wallets, u.balances)

	for userID, list := range u.entries {
		u.store.txns[userID] = append(u.store.txns[userID], list...)
	}

	maps.Copy(u.store.orders, u.orders)
	maps.Copy(u.store.fines, u.fines)
}

func (u *unit) owns(userID string) error {
	if userID != u.userID {
		return fmt.Errorf("%w: locked %s, got %s", repos.ErrForeignUser, u.userID, userID)
	}

	return nil
}

func cloneOrder(o models.CanteenOrder) models.CanteenOrder {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return o
}
