// Package postgres implements repos.Store on PostgreSQL.
//
// Atomic opens one transaction per call and takes a transaction-scoped advisory
// lock keyed by the user id before running fn, so concurrent units for the same
// user queue up exactly like the in-memory per-user mutex. Balance changes use a
// guarded UPDATE (balance >= amount) as a second line of defence.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // registers the dialect
	"github.com/jmoiron/sqlx"
	"github.com/oklog/ulid/v2"

	"github.com/fastprodman/campushub/internal/infra/pgutils"
	"github.com/fastprodman/campushub/internal/repos"
	"github.com/fastprodman/campushub/internal/repos/fines"
	"github.com/fastprodman/campushub/internal/repos/ledger"
	"github.com/fastprodman/campushub/internal/repos/orders"
)

const dialectPostgres = "postgres"

const (
	tableWallets      = "wallets"
	tableWalletTxns   = "wallet_transactions"
	tableFines        = "fines"
	tableOrders       = "canteen_orders"
	tableOrderItems   = "canteen_order_items"
	colUserID         = "user_id"
	colID             = "id"
	colCreatedAt      = "created_at"
	colSeq            = "seq"
	colOrderedAt      = "ordered_at"
	colFinedAt        = "fined_at"
	colOrderID        = "order_id"
	colPosition       = "position"
	sqlLockUserInUnit = `SELECT pg_advisory_xact_lock(hashtext($1))`
)

var _ repos.Store = (*Store)(nil)

type Store struct {
	db    *sqlx.DB
	sql   goqu.DialectWrapper
	now   func() time.Time
	newID func() string
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(db *sqlx.DB, opts ...Option) *Store {
	s := &Store{
		db:    db,
		sql:   goqu.Dialect(dialectPostgres),
		now:   time.Now,
		newID: func() string { return ulid.Make().String() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Store) Atomic(ctx context.Context, userID string, fn func(tx repos.Tx) error) error {
	return pgutils.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, sqlLockUserInUnit, userID)
		if err != nil {
			return fmt.Errorf("lock user %s: %w", userID, err)
		}

		return fn(&unit{s: s, q: tx, userID: userID})
	})
}

// OpenWallet creates an empty wallet for userID.
func (s *Store) OpenWallet(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, 0)
	`, userID)
	if err != nil {
		return fmt.Errorf("open wallet %s: %w", userID, err)
	}

	return nil
}

func (s *Store) Ledger() ledger.Reader { return &ledgerRepo{s: s, q: s.db} }
func (s *Store) Orders() orders.Reader { return &ordersRepo{s: s, q: s.db} }
func (s *Store) Fines() fines.Reader   { return &finesRepo{s: s, q: s.db} }

type unit struct {
	s      *Store
	q      *sqlx.Tx
	userID string
}

func (u *unit) Ledger() ledger.Store { return &ledgerRepo{s: u.s, q: u.q, userID: u.userID} }
func (u *unit) Orders() orders.Store { return &ordersRepo{s: u.s, q: u.q, userID: u.userID} }
func (u *unit) Fines() fines.Store   { return &finesRepo{s: u.s, q: u.q, userID: u.userID} }

// owns guards writes: repos built from the pool carry no user and may not write.
func owns(locked, userID string) error {
	if locked == "" {
		panic("postgres store: write outside Atomic")
	}

	if locked != userID {
		return fmt.Errorf("%w: locked %s, got %s", repos.ErrForeignUser, locked, userID)
	}

	return nil
}

type sqlBuilder interface {
	ToSQL() (string, []any, error)
}

func build(ds sqlBuilder) (string, []any, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("build query: %w", err)
	}

	return query, args, nil
}
