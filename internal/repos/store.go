// Package repos defines the unit of work shared by the ledger, order and fine stores.
package repos

import (
	"context"
	"errors"

	"github.com/fastprodman/campushub/internal/repos/fines"
	"github.com/fastprodman/campushub/internal/repos/ledger"
	"github.com/fastprodman/campushub/internal/repos/orders"
)

// ErrForeignUser is returned when a write inside Atomic targets a user other
// than the one the unit was opened for.
var ErrForeignUser = errors.New("write outside locked user")

// Tx exposes the stores inside one atomic unit.
type Tx interface {
	Ledger() ledger.Store
	Orders() orders.Store
	Fines() fines.Store
}

type Store interface {
	// Atomic serializes all work for userID and commits every write made
	// through tx together. If fn returns an error nothing is kept.
	Atomic(ctx context.Context, userID string, fn func(tx Tx) error) error

	Ledger() ledger.Reader
	Orders() orders.Reader
	Fines() fines.Reader
}
