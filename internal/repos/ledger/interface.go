package ledger

import (
	"context"
	"errors"

	"github.com/fastprodman/campushub/internal/models"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrInvalidAmount     = errors.New("amount must be positive")
)

type Reader interface {
	Wallet(ctx context.Context, userID string) (models.Wallet, error)
	// History returns the user's entries, most recent first.
	History(ctx context.Context, userID string) ([]models.WalletTransaction, error)
}

// Writer is the only way to change a wallet. Each call checks the balance and
// appends the ledger entry as one step; on error nothing is changed.
type Writer interface {
	Credit(ctx context.Context, userID string, amount int64, description string) (models.WalletTransaction, error)
	Debit(ctx context.Context, userID string, amount int64, description string) (models.WalletTransaction, error)
}

type Store interface {
	Reader
	Writer
}
