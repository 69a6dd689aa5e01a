package memory

import (
	"context"
	"slices"

	"github.com/fastprodman/campushub/internal/models"
	"github.com/fastprodman/campushub/internal/repos/ledger"
)

var _ ledger.Store = ledgerView{}

// ledgerView reads from the store; writes require tx and are only available
// through Atomic.
type ledgerView struct {
	s  *Store
	tx *unit
}

func (v ledgerView) Wallet(_ context.Context, userID string) (models.Wallet, error) {
	if v.tx != nil {
		bal, ok := v.tx.balances[userID]
		if ok {
			return models.Wallet{UserID: userID, BalanceMinor: bal}, nil
		}
	}

	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	bal, ok := v.s.wallets[userID]
	if !ok {
		return models.Wallet{}, ledger.ErrWalletNotFound
	}

	return models.Wallet{UserID: userID, BalanceMinor: bal}, nil
}

func (v ledgerView) History(_ context.Context, userID string) ([]models.WalletTransaction, error) {
	v.s.mu.RLock()

	_, ok := v.s.wallets[userID]
	out := slices.Clone(v.s.txns[userID])

	v.s.mu.RUnlock()

	if !ok {
		return nil, ledger.ErrWalletNotFound
	}

	if v.tx != nil {
		out = append(out, v.tx.entries[userID]...)
	}

	// Stable so entries sharing a timestamp keep reverse append order.
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b models.WalletTransaction) int {
		return b.Date.Compare(a.Date)
	})

	return out, nil
}

func (v ledgerView) Credit(ctx context.Context, userID string, amount int64, description string) (models.WalletTransaction, error) {
	return v.apply(ctx, userID, amount, models.TxCredit, description)
}

func (v ledgerView) Debit(ctx context.Context, userID string, amount int64, description string) (models.WalletTransaction, error) {
	return v.apply(ctx, userID, amount, models.TxDebit, description)
}

func (v ledgerView) apply(ctx context.Context, userID string, amount int64, typ models.TxType, description string) (models.WalletTransaction, error) {
	if v.tx == nil {
		panic("memory ledger: write outside Atomic")
	}

	err := v.tx.owns(userID)
	if err != nil {
		return models.WalletTransaction{}, err
	}

	if amount <= 0 {
		return models.WalletTransaction{}, ledger.ErrInvalidAmount
	}

	w, err := v.Wallet(ctx, userID)
	if err != nil {
		return models.WalletTransaction{}, err
	}

	entry := models.WalletTransaction{
		ID:          v.s.newID(),
		UserID:      userID,
		AmountMinor: amount,
		Type:        typ,
		Description: description,
		Date:        v.s.now(),
	}

	next := w.BalanceMinor + entry.Signed()

	switch {
	case typ == models.TxDebit && next < 0:
		return models.WalletTransaction{}, ledger.ErrInsufficientFunds
	case typ == models.TxCredit && next < w.BalanceMinor:
		// int64 overflow
		return models.WalletTransaction{}, ledger.ErrInvalidAmount
	}

	v.tx.balances[userID] = next
	v.tx.entries[userID] = append(v.tx.entries[userID], entry)

	return entry, nil
}
