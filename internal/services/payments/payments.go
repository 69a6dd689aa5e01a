// Package payments settles library fines and tops up wallets.
package payments

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fastprodman/campushub/internal/infra/logging"
	"github.com/fastprodman/campushub/internal/models"
	"github.com/fastprodman/campushub/internal/repos"
	"github.com/fastprodman/campushub/internal/repos/fines"
	"github.com/fastprodman/campushub/internal/repos/ledger"
)

const topUpDescription = "Wallet Top-Up"

type Service struct {
	store repos.Store
	log   *slog.Logger
}

func New(store repos.Store) *Service {
	return &Service{
		store: store,
		log:   logging.Component("payments"),
	}
}

// PayFine debits the fine amount and marks the fine paid in one atomic step.
// A fine that belongs to another user is reported as not found.
func (s *Service) PayFine(ctx context.Context, userID, fineID string) (models.Fine, error) {
	var paid models.Fine

	err := s.store.Atomic(ctx, userID, func(tx repos.Tx) error {
		fine, err := tx.Fines().Get(ctx, fineID)
		if err != nil {
			return fmt.Errorf("get fine: %w", err)
		}

		if fine.UserID != userID {
			return fmt.Errorf("get fine: %w", fines.ErrFineNotFound)
		}

		if fine.IsPaid {
			return fines.ErrFineAlreadyPaid
		}

		_, err = tx.Ledger().Debit(ctx, userID, fine.AmountMinor, "Payment for fine: "+fine.Reason)
		if err != nil {
			return fmt.Errorf("debit wallet: %w", err)
		}

		err = tx.Fines().MarkPaid(ctx, fineID)
		if err != nil {
			return fmt.Errorf("mark paid: %w", err)
		}

		fine.IsPaid = true
		paid = fine

		return nil
	})
	if err != nil {
		return models.Fine{}, fmt.Errorf("pay fine %s: %w", fineID, err)
	}

	s.log.Info("fine paid", "fine_id", fineID, "user_id", userID, "amount_minor", paid.AmountMinor)

	return paid, nil
}

// TopUp credits amount to the user's wallet and returns the new wallet state.
func (s *Service) TopUp(ctx context.Context, userID string, amount int64) (models.Wallet, error) {
	if amount <= 0 {
		return models.Wallet{}, ledger.ErrInvalidAmount
	}

	var w models.Wallet

	err := s.store.Atomic(ctx, userID, func(tx repos.Tx) error {
		_, err := tx.Ledger().Credit(ctx, userID, amount, topUpDescription)
		if err != nil {
			return fmt.Errorf("credit wallet: %w", err)
		}

		w, err = tx.Ledger().Wallet(ctx, userID)
		if err != nil {
			return fmt.Errorf("read wallet: %w", err)
		}

		return nil
	})
	if err != nil {
		return models.Wallet{}, fmt.Errorf("top up: %w", err)
	}

	s.log.Info("wallet topped up", "user_id", userID, "amount_minor", amount, "balance_minor", w.BalanceMinor)

	return w, nil
}

// TransactionHistory returns the user's ledger, most recent first.
func (s *Service) TransactionHistory(ctx context.Context, userID string) ([]models.WalletTransaction, error) {
	hist, err := s.store.Ledger().History(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("transaction history: %w", err)
	}

	return hist, nil
}

func (s *Service) Wallet(ctx context.Context, userID string) (models.Wallet, error) {
	w, err := s.store.Ledger().Wallet(ctx, userID)
	if err != nil {
		return models.Wallet{}, fmt.Errorf("get wallet: %w", err)
	}

	return w, nil
}
