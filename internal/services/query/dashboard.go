package query

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/fastprodman/campushub/internal/models"
	"github.com/fastprodman/campushub/internal/repos/ledger"
)

// Dashboard is the landing view of one user.
type Dashboard struct {
	Profile models.User

	// Wallet is nil for users without one (admins).
	Wallet *models.Wallet

	IssuedBooks  []IssuedBook
	OverdueBooks []IssuedBook

	// ActiveOrders are orders the kitchen is working on or that wait for pickup.
	ActiveOrders       []models.CanteenOrder
	UnpaidFines        []models.Fine
	UnpaidFinesMinor   int64
	RecentTransactions []models.WalletTransaction
}

const recentTransactions = 5

func (f *Facade) Dashboard(ctx context.Context, userID string) (Dashboard, error) {
	profile, err := f.Profile(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}

	var (
		wallet  *models.Wallet
		history []models.WalletTransaction
		issued  []IssuedBook
		list    []models.CanteenOrder
		fines   []models.Fine
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		w, err := f.store.Ledger().Wallet(gctx, userID)
		if errors.Is(err, ledger.ErrWalletNotFound) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("wallet: %w", err)
		}

		h, err := f.store.Ledger().History(gctx, userID)
		if err != nil {
			return fmt.Errorf("history: %w", err)
		}

		wallet = &w
		history = h[:min(len(h), recentTransactions)]

		return nil
	})

	g.Go(func() error {
		var err error

		issued, err = f.IssuedBooksWithDetails(gctx, userID)

		return err
	})

	g.Go(func() error {
		var err error

		list, err = f.OrdersForUser(gctx, userID)

		return err
	})

	g.Go(func() error {
		var err error

		fines, err = f.FinesForUser(gctx, userID)

		return err
	})

	err = g.Wait()
	if err != nil {
		return Dashboard{}, fmt.Errorf("dashboard %s: %w", userID, err)
	}

	now := f.now()

	d := Dashboard{
		Profile:            profile,
		Wallet:             wallet,
		IssuedBooks:        issued,
		OverdueBooks:       make([]IssuedBook, 0),
		ActiveOrders:       make([]models.CanteenOrder, 0),
		UnpaidFines:        unpaid(fines),
		RecentTransactions: history,
	}

	for _, ib := range issued {
		if ib.Transaction.DueDate.Before(now) {
			d.OverdueBooks = append(d.OverdueBooks, ib)
		}
	}

	for _, o := range list {
		if o.Status == models.OrderPreparing || o.Status == models.OrderReady {
			d.ActiveOrders = append(d.ActiveOrders, o)
		}
	}

	d.UnpaidFinesMinor = sumFines(d.UnpaidFines)

	return d, nil
}
