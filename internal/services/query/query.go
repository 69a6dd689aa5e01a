// Package query joins catalog reference data with ledger state for display.
// Every call reads the latest committed state; nothing is cached.
package query

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/fastprodman/campushub/internal/models"
	"github.com/fastprodman/campushub/internal/repos"
	"github.com/fastprodman/campushub/internal/repos/catalog"
)

const (
	pickupQRBase = "https://api.qrserver.com/v1/create-qr-code/"
	pickupQRSize = "150x150"
)

type IssuedBook struct {
	Book        models.Book
	Transaction models.LibraryTransaction
}

type Option func(*Facade)

func WithClock(now func() time.Time) Option {
	return func(f *Facade) { f.now = now }
}

type Facade struct {
	catalog catalog.Catalog
	store   repos.Store
	now     func() time.Time
}

func New(cat catalog.Catalog, store repos.Store, opts ...Option) *Facade {
	f := &Facade{
		catalog: cat,
		store:   store,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// IssuedBooksWithDetails returns the user's unreturned loans joined to their books.
// Loans pointing at a book missing from the catalog are left out.
func (f *Facade) IssuedBooksWithDetails(ctx context.Context, userID string) ([]IssuedBook, error) {
	loans, err := f.catalog.OpenLoans(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("open loans: %w", err)
	}

	out := make([]IssuedBook, 0, len(loans))

	for _, lt := range loans {
		b, err := f.catalog.Book(ctx, lt.BookID)
		if errors.Is(err, catalog.ErrBookNotFound) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("book %s: %w", lt.BookID, err)
		}

		out = append(out, IssuedBook{Book: b, Transaction: lt})
	}

	return out, nil
}

func (f *Facade) OrdersForUser(ctx context.Context, userID string) ([]models.CanteenOrder, error) {
	list, err := f.store.Orders().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("orders for user: %w", err)
	}

	return list, nil
}

func (f *Facade) FinesForUser(ctx context.Context, userID string) ([]models.Fine, error) {
	list, err := f.store.Fines().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fines for user: %w", err)
	}

	return list, nil
}

func (f *Facade) Profile(ctx context.Context, userID string) (models.User, error) {
	u, err := f.catalog.User(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("profile: %w", err)
	}

	return u, nil
}

func (f *Facade) SearchBooks(ctx context.Context, q string) ([]models.Book, error) {
	books, err := f.catalog.SearchBooks(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}

	return books, nil
}

func (f *Facade) Menu(ctx context.Context) ([]models.CanteenItem, error) {
	menu, err := f.catalog.Menu(ctx)
	if err != nil {
		return nil, fmt.Errorf("menu: %w", err)
	}

	return menu, nil
}

func (f *Facade) AcademicResources(ctx context.Context) ([]models.AcademicResource, error) {
	res, err := f.catalog.AcademicResources(ctx)
	if err != nil {
		return nil, fmt.Errorf("academic resources: %w", err)
	}

	return res, nil
}

// PickupCodeURL returns a QR image URL encoding the order's pickup token.
func PickupCodeURL(order models.CanteenOrder) string {
	v := url.Values{}
	v.Set("size", pickupQRSize)
	v.Set("data", strconv.Itoa(order.Token))

	return pickupQRBase + "?" + v.Encode()
}

func unpaid(list []models.Fine) []models.Fine {
	return slices.DeleteFunc(slices.Clone(list), func(f models.Fine) bool { return f.IsPaid })
}

func sumFines(list []models.Fine) int64 {
	var total int64
	for _, f := range list {
		total += f.AmountMinor
	}

	return total
}
