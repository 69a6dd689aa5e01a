package query

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fastprodman/campushub/internal/models"
)

type AdminStats struct {
	TotalStudents int

	// OpenIssues counts unreturned library loans across all users.
	OpenIssues int

	// CanteenRevenueMinor sums the totals of every order that was not cancelled.
	CanteenRevenueMinor   int64
	OutstandingFinesMinor int64
}

// CategorySales is canteen revenue for one menu category.
type CategorySales struct {
	Category     string
	RevenueMinor int64
}

// DayActivity counts books issued on one day.
type DayActivity struct {
	Day    time.Time
	Issued int
}

const activityWindowDays = 7

func (f *Facade) AdminStats(ctx context.Context) (AdminStats, error) {
	var (
		users []models.User
		loans []models.LibraryTransaction
		list  []models.CanteenOrder
		fines []models.Fine
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		users, err = f.catalog.Users(gctx)

		return err
	})

	g.Go(func() error {
		var err error

		loans, err = f.catalog.OpenLoans(gctx, "")

		return err
	})

	g.Go(func() error {
		var err error

		list, err = f.store.Orders().List(gctx)

		return err
	})

	g.Go(func() error {
		var err error

		fines, err = f.store.Fines().List(gctx)

		return err
	})

	err := g.Wait()
	if err != nil {
		return AdminStats{}, fmt.Errorf("admin stats: %w", err)
	}

	stats := AdminStats{
		OpenIssues:            len(loans),
		OutstandingFinesMinor: sumFines(unpaid(fines)),
	}

	for _, u := range users {
		if u.Role == models.RoleStudent {
			stats.TotalStudents++
		}
	}

	for _, o := range list {
		if o.Status != models.OrderCancelled {
			stats.CanteenRevenueMinor += o.TotalMinor
		}
	}

	return stats, nil
}

// CanteenSalesByCategory splits non-cancelled order revenue by menu category,
// largest first.
func (f *Facade) CanteenSalesByCategory(ctx context.Context) ([]CategorySales, error) {
	list, err := f.store.Orders().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("canteen sales: %w", err)
	}

	byCategory := make(map[string]int64)

	for _, o := range list {
		if o.Status == models.OrderCancelled {
			continue
		}

		for _, line := range o.Items {
			byCategory[line.Item.Category] += line.Subtotal()
		}
	}

	out := make([]CategorySales, 0, len(byCategory))
	for c, rev := range byCategory {
		out = append(out, CategorySales{Category: c, RevenueMinor: rev})
	}

	slices.SortFunc(out, func(a, b CategorySales) int {
		c := cmp.Compare(b.RevenueMinor, a.RevenueMinor)
		if c != 0 {
			return c
		}

		return cmp.Compare(a.Category, b.Category)
	})

	return out, nil
}

// LibraryActivity counts loans issued on each of the last seven days, oldest first.
func (f *Facade) LibraryActivity(ctx context.Context) ([]DayActivity, error) {
	loans, err := f.catalog.Loans(ctx)
	if err != nil {
		return nil, fmt.Errorf("library activity: %w", err)
	}

	today := f.now().UTC().Truncate(24 * time.Hour)
	first := today.AddDate(0, 0, -(activityWindowDays - 1))

	out := make([]DayActivity, activityWindowDays)
	for i := range out {
		out[i].Day = first.AddDate(0, 0, i)
	}

	for _, lt := range loans {
		day := lt.IssueDate.UTC().Truncate(24 * time.Hour)
		if day.Before(first) || day.After(today) {
			continue
		}

		out[int(day.Sub(first)/(24*time.Hour))].Issued++
	}

	return out, nil
}
