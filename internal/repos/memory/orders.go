package memory

import (
	"context"
	"slices"

	"github.com/fastprodman/campushub/internal/models"
	"github.com/fastprodman/campushub/internal/repos/orders"
)

var _ orders.Store = ordersView{}

type ordersView struct {
	s  *Store
	tx *unit
}

func (v ordersView) Get(_ context.Context, orderID string) (models.CanteenOrder, error) {
	if v.tx != nil {
		o, ok := v.tx.orders[orderID]
		if ok {
			return cloneOrder(o), nil
		}
	}

	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	o, ok := v.s.orders[orderID]
	if !ok {
		return models.CanteenOrder{}, orders.ErrOrderNotFound
	}

	return cloneOrder(o), nil
}

func (v ordersView) ListByUser(_ context.Context, userID string) ([]models.CanteenOrder, error) {
	return v.collect(func(o models.CanteenOrder) bool { return o.UserID == userID }), nil
}

func (v ordersView) List(_ context.Context) ([]models.CanteenOrder, error) {
	return v.collect(func(models.CanteenOrder) bool { return true }), nil
}

// collect merges committed orders with the unit's staged ones, staged winning.
func (v ordersView) collect(keep func(models.CanteenOrder) bool) []models.CanteenOrder {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	out := make([]models.CanteenOrder, 0)
	for id, o := range v.s.orders {
		if v.tx != nil {
			_, staged := v.tx.orders[id]
			if staged {
				continue
			}
		}

		if keep(o) {
			out = append(out, cloneOrder(o))
		}
	}

	if v.tx != nil {
		for _, o := range v.tx.orders {
			if keep(o) {
				out = append(out, cloneOrder(o))
			}
		}
	}

	sortOrdersNewestFirst(out)

	return out
}

func (v ordersView) Insert(ctx context.Context, order models.CanteenOrder) error {
	if v.tx == nil {
		panic("memory orders: write outside Atomic")
	}

	err := v.tx.owns(order.UserID)
	if err != nil {
		return err
	}

	_, err = v.Get(ctx, order.ID)
	if err == nil {
		return orders.ErrDuplicateOrder
	}

	v.tx.orders[order.ID] = cloneOrder(order)

	return nil
}

func (v ordersView) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	if v.tx == nil {
		panic("memory orders: write outside Atomic")
	}

	o, err := v.Get(ctx, orderID)
	if err != nil {
		return err
	}

	err = v.tx.owns(o.UserID)
	if err != nil {
		return err
	}

	o.Status = status
	v.tx.orders[orderID] = o

	return nil
}

// sortOrdersNewestFirst orders by OrderDate descending, breaking ties by id so
// the result does not depend on map iteration order.
func sortOrdersNewestFirst(list []models.CanteenOrder) {
	slices.SortFunc(list, func(a, b models.CanteenOrder) int {
		c := b.OrderDate.Compare(a.OrderDate)
		if c != 0 {
			return c
		}

		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
}
