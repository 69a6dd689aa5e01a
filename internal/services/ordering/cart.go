package ordering

import (
	"slices"

	"github.com/fastprodman/campushub/internal/models"
)

// Cart is an unsaved selection of menu items. The zero value is an empty cart.
// At most one line exists per item id and every quantity is at least 1.
type Cart struct {
	lines []models.OrderItem
}

// Lines returns a copy of the cart lines in insertion order.
func (c Cart) Lines() []models.OrderItem {
	return slices.Clone(c.lines)
}

func (c Cart) Len() int {
	return len(c.lines)
}

// Total is the cart value at the prices snapshotted in its lines.
func (c Cart) Total() int64 {
	var total int64
	for _, l := range c.lines {
		total += l.Subtotal()
	}

	return total
}

// AddToCart returns a cart with one more unit of item.
func AddToCart(c Cart, item models.CanteenItem) Cart {
	lines := slices.Clone(c.lines)

	i := slices.IndexFunc(lines, func(l models.OrderItem) bool { return l.Item.ID == item.ID })
	if i >= 0 {
		lines[i].Quantity++
		return Cart{lines: lines}
	}

	return Cart{lines: append(lines, models.OrderItem{Item: item, Quantity: 1})}
}

// UpdateQuantity returns a cart with itemID's quantity changed by delta.
// Lines that drop to zero or below are removed; unknown ids leave the cart as is.
func UpdateQuantity(c Cart, itemID string, delta int) Cart {
	i := slices.IndexFunc(c.lines, func(l models.OrderItem) bool { return l.Item.ID == itemID })
	if i < 0 {
		return c
	}

	lines := slices.Clone(c.lines)

	q := lines[i].Quantity + delta
	if q <= 0 {
		return Cart{lines: slices.Delete(lines, i, i+1)}
	}

	lines[i].Quantity = q

	return Cart{lines: lines}
}
