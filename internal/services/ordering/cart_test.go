package ordering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastprodman/campushub/internal/models"
)

var (
	burger = models.CanteenItem{ID: "c1", Name: "Veggie Burger", PriceMinor: 599}
	coffee = models.CanteenItem{ID: "c3", Name: "Iced Coffee", PriceMinor: 300}
)

func TestAddToCart(t *testing.T) {
	t.Parallel()

	var empty Cart

	one := AddToCart(empty, burger)
	two := AddToCart(one, burger)
	mixed := AddToCart(two, coffee)

	assert.Equal(t, 0, empty.Len(), "input cart must not change")
	assert.Equal(t, 1, one.Lines()[0].Quantity, "input cart must not change")

	require.Equal(t, 1, two.Len())
	assert.Equal(t, 2, two.Lines()[0].Quantity)

	require.Equal(t, 2, mixed.Len())
	assert.Equal(t, "c1", mixed.Lines()[0].Item.ID)
	assert.Equal(t, "c3", mixed.Lines()[1].Item.ID)
	assert.Equal(t, int64(2*599+300), mixed.Total())
}

func TestUpdateQuantity(t *testing.T) {
	t.Parallel()

	base := AddToCart(AddToCart(Cart{}, burger), coffee)

	tests := []struct {
		name      string
		itemID    string
		delta     int
		wantLines map[string]int
	}{
		{name: "increment", itemID: "c1", delta: 2, wantLines: map[string]int{"c1": 3, "c3": 1}},
		{name: "decrement_to_zero_removes", itemID: "c3", delta: -1, wantLines: map[string]int{"c1": 1}},
		{name: "below_zero_clamps_and_removes", itemID: "c1", delta: -5, wantLines: map[string]int{"c3": 1}},
		{name: "unknown_item_unchanged", itemID: "zz", delta: 3, wantLines: map[string]int{"c1": 1, "c3": 1}},
		{name: "zero_delta", itemID: "c1", delta: 0, wantLines: map[string]int{"c1": 1, "c3": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := UpdateQuantity(base, tt.itemID, tt.delta)

			lines := make(map[string]int, got.Len())
			for _, l := range got.Lines() {
				assert.GreaterOrEqual(t, l.Quantity, 1)
				lines[l.Item.ID] = l.Quantity
			}

			assert.Equal(t, tt.wantLines, lines)
			assert.Equal(t, 2, base.Len(), "input cart must not change")
		})
	}
}

func TestCartLinesIsACopy(t *testing.T) {
	t.Parallel()

	c := AddToCart(Cart{}, burger)

	lines := c.Lines()
	lines[0].Quantity = 99

	assert.Equal(t, 1, c.Lines()[0].Quantity)
}
