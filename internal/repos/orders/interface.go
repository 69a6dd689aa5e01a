package orders

import (
	"context"
	"errors"

	"github.com/fastprodman/campushub/internal/models"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrDuplicateOrder = errors.New("duplicate order")
)

type Reader interface {
	Get(ctx context.Context, orderID string) (models.CanteenOrder, error)
	// ListByUser returns the user's orders, most recent first.
	ListByUser(ctx context.Context, userID string) ([]models.CanteenOrder, error)
	List(ctx context.Context) ([]models.CanteenOrder, error)
}

type Writer interface {
	Insert(ctx context.Context, order models.CanteenOrder) error
	UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error
}

type Store interface {
	Reader
	Writer
}
