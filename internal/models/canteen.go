package models

import "time"

type CanteenItem struct {
	ID         string
	Name       string
	Category   string
	PriceMinor int64 // cents
	ImageURL   string
	Rating     float64
}

type OrderItem struct {
	Item     CanteenItem
	Quantity int
}

func (oi OrderItem) Subtotal() int64 {
	return oi.Item.PriceMinor * int64(oi.Quantity)
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderPreparing OrderStatus = "Preparing"
	OrderReady     OrderStatus = "Ready for Pickup"
	OrderCompleted OrderStatus = "Completed"
	OrderCancelled OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPreparing, OrderReady, OrderCompleted, OrderCancelled:
		return true
	default:
		return false
	}
}

func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// CanTransitionTo reports whether next is a legal successor of s.
// The kitchen path is Pending -> Preparing -> Ready; Completed and Cancelled
// are reachable from any non-terminal status.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.Terminal() {
		return false
	}

	switch next {
	case OrderPreparing:
		return s == OrderPending
	case OrderReady:
		return s == OrderPreparing
	case OrderCompleted, OrderCancelled:
		return true
	default:
		return false
	}
}

// CanteenOrder is created once at placement. Items and TotalMinor are a snapshot
// of catalog prices at that moment and never change afterwards.
type CanteenOrder struct {
	ID         string
	UserID     string
	Items      []OrderItem
	TotalMinor int64 // cents
	Status     OrderStatus
	OrderDate  time.Time
	Token      int
}
