// Package ordering turns carts into paid canteen orders and walks them through
// the kitchen states.
package ordering

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastprodman/campushub/internal/config"
	"github.com/fastprodman/campushub/internal/infra/logging"
	"github.com/fastprodman/campushub/internal/models"
	"github.com/fastprodman/campushub/internal/repos"
	"github.com/fastprodman/campushub/internal/repos/catalog"
)

// MaxLineQuantity bounds the quantity of a single cart line.
const MaxLineQuantity = 100

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidQuantity   = fmt.Errorf("quantity must be between 1 and %d", MaxLineQuantity)
	ErrTotalTooLarge     = errors.New("order total too large")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// StatusListener is told about every committed status change, including the
// initial Pending status. Implementations must not block.
type StatusListener interface {
	OrderStatusChanged(order models.CanteenOrder)
}

type Option func(*Engine)

func WithStatusListener(l StatusListener) Option {
	return func(e *Engine) { e.listener = l }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithTokenSource overrides the pickup token generator.
func WithTokenSource(token func() int) Option {
	return func(e *Engine) { e.token = token }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

type Engine struct {
	store    repos.Store
	catalog  catalog.Catalog
	cfg      config.OrderingConfig
	listener StatusListener
	log      *slog.Logger

	now   func() time.Time
	token func() int
	newID func() string

	// mu guards timers and closed. running counts progression callbacks that
	// passed the closed check and are still executing.
	mu      sync.Mutex
	timers  map[string]*time.Timer
	closed  bool
	running sync.WaitGroup

	baseCtx context.Context
	cancel  context.CancelFunc
}

func New(store repos.Store, cat catalog.Catalog, cfg config.OrderingConfig, opts ...Option) *Engine {
	ctx, cancel := context.WithCancel(context.Background())

	e := &Engine{
		store:   store,
		catalog: cat,
		cfg:     cfg,
		log:     logging.Component("ordering"),
		now:     time.Now,
		token:   func() int { return rand.IntN(900) + 100 },
		newID:   uuid.NewString,
		timers:  make(map[string]*time.Timer),
		baseCtx: ctx,
		cancel:  cancel,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// PlaceOrder prices the cart from the current menu, debits the wallet and
// records the order as one atomic step, then starts kitchen progression.
func (e *Engine) PlaceOrder(ctx context.Context, userID string, cart Cart) (models.CanteenOrder, error) {
	if cart.Len() == 0 {
		return models.CanteenOrder{}, ErrEmptyCart
	}

	items := make([]models.OrderItem, 0, cart.Len())

	var total int64

	for _, line := range cart.lines {
		if line.Quantity < 1 || line.Quantity > MaxLineQuantity {
			return models.CanteenOrder{}, fmt.Errorf("item %s: %w", line.Item.ID, ErrInvalidQuantity)
		}

		item, err := e.catalog.MenuItem(ctx, line.Item.ID)
		if err != nil {
			return models.CanteenOrder{}, fmt.Errorf("price item %s: %w", line.Item.ID, err)
		}

		ol := models.OrderItem{Item: item, Quantity: line.Quantity}

		total, err = addSubtotal(total, ol)
		if err != nil {
			return models.CanteenOrder{}, fmt.Errorf("item %s: %w", line.Item.ID, err)
		}

		items = append(items, ol)
	}

	order := models.CanteenOrder{
		ID:         e.newID(),
		UserID:     userID,
		Items:      items,
		TotalMinor: total,
		Status:     models.OrderPending,
		OrderDate:  e.now(),
		Token:      e.token(),
	}

	err := e.store.Atomic(ctx, userID, func(tx repos.Tx) error {
		_, err := tx.Ledger().Debit(ctx, userID, total, fmt.Sprintf("Canteen Order #%d", order.Token))
		if err != nil {
			return fmt.Errorf("debit wallet: %w", err)
		}

		err = tx.Orders().Insert(ctx, order)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		return nil
	})
	if err != nil {
		return models.CanteenOrder{}, fmt.Errorf("place order: %w", err)
	}

	e.log.Info("order placed",
		"order_id", order.ID,
		"user_id", userID,
		"total_minor", total,
		"token", order.Token,
	)

	e.publish(order)
	e.schedule(order.ID, models.OrderPreparing, e.cfg.PrepareDelay)

	return order, nil
}

// addSubtotal returns total + price*quantity, failing instead of wrapping.
func addSubtotal(total int64, ol models.OrderItem) (int64, error) {
	price, qty := ol.Item.PriceMinor, int64(ol.Quantity)

	if price < 0 || (price > 0 && qty > math.MaxInt64/price) {
		return 0, ErrTotalTooLarge
	}

	sub := price * qty
	if sub > math.MaxInt64-total {
		return 0, ErrTotalTooLarge
	}

	return total + sub, nil
}

// ListOrders returns the user's orders, most recent first.
func (e *Engine) ListOrders(ctx context.Context, userID string) ([]models.CanteenOrder, error) {
	list, err := e.store.Orders().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	return list, nil
}

// CompleteOrder marks a picked up order as Completed.
func (e *Engine) CompleteOrder(ctx context.Context, orderID string) (models.CanteenOrder, error) {
	return e.finish(ctx, orderID, models.OrderCompleted)
}

// CancelOrder cancels a non-terminal order. The wallet is not refunded.
func (e *Engine) CancelOrder(ctx context.Context, orderID string) (models.CanteenOrder, error) {
	return e.finish(ctx, orderID, models.OrderCancelled)
}

func (e *Engine) finish(ctx context.Context, orderID string, status models.OrderStatus) (models.CanteenOrder, error) {
	order, err := e.transition(ctx, orderID, status)
	if err != nil {
		return models.CanteenOrder{}, err
	}

	e.stopTimer(orderID)

	return order, nil
}

// transition moves orderID to next under the owner's atomic unit and
// publishes the committed order.
func (e *Engine) transition(ctx context.Context, orderID string, next models.OrderStatus) (models.CanteenOrder, error) {
	current, err := e.store.Orders().Get(ctx, orderID)
	if err != nil {
		return models.CanteenOrder{}, fmt.Errorf("get order: %w", err)
	}

	var updated models.CanteenOrder

	err = e.store.Atomic(ctx, current.UserID, func(tx repos.Tx) error {
		o, err := tx.Orders().Get(ctx, orderID)
		if err != nil {
			return fmt.Errorf("reload order: %w", err)
		}

		if !o.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
		}

		err = tx.Orders().UpdateStatus(ctx, orderID, next)
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		o.Status = next
		updated = o

		return nil
	})
	if err != nil {
		return models.CanteenOrder{}, fmt.Errorf("transition order %s: %w", orderID, err)
	}

	e.log.Info("order status changed", "order_id", orderID, "status", string(next))
	e.publish(updated)

	return updated, nil
}

func (e *Engine) publish(order models.CanteenOrder) {
	if e.listener == nil {
		return
	}

	e.listener.OrderStatusChanged(order)
}

func (e *Engine) schedule(orderID string, target models.OrderStatus, delay time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}

	e.timers[orderID] = time.AfterFunc(delay, func() {
		e.advance(orderID, target)
	})
}

func (e *Engine) advance(orderID string, target models.OrderStatus) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}

	delete(e.timers, orderID)
	e.running.Add(1)
	e.mu.Unlock()

	defer e.running.Done()

	_, err := e.transition(e.baseCtx, orderID, target)
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) || errors.Is(err, context.Canceled) {
			e.log.Debug("progression skipped", "order_id", orderID, "target", string(target), "reason", err)
			return
		}

		e.log.Error("order progression failed", "order_id", orderID, "target", string(target), "error", err)

		return
	}

	if target == models.OrderPreparing {
		e.schedule(orderID, models.OrderReady, e.cfg.ReadyDelay)
	}
}

func (e *Engine) stopTimer(orderID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.timers[orderID]
	if !ok {
		return
	}

	t.Stop()
	delete(e.timers, orderID)
}

// Close stops all pending progression and waits for callbacks already running.
// No status change fires after Close returns.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	e.closed = true

	for id, t := range e.timers {
		t.Stop()
		delete(e.timers, id)
	}
	e.mu.Unlock()

	e.cancel()

	done := make(chan struct{})

	go func() {
		e.running.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for progression: %w", ctx.Err())
	}
}
