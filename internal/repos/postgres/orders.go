package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/fastprodman/campushub/internal/infra/pgutils"
	"github.com/fastprodman/campushub/internal/models"
	"github.com/fastprodman/campushub/internal/repos/orders"
)

var _ orders.Store = (*ordersRepo)(nil)

type ordersRepo struct {
	s      *Store
	q      sqlx.ExtContext
	userID string
}

type orderRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Total     int64     `db:"total"`
	Status    string    `db:"status"`
	Token     int       `db:"token"`
	OrderedAt time.Time `db:"ordered_at"`
}

type orderItemRow struct {
	OrderID  string  `db:"order_id"`
	Position int     `db:"position"`
	ItemID   string  `db:"item_id"`
	Name     string  `db:"name"`
	Category string  `db:"category"`
	Price    int64   `db:"price"`
	ImageURL string  `db:"image_url"`
	Rating   float64 `db:"rating"`
	Quantity int     `db:"quantity"`
}

func (r *ordersRepo) Get(ctx context.Context, orderID string) (models.CanteenOrder, error) {
	list, err := r.selectOrders(ctx, goqu.C(colID).Eq(orderID))
	if err != nil {
		return models.CanteenOrder{}, err
	}

	if len(list) == 0 {
		return models.CanteenOrder{}, orders.ErrOrderNotFound
	}

	return list[0], nil
}

func (r *ordersRepo) ListByUser(ctx context.Context, userID string) ([]models.CanteenOrder, error) {
	return r.selectOrders(ctx, goqu.C(colUserID).Eq(userID))
}

func (r *ordersRepo) List(ctx context.Context) ([]models.CanteenOrder, error) {
	return r.selectOrders(ctx)
}

func (r *ordersRepo) selectOrders(ctx context.Context, where ...goqu.Expression) ([]models.CanteenOrder, error) {
	query, args, err := build(r.s.sql.
		From(tableOrders).
		Select(colID, colUserID, "total", "status", "token", colOrderedAt).
		Where(where...).
		Order(goqu.C(colOrderedAt).Desc(), goqu.C(colID).Asc()).
		Prepared(true))
	if err != nil {
		return nil, err
	}

	var rows []orderRow

	err = sqlx.SelectContext(ctx, r.q, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}

	if len(rows) == 0 {
		return []models.CanteenOrder{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	items, err := r.selectItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.CanteenOrder, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.CanteenOrder{
			ID:         row.ID,
			UserID:     row.UserID,
			Items:      items[row.ID],
			TotalMinor: row.Total,
			Status:     models.OrderStatus(row.Status),
			OrderDate:  row.OrderedAt,
			Token:      row.Token,
		})
	}

	return out, nil
}

func (r *ordersRepo) selectItems(ctx context.Context, orderIDs []string) (map[string][]models.OrderItem, error) {
	query, args, err := build(r.s.sql.
		From(tableOrderItems).
		Select(colOrderID, colPosition, "item_id", "name", "category", "price", "image_url", "rating", "quantity").
		Where(goqu.C(colOrderID).In(orderIDs)).
		Order(goqu.C(colOrderID).Asc(), goqu.C(colPosition).Asc()).
		Prepared(true))
	if err != nil {
		return nil, err
	}

	var rows []orderItemRow

	err = sqlx.SelectContext(ctx, r.q, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}

	out := make(map[string][]models.OrderItem, len(orderIDs))
	for _, row := range rows {
		out[row.OrderID] = append(out[row.OrderID], models.OrderItem{
			Item: models.CanteenItem{
				ID:         row.ItemID,
				Name:       row.Name,
				Category:   row.Category,
				PriceMinor: row.Price,
				ImageURL:   row.ImageURL,
				Rating:     row.Rating,
			},
			Quantity: row.Quantity,
		})
	}

	return out, nil
}

func (r *ordersRepo) Insert(ctx context.Context, order models.CanteenOrder) error {
	err := owns(r.userID, order.UserID)
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx, `
		INSERT INTO canteen_orders (id, user_id, total, status, token, ordered_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, order.ID, order.UserID, order.TotalMinor, string(order.Status), order.Token, order.OrderDate.UTC())
	if err != nil {
		if pgutils.IsUniqueViolation(err) {
			return orders.ErrDuplicateOrder
		}

		return fmt.Errorf("insert order: %w", err)
	}

	for i, line := range order.Items {
		_, err = r.q.ExecContext(ctx, `
			INSERT INTO canteen_order_items (order_id, position, item_id, name, category, price, image_url, rating, quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, order.ID, i, line.Item.ID, line.Item.Name, line.Item.Category, line.Item.PriceMinor,
			line.Item.ImageURL, line.Item.Rating, line.Quantity)
		if err != nil {
			return fmt.Errorf("insert order item %d: %w", i, err)
		}
	}

	return nil
}

func (r *ordersRepo) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	var owner string

	err := sqlx.GetContext(ctx, r.q, &owner, `SELECT user_id FROM canteen_orders WHERE id = $1`, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return orders.ErrOrderNotFound
		}

		return fmt.Errorf("get order owner: %w", err)
	}

	err = owns(r.userID, owner)
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx, `
		UPDATE canteen_orders
		SET status = $2
		WHERE id = $1
	`, orderID, string(status))
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	return nil
}
