package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fastfood-be/internal/db"
	"fastfood-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	CreateOrderTx(ctx context.Context, order *Order) error
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	UpdateStatusTx(ctx context.Context, orderID string, from, to Status) (time.Time, error)
	GetStatusHistory(ctx context.Context, orderID string) ([]StatusHistory, error)
	ListOrders(ctx context.Context, filter ListFilter) ([]*Order, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// CreateOrderTx writes the order, its items and the initial history row.
// Nothing is persisted unless all three succeed.
func (r *repository) CreateOrderTx(ctx context.Context, order *Order) error {
	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		// 1. Insert order
		err := tx.QueryRowContext(ctx, `
			INSERT INTO orders (id, user_id, total, status)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at, updated_at
		`,
			order.ID,
			order.UserID,
			order.Total,
			order.Status,
		).Scan(&order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		// 2. Insert items
		for i := range order.Items {
			item := &order.Items[i]
			item.OrderID = order.ID
			_, err = tx.ExecContext(ctx, `
				INSERT INTO order_items (order_id, product_id, quantity)
				VALUES ($1, $2, $3)
			`, item.OrderID, item.ProductID, item.Quantity)
			if err != nil {
				return fmt.Errorf("insert order item %d: %w", item.ProductID, err)
			}
		}

		// 3. Initial history
		return insertHistory(ctx, tx, order.ID, order.Status)
	})
}

func insertHistory(ctx context.Context, q db.Querier, orderID string, status Status) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO order_status_history (order_id, status)
		VALUES ($1, $2)
	`, orderID, status)
	if err != nil {
		return fmt.Errorf("insert status history: %w", err)
	}
	return nil
}

func (r *repository) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, total, status, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, orderID).Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, product_id, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.OrderID, &item.ProductID, &item.Quantity); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &o, nil
}

// UpdateStatusTx moves the order from one status to another and appends the
// history row. The update only matches while the order is still in from,
// so two concurrent transitions cannot both succeed.
func (r *repository) UpdateStatusTx(ctx context.Context, orderID string, from, to Status) (time.Time, error) {
	var updatedAt time.Time
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			UPDATE orders
			SET status = $1, updated_at = NOW()
			WHERE id = $2 AND status = $3
			RETURNING updated_at
		`, to, orderID, from).Scan(&updatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s is no longer %s", ErrStaleStatus, orderID, from)
		}
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		return insertHistory(ctx, tx, orderID, to)
	})
	if err != nil {
		return time.Time{}, err
	}
	return updatedAt, nil
}

func (r *repository) GetStatusHistory(ctx context.Context, orderID string) ([]StatusHistory, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, status, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY created_at, id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatusHistory
	for rows.Next() {
		var h StatusHistory
		if err := rows.Scan(&h.ID, &h.OrderID, &h.Status, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Every order is created with a PENDING row.
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	return out, nil
}

func (r *repository) ListOrders(ctx context.Context, filter ListFilter) ([]*Order, error) {
	filter = filter.normalized()

	log := logger.FromCtx(ctx).With(
		zap.String("method", "ListOrders"),
		zap.Int("limit", filter.Limit),
		zap.Int("offset", filter.Offset),
	)

	query := `
		SELECT o.id, o.user_id, o.total, o.status, o.created_at, o.updated_at
		FROM orders o
		WHERE 1=1
	`
	args := []any{}
	argIndex := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND o.status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}
	if filter.UserID != nil && *filter.UserID != "" {
		query += fmt.Sprintf(" AND o.user_id = $%d", argIndex)
		args = append(args, *filter.UserID)
		argIndex++
	}

	query += " ORDER BY o.created_at DESC, o.id"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	log.Debug("executing list orders query", zap.String("query", query), zap.Any("args", args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var (
		orders []*Order
		ids    []string
		byID   = map[string]*Order{}
	)
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, &o)
		ids = append(ids, o.ID)
		byID[o.ID] = &o
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT order_id, product_id, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id
	`, pq.Array(ids))
	if err != nil {
		log.Error("failed to query order items", zap.Error(err))
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item OrderItem
		if err := itemRows.Scan(&item.OrderID, &item.ProductID, &item.Quantity); err != nil {
			return nil, err
		}
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	log.Debug("list orders success", zap.Int("count", len(orders)))
	return orders, nil
}
