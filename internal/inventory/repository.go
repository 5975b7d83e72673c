package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fastfood-be/internal/db"
	"fastfood-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Adjust(ctx context.Context, in AdjustInput) (*Adjustment, error)
	DeductForOrder(ctx context.Context, orderID string) ([]Adjustment, error)
	GetOrderRequirements(ctx context.Context, orderID string) ([]Requirement, error)
	GetByIngredientID(ctx context.Context, ingredientID int64) (*Item, error)
	ListMovements(ctx context.Context, ingredientID int64) ([]Movement, error)
	ListLowStock(ctx context.Context) ([]Item, error)
	SumMovements(ctx context.Context, ingredientID int64) (int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// The CTE locks the row and captures the previous quantity; the update
// applies the clamp in the same statement, so concurrent adjustments never
// lose an update.
const adjustQuery = `
	WITH prev AS (
		SELECT id, quantity FROM inventory
		WHERE ingredient_id = $1
		FOR UPDATE
	)
	UPDATE inventory i
	SET quantity = GREATEST(0, i.quantity + $2),
		last_updated = NOW()
	FROM prev
	WHERE i.id = prev.id
	RETURNING i.id, i.ingredient_id, prev.quantity, i.quantity, i.min_threshold, i.unit, i.last_updated
`

const insertMovementQuery = `
	INSERT INTO inventory_movements (inventory_id, type, quantity, reason, reference_id)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at
`

const requirementsQuery = `
	SELECT oi.product_id, oi.quantity, pi.ingredient_id, inv.quantity
	FROM order_items oi
	LEFT JOIN product_ingredients pi ON pi.product_id = oi.product_id
	LEFT JOIN inventory inv ON inv.ingredient_id = pi.ingredient_id
	WHERE oi.order_id = $1
	ORDER BY pi.ingredient_id, oi.product_id
`

func adjustWithin(ctx context.Context, q db.Querier, in AdjustInput) (*Adjustment, error) {
	var (
		adj      Adjustment
		previous int64
	)
	err := q.QueryRowContext(ctx, adjustQuery, in.IngredientID, in.Delta).Scan(
		&adj.Item.ID,
		&adj.Item.IngredientID,
		&previous,
		&adj.Item.Quantity,
		&adj.Item.MinThreshold,
		&adj.Item.Unit,
		&adj.Item.LastUpdated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: ingredient %d", ErrInventoryNotFound, in.IngredientID)
	}
	if err != nil {
		return nil, fmt.Errorf("update inventory for ingredient %d: %w", in.IngredientID, err)
	}

	mv := Movement{
		InventoryID: adj.Item.ID,
		Type:        in.Type,
		Quantity:    in.Delta,
		Reason:      in.Reason,
		ReferenceID: in.ReferenceID,
	}
	err = q.QueryRowContext(ctx, insertMovementQuery,
		mv.InventoryID, mv.Type, mv.Quantity, mv.Reason, mv.ReferenceID,
	).Scan(&mv.ID, &mv.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert movement for ingredient %d: %w", in.IngredientID, err)
	}

	adj.Previous = previous
	adj.Requested = in.Delta
	adj.Applied = adj.Item.Quantity - previous
	adj.Clamped = adj.Applied != in.Delta
	adj.Movement = mv
	return &adj, nil
}

func (r *repository) Adjust(ctx context.Context, in AdjustInput) (*Adjustment, error) {
	var adj *Adjustment
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		adj, err = adjustWithin(ctx, tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return adj, nil
}

// DeductForOrder consumes one unit of every linked ingredient per unit
// ordered, all in one transaction. Rows are visited in ingredient order so
// concurrent deductions lock in the same sequence.
func (r *repository) DeductForOrder(ctx context.Context, orderID string) ([]Adjustment, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("method", "DeductForOrder"),
		zap.String("order_id", orderID),
	)

	var out []Adjustment
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		reqs, err := scanRequirements(ctx, tx, orderID)
		if err != nil {
			return err
		}

		ref := orderID
		for _, req := range reqs {
			adj, err := adjustWithin(ctx, tx, AdjustInput{
				IngredientID: req.IngredientID,
				Delta:        -req.Quantity,
				Type:         MovementOrder,
				Reason:       OrderReason(orderID),
				ReferenceID:  &ref,
			})
			if err != nil {
				log.Error("deduction step failed, rolling back",
					zap.Int64("ingredient_id", req.IngredientID),
					zap.Error(err),
				)
				return err
			}
			out = append(out, *adj)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("order deduction committed", zap.Int("adjustments", len(out)))
	return out, nil
}

func (r *repository) GetOrderRequirements(ctx context.Context, orderID string) ([]Requirement, error) {
	return scanRequirements(ctx, r.db, orderID)
}

// scanRequirements returns one Requirement per (item, ingredient) pair.
// Items whose product has no ingredients contribute nothing; an order with
// no items at all is reported as not found.
func scanRequirements(ctx context.Context, q db.Querier, orderID string) ([]Requirement, error) {
	rows, err := q.QueryContext(ctx, requirementsQuery, orderID)
	if err != nil {
		return nil, fmt.Errorf("query requirements for order %s: %w", orderID, err)
	}
	defer rows.Close()

	var (
		reqs  []Requirement
		items int
	)
	for rows.Next() {
		var (
			req          Requirement
			ingredientID sql.NullInt64
			available    sql.NullInt64
		)
		if err := rows.Scan(&req.ProductID, &req.Quantity, &ingredientID, &available); err != nil {
			return nil, fmt.Errorf("scan requirement: %w", err)
		}
		items++

		if !ingredientID.Valid {
			continue
		}
		req.IngredientID = ingredientID.Int64
		if available.Valid {
			v := available.Int64
			req.Available = &v
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if items == 0 {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	return reqs, nil
}

func (r *repository) GetByIngredientID(ctx context.Context, ingredientID int64) (*Item, error) {
	var it Item
	err := r.db.QueryRowContext(ctx, `
		SELECT id, ingredient_id, quantity, min_threshold, unit, last_updated
		FROM inventory
		WHERE ingredient_id = $1
	`, ingredientID).Scan(&it.ID, &it.IngredientID, &it.Quantity, &it.MinThreshold, &it.Unit, &it.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: ingredient %d", ErrInventoryNotFound, ingredientID)
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *repository) ListMovements(ctx context.Context, ingredientID int64) ([]Movement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.id, m.inventory_id, m.type, m.quantity, m.reason, m.reference_id, m.created_at
		FROM inventory_movements m
		JOIN inventory i ON i.id = m.inventory_id
		WHERE i.ingredient_id = $1
		ORDER BY m.created_at, m.id
	`, ingredientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Movement
	for rows.Next() {
		var (
			mv  Movement
			ref sql.NullString
		)
		if err := rows.Scan(&mv.ID, &mv.InventoryID, &mv.Type, &mv.Quantity, &mv.Reason, &ref, &mv.CreatedAt); err != nil {
			return nil, err
		}
		if ref.Valid {
			mv.ReferenceID = &ref.String
		}
		out = append(out, mv)
	}
	return out, rows.Err()
}

func (r *repository) ListLowStock(ctx context.Context) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, ingredient_id, quantity, min_threshold, unit, last_updated
		FROM inventory
		WHERE quantity <= min_threshold
		ORDER BY quantity - min_threshold, ingredient_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.IngredientID, &it.Quantity, &it.MinThreshold, &it.Unit, &it.LastUpdated); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *repository) SumMovements(ctx context.Context, ingredientID int64) (int64, error) {
	var sum int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(m.quantity), 0)
		FROM inventory_movements m
		JOIN inventory i ON i.id = m.inventory_id
		WHERE i.ingredient_id = $1
	`, ingredientID).Scan(&sum)
	return sum, err
}
