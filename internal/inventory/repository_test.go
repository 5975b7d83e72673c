package inventory

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"fastfood-be/internal/apperr"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var adjustColumns = []string{"id", "ingredient_id", "quantity", "quantity", "min_threshold", "unit", "last_updated"}

func TestRepository_Adjust(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("ClampedDeduction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		ref := "order-x"
		mock.ExpectBegin()
		mock.ExpectQuery(`WITH prev AS .* FOR UPDATE .* UPDATE inventory i SET quantity = GREATEST\(0, i.quantity \+ \$2\)`).
			WithArgs(int64(7), int64(-8)).
			WillReturnRows(sqlmock.NewRows(adjustColumns).AddRow(3, 7, 5, 0, 10, "kg", now))
		mock.ExpectQuery(`INSERT INTO inventory_movements`).
			WithArgs(int64(3), "order", int64(-8), "Order X", "order-x").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(99, now))
		mock.ExpectCommit()

		adj, err := repo.Adjust(ctx, AdjustInput{
			IngredientID: 7,
			Delta:        -8,
			Type:         MovementOrder,
			Reason:       "Order X",
			ReferenceID:  &ref,
		})
		require.NoError(t, err)

		assert.Equal(t, int64(0), adj.Item.Quantity)
		assert.Equal(t, int64(5), adj.Previous)
		assert.Equal(t, int64(-8), adj.Requested)
		assert.Equal(t, int64(-5), adj.Applied)
		assert.True(t, adj.Clamped)
		assert.Equal(t, int64(-8), adj.Movement.Quantity)
		assert.Equal(t, int64(99), adj.Movement.ID)
		assert.Equal(t, "order-x", *adj.Movement.ReferenceID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`WITH prev AS`).
			WithArgs(int64(404), int64(5)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err = repo.Adjust(ctx, AdjustInput{IngredientID: 404, Delta: 5, Type: MovementIn})
		assert.ErrorIs(t, err, ErrInventoryNotFound)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MovementInsertFailsRollsBack", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`WITH prev AS`).
			WillReturnRows(sqlmock.NewRows(adjustColumns).AddRow(3, 7, 5, 10, 2, "kg", now))
		mock.ExpectQuery(`INSERT INTO inventory_movements`).
			WithArgs(int64(3), "in", int64(5), "restock", nil).
			WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		_, err = repo.Adjust(ctx, AdjustInput{IngredientID: 7, Delta: 5, Type: MovementIn, Reason: "restock"})
		assert.ErrorContains(t, err, "insert movement")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_DeductForOrder(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	reqCols := []string{"product_id", "quantity", "ingredient_id", "quantity"}

	t.Run("AllOrNothingSuccess", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT oi.product_id, oi.quantity, pi.ingredient_id, inv.quantity FROM order_items oi`).
			WithArgs("o-1").
			WillReturnRows(sqlmock.NewRows(reqCols).
				AddRow(1, 2, 10, 50).
				AddRow(1, 2, 11, 8).
				AddRow(2, 1, nil, nil))
		mock.ExpectQuery(`WITH prev AS`).WithArgs(int64(10), int64(-2)).
			WillReturnRows(sqlmock.NewRows(adjustColumns).AddRow(1, 10, 50, 48, 5, "pcs", now))
		mock.ExpectQuery(`INSERT INTO inventory_movements`).WithArgs(int64(1), "order", int64(-2), "Order o-1", "o-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, now))
		mock.ExpectQuery(`WITH prev AS`).WithArgs(int64(11), int64(-2)).
			WillReturnRows(sqlmock.NewRows(adjustColumns).AddRow(2, 11, 8, 6, 5, "pcs", now))
		mock.ExpectQuery(`INSERT INTO inventory_movements`).WithArgs(int64(2), "order", int64(-2), "Order o-1", "o-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(2, now))
		mock.ExpectCommit()

		adjs, err := repo.DeductForOrder(ctx, "o-1")
		require.NoError(t, err)
		require.Len(t, adjs, 2)
		assert.Equal(t, int64(48), adjs[0].Item.Quantity)
		assert.Equal(t, int64(6), adjs[1].Item.Quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MissingInventoryRollsBackEverything", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM order_items oi`).WithArgs("o-2").
			WillReturnRows(sqlmock.NewRows(reqCols).AddRow(1, 1, 10, 5).AddRow(1, 1, 12, nil))
		mock.ExpectQuery(`WITH prev AS`).WithArgs(int64(10), int64(-1)).
			WillReturnRows(sqlmock.NewRows(adjustColumns).AddRow(1, 10, 5, 4, 1, "pcs", now))
		mock.ExpectQuery(`INSERT INTO inventory_movements`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, now))
		mock.ExpectQuery(`WITH prev AS`).WithArgs(int64(12), int64(-1)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err = repo.DeductForOrder(ctx, "o-2")
		assert.ErrorIs(t, err, ErrInventoryNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnknownOrder", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM order_items oi`).WithArgs("nope").
			WillReturnRows(sqlmock.NewRows(reqCols))
		mock.ExpectRollback()

		_, err = repo.DeductForOrder(ctx, "nope")
		assert.ErrorIs(t, err, ErrOrderNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_GetOrderRequirements(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	mock.ExpectQuery(`FROM order_items oi`).WithArgs("o-1").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "quantity", "ingredient_id", "quantity"}).
			AddRow(1, 2, 10, 1).
			AddRow(3, 1, 12, nil))

	reqs, err := repo.GetOrderRequirements(context.Background(), "o-1")
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, int64(1), *reqs[0].Available)
	assert.False(t, reqs[0].Sufficient())
	assert.Nil(t, reqs[1].Available)
	assert.False(t, reqs[1].Sufficient())
}

func TestRepository_Queries(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	itemCols := []string{"id", "ingredient_id", "quantity", "min_threshold", "unit", "last_updated"}

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	t.Run("GetByIngredientID", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM inventory WHERE ingredient_id = \$1`).WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(itemCols).AddRow(3, 7, 5, 10, "kg", now))

		it, err := repo.GetByIngredientID(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(5), it.Quantity)
		assert.True(t, it.LowStock())
	})

	t.Run("GetByIngredientID_NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM inventory WHERE ingredient_id = \$1`).WithArgs(int64(8)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByIngredientID(ctx, 8)
		assert.ErrorIs(t, err, ErrInventoryNotFound)
	})

	t.Run("ListMovements", func(t *testing.T) {
		mock.ExpectQuery(`FROM inventory_movements m JOIN inventory i`).WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "inventory_id", "type", "quantity", "reason", "reference_id", "created_at"}).
				AddRow(1, 3, "in", 5, "restock", nil, now).
				AddRow(2, 3, "order", -8, "Order X", "X", now))

		mvs, err := repo.ListMovements(ctx, 7)
		require.NoError(t, err)
		require.Len(t, mvs, 2)
		assert.Nil(t, mvs[0].ReferenceID)
		assert.Equal(t, MovementOrder, mvs[1].Type)
		assert.Equal(t, "X", *mvs[1].ReferenceID)
	})

	t.Run("ListLowStock", func(t *testing.T) {
		mock.ExpectQuery(`WHERE quantity <= min_threshold`).
			WillReturnRows(sqlmock.NewRows(itemCols).AddRow(3, 7, 0, 10, "kg", now))

		items, err := repo.ListLowStock(ctx)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("SumMovements", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COALESCE\(SUM\(m.quantity\), 0\)`).WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(-3))

		sum, err := repo.SumMovements(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(-3), sum)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
