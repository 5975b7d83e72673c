package inventory

import (
	"context"
	"fmt"
	"strconv"

	"fastfood-be/internal/events"
	"fastfood-be/internal/logger"

	"go.uber.org/zap"
)

// Service is the inventory ledger.
type Service interface {
	AdjustInventory(ctx context.Context, in AdjustInput) (*Adjustment, error)
	ValidateOrderInventory(ctx context.Context, orderID string) bool
	CheckOrderInventory(ctx context.Context, orderID string) (bool, error)
	DeductInventoryForOrder(ctx context.Context, orderID string) ([]Adjustment, error)
	GetInventory(ctx context.Context, ingredientID int64) (*Item, error)
	ListMovements(ctx context.Context, ingredientID int64) ([]Movement, error)
	ListLowStock(ctx context.Context) ([]Item, error)
	Reconcile(ctx context.Context, ingredientID int64) (*Reconciliation, error)
}

type service struct {
	repo   Repository
	alerts events.Publisher
}

// NewService builds the ledger. alerts may be nil.
func NewService(repo Repository, alerts events.Publisher) Service {
	return &service{repo: repo, alerts: alerts}
}

// AdjustInventory applies delta to the ingredient's stock. The stored
// quantity is floored at zero while the movement keeps the requested
// delta, so a clamped deduction is visible as drift in Reconcile.
func (s *service) AdjustInventory(ctx context.Context, in AdjustInput) (*Adjustment, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("method", "AdjustInventory"),
		zap.Int64("ingredient_id", in.IngredientID),
		zap.Int64("delta", in.Delta),
		zap.String("type", string(in.Type)),
	)

	if in.IngredientID <= 0 {
		return nil, ErrInvalidIngredient
	}
	if !in.Type.Valid() {
		log.Warn("invalid movement type")
		return nil, ErrInvalidMovementType
	}

	adj, err := s.repo.Adjust(ctx, in)
	if err != nil {
		log.Error("failed to adjust inventory", zap.Error(err))
		return nil, err
	}

	s.afterAdjust(ctx, adj)
	log.Info("inventory adjusted", zap.Int64("quantity", adj.Item.Quantity))
	return adj, nil
}

// ValidateOrderInventory reports whether every ingredient required by the
// order is in stock. It stops at the first shortfall and answers false on
// any error.
func (s *service) ValidateOrderInventory(ctx context.Context, orderID string) bool {
	ok, err := s.CheckOrderInventory(ctx, orderID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load order requirements",
			zap.String("method", "ValidateOrderInventory"),
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return false
	}
	return ok
}

// CheckOrderInventory is ValidateOrderInventory that returns load errors
// instead of folding them into false.
func (s *service) CheckOrderInventory(ctx context.Context, orderID string) (bool, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("method", "CheckOrderInventory"),
		zap.String("order_id", orderID),
	)

	reqs, err := s.repo.GetOrderRequirements(ctx, orderID)
	if err != nil {
		return false, err
	}

	for _, req := range reqs {
		if !req.Sufficient() {
			available := int64(-1)
			if req.Available != nil {
				available = *req.Available
			}
			log.Warn("insufficient stock",
				zap.Int64("product_id", req.ProductID),
				zap.Int64("ingredient_id", req.IngredientID),
				zap.Int64("required", req.Quantity),
				zap.Int64("available", available),
			)
			return false, nil
		}
	}
	return true, nil
}

// DeductInventoryForOrder consumes the order's ingredients in a single
// transaction: either every adjustment is applied or none is.
func (s *service) DeductInventoryForOrder(ctx context.Context, orderID string) ([]Adjustment, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("method", "DeductInventoryForOrder"),
		zap.String("order_id", orderID),
	)

	adjs, err := s.repo.DeductForOrder(ctx, orderID)
	if err != nil {
		log.Error("failed to deduct inventory", zap.Error(err))
		return nil, err
	}

	for i := range adjs {
		s.afterAdjust(ctx, &adjs[i])
	}
	log.Info("inventory deducted", zap.Int("adjustments", len(adjs)))
	return adjs, nil
}

func (s *service) afterAdjust(ctx context.Context, adj *Adjustment) {
	if adj.Clamped {
		logger.FromCtx(ctx).Warn("inventory clamped at zero",
			zap.Int64("ingredient_id", adj.Item.IngredientID),
			zap.Int64("previous", adj.Previous),
			zap.Int64("requested", adj.Requested),
			zap.Int64("applied", adj.Applied),
		)
	}

	if adj.Item.LowStock() {
		events.Emit(ctx, s.alerts, events.TypeLowStock, strconv.FormatInt(adj.Item.IngredientID, 10), events.LowStockPayload{
			IngredientID: adj.Item.IngredientID,
			Quantity:     adj.Item.Quantity,
			MinThreshold: adj.Item.MinThreshold,
			Unit:         adj.Item.Unit,
		})
	}
}

func (s *service) GetInventory(ctx context.Context, ingredientID int64) (*Item, error) {
	if ingredientID <= 0 {
		return nil, ErrInvalidIngredient
	}
	return s.repo.GetByIngredientID(ctx, ingredientID)
}

func (s *service) ListMovements(ctx context.Context, ingredientID int64) ([]Movement, error) {
	if _, err := s.GetInventory(ctx, ingredientID); err != nil {
		return nil, err
	}
	return s.repo.ListMovements(ctx, ingredientID)
}

func (s *service) ListLowStock(ctx context.Context) ([]Item, error) {
	return s.repo.ListLowStock(ctx)
}

func (s *service) Reconcile(ctx context.Context, ingredientID int64) (*Reconciliation, error) {
	item, err := s.GetInventory(ctx, ingredientID)
	if err != nil {
		return nil, err
	}

	sum, err := s.repo.SumMovements(ctx, ingredientID)
	if err != nil {
		return nil, fmt.Errorf("sum movements for ingredient %d: %w", ingredientID, err)
	}

	rec := &Reconciliation{
		IngredientID: ingredientID,
		Quantity:     item.Quantity,
		MovementSum:  sum,
		Drift:        item.Quantity - sum,
	}
	if !rec.Consistent() {
		logger.FromCtx(ctx).Warn("inventory drift detected",
			zap.Int64("ingredient_id", ingredientID),
			zap.Int64("quantity", rec.Quantity),
			zap.Int64("movement_sum", rec.MovementSum),
		)
	}
	return rec, nil
}
