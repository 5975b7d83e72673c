package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fastfood-be/internal/breaker"
	"fastfood-be/internal/events"
	"fastfood-be/internal/inventory"
	"fastfood-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InventoryLedger is the part of the inventory ledger used at checkout.
type InventoryLedger interface {
	CheckOrderInventory(ctx context.Context, orderID string) (bool, error)
	DeductInventoryForOrder(ctx context.Context, orderID string) ([]inventory.Adjustment, error)
}

type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error)
	PlaceOrder(ctx context.Context, input CreateOrderInput) (*Placement, error)
	UpdateStatus(ctx context.Context, orderID, newStatus string) error
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	GetStatusHistory(ctx context.Context, orderID string) ([]StatusHistory, error)
	ListOrders(ctx context.Context, filter ListFilter) ([]*Order, error)
}

type service struct {
	repo      Repository
	ledger    InventoryLedger
	dbBreaker *breaker.CircuitBreaker
	publisher events.Publisher
}

// NewService wires the controller. dbBreaker guards every database call made
// by the controller and may be nil; publisher may be nil.
func NewService(repo Repository, ledger InventoryLedger, dbBreaker *breaker.CircuitBreaker, publisher events.Publisher) Service {
	return &service{
		repo:      repo,
		ledger:    ledger,
		dbBreaker: dbBreaker,
		publisher: publisher,
	}
}

func (s *service) guard(fn func() error) error {
	if s.dbBreaker == nil {
		return fn()
	}
	return s.dbBreaker.Execute(fn)
}

func call[T any](s *service, fn func() (T, error)) (T, error) {
	if s.dbBreaker == nil {
		return fn()
	}
	return breaker.Call(s.dbBreaker, fn)
}

// Totals are stored as NUMERIC(12, 2).
const totalScale = 2

var maxTotal = decimal.New(1, 10)

func validateCreate(input CreateOrderInput) (decimal.Decimal, error) {
	if len(input.Items) == 0 {
		return decimal.Zero, ErrEmptyItems
	}
	for i, item := range input.Items {
		if item.ProductID <= 0 || item.Quantity < 1 {
			return decimal.Zero, fmt.Errorf("%w: items[%d]", ErrInvalidItem, i)
		}
	}

	total, err := decimal.NewFromString(strings.TrimSpace(input.Total))
	if err != nil || !total.IsPositive() {
		return decimal.Zero, ErrInvalidTotal
	}
	if !total.Equal(total.Truncate(totalScale)) {
		return decimal.Zero, fmt.Errorf("%w: at most %d decimal places", ErrInvalidTotal, totalScale)
	}
	if total.GreaterThanOrEqual(maxTotal) {
		return decimal.Zero, fmt.Errorf("%w: must be below %s", ErrInvalidTotal, maxTotal)
	}

	if strings.TrimSpace(input.UserID) == "" {
		return decimal.Zero, ErrMissingUser
	}
	return total, nil
}

// CreateOrder validates the input and persists a PENDING order with its
// items and initial history row.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("method", "CreateOrder"),
		zap.String("user_id", input.UserID),
		zap.Int("items", len(input.Items)),
	)

	total, err := validateCreate(input)
	if err != nil {
		log.Warn("invalid order input", zap.Error(err))
		return nil, err
	}

	order := newOrder(input, total)

	if err := s.guard(func() error { return s.repo.CreateOrderTx(ctx, order) }); err != nil {
		log.Error("failed to create order", zap.Error(err))
		return nil, err
	}

	events.Emit(ctx, s.publisher, events.TypeOrderCreated, order.ID, toCreatedPayload(order))

	log.Info("order created", zap.String("order_id", order.ID))
	return order, nil
}

// PlaceOrder runs checkout: create, validate stock, deduct stock. Stock
// problems after creation are alerted, not returned; the order stands.
func (s *service) PlaceOrder(ctx context.Context, input CreateOrderInput) (*Placement, error) {
	order, err := s.CreateOrder(ctx, input)
	if err != nil {
		return nil, err
	}

	log := logger.FromCtx(ctx).With(
		zap.String("method", "PlaceOrder"),
		zap.String("order_id", order.ID),
	)
	placement := &Placement{Order: order}

	placement.InventorySufficient, err = call(s, func() (bool, error) {
		return s.ledger.CheckOrderInventory(ctx, order.ID)
	})
	if err != nil {
		placement.InventorySufficient = false
		log.Error("inventory validation failed", zap.Error(err))
		s.alert(ctx, order.ID, events.ReasonValidationFailed, err.Error())
		return placement, nil
	}

	if !placement.InventorySufficient {
		log.Warn("insufficient inventory for order")
		s.alert(ctx, order.ID, events.ReasonInsufficientStock, "")
		return placement, nil
	}

	err = s.guard(func() error {
		_, err := s.ledger.DeductInventoryForOrder(ctx, order.ID)
		return err
	})
	if err != nil {
		log.Error("inventory deduction failed", zap.Error(err))
		s.alert(ctx, order.ID, events.ReasonDeductionFailed, err.Error())
		return placement, nil
	}

	placement.InventoryDeducted = true
	log.Info("order placed")
	return placement, nil
}

func (s *service) alert(ctx context.Context, orderID, reason, detail string) {
	events.Emit(ctx, s.publisher, events.TypeInventoryAlert, orderID, events.InventoryAlertPayload{
		OrderID: orderID,
		Reason:  reason,
		Detail:  detail,
	})
}

// UpdateStatus advances the order along the lifecycle. Only the single
// successor of the current status is accepted.
func (s *service) UpdateStatus(ctx context.Context, orderID, newStatus string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("method", "UpdateStatus"),
		zap.String("order_id", orderID),
		zap.String("new_status", newStatus),
	)

	next, err := ParseStatus(newStatus)
	if err != nil {
		log.Warn("invalid status", zap.Error(err))
		return err
	}

	order, err := call(s, func() (*Order, error) {
		return s.repo.GetOrder(ctx, orderID)
	})
	if err != nil {
		if !errors.Is(err, ErrOrderNotFound) {
			log.Error("failed to load order", zap.Error(err))
		}
		return err
	}

	if !CanTransition(order.Status, next) {
		log.Warn("transition rejected", zap.String("current", string(order.Status)))
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, next)
	}

	err = s.guard(func() error {
		_, err := s.repo.UpdateStatusTx(ctx, orderID, order.Status, next)
		return err
	})
	if err != nil {
		log.Error("failed to update status", zap.Error(err))
		return err
	}

	events.Emit(ctx, s.publisher, events.TypeOrderStatusChanged, orderID, toStatusChangedPayload(orderID, order.Status, next))

	log.Info("order status updated", zap.String("from", string(order.Status)))
	return nil
}

func (s *service) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	return call(s, func() (*Order, error) {
		return s.repo.GetOrder(ctx, orderID)
	})
}

func (s *service) GetStatusHistory(ctx context.Context, orderID string) ([]StatusHistory, error) {
	return call(s, func() ([]StatusHistory, error) {
		return s.repo.GetStatusHistory(ctx, orderID)
	})
}

func (s *service) ListOrders(ctx context.Context, filter ListFilter) ([]*Order, error) {
	return call(s, func() ([]*Order, error) {
		return s.repo.ListOrders(ctx, filter)
	})
}
