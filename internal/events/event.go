// Package events publishes domain events and operational alerts produced
// by the order lifecycle and the inventory ledger.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
	TypeInventoryAlert     = "inventory.alert"
	TypeLowStock           = "inventory.low_stock"
)

// Alert reasons carried by TypeInventoryAlert.
const (
	ReasonInsufficientStock = "INSUFFICIENT_STOCK"
	ReasonDeductionFailed   = "DEDUCTION_FAILED"
	ReasonValidationFailed  = "VALIDATION_FAILED"
)

// Event is the envelope written to the bus. Key orders events of the same
// aggregate (order id or ingredient id).
type Event struct {
	ID         string          `json:"event_id"`
	Type       string          `json:"event_type"`
	Version    int             `json:"event_version"`
	OccurredAt time.Time       `json:"occurred_at"`
	Key        string          `json:"key"`
	Payload    json.RawMessage `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// New builds an envelope around payload.
func New(eventType, key string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Version:    1,
		OccurredAt: time.Now().UTC(),
		Key:        key,
		Payload:    raw,
	}, nil
}

// Decode unmarshals the payload of ev into T.
func Decode[T any](ev Event) (T, error) {
	var t T
	if err := json.Unmarshal(ev.Payload, &t); err != nil {
		return t, fmt.Errorf("decode %s payload: %w", ev.Type, err)
	}
	return t, nil
}

type OrderCreatedPayload struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
	Total   string `json:"total"`
	Items   int    `json:"items"`
}

type StatusChangedPayload struct {
	OrderID string `json:"order_id"`
	From    string `json:"from"`
	To      string `json:"to"`
}

type InventoryAlertPayload struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
	Detail  string `json:"detail,omitempty"`
}

type LowStockPayload struct {
	IngredientID int64  `json:"ingredient_id"`
	Quantity     int64  `json:"quantity"`
	MinThreshold int64  `json:"min_threshold"`
	Unit         string `json:"unit"`
}
