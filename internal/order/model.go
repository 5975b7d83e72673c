package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
)

var transitions = map[Status]Status{
	StatusPending:    StatusProcessing,
	StatusProcessing: StatusShipped,
	StatusShipped:    StatusDelivered,
}

// ParseStatus accepts the four lifecycle names, case-insensitively.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Next returns the single successor of s. DELIVERED has none.
func Next(s Status) (Status, bool) {
	next, ok := transitions[s]
	return next, ok
}

// CanTransition reports whether next is the successor of current.
func CanTransition(current, next Status) bool {
	want, ok := transitions[current]
	return ok && want == next
}

type Order struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Total     decimal.Decimal `json:"total"`
	Status    Status          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Items     []OrderItem     `json:"items"`
}

type OrderItem struct {
	OrderID   string `json:"orderId"`
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// StatusHistory is one append-only audit row.
type StatusHistory struct {
	ID        int64     `json:"id"`
	OrderID   string    `json:"orderId"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type ItemInput struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// CreateOrderInput carries the total as text so that it is parsed exactly.
type CreateOrderInput struct {
	Items  []ItemInput `json:"items"`
	Total  string      `json:"total"`
	UserID string      `json:"userId"`
}

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

type ListFilter struct {
	Status *Status
	UserID *string
	Limit  int
	Offset int
}

func (f ListFilter) normalized() ListFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// Placement is the outcome of the checkout flow. The order exists even when
// stock was short or the deduction failed.
type Placement struct {
	Order               *Order `json:"order"`
	InventorySufficient bool   `json:"inventorySufficient"`
	InventoryDeducted   bool   `json:"inventoryDeducted"`
}
