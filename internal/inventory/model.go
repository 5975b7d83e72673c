package inventory

import (
	"fmt"
	"time"
)

type MovementType string

const (
	MovementIn         MovementType = "in"
	MovementOut        MovementType = "out"
	MovementAdjustment MovementType = "adjustment"
	MovementOrder      MovementType = "order"
)

func (t MovementType) Valid() bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjustment, MovementOrder:
		return true
	}
	return false
}

// Item is the stock of one ingredient. Quantity is never negative.
type Item struct {
	ID           int64     `json:"id"`
	IngredientID int64     `json:"ingredientId"`
	Quantity     int64     `json:"quantity"`
	MinThreshold int64     `json:"minThreshold"`
	Unit         string    `json:"unit"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

func (i Item) LowStock() bool {
	return i.Quantity <= i.MinThreshold
}

// Movement is one append-only audit row. Quantity is the delta that was
// requested, which differs from the applied change when the stock was
// clamped at zero.
type Movement struct {
	ID          int64        `json:"id"`
	InventoryID int64        `json:"inventoryId"`
	Type        MovementType `json:"type"`
	Quantity    int64        `json:"quantity"`
	Reason      string       `json:"reason"`
	ReferenceID *string      `json:"referenceId,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

type AdjustInput struct {
	IngredientID int64
	Delta        int64
	Type         MovementType
	Reason       string
	ReferenceID  *string
}

// Adjustment is the outcome of one ledger adjustment.
type Adjustment struct {
	Item      Item     `json:"item"`
	Previous  int64    `json:"previous"`
	Requested int64    `json:"requested"`
	Applied   int64    `json:"applied"`
	Clamped   bool     `json:"clamped"`
	Movement  Movement `json:"movement"`
}

// Requirement is one order item resolved against one linked ingredient.
// Available is nil when the ingredient has no inventory row.
type Requirement struct {
	ProductID    int64
	IngredientID int64
	Quantity     int64
	Available    *int64
}

func (r Requirement) Sufficient() bool {
	return r.Available != nil && *r.Available >= r.Quantity
}

// Reconciliation compares stored stock with the sum of recorded movements.
// Drift is non-zero after a clamped deduction, or when stock was seeded
// outside the ledger.
type Reconciliation struct {
	IngredientID int64 `json:"ingredientId"`
	Quantity     int64 `json:"quantity"`
	MovementSum  int64 `json:"movementSum"`
	Drift        int64 `json:"drift"`
}

func (r Reconciliation) Consistent() bool { return r.Drift == 0 }

// OrderReason is the movement reason recorded for order deductions.
func OrderReason(orderID string) string {
	return fmt.Sprintf("Order %s", orderID)
}
