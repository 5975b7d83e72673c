package order

import (
	"strings"

	"fastfood-be/internal/events"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// newOrder maps validated input to a fresh PENDING order.
func newOrder(input CreateOrderInput, total decimal.Decimal) *Order {
	items := make([]OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	return &Order{
		ID:     uuid.NewString(),
		UserID: strings.TrimSpace(input.UserID),
		Total:  total,
		Status: StatusPending,
		Items:  items,
	}
}

func toCreatedPayload(o *Order) events.OrderCreatedPayload {
	return events.OrderCreatedPayload{
		OrderID: o.ID,
		UserID:  o.UserID,
		Total:   o.Total.StringFixed(2),
		Items:   len(o.Items),
	}
}

func toStatusChangedPayload(orderID string, from, to Status) events.StatusChangedPayload {
	return events.StatusChangedPayload{
		OrderID: orderID,
		From:    string(from),
		To:      string(to),
	}
}
