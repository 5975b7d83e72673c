package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewOrder(t *testing.T) {
	input := CreateOrderInput{
		Items:  []ItemInput{{ProductID: 1, Quantity: 2}, {ProductID: 3, Quantity: 1}},
		Total:  "12.50",
		UserID: " u1 ",
	}

	o := newOrder(input, decimal.RequireFromString("12.50"))

	_, err := uuid.Parse(o.ID)
	assert.NoError(t, err)
	assert.Equal(t, "u1", o.UserID)
	assert.Equal(t, StatusPending, o.Status)
	assert.Len(t, o.Items, 2)
	assert.Equal(t, int64(3), o.Items[1].ProductID)
	assert.True(t, o.Total.Equal(decimal.RequireFromString("12.5")))

	other := newOrder(input, o.Total)
	assert.NotEqual(t, o.ID, other.ID)
}

func TestToCreatedPayload(t *testing.T) {
	o := &Order{
		ID:     "o-1",
		UserID: "u1",
		Total:  decimal.RequireFromString("12.5"),
		Items:  []OrderItem{{ProductID: 1, Quantity: 2}},
	}

	p := toCreatedPayload(o)
	assert.Equal(t, "o-1", p.OrderID)
	assert.Equal(t, "12.50", p.Total)
	assert.Equal(t, 1, p.Items)
}

func TestToStatusChangedPayload(t *testing.T) {
	p := toStatusChangedPayload("o-1", StatusPending, StatusProcessing)
	assert.Equal(t, "PENDING", p.From)
	assert.Equal(t, "PROCESSING", p.To)
}
