package events

import (
	"context"
	"errors"
	"testing"

	"fastfood-be/internal/logger"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestNewAndDecode(t *testing.T) {
	ev, err := New(TypeOrderStatusChanged, "order-1", StatusChangedPayload{OrderID: "order-1", From: "PENDING", To: "PROCESSING"})
	require.NoError(t, err)

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, 1, ev.Version)
	assert.Equal(t, "order-1", ev.Key)

	p, err := Decode[StatusChangedPayload](ev)
	require.NoError(t, err)
	assert.Equal(t, "PROCESSING", p.To)

	_, err = New(TypeOrderCreated, "k", make(chan int))
	assert.Error(t, err)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	ctx := context.Background()
	ev, err := New(TypeInventoryAlert, "order-7", InventoryAlertPayload{OrderID: "order-7", Reason: ReasonInsufficientStock})
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		w := &fakeWriter{}
		p := NewKafkaPublisherWithWriter(w)

		require.NoError(t, p.Publish(ctx, ev))
		require.Len(t, w.msgs, 1)
		assert.Equal(t, []byte("order-7"), w.msgs[0].Key)
		assert.Equal(t, "x-event-type", w.msgs[0].Headers[0].Key)
		assert.Equal(t, []byte(TypeInventoryAlert), w.msgs[0].Headers[0].Value)
		assert.Contains(t, string(w.msgs[0].Value), ReasonInsufficientStock)

		require.NoError(t, p.Close())
		assert.True(t, w.closed)
	})

	t.Run("BrokerError", func(t *testing.T) {
		p := NewKafkaPublisherWithWriter(&fakeWriter{err: errors.New("leader not available")})

		err := p.Publish(ctx, ev)
		assert.ErrorContains(t, err, "publish inventory.alert")
	})
}

func TestLogPublisher(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	restore := logger.Replace(zap.New(core))
	defer restore()

	alert, _ := New(TypeLowStock, "12", LowStockPayload{IngredientID: 12, Quantity: 1, MinThreshold: 10})
	created, _ := New(TypeOrderCreated, "o-1", OrderCreatedPayload{OrderID: "o-1"})

	require.NoError(t, LogPublisher{}.Publish(context.Background(), alert))
	require.NoError(t, LogPublisher{}.Publish(context.Background(), created))

	logs := observed.TakeAll()
	require.Len(t, logs, 2)
	assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
	assert.Equal(t, TypeLowStock, logs[0].ContextMap()["event_type"])
	assert.Equal(t, zapcore.InfoLevel, logs[1].Level)
}
