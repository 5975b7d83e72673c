package order

import (
	"testing"

	"fastfood-be/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	all := []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered}
	allowed := map[[2]Status]bool{
		{StatusPending, StatusProcessing}: true,
		{StatusProcessing, StatusShipped}: true,
		{StatusShipped, StatusDelivered}:  true,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]Status{from, to}]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}

	assert.False(t, CanTransition("UNKNOWN", StatusProcessing))
	assert.False(t, CanTransition(StatusPending, "UNKNOWN"))
}

func TestNext(t *testing.T) {
	next, ok := Next(StatusPending)
	assert.True(t, ok)
	assert.Equal(t, StatusProcessing, next)

	next, ok = Next(StatusShipped)
	assert.True(t, ok)
	assert.Equal(t, StatusDelivered, next)

	_, ok = Next(StatusDelivered)
	assert.False(t, ok)
}

func TestParseStatus(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		st, err := ParseStatus("processing")
		require.NoError(t, err)
		assert.Equal(t, StatusProcessing, st)

		st, err = ParseStatus(" DELIVERED ")
		require.NoError(t, err)
		assert.Equal(t, StatusDelivered, st)
	})

	t.Run("Invalid", func(t *testing.T) {
		for _, in := range []string{"", "CANCELLED", "shipping"} {
			_, err := ParseStatus(in)
			assert.ErrorIs(t, err, ErrInvalidStatus)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		}
	})
}

func TestListFilterNormalized(t *testing.T) {
	assert.Equal(t, DefaultListLimit, ListFilter{}.normalized().Limit)
	assert.Equal(t, MaxListLimit, ListFilter{Limit: 1000}.normalized().Limit)
	assert.Equal(t, 0, ListFilter{Offset: -5}.normalized().Offset)
	assert.Equal(t, 7, ListFilter{Limit: 7}.normalized().Limit)
}
