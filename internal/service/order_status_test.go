package service

import (
	"errors"
	"testing"

	"arcadeorders/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStatus(t *testing.T) {
	st, err := NormalizeStatus(" in_preparation ")
	require.NoError(t, err)
	assert.Equal(t, model.OrderInProduction, st)

	st, err = NormalizeStatus("canceled")
	require.NoError(t, err)
	assert.Equal(t, model.OrderCanceled, st)

	_, err = NormalizeStatus("SHIPPED")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestCheckManualTransition(t *testing.T) {
	allowed := [][2]string{
		{model.OrderPending, model.OrderInProduction},
		{model.OrderPending, model.OrderCanceled},
		{model.OrderPending, model.OrderDelivered},
		{model.OrderInProduction, model.OrderPending},
		{model.OrderInProduction, model.OrderDelivered},
		{model.OrderPartiallyDelivered, model.OrderDelivered},
		{model.OrderPartiallyDelivered, model.OrderCanceled},
	}
	for _, tr := range allowed {
		assert.NoErrorf(t, checkManualTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	rejected := [][2]string{
		{model.OrderPending, model.OrderPartiallyDelivered},
		{model.OrderPartiallyDelivered, model.OrderPending},
		{model.OrderPartiallyDelivered, model.OrderInProduction},
		{model.OrderDelivered, model.OrderCanceled},
		{model.OrderDelivered, model.OrderPending},
		{model.OrderCanceled, model.OrderPending},
		{model.OrderCanceled, model.OrderDelivered},
	}
	for _, tr := range rejected {
		err := checkManualTransition(tr[0], tr[1])
		assert.Truef(t, errors.Is(err, ErrValidation), "%s -> %s should be rejected", tr[0], tr[1])
	}
}

func TestDeriveDeliveryStatus(t *testing.T) {
	items := func(pairs ...int) []model.OrderItem {
		var out []model.OrderItem
		for i := 0; i < len(pairs); i += 2 {
			out = append(out, model.OrderItem{Quantity: pairs[i], DeliveredQuantity: pairs[i+1]})
		}
		return out
	}

	assert.Equal(t, model.OrderInProduction, deriveDeliveryStatus(model.OrderInProduction, items(5, 0, 2, 0)))
	assert.Equal(t, model.OrderPartiallyDelivered, deriveDeliveryStatus(model.OrderPending, items(5, 3, 2, 0)))
	assert.Equal(t, model.OrderDelivered, deriveDeliveryStatus(model.OrderPartiallyDelivered, items(5, 5, 2, 2)))
	assert.Equal(t, model.OrderPending, deriveDeliveryStatus(model.OrderPending, nil))
	assert.True(t, IsTerminal(model.OrderDelivered))
	assert.True(t, IsTerminal(model.OrderCanceled))
	assert.False(t, IsTerminal(model.OrderPartiallyDelivered))
}
