package service

import (
	"context"
	"errors"
	"testing"

	"arcadeorders/internal/dto"
	"arcadeorders/internal/model"
	"arcadeorders/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deliveryFixture is a client with one order of a single product line.
type deliveryFixture struct {
	env     *testEnv
	client  *model.User
	variant *model.ProductVariant
	order   *dto.OrderResponse
	itemID  string
}

func newDeliveryFixture(t *testing.T, qty int, price string) *deliveryFixture {
	t.Helper()
	env := newDeliveryEnv(t)
	client := testutil.SeedClient(t, env.db, testutil.ClientOpts{})
	p := testutil.SeedProduct(t, env.db, "Bartop", "arcade", testutil.Dec(price), testutil.Dec("0"))
	v := &p.Variants[0]
	order := env.placeOrder(t, client, orderLine{variant: v, qty: qty})
	return &deliveryFixture{env: env, client: client, variant: v, order: order, itemID: order.Items[0].ID}
}

func (f *deliveryFixture) deliver(t *testing.T, qty int, key *string) (*dto.DeliveryResponse, error) {
	t.Helper()
	return f.env.deliveries.RegisterDelivery(context.Background(), mustUUID(t, f.order.ID), dto.RegisterDeliveryRequest{
		Items:          []dto.DeliveryItemRequest{deliver(f.itemID, qty)},
		IdempotencyKey: key,
	})
}

func TestRegisterDelivery_OverDeliveryRejected(t *testing.T) {
	f := newDeliveryFixture(t, 5, "100")
	_, err := f.deliver(t, 3, nil)
	require.NoError(t, err)

	_, err = f.deliver(t, 3, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	o := f.env.loadOrder(t, f.order.ID)
	assert.Equal(t, 3, o.Items[0].DeliveredQuantity)
	assert.Equal(t, model.OrderPartiallyDelivered, o.Status)
	assertDecimal(t, "300", f.env.balance(t, f.client))
}

func TestRegisterDelivery_FullDeliveryAcrossCalls(t *testing.T) {
	f := newDeliveryFixture(t, 4, "50")

	resp, err := f.deliver(t, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPartiallyDelivered, resp.Status)

	resp, err = f.deliver(t, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, model.OrderDelivered, resp.Status)
	assertDecimal(t, "150", resp.DeliveredValue)

	o := f.env.loadOrder(t, f.order.ID)
	assert.Equal(t, model.OrderDelivered, o.Status)
	assert.Equal(t, 4, o.Items[0].DeliveredQuantity)
	assertDecimal(t, "200", f.env.balance(t, f.client))
}

func TestRegisterDelivery_DebitsPriceTimesQuantity(t *testing.T) {
	f := newDeliveryFixture(t, 10, "123.45")

	resp, err := f.deliver(t, 3, nil)
	require.NoError(t, err)
	assertDecimal(t, "370.35", resp.DeliveredValue)
	assertDecimal(t, "370.35", f.env.balance(t, f.client))

	var movements []model.BalanceMovement
	require.NoError(t, f.env.db.Where("user_id = ?", f.client.ID).Find(&movements).Error)
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementDelivery, movements[0].Kind)
	assertDecimal(t, "370.35", movements[0].Amount)
}

func TestRegisterDelivery_UsesSnapshotNotLivePrice(t *testing.T) {
	f := newDeliveryFixture(t, 2, "100")
	require.NoError(t, f.env.db.Model(&model.Product{}).Where("id IS NOT NULL").Update("base_price", 999).Error)

	_, err := f.deliver(t, 2, nil)
	require.NoError(t, err)
	assertDecimal(t, "200", f.env.balance(t, f.client))
}

func TestRegisterDelivery_ZeroAndUnknownItemsAreNoops(t *testing.T) {
	f := newDeliveryFixture(t, 2, "100")

	resp, err := f.env.deliveries.RegisterDelivery(context.Background(), mustUUID(t, f.order.ID), dto.RegisterDeliveryRequest{
		Items: []dto.DeliveryItemRequest{
			deliver(f.itemID, 0),
			deliver(uuid.NewString(), 5),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderPending, resp.Status)
	assert.True(t, resp.DeliveredValue.IsZero())
	assert.True(t, f.env.balance(t, f.client).IsZero())

	// nothing was handed over, so the order does not move to PARTIALLY_DELIVERED
	o := f.env.loadOrder(t, f.order.ID)
	assert.Equal(t, model.OrderPending, o.Status)
	require.Len(t, o.Deliveries, 1)
	assert.Empty(t, o.Deliveries[0].Lines)
}

func TestGetOrder_ListsDeliveries(t *testing.T) {
	f := newDeliveryFixture(t, 5, "100")
	_, err := f.deliver(t, 2, strPtr("remito-1"))
	require.NoError(t, err)
	_, err = f.deliver(t, 3, nil)
	require.NoError(t, err)

	o := f.env.loadOrder(t, f.order.ID)
	assert.Equal(t, model.OrderDelivered, o.Status)
	require.Len(t, o.Deliveries, 2)

	var total int
	for _, d := range o.Deliveries {
		require.Len(t, d.Lines, 1)
		assert.Equal(t, f.itemID, d.Lines[0].ItemID)
		total += d.Lines[0].Quantity
	}
	assert.Equal(t, 5, total)
	keyed := o.Deliveries[0]
	if keyed.IdempotencyKey == nil {
		keyed = o.Deliveries[1]
	}
	require.NotNil(t, keyed.IdempotencyKey)
	assert.Equal(t, "remito-1", *keyed.IdempotencyKey)
	assertDecimal(t, "200", keyed.Value)

	// list responses stay light
	list, err := f.env.orders.ListOrders(context.Background(), f.env.admin, dto.OrderFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, list.Data)
	assert.Empty(t, list.Data[0].Deliveries)
}

func TestRegisterDelivery_NegativeQuantityRejected(t *testing.T) {
	f := newDeliveryFixture(t, 2, "100")
	_, err := f.deliver(t, -1, nil)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestRegisterDelivery_UnknownOrderNotFound(t *testing.T) {
	f := newDeliveryFixture(t, 2, "100")
	_, err := f.env.deliveries.RegisterDelivery(context.Background(), uuid.New(), dto.RegisterDeliveryRequest{
		Items: []dto.DeliveryItemRequest{deliver(f.itemID, 1)},
	})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRegisterDelivery_TerminalOrderRejected(t *testing.T) {
	f := newDeliveryFixture(t, 2, "100")
	_, err := f.env.orders.UpdateOrderStatus(context.Background(), mustUUID(t, f.order.ID), model.OrderCanceled)
	require.NoError(t, err)

	_, err = f.deliver(t, 1, nil)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.True(t, f.env.balance(t, f.client).IsZero())
}

func TestRegisterDelivery_WithoutKeyAppliesTwice(t *testing.T) {
	f := newDeliveryFixture(t, 5, "10")
	_, err := f.deliver(t, 2, nil)
	require.NoError(t, err)
	_, err = f.deliver(t, 2, nil)
	require.NoError(t, err)

	o := f.env.loadOrder(t, f.order.ID)
	assert.Equal(t, 4, o.Items[0].DeliveredQuantity)
	assertDecimal(t, "40", f.env.balance(t, f.client))
}

func TestRegisterDelivery_SameKeyAppliedOnce(t *testing.T) {
	f := newDeliveryFixture(t, 5, "10")
	key := strPtr("entrega-42")

	first, err := f.deliver(t, 2, key)
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	second, err := f.deliver(t, 2, key)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.DeliveryID, second.DeliveryID)
	assert.Equal(t, first.Status, second.Status)
	assertDecimal(t, "20", second.DeliveredValue)

	o := f.env.loadOrder(t, f.order.ID)
	assert.Equal(t, 2, o.Items[0].DeliveredQuantity)
	assertDecimal(t, "20", f.env.balance(t, f.client))
}

func TestRegisterDelivery_KeyFromAnotherOrderRejected(t *testing.T) {
	f := newDeliveryFixture(t, 5, "10")
	key := strPtr("entrega-compartida")
	_, err := f.deliver(t, 1, key)
	require.NoError(t, err)

	other := f.env.placeOrder(t, f.client, orderLine{variant: f.variant, qty: 1})
	_, err = f.env.deliveries.RegisterDelivery(context.Background(), mustUUID(t, other.ID), dto.RegisterDeliveryRequest{
		Items:          []dto.DeliveryItemRequest{deliver(other.Items[0].ID, 1)},
		IdempotencyKey: key,
	})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestRegisterDelivery_AtomicAcrossLines(t *testing.T) {
	env := newDeliveryEnv(t)
	client := testutil.SeedClient(t, env.db, testutil.ClientOpts{})
	a := testutil.SeedProduct(t, env.db, "Bartop", "arcade", testutil.Dec("100"), testutil.Dec("0"))
	b := testutil.SeedProduct(t, env.db, "Pedestal", "arcade", testutil.Dec("50"), testutil.Dec("0"))
	order := env.placeOrder(t, client,
		orderLine{variant: &a.Variants[0], qty: 2},
		orderLine{variant: &b.Variants[0], qty: 1},
	)
	itemA := itemFor(t, order, &a.Variants[0])
	itemB := itemFor(t, order, &b.Variants[0])

	_, err := env.deliveries.RegisterDelivery(context.Background(), mustUUID(t, order.ID), dto.RegisterDeliveryRequest{
		Items: []dto.DeliveryItemRequest{
			deliver(itemA.ID, 2),
			deliver(itemB.ID, 5),
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	reloaded := env.loadOrder(t, order.ID)
	assert.Equal(t, 0, itemFor(t, reloaded, &a.Variants[0]).DeliveredQuantity)
	assert.Equal(t, 0, itemFor(t, reloaded, &b.Variants[0]).DeliveredQuantity)
	assert.Equal(t, model.OrderPending, reloaded.Status)
	assert.True(t, env.balance(t, client).IsZero())

	var deliveries int64
	require.NoError(t, env.db.Model(&model.Delivery{}).Count(&deliveries).Error)
	assert.Zero(t, deliveries)
}
