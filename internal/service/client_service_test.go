package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"arcadeorders/internal/dto"
	"arcadeorders/internal/model"
	"arcadeorders/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateClient_OpeningBalanceAndDuplicates(t *testing.T) {
	env := newDeliveryEnv(t)
	ctx := context.Background()
	opening := testutil.Dec("1200.50")
	surcharge := testutil.Dec("12.5")

	resp, err := env.clients.CreateClient(ctx, dto.CreateClientRequest{
		Email:               "Local@Arcade.test",
		Name:                "Local Centro",
		Password:            "secreto123",
		IsRetailer:          true,
		SurchargePercentage: &surcharge,
		AllowedCategories:   []string{"arcade", " arcade ", "pinball"},
		OpeningBalance:      &opening,
	})
	require.NoError(t, err)
	assert.Equal(t, "local@arcade.test", resp.Email)
	assert.Equal(t, []string{"arcade", "pinball"}, resp.AllowedCategories)
	assertDecimal(t, "1200.50", resp.Balance)

	st, err := env.clients.Statement(ctx, mustUUID(t, resp.ID))
	require.NoError(t, err)
	require.Len(t, st.Movements, 1)
	assert.Equal(t, model.MovementOpening, st.Movements[0].Kind)

	_, err = env.clients.CreateClient(ctx, dto.CreateClientRequest{
		Email:    "local@arcade.test",
		Name:     "Duplicado",
		Password: "secreto123",
	})
	assert.True(t, errors.Is(err, ErrIntegrity))

	negative := testutil.Dec("-1")
	_, err = env.clients.CreateClient(ctx, dto.CreateClientRequest{
		Email: "otro@arcade.test", Name: "Otro", Password: "secreto123", SurchargePercentage: &negative,
	})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestUpdateClient(t *testing.T) {
	env := newDeliveryEnv(t)
	client := testutil.SeedClient(t, env.db, testutil.ClientOpts{})
	ctx := context.Background()
	inactive := false
	retailer := true

	resp, err := env.clients.UpdateClient(ctx, client.ID, dto.UpdateClientRequest{
		Name:              strPtr("Nuevo Nombre"),
		IsRetailer:        &retailer,
		Active:            &inactive,
		AllowedCategories: []string{"arcade"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Nuevo Nombre", resp.Name)
	assert.True(t, resp.IsRetailer)
	assert.False(t, resp.Active)
	assert.Equal(t, []string{"arcade"}, resp.AllowedCategories)

	list, err := env.clients.ListClients(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, list)
	list, err = env.clients.ListClients(ctx, true)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = env.clients.UpdateClient(ctx, uuid.New(), dto.UpdateClientRequest{Name: strPtr("x y")})
	assert.True(t, errors.Is(err, ErrNotFound))

	// admins are not clients
	_, err = env.clients.GetClient(ctx, env.admin.UserID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStatement_RunningBalance(t *testing.T) {
	env := newDeliveryEnv(t)
	client := testutil.SeedClient(t, env.db, testutil.ClientOpts{})
	p := testutil.SeedProduct(t, env.db, "Bartop", "", testutil.Dec("100"), testutil.Dec("0"))
	ctx := context.Background()

	order := env.placeOrder(t, client, orderLine{variant: &p.Variants[0], qty: 3})
	_, err := env.deliveries.RegisterDelivery(ctx, mustUUID(t, order.ID), dto.RegisterDeliveryRequest{
		Items: []dto.DeliveryItemRequest{deliver(order.Items[0].ID, 3)},
	})
	require.NoError(t, err)
	_, err = env.payments.RegisterPayment(ctx, paymentReq(client, "120", nil))
	require.NoError(t, err)

	st, err := env.clients.Statement(ctx, client.ID)
	require.NoError(t, err)
	assertDecimal(t, "180", st.Balance)
	require.Len(t, st.Movements, 2)

	// newest first
	assert.Equal(t, model.MovementPayment, st.Movements[0].Kind)
	assertDecimal(t, "180", st.Movements[0].RunningBalance)
	assert.Equal(t, model.MovementDelivery, st.Movements[1].Kind)
	assertDecimal(t, "300", st.Movements[1].RunningBalance)

	// balance equals the sum of movements
	sum := decimal.Zero
	for _, m := range st.Movements {
		sum = sum.Add(m.Amount)
	}
	assert.True(t, sum.Equal(st.Balance))

	pdf, err := env.clients.StatementPDF(ctx, client.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestLedger_RejectsNonPositiveAmounts(t *testing.T) {
	env := newDeliveryEnv(t)
	client := testutil.SeedClient(t, env.db, testutil.ClientOpts{})
	ctx := context.Background()

	err := env.ledger.Debit(ctx, env.db, client.ID, decimal.Zero, model.MovementDelivery, nil, "x")
	assert.True(t, errors.Is(err, ErrValidation))
	err = env.ledger.Credit(ctx, env.db, client.ID, testutil.Dec("-1"), model.MovementPayment, nil, "x")
	assert.True(t, errors.Is(err, ErrValidation))

	err = env.ledger.Debit(ctx, env.db, uuid.New(), testutil.Dec("10"), model.MovementDelivery, nil, "x")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, env.ledger.Opening(ctx, env.db, client.ID, decimal.Zero))
	var n int64
	require.NoError(t, env.db.Model(&model.BalanceMovement{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestStatement_FlagsBalanceDrift(t *testing.T) {
	env := newDeliveryEnv(t)
	client := testutil.SeedClient(t, env.db, testutil.ClientOpts{})
	ctx := context.Background()

	_, err := env.payments.RegisterPayment(ctx, paymentReq(client, "75.50", nil))
	require.NoError(t, err)
	st, err := env.clients.Statement(ctx, client.ID)
	require.NoError(t, err)
	assert.True(t, st.Reconciled)

	// a write that bypasses the ledger leaves the balance unexplained
	require.NoError(t, env.db.Model(&model.User{}).Where("id = ?", client.ID).
		Update("balance", testutil.Dec("10")).Error)
	st, err = env.clients.Statement(ctx, client.ID)
	require.NoError(t, err)
	assert.False(t, st.Reconciled)
	assertDecimal(t, "10", st.Balance)
}
