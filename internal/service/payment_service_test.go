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

func paymentReq(client *model.User, amount string, key *string) dto.RegisterPaymentRequest {
	return dto.RegisterPaymentRequest{
		ClientID:       client.ID.String(),
		Amount:         testutil.Dec(amount),
		Method:         model.PaymentTransfer,
		IdempotencyKey: key,
	}
}

func TestRegisterPayment_CreditsExactAmount(t *testing.T) {
	env := newDeliveryEnv(t)
	client := testutil.SeedClient(t, env.db, testutil.ClientOpts{})

	resp, err := env.payments.RegisterPayment(context.Background(), paymentReq(client, "250.75", nil))
	require.NoError(t, err)
	assert.False(t, resp.Replayed)
	assert.Equal(t, model.PaymentTypeGeneral, resp.Type)
	assertDecimal(t, "-250.75", env.balance(t, client))

	var m model.BalanceMovement
	require.NoError(t, env.db.Where("user_id = ?", client.ID).First(&m).Error)
	assert.Equal(t, model.MovementPayment, m.Kind)
	assertDecimal(t, "-250.75", m.Amount)
	require.NotNil(t, m.ReferenceID)
	assert.Equal(t, resp.ID, m.ReferenceID.String())
}

func TestRegisterPayment_Idempotence(t *testing.T) {
	env := newDeliveryEnv(t)
	client := testutil.SeedClient(t, env.db, testutil.ClientOpts{})
	ctx := context.Background()

	// without a key the same payload is two payments
	_, err := env.payments.RegisterPayment(ctx, paymentReq(client, "100", nil))
	require.NoError(t, err)
	_, err = env.payments.RegisterPayment(ctx, paymentReq(client, "100", nil))
	require.NoError(t, err)
	assertDecimal(t, "-200", env.balance(t, client))

	key := strPtr("pago-7")
	first, err := env.payments.RegisterPayment(ctx, paymentReq(client, "50", key))
	require.NoError(t, err)
	second, err := env.payments.RegisterPayment(ctx, paymentReq(client, "50", key))
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.ID, second.ID)
	assertDecimal(t, "-250", env.balance(t, client))

	var n int64
	require.NoError(t, env.db.Model(&model.Payment{}).Count(&n).Error)
	assert.EqualValues(t, 3, n)
}

func TestRegisterPayment_KeyOfAnotherClientRejected(t *testing.T) {
	env := newDeliveryEnv(t)
	a := testutil.SeedClient(t, env.db, testutil.ClientOpts{})
	b := testutil.SeedClient(t, env.db, testutil.ClientOpts{})
	key := strPtr("pago-compartido")

	_, err := env.payments.RegisterPayment(context.Background(), paymentReq(a, "10", key))
	require.NoError(t, err)
	_, err = env.payments.RegisterPayment(context.Background(), paymentReq(b, "10", key))
	assert.True(t, errors.Is(err, ErrValidation))
	assert.True(t, env.balance(t, b).IsZero())
}

func TestRegisterPayment_Validation(t *testing.T) {
	env := newDeliveryEnv(t)
	client := testutil.SeedClient(t, env.db, testutil.ClientOpts{})
	ctx := context.Background()

	for _, amount := range []string{"0", "-5", "10.001"} {
		_, err := env.payments.RegisterPayment(ctx, paymentReq(client, amount, nil))
		assert.Truef(t, errors.Is(err, ErrValidation), "amount %s", amount)
	}

	req := paymentReq(client, "10", nil)
	req.ClientID = uuid.NewString()
	_, err := env.payments.RegisterPayment(ctx, req)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, env.balance(t, client).IsZero())
}

func TestListPayments_ClientSeesOwn(t *testing.T) {
	env := newDeliveryEnv(t)
	a := testutil.SeedClient(t, env.db, testutil.ClientOpts{})
	b := testutil.SeedClient(t, env.db, testutil.ClientOpts{})
	ctx := context.Background()
	_, err := env.payments.RegisterPayment(ctx, paymentReq(a, "10", nil))
	require.NoError(t, err)
	_, err = env.payments.RegisterPayment(ctx, paymentReq(b, "20", nil))
	require.NoError(t, err)

	own, err := env.payments.ListPayments(ctx, Actor{UserID: a.ID, Role: model.RoleClient}, dto.PaymentFilter{})
	require.NoError(t, err)
	require.Len(t, own.Data, 1)
	assert.Equal(t, a.ID.String(), own.Data[0].ClientID)

	all, err := env.payments.ListPayments(ctx, env.admin, dto.PaymentFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)
}

func TestRegisterPayment_OnlyClientsArePayees(t *testing.T) {
	env := newDeliveryEnv(t)
	admin := testutil.SeedAdmin(t, env.db)
	ctx := context.Background()

	_, err := env.payments.RegisterPayment(ctx, paymentReq(admin, "100", nil))
	assert.True(t, errors.Is(err, ErrValidation))
	assert.True(t, env.balance(t, admin).IsZero())

	var n int64
	require.NoError(t, env.db.Model(&model.Payment{}).Count(&n).Error)
	assert.Zero(t, n)

	// a deactivated client can still settle debt
	inactive := testutil.SeedClient(t, env.db, testutil.ClientOpts{Inactive: true})
	_, err = env.payments.RegisterPayment(ctx, paymentReq(inactive, "40", nil))
	require.NoError(t, err)
	assertDecimal(t, "-40", env.balance(t, inactive))
}
