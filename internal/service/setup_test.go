package service

import (
	"context"
	"testing"

	"arcadeorders/internal/config"
	"arcadeorders/internal/dto"
	"arcadeorders/internal/model"
	"arcadeorders/internal/repository"
	"arcadeorders/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testEnv wires every service against one in-memory database. Notifications
// and the catalog cache run without Redis.
type testEnv struct {
	db         *gorm.DB
	ledger     LedgerService
	orders     OrderService
	deliveries DeliveryService
	payments   PaymentService
	products   ProductService
	clients    ClientService
	admin      Actor
}

func newTestEnv(t *testing.T, policy string) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)

	users := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	deliveryRepo := repository.NewDeliveryRepository(db)
	productRepo := repository.NewProductRepository(db)
	ledger := NewLedgerService(repository.NewLedgerRepository(db), users)

	admin := testutil.SeedAdmin(t, db)
	return &testEnv{
		db:         db,
		ledger:     ledger,
		orders:     NewOrderService(orderRepo, productRepo, users, deliveryRepo, ledger, nil, policy),
		deliveries: NewDeliveryService(orderRepo, deliveryRepo, users, ledger, nil, policy),
		payments:   NewPaymentService(repository.NewPaymentRepository(db), users, ledger, nil),
		products:   NewProductService(productRepo, orderRepo, repository.NewPriceHistoryRepository(db), users, nil),
		clients:    NewClientService(users, ledger, "Arcade Test"),
		admin:      Actor{UserID: admin.ID, Role: model.RoleAdmin},
	}
}

func newDeliveryEnv(t *testing.T) *testEnv { return newTestEnv(t, config.DebitOnDelivery) }

// orderLine describes one item of an order built by placeOrder.
type orderLine struct {
	variant *model.ProductVariant
	qty     int
	buttons string
}

// placeOrder creates an order as admin on behalf of client.
func (e *testEnv) placeOrder(t *testing.T, client *model.User, lines ...orderLine) *dto.OrderResponse {
	t.Helper()
	req := dto.CreateOrderRequest{ClientID: client.ID.String()}
	for _, l := range lines {
		req.Items = append(req.Items, dto.OrderItemRequest{VariantID: l.variant.ID.String(), Quantity: l.qty, ButtonsType: l.buttons})
	}
	resp, err := e.orders.CreateOrder(context.Background(), e.admin, req)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) balance(t *testing.T, u *model.User) decimal.Decimal {
	return testutil.Balance(t, e.db, u.ID)
}

func (e *testEnv) loadOrder(t *testing.T, id string) *dto.OrderResponse {
	t.Helper()
	o, err := e.orders.GetOrder(context.Background(), e.admin, mustUUID(t, id))
	require.NoError(t, err)
	return o
}

// itemFor finds the order line for a variant.
func itemFor(t *testing.T, o *dto.OrderResponse, v *model.ProductVariant) dto.OrderItemResponse {
	t.Helper()
	for _, it := range o.Items {
		if it.VariantID == v.ID.String() {
			return it
		}
	}
	t.Fatalf("no item for variant %s", v.ID)
	return dto.OrderItemResponse{}
}

func deliver(itemID string, qty int) dto.DeliveryItemRequest {
	return dto.DeliveryItemRequest{ItemID: itemID, Quantity: qty}
}

func strPtr(s string) *string { return &s }

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	require.Truef(t, testutil.Dec(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}
