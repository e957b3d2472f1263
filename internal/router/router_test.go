package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"arcadeorders/internal/config"
	"arcadeorders/internal/model"
	"arcadeorders/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

type apiEnv struct {
	engine *gin.Engine
	db     *gorm.DB
	admin  string // access token
	client string // access token
	user   *model.User
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.MinCost)
	require.NoError(t, err)
	admin := &model.User{Email: "admin@arcade.test", Name: "Admin", PasswordHash: string(hash), Role: model.RoleAdmin, Active: true}
	client := &model.User{Email: "cliente@arcade.test", Name: "Cliente", PasswordHash: string(hash), Role: model.RoleClient, Active: true}
	require.NoError(t, db.Create(admin).Error)
	require.NoError(t, db.Create(client).Error)

	cfg := &config.Config{
		Env:                "test",
		JWTSecret:          "test-secret-key-with-enough-length",
		JWTExpirationHours: 1,
		JWTRefreshHours:    2,
		DebitPolicy:        config.DebitOnDelivery,
		BusinessName:       "Arcade Test",
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	env := &apiEnv{engine: New(ctx, cfg, db, nil), db: db, user: client}
	env.admin = env.login(t, "admin@arcade.test")
	env.client = env.login(t, "cliente@arcade.test")
	return env
}

func (e *apiEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf *bytes.Buffer
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewBuffer(b)
	} else {
		buf = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *apiEnv) login(t *testing.T, email string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/v1/auth/login", map[string]string{"email": email, "password": "secreto123"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	decode(t, w, &resp)
	return resp.AccessToken
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	decode(t, w, &body)
	return body.Code
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	env := newAPIEnv(t)
	w := env.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	decode(t, w, &body)
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "disabled", body["redis"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAuthErrors(t *testing.T) {
	env := newAPIEnv(t)

	w := env.do(t, http.MethodPost, "/v1/auth/login", map[string]string{"email": "admin@arcade.test", "password": "incorrecta"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/v1/auth/login", map[string]string{"email": "no-es-email"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(t, http.MethodGet, "/v1/orders", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/v1/clients", nil, env.client)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, w))
}

func TestOrderDeliveryPaymentFlow(t *testing.T) {
	env := newAPIEnv(t)

	// product
	w := env.do(t, http.MethodPost, "/v1/products", map[string]any{
		"name": "Bartop", "category": "arcade", "base_price": "100", "led_surcharge": "20",
	}, env.admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var product struct {
		ID       string `json:"id"`
		Variants []struct {
			ID string `json:"id"`
		} `json:"variants"`
	}
	decode(t, w, &product)
	require.Len(t, product.Variants, 1)

	// the client orders for themselves
	w = env.do(t, http.MethodPost, "/v1/orders", map[string]any{
		"items": []map[string]any{{"variant_id": product.Variants[0].ID, "quantity": 5, "buttons_type": "LED"}},
	}, env.client)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order struct {
		ID     string `json:"id"`
		Total  string `json:"total"`
		Status string `json:"status"`
		Items  []struct {
			ID    string `json:"id"`
			Price string `json:"price"`
		} `json:"items"`
	}
	decode(t, w, &order)
	assert.Equal(t, "600", order.Total)
	assert.Equal(t, model.OrderPending, order.Status)
	itemID := order.Items[0].ID

	// clients cannot register deliveries
	w = env.do(t, http.MethodPost, "/v1/orders/"+order.ID+"/deliveries", map[string]any{
		"items": []map[string]any{{"item_id": itemID, "quantity": 1}},
	}, env.client)
	assert.Equal(t, http.StatusForbidden, w.Code)

	delivery := map[string]any{
		"items":           []map[string]any{{"item_id": itemID, "quantity": 3}},
		"idempotency_key": "remito-001",
	}
	w = env.do(t, http.MethodPost, "/v1/orders/"+order.ID+"/deliveries", delivery, env.admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var dr struct {
		Status         string `json:"status"`
		DeliveredValue string `json:"delivered_value"`
		Replayed       bool   `json:"replayed"`
	}
	decode(t, w, &dr)
	assert.Equal(t, model.OrderPartiallyDelivered, dr.Status)
	assert.Equal(t, "360", dr.DeliveredValue)

	// retry with the same key replays
	w = env.do(t, http.MethodPost, "/v1/orders/"+order.ID+"/deliveries", delivery, env.admin)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &dr)
	assert.True(t, dr.Replayed)

	// over-delivery
	w = env.do(t, http.MethodPost, "/v1/orders/"+order.ID+"/deliveries", map[string]any{
		"items": []map[string]any{{"item_id": itemID, "quantity": 3}},
	}, env.admin)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, w))

	// payment, then replay
	payment := map[string]any{
		"client_id": env.user.ID.String(), "amount": "160", "method": "TRANSFER", "idempotency_key": "pago-001",
	}
	w = env.do(t, http.MethodPost, "/v1/payments", payment, env.admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = env.do(t, http.MethodPost, "/v1/payments", payment, env.admin)
	require.Equal(t, http.StatusOK, w.Code)

	// statement
	w = env.do(t, http.MethodGet, "/v1/me/statement", nil, env.client)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var st struct {
		Balance   string `json:"balance"`
		Movements []struct {
			Kind string `json:"kind"`
		} `json:"movements"`
	}
	decode(t, w, &st)
	assert.Equal(t, "200", st.Balance)
	assert.Len(t, st.Movements, 2)

	w = env.do(t, http.MethodGet, "/v1/clients/"+env.user.ID.String()+"/statement.pdf", nil, env.admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))

	// referenced product cannot be deleted
	w = env.do(t, http.MethodDelete, "/v1/products/"+product.ID, nil, env.admin)
	assert.Equal(t, http.StatusConflict, w.Code)

	// manual completion
	w = env.do(t, http.MethodPatch, "/v1/orders/"+order.ID+"/status", map[string]any{"status": "DELIVERED"}, env.admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &order)
	assert.Equal(t, model.OrderDelivered, order.Status)
}

func TestRequestErrors(t *testing.T) {
	env := newAPIEnv(t)

	w := env.do(t, http.MethodGet, "/v1/orders/not-a-uuid", nil, env.admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/v1/orders/00000000-0000-0000-0000-000000000001", nil, env.admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))

	req := httptest.NewRequest(http.MethodPost, "/v1/products/bulk-price", bytes.NewBufferString("{broken"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+env.admin)
	rec := httptest.NewRecorder()
	env.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	w = env.do(t, http.MethodPost, "/v1/products/bulk-price", map[string]any{"percentage": "-150"}, env.admin)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(t, http.MethodPatch, "/v1/order-items/00000000-0000-0000-0000-000000000001/ready", map[string]any{}, env.admin)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "is_ready is required")
}
