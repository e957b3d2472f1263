package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// OrderFilter is bound from the query string of GET /v1/orders.
type OrderFilter struct {
	ClientID string `form:"client_id" validate:"omitempty,uuid"`
	Status   string `form:"status"`                          // empty = all
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type OrderListResponse struct {
	Data  []OrderResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OrderItemRequest struct {
	VariantID   string `json:"variant_id"   validate:"required,uuid"`
	Quantity    int    `json:"quantity"     validate:"required,min=1"`
	ButtonsType string `json:"buttons_type" validate:"omitempty,oneof=COMMON LED"`
}

type CreateOrderRequest struct {
	// ClientID is honored for admins only; clients always order for themselves.
	ClientID string             `json:"client_id" validate:"omitempty,uuid"`
	Items    []OrderItemRequest `json:"items"     validate:"required,min=1,dive"`
	Notes    *string            `json:"notes"     validate:"omitempty,max=500"`
}

type DeliveryItemRequest struct {
	ItemID   string `json:"item_id"  validate:"required,uuid"`
	Quantity int    `json:"quantity"`
}

type RegisterDeliveryRequest struct {
	Items []DeliveryItemRequest `json:"items" validate:"required,min=1,dive"`
	// IdempotencyKey makes a retried submission return the first result.
	IdempotencyKey *string `json:"idempotency_key" validate:"omitempty,min=1,max=100"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type ToggleItemReadyRequest struct {
	IsReady *bool `json:"is_ready" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OrderItemResponse struct {
	ID                   string          `json:"id"`
	VariantID            string          `json:"variant_id"`
	ProductName          string          `json:"product_name"`
	VariantName          string          `json:"variant_name"`
	Quantity             int             `json:"quantity"`
	DeliveredQuantity    int             `json:"delivered_quantity"`
	Price                decimal.Decimal `json:"price"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	ButtonsType          string          `json:"buttons_type"`
	LEDSurchargeSnapshot decimal.Decimal `json:"led_surcharge_snapshot"`
	IsReady              bool            `json:"is_ready"`
}

type OrderResponse struct {
	ID         string              `json:"id"`
	ClientID   string              `json:"client_id"`
	ClientName string              `json:"client_name,omitempty"`
	Total      decimal.Decimal     `json:"total"`
	Status     string              `json:"status"`
	Notes      *string             `json:"notes"`
	Items      []OrderItemResponse `json:"items"`
	CreatedAt  string              `json:"created_at"`
	// Deliveries is only filled when a single order is fetched.
	Deliveries []DeliveryRecordResponse `json:"deliveries,omitempty"`
}

// DeliveryRecordResponse is one registered delivery of an order.
type DeliveryRecordResponse struct {
	ID             string                 `json:"id"`
	IdempotencyKey *string                `json:"idempotency_key,omitempty"`
	ResultStatus   string                 `json:"result_status"`
	Value          decimal.Decimal        `json:"value"`
	Lines          []DeliveryLineResponse `json:"lines"`
	CreatedAt      string                 `json:"created_at"`
}

type DeliveryLineResponse struct {
	ItemID   string          `json:"item_id"`
	Quantity int             `json:"quantity"`
	Value    decimal.Decimal `json:"value"`
}

type DeliveryResponse struct {
	DeliveryID     string          `json:"delivery_id,omitempty"`
	OrderID        string          `json:"order_id"`
	Status         string          `json:"status"`
	DeliveredValue decimal.Decimal `json:"delivered_value"`
	Replayed       bool            `json:"replayed"`
}

// ProductionItemResponse is one row of the production queue.
type ProductionItemResponse struct {
	ItemID         string `json:"item_id"`
	OrderID        string `json:"order_id"`
	ClientName     string `json:"client_name"`
	ProductName    string `json:"product_name"`
	VariantName    string `json:"variant_name"`
	Quantity       int    `json:"quantity"`
	ButtonsType    string `json:"buttons_type"`
	OrderStatus    string `json:"order_status"`
	OrderCreatedAt string `json:"order_created_at"`
}
