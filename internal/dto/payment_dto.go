package dto

import "github.com/shopspring/decimal"

type RegisterPaymentRequest struct {
	ClientID       string          `json:"client_id"       validate:"required,uuid"`
	Amount         decimal.Decimal `json:"amount"          validate:"required"`
	Method         string          `json:"method"          validate:"required,oneof=CASH TRANSFER OTHER"`
	Type           string          `json:"type"            validate:"omitempty,oneof=GENERAL DEPOSIT PARTIAL FULL"`
	Notes          *string         `json:"notes"           validate:"omitempty,max=500"`
	IdempotencyKey *string         `json:"idempotency_key" validate:"omitempty,min=1,max=100"`
}

type PaymentFilter struct {
	ClientID string `form:"client_id" validate:"omitempty,uuid"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type PaymentResponse struct {
	ID         string          `json:"id"`
	ClientID   string          `json:"client_id"`
	ClientName string          `json:"client_name,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Type       string          `json:"type"`
	Notes      *string         `json:"notes"`
	Replayed   bool            `json:"replayed"`
	CreatedAt  string          `json:"created_at"`
}

type PaymentListResponse struct {
	Data  []PaymentResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
