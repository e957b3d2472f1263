package dto

import "github.com/shopspring/decimal"

type CreateClientRequest struct {
	Email               string           `json:"email"                validate:"required,email"`
	Name                string           `json:"name"                 validate:"required,min=2,max=120"`
	Phone               *string          `json:"phone"                validate:"omitempty,max=40"`
	Password            string           `json:"password"             validate:"required,min=8"`
	IsRetailer          bool             `json:"is_retailer"`
	SurchargePercentage *decimal.Decimal `json:"surcharge_percentage"`
	AllowedCategories   []string         `json:"allowed_categories"   validate:"omitempty,dive,min=1"`
	// OpeningBalance is recorded as an OPENING movement (positive = owes).
	OpeningBalance *decimal.Decimal `json:"opening_balance"`
}

type UpdateClientRequest struct {
	Name                *string          `json:"name"                 validate:"omitempty,min=2,max=120"`
	Phone               *string          `json:"phone"                validate:"omitempty,max=40"`
	Password            *string          `json:"password"             validate:"omitempty,min=8"`
	IsRetailer          *bool            `json:"is_retailer"`
	SurchargePercentage *decimal.Decimal `json:"surcharge_percentage"`
	AllowedCategories   []string         `json:"allowed_categories"   validate:"omitempty,dive,min=1"`
	Active              *bool            `json:"active"`
}

type ClientResponse struct {
	ID                  string          `json:"id"`
	Email               string          `json:"email"`
	Name                string          `json:"name"`
	Phone               *string         `json:"phone"`
	Balance             decimal.Decimal `json:"balance"`
	IsRetailer          bool            `json:"is_retailer"`
	SurchargePercentage decimal.Decimal `json:"surcharge_percentage"`
	AllowedCategories   []string        `json:"allowed_categories"`
	Active              bool            `json:"active"`
}

type MovementResponse struct {
	ID             string          `json:"id"`
	Kind           string          `json:"kind"`
	Amount         decimal.Decimal `json:"amount"`
	RunningBalance decimal.Decimal `json:"running_balance"`
	ReferenceID    *string         `json:"reference_id"`
	Description    string          `json:"description"`
	CreatedAt      string          `json:"created_at"`
}

// StatementResponse lists movements newest first; RunningBalance is the
// balance right after each movement was applied.
// Reconciled is false when the stored balance differs from the sum of movements.
type StatementResponse struct {
	Client     ClientResponse     `json:"client"`
	Balance    decimal.Decimal    `json:"balance"`
	Reconciled bool               `json:"reconciled"`
	Movements  []MovementResponse `json:"movements"`
}
