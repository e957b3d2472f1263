package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type VariantRequest struct {
	// ID is empty for new variants; set to keep an existing one.
	ID       string  `json:"id"        validate:"omitempty,uuid"`
	Name     string  `json:"name"      validate:"required,min=1,max=120"`
	ImageURL *string `json:"image_url" validate:"omitempty,url"`
}

type CreateProductRequest struct {
	Name         string           `json:"name"          validate:"required,min=2,max=120"`
	Description  *string          `json:"description"`
	Category     *string          `json:"category"      validate:"omitempty,max=60"`
	Subcategory  *string          `json:"subcategory"   validate:"omitempty,max=60"`
	ImageURL     *string          `json:"image_url"     validate:"omitempty,url"`
	BasePrice    decimal.Decimal  `json:"base_price"    validate:"required"`
	LEDSurcharge decimal.Decimal  `json:"led_surcharge"`
	Variants     []VariantRequest `json:"variants"      validate:"omitempty,dive"`
}

// UpdateProductRequest replaces the variant set when Variants is non-nil.
type UpdateProductRequest struct {
	Name         *string          `json:"name"          validate:"omitempty,min=2,max=120"`
	Description  *string          `json:"description"`
	Category     *string          `json:"category"      validate:"omitempty,max=60"`
	Subcategory  *string          `json:"subcategory"   validate:"omitempty,max=60"`
	ImageURL     *string          `json:"image_url"     validate:"omitempty,url"`
	BasePrice    *decimal.Decimal `json:"base_price"`
	LEDSurcharge *decimal.Decimal `json:"led_surcharge"`
	Variants     []VariantRequest `json:"variants"      validate:"omitempty,dive"`
}

// BulkPriceRequest adjusts base prices by Percentage. An empty Category or
// "ALL" targets every product.
type BulkPriceRequest struct {
	Category   string          `json:"category"`
	Percentage decimal.Decimal `json:"percentage" validate:"required"`
	Preview    bool            `json:"preview"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type ProductFilter struct {
	Category string `form:"category"`
	Name     string `form:"name"`
	Page     int    `form:"page,default=1"  validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type VariantResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ImageURL *string `json:"image_url"`
}

type ProductResponse struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Description  *string           `json:"description"`
	Category     *string           `json:"category"`
	Subcategory  *string           `json:"subcategory"`
	ImageURL     *string           `json:"image_url"`
	BasePrice    decimal.Decimal   `json:"base_price"`
	LEDSurcharge decimal.Decimal   `json:"led_surcharge"`
	Variants     []VariantResponse `json:"variants"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type BulkPriceChange struct {
	ProductID   string          `json:"product_id"`
	Name        string          `json:"name"`
	PriceBefore decimal.Decimal `json:"price_before"`
	PriceAfter  decimal.Decimal `json:"price_after"`
}

type BulkPriceResponse struct {
	Updated int               `json:"updated"`
	Preview bool              `json:"preview"`
	Changes []BulkPriceChange `json:"changes"`
}

type PriceHistoryResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	PriceBefore decimal.Decimal `json:"price_before"`
	PriceAfter  decimal.Decimal `json:"price_after"`
	Percentage  decimal.Decimal `json:"percentage"`
	Reason      string          `json:"reason"`
	CreatedAt   string          `json:"created_at"`
}

type PriceHistoryListResponse struct {
	Data  []PriceHistoryResponse `json:"data"`
	Total int64                  `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
}
