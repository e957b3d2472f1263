package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product carries the canonical per-unit price. Variants are display/selection
// dimensions (size, style) and do not have prices of their own.
type Product struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"index;not null"`
	Description  *string
	Category     *string `gorm:"index"`
	Subcategory  *string
	ImageURL     *string
	BasePrice    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	LEDSurcharge decimal.Decimal `gorm:"column:led_surcharge;type:decimal(12,2);not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Variants []ProductVariant `gorm:"foreignKey:ProductID"`
}

func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type ProductVariant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"not null"`
	ImageURL  *string
	CreatedAt time.Time
	UpdatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (v *ProductVariant) BeforeCreate(_ *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// PriceHistory records every change of a product's base price.
// Rows are never updated or deleted.
type PriceHistory struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	PriceBefore decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PriceAfter  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Percentage  decimal.Decimal `gorm:"type:decimal(7,2);not null"`
	Reason      string          `gorm:"not null;default:'bulk_update'"` // bulk_update | manual
	CreatedAt   time.Time
}

func (PriceHistory) TableName() string { return "price_history" }

func (h *PriceHistory) BeforeCreate(_ *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
