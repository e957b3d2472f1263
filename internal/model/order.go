package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order status values persisted in orders.status.
const (
	OrderPending            = "PENDING"
	OrderInProduction       = "IN_PRODUCTION"
	OrderPartiallyDelivered = "PARTIALLY_DELIVERED"
	OrderDelivered          = "DELIVERED"
	OrderCanceled           = "CANCELED"

	// OrderInPreparationLegacy is the historical name of IN_PRODUCTION.
	// Accepted as input only; migration 000002 rewrites stored rows.
	OrderInPreparationLegacy = "IN_PREPARATION"
)

const (
	ButtonsCommon = "COMMON"
	ButtonsLED    = "LED"
)

// Order is a client's purchase. Total is a snapshot taken at creation
// (Σ item.Price × item.Quantity) and is never recomputed from live prices.
type Order struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status    string          `gorm:"type:varchar(30);not null;default:'PENDING';index"`
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time

	User  *User       `gorm:"foreignKey:UserID"`
	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem is one line of an order. Quantity and Price are fixed at creation;
// DeliveredQuantity moves from 0 up to Quantity, never beyond.
type OrderItem struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID              uuid.UUID       `gorm:"type:uuid;not null;index"`
	VariantID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity             int             `gorm:"not null"`
	DeliveredQuantity    int             `gorm:"not null;default:0"`
	Price                decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ButtonsType          string          `gorm:"type:varchar(10);not null;default:'COMMON'"`
	LEDSurchargeSnapshot decimal.Decimal `gorm:"column:led_surcharge_snapshot;type:decimal(12,2);not null;default:0"`
	IsReady              bool            `gorm:"not null;default:false"`
	CreatedAt            time.Time
	UpdatedAt            time.Time

	Variant *ProductVariant `gorm:"foreignKey:VariantID"`
	Order   *Order          `gorm:"foreignKey:OrderID"`
}

func (i *OrderItem) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Pending returns how many units are still to be delivered.
func (i *OrderItem) Pending() int { return i.Quantity - i.DeliveredQuantity }

// LineTotal is the snapshot value of the whole line.
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Delivery is the record of one successful delivery registration.
// IdempotencyKey, when present, makes a repeated submission a no-op.
type Delivery struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	IdempotencyKey *string         `gorm:"type:varchar(100);uniqueIndex"`
	ResultStatus   string          `gorm:"type:varchar(30);not null"`
	Value          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt      time.Time

	Lines []DeliveryLine `gorm:"foreignKey:DeliveryID"`
}

func (d *Delivery) BeforeCreate(_ *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

type DeliveryLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DeliveryID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderItemID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity    int             `gorm:"not null"`
	Value       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (l *DeliveryLine) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
