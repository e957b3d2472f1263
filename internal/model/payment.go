package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment method / type values.
const (
	PaymentCash     = "CASH"
	PaymentTransfer = "TRANSFER"
	PaymentOther    = "OTHER"

	PaymentTypeGeneral = "GENERAL"
	PaymentTypeDeposit = "DEPOSIT"
	PaymentTypePartial = "PARTIAL"
	PaymentTypeFull    = "FULL"
)

// Payment is immutable once created. Its creation is the only event that
// credits a client's balance, by exactly Amount.
type Payment struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Method         string          `gorm:"type:varchar(20);not null"`
	Type           string          `gorm:"type:varchar(20);not null;default:'GENERAL'"`
	Notes          *string
	IdempotencyKey *string `gorm:"type:varchar(100);uniqueIndex"`
	CreatedAt      time.Time

	User *User `gorm:"foreignKey:UserID"`
}

func (p *Payment) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
