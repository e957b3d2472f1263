package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Movement kinds.
const (
	MovementOpening      = "OPENING"
	MovementOrder        = "ORDER"
	MovementDelivery     = "DELIVERY"
	MovementPayment      = "PAYMENT"
	MovementCancellation = "CANCELLATION"
)

// BalanceMovement is an immutable entry explaining one change of a client's
// balance. Amount is signed: positive = debit (debt grows), negative = credit.
// Movements are never modified or deleted; corrections create new entries.
type BalanceMovement struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Kind        string          `gorm:"type:varchar(20);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ReferenceID *uuid.UUID      `gorm:"type:uuid"` // order, delivery or payment id
	Description string          `gorm:"not null"`
	CreatedAt   time.Time
}

func (m *BalanceMovement) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
