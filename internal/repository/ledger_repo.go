package repository

import (
	"context"

	"arcadeorders/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerRepository is the only writer of users.balance.
type LedgerRepository interface {
	// ApplyTx increments the user's balance by m.Amount (signed) with a single
	// SQL expression and appends m to balance_movements. Both statements run on
	// tx; callers must pass the transaction instance.
	ApplyTx(ctx context.Context, tx *gorm.DB, m *model.BalanceMovement) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.BalanceMovement, error)
	SumByUser(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
}

type ledgerRepo struct{ db *gorm.DB }

func NewLedgerRepository(db *gorm.DB) LedgerRepository { return &ledgerRepo{db: db} }

func (r *ledgerRepo) ApplyTx(ctx context.Context, tx *gorm.DB, m *model.BalanceMovement) error {
	res := tx.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", m.UserID).
		Update("balance", gorm.Expr("balance + ?", m.Amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return tx.WithContext(ctx).Create(m).Error
}

// ListByUser returns movements newest first.
func (r *ledgerRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.BalanceMovement, error) {
	var rows []model.BalanceMovement
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// SumByUser adds the user's movements in Go so every amount stays exact.
func (r *ledgerRepo) SumByUser(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var rows []model.BalanceMovement
	if err := r.db.WithContext(ctx).Select("amount").Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, m := range rows {
		sum = sum.Add(m.Amount)
	}
	return sum, nil
}
