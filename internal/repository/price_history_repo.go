package repository

import (
	"context"

	"arcadeorders/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PriceHistoryRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, rows []model.PriceHistory) error
	ListByProduct(ctx context.Context, productID uuid.UUID, page, limit int) ([]model.PriceHistory, int64, error)
}

type priceHistoryRepo struct{ db *gorm.DB }

func NewPriceHistoryRepository(db *gorm.DB) PriceHistoryRepository {
	return &priceHistoryRepo{db: db}
}

func (r *priceHistoryRepo) CreateTx(ctx context.Context, tx *gorm.DB, rows []model.PriceHistory) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&rows).Error
}

// ListByProduct returns one product's price changes, newest first.
func (r *priceHistoryRepo) ListByProduct(
	ctx context.Context,
	productID uuid.UUID,
	page, limit int,
) ([]model.PriceHistory, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.PriceHistory{}).
		Where("product_id = ?", productID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.PriceHistory
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&rows).Error
	return rows, total, err
}
