package repository

import (
	"context"

	"arcadeorders/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DeliveryRepository interface {
	Create(ctx context.Context, tx *gorm.DB, d *model.Delivery) error
	FindByKey(ctx context.Context, tx *gorm.DB, key string) (*model.Delivery, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Delivery, error)
}

type deliveryRepo struct{ db *gorm.DB }

func NewDeliveryRepository(db *gorm.DB) DeliveryRepository { return &deliveryRepo{db: db} }

func (r *deliveryRepo) Create(ctx context.Context, tx *gorm.DB, d *model.Delivery) error {
	return tx.WithContext(ctx).Create(d).Error
}

func (r *deliveryRepo) FindByKey(ctx context.Context, tx *gorm.DB, key string) (*model.Delivery, error) {
	var d model.Delivery
	err := tx.WithContext(ctx).Where("idempotency_key = ?", key).First(&d).Error
	return &d, err
}

func (r *deliveryRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Delivery, error) {
	var rows []model.Delivery
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}
