package repository

import (
	"context"

	"arcadeorders/internal/dto"
	"arcadeorders/internal/model"

	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, p *model.Payment) error
	FindByKey(ctx context.Context, tx *gorm.DB, key string) (*model.Payment, error)
	List(ctx context.Context, filter dto.PaymentFilter) ([]model.Payment, int64, error)
	DB() *gorm.DB
}

type paymentRepo struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) PaymentRepository { return &paymentRepo{db: db} }

func (r *paymentRepo) DB() *gorm.DB { return r.db }

func (r *paymentRepo) Create(ctx context.Context, tx *gorm.DB, p *model.Payment) error {
	return tx.WithContext(ctx).Create(p).Error
}

func (r *paymentRepo) FindByKey(ctx context.Context, tx *gorm.DB, key string) (*model.Payment, error) {
	var p model.Payment
	err := tx.WithContext(ctx).Where("idempotency_key = ?", key).First(&p).Error
	return &p, err
}

func (r *paymentRepo) List(ctx context.Context, filter dto.PaymentFilter) ([]model.Payment, int64, error) {
	var payments []model.Payment
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Payment{})
	if filter.ClientID != "" {
		q = q.Where("user_id = ?", filter.ClientID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("User").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&payments).Error
	return payments, total, err
}
