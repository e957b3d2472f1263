package repository

import (
	"context"

	"arcadeorders/internal/dto"
	"arcadeorders/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, o *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	// FindByIDForUpdate locks the order row (SELECT ... FOR UPDATE) and loads
	// its items on the same transaction.
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error)
	UpdateStatusTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error

	// AddDeliveredTx increments delivered_quantity by qty only while the result
	// stays within quantity. Returns the affected row count (0 = guard failed).
	AddDeliveredTx(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, qty int) (int64, error)

	FindItemByID(ctx context.Context, id uuid.UUID) (*model.OrderItem, error)
	SetItemReady(ctx context.Context, id uuid.UUID, ready bool) (int64, error)
	ListProductionQueue(ctx context.Context) ([]model.OrderItem, error)
	CountItemsByVariants(ctx context.Context, tx *gorm.DB, variantIDs []uuid.UUID) (int64, error)

	DB() *gorm.DB
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) DB() *gorm.DB { return r.db }

func (r *orderRepo) Create(ctx context.Context, tx *gorm.DB, o *model.Order) error {
	return tx.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Variant.Product").
		Where("id = ?", id).
		First(&o).Error
	return &o, err
}

func (r *orderRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&o).Error
	if err != nil {
		return &o, err
	}
	err = tx.WithContext(ctx).Where("order_id = ?", id).Order("created_at ASC").Find(&o.Items).Error
	return &o, err
}

func (r *orderRepo) List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Order{})
	if filter.ClientID != "" {
		q = q.Where("user_id = ?", filter.ClientID)
	}
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("User").
		Preload("Items.Variant.Product").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) UpdateStatusTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error {
	return tx.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Update("status", status).Error
}

func (r *orderRepo) AddDeliveredTx(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, qty int) (int64, error) {
	res := tx.WithContext(ctx).Model(&model.OrderItem{}).
		Where("id = ? AND delivered_quantity + ? <= quantity", itemID, qty).
		Update("delivered_quantity", gorm.Expr("delivered_quantity + ?", qty))
	return res.RowsAffected, res.Error
}

func (r *orderRepo) FindItemByID(ctx context.Context, id uuid.UUID) (*model.OrderItem, error) {
	var it model.OrderItem
	err := r.db.WithContext(ctx).Preload("Order").Where("id = ?", id).First(&it).Error
	return &it, err
}

func (r *orderRepo) SetItemReady(ctx context.Context, id uuid.UUID, ready bool) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.OrderItem{}).Where("id = ?", id).Update("is_ready", ready)
	return res.RowsAffected, res.Error
}

// ListProductionQueue returns items still to be built: not ready, belonging to
// orders that are neither delivered nor canceled. Oldest orders come first.
func (r *orderRepo) ListProductionQueue(ctx context.Context) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := r.db.WithContext(ctx).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.is_ready = ?", false).
		Where("orders.status NOT IN ?", []string{model.OrderDelivered, model.OrderCanceled}).
		Order("orders.created_at ASC").
		Order("order_items.created_at ASC").
		Preload("Order.User").
		Preload("Variant.Product").
		Find(&items).Error
	return items, err
}

func (r *orderRepo) CountItemsByVariants(ctx context.Context, tx *gorm.DB, variantIDs []uuid.UUID) (int64, error) {
	if len(variantIDs) == 0 {
		return 0, nil
	}
	if tx == nil {
		tx = r.db
	}
	var n int64
	err := tx.WithContext(ctx).Model(&model.OrderItem{}).Where("variant_id IN ?", variantIDs).Count(&n).Error
	return n, err
}
