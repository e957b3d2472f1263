package repository

import (
	"context"

	"arcadeorders/internal/dto"
	"arcadeorders/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository defines the data access contract for products and their
// variants. Methods ending in Tx must receive the caller's transaction.
type ProductRepository interface {
	Create(ctx context.Context, tx *gorm.DB, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)
	// ListByCategories returns every product whose category is in categories;
	// nil means no restriction.
	ListByCategories(ctx context.Context, categories []string) ([]model.Product, error)
	FindVariantsByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]model.ProductVariant, error)

	UpdateTx(ctx context.Context, tx *gorm.DB, p *model.Product) error
	CreateVariantTx(ctx context.Context, tx *gorm.DB, v *model.ProductVariant) error
	UpdateVariantTx(ctx context.Context, tx *gorm.DB, v *model.ProductVariant) error
	DeleteVariantsTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
	DeleteTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error

	// Bulk pricing
	ListForPriceUpdateTx(ctx context.Context, tx *gorm.DB, category string) ([]model.Product, error)
	UpdateBasePriceTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, price decimal.Decimal) error

	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) Create(ctx context.Context, tx *gorm.DB, p *model.Product) error {
	return tx.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return r.FindByIDTx(ctx, r.db, id)
}

func (r *productRepo) FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := tx.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Where("id = ?", id).
		First(&p).Error
	return &p, err
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Name != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Name+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Variants").Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&products).Error
	return products, total, err
}

func (r *productRepo) ListByCategories(ctx context.Context, categories []string) ([]model.Product, error) {
	var products []model.Product
	q := r.db.WithContext(ctx).Preload("Variants")
	if categories != nil {
		q = q.Where("category IN ?", categories)
	}
	err := q.Order("category ASC").Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindVariantsByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]model.ProductVariant, error) {
	var variants []model.ProductVariant
	if len(ids) == 0 {
		return variants, nil
	}
	if tx == nil {
		tx = r.db
	}
	err := tx.WithContext(ctx).Preload("Product").Where("id IN ?", ids).Find(&variants).Error
	return variants, err
}

func (r *productRepo) UpdateTx(ctx context.Context, tx *gorm.DB, p *model.Product) error {
	return tx.WithContext(ctx).Model(&model.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"name":          p.Name,
		"description":   p.Description,
		"category":      p.Category,
		"subcategory":   p.Subcategory,
		"image_url":     p.ImageURL,
		"base_price":    p.BasePrice,
		"led_surcharge": p.LEDSurcharge,
	}).Error
}

func (r *productRepo) CreateVariantTx(ctx context.Context, tx *gorm.DB, v *model.ProductVariant) error {
	return tx.WithContext(ctx).Create(v).Error
}

func (r *productRepo) UpdateVariantTx(ctx context.Context, tx *gorm.DB, v *model.ProductVariant) error {
	return tx.WithContext(ctx).Model(&model.ProductVariant{}).
		Where("id = ? AND product_id = ?", v.ID, v.ProductID).
		Updates(map[string]interface{}{"name": v.Name, "image_url": v.ImageURL}).Error
}

func (r *productRepo) DeleteVariantsTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Where("id IN ?", ids).Delete(&model.ProductVariant{}).Error
}

// DeleteTx removes the product and its variants. price_history rows are kept.
func (r *productRepo) DeleteTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	if err := tx.WithContext(ctx).Where("product_id = ?", id).Delete(&model.ProductVariant{}).Error; err != nil {
		return err
	}
	res := tx.WithContext(ctx).Where("id = ?", id).Delete(&model.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListForPriceUpdateTx locks the target rows. An empty category or "ALL"
// selects every product.
func (r *productRepo) ListForPriceUpdateTx(ctx context.Context, tx *gorm.DB, category string) ([]model.Product, error) {
	var products []model.Product
	q := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	if category != "" && category != "ALL" {
		q = q.Where("category = ?", category)
	}
	err := q.Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) UpdateBasePriceTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, price decimal.Decimal) error {
	return tx.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Update("base_price", price).Error
}
