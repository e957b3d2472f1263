package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"arcadeorders/internal/dto"
	"arcadeorders/internal/infra"
	"arcadeorders/internal/model"
	"arcadeorders/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	priceReasonBulk   = "bulk_update"
	priceReasonManual = "manual"

	defaultVariantName = "Unico"
)

type ProductService interface {
	CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	ListProducts(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListCatalog(ctx context.Context, actor Actor) ([]dto.ProductResponse, error)
	BulkUpdatePrices(ctx context.Context, req dto.BulkPriceRequest) (*dto.BulkPriceResponse, error)
	PriceHistory(ctx context.Context, productID uuid.UUID, page, limit int) ([]dto.PriceHistoryResponse, int64, error)
}

type productService struct {
	repo    repository.ProductRepository
	orders  repository.OrderRepository
	history repository.PriceHistoryRepository
	users   repository.UserRepository
	cache   *infra.Cache
}

func NewProductService(
	repo repository.ProductRepository,
	orders repository.OrderRepository,
	history repository.PriceHistoryRepository,
	users repository.UserRepository,
	cache *infra.Cache,
) ProductService {
	return &productService{repo: repo, orders: orders, history: history, users: users, cache: cache}
}

func validatePrices(base, led decimal.Decimal) error {
	if base.IsNegative() {
		return validationf("el precio base no puede ser negativo")
	}
	if led.IsNegative() {
		return validationf("el recargo LED no puede ser negativo")
	}
	return nil
}

func (s *productService) CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := validatePrices(req.BasePrice, req.LEDSurcharge); err != nil {
		return nil, err
	}
	p := &model.Product{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Category:     req.Category,
		Subcategory:  req.Subcategory,
		ImageURL:     req.ImageURL,
		BasePrice:    RoundMoney(req.BasePrice),
		LEDSurcharge: RoundMoney(req.LEDSurcharge),
	}
	for _, v := range req.Variants {
		p.Variants = append(p.Variants, model.ProductVariant{Name: v.Name, ImageURL: v.ImageURL})
	}
	// every product is orderable through at least one variant
	if len(p.Variants) == 0 {
		p.Variants = []model.ProductVariant{{Name: defaultVariantName}}
	}

	if err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return classify(s.repo.Create(ctx, tx, p), "product.create", "producto no encontrado")
	}); err != nil {
		return nil, err
	}
	s.invalidateCatalog(ctx)
	log.Info().Str("product_id", p.ID.String()).Str("name", p.Name).Msg("product created")
	return s.GetProduct(ctx, p.ID)
}

// UpdateProduct applies the given fields. A base price change is recorded in
// price_history. When Variants is set, variants missing from the list are
// removed unless some order item references them.
func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.repo.FindByIDTx(ctx, tx, id)
		if err != nil {
			return classify(err, "product.update.load", "producto no encontrado")
		}
		before := p.BasePrice

		if req.Name != nil {
			p.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			p.Description = req.Description
		}
		if req.Category != nil {
			p.Category = req.Category
		}
		if req.Subcategory != nil {
			p.Subcategory = req.Subcategory
		}
		if req.ImageURL != nil {
			p.ImageURL = req.ImageURL
		}
		if req.BasePrice != nil {
			p.BasePrice = RoundMoney(*req.BasePrice)
		}
		if req.LEDSurcharge != nil {
			p.LEDSurcharge = RoundMoney(*req.LEDSurcharge)
		}
		if err := validatePrices(p.BasePrice, p.LEDSurcharge); err != nil {
			return err
		}
		if err := s.repo.UpdateTx(ctx, tx, p); err != nil {
			return classify(err, "product.update", "producto no encontrado")
		}

		if !p.BasePrice.Equal(before) {
			row := model.PriceHistory{
				ProductID:   p.ID,
				PriceBefore: before,
				PriceAfter:  p.BasePrice,
				Percentage:  percentChange(before, p.BasePrice),
				Reason:      priceReasonManual,
			}
			if err := s.history.CreateTx(ctx, tx, []model.PriceHistory{row}); err != nil {
				return classify(err, "product.update.history", "producto no encontrado")
			}
		}

		if req.Variants != nil {
			return s.syncVariants(ctx, tx, p, req.Variants)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateCatalog(ctx)
	return s.GetProduct(ctx, id)
}

func (s *productService) syncVariants(ctx context.Context, tx *gorm.DB, p *model.Product, reqs []dto.VariantRequest) error {
	if len(reqs) == 0 {
		return validationf("el producto debe tener al menos una variante")
	}
	existing := make(map[uuid.UUID]bool, len(p.Variants))
	for _, v := range p.Variants {
		existing[v.ID] = true
	}

	keep := make(map[uuid.UUID]bool)
	for _, vr := range reqs {
		if vr.ID == "" {
			v := &model.ProductVariant{ProductID: p.ID, Name: vr.Name, ImageURL: vr.ImageURL}
			if err := s.repo.CreateVariantTx(ctx, tx, v); err != nil {
				return classify(err, "product.variant.create", "producto no encontrado")
			}
			continue
		}
		vid, err := uuid.Parse(vr.ID)
		if err != nil || !existing[vid] {
			return notFound("variante " + vr.ID + " no encontrada en el producto")
		}
		keep[vid] = true
		v := &model.ProductVariant{ID: vid, ProductID: p.ID, Name: vr.Name, ImageURL: vr.ImageURL}
		if err := s.repo.UpdateVariantTx(ctx, tx, v); err != nil {
			return classify(err, "product.variant.update", "variante no encontrada")
		}
	}

	var removed []uuid.UUID
	for id := range existing {
		if !keep[id] {
			removed = append(removed, id)
		}
	}
	if len(removed) == 0 {
		return nil
	}
	n, err := s.orders.CountItemsByVariants(ctx, tx, removed)
	if err != nil {
		return classify(err, "product.variant.refs", "variante no encontrada")
	}
	if n > 0 {
		return integrity("No se puede eliminar una variante que ya tiene pedidos asociados.")
	}
	return classify(s.repo.DeleteVariantsTx(ctx, tx, removed), "product.variant.delete", "variante no encontrada")
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err, "product.get", "producto no encontrado")
	}
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) ListProducts(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, classify(err, "product.list", "producto no encontrado")
	}
	resp := &dto.ProductListResponse{Data: make([]dto.ProductResponse, len(products)), Total: total, Page: filter.Page, Limit: filter.Limit}
	for i := range products {
		resp.Data[i] = productToResponse(&products[i])
	}
	return resp, nil
}

// DeleteProduct refuses to remove products that any order references, so
// order history keeps resolving its variants.
func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.repo.FindByIDTx(ctx, tx, id)
		if err != nil {
			return classify(err, "product.delete.load", "producto no encontrado")
		}
		ids := make([]uuid.UUID, len(p.Variants))
		for i, v := range p.Variants {
			ids[i] = v.ID
		}
		n, err := s.orders.CountItemsByVariants(ctx, tx, ids)
		if err != nil {
			return classify(err, "product.delete.refs", "producto no encontrado")
		}
		if n > 0 {
			return integrity("No se puede eliminar un producto que ya tiene pedidos asociados.")
		}
		return classify(s.repo.DeleteTx(ctx, tx, id), "product.delete", "producto no encontrado")
	})
	if err != nil {
		return err
	}
	s.invalidateCatalog(ctx)
	log.Info().Str("product_id", id.String()).Msg("product deleted")
	return nil
}

// ── Catalog ──────────────────────────────────────────────────────────────────

// ListCatalog returns the products the caller may order. Results are cached
// per category set.
func (s *productService) ListCatalog(ctx context.Context, actor Actor) ([]dto.ProductResponse, error) {
	var categories []string
	if !actor.IsAdmin() {
		u, err := s.users.FindByID(ctx, actor.UserID)
		if err != nil {
			return nil, classify(err, "catalog.user", "cliente no encontrado")
		}
		if len(u.AllowedCategories) > 0 {
			categories = append([]string(nil), u.AllowedCategories...)
		}
	}
	key := catalogKey(categories)

	var cached []dto.ProductResponse
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	products, err := s.repo.ListByCategories(ctx, categories)
	if err != nil {
		return nil, classify(err, "catalog.list", "producto no encontrado")
	}
	resp := make([]dto.ProductResponse, len(products))
	for i := range products {
		resp[i] = productToResponse(&products[i])
	}
	if err := s.cache.Set(ctx, key, resp); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("catalog: cache write failed")
	}
	return resp, nil
}

func catalogKey(categories []string) string {
	if categories == nil {
		return "all"
	}
	sorted := append([]string(nil), categories...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

func (s *productService) invalidateCatalog(ctx context.Context) {
	if err := s.cache.Flush(ctx); err != nil {
		log.Warn().Err(err).Msg("catalog: cache flush failed")
	}
}

// ── BulkUpdatePrices ─────────────────────────────────────────────────────────
// base_price = round2(base_price × (1 + pct/100)) for every product in the
// category (empty or ALL = every product), one price_history row each, in a
// single transaction. Order item snapshots are never touched.

func (s *productService) BulkUpdatePrices(ctx context.Context, req dto.BulkPriceRequest) (*dto.BulkPriceResponse, error) {
	pct := req.Percentage
	if pct.IsZero() {
		return nil, validationf("el porcentaje no puede ser cero")
	}
	if pct.LessThanOrEqual(hundred.Neg()) {
		return nil, validationf("el porcentaje debe ser mayor a -100")
	}
	factor := decimal.NewFromInt(1).Add(pct.Div(hundred))
	category := strings.TrimSpace(req.Category)

	resp := &dto.BulkPriceResponse{Preview: req.Preview, Changes: []dto.BulkPriceChange{}}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		products, err := s.repo.ListForPriceUpdateTx(ctx, tx, category)
		if err != nil {
			return classify(err, "product.bulk.list", "producto no encontrado")
		}

		history := make([]model.PriceHistory, 0, len(products))
		for _, p := range products {
			after := RoundMoney(p.BasePrice.Mul(factor))
			resp.Changes = append(resp.Changes, dto.BulkPriceChange{
				ProductID:   p.ID.String(),
				Name:        p.Name,
				PriceBefore: p.BasePrice,
				PriceAfter:  after,
			})
			if req.Preview {
				continue
			}
			if err := s.repo.UpdateBasePriceTx(ctx, tx, p.ID, after); err != nil {
				return classify(err, "product.bulk.update", "producto no encontrado")
			}
			history = append(history, model.PriceHistory{
				ProductID:   p.ID,
				PriceBefore: p.BasePrice,
				PriceAfter:  after,
				Percentage:  pct,
				Reason:      priceReasonBulk,
			})
		}
		if req.Preview {
			return nil
		}
		return classify(s.history.CreateTx(ctx, tx, history), "product.bulk.history", "producto no encontrado")
	})
	if err != nil {
		return nil, err
	}

	if !req.Preview {
		resp.Updated = len(resp.Changes)
		s.invalidateCatalog(ctx)
		log.Info().
			Str("category", category).
			Str("percentage", pct.String()).
			Int("updated", resp.Updated).
			Msg("bulk price update applied")
	}
	return resp, nil
}

func (s *productService) PriceHistory(ctx context.Context, productID uuid.UUID, page, limit int) ([]dto.PriceHistoryResponse, int64, error) {
	rows, total, err := s.history.ListByProduct(ctx, productID, page, limit)
	if err != nil {
		return nil, 0, classify(err, "product.history", "producto no encontrado")
	}
	resp := make([]dto.PriceHistoryResponse, len(rows))
	for i, h := range rows {
		resp[i] = dto.PriceHistoryResponse{
			ID:          h.ID.String(),
			ProductID:   h.ProductID.String(),
			PriceBefore: h.PriceBefore,
			PriceAfter:  h.PriceAfter,
			Percentage:  h.Percentage,
			Reason:      h.Reason,
			CreatedAt:   h.CreatedAt.Format(time.RFC3339),
		}
	}
	return resp, total, nil
}

func percentChange(before, after decimal.Decimal) decimal.Decimal {
	if before.IsZero() {
		return decimal.Zero
	}
	return after.Sub(before).Div(before).Mul(hundred).Round(2)
}
