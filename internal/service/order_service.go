package service

import (
	"context"
	"fmt"
	"time"

	"arcadeorders/internal/config"
	"arcadeorders/internal/dto"
	"arcadeorders/internal/model"
	"arcadeorders/internal/repository"
	"arcadeorders/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

type OrderService interface {
	CreateOrder(ctx context.Context, actor Actor, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	GetOrder(ctx context.Context, actor Actor, id uuid.UUID) (*dto.OrderResponse, error)
	ListOrders(ctx context.Context, actor Actor, filter dto.OrderFilter) (*dto.OrderListResponse, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status string) (*dto.OrderResponse, error)
	ToggleItemReady(ctx context.Context, itemID uuid.UUID, ready bool) error
	ProductionQueue(ctx context.Context) ([]dto.ProductionItemResponse, error)
}

type orderService struct {
	repo       repository.OrderRepository
	products   repository.ProductRepository
	users      repository.UserRepository
	ledger     LedgerService
	rec        *reconciler
	dispatcher *worker.Dispatcher
	policy     string
}

func NewOrderService(
	repo repository.OrderRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	deliveries repository.DeliveryRepository,
	ledger LedgerService,
	dispatcher *worker.Dispatcher,
	policy string,
) OrderService {
	return &orderService{
		repo:       repo,
		products:   products,
		users:      users,
		ledger:     ledger,
		rec:        &reconciler{orders: repo, deliveries: deliveries, ledger: ledger, policy: policy},
		dispatcher: dispatcher,
		policy:     policy,
	}
}

// ── CreateOrder ──────────────────────────────────────────────────────────────
//   1. Resolve the client (admins may order for anyone, clients for themselves)
//   2. Resolve variants, enforce allowed categories for client-initiated orders
//   3. Snapshot unit prices (pricing rules, rounded to cents)
//   4. TX: create order + items; debit the total under the on_order policy
//   5. (async) confirmation email

func (s *orderService) CreateOrder(ctx context.Context, actor Actor, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	clientID := actor.UserID
	if actor.IsAdmin() {
		if req.ClientID == "" {
			return nil, validationf("client_id es obligatorio")
		}
		id, err := uuid.Parse(req.ClientID)
		if err != nil {
			return nil, validationf("client_id invalido")
		}
		clientID = id
	}

	client, err := s.users.FindByID(ctx, clientID)
	if err != nil {
		return nil, classify(err, "order.find_client", "cliente no encontrado")
	}
	if client.Role != model.RoleClient || !client.Active {
		return nil, validationf("el cliente no esta habilitado para realizar pedidos")
	}
	if len(req.Items) == 0 {
		return nil, validationf("el pedido debe tener al menos un item")
	}

	variantIDs := make([]uuid.UUID, 0, len(req.Items))
	for _, it := range req.Items {
		id, err := uuid.Parse(it.VariantID)
		if err != nil {
			return nil, validationf("variant_id invalido: %s", it.VariantID)
		}
		if it.Quantity <= 0 {
			return nil, validationf("la cantidad debe ser mayor a cero")
		}
		variantIDs = append(variantIDs, id)
	}
	variants, err := s.products.FindVariantsByIDs(ctx, nil, variantIDs)
	if err != nil {
		return nil, classify(err, "order.find_variants", "variante no encontrada")
	}
	byID := make(map[uuid.UUID]*model.ProductVariant, len(variants))
	for i := range variants {
		byID[variants[i].ID] = &variants[i]
	}

	order := &model.Order{ID: uuid.New(), UserID: client.ID, Status: model.OrderPending, Notes: req.Notes}
	total := decimal.Zero
	for i, it := range req.Items {
		v, ok := byID[variantIDs[i]]
		if !ok || v.Product == nil {
			return nil, notFound(fmt.Sprintf("variante %s no encontrada", it.VariantID))
		}
		if !actor.IsAdmin() && !client.CanOrderCategory(v.Product.Category) {
			return nil, validationf("el producto %s pertenece a una categoria no habilitada para el cliente", v.Product.Name)
		}

		buttons := it.ButtonsType
		if buttons == "" {
			buttons = model.ButtonsCommon
		}
		led := decimal.Zero
		if buttons == model.ButtonsLED {
			led = v.Product.LEDSurcharge
		}
		unit := RoundMoney(ComputeLinePrice(PriceInput{
			BasePrice:           v.Product.BasePrice,
			LEDSurcharge:        v.Product.LEDSurcharge,
			ButtonsType:         buttons,
			IsRetailer:          client.IsRetailer,
			SurchargePercentage: client.EffectiveSurcharge(),
		}))
		order.Items = append(order.Items, model.OrderItem{
			VariantID:            v.ID,
			Quantity:             it.Quantity,
			Price:                unit,
			ButtonsType:          buttons,
			LEDSurchargeSnapshot: led,
		})
		total = total.Add(unit.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	order.Total = total

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, order); err != nil {
			return classify(err, "order.create", "cliente no encontrado")
		}
		if s.policy == config.DebitOnOrder && total.IsPositive() {
			desc := fmt.Sprintf("Pedido %s", shortID(order.ID))
			return s.ledger.Debit(ctx, tx, client.ID, total, model.MovementOrder, &order.ID, desc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("order_id", order.ID.String()).
		Str("client_id", client.ID.String()).
		Str("total", total.StringFixed(2)).
		Int("items", len(order.Items)).
		Msg("order created")

	notify(ctx, s.dispatcher, client, worker.OrderRef(order.ID.String()),
		"Pedido recibido",
		fmt.Sprintf("Hola %s, recibimos tu pedido %s por un total de $%s.", client.Name, shortID(order.ID), total.StringFixed(2)))

	created, err := s.repo.FindByID(ctx, order.ID)
	if err != nil {
		return nil, classify(err, "order.reload", "pedido no encontrado")
	}
	return orderToResponse(created), nil
}

func (s *orderService) GetOrder(ctx context.Context, actor Actor, id uuid.UUID) (*dto.OrderResponse, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err, "order.get", "pedido no encontrado")
	}
	// clients never learn about other clients' orders
	if !actor.IsAdmin() && o.UserID != actor.UserID {
		return nil, notFound("pedido no encontrado")
	}
	deliveries, err := s.rec.deliveries.ListByOrder(ctx, o.ID)
	if err != nil {
		return nil, classify(err, "order.deliveries", "pedido no encontrado")
	}
	resp := orderToResponse(o)
	resp.Deliveries = make([]dto.DeliveryRecordResponse, len(deliveries))
	for i := range deliveries {
		resp.Deliveries[i] = deliveryRecordToResponse(&deliveries[i])
	}
	return resp, nil
}

func (s *orderService) ListOrders(ctx context.Context, actor Actor, filter dto.OrderFilter) (*dto.OrderListResponse, error) {
	if !actor.IsAdmin() {
		filter.ClientID = actor.UserID.String()
	}
	if filter.Status != "" && filter.Status != "all" {
		st, err := NormalizeStatus(filter.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}

	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, classify(err, "order.list", "pedido no encontrado")
	}
	resp := &dto.OrderListResponse{Data: make([]dto.OrderResponse, len(orders)), Total: total, Page: filter.Page, Limit: filter.Limit}
	for i := range orders {
		resp.Data[i] = *orderToResponse(&orders[i])
	}
	return resp, nil
}

// ── UpdateOrderStatus ────────────────────────────────────────────────────────
// Manual transitions share the delivery path: DELIVERED delivers every
// outstanding unit, CANCELED credits back undelivered value when the total
// was debited at creation.

func (s *orderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status string) (*dto.OrderResponse, error) {
	target, err := NormalizeStatus(status)
	if err != nil {
		return nil, err
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		order, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return classify(err, "order.status.load", "pedido no encontrado")
		}
		if order.Status == target {
			return nil
		}
		if err := checkManualTransition(order.Status, target); err != nil {
			return err
		}

		switch target {
		case model.OrderDelivered:
			var lines []deliveryLine
			for _, it := range order.Items {
				if p := it.Pending(); p > 0 {
					lines = append(lines, deliveryLine{itemID: it.ID, qty: p})
				}
			}
			if _, err := s.rec.applyTx(ctx, tx, order, lines, nil); err != nil {
				return err
			}
			// an order without items has nothing to derive from
			if order.Status != model.OrderDelivered {
				return s.repo.UpdateStatusTx(ctx, tx, order.ID, model.OrderDelivered)
			}
			return nil

		case model.OrderCanceled:
			if s.policy == config.DebitOnOrder {
				undelivered := decimal.Zero
				for _, it := range order.Items {
					undelivered = undelivered.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Pending()))))
				}
				if undelivered.IsPositive() {
					desc := fmt.Sprintf("Cancelacion pedido %s", shortID(order.ID))
					if err := s.ledger.Credit(ctx, tx, order.UserID, undelivered, model.MovementCancellation, &order.ID, desc); err != nil {
						return err
					}
				}
			}
		}

		if err := s.repo.UpdateStatusTx(ctx, tx, order.ID, target); err != nil {
			return classify(err, "order.status.update", "pedido no encontrado")
		}
		log.Info().Str("order_id", order.ID.String()).Str("from", order.Status).Str("to", target).Msg("order status changed")
		return nil
	})
	if err != nil {
		return nil, err
	}

	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err, "order.reload", "pedido no encontrado")
	}
	return orderToResponse(o), nil
}

// ToggleItemReady flips the production flag only; quantities, status and
// balance are untouched.
func (s *orderService) ToggleItemReady(ctx context.Context, itemID uuid.UUID, ready bool) error {
	item, err := s.repo.FindItemByID(ctx, itemID)
	if err != nil {
		return classify(err, "order.item.find", "item no encontrado")
	}
	if item.Order != nil && item.Order.Status == model.OrderCanceled {
		return validationf("el pedido esta cancelado")
	}
	rows, err := s.repo.SetItemReady(ctx, itemID, ready)
	if err != nil {
		return classify(err, "order.item.ready", "item no encontrado")
	}
	if rows == 0 {
		return notFound("item no encontrado")
	}
	return nil
}

func (s *orderService) ProductionQueue(ctx context.Context) ([]dto.ProductionItemResponse, error) {
	items, err := s.repo.ListProductionQueue(ctx)
	if err != nil {
		return nil, classify(err, "order.production", "item no encontrado")
	}
	resp := make([]dto.ProductionItemResponse, len(items))
	for i, it := range items {
		r := dto.ProductionItemResponse{
			ItemID:      it.ID.String(),
			OrderID:     it.OrderID.String(),
			Quantity:    it.Quantity,
			ButtonsType: it.ButtonsType,
		}
		if it.Order != nil {
			r.OrderStatus = it.Order.Status
			r.OrderCreatedAt = it.Order.CreatedAt.Format(time.RFC3339)
			if it.Order.User != nil {
				r.ClientName = it.Order.User.Name
			}
		}
		if it.Variant != nil {
			r.VariantName = it.Variant.Name
			if it.Variant.Product != nil {
				r.ProductName = it.Variant.Product.Name
			}
		}
		resp[i] = r
	}
	return resp, nil
}
