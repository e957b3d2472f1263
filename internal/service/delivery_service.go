package service

import (
	"context"
	"errors"
	"fmt"

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

type DeliveryService interface {
	RegisterDelivery(ctx context.Context, orderID uuid.UUID, req dto.RegisterDeliveryRequest) (*dto.DeliveryResponse, error)
}

// deliveryLine is one validated (item, quantity) pair to apply.
type deliveryLine struct {
	itemID uuid.UUID
	qty    int
}

// reconciler applies deliveries to a locked order. It is shared by
// RegisterDelivery and the manual DELIVERED status change so both paths
// update quantities, status and balance identically.
type reconciler struct {
	orders     repository.OrderRepository
	deliveries repository.DeliveryRepository
	ledger     LedgerService
	policy     string
}

// applyTx runs on tx with order already locked and loaded with its items.
// Unknown item ids are skipped. Any over-delivery aborts with a validation
// error and the caller's transaction rolls back every prior line.
func (r *reconciler) applyTx(ctx context.Context, tx *gorm.DB, order *model.Order, lines []deliveryLine, key *string) (*model.Delivery, error) {
	if IsTerminal(order.Status) {
		return nil, validationf("el pedido esta en estado %s y no admite entregas", order.Status)
	}

	byID := make(map[uuid.UUID]*model.OrderItem, len(order.Items))
	for i := range order.Items {
		byID[order.Items[i].ID] = &order.Items[i]
	}

	d := &model.Delivery{ID: uuid.New(), OrderID: order.ID, IdempotencyKey: key, Value: decimal.Zero}
	for _, l := range lines {
		item, ok := byID[l.itemID]
		if !ok {
			log.Debug().Str("order_id", order.ID.String()).Str("item_id", l.itemID.String()).Msg("delivery: unknown item skipped")
			continue
		}
		if l.qty == 0 {
			continue
		}
		next := item.DeliveredQuantity + l.qty
		if next > item.Quantity {
			return nil, validationf("sobre-entrega en item %s: entregado %d + %d supera la cantidad pedida %d",
				item.ID, item.DeliveredQuantity, l.qty, item.Quantity)
		}
		rows, err := r.orders.AddDeliveredTx(ctx, tx, item.ID, l.qty)
		if err != nil {
			return nil, classify(err, "delivery.update_item", "item no encontrado")
		}
		if rows == 0 {
			return nil, validationf("sobre-entrega en item %s: la cantidad cambio durante la operacion", item.ID)
		}
		item.DeliveredQuantity = next

		value := item.Price.Mul(decimal.NewFromInt(int64(l.qty)))
		d.Value = d.Value.Add(value)
		d.Lines = append(d.Lines, model.DeliveryLine{OrderItemID: item.ID, Quantity: l.qty, Value: value})
	}

	status := deriveDeliveryStatus(order.Status, order.Items)
	if status != order.Status {
		if err := r.orders.UpdateStatusTx(ctx, tx, order.ID, status); err != nil {
			return nil, classify(err, "delivery.update_status", "pedido no encontrado")
		}
		log.Info().Str("order_id", order.ID.String()).Str("from", order.Status).Str("to", status).Msg("order status changed")
		order.Status = status
	}
	d.ResultStatus = status

	if d.Value.IsPositive() && r.policy == config.DebitOnDelivery {
		desc := fmt.Sprintf("Entrega pedido %s", shortID(order.ID))
		if err := r.ledger.Debit(ctx, tx, order.UserID, d.Value, model.MovementDelivery, &d.ID, desc); err != nil {
			return nil, err
		}
	}

	if err := r.deliveries.Create(ctx, tx, d); err != nil {
		return nil, classify(err, "delivery.create", "pedido no encontrado")
	}
	return d, nil
}

type deliveryService struct {
	rec        *reconciler
	users      repository.UserRepository
	dispatcher *worker.Dispatcher
}

func NewDeliveryService(
	orders repository.OrderRepository,
	deliveries repository.DeliveryRepository,
	users repository.UserRepository,
	ledger LedgerService,
	dispatcher *worker.Dispatcher,
	policy string,
) DeliveryService {
	return &deliveryService{
		rec:        &reconciler{orders: orders, deliveries: deliveries, ledger: ledger, policy: policy},
		users:      users,
		dispatcher: dispatcher,
	}
}

// ── RegisterDelivery ─────────────────────────────────────────────────────────
// One transaction:
//   1. Lock the order row and load its items
//   2. Replay a stored result when the idempotency key was already used
//   3. Apply every line (guarded increments), derive status, debit value
//   4. Record the delivery
// Without an idempotency key the same payload delivers again.

func (s *deliveryService) RegisterDelivery(ctx context.Context, orderID uuid.UUID, req dto.RegisterDeliveryRequest) (*dto.DeliveryResponse, error) {
	lines := make([]deliveryLine, 0, len(req.Items))
	for _, it := range req.Items {
		id, err := uuid.Parse(it.ItemID)
		if err != nil {
			return nil, validationf("item_id invalido: %s", it.ItemID)
		}
		if it.Quantity < 0 {
			return nil, validationf("la cantidad entregada no puede ser negativa (item %s)", it.ItemID)
		}
		lines = append(lines, deliveryLine{itemID: id, qty: it.Quantity})
	}
	key := normalizeKey(req.IdempotencyKey)

	var (
		result   *model.Delivery
		order    *model.Order
		replayed bool
	)
	err := runTx(ctx, s.rec.orders.DB(), func(tx *gorm.DB) error {
		var err error
		order, err = s.rec.orders.FindByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return classify(err, "delivery.load_order", "pedido no encontrado")
		}

		if key != nil {
			prev, err := s.rec.deliveries.FindByKey(ctx, tx, *key)
			if err == nil {
				if prev.OrderID != order.ID {
					return validationf("la clave de idempotencia ya fue usada para otro pedido")
				}
				result, replayed = prev, true
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return classify(err, "delivery.find_key", "entrega no encontrada")
			}
		}

		result, err = s.rec.applyTx(ctx, tx, order, lines, key)
		return err
	})
	if err != nil {
		// A concurrent request with the same key may have committed first.
		if key != nil && errors.Is(err, ErrIntegrity) {
			if prev, ferr := s.rec.deliveries.FindByKey(ctx, s.rec.orders.DB(), *key); ferr == nil && prev.OrderID == orderID {
				return deliveryToResponse(prev, true), nil
			}
		}
		return nil, err
	}

	if replayed {
		log.Info().Str("order_id", orderID.String()).Str("idempotency_key", *key).Msg("delivery: replayed")
		return deliveryToResponse(result, true), nil
	}

	log.Info().
		Str("order_id", orderID.String()).
		Str("status", result.ResultStatus).
		Str("value", result.Value.StringFixed(2)).
		Msg("delivery registered")

	if result.Value.IsPositive() {
		if u, err := s.users.FindByID(ctx, order.UserID); err == nil {
			notify(ctx, s.dispatcher, u, worker.OrderRef(order.ID.String()),
				"Entrega registrada",
				fmt.Sprintf("Hola %s, registramos una entrega de tu pedido %s por $%s. Estado: %s.",
					u.Name, shortID(order.ID), result.Value.StringFixed(2), result.ResultStatus))
		}
	}
	return deliveryToResponse(result, false), nil
}

func deliveryToResponse(d *model.Delivery, replayed bool) *dto.DeliveryResponse {
	return &dto.DeliveryResponse{
		DeliveryID:     d.ID.String(),
		OrderID:        d.OrderID.String(),
		Status:         d.ResultStatus,
		DeliveredValue: d.Value,
		Replayed:       replayed,
	}
}

func normalizeKey(k *string) *string {
	if k == nil || *k == "" {
		return nil
	}
	return k
}

func shortID(id uuid.UUID) string { return id.String()[:8] }
