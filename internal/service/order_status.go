package service

import (
	"strings"

	"arcadeorders/internal/model"
)

// manualTransitions lists the targets an operator may request from each state.
// PARTIALLY_DELIVERED is never a manual target: it is derived from quantities.
var manualTransitions = map[string][]string{
	model.OrderPending:            {model.OrderInProduction, model.OrderDelivered, model.OrderCanceled},
	model.OrderInProduction:       {model.OrderPending, model.OrderDelivered, model.OrderCanceled},
	model.OrderPartiallyDelivered: {model.OrderDelivered, model.OrderCanceled},
	model.OrderDelivered:          {},
	model.OrderCanceled:           {},
}

// NormalizeStatus upper-cases s, maps the legacy IN_PREPARATION name to
// IN_PRODUCTION and rejects unknown values.
func NormalizeStatus(s string) (string, error) {
	st := strings.ToUpper(strings.TrimSpace(s))
	if st == model.OrderInPreparationLegacy {
		st = model.OrderInProduction
	}
	if _, ok := manualTransitions[st]; !ok {
		return "", validationf("estado de pedido desconocido: %q", s)
	}
	return st, nil
}

// IsTerminal reports whether no further transition is possible.
func IsTerminal(status string) bool {
	return status == model.OrderDelivered || status == model.OrderCanceled
}

// checkManualTransition validates an operator-requested status change.
func checkManualTransition(from, to string) error {
	if to == model.OrderPartiallyDelivered {
		return validationf("el estado %s se calcula a partir de las entregas y no puede asignarse manualmente", to)
	}
	if IsTerminal(from) {
		return validationf("el pedido esta en estado %s y no admite cambios", from)
	}
	for _, allowed := range manualTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return validationf("transicion de estado invalida: %s -> %s", from, to)
}

// deriveDeliveryStatus computes the order status after delivered quantities
// changed. current is returned when nothing has been delivered yet.
func deriveDeliveryStatus(current string, items []model.OrderItem) string {
	if len(items) == 0 {
		return current
	}
	all, some := true, false
	for _, it := range items {
		if it.DeliveredQuantity < it.Quantity {
			all = false
		}
		if it.DeliveredQuantity > 0 {
			some = true
		}
	}
	switch {
	case all:
		return model.OrderDelivered
	case some:
		return model.OrderPartiallyDelivered
	}
	return current
}
