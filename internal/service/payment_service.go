package service

import (
	"context"
	"errors"
	"fmt"

	"arcadeorders/internal/dto"
	"arcadeorders/internal/model"
	"arcadeorders/internal/repository"
	"arcadeorders/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type PaymentService interface {
	RegisterPayment(ctx context.Context, req dto.RegisterPaymentRequest) (*dto.PaymentResponse, error)
	ListPayments(ctx context.Context, actor Actor, filter dto.PaymentFilter) (*dto.PaymentListResponse, error)
}

type paymentService struct {
	repo       repository.PaymentRepository
	users      repository.UserRepository
	ledger     LedgerService
	dispatcher *worker.Dispatcher
}

func NewPaymentService(
	repo repository.PaymentRepository,
	users repository.UserRepository,
	ledger LedgerService,
	dispatcher *worker.Dispatcher,
) PaymentService {
	return &paymentService{repo: repo, users: users, ledger: ledger, dispatcher: dispatcher}
}

// RegisterPayment stores the payment and credits exactly its amount in one
// transaction. A repeated idempotency key returns the first payment.
func (s *paymentService) RegisterPayment(ctx context.Context, req dto.RegisterPaymentRequest) (*dto.PaymentResponse, error) {
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, validationf("client_id invalido")
	}
	if !req.Amount.IsPositive() {
		return nil, validationf("el monto del pago debe ser mayor a cero")
	}
	if !req.Amount.Equal(RoundMoney(req.Amount)) {
		return nil, validationf("el monto del pago admite como maximo dos decimales")
	}
	ptype := req.Type
	if ptype == "" {
		ptype = model.PaymentTypeGeneral
	}
	key := normalizeKey(req.IdempotencyKey)

	var (
		payment  *model.Payment
		client   *model.User
		replayed bool
	)
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if key != nil {
			prev, err := s.repo.FindByKey(ctx, tx, *key)
			if err == nil {
				if prev.UserID != clientID {
					return validationf("la clave de idempotencia ya fue usada para otro cliente")
				}
				payment, replayed = prev, true
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return classify(err, "payment.find_key", "pago no encontrado")
			}
		}

		var err error
		client, err = s.users.FindByIDTx(ctx, tx, clientID)
		if err != nil {
			return classify(err, "payment.find_client", "cliente no encontrado")
		}
		// deactivated clients may still settle their debt
		if client.Role != model.RoleClient {
			return validationf("solo se registran pagos de clientes")
		}

		payment = &model.Payment{
			UserID:         clientID,
			Amount:         req.Amount,
			Method:         req.Method,
			Type:           ptype,
			Notes:          req.Notes,
			IdempotencyKey: key,
		}
		if err := s.repo.Create(ctx, tx, payment); err != nil {
			return classify(err, "payment.create", "cliente no encontrado")
		}
		desc := fmt.Sprintf("Pago %s (%s)", req.Method, ptype)
		return s.ledger.Credit(ctx, tx, clientID, req.Amount, model.MovementPayment, &payment.ID, desc)
	})
	if err != nil {
		if key != nil && errors.Is(err, ErrIntegrity) {
			if prev, ferr := s.repo.FindByKey(ctx, s.repo.DB(), *key); ferr == nil && prev.UserID == clientID {
				return paymentToResponse(prev, true), nil
			}
		}
		return nil, err
	}

	if replayed {
		log.Info().Str("payment_id", payment.ID.String()).Str("idempotency_key", *key).Msg("payment: replayed")
		return paymentToResponse(payment, true), nil
	}

	log.Info().
		Str("payment_id", payment.ID.String()).
		Str("client_id", clientID.String()).
		Str("amount", payment.Amount.StringFixed(2)).
		Msg("payment registered")

	notify(ctx, s.dispatcher, client, worker.PaymentRef(payment.ID.String()),
		"Pago registrado",
		fmt.Sprintf("Hola %s, registramos tu pago de $%s. Gracias.", client.Name, payment.Amount.StringFixed(2)))

	return paymentToResponse(payment, false), nil
}

func (s *paymentService) ListPayments(ctx context.Context, actor Actor, filter dto.PaymentFilter) (*dto.PaymentListResponse, error) {
	if !actor.IsAdmin() {
		filter.ClientID = actor.UserID.String()
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	payments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, classify(err, "payment.list", "pago no encontrado")
	}
	resp := &dto.PaymentListResponse{Data: make([]dto.PaymentResponse, len(payments)), Total: total, Page: filter.Page, Limit: filter.Limit}
	for i := range payments {
		resp.Data[i] = *paymentToResponse(&payments[i], false)
	}
	return resp, nil
}
