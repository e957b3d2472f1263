package service

import (
	"context"
	"time"

	"arcadeorders/internal/dto"
	"arcadeorders/internal/model"
	"arcadeorders/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerService owns every change of a client balance. Debit and Credit must
// be called with the caller's open transaction so the balance change, the
// movement row and the business event commit or roll back together.
type LedgerService interface {
	Debit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amount decimal.Decimal, kind string, ref *uuid.UUID, desc string) error
	Credit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amount decimal.Decimal, kind string, ref *uuid.UUID, desc string) error
	// Opening records a signed initial balance (positive = owes).
	Opening(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amount decimal.Decimal) error
	Statement(ctx context.Context, userID uuid.UUID) (*dto.StatementResponse, error)
}

type ledgerService struct {
	repo  repository.LedgerRepository
	users repository.UserRepository
}

func NewLedgerService(repo repository.LedgerRepository, users repository.UserRepository) LedgerService {
	return &ledgerService{repo: repo, users: users}
}

func (s *ledgerService) Debit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amount decimal.Decimal, kind string, ref *uuid.UUID, desc string) error {
	if !amount.IsPositive() {
		return validationf("el importe a debitar debe ser mayor a cero")
	}
	return s.apply(ctx, tx, userID, amount, kind, ref, desc)
}

func (s *ledgerService) Credit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amount decimal.Decimal, kind string, ref *uuid.UUID, desc string) error {
	if !amount.IsPositive() {
		return validationf("el importe a acreditar debe ser mayor a cero")
	}
	return s.apply(ctx, tx, userID, amount.Neg(), kind, ref, desc)
}

func (s *ledgerService) Opening(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amount decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}
	return s.apply(ctx, tx, userID, amount, model.MovementOpening, nil, "Saldo inicial")
}

func (s *ledgerService) apply(ctx context.Context, tx *gorm.DB, userID uuid.UUID, signed decimal.Decimal, kind string, ref *uuid.UUID, desc string) error {
	m := &model.BalanceMovement{
		UserID:      userID,
		Kind:        kind,
		Amount:      RoundMoney(signed),
		ReferenceID: ref,
		Description: desc,
	}
	if err := s.repo.ApplyTx(ctx, tx, m); err != nil {
		return classify(err, "ledger.apply", "cliente no encontrado")
	}
	log.Info().
		Str("user_id", userID.String()).
		Str("kind", kind).
		Str("amount", m.Amount.StringFixed(2)).
		Msg("ledger: balance movement")
	return nil
}

// Statement returns the client's balance and movements, newest first, each
// with the balance right after it was applied.
func (s *ledgerService) Statement(ctx context.Context, userID uuid.UUID) (*dto.StatementResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, classify(err, "ledger.statement", "cliente no encontrado")
	}
	movements, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, classify(err, "ledger.statement", "cliente no encontrado")
	}

	sum, err := s.repo.SumByUser(ctx, userID)
	if err != nil {
		return nil, classify(err, "ledger.statement", "cliente no encontrado")
	}
	reconciled := sum.Equal(user.Balance)
	if !reconciled {
		log.Error().
			Str("user_id", userID.String()).
			Str("balance", user.Balance.StringFixed(2)).
			Str("movements", sum.StringFixed(2)).
			Msg("ledger: balance does not match movements")
	}

	resp := &dto.StatementResponse{
		Client:     clientToResponse(user),
		Balance:    user.Balance,
		Reconciled: reconciled,
		Movements:  make([]dto.MovementResponse, len(movements)),
	}
	running := user.Balance
	for i, m := range movements {
		var ref *string
		if m.ReferenceID != nil {
			r := m.ReferenceID.String()
			ref = &r
		}
		resp.Movements[i] = dto.MovementResponse{
			ID:             m.ID.String(),
			Kind:           m.Kind,
			Amount:         m.Amount,
			RunningBalance: running,
			ReferenceID:    ref,
			Description:    m.Description,
			CreatedAt:      m.CreatedAt.Format(time.RFC3339),
		}
		running = running.Sub(m.Amount)
	}
	return resp, nil
}
