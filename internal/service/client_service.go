package service

import (
	"context"
	"errors"
	"strings"

	"arcadeorders/internal/dto"
	"arcadeorders/internal/infra"
	"arcadeorders/internal/model"
	"arcadeorders/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 12

type ClientService interface {
	CreateClient(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error)
	UpdateClient(ctx context.Context, id uuid.UUID, req dto.UpdateClientRequest) (*dto.ClientResponse, error)
	GetClient(ctx context.Context, id uuid.UUID) (*dto.ClientResponse, error)
	ListClients(ctx context.Context, includeInactive bool) ([]dto.ClientResponse, error)
	Statement(ctx context.Context, id uuid.UUID) (*dto.StatementResponse, error)
	StatementPDF(ctx context.Context, id uuid.UUID) ([]byte, error)
}

type clientService struct {
	repo         repository.UserRepository
	ledger       LedgerService
	businessName string
}

func NewClientService(repo repository.UserRepository, ledger LedgerService, businessName string) ClientService {
	return &clientService{repo: repo, ledger: ledger, businessName: businessName}
}

func validateSurcharge(pct *decimal.Decimal) error {
	if pct != nil && (pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(999))) {
		return validationf("el recargo debe estar entre 0 y 999")
	}
	return nil
}

func cleanCategories(in []string) model.CategoryList {
	if len(in) == 0 {
		return nil
	}
	out := make(model.CategoryList, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// CreateClient registers a client account. A non-zero opening balance is
// written through the ledger as an OPENING movement in the same transaction.
func (s *clientService) CreateClient(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error) {
	if err := validateSurcharge(req.SurchargePercentage); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, persistence("client.hash", err)
	}

	u := &model.User{
		Email:             strings.ToLower(strings.TrimSpace(req.Email)),
		Name:              strings.TrimSpace(req.Name),
		Phone:             req.Phone,
		PasswordHash:      string(hash),
		Role:              model.RoleClient,
		IsRetailer:        req.IsRetailer,
		AllowedCategories: cleanCategories(req.AllowedCategories),
		Active:            true,
	}
	if req.SurchargePercentage != nil {
		u.SurchargePercentage = *req.SurchargePercentage
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, u); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return integrity("ya existe un usuario con ese email")
			}
			return classify(err, "client.create", "cliente no encontrado")
		}
		if req.OpeningBalance != nil {
			return s.ledger.Opening(ctx, tx, u.ID, RoundMoney(*req.OpeningBalance))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("client_id", u.ID.String()).Str("email", u.Email).Msg("client created")
	return s.GetClient(ctx, u.ID)
}

func (s *clientService) UpdateClient(ctx context.Context, id uuid.UUID, req dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	if err := validateSurcharge(req.SurchargePercentage); err != nil {
		return nil, err
	}
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		fields["phone"] = req.Phone
	}
	if req.IsRetailer != nil {
		fields["is_retailer"] = *req.IsRetailer
	}
	if req.SurchargePercentage != nil {
		fields["surcharge_percentage"] = *req.SurchargePercentage
	}
	if req.AllowedCategories != nil {
		fields["allowed_categories"] = cleanCategories(req.AllowedCategories)
	}
	if req.Active != nil {
		fields["active"] = *req.Active
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcryptCost)
		if err != nil {
			return nil, persistence("client.hash", err)
		}
		fields["password_hash"] = string(hash)
	}

	if len(fields) > 0 {
		if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
			return nil, classify(err, "client.update", "cliente no encontrado")
		}
	}
	return s.GetClient(ctx, id)
}

func (s *clientService) GetClient(ctx context.Context, id uuid.UUID) (*dto.ClientResponse, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err, "client.get", "cliente no encontrado")
	}
	if u.Role != model.RoleClient {
		return nil, notFound("cliente no encontrado")
	}
	resp := clientToResponse(u)
	return &resp, nil
}

func (s *clientService) ListClients(ctx context.Context, includeInactive bool) ([]dto.ClientResponse, error) {
	users, err := s.repo.ListClients(ctx, includeInactive)
	if err != nil {
		return nil, classify(err, "client.list", "cliente no encontrado")
	}
	resp := make([]dto.ClientResponse, len(users))
	for i := range users {
		resp[i] = clientToResponse(&users[i])
	}
	return resp, nil
}

func (s *clientService) Statement(ctx context.Context, id uuid.UUID) (*dto.StatementResponse, error) {
	return s.ledger.Statement(ctx, id)
}

func (s *clientService) StatementPDF(ctx context.Context, id uuid.UUID) ([]byte, error) {
	st, err := s.ledger.Statement(ctx, id)
	if err != nil {
		return nil, err
	}
	pdf, err := infra.RenderStatementPDF(st, s.businessName)
	if err != nil {
		return nil, persistence("client.statement_pdf", err)
	}
	return pdf, nil
}
