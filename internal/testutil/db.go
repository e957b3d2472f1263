// Package testutil provides an in-memory database and fixtures for service,
// repository and router tests.
package testutil

import (
	"fmt"
	"testing"

	"arcadeorders/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DummyHash is stored as password hash for fixtures that never log in.
const DummyHash = "$2a$04$fixture.fixture.fixture.fixture.fixture.fixture.fixtu"

// NewDB opens a private in-memory SQLite database with the full schema.
// A single connection keeps the in-memory database alive and serializes
// transactions, so code under test must run every statement of a
// transaction on its tx handle.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.ProductVariant{},
		&model.PriceHistory{},
		&model.Order{},
		&model.OrderItem{},
		&model.Delivery{},
		&model.DeliveryLine{},
		&model.Payment{},
		&model.BalanceMovement{},
	))
	return db
}

// ClientOpts customizes SeedClient.
type ClientOpts struct {
	Email               string
	IsRetailer          bool
	SurchargePercentage decimal.Decimal
	AllowedCategories   []string
	Inactive            bool
}

// SeedClient inserts an active client with a zero balance.
func SeedClient(t *testing.T, db *gorm.DB, opts ClientOpts) *model.User {
	t.Helper()
	email := opts.Email
	if email == "" {
		email = uuid.NewString()[:8] + "@cliente.test"
	}
	u := &model.User{
		Email:               email,
		Name:                "Cliente " + email,
		PasswordHash:        DummyHash,
		Role:                model.RoleClient,
		IsRetailer:          opts.IsRetailer,
		SurchargePercentage: opts.SurchargePercentage,
		AllowedCategories:   model.CategoryList(opts.AllowedCategories),
		Active:              true,
	}
	require.NoError(t, db.Create(u).Error)
	// GORM skips zero values of fields with a default tag on insert
	if opts.Inactive {
		require.NoError(t, db.Model(u).Update("active", false).Error)
		u.Active = false
	}
	return u
}

// SeedAdmin inserts an active admin.
func SeedAdmin(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()
	u := &model.User{
		Email:        uuid.NewString()[:8] + "@admin.test",
		Name:         "Admin",
		PasswordHash: DummyHash,
		Role:         model.RoleAdmin,
		Active:       true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// SeedProduct inserts a product with a single variant.
func SeedProduct(t *testing.T, db *gorm.DB, name, category string, base, led decimal.Decimal) *model.Product {
	t.Helper()
	p := &model.Product{
		Name:         name,
		BasePrice:    base,
		LEDSurcharge: led,
		Variants:     []model.ProductVariant{{Name: "Unico"}},
	}
	if category != "" {
		p.Category = &category
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// Balance reloads a user's balance.
func Balance(t *testing.T, db *gorm.DB, userID uuid.UUID) decimal.Decimal {
	t.Helper()
	var u model.User
	require.NoError(t, db.First(&u, "id = ?", userID).Error)
	return u.Balance
}

// Dec parses a decimal literal.
func Dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
