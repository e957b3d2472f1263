package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// User is both the login identity and, for role "client", the balance holder.
// Balance is a signed accumulator: positive = owes money, negative = credit in
// the client's favor. It is only ever changed through SQL increments issued by
// the ledger repository, never by Save().
type User struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email               string    `gorm:"uniqueIndex;not null"`
	Name                string    `gorm:"not null"`
	Phone               *string
	PasswordHash        string          `gorm:"not null"`
	Role                string          `gorm:"type:varchar(20);not null;default:'client'"`
	Balance             decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	IsRetailer          bool            `gorm:"not null;default:false"`
	SurchargePercentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	// AllowedCategories restricts the catalog a client can order from; empty = all.
	AllowedCategories CategoryList `gorm:"column:allowed_categories"`
	Active            bool         `gorm:"not null;default:true"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// CategoryList is stored as a postgres text[] through lib/pq's array codec.
// Other dialects (sqlite in tests) keep the same literal in a text column.
type CategoryList []string

func (c CategoryList) Value() (driver.Value, error) { return pq.StringArray(c).Value() }

func (c *CategoryList) Scan(src any) error { return (*pq.StringArray)(c).Scan(src) }

// GormDataType lets the schema parser resolve the field; a nil list has no
// driver value to infer it from.
func (CategoryList) GormDataType() string { return "text" }

func (CategoryList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// CanOrderCategory reports whether the client may order products of category.
func (u *User) CanOrderCategory(category *string) bool {
	if len(u.AllowedCategories) == 0 {
		return true
	}
	if category == nil {
		return false
	}
	for _, c := range u.AllowedCategories {
		if c == *category {
			return true
		}
	}
	return false
}

// EffectiveSurcharge is the markup percentage applied to base prices for this
// client: zero unless the client is a retailer.
func (u *User) EffectiveSurcharge() decimal.Decimal {
	if !u.IsRetailer {
		return decimal.Zero
	}
	return u.SurchargePercentage
}
