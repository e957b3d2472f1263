package model

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestSchemasParse(t *testing.T) {
	cache := &sync.Map{}
	for _, m := range []any{
		&User{}, &Product{}, &ProductVariant{}, &PriceHistory{},
		&Order{}, &OrderItem{}, &Delivery{}, &DeliveryLine{},
		&Payment{}, &BalanceMovement{},
	} {
		_, err := schema.Parse(m, cache, schema.NamingStrategy{})
		assert.NoErrorf(t, err, "%T", m)
	}
}

func TestUserSchema_AllowedCategoriesIsText(t *testing.T) {
	s, err := schema.Parse(&User{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	f := s.LookUpField("AllowedCategories")
	require.NotNil(t, f)
	assert.Equal(t, schema.DataType("text"), f.DataType)
	assert.Equal(t, "allowed_categories", f.DBName)
}

func TestCategoryList_RoundTrip(t *testing.T) {
	v, err := CategoryList{"arcade", "pinball"}.Value()
	require.NoError(t, err)
	assert.Equal(t, "{\"arcade\",\"pinball\"}", v)

	var back CategoryList
	require.NoError(t, back.Scan(v))
	assert.Equal(t, CategoryList{"arcade", "pinball"}, back)

	v, err = CategoryList(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestUser_CanOrderCategoryAndSurcharge(t *testing.T) {
	arcade := "arcade"
	pinball := "pinball"

	open := &User{}
	assert.True(t, open.CanOrderCategory(&arcade))
	assert.True(t, open.CanOrderCategory(nil))

	restricted := &User{AllowedCategories: CategoryList{"pinball"}}
	assert.True(t, restricted.CanOrderCategory(&pinball))
	assert.False(t, restricted.CanOrderCategory(&arcade))
	assert.False(t, restricted.CanOrderCategory(nil))

	pct := decimal.NewFromInt(15)
	assert.True(t, (&User{SurchargePercentage: pct}).EffectiveSurcharge().IsZero())
	assert.True(t, pct.Equal((&User{IsRetailer: true, SurchargePercentage: pct}).EffectiveSurcharge()))
}
