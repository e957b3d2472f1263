package service

import (
	"arcadeorders/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PriceInput is everything the unit price of an order line depends on.
type PriceInput struct {
	BasePrice           decimal.Decimal
	LEDSurcharge        decimal.Decimal
	ButtonsType         string
	IsRetailer          bool
	SurchargePercentage decimal.Decimal
}

// ComputeLinePrice returns the unit price at full precision.
// The retailer markup applies to the base price only; the LED surcharge is a
// flat addition that is never marked up.
func ComputeLinePrice(in PriceInput) decimal.Decimal {
	price := in.BasePrice
	if in.IsRetailer && in.SurchargePercentage.IsPositive() {
		price = price.Mul(decimal.NewFromInt(1).Add(in.SurchargePercentage.Div(hundred)))
	}
	if in.ButtonsType == model.ButtonsLED {
		price = price.Add(in.LEDSurcharge)
	}
	return price
}

// RoundMoney rounds to cents, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
