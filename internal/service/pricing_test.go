package service

import (
	"testing"

	"arcadeorders/internal/model"
	"arcadeorders/internal/testutil"

	"github.com/stretchr/testify/assert"
)

func TestComputeLinePrice(t *testing.T) {
	cases := []struct {
		name      string
		base, led string
		buttons   string
		retailer  bool
		surcharge string
		want      string
	}{
		{"final consumer common", "100", "20", model.ButtonsCommon, false, "10", "100"},
		{"retailer 10%", "100", "20", model.ButtonsCommon, true, "10", "110"},
		{"retailer 10% with LED", "100", "20", model.ButtonsLED, true, "10", "130"},
		{"LED surcharge is never marked up", "0", "20", model.ButtonsLED, true, "50", "20"},
		{"retailer without surcharge", "250.50", "0", model.ButtonsCommon, true, "0", "250.50"},
		{"final consumer LED", "99.99", "15.01", model.ButtonsLED, false, "0", "115"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeLinePrice(PriceInput{
				BasePrice:           testutil.Dec(tc.base),
				LEDSurcharge:        testutil.Dec(tc.led),
				ButtonsType:         tc.buttons,
				IsRetailer:          tc.retailer,
				SurchargePercentage: testutil.Dec(tc.surcharge),
			})
			assert.Truef(t, testutil.Dec(tc.want).Equal(got), "want %s got %s", tc.want, got)
		})
	}
}

func TestRoundMoney_HalfAwayFromZero(t *testing.T) {
	assert.Equal(t, "10.01", RoundMoney(testutil.Dec("10.005")).StringFixed(2))
	assert.Equal(t, "-10.01", RoundMoney(testutil.Dec("-10.005")).StringFixed(2))
	assert.Equal(t, "33.33", RoundMoney(testutil.Dec("33.334")).StringFixed(2))
	// 33.33 * 1.15 = 38.3295
	price := ComputeLinePrice(PriceInput{
		BasePrice:           testutil.Dec("33.33"),
		IsRetailer:          true,
		SurchargePercentage: testutil.Dec("15"),
		ButtonsType:         model.ButtonsCommon,
	})
	assert.Equal(t, "38.33", RoundMoney(price).StringFixed(2))
}
