package pricing

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentPrice(t *testing.T) {
	tests := []struct {
		name     string
		info     PriceInfo
		profile  *MemberProfile
		spot     *Spot
		expected string
	}{
		{
			name:     "fixed price without member profile",
			info:     PriceInfo{Nominal: 3.00, Minimum: 2.00},
			expected: "4.13",
		},
		{
			name:     "discount floored to minimum",
			info:     PriceInfo{Nominal: 3.00, Minimum: 2.00},
			profile:  &MemberProfile{TariffPct: 50},
			expected: "2.75",
		},
		{
			name:     "discount above minimum",
			info:     PriceInfo{Nominal: 4.00, Minimum: 1.00},
			profile:  &MemberProfile{TariffPct: 25},
			expected: "4.13",
		},
		{
			name:     "zero discount profile behaves like no profile",
			info:     PriceInfo{Nominal: 3.00, Minimum: 2.00},
			profile:  &MemberProfile{},
			expected: "4.13",
		},
		{
			name:     "flat member",
			info:     PriceInfo{Nominal: 3.00, Minimum: 2.00},
			profile:  &MemberProfile{Flat: true, TariffPct: 10},
			expected: "0.00",
		},
		{
			name:     "free member ignores spot",
			info:     PriceInfo{Nominal: 3.00, Minimum: 2.00, FollowSpot: true},
			profile:  &MemberProfile{Free: true},
			spot:     &Spot{CurrentCost: 250},
			expected: "0.00",
		},
		{
			name:     "spot price plus offset",
			info:     PriceInfo{Nominal: 0.50, FollowSpot: true},
			spot:     &Spot{CurrentCost: 50},
			expected: "1.38",
		},
		{
			name:     "spot price with member discount subtracted after blending",
			info:     PriceInfo{Nominal: 1.00, FollowSpot: true},
			profile:  &MemberProfile{TariffPct: 20},
			spot:     &Spot{CurrentCost: 100},
			expected: "2.20",
		},
		{
			name:     "fallback without spot data",
			info:     PriceInfo{Nominal: 1.00, Fallback: 3.00, FollowSpot: true},
			expected: "4.13",
		},
		{
			name:     "fallback with member discount",
			info:     PriceInfo{Nominal: 1.00, Fallback: 3.00, FollowSpot: true},
			profile:  &MemberProfile{TariffPct: 10},
			expected: "3.99",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CurrentPrice(tt.info, tt.profile, tt.spot))
		})
	}
}

func TestCurrentPrice_FixedPriceIdentity(t *testing.T) {
	factor := decimal.RequireFromString("1.375")
	for _, nominal := range []float64{0, 0.5, 1.99, 2.5, 3, 4.75} {
		for _, minimum := range []float64{0, 1, 2.25} {
			for _, pct := range []int{0, 10, 33, 50, 100} {
				profile := &MemberProfile{TariffPct: pct}
				n := decimal.NewFromFloat(nominal)
				afterDiscount := n.Sub(n.Mul(decimal.NewFromInt(int64(pct))).Div(decimal.NewFromInt(100)))
				expected := decimal.Max(afterDiscount, decimal.NewFromFloat(minimum)).Mul(factor).StringFixed(2)

				actual := CurrentPrice(PriceInfo{Nominal: nominal, Minimum: minimum}, profile, nil)
				assert.Equal(t, expected, actual, "nominal=%v minimum=%v pct=%d", nominal, minimum, pct)
			}
		}
	}
}

func TestConvertListPrice(t *testing.T) {
	lp := PriceInfo{Nominal: 2.00, Minimum: 1.10, Fallback: 3.33, Valuta: "DKK", FollowSpot: true}

	withVAT := ConvertListPrice(lp, true)
	assert.Equal(t, 2.5, withVAT.Nominal)
	assert.Equal(t, 1.38, withVAT.Minimum)
	assert.Equal(t, 4.16, withVAT.Fallback)
	assert.Equal(t, "DKK", withVAT.Valuta)
	assert.True(t, bool(withVAT.FollowSpot))

	withoutVAT := ConvertListPrice(PriceInfo{Nominal: 2.5, Minimum: 1.25, Fallback: 5}, false)
	assert.Equal(t, 2.0, withoutVAT.Nominal)
	assert.Equal(t, 1.0, withoutVAT.Minimum)
	assert.Equal(t, 4.0, withoutVAT.Fallback)
}

func TestPriceInfo_FollowSpotDecoding(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{`{"nominal":1,"follow_spot":1}`, true},
		{`{"nominal":1,"follow_spot":0}`, false},
		{`{"nominal":1,"follow_spot":true}`, true},
		{`{"nominal":1,"follow_spot":false}`, false},
		{`{"nominal":1}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var info PriceInfo
			require.NoError(t, json.Unmarshal([]byte(tt.input), &info))
			assert.Equal(t, tt.expected, bool(info.FollowSpot))
		})
	}

	out, err := json.Marshal(PriceInfo{FollowSpot: true})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"follow_spot":true`)
}
