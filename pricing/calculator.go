package pricing

import (
	"github.com/shopspring/decimal"
)

var (
	// ServiceTariff is the 10% service fee added on top of the energy price
	ServiceTariff = decimal.RequireFromString("1.10")
	// VAT is the 25% value added tax
	VAT = decimal.RequireFromString("1.25")

	// vatRemoval is the exact inverse of VAT
	vatRemoval = decimal.RequireFromString("0.8")
	hundred    = decimal.NewFromInt(100)
)

// Calculate returns the displayed per-kWh price of a charger.
//
// The member discount is taken off the nominal price, the minimum is applied
// as a floor, and only then service tariff and VAT are added. For spot
// following chargers the discount is subtracted once more after the spot
// cost (or the fallback price) has been blended in.
func Calculate(info PriceInfo, profile *MemberProfile, spot *Spot) decimal.Decimal {
	if profile != nil && (profile.Flat || profile.Free) {
		return decimal.Zero
	}

	nominal := decimal.NewFromFloat(info.Nominal)
	price := nominal
	discount := decimal.Zero

	if profile != nil && profile.TariffPct > 0 {
		discount = nominal.Mul(decimal.NewFromInt(int64(profile.TariffPct))).Div(hundred)
		price = nominal.Sub(discount)
	}

	minimum := decimal.NewFromFloat(info.Minimum)
	if price.LessThan(minimum) {
		price = minimum
	}

	if info.FollowSpot {
		if spot != nil {
			price = price.Add(decimal.NewFromFloat(spot.CurrentCost).Div(hundred))
		} else {
			price = decimal.NewFromFloat(info.Fallback)
		}
		price = price.Sub(discount)
	}

	return price.Mul(ServiceTariff).Mul(VAT)
}

// CurrentPrice is Calculate formatted with two fraction digits, rounding half away from zero.
func CurrentPrice(info PriceInfo, profile *MemberProfile, spot *Spot) string {
	return Calculate(info, profile, spot).StringFixed(2)
}

// ConvertListPrice switches a list price between excluding and including VAT.
// Nominal, minimum and fallback are rounded to two decimals.
func ConvertListPrice(lp PriceInfo, addVAT bool) PriceInfo {
	factor := vatRemoval
	if addVAT {
		factor = VAT
	}
	convert := func(v float64) float64 {
		return decimal.NewFromFloat(v).Mul(factor).Round(2).InexactFloat64()
	}

	converted := lp
	converted.Nominal = convert(lp.Nominal)
	converted.Minimum = convert(lp.Minimum)
	converted.Fallback = convert(lp.Fallback)
	return converted
}
