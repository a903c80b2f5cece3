package pricing

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FlexBool decodes booleans the backend sends either as true/false or as 0/1.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true", "1", `"1"`, `"true"`:
		*b = true
	case "false", "0", `"0"`, `"false"`, "null", `""`:
		*b = false
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid boolean value %s", data)
		}
		*b = n != 0
	}
	return nil
}

func (b FlexBool) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(b))
}

// PriceInfo is the per-kWh price setup of a charger.
// When FollowSpot is set, Nominal is an offset added on top of the live spot cost.
type PriceInfo struct {
	Nominal    float64  `json:"nominal"`
	Minimum    float64  `json:"minimum"`
	Fallback   float64  `json:"fallback"`
	Valuta     string   `json:"valuta"`
	FollowSpot FlexBool `json:"follow_spot"`
}

// MemberProfile is the discount designation a member has on a single station.
type MemberProfile struct {
	StationID      string `json:"stationid,omitempty"`
	TariffPct      int    `json:"tariff_pct"`
	DiscountTariff int    `json:"discount_tariff"`
	Flat           bool   `json:"flat"`
	Free           bool   `json:"free"`
}

// DefaultMemberProfile returns the profile used for stations without any group membership
func DefaultMemberProfile() MemberProfile {
	return MemberProfile{}
}

// Spot is the current live spot cost, in the currency subunit (øre, cents)
type Spot struct {
	CurrentCost float64
}
