package membership

import (
	"encoding/json"
	"fmt"
)

// StationGroup lists the stations a guest group applies to
type StationGroup struct {
	Stations []string `json:"stations"`
}

// DiscountGroup is the DISCOUNT guest group. Besides the station list the
// backend puts the discount percentage of every station as a top level key:
//
//	{"stations": ["A", "B"], "A": 20, "B": 50}
type DiscountGroup struct {
	Stations []string
	Percent  map[string]float64
}

func (d *DiscountGroup) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d.Stations = nil
	d.Percent = map[string]float64{}
	for key, value := range raw {
		if key == "stations" {
			if err := json.Unmarshal(value, &d.Stations); err != nil {
				return fmt.Errorf("invalid DISCOUNT stations: %w", err)
			}
			continue
		}
		var pct float64
		if err := json.Unmarshal(value, &pct); err != nil {
			log.Debugf("ignoring non numeric discount %q for station %s", value, key)
			continue
		}
		d.Percent[key] = pct
	}
	return nil
}

func (d DiscountGroup) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Percent)+1)
	for station, pct := range d.Percent {
		out[station] = pct
	}
	stations := d.Stations
	if stations == nil {
		stations = []string{}
	}
	out["stations"] = stations
	return json.Marshal(out)
}

// GuestGroups is the membership payload of /user/information
type GuestGroups struct {
	Discount DiscountGroup `json:"DISCOUNT"`
	Flat     StationGroup  `json:"FLAT"`
	Free     StationGroup  `json:"FREE"`
}
