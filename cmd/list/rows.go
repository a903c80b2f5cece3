package list

import (
	"sort"
	"strings"
	"time"

	"github.com/denysvitali/ladeklubben-cli/lk"
	"github.com/denysvitali/ladeklubben-cli/pricing"
	"github.com/denysvitali/ladeklubben-cli/session"
)

// Options filter and order the charger list
type Options struct {
	AvailableOnly bool
	City          string
	Limit         int
	Location      lk.LocationConfig
	Now           time.Time
}

// Row is one printed charger
type Row struct {
	StationID  string
	City       string
	Address    string
	Available  bool
	Open       bool
	Hours      string
	Price      string
	Valuta     string
	DistanceKm float64
}

// BuildRows applies the filters and prices every charger with the member profile of its station.
// With a location the rows are sorted by distance, otherwise by station id.
func BuildRows(chargers []lk.PublicCharger, members session.MemberLookup, opts Options) []Row {
	rows := make([]Row, 0, len(chargers))
	for _, c := range chargers {
		if opts.AvailableOnly && !c.IsAvailable() {
			continue
		}
		if opts.City != "" && !strings.EqualFold(c.City(), opts.City) {
			continue
		}

		profile := pricing.DefaultMemberProfile()
		if members != nil {
			profile = members.Lookup(c.StationID)
		}

		r := Row{
			StationID: c.StationID,
			City:      c.City(),
			Address:   c.Location.Address,
			Available: c.IsAvailable(),
			Open:      c.IsOpen(opts.Now),
			Hours:     c.OpeningHours(),
			Price:     pricing.CurrentPrice(c.Prices, &profile, c.EnergyPrices.Current()),
			Valuta:    c.Prices.Valuta,
		}
		if opts.Location.IsSet() {
			r.DistanceKm = c.DistanceKm(opts.Location.Latitude, opts.Location.Longitude)
		}
		rows = append(rows, r)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if opts.Location.IsSet() {
			return rows[i].DistanceKm < rows[j].DistanceKm
		}
		return rows[i].StationID < rows[j].StationID
	})

	if opts.Limit > 0 && len(rows) > opts.Limit {
		rows = rows[:opts.Limit]
	}
	return rows
}
