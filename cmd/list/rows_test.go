package list

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denysvitali/ladeklubben-cli/lk"
	"github.com/denysvitali/ladeklubben-cli/pricing"
)

type members map[string]pricing.MemberProfile

func (m members) Lookup(stationID string) pricing.MemberProfile {
	if p, ok := m[stationID]; ok {
		return p
	}
	return pricing.DefaultMemberProfile()
}

func testChargers() []lk.PublicCharger {
	return []lk.PublicCharger{
		{
			StationID: "300",
			Prices:    pricing.PriceInfo{Nominal: 3, Valuta: "dkk"},
			Location:  lk.LocationInfo{City: "Copenhagen", Latitude: 55.6761, Longitude: 12.5683},
			Connector: lk.ConnectorStatusAvailable,
		},
		{
			StationID: "100",
			Prices:    pricing.PriceInfo{Nominal: 3, Valuta: "dkk"},
			Location:  lk.LocationInfo{City: "Aarhus", Latitude: 56.1629, Longitude: 10.2039},
			Connector: lk.ConnectorStatusCharging,
		},
		{
			StationID: "200",
			Prices:    pricing.PriceInfo{Nominal: 2, Valuta: "dkk"},
			Location:  lk.LocationInfo{City: "aarhus", Latitude: 56.15, Longitude: 10.21},
			Connector: lk.ConnectorStatusAvailable,
		},
	}
}

func TestBuildRows_MemberPrice(t *testing.T) {
	rows := BuildRows(testChargers(), members{"100": {Free: true}}, Options{Now: time.Now()})
	require.Len(t, rows, 3)

	assert.Equal(t, "100", rows[0].StationID)
	assert.Equal(t, "0.00", rows[0].Price)
	assert.Equal(t, "200", rows[1].StationID)
	assert.Equal(t, "300", rows[2].StationID)
	assert.Equal(t, "4.13", rows[2].Price)
	assert.True(t, rows[2].Open, "chargers without opening hours are open")
}

func TestBuildRows_Filters(t *testing.T) {
	rows := BuildRows(testChargers(), nil, Options{AvailableOnly: true, City: "AARHUS"})
	require.Len(t, rows, 1)
	assert.Equal(t, "200", rows[0].StationID)
	assert.True(t, rows[0].Available)
}

func TestBuildRows_SortsByDistance(t *testing.T) {
	opts := Options{
		Location: lk.LocationConfig{Latitude: 55.68, Longitude: 12.57},
		Limit:    2,
	}
	rows := BuildRows(testChargers(), nil, opts)
	require.Len(t, rows, 2)

	assert.Equal(t, "300", rows[0].StationID)
	assert.Less(t, rows[0].DistanceKm, 1.0)
	assert.Equal(t, "200", rows[1].StationID)
	assert.InDelta(t, 155, rows[1].DistanceKm, 5)
}
