package lk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	geo "github.com/kellydunn/golang-geo"

	"github.com/denysvitali/ladeklubben-cli/pricing"
	"github.com/denysvitali/ladeklubben-cli/schedule"
)

type ConnectorStatus string

const (
	ConnectorStatusAvailable   ConnectorStatus = "Available"
	ConnectorStatusPreparing   ConnectorStatus = "Preparing"
	ConnectorStatusCharging    ConnectorStatus = "Charging"
	ConnectorStatusSuspendedEV ConnectorStatus = "SuspendedEV"
	ConnectorStatusFinishing   ConnectorStatus = "Finishing"
)

type LocationInfo struct {
	Brief     string  `json:"brief"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	Zip       string  `json:"zip"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type ChargerType struct {
	IsSmart   bool           `json:"isSmart,omitempty"`
	Info      map[string]any `json:"info,omitempty"`
	Model     string         `json:"model,omitempty"`
	Brand     string         `json:"brand,omitempty"`
	Power     string         `json:"power,omitempty"`
	Connector string         `json:"connector,omitempty"`
}

// EnergyPrices is the spot cost series of a station, in subunits per kWh
type EnergyPrices struct {
	Costprice []float64 `json:"Costprice"`
	Start     int64     `json:"start"`
}

// Current returns the spot cost of the running hour, nil without spot data
func (e *EnergyPrices) Current() *pricing.Spot {
	if e == nil || len(e.Costprice) == 0 {
		return nil
	}
	return &pricing.Spot{CurrentCost: e.Costprice[0]}
}

// OnlineStatus is sent as a [timestamp, online] pair
type OnlineStatus struct {
	Since  int64
	Online bool
}

func (o *OnlineStatus) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("online status: expected 2 elements, got %d", len(pair))
	}
	var since float64
	if err := json.Unmarshal(pair[0], &since); err != nil {
		return fmt.Errorf("online status timestamp: %w", err)
	}
	if err := json.Unmarshal(pair[1], &o.Online); err != nil {
		return fmt.Errorf("online status flag: %w", err)
	}
	o.Since = int64(since)
	return nil
}

func (o OnlineStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{o.Since, o.Online})
}

type PublicCharger struct {
	StationID    string            `json:"stationid"`
	Prices       pricing.PriceInfo `json:"prices"`
	Location     LocationInfo      `json:"location"`
	OpenHours    []schedule.Window `json:"openhours"`
	Type         ChargerType       `json:"type"`
	Connector    ConnectorStatus   `json:"connector"`
	Online       *OnlineStatus     `json:"online,omitempty"`
	QR           string            `json:"qr"`
	EnergyPrices *EnergyPrices     `json:"energyprices,omitempty"`
}

type publicChargersResponse struct {
	UpdateTime int64           `json:"updatetime"`
	Upd        []PublicCharger `json:"upd"`
}

func (p PublicCharger) IsAvailable() bool {
	return p.Connector == ConnectorStatusAvailable
}

func (p PublicCharger) City() string {
	return p.Location.City
}

func (p PublicCharger) OpeningHours() string {
	return schedule.OpeningHours(p.OpenHours)
}

// IsOpen reports whether an opening hours window contains t.
// Chargers without opening hours are treated as open.
func (p PublicCharger) IsOpen(t time.Time) bool {
	if len(p.OpenHours) == 0 || p.OpeningHours() == "Always Open" {
		return true
	}
	for _, w := range p.OpenHours {
		if w.Contains(t) {
			return true
		}
	}
	return false
}

// DistanceKm is the great circle distance from the given position to the charger
func (p PublicCharger) DistanceKm(latitude, longitude float64) float64 {
	from := geo.NewPoint(latitude, longitude)
	to := geo.NewPoint(p.Location.Latitude, p.Location.Longitude)
	return from.GreatCircleDistance(to)
}

// GetPublicChargers returns every public charger known to the backend
func (c *Client) GetPublicChargers(ctx context.Context) ([]PublicCharger, error) {
	var response publicChargersResponse
	if err := c.do(ctx, http.MethodGet, "/chargers/public", nil, &response); err != nil {
		return nil, fmt.Errorf("failed to get public chargers: %w", err)
	}
	log.Debugf("got %d public chargers (updated %d)", len(response.Upd), response.UpdateTime)
	return response.Upd, nil
}

func (c *Client) GetPublicCharger(ctx context.Context, stationID string) (*PublicCharger, error) {
	chargers, err := c.GetPublicChargers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range chargers {
		if chargers[i].StationID == stationID {
			return &chargers[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrChargerNotFound, stationID)
}
