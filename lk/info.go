package lk

import (
	"context"
	"fmt"
	"net/http"
)

// ChargeState is the live state of an owned charger. Flags are sent as 0 or 1.
type ChargeState struct {
	AutoOn            int           `json:"autoon"`
	ConnectorOccupied int           `json:"connector_occupied"`
	GuestOn           int           `json:"gueston"`
	IsCharging        int           `json:"is_charging"`
	ManOn             int           `json:"manon"`
	Online            *OnlineStatus `json:"online,omitempty"`
	OpenForPublic     bool          `json:"open_for_public"`
	Public            bool          `json:"public"`
	SmartActive       bool          `json:"smart_active"`
}

// Status condenses the charge state into the label shown for a charger
func (s ChargeState) Status() string {
	switch {
	case s.Online != nil && !s.Online.Online:
		return "Offline"
	case s.IsCharging == 1:
		return "Charging"
	case s.ConnectorOccupied == 1:
		return "EV Connected"
	default:
		return "Ready"
	}
}

type validity struct {
	IsValid bool `json:"is_valid"`
}

// GetChargerInfo returns the location of an owned charger
func (c *Client) GetChargerInfo(ctx context.Context, stationID string) (*LocationInfo, error) {
	var info LocationInfo
	if err := c.do(ctx, http.MethodGet, "/cp/"+stationID+"/info", nil, &info); err != nil {
		return nil, fmt.Errorf("failed to get info of %s: %w", stationID, err)
	}
	return &info, nil
}

func (c *Client) GetChargeState(ctx context.Context, stationID string) (*ChargeState, error) {
	var state ChargeState
	if err := c.do(ctx, http.MethodGet, "/cp/"+stationID+"/chargestate", nil, &state); err != nil {
		return nil, fmt.Errorf("failed to get charge state of %s: %w", stationID, err)
	}
	return &state, nil
}

func (c *Client) GetValidity(ctx context.Context, stationID string) (bool, error) {
	var v validity
	if err := c.do(ctx, http.MethodGet, "/cp/"+stationID+"/valid", nil, &v); err != nil {
		return false, fmt.Errorf("failed to get validity of %s: %w", stationID, err)
	}
	return v.IsValid, nil
}
