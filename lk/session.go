package lk

import (
	"context"
	"fmt"
	"net/http"
)

type claimResponse struct {
	ClaimTimeout int `json:"claimTimeout"`
}

// ActiveSession is the telemetry of the running guest charge session
type ActiveSession struct {
	Consumption float64 `json:"consumption"`
	Cost        string  `json:"Cost"`
	Power       float64 `json:"power"`
	Started     int64   `json:"Started"`
}

// Claim reserves a public charger and returns the reservation length in seconds
func (c *Client) Claim(ctx context.Context, stationID string) (int, error) {
	var response claimResponse
	if err := c.do(ctx, http.MethodPut, "/cp/"+stationID+"/claim", nil, &response); err != nil {
		return 0, fmt.Errorf("failed to claim %s: %w", stationID, err)
	}
	if response.ClaimTimeout <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrClaimRejected, stationID)
	}
	log.Debugf("claim on %s granted %d seconds", stationID, response.ClaimTimeout)
	return response.ClaimTimeout, nil
}

func (c *Client) StartCharge(ctx context.Context, stationID string) error {
	if err := c.do(ctx, http.MethodPut, "/cp/"+stationID+"/startcharge", nil, nil); err != nil {
		return fmt.Errorf("failed to start charging %s: %w", stationID, err)
	}
	return nil
}

func (c *Client) StopCharge(ctx context.Context, stationID string) error {
	if err := c.do(ctx, http.MethodPut, "/cp/"+stationID+"/stopcharge", nil, nil); err != nil {
		return fmt.Errorf("failed to stop charging %s: %w", stationID, err)
	}
	return nil
}

func (c *Client) GetActiveSession(ctx context.Context, stationID string) (*ActiveSession, error) {
	var session ActiveSession
	if err := c.do(ctx, http.MethodGet, "/cs/"+stationID+"/activeguest", nil, &session); err != nil {
		return nil, fmt.Errorf("failed to get active session of %s: %w", stationID, err)
	}
	return &session, nil
}
