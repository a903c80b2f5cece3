package lk

import (
	"context"
	"fmt"
	"net/http"

	"github.com/denysvitali/ladeklubben-cli/schedule"
)

type scheduleUpdate struct {
	New      schedule.Window `json:"schedule_new"`
	Original schedule.Window `json:"schedule_org"`
}

func schedulePath(stationID string, kind schedule.Kind) string {
	return "/schedule/" + stationID + "/" + string(kind)
}

func (c *Client) GetSchedule(ctx context.Context, stationID string, kind schedule.Kind) ([]schedule.Window, error) {
	var windows []schedule.Window
	if err := c.do(ctx, http.MethodGet, schedulePath(stationID, kind), nil, &windows); err != nil {
		return nil, fmt.Errorf("failed to get %s schedule of %s: %w", kind, stationID, err)
	}
	return windows, nil
}

func (c *Client) AddSchedule(ctx context.Context, stationID string, kind schedule.Kind, w schedule.Window) error {
	return c.do(ctx, http.MethodPatch, schedulePath(stationID, kind), w, nil)
}

// UpdateSchedule replaces original with updated, the backend matches windows by content
func (c *Client) UpdateSchedule(ctx context.Context, stationID string, kind schedule.Kind, updated, original schedule.Window) error {
	return c.do(ctx, http.MethodPut, schedulePath(stationID, kind), scheduleUpdate{New: updated, Original: original}, nil)
}

func (c *Client) DeleteSchedule(ctx context.Context, stationID string, kind schedule.Kind, w schedule.Window) error {
	return c.do(ctx, http.MethodPut, schedulePath(stationID, kind)+"/rm", w, nil)
}

var _ schedule.API = (*Client)(nil)
