package lk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type EventType string

const (
	EventOnBegin EventType = "onBegin"
	EventOnEnd   EventType = "onEnd"
)

// NotificationEntry is sent as an [email, enabled] pair where enabled is 0 or 1
type NotificationEntry struct {
	Email   string
	Enabled int
}

func (n *NotificationEntry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("notification entry: expected 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &n.Email); err != nil {
		return fmt.Errorf("notification email: %w", err)
	}
	var enabled any
	if err := json.Unmarshal(pair[1], &enabled); err != nil {
		return fmt.Errorf("notification flag: %w", err)
	}
	switch v := enabled.(type) {
	case float64:
		n.Enabled = int(v)
	case bool:
		if v {
			n.Enabled = 1
		}
	}
	return nil
}

func (n NotificationEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{n.Email, n.Enabled})
}

type NotificationSetup struct {
	OnBegin []NotificationEntry `json:"onBegin"`
	OnEnd   []NotificationEntry `json:"onEnd"`
}

type notificationRequest struct {
	Email     string    `json:"email"`
	EventType EventType `json:"eventType"`
	Enabled   any       `json:"enabled"`
}

func notificationPath(stationID string) string {
	return "/cp/" + stationID + "/notification_setup"
}

func (c *Client) GetNotificationSetup(ctx context.Context, stationID string) (*NotificationSetup, error) {
	var setup NotificationSetup
	if err := c.do(ctx, http.MethodGet, notificationPath(stationID), nil, &setup); err != nil {
		return nil, fmt.Errorf("failed to get notification setup of %s: %w", stationID, err)
	}
	return &setup, nil
}

// PutNotification enables or disables one event for one email address
func (c *Client) PutNotification(ctx context.Context, stationID, email string, event EventType, enabled bool) error {
	return c.do(ctx, http.MethodPut, notificationPath(stationID), notificationRequest{
		Email:     email,
		EventType: event,
		Enabled:   enabled,
	}, nil)
}

func (c *Client) DeleteNotification(ctx context.Context, stationID, email string, event EventType) error {
	return c.do(ctx, http.MethodDelete, notificationPath(stationID), notificationRequest{
		Email:     email,
		EventType: event,
		Enabled:   0,
	}, nil)
}
