package lk

import (
	"context"
	"fmt"
	"net/http"

	"github.com/denysvitali/ladeklubben-cli/membership"
)

type UserInfo struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type UserInformation struct {
	UserInfo     UserInfo                `json:"userinfo"`
	GuestGroups  *membership.GuestGroups `json:"guestgroups"`
	GroupInvites []any                   `json:"group_invites,omitempty"`
	Stations     []any                   `json:"stations,omitempty"`
}

func (c *Client) GetUserInformation(ctx context.Context) (*UserInformation, error) {
	var info UserInformation
	if err := c.do(ctx, http.MethodGet, "/user/information", nil, &info); err != nil {
		return nil, fmt.Errorf("failed to get user information: %w", err)
	}
	return &info, nil
}

// GetGuestGroups returns the membership groups used for member pricing
func (c *Client) GetGuestGroups(ctx context.Context) (*membership.GuestGroups, error) {
	info, err := c.GetUserInformation(ctx)
	if err != nil {
		return nil, err
	}
	return info.GuestGroups, nil
}

// GetChargepoints returns the ids of the chargers owned by the user
func (c *Client) GetChargepoints(ctx context.Context) ([]string, error) {
	var ids []string
	if err := c.do(ctx, http.MethodGet, "/user/chargepoints", nil, &ids); err != nil {
		return nil, fmt.Errorf("failed to get chargepoints: %w", err)
	}
	return ids, nil
}

var _ membership.MembershipFetcher = (*Client)(nil)
