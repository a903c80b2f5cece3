package lk

import (
	"context"
	"fmt"
	"net/http"

	"github.com/denysvitali/ladeklubben-cli/pricing"
)

// GetListPrice returns the price the owner asks for guest charging, excluding VAT
func (c *Client) GetListPrice(ctx context.Context, stationID string) (*pricing.PriceInfo, error) {
	var lp pricing.PriceInfo
	if err := c.do(ctx, http.MethodGet, "/listprice/"+stationID, nil, &lp); err != nil {
		return nil, fmt.Errorf("failed to get list price of %s: %w", stationID, err)
	}
	return &lp, nil
}

func (c *Client) PutListPrice(ctx context.Context, stationID string, lp pricing.PriceInfo) error {
	if err := c.do(ctx, http.MethodPut, "/listprice/"+stationID, lp, nil); err != nil {
		return fmt.Errorf("failed to update list price of %s: %w", stationID, err)
	}
	return nil
}
