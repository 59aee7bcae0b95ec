package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/thanakrit/ledgerctl/internal/model"
)

// GetShop fetches the owning business profile.
func (c *Client) GetShop(ctx context.Context, shopID string) (*model.Shop, error) {
	env, err := c.do(ctx, http.MethodGet, "/shop/"+shopID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shop: %w", err)
	}
	if !env.Success {
		return nil, &APIError{StatusCode: http.StatusOK, Message: env.Message}
	}
	var shop model.Shop
	if err := decodeData(env, &shop); err != nil {
		return nil, err
	}
	return &shop, nil
}

// UpdateShop updates the business profile.
func (c *Client) UpdateShop(ctx context.Context, shopID string, shop *model.Shop) error {
	env, err := c.do(ctx, http.MethodPut, "/shop/"+shopID, nil, shop)
	if err != nil {
		return fmt.Errorf("failed to update shop: %w", err)
	}
	if !env.Success {
		return &APIError{StatusCode: http.StatusOK, Message: env.Message}
	}
	return nil
}
