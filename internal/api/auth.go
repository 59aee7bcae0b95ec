package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/thanakrit/ledgerctl/internal/model"
)

// Credentials is the result of a successful login.
type Credentials struct {
	Token   string
	Refresh string
}

// Login authenticates with username and password.
func (c *Client) Login(ctx context.Context, username, password string) (Credentials, error) {
	env, err := c.do(ctx, http.MethodPost, "/login", nil, map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return Credentials{}, fmt.Errorf("login failed: %w", err)
	}
	if !env.Success {
		return Credentials{}, &APIError{StatusCode: http.StatusOK, Message: env.Message}
	}
	return Credentials{Token: env.Token, Refresh: env.Refresh}, nil
}

// TokenLogin authenticates with an identity-provider token (Google
// sign-in).
func (c *Client) TokenLogin(ctx context.Context, idToken string) (Credentials, error) {
	env, err := c.do(ctx, http.MethodPost, "/tokenlogin", nil, map[string]string{
		"token": idToken,
	})
	if err != nil {
		return Credentials{}, fmt.Errorf("token login failed: %w", err)
	}
	if !env.Success || env.Token == "" {
		return Credentials{}, &APIError{StatusCode: http.StatusOK, Message: env.Message}
	}
	return Credentials{Token: env.Token, Refresh: env.Refresh}, nil
}

// Logout invalidates the session server-side.
func (c *Client) Logout(ctx context.Context) error {
	if _, err := c.do(ctx, http.MethodPost, "/logout", nil, nil); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	return nil
}

// ListShops lists the shops available to the authenticated user.
func (c *Client) ListShops(ctx context.Context) ([]model.ShopSummary, error) {
	q := url.Values{}
	q.Set("page", "1")
	q.Set("perPage", "100")
	q.Set("limit", "100")

	env, err := c.do(ctx, http.MethodGet, "/list-shop", q, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}
	var shops []model.ShopSummary
	if err := decodeData(env, &shops); err != nil {
		return nil, err
	}
	return shops, nil
}

// SelectShop binds the session to a shop.
func (c *Client) SelectShop(ctx context.Context, shopID string) error {
	env, err := c.do(ctx, http.MethodPost, "/select-shop", nil, map[string]string{
		"shopid": shopID,
	})
	if err != nil {
		return fmt.Errorf("failed to select shop: %w", err)
	}
	if !env.Success {
		return &APIError{StatusCode: http.StatusOK, Message: env.Message}
	}
	return nil
}

// FavoriteShop toggles the favorite flag on a shop.
func (c *Client) FavoriteShop(ctx context.Context, shopID string, favorite bool) error {
	_, err := c.do(ctx, http.MethodPut, "/favorite-shop", nil, map[string]any{
		"shopid":     shopID,
		"isfavorite": favorite,
	})
	if err != nil {
		return fmt.Errorf("failed to update favorite: %w", err)
	}
	return nil
}
