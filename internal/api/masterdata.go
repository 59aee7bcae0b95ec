package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/thanakrit/ledgerctl/internal/model"
)

// Master-data endpoints: chart of accounts and the debtor/creditor
// registers. These are read once per report session and cached.

// ListChartOfAccounts fetches the chart of accounts.
func (c *Client) ListChartOfAccounts(ctx context.Context, params ListParams) ([]model.ChartAccount, Pagination, error) {
	if params.Sort == "" {
		params.Sort = "accountcode:1"
	}
	env, err := c.do(ctx, http.MethodGet, "/gl/chartofaccount", params.values(), nil)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to fetch chart of accounts: %w", err)
	}
	var accounts []model.ChartAccount
	if err := decodeData(env, &accounts); err != nil {
		return nil, Pagination{}, err
	}
	return accounts, pageMeta(env, len(accounts)), nil
}

// counterpartyPath maps a register kind to its endpoint.
func counterpartyPath(kind string) string {
	return "/debtaccount/" + kind
}

// Register kinds.
const (
	KindDebtor   = "debtor"
	KindCreditor = "creditor"
)

// ListCounterparties fetches a page of the debtor or creditor register.
func (c *Client) ListCounterparties(ctx context.Context, kind string, params ListParams) ([]model.Counterparty, Pagination, error) {
	if params.Sort == "" {
		params.Sort = "code:1"
	}
	env, err := c.do(ctx, http.MethodGet, counterpartyPath(kind), params.values(), nil)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to fetch %ss: %w", kind, err)
	}
	var items []model.Counterparty
	if err := decodeData(env, &items); err != nil {
		return nil, Pagination{}, err
	}
	return items, pageMeta(env, len(items)), nil
}

// GetCounterparty fetches one debtor/creditor by its fixed GUID.
func (c *Client) GetCounterparty(ctx context.Context, kind, id string) (*model.Counterparty, error) {
	env, err := c.do(ctx, http.MethodGet, counterpartyPath(kind)+"/"+id, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", kind, err)
	}
	if !env.Success {
		return nil, &APIError{StatusCode: http.StatusOK, Message: env.Message}
	}
	var item model.Counterparty
	if err := decodeData(env, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateCounterparty creates a debtor/creditor record.
func (c *Client) CreateCounterparty(ctx context.Context, kind string, item *model.Counterparty) error {
	env, err := c.do(ctx, http.MethodPost, counterpartyPath(kind), nil, item)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", kind, err)
	}
	if !env.Success {
		return &APIError{StatusCode: http.StatusOK, Message: env.Message}
	}
	return nil
}

// UpdateCounterparty updates a debtor/creditor record.
func (c *Client) UpdateCounterparty(ctx context.Context, kind, id string, item *model.Counterparty) error {
	env, err := c.do(ctx, http.MethodPut, counterpartyPath(kind)+"/"+id, nil, item)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", kind, err)
	}
	if !env.Success {
		return &APIError{StatusCode: http.StatusOK, Message: env.Message}
	}
	return nil
}

// DeleteCounterparty deletes a debtor/creditor record.
func (c *Client) DeleteCounterparty(ctx context.Context, kind, id string) error {
	env, err := c.do(ctx, http.MethodDelete, counterpartyPath(kind)+"/"+id, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	if !env.Success {
		return &APIError{StatusCode: http.StatusOK, Message: env.Message}
	}
	return nil
}

// pageMeta extracts the listing total, falling back to the row count when
// the backend omits pagination metadata.
func pageMeta(env *envelope, rowCount int) Pagination {
	if env.Pagination != nil {
		return *env.Pagination
	}
	total := env.Total
	if total == 0 {
		total = rowCount
	}
	return Pagination{Total: total, Page: 1}
}
