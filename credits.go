package orb

import (
	"context"
	"fmt"
	"time"

	"github.com/modelrelay/orb-go/internal/apijson"
	"github.com/modelrelay/orb-go/internal/apiquery"
	"github.com/modelrelay/orb-go/param"
	"github.com/modelrelay/orb-go/routes"
)

// CreditBalance is one credit block of a customer's prepaid balance.
type CreditBalance struct {
	ID                    string              `json:"id,required"`
	Balance               float64             `json:"balance,required"`
	EffectiveDate         *time.Time          `json:"effective_date,required,nullable"`
	ExpiryDate            *time.Time          `json:"expiry_date,required,nullable"`
	MaximumInitialBalance *float64            `json:"maximum_initial_balance,required,nullable"`
	PerUnitCostBasis      *string             `json:"per_unit_cost_basis,required,nullable"`
	Status                CreditBalanceStatus `json:"status,required"`
	JSON                  apijson.Metadata    `json:"-"`
}

func (r *CreditBalance) UnmarshalJSON(data []byte) error {
	type shadow CreditBalance
	return apijson.UnmarshalRoot(data, (*shadow)(r))
}

func (r CreditBalance) Validate() error { return apijson.Validate(r) }

// CreditListParams filters a customer's credit blocks. By default only
// blocks with a non-zero balance are returned.
type CreditListParams struct {
	Cursor           param.Field[string] `query:"cursor"`
	Limit            param.Field[int64]  `query:"limit"`
	Currency         param.Field[string] `query:"currency"`
	IncludeAllBlocks param.Field[bool]   `query:"include_all_blocks"`
}

// CreditsClient reads customer credit balances.
type CreditsClient struct {
	client *Client
}

// ensureInitialized returns an error if the client is not properly initialized.
func (c *CreditsClient) ensureInitialized() error {
	if c == nil || c.client == nil {
		return fmt.Errorf("orb: credits client not initialized")
	}
	return nil
}

func (c *CreditsClient) list(ctx context.Context, route string, id apiquery.PathParam, params *CreditListParams, opts []RequestOption) (*Page[CreditBalance], error) {
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}
	path, err := apiquery.Path(route, id)
	if err != nil {
		return nil, err
	}
	query, err := listQuery(params)
	if err != nil {
		return nil, err
	}
	return getPage[CreditBalance](ctx, c.client, path, query, opts)
}

// List returns a page of credit blocks for the customer with the given Orb ID.
func (c *CreditsClient) List(ctx context.Context, customerID string, params *CreditListParams, opts ...RequestOption) (*Page[CreditBalance], error) {
	return c.list(ctx, routes.CustomerCredits, apiquery.Param("customer_id", customerID), params, opts)
}

// ListByExternalID is List addressed by external customer ID.
func (c *CreditsClient) ListByExternalID(ctx context.Context, externalCustomerID string, params *CreditListParams, opts ...RequestOption) (*Page[CreditBalance], error) {
	return c.list(ctx, routes.CustomerCreditsByExternalID, apiquery.Param("external_customer_id", externalCustomerID), params, opts)
}

// ListAutoPaging iterates over every credit block of a customer.
func (c *CreditsClient) ListAutoPaging(ctx context.Context, customerID string, params *CreditListParams, opts ...RequestOption) *AutoPager[CreditBalance] {
	page, err := c.List(ctx, customerID, params, opts...)
	return newAutoPager(page, err)
}

// TotalBalance sums the balance of every credit block across all pages.
func (c *CreditsClient) TotalBalance(ctx context.Context, customerID string, params *CreditListParams, opts ...RequestOption) (float64, error) {
	var total float64
	for block, err := range c.ListAutoPaging(ctx, customerID, params, opts...).All(ctx) {
		if err != nil {
			return 0, err
		}
		total += block.Balance
	}
	return total, nil
}
