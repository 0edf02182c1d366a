package orb

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/modelrelay/orb-go/internal/apijson"
	"github.com/modelrelay/orb-go/internal/apiquery"
	"github.com/modelrelay/orb-go/param"
	"github.com/modelrelay/orb-go/routes"
)

// TopUp refills a customer's credits when the balance falls below Threshold.
type TopUp struct {
	ID               string               `json:"id,required"`
	Amount           string               `json:"amount,required"`
	Currency         string               `json:"currency,required"`
	InvoiceSettings  TopUpInvoiceSettings `json:"invoice_settings,required"`
	PerUnitCostBasis string               `json:"per_unit_cost_basis,required"`
	Threshold        string               `json:"threshold,required"`
	ExpiresAfter     *int64               `json:"expires_after,required,nullable"`
	ExpiresAfterUnit *ExpiresAfterUnit    `json:"expires_after_unit,required,nullable"`
	JSON             apijson.Metadata     `json:"-"`
}

func (r *TopUp) UnmarshalJSON(data []byte) error {
	type shadow TopUp
	return apijson.UnmarshalRoot(data, (*shadow)(r))
}

func (r TopUp) Validate() error { return apijson.Validate(r) }

// TopUpInvoiceSettings controls the invoice issued for each top-up.
type TopUpInvoiceSettings struct {
	AutoCollection           bool             `json:"auto_collection,required"`
	NetTerms                 int64            `json:"net_terms,required"`
	Memo                     *string          `json:"memo,nullable"`
	RequireSuccessfulPayment bool             `json:"require_successful_payment"`
	JSON                     apijson.Metadata `json:"-"`
}

func (r *TopUpInvoiceSettings) UnmarshalJSON(data []byte) error {
	type shadow TopUpInvoiceSettings
	return apijson.UnmarshalRoot(data, (*shadow)(r))
}

func (r TopUpInvoiceSettings) Validate() error { return apijson.Validate(r) }

// TopUpNewParams creates a top-up. A customer has at most one top-up per
// currency; creating another replaces it.
type TopUpNewParams struct {
	Amount           param.Field[string]                `json:"amount,required"`
	Currency         param.Field[string]                `json:"currency,required"`
	InvoiceSettings  param.Field[InvoiceSettingsParams] `json:"invoice_settings,required"`
	PerUnitCostBasis param.Field[string]                `json:"per_unit_cost_basis,required"`
	Threshold        param.Field[string]                `json:"threshold,required"`
	ActiveFrom       param.Field[time.Time]             `json:"active_from"`
	ExpiresAfter     param.Field[int64]                 `json:"expires_after"`
	ExpiresAfterUnit param.Field[ExpiresAfterUnit]      `json:"expires_after_unit"`
}

func (r TopUpNewParams) MarshalJSON() ([]byte, error) { return apijson.MarshalParams(r) }

func (r TopUpNewParams) check() error {
	_, hasAfter := r.ExpiresAfter.Get()
	_, hasUnit := r.ExpiresAfterUnit.Get()
	if hasAfter && !hasUnit {
		return &ValidationError{
			Kind:   ValidationMissing,
			Path:   "expires_after_unit",
			Detail: "expires_after_unit is required with expires_after",
		}
	}
	return nil
}

// TopUpListParams pages a customer's top-ups.
type TopUpListParams struct {
	Cursor param.Field[string] `query:"cursor"`
	Limit  param.Field[int64]  `query:"limit"`
}

// TopUpsClient manages automatic credit top-ups.
type TopUpsClient struct {
	client *Client
}

// ensureInitialized returns an error if the client is not properly initialized.
func (c *TopUpsClient) ensureInitialized() error {
	if c == nil || c.client == nil {
		return fmt.Errorf("orb: top-ups client not initialized")
	}
	return nil
}

func (c *TopUpsClient) create(ctx context.Context, route string, id apiquery.PathParam, params TopUpNewParams, opts []RequestOption) (*TopUp, error) {
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}
	path, err := apiquery.Path(route, id)
	if err != nil {
		return nil, err
	}
	if err := params.check(); err != nil {
		return nil, err
	}
	return doJSON[TopUp](ctx, c.client, http.MethodPost, path, nil, params, opts)
}

func (c *TopUpsClient) list(ctx context.Context, route string, id apiquery.PathParam, params *TopUpListParams, opts []RequestOption) (*Page[TopUp], error) {
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
	return getPage[TopUp](ctx, c.client, path, query, opts)
}

func (c *TopUpsClient) remove(ctx context.Context, route string, id, topUpID apiquery.PathParam, opts []RequestOption) error {
	if err := c.ensureInitialized(); err != nil {
		return err
	}
	path, err := apiquery.Path(route, id, topUpID)
	if err != nil {
		return err
	}
	return c.client.sendAndDecode(ctx, http.MethodDelete, path, nil, nil, nil, opts...)
}

// New creates or replaces the top-up for the customer with the given Orb ID.
func (c *TopUpsClient) New(ctx context.Context, customerID string, params TopUpNewParams, opts ...RequestOption) (*TopUp, error) {
	return c.create(ctx, routes.CustomerCreditsTopUps, apiquery.Param("customer_id", customerID), params, opts)
}

// NewByExternalID is New addressed by external customer ID.
func (c *TopUpsClient) NewByExternalID(ctx context.Context, externalCustomerID string, params TopUpNewParams, opts ...RequestOption) (*TopUp, error) {
	return c.create(ctx, routes.CustomerCreditsTopUpsByExternalID, apiquery.Param("external_customer_id", externalCustomerID), params, opts)
}

// List returns a page of the customer's top-ups.
func (c *TopUpsClient) List(ctx context.Context, customerID string, params *TopUpListParams, opts ...RequestOption) (*Page[TopUp], error) {
	return c.list(ctx, routes.CustomerCreditsTopUps, apiquery.Param("customer_id", customerID), params, opts)
}

// ListByExternalID is List addressed by external customer ID.
func (c *TopUpsClient) ListByExternalID(ctx context.Context, externalCustomerID string, params *TopUpListParams, opts ...RequestOption) (*Page[TopUp], error) {
	return c.list(ctx, routes.CustomerCreditsTopUpsByExternalID, apiquery.Param("external_customer_id", externalCustomerID), params, opts)
}

// Delete removes a top-up.
func (c *TopUpsClient) Delete(ctx context.Context, customerID, topUpID string, opts ...RequestOption) error {
	return c.remove(ctx, routes.CustomerCreditsTopUp, apiquery.Param("customer_id", customerID), apiquery.Param("top_up_id", topUpID), opts)
}

// DeleteByExternalID is Delete addressed by external customer ID.
func (c *TopUpsClient) DeleteByExternalID(ctx context.Context, externalCustomerID, topUpID string, opts ...RequestOption) error {
	return c.remove(ctx, routes.CustomerCreditsTopUpByExternalID, apiquery.Param("external_customer_id", externalCustomerID), apiquery.Param("top_up_id", topUpID), opts)
}
