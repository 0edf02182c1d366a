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

// Plan describes what a subscription bills for. Prices and adjustments
// are kept in the raw JSON (Plan.JSON.ExtraFields) rather than modelled.
type Plan struct {
	ID                 string           `json:"id,required"`
	Name               string           `json:"name,required"`
	Description        string           `json:"description,required"`
	CreatedAt          time.Time        `json:"created_at,required"`
	Currency           string           `json:"currency,required"`
	InvoicingCurrency  string           `json:"invoicing_currency,required"`
	DefaultInvoiceMemo *string          `json:"default_invoice_memo,required,nullable"`
	ExternalPlanID     *string          `json:"external_plan_id,required,nullable"`
	Metadata           Metadata         `json:"metadata,required"`
	NetTerms           *int64           `json:"net_terms,required,nullable"`
	Product            PlanProduct      `json:"product,required"`
	Status             PlanStatus       `json:"status,required"`
	Version            int64            `json:"version,required"`
	JSON               apijson.Metadata `json:"-"`
}

func (r *Plan) UnmarshalJSON(data []byte) error {
	type shadow Plan
	return apijson.UnmarshalRoot(data, (*shadow)(r))
}

func (r Plan) Validate() error { return apijson.Validate(r) }

// PlanProduct is the product a plan belongs to.
type PlanProduct struct {
	ID        string           `json:"id,required"`
	Name      string           `json:"name,required"`
	CreatedAt time.Time        `json:"created_at,required"`
	JSON      apijson.Metadata `json:"-"`
}

func (r *PlanProduct) UnmarshalJSON(data []byte) error {
	type shadow PlanProduct
	return apijson.UnmarshalRoot(data, (*shadow)(r))
}

func (r PlanProduct) Validate() error { return apijson.Validate(r) }

// PlanListParams filters and pages the plan list.
type PlanListParams struct {
	Cursor       param.Field[string]     `query:"cursor"`
	Limit        param.Field[int64]      `query:"limit"`
	Status       param.Field[PlanStatus] `query:"status"`
	CreatedAtGt  param.Field[time.Time]  `query:"created_at[gt]"`
	CreatedAtGte param.Field[time.Time]  `query:"created_at[gte]"`
	CreatedAtLt  param.Field[time.Time]  `query:"created_at[lt]"`
	CreatedAtLte param.Field[time.Time]  `query:"created_at[lte]"`
}

// PlansClient reads plans.
type PlansClient struct {
	client *Client
}

// ensureInitialized returns an error if the client is not properly initialized.
func (c *PlansClient) ensureInitialized() error {
	if c == nil || c.client == nil {
		return fmt.Errorf("orb: plans client not initialized")
	}
	return nil
}

// List returns a page of plans.
func (c *PlansClient) List(ctx context.Context, params *PlanListParams, opts ...RequestOption) (*Page[Plan], error) {
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}
	query, err := listQuery(params)
	if err != nil {
		return nil, err
	}
	return getPage[Plan](ctx, c.client, routes.Plans, query, opts)
}

// ListAutoPaging iterates over every plan matching params.
func (c *PlansClient) ListAutoPaging(ctx context.Context, params *PlanListParams, opts ...RequestOption) *AutoPager[Plan] {
	page, err := c.List(ctx, params, opts...)
	return newAutoPager(page, err)
}

// Fetch returns the plan with the given Orb ID.
func (c *PlansClient) Fetch(ctx context.Context, planID string, opts ...RequestOption) (*Plan, error) {
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}
	path, err := apiquery.Path(routes.Plan, apiquery.Param("plan_id", planID))
	if err != nil {
		return nil, err
	}
	return doJSON[Plan](ctx, c.client, http.MethodGet, path, nil, nil, opts)
}

// FetchByExternalID returns the plan with the given external plan ID.
func (c *PlansClient) FetchByExternalID(ctx context.Context, externalPlanID string, opts ...RequestOption) (*Plan, error) {
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}
	path, err := apiquery.Path(routes.PlanByExternalID, apiquery.Param("external_plan_id", externalPlanID))
	if err != nil {
		return nil, err
	}
	return doJSON[Plan](ctx, c.client, http.MethodGet, path, nil, nil, opts)
}
