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

// Subscription binds a customer to a plan.
type Subscription struct {
	ID                            string             `json:"id,required"`
	Customer                      Customer           `json:"customer,required"`
	Plan                          Plan               `json:"plan,required"`
	Status                        SubscriptionStatus `json:"status,required"`
	StartDate                     time.Time          `json:"start_date,required"`
	EndDate                       *time.Time         `json:"end_date,required,nullable"`
	CreatedAt                     time.Time          `json:"created_at,required"`
	CurrentBillingPeriodStartDate *time.Time         `json:"current_billing_period_start_date,required,nullable"`
	CurrentBillingPeriodEndDate   *time.Time         `json:"current_billing_period_end_date,required,nullable"`
	ActivePlanPhaseOrder          *int64             `json:"active_plan_phase_order,required,nullable"`
	AutoCollection                *bool              `json:"auto_collection,required,nullable"`
	BillingCycleDay               int64              `json:"billing_cycle_day,required"`
	DefaultInvoiceMemo            *string            `json:"default_invoice_memo,required,nullable"`
	InvoicingThreshold            *string            `json:"invoicing_threshold,required,nullable"`
	Metadata                      Metadata           `json:"metadata,required"`
	NetTerms                      int64              `json:"net_terms,required"`
	TrialInfo                     SubscriptionTrial  `json:"trial_info,required"`
	JSON                          apijson.Metadata   `json:"-"`
}

func (r *Subscription) UnmarshalJSON(data []byte) error {
	type shadow Subscription
	return apijson.UnmarshalRoot(data, (*shadow)(r))
}

func (r Subscription) Validate() error { return apijson.Validate(r) }

// SubscriptionTrial describes a subscription's free trial.
type SubscriptionTrial struct {
	EndDate *time.Time       `json:"end_date,required,nullable"`
	JSON    apijson.Metadata `json:"-"`
}

func (r *SubscriptionTrial) UnmarshalJSON(data []byte) error {
	type shadow SubscriptionTrial
	return apijson.UnmarshalRoot(data, (*shadow)(r))
}

func (r SubscriptionTrial) Validate() error { return apijson.Validate(r) }

// SubscriptionNewParams creates a subscription. Exactly one of CustomerID
// and ExternalCustomerID, and one of PlanID and ExternalPlanID, must be set.
type SubscriptionNewParams struct {
	CustomerID                            param.Field[string]    `json:"customer_id"`
	ExternalCustomerID                    param.Field[string]    `json:"external_customer_id"`
	PlanID                                param.Field[string]    `json:"plan_id"`
	ExternalPlanID                        param.Field[string]    `json:"external_plan_id"`
	PlanVersionNumber                     param.Field[int64]     `json:"plan_version_number"`
	StartDate                             param.Field[time.Time] `json:"start_date"`
	EndDate                               param.Field[time.Time] `json:"end_date"`
	AlignBillingWithSubscriptionStartDate param.Field[bool]      `json:"align_billing_with_subscription_start_date"`
	AutoCollection                        param.Field[bool]      `json:"auto_collection"`
	CouponRedemptionCode                  param.Field[string]    `json:"coupon_redemption_code"`
	DefaultInvoiceMemo                    param.Field[string]    `json:"default_invoice_memo"`
	InvoicingThreshold                    param.Field[string]    `json:"invoicing_threshold"`
	Metadata                              param.Field[Metadata]  `json:"metadata"`
	NetTerms                              param.Field[int64]     `json:"net_terms"`
	TrialDurationDays                     param.Field[int64]     `json:"trial_duration_days"`
}

func (r SubscriptionNewParams) MarshalJSON() ([]byte, error) { return apijson.MarshalParams(r) }

func (r SubscriptionNewParams) check() error {
	if err := exactlyOne("customer_id", r.CustomerID, "external_customer_id", r.ExternalCustomerID); err != nil {
		return err
	}
	return exactlyOne("plan_id", r.PlanID, "external_plan_id", r.ExternalPlanID)
}

// exactlyOne requires one of two alternative identifiers to be set.
func exactlyOne(nameA string, a param.Field[string], nameB string, b param.Field[string]) error {
	_, hasA := a.Get()
	_, hasB := b.Get()
	switch {
	case hasA && hasB:
		return &ValidationError{Kind: ValidationInvalid, Path: nameA, Detail: fmt.Sprintf("set only one of %s and %s", nameA, nameB)}
	case !hasA && !hasB:
		return &ValidationError{Kind: ValidationMissing, Path: nameA, Detail: fmt.Sprintf("one of %s and %s is required", nameA, nameB)}
	}
	return nil
}

// SubscriptionUpdateParams changes a subscription's billing settings.
type SubscriptionUpdateParams struct {
	AutoCollection     param.Field[bool]     `json:"auto_collection,nullable"`
	DefaultInvoiceMemo param.Field[string]   `json:"default_invoice_memo,nullable"`
	InvoicingThreshold param.Field[string]   `json:"invoicing_threshold,nullable"`
	Metadata           param.Field[Metadata] `json:"metadata,nullable"`
	NetTerms           param.Field[int64]    `json:"net_terms,nullable"`
}

func (r SubscriptionUpdateParams) MarshalJSON() ([]byte, error) { return apijson.MarshalParams(r) }

// SubscriptionListParams filters and pages the subscription list.
type SubscriptionListParams struct {
	Cursor             param.Field[string]             `query:"cursor"`
	Limit              param.Field[int64]              `query:"limit"`
	CustomerID         param.Field[[]string]           `query:"customer_id[]"`
	ExternalCustomerID param.Field[[]string]           `query:"external_customer_id[]"`
	Status             param.Field[SubscriptionStatus] `query:"status"`
	CreatedAtGt        param.Field[time.Time]          `query:"created_at[gt]"`
	CreatedAtGte       param.Field[time.Time]          `query:"created_at[gte]"`
	CreatedAtLt        param.Field[time.Time]          `query:"created_at[lt]"`
	CreatedAtLte       param.Field[time.Time]          `query:"created_at[lte]"`
}

// SubscriptionCancelParams cancels a subscription.
type SubscriptionCancelParams struct {
	CancelOption             param.Field[CancelOption] `json:"cancel_option,required"`
	CancellationDate         param.Field[time.Time]    `json:"cancellation_date"`
	AllowInvoiceCreditOrVoid param.Field[bool]         `json:"allow_invoice_credit_or_void"`
}

func (r SubscriptionCancelParams) MarshalJSON() ([]byte, error) { return apijson.MarshalParams(r) }

func (r SubscriptionCancelParams) check() error {
	option, ok := r.CancelOption.Get()
	if !ok {
		return &ValidationError{Kind: ValidationMissing, Path: "cancel_option"}
	}
	if !option.IsKnown() {
		return &ValidationError{Kind: ValidationUnknownEnum, Path: "cancel_option", Detail: fmt.Sprintf("unknown value %s", option)}
	}
	if _, hasDate := r.CancellationDate.Get(); option == CancelOptionRequestedDate && !hasDate {
		return &ValidationError{Kind: ValidationMissing, Path: "cancellation_date", Detail: "cancellation_date is required for requested_date"}
	}
	return nil
}

// SubscriptionSchedulePlanChangeParams moves a subscription to another plan.
type SubscriptionSchedulePlanChangeParams struct {
	ChangeOption                   param.Field[ChangeOption]          `json:"change_option,required"`
	PlanID                         param.Field[string]                `json:"plan_id"`
	ExternalPlanID                 param.Field[string]                `json:"external_plan_id"`
	PlanVersionNumber              param.Field[int64]                 `json:"plan_version_number"`
	ChangeDate                     param.Field[time.Time]             `json:"change_date"`
	AlignBillingWithPlanChangeDate param.Field[bool]                  `json:"align_billing_with_plan_change_date"`
	BillingCycleAlignment          param.Field[BillingCycleAlignment] `json:"billing_cycle_alignment"`
	CouponRedemptionCode           param.Field[string]                `json:"coupon_redemption_code"`
	TrialDurationDays              param.Field[int64]                 `json:"trial_duration_days"`
}

func (r SubscriptionSchedulePlanChangeParams) MarshalJSON() ([]byte, error) {
	return apijson.MarshalParams(r)
}

func (r SubscriptionSchedulePlanChangeParams) check() error {
	option, ok := r.ChangeOption.Get()
	if !ok {
		return &ValidationError{Kind: ValidationMissing, Path: "change_option"}
	}
	if !option.IsKnown() {
		return &ValidationError{Kind: ValidationUnknownEnum, Path: "change_option", Detail: fmt.Sprintf("unknown value %s", option)}
	}
	if _, hasDate := r.ChangeDate.Get(); option == ChangeOptionRequestedDate && !hasDate {
		return &ValidationError{Kind: ValidationMissing, Path: "change_date", Detail: "change_date is required for requested_date"}
	}
	return exactlyOne("plan_id", r.PlanID, "external_plan_id", r.ExternalPlanID)
}

// SubscriptionsClient manages subscriptions.
type SubscriptionsClient struct {
	client *Client
}

// ensureInitialized returns an error if the client is not properly initialized.
func (c *SubscriptionsClient) ensureInitialized() error {
	if c == nil || c.client == nil {
		return fmt.Errorf("orb: subscriptions client not initialized")
	}
	return nil
}

func subscriptionPath(route, subscriptionID string) (string, error) {
	return apiquery.Path(route, apiquery.Param("subscription_id", subscriptionID))
}

// New creates a subscription.
func (c *SubscriptionsClient) New(ctx context.Context, params SubscriptionNewParams, opts ...RequestOption) (*Subscription, error) {
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}
	if err := params.check(); err != nil {
		return nil, err
	}
	return doJSON[Subscription](ctx, c.client, http.MethodPost, routes.Subscriptions, nil, params, opts)
}

// Fetch returns one subscription.
func (c *SubscriptionsClient) Fetch(ctx context.Context, subscriptionID string, opts ...RequestOption) (*Subscription, error) {
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}
	path, err := subscriptionPath(routes.Subscription, subscriptionID)
	if err != nil {
		return nil, err
	}
	return doJSON[Subscription](ctx, c.client, http.MethodGet, path, nil, nil, opts)
}

// Update changes a subscription's billing settings.
func (c *SubscriptionsClient) Update(ctx context.Context, subscriptionID string, params SubscriptionUpdateParams, opts ...RequestOption) (*Subscription, error) {
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}
	path, err := subscriptionPath(routes.Subscription, subscriptionID)
	if err != nil {
		return nil, err
	}
	return doJSON[Subscription](ctx, c.client, http.MethodPut, path, nil, params, opts)
}

// List returns a page of subscriptions.
func (c *SubscriptionsClient) List(ctx context.Context, params *SubscriptionListParams, opts ...RequestOption) (*Page[Subscription], error) {
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}
	query, err := listQuery(params)
	if err != nil {
		return nil, err
	}
	return getPage[Subscription](ctx, c.client, routes.Subscriptions, query, opts)
}

// ListAutoPaging iterates over every subscription matching params.
func (c *SubscriptionsClient) ListAutoPaging(ctx context.Context, params *SubscriptionListParams, opts ...RequestOption) *AutoPager[Subscription] {
	page, err := c.List(ctx, params, opts...)
	return newAutoPager(page, err)
}

// Cancel ends a subscription immediately, at the end of its term, or on a
// requested date.
func (c *SubscriptionsClient) Cancel(ctx context.Context, subscriptionID string, params SubscriptionCancelParams, opts ...RequestOption) (*Subscription, error) {
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}
	path, err := subscriptionPath(routes.SubscriptionCancel, subscriptionID)
	if err != nil {
		return nil, err
	}
	if err := params.check(); err != nil {
		return nil, err
	}
	return doJSON[Subscription](ctx, c.client, http.MethodPost, path, nil, params, opts)
}

// UnscheduleCancellation withdraws a pending cancellation.
func (c *SubscriptionsClient) UnscheduleCancellation(ctx context.Context, subscriptionID string, opts ...RequestOption) (*Subscription, error) {
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}
	path, err := subscriptionPath(routes.SubscriptionUnscheduleCancellation, subscriptionID)
	if err != nil {
		return nil, err
	}
	return doJSON[Subscription](ctx, c.client, http.MethodPost, path, nil, nil, opts)
}

// SchedulePlanChange moves a subscription to another plan.
func (c *SubscriptionsClient) SchedulePlanChange(ctx context.Context, subscriptionID string, params SubscriptionSchedulePlanChangeParams, opts ...RequestOption) (*Subscription, error) {
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}
	path, err := subscriptionPath(routes.SubscriptionSchedulePlanChange, subscriptionID)
	if err != nil {
		return nil, err
	}
	if err := params.check(); err != nil {
		return nil, err
	}
	return doJSON[Subscription](ctx, c.client, http.MethodPost, path, nil, params, opts)
}
