package orb

import (
	"context"
	"fmt"
	"net/http"
	"net/mail"
	"time"

	"github.com/modelrelay/orb-go/internal/apijson"
	"github.com/modelrelay/orb-go/internal/apiquery"
	"github.com/modelrelay/orb-go/param"
	"github.com/modelrelay/orb-go/routes"
)

// Customer is an Orb customer: the entity that subscriptions, credits and
// invoices belong to.
type Customer struct {
	ID                     string           `json:"id,required"`
	ExternalCustomerID     *string          `json:"external_customer_id,required,nullable"`
	Name                   string           `json:"name,required"`
	Email                  string           `json:"email,required"`
	AdditionalEmails       []string         `json:"additional_emails,required"`
	AutoCollection         bool             `json:"auto_collection,required"`
	Balance                string           `json:"balance,required"`
	BillingAddress         *Address         `json:"billing_address,required,nullable"`
	ShippingAddress        *Address         `json:"shipping_address,required,nullable"`
	CreatedAt              time.Time        `json:"created_at,required"`
	Currency               *string          `json:"currency,required,nullable"`
	EmailDelivery          bool             `json:"email_delivery,required"`
	ExemptFromAutomatedTax *bool            `json:"exempt_from_automated_tax,required,nullable"`
	Metadata               Metadata         `json:"metadata,required"`
	PaymentProvider        *PaymentProvider `json:"payment_provider,required,nullable"`
	PaymentProviderID      *string          `json:"payment_provider_id,required,nullable"`
	PortalURL              *string          `json:"portal_url,required,nullable"`
	Timezone               string           `json:"timezone,required"`
	JSON                   apijson.Metadata `json:"-"`
}

func (r *Customer) UnmarshalJSON(data []byte) error {
	type shadow Customer
	return apijson.UnmarshalRoot(data, (*shadow)(r))
}

func (r Customer) Validate() error { return apijson.Validate(r) }

// Address is a postal address. Orb sends every key, with null for unknown parts.
type Address struct {
	City       *string          `json:"city,required,nullable"`
	Country    *string          `json:"country,required,nullable"`
	Line1      *string          `json:"line1,required,nullable"`
	Line2      *string          `json:"line2,required,nullable"`
	PostalCode *string          `json:"postal_code,required,nullable"`
	State      *string          `json:"state,required,nullable"`
	JSON       apijson.Metadata `json:"-"`
}

func (r *Address) UnmarshalJSON(data []byte) error {
	type shadow Address
	return apijson.UnmarshalRoot(data, (*shadow)(r))
}

func (r Address) Validate() error { return apijson.Validate(r) }

// AddressParams sets a postal address. Omitted parts are left unchanged on update.
type AddressParams struct {
	City       param.Field[string] `json:"city"`
	Country    param.Field[string] `json:"country"`
	Line1      param.Field[string] `json:"line1"`
	Line2      param.Field[string] `json:"line2"`
	PostalCode param.Field[string] `json:"postal_code"`
	State      param.Field[string] `json:"state"`
}

func (r AddressParams) MarshalJSON() ([]byte, error) { return apijson.MarshalParams(r) }

// CustomerNewParams creates a customer.
type CustomerNewParams struct {
	Name               param.Field[string]          `json:"name,required"`
	Email              param.Field[string]          `json:"email,required"`
	ExternalCustomerID param.Field[string]          `json:"external_customer_id"`
	AdditionalEmails   param.Field[[]string]        `json:"additional_emails"`
	AutoCollection     param.Field[bool]            `json:"auto_collection"`
	BillingAddress     param.Field[AddressParams]   `json:"billing_address"`
	ShippingAddress    param.Field[AddressParams]   `json:"shipping_address"`
	Currency           param.Field[string]          `json:"currency"`
	EmailDelivery      param.Field[bool]            `json:"email_delivery"`
	Metadata           param.Field[Metadata]        `json:"metadata"`
	PaymentProvider    param.Field[PaymentProvider] `json:"payment_provider"`
	PaymentProviderID  param.Field[string]          `json:"payment_provider_id"`
	Timezone           param.Field[string]          `json:"timezone"`
}

func (r CustomerNewParams) MarshalJSON() ([]byte, error) { return apijson.MarshalParams(r) }

// CustomerUpdateParams changes a customer. Omitted fields are left as they
// are; a null clears the field where Orb allows it.
type CustomerUpdateParams struct {
	Name               param.Field[string]          `json:"name"`
	Email              param.Field[string]          `json:"email"`
	ExternalCustomerID param.Field[string]          `json:"external_customer_id"`
	AdditionalEmails   param.Field[[]string]        `json:"additional_emails"`
	AutoCollection     param.Field[bool]            `json:"auto_collection"`
	BillingAddress     param.Field[AddressParams]   `json:"billing_address"`
	ShippingAddress    param.Field[AddressParams]   `json:"shipping_address"`
	Currency           param.Field[string]          `json:"currency"`
	EmailDelivery      param.Field[bool]            `json:"email_delivery"`
	Metadata           param.Field[Metadata]        `json:"metadata"`
	PaymentProvider    param.Field[PaymentProvider] `json:"payment_provider"`
	PaymentProviderID  param.Field[string]          `json:"payment_provider_id"`
}

func (r CustomerUpdateParams) MarshalJSON() ([]byte, error) { return apijson.MarshalParams(r) }

// CustomerListParams filters and pages the customer list.
type CustomerListParams struct {
	Cursor       param.Field[string]    `query:"cursor"`
	Limit        param.Field[int64]     `query:"limit"`
	CreatedAtGt  param.Field[time.Time] `query:"created_at[gt]"`
	CreatedAtGte param.Field[time.Time] `query:"created_at[gte]"`
	CreatedAtLt  param.Field[time.Time] `query:"created_at[lt]"`
	CreatedAtLte param.Field[time.Time] `query:"created_at[lte]"`
}

// CustomersClient manages Orb customers.
type CustomersClient struct {
	client *Client
}

// ensureInitialized returns an error if the client is not properly initialized.
func (c *CustomersClient) ensureInitialized() error {
	if c == nil || c.client == nil {
		return fmt.Errorf("orb: customers client not initialized")
	}
	return nil
}

func checkEmail(field param.Field[string]) error {
	email, ok := field.Get()
	if !ok {
		return nil
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return &ValidationError{Kind: ValidationInvalid, Path: "email", Detail: "invalid email format"}
	}
	return nil
}

// New creates a customer.
func (c *CustomersClient) New(ctx context.Context, params CustomerNewParams, opts ...RequestOption) (*Customer, error) {
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}
	if err := checkEmail(params.Email); err != nil {
		return nil, err
	}
	return doJSON[Customer](ctx, c.client, http.MethodPost, routes.Customers, nil, params, opts)
}

// Update changes the customer with the given Orb ID.
func (c *CustomersClient) Update(ctx context.Context, customerID string, params CustomerUpdateParams, opts ...RequestOption) (*Customer, error) {
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}
	path, err := apiquery.Path(routes.Customer, apiquery.Param("customer_id", customerID))
	if err != nil {
		return nil, err
	}
	if err := checkEmail(params.Email); err != nil {
		return nil, err
	}
	return doJSON[Customer](ctx, c.client, http.MethodPut, path, nil, params, opts)
}

// UpdateByExternalID changes the customer with the given external ID.
func (c *CustomersClient) UpdateByExternalID(ctx context.Context, externalCustomerID string, params CustomerUpdateParams, opts ...RequestOption) (*Customer, error) {
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}
	path, err := apiquery.Path(routes.CustomerByExternalID, apiquery.Param("external_customer_id", externalCustomerID))
	if err != nil {
		return nil, err
	}
	if err := checkEmail(params.Email); err != nil {
		return nil, err
	}
	return doJSON[Customer](ctx, c.client, http.MethodPut, path, nil, params, opts)
}

// List returns one page of customers, newest first.
func (c *CustomersClient) List(ctx context.Context, params *CustomerListParams, opts ...RequestOption) (*Page[Customer], error) {
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}
	query, err := listQuery(params)
	if err != nil {
		return nil, err
	}
	return getPage[Customer](ctx, c.client, routes.Customers, query, opts)
}

// ListAutoPaging iterates over every customer matching params.
func (c *CustomersClient) ListAutoPaging(ctx context.Context, params *CustomerListParams, opts ...RequestOption) *AutoPager[Customer] {
	page, err := c.List(ctx, params, opts...)
	return newAutoPager(page, err)
}

// Delete removes a customer. Orb deletes asynchronously; the customer may
// still be returned by List for a short time.
func (c *CustomersClient) Delete(ctx context.Context, customerID string, opts ...RequestOption) error {
	if err := c.ensureInitialized(); err != nil {
		return err
	}
	path, err := apiquery.Path(routes.Customer, apiquery.Param("customer_id", customerID))
	if err != nil {
		return err
	}
	return c.client.sendAndDecode(ctx, http.MethodDelete, path, nil, nil, nil, opts...)
}

// Fetch returns the customer with the given Orb ID.
func (c *CustomersClient) Fetch(ctx context.Context, customerID string, opts ...RequestOption) (*Customer, error) {
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}
	path, err := apiquery.Path(routes.Customer, apiquery.Param("customer_id", customerID))
	if err != nil {
		return nil, err
	}
	return doJSON[Customer](ctx, c.client, http.MethodGet, path, nil, nil, opts)
}

// FetchByExternalID returns the customer with the given external ID.
func (c *CustomersClient) FetchByExternalID(ctx context.Context, externalCustomerID string, opts ...RequestOption) (*Customer, error) {
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}
	path, err := apiquery.Path(routes.CustomerByExternalID, apiquery.Param("external_customer_id", externalCustomerID))
	if err != nil {
		return nil, err
	}
	return doJSON[Customer](ctx, c.client, http.MethodGet, path, nil, nil, opts)
}
