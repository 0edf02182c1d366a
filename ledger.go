package orb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/modelrelay/orb-go/internal/apijson"
	"github.com/modelrelay/orb-go/internal/apiquery"
	"github.com/modelrelay/orb-go/param"
	"github.com/modelrelay/orb-go/routes"
)

// CreditLedgerEntryBase holds the fields every ledger entry carries. It is
// embedded in each entry variant.
type CreditLedgerEntryBase struct {
	ID                   string            `json:"id,required"`
	Amount               float64           `json:"amount,required"`
	CreatedAt            time.Time         `json:"created_at,required"`
	CreditBlock          LedgerCreditBlock `json:"credit_block,required"`
	Currency             string            `json:"currency,required"`
	Customer             LedgerCustomer    `json:"customer,required"`
	Description          *string           `json:"description,required,nullable"`
	EndingBalance        float64           `json:"ending_balance,required"`
	EntryStatus          EntryStatus       `json:"entry_status,required"`
	EntryType            EntryType         `json:"entry_type,required"`
	LedgerSequenceNumber int64             `json:"ledger_sequence_number,required"`
	Metadata             Metadata          `json:"metadata,required"`
	StartingBalance      float64           `json:"starting_balance,required"`
}

// Common returns the fields shared by all entry types.
func (r CreditLedgerEntryBase) Common() CreditLedgerEntryBase { return r }

// LedgerCreditBlock identifies the credit block an entry applies to.
type LedgerCreditBlock struct {
	ID               string           `json:"id,required"`
	ExpiryDate       *time.Time       `json:"expiry_date,required,nullable"`
	PerUnitCostBasis *string          `json:"per_unit_cost_basis,required,nullable"`
	JSON             apijson.Metadata `json:"-"`
}

func (r *LedgerCreditBlock) UnmarshalJSON(data []byte) error {
	type shadow LedgerCreditBlock
	return apijson.UnmarshalRoot(data, (*shadow)(r))
}

func (r LedgerCreditBlock) Validate() error { return apijson.Validate(r) }

// LedgerCustomer identifies the customer that owns an entry.
type LedgerCustomer struct {
	ID                 string           `json:"id,required"`
	ExternalCustomerID *string          `json:"external_customer_id,required,nullable"`
	JSON               apijson.Metadata `json:"-"`
}

func (r *LedgerCustomer) UnmarshalJSON(data []byte) error {
	type shadow LedgerCustomer
	return apijson.UnmarshalRoot(data, (*shadow)(r))
}

func (r LedgerCustomer) Validate() error { return apijson.Validate(r) }

// CreditLedgerEntryVariant is implemented by every ledger entry type,
// including UnknownLedgerEntry.
type CreditLedgerEntryVariant interface {
	Common() CreditLedgerEntryBase
	implementsCreditLedgerEntry()
}

// CreditLedgerEntry is one change to a customer's credit balance. The
// concrete entry is selected by entry_type; use AsUnion with a type switch
// to reach variant-specific fields.
type CreditLedgerEntry struct {
	union CreditLedgerEntryVariant
}

// NewCreditLedgerEntry wraps a variant, mostly for tests and fixtures.
func NewCreditLedgerEntry(v CreditLedgerEntryVariant) CreditLedgerEntry {
	return CreditLedgerEntry{union: v}
}

var ledgerEntryVariants = []apijson.Variant[CreditLedgerEntryVariant]{
	{Tag: string(EntryTypeIncrement), Decode: apijson.As(func(v IncrementLedgerEntry) CreditLedgerEntryVariant { return v })},
	{Tag: string(EntryTypeDecrement), Decode: apijson.As(func(v DecrementLedgerEntry) CreditLedgerEntryVariant { return v })},
	{Tag: string(EntryTypeExpirationChange), Decode: apijson.As(func(v ExpirationChangeLedgerEntry) CreditLedgerEntryVariant { return v })},
	{Tag: string(EntryTypeCreditBlockExpiry), Decode: apijson.As(func(v CreditBlockExpiryLedgerEntry) CreditLedgerEntryVariant { return v })},
	{Tag: string(EntryTypeVoid), Decode: apijson.As(func(v VoidLedgerEntry) CreditLedgerEntryVariant { return v })},
	{Tag: string(EntryTypeVoidInitiated), Decode: apijson.As(func(v VoidInitiatedLedgerEntry) CreditLedgerEntryVariant { return v })},
	{Tag: string(EntryTypeAmendment), Decode: apijson.As(func(v AmendmentLedgerEntry) CreditLedgerEntryVariant { return v })},
}

func (r *CreditLedgerEntry) UnmarshalJSON(data []byte) error {
	v, err := apijson.UnmarshalUnion(data, "entry_type", newUnknownLedgerEntry, ledgerEntryVariants...)
	if err != nil {
		return err
	}
	r.union = v
	return nil
}

func (r CreditLedgerEntry) MarshalJSON() ([]byte, error) {
	if r.union == nil {
		return []byte("null"), nil
	}
	return json.Marshal(r.union)
}

// AsUnion returns the concrete entry, one of the *LedgerEntry types.
func (r CreditLedgerEntry) AsUnion() CreditLedgerEntryVariant {
	return r.union
}

// Common returns the fields shared by all entry types.
func (r CreditLedgerEntry) Common() CreditLedgerEntryBase {
	if r.union == nil {
		return CreditLedgerEntryBase{}
	}
	return r.union.Common()
}

// EntryType returns the entry's discriminator as sent by the server.
func (r CreditLedgerEntry) EntryType() EntryType {
	return r.Common().EntryType
}

// Validate fails for an entry that matched no variant, either because its
// entry_type is unknown or because its body did not decode as that type.
func (r CreditLedgerEntry) Validate() error {
	switch v := r.union.(type) {
	case nil:
		return &ValidationError{Kind: ValidationMissing, Detail: "empty ledger entry"}
	case UnknownLedgerEntry:
		return &ValidationError{
			Kind:   ValidationUnmatchedUnion,
			Path:   "entry_type",
			Detail: fmt.Sprintf("ledger entry matched no variant (entry_type %q)", v.EntryType),
		}
	default:
		return apijson.ValidateAny(v)
	}
}

func validateLedgerEntry(v any, want EntryType, got EntryType) error {
	if err := apijson.Validate(v); err != nil {
		return err
	}
	return apijson.ExpectConstant("entry_type", got, want)
}

// IncrementLedgerEntry adds credits to a new block.
type IncrementLedgerEntry struct {
	CreditLedgerEntryBase
	JSON apijson.Metadata `json:"-"`
}

func (r *IncrementLedgerEntry) UnmarshalJSON(data []byte) error {
	type shadow IncrementLedgerEntry
	return apijson.UnmarshalRoot(data, (*shadow)(r))
}

func (r IncrementLedgerEntry) Validate() error {
	return validateLedgerEntry(r, EntryTypeIncrement, r.EntryType)
}

func (IncrementLedgerEntry) implementsCreditLedgerEntry() {}

// DecrementLedgerEntry draws credits down, either directly or from usage.
type DecrementLedgerEntry struct {
	CreditLedgerEntryBase
	EventID   *string          `json:"event_id,nullable"`
	InvoiceID *string          `json:"invoice_id,nullable"`
	PriceID   *string          `json:"price_id,nullable"`
	JSON      apijson.Metadata `json:"-"`
}

func (r *DecrementLedgerEntry) UnmarshalJSON(data []byte) error {
	type shadow DecrementLedgerEntry
	return apijson.UnmarshalRoot(data, (*shadow)(r))
}

func (r DecrementLedgerEntry) Validate() error {
	return validateLedgerEntry(r, EntryTypeDecrement, r.EntryType)
}

func (DecrementLedgerEntry) implementsCreditLedgerEntry() {}

// ExpirationChangeLedgerEntry moves the expiry of a credit block.
type ExpirationChangeLedgerEntry struct {
	CreditLedgerEntryBase
	NewBlockExpiryDate *time.Time       `json:"new_block_expiry_date,required,nullable"`
	JSON               apijson.Metadata `json:"-"`
}

func (r *ExpirationChangeLedgerEntry) UnmarshalJSON(data []byte) error {
	type shadow ExpirationChangeLedgerEntry
	return apijson.UnmarshalRoot(data, (*shadow)(r))
}

func (r ExpirationChangeLedgerEntry) Validate() error {
	return validateLedgerEntry(r, EntryTypeExpirationChange, r.EntryType)
}

func (ExpirationChangeLedgerEntry) implementsCreditLedgerEntry() {}

// CreditBlockExpiryLedgerEntry records the remaining balance of a block
// lapsing at its expiry date.
type CreditBlockExpiryLedgerEntry struct {
	CreditLedgerEntryBase
	JSON apijson.Metadata `json:"-"`
}

func (r *CreditBlockExpiryLedgerEntry) UnmarshalJSON(data []byte) error {
	type shadow CreditBlockExpiryLedgerEntry
	return apijson.UnmarshalRoot(data, (*shadow)(r))
}

func (r CreditBlockExpiryLedgerEntry) Validate() error {
	return validateLedgerEntry(r, EntryTypeCreditBlockExpiry, r.EntryType)
}

func (CreditBlockExpiryLedgerEntry) implementsCreditLedgerEntry() {}

// VoidLedgerEntry removes credits from a block, typically on refund.
type VoidLedgerEntry struct {
	CreditLedgerEntryBase
	VoidAmount float64          `json:"void_amount,required"`
	VoidReason *string          `json:"void_reason,required,nullable"`
	JSON       apijson.Metadata `json:"-"`
}

func (r *VoidLedgerEntry) UnmarshalJSON(data []byte) error {
	type shadow VoidLedgerEntry
	return apijson.UnmarshalRoot(data, (*shadow)(r))
}

func (r VoidLedgerEntry) Validate() error {
	return validateLedgerEntry(r, EntryTypeVoid, r.EntryType)
}

func (VoidLedgerEntry) implementsCreditLedgerEntry() {}

// VoidInitiatedLedgerEntry is a pending void awaiting invoice settlement.
type VoidInitiatedLedgerEntry struct {
	CreditLedgerEntryBase
	NewBlockExpiryDate time.Time        `json:"new_block_expiry_date,required"`
	VoidAmount         float64          `json:"void_amount,required"`
	VoidReason         *string          `json:"void_reason,required,nullable"`
	JSON               apijson.Metadata `json:"-"`
}

func (r *VoidInitiatedLedgerEntry) UnmarshalJSON(data []byte) error {
	type shadow VoidInitiatedLedgerEntry
	return apijson.UnmarshalRoot(data, (*shadow)(r))
}

func (r VoidInitiatedLedgerEntry) Validate() error {
	return validateLedgerEntry(r, EntryTypeVoidInitiated, r.EntryType)
}

func (VoidInitiatedLedgerEntry) implementsCreditLedgerEntry() {}

// AmendmentLedgerEntry corrects the balance of a block without a
// corresponding usage event.
type AmendmentLedgerEntry struct {
	CreditLedgerEntryBase
	JSON apijson.Metadata `json:"-"`
}

func (r *AmendmentLedgerEntry) UnmarshalJSON(data []byte) error {
	type shadow AmendmentLedgerEntry
	return apijson.UnmarshalRoot(data, (*shadow)(r))
}

func (r AmendmentLedgerEntry) Validate() error {
	return validateLedgerEntry(r, EntryTypeAmendment, r.EntryType)
}

func (AmendmentLedgerEntry) implementsCreditLedgerEntry() {}

// UnknownLedgerEntry holds an entry whose shape matched no known variant.
// Raw is the entry exactly as received and is written back unchanged; the
// common fields are filled on a best-effort basis.
type UnknownLedgerEntry struct {
	CreditLedgerEntryBase
	Raw json.RawMessage `json:"-"`
}

func newUnknownLedgerEntry(raw []byte) CreditLedgerEntryVariant {
	entry := UnknownLedgerEntry{Raw: raw}
	_ = json.Unmarshal(raw, &entry.CreditLedgerEntryBase)
	return entry
}

func (r UnknownLedgerEntry) MarshalJSON() ([]byte, error) {
	if len(r.Raw) == 0 {
		return []byte("null"), nil
	}
	return r.Raw, nil
}

func (UnknownLedgerEntry) implementsCreditLedgerEntry() {}

// CreditLedgerEntryParams is implemented by the params of every ledger
// entry type that can be created through the API.
type CreditLedgerEntryParams interface {
	EntryType() EntryType
	check() error
}

// InvoiceSettingsParams asks Orb to invoice for purchased credits. It is
// shared by ledger increments and top-ups.
type InvoiceSettingsParams struct {
	AutoCollection           param.Field[bool]   `json:"auto_collection,required"`
	NetTerms                 param.Field[int64]  `json:"net_terms,required"`
	Memo                     param.Field[string] `json:"memo"`
	RequireSuccessfulPayment param.Field[bool]   `json:"require_successful_payment"`
}

func (r InvoiceSettingsParams) MarshalJSON() ([]byte, error) {
	return apijson.MarshalParams(r)
}

// IncrementEntryParams adds credits in a new block.
type IncrementEntryParams struct {
	Amount           param.Field[float64]               `json:"amount,required"`
	Currency         param.Field[string]                `json:"currency"`
	Description      param.Field[string]                `json:"description"`
	EffectiveDate    param.Field[time.Time]             `json:"effective_date"`
	ExpiryDate       param.Field[time.Time]             `json:"expiry_date"`
	InvoiceSettings  param.Field[InvoiceSettingsParams] `json:"invoice_settings"`
	Metadata         param.Field[Metadata]              `json:"metadata"`
	PerUnitCostBasis param.Field[string]                `json:"per_unit_cost_basis"`
}

func (r IncrementEntryParams) EntryType() EntryType { return EntryTypeIncrement }

func (r IncrementEntryParams) MarshalJSON() ([]byte, error) {
	return apijson.MarshalTaggedParams(r, "entry_type", string(EntryTypeIncrement))
}

func (r IncrementEntryParams) check() error {
	if err := positiveAmount(r.Amount); err != nil {
		return err
	}
	_, invoiced := r.InvoiceSettings.Get()
	if _, ok := r.PerUnitCostBasis.Get(); invoiced && !ok {
		return &ValidationError{
			Kind:   ValidationMissing,
			Path:   "per_unit_cost_basis",
			Detail: "per_unit_cost_basis is required with invoice_settings",
		}
	}
	return nil
}

// DecrementEntryParams deducts credits, oldest-expiring blocks first.
type DecrementEntryParams struct {
	Amount      param.Field[float64]  `json:"amount,required"`
	Currency    param.Field[string]   `json:"currency"`
	Description param.Field[string]   `json:"description"`
	Metadata    param.Field[Metadata] `json:"metadata"`
}

func (r DecrementEntryParams) EntryType() EntryType { return EntryTypeDecrement }

func (r DecrementEntryParams) MarshalJSON() ([]byte, error) {
	return apijson.MarshalTaggedParams(r, "entry_type", string(EntryTypeDecrement))
}

func (r DecrementEntryParams) check() error { return positiveAmount(r.Amount) }

// ExpirationChangeEntryParams moves the expiry of the blocks expiring on
// TargetExpiryDate. A null ExpiryDate makes them never expire.
type ExpirationChangeEntryParams struct {
	ExpiryDate       param.Field[time.Time]          `json:"expiry_date,required,nullable"`
	TargetExpiryDate param.Field[openapi_types.Date] `json:"target_expiry_date,required"`
	Amount           param.Field[float64]            `json:"amount"`
	BlockID          param.Field[string]             `json:"block_id"`
	Currency         param.Field[string]             `json:"currency"`
	Description      param.Field[string]             `json:"description"`
	Metadata         param.Field[Metadata]           `json:"metadata"`
}

func (r ExpirationChangeEntryParams) EntryType() EntryType { return EntryTypeExpirationChange }

func (r ExpirationChangeEntryParams) MarshalJSON() ([]byte, error) {
	return apijson.MarshalTaggedParams(r, "entry_type", string(EntryTypeExpirationChange))
}

func (r ExpirationChangeEntryParams) check() error { return nil }

// VoidEntryParams voids credits in a block.
type VoidEntryParams struct {
	Amount      param.Field[float64]    `json:"amount,required"`
	BlockID     param.Field[string]     `json:"block_id,required"`
	VoidReason  param.Field[VoidReason] `json:"void_reason"`
	Currency    param.Field[string]     `json:"currency"`
	Description param.Field[string]     `json:"description"`
	Metadata    param.Field[Metadata]   `json:"metadata"`
}

func (r VoidEntryParams) EntryType() EntryType { return EntryTypeVoid }

func (r VoidEntryParams) MarshalJSON() ([]byte, error) {
	return apijson.MarshalTaggedParams(r, "entry_type", string(EntryTypeVoid))
}

func (r VoidEntryParams) check() error { return positiveAmount(r.Amount) }

// AmendmentEntryParams adjusts a block's balance; a negative amount deducts.
type AmendmentEntryParams struct {
	Amount      param.Field[float64]  `json:"amount,required"`
	BlockID     param.Field[string]   `json:"block_id,required"`
	Currency    param.Field[string]   `json:"currency"`
	Description param.Field[string]   `json:"description"`
	Metadata    param.Field[Metadata] `json:"metadata"`
}

func (r AmendmentEntryParams) EntryType() EntryType { return EntryTypeAmendment }

func (r AmendmentEntryParams) MarshalJSON() ([]byte, error) {
	return apijson.MarshalTaggedParams(r, "entry_type", string(EntryTypeAmendment))
}

func (r AmendmentEntryParams) check() error { return nil }

func positiveAmount(amount param.Field[float64]) error {
	if v, ok := amount.Get(); ok && v <= 0 {
		return &ValidationError{Kind: ValidationInvalid, Path: "amount", Detail: "amount must be positive"}
	}
	return nil
}

// LedgerListParams filters and pages a customer's ledger.
type LedgerListParams struct {
	Cursor        param.Field[string]      `query:"cursor"`
	Limit         param.Field[int64]       `query:"limit"`
	Currency      param.Field[string]      `query:"currency"`
	EntryStatus   param.Field[EntryStatus] `query:"entry_status"`
	EntryType     param.Field[EntryType]   `query:"entry_type"`
	MinimumAmount param.Field[string]      `query:"minimum_amount"`
	CreatedAtGt   param.Field[time.Time]   `query:"created_at[gt]"`
	CreatedAtGte  param.Field[time.Time]   `query:"created_at[gte]"`
	CreatedAtLt   param.Field[time.Time]   `query:"created_at[lt]"`
	CreatedAtLte  param.Field[time.Time]   `query:"created_at[lte]"`
}

// LedgerClient reads and writes the credit ledger.
type LedgerClient struct {
	client *Client
}

// ensureInitialized returns an error if the client is not properly initialized.
func (c *LedgerClient) ensureInitialized() error {
	if c == nil || c.client == nil {
		return fmt.Errorf("orb: ledger client not initialized")
	}
	return nil
}

func (c *LedgerClient) list(ctx context.Context, route string, id apiquery.PathParam, params *LedgerListParams, opts []RequestOption) (*Page[CreditLedgerEntry], error) {
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
	return getPage[CreditLedgerEntry](ctx, c.client, path, query, opts)
}

// List returns a page of the ledger of the customer with the given Orb ID,
// newest entries first.
func (c *LedgerClient) List(ctx context.Context, customerID string, params *LedgerListParams, opts ...RequestOption) (*Page[CreditLedgerEntry], error) {
	return c.list(ctx, routes.CustomerCreditsLedgerList, apiquery.Param("customer_id", customerID), params, opts)
}

// ListByExternalID is List addressed by external customer ID.
func (c *LedgerClient) ListByExternalID(ctx context.Context, externalCustomerID string, params *LedgerListParams, opts ...RequestOption) (*Page[CreditLedgerEntry], error) {
	return c.list(ctx, routes.CustomerCreditsLedgerListByExternalID, apiquery.Param("external_customer_id", externalCustomerID), params, opts)
}

// ListAutoPaging iterates over every ledger entry of a customer.
func (c *LedgerClient) ListAutoPaging(ctx context.Context, customerID string, params *LedgerListParams, opts ...RequestOption) *AutoPager[CreditLedgerEntry] {
	page, err := c.List(ctx, customerID, params, opts...)
	return newAutoPager(page, err)
}

// ListAutoPagingByExternalID is ListAutoPaging addressed by external customer ID.
func (c *LedgerClient) ListAutoPagingByExternalID(ctx context.Context, externalCustomerID string, params *LedgerListParams, opts ...RequestOption) *AutoPager[CreditLedgerEntry] {
	page, err := c.ListByExternalID(ctx, externalCustomerID, params, opts...)
	return newAutoPager(page, err)
}

func (c *LedgerClient) newEntry(ctx context.Context, route string, id apiquery.PathParam, params CreditLedgerEntryParams, opts []RequestOption) (*CreditLedgerEntry, error) {
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}
	path, err := apiquery.Path(route, id)
	if err != nil {
		return nil, err
	}
	if params == nil {
		return nil, &ValidationError{Kind: ValidationMissing, Path: "entry_type", Detail: "ledger entry params required"}
	}
	if err := params.check(); err != nil {
		return nil, err
	}
	return doJSON[CreditLedgerEntry](ctx, c.client, http.MethodPost, path, nil, params, opts)
}

// NewEntry creates a ledger entry for the customer with the given Orb ID.
// params is one of IncrementEntryParams, DecrementEntryParams,
// ExpirationChangeEntryParams, VoidEntryParams or AmendmentEntryParams.
func (c *LedgerClient) NewEntry(ctx context.Context, customerID string, params CreditLedgerEntryParams, opts ...RequestOption) (*CreditLedgerEntry, error) {
	return c.newEntry(ctx, routes.CustomerCreditsLedger, apiquery.Param("customer_id", customerID), params, opts)
}

// NewEntryByExternalID is NewEntry addressed by external customer ID.
func (c *LedgerClient) NewEntryByExternalID(ctx context.Context, externalCustomerID string, params CreditLedgerEntryParams, opts ...RequestOption) (*CreditLedgerEntry, error) {
	return c.newEntry(ctx, routes.CustomerCreditsLedgerByExternalID, apiquery.Param("external_customer_id", externalCustomerID), params, opts)
}
