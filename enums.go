package orb

import "strings"

// Orb enums are open: a value the client does not know decodes as-is and
// only fails Validate (or the call, under strict validation).

// PaymentProvider is the external system that collects a customer's payments.
type PaymentProvider string

const (
	PaymentProviderQuickbooks    PaymentProvider = "quickbooks"
	PaymentProviderBillCom       PaymentProvider = "bill.com"
	PaymentProviderStripeCharge  PaymentProvider = "stripe_charge"
	PaymentProviderStripeInvoice PaymentProvider = "stripe_invoice"
	PaymentProviderNetsuite      PaymentProvider = "netsuite"
)

func (p PaymentProvider) IsKnown() bool {
	switch p {
	case PaymentProviderQuickbooks, PaymentProviderBillCom, PaymentProviderStripeCharge,
		PaymentProviderStripeInvoice, PaymentProviderNetsuite:
		return true
	}
	return false
}

// CreditBalanceStatus is the state of a credit block.
type CreditBalanceStatus string

const (
	CreditBalanceStatusActive         CreditBalanceStatus = "active"
	CreditBalanceStatusPendingPayment CreditBalanceStatus = "pending_payment"
)

func (s CreditBalanceStatus) IsKnown() bool {
	return s == CreditBalanceStatusActive || s == CreditBalanceStatusPendingPayment
}

// EntryStatus is whether a ledger entry has been applied to the balance.
type EntryStatus string

const (
	EntryStatusCommitted EntryStatus = "committed"
	EntryStatusPending   EntryStatus = "pending"
)

func (s EntryStatus) IsKnown() bool {
	return s == EntryStatusCommitted || s == EntryStatusPending
}

// ParseEntryStatus normalizes user input while keeping unknown values.
func ParseEntryStatus(val string) EntryStatus {
	return EntryStatus(strings.ToLower(strings.TrimSpace(val)))
}

// EntryType discriminates credit ledger entries.
type EntryType string

const (
	EntryTypeIncrement         EntryType = "increment"
	EntryTypeDecrement         EntryType = "decrement"
	EntryTypeExpirationChange  EntryType = "expiration_change"
	EntryTypeCreditBlockExpiry EntryType = "credit_block_expiry"
	EntryTypeVoid              EntryType = "void"
	EntryTypeVoidInitiated     EntryType = "void_initiated"
	EntryTypeAmendment         EntryType = "amendment"
)

func (t EntryType) IsKnown() bool {
	switch t {
	case EntryTypeIncrement, EntryTypeDecrement, EntryTypeExpirationChange, EntryTypeCreditBlockExpiry,
		EntryTypeVoid, EntryTypeVoidInitiated, EntryTypeAmendment:
		return true
	}
	return false
}

// ParseEntryType normalizes user input, accepting dashes for underscores.
func ParseEntryType(val string) EntryType {
	normalized := strings.ToLower(strings.TrimSpace(val))
	return EntryType(strings.ReplaceAll(normalized, "-", "_"))
}

// VoidReason explains why credits were voided.
type VoidReason string

const VoidReasonRefund VoidReason = "refund"

func (r VoidReason) IsKnown() bool {
	return r == VoidReasonRefund
}

// ExpiresAfterUnit is the unit of TopUp.ExpiresAfter.
type ExpiresAfterUnit string

const (
	ExpiresAfterUnitDay   ExpiresAfterUnit = "day"
	ExpiresAfterUnitMonth ExpiresAfterUnit = "month"
)

func (u ExpiresAfterUnit) IsKnown() bool {
	return u == ExpiresAfterUnitDay || u == ExpiresAfterUnitMonth
}

// PlanStatus is the lifecycle state of a plan.
type PlanStatus string

const (
	PlanStatusActive   PlanStatus = "active"
	PlanStatusArchived PlanStatus = "archived"
	PlanStatusDraft    PlanStatus = "draft"
)

func (s PlanStatus) IsKnown() bool {
	return s == PlanStatusActive || s == PlanStatusArchived || s == PlanStatusDraft
}

// MigrationStatus is the progress of a plan migration.
type MigrationStatus string

const (
	MigrationStatusNotStarted   MigrationStatus = "not_started"
	MigrationStatusInProgress   MigrationStatus = "in_progress"
	MigrationStatusCompleted    MigrationStatus = "completed"
	MigrationStatusActionNeeded MigrationStatus = "action_needed"
	MigrationStatusCanceled     MigrationStatus = "canceled"
)

func (s MigrationStatus) IsKnown() bool {
	switch s {
	case MigrationStatusNotStarted, MigrationStatusInProgress, MigrationStatusCompleted,
		MigrationStatusActionNeeded, MigrationStatusCanceled:
		return true
	}
	return false
}

// IsTerminal reports whether the migration can no longer change.
func (s MigrationStatus) IsTerminal() bool {
	return s == MigrationStatusCompleted || s == MigrationStatusCanceled
}

// SubscriptionStatus is the lifecycle state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusEnded    SubscriptionStatus = "ended"
	SubscriptionStatusUpcoming SubscriptionStatus = "upcoming"
)

func (s SubscriptionStatus) IsKnown() bool {
	return s == SubscriptionStatusActive || s == SubscriptionStatusEnded || s == SubscriptionStatusUpcoming
}

// CancelOption selects when a subscription cancellation takes effect.
type CancelOption string

const (
	CancelOptionEndOfSubscriptionTerm CancelOption = "end_of_subscription_term"
	CancelOptionImmediate             CancelOption = "immediate"
	CancelOptionRequestedDate         CancelOption = "requested_date"
)

func (o CancelOption) IsKnown() bool {
	return o == CancelOptionEndOfSubscriptionTerm || o == CancelOptionImmediate || o == CancelOptionRequestedDate
}

// ChangeOption selects when a scheduled plan change takes effect.
type ChangeOption string

const (
	ChangeOptionRequestedDate         ChangeOption = "requested_date"
	ChangeOptionEndOfSubscriptionTerm ChangeOption = "end_of_subscription_term"
	ChangeOptionImmediate             ChangeOption = "immediate"
)

func (o ChangeOption) IsKnown() bool {
	return o == ChangeOptionRequestedDate || o == ChangeOptionEndOfSubscriptionTerm || o == ChangeOptionImmediate
}

// BillingCycleAlignment controls how a plan change moves the billing anchor.
type BillingCycleAlignment string

const (
	BillingCycleAlignmentUnchanged      BillingCycleAlignment = "unchanged"
	BillingCycleAlignmentPlanChangeDate BillingCycleAlignment = "plan_change_date"
	BillingCycleAlignmentStartOfMonth   BillingCycleAlignment = "start_of_month"
)

func (a BillingCycleAlignment) IsKnown() bool {
	return a == BillingCycleAlignmentUnchanged || a == BillingCycleAlignmentPlanChangeDate || a == BillingCycleAlignmentStartOfMonth
}
