// Package routes holds the path template of every Orb endpoint the
// client calls. Placeholders are filled by apiquery.Path.
package routes

const (
	// Customers lists and creates customers.
	Customers = "/customers"

	// Customer fetches, updates or deletes a customer by Orb ID.
	Customer = "/customers/{customer_id}"

	// CustomerByExternalID addresses a customer by the caller's own ID.
	CustomerByExternalID = "/customers/external_customer_id/{external_customer_id}"

	// CustomerCredits lists credit balances.
	CustomerCredits             = "/customers/{customer_id}/credits"
	CustomerCreditsByExternalID = "/customers/external_customer_id/{external_customer_id}/credits"

	// CustomerCreditsLedger lists and creates ledger entries.
	CustomerCreditsLedger                 = "/customers/{customer_id}/credits/ledger_entry"
	CustomerCreditsLedgerList             = "/customers/{customer_id}/credits/ledger"
	CustomerCreditsLedgerByExternalID     = "/customers/external_customer_id/{external_customer_id}/credits/ledger_entry"
	CustomerCreditsLedgerListByExternalID = "/customers/external_customer_id/{external_customer_id}/credits/ledger"

	// CustomerCreditsTopUps lists and creates top-ups.
	CustomerCreditsTopUps             = "/customers/{customer_id}/credits/top_ups"
	CustomerCreditsTopUp              = "/customers/{customer_id}/credits/top_ups/{top_up_id}"
	CustomerCreditsTopUpsByExternalID = "/customers/external_customer_id/{external_customer_id}/credits/top_ups"
	CustomerCreditsTopUpByExternalID  = "/customers/external_customer_id/{external_customer_id}/credits/top_ups/{top_up_id}"

	// Plans lists plans.
	Plans = "/plans"

	// Plan fetches a plan by Orb ID.
	Plan = "/plans/{plan_id}"

	// PlanByExternalID fetches a plan by the caller's own plan ID.
	PlanByExternalID = "/plans/external_plan_id/{external_plan_id}"

	// PlanMigrations lists a plan's migrations.
	PlanMigrations      = "/plans/{plan_id}/migrations"
	PlanMigration       = "/plans/{plan_id}/migrations/{migration_id}"
	PlanMigrationCancel = "/plans/{plan_id}/migrations/{migration_id}/cancel"

	// Subscriptions lists and creates subscriptions.
	Subscriptions = "/subscriptions"

	// Subscription fetches or updates a subscription.
	Subscription = "/subscriptions/{subscription_id}"

	SubscriptionCancel                 = "/subscriptions/{subscription_id}/cancel"
	SubscriptionUnscheduleCancellation = "/subscriptions/{subscription_id}/unschedule_cancellation"
	SubscriptionSchedulePlanChange     = "/subscriptions/{subscription_id}/schedule_plan_change"
)
