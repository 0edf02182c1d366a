package orb

// Version is the published client version.
// 0.3.0: Add plan migrations and subscription plan changes.
// 0.2.0: Breaking - Credit ledger entries decode into a tagged union; unknown
// entry types are kept as UnknownLedgerEntry instead of failing.
const Version = "0.3.0"
