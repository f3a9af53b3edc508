package types

import "cosmossdk.io/errors"

// Module error codes. Every settlement failure maps to exactly one of these
// so callers can branch on the kind with errors.Is.
var (
	// ErrAlreadyInitialized is returned when InitializeMarket runs twice.
	ErrAlreadyInitialized = errors.Register(ModuleName, 2, "market already initialized")

	// ErrNotInitialized is returned by money-moving operations before
	// InitializeMarket has run.
	ErrNotInitialized = errors.Register(ModuleName, 3, "market not initialized")

	// ErrInvalidFeeSchedule is returned when fee basis points exceed 10000
	// in total or an address field is empty.
	ErrInvalidFeeSchedule = errors.Register(ModuleName, 4, "invalid fee schedule")

	// ErrInvalidAmount is returned for zero trade amounts.
	ErrInvalidAmount = errors.Register(ModuleName, 5, "amount must be positive")

	// ErrInvalidArgument is returned for malformed operation inputs other
	// than amounts (empty names, zero durations, bad addresses).
	ErrInvalidArgument = errors.Register(ModuleName, 6, "invalid argument")

	// ErrUnauthorized is returned when the caller is neither the target
	// admin nor the market admin for a restricted operation.
	ErrUnauthorized = errors.Register(ModuleName, 7, "unauthorized")

	// ErrLedgerNotFound is returned when a target has no pass ledger.
	ErrLedgerNotFound = errors.Register(ModuleName, 8, "pass ledger not found")

	// ErrInsufficientSupply is returned when a sell exceeds outstanding
	// supply.
	ErrInsufficientSupply = errors.Register(ModuleName, 9, "insufficient pass supply")

	// ErrInsufficientLiquidity is returned when the redemption vault cannot
	// cover a sell payout.
	ErrInsufficientLiquidity = errors.Register(ModuleName, 10, "insufficient vault liquidity")

	// ErrInsufficientFunds is returned when the buyer cannot cover the
	// gross price or the seller lacks the passes being sold.
	ErrInsufficientFunds = errors.Register(ModuleName, 11, "insufficient funds")

	// ErrTierExists is returned on a duplicate tier name for a target.
	ErrTierExists = errors.Register(ModuleName, 12, "subscription tier already exists")

	// ErrTierNotFound is returned for an unknown tier id.
	ErrTierNotFound = errors.Register(ModuleName, 13, "subscription tier not found")

	// ErrSubscriptionExists is returned when a (target, subscriber) record
	// is already present, expired or not.
	ErrSubscriptionExists = errors.Register(ModuleName, 14, "subscription already exists")

	// ErrSubscriptionNotFound is returned by Cancel when no record exists.
	ErrSubscriptionNotFound = errors.Register(ModuleName, 15, "subscription not found")

	// ErrInvalidState is returned when arithmetic leaves the uint64 range
	// or stored state fails to decode. It is fatal for the operation.
	ErrInvalidState = errors.Register(ModuleName, 16, "invalid module state")
)
