package types

const (
	// ModuleName defines the module name. The accesspass module settles
	// bonding-curve priced access passes and time-bound subscriptions for
	// creator targets, splitting every payment among protocol treasury,
	// the target's fee recipient and an optional referrer.
	ModuleName = "accesspass"

	// VaultModuleName is the dedicated module account that custodies the
	// redemption vault backing. Net buy proceeds accumulate here and fund
	// sell-side payouts.
	VaultModuleName = "accesspass_vault"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// RouterKey defines the module's message routing key
	RouterKey = ModuleName
)

var (
	// FeeScheduleKey stores the single market fee schedule record.
	FeeScheduleKey = []byte{0x01}

	// PassLedgerKeyPrefix is the prefix for per-target pass ledgers.
	PassLedgerKeyPrefix = []byte{0x02}

	// VaultBalanceKeyPrefix is the prefix for per-target redemption vault
	// earmarks.
	VaultBalanceKeyPrefix = []byte{0x03}

	// TierListKeyPrefix is the prefix for per-target subscription tier lists.
	TierListKeyPrefix = []byte{0x04}

	// SubscriptionKeyPrefix is the prefix for (target, subscriber)
	// subscription records.
	SubscriptionKeyPrefix = []byte{0x05}
)

// PassLedgerKey returns the store key for a target's pass ledger.
func PassLedgerKey(target string) []byte {
	return append(PassLedgerKeyPrefix, []byte(target)...)
}

// VaultBalanceKey returns the store key for a target's vault earmark.
func VaultBalanceKey(target string) []byte {
	return append(VaultBalanceKeyPrefix, []byte(target)...)
}

// TierListKey returns the store key for a target's tier list.
func TierListKey(target string) []byte {
	return append(TierListKeyPrefix, []byte(target)...)
}

// SubscriptionKey returns the composite key for a (target, subscriber) pair.
func SubscriptionKey(target, subscriber string) string {
	return target + "|" + subscriber
}
