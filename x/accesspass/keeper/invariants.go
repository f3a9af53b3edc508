package keeper

import (
	"encoding/json"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/outpostnet/outpost/x/accesspass/types"
)

// RegisterInvariants registers all module invariants with the invariant registry.
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(types.ModuleName, "fee-schedule-bounds", FeeScheduleBoundsInvariant(k))
	ir.RegisterRoute(types.ModuleName, "ledger-integrity", LedgerIntegrityInvariant(k))
	ir.RegisterRoute(types.ModuleName, "vault-backing", VaultBackingInvariant(k))
	ir.RegisterRoute(types.ModuleName, "subscription-tier-consistency", SubscriptionTierConsistencyInvariant(k))
}

// AllInvariants runs all invariants of the accesspass module.
func AllInvariants(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		invariants := []sdk.Invariant{
			FeeScheduleBoundsInvariant(k),
			LedgerIntegrityInvariant(k),
			VaultBackingInvariant(k),
			SubscriptionTierConsistencyInvariant(k),
		}

		for _, inv := range invariants {
			if msg, broken := inv(ctx); broken {
				return msg, broken
			}
		}
		return "", false
	}
}

// FeeScheduleBoundsInvariant checks that the stored fee schedule decodes and
// keeps its bps sum within the base. An absent schedule is valid: the market
// is simply uninitialized.
func FeeScheduleBoundsInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		raw, err := k.FeeSchedule.Get(ctx)
		if err != nil {
			return "", false
		}

		var schedule types.FeeSchedule
		if err := json.Unmarshal([]byte(raw), &schedule); err != nil {
			return sdk.FormatInvariant(types.ModuleName, "fee-schedule-bounds",
				fmt.Sprintf("INVARIANT BROKEN: fee schedule does not decode: %v\n", err)), true
		}
		if err := schedule.Validate(); err != nil {
			return sdk.FormatInvariant(types.ModuleName, "fee-schedule-bounds",
				fmt.Sprintf("INVARIANT BROKEN: fee schedule invalid: %v\n", err)), true
		}
		return "", false
	}
}

// LedgerIntegrityInvariant checks that every stored ledger decodes and keys
// match the embedded target.
func LedgerIntegrityInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var msg string
		broken := false

		_ = k.Ledgers.Walk(ctx, nil, func(target, raw string) (bool, error) {
			var ledger types.PassLedger
			if err := json.Unmarshal([]byte(raw), &ledger); err != nil {
				msg += fmt.Sprintf("INVARIANT BROKEN: ledger for %s does not decode: %v\n", target, err)
				broken = true
				return false, nil
			}
			if ledger.Target != target {
				msg += fmt.Sprintf("INVARIANT BROKEN: ledger keyed %s names target %s\n", target, ledger.Target)
				broken = true
			}
			return false, nil
		})

		if broken {
			return sdk.FormatInvariant(types.ModuleName, "ledger-integrity", msg), true
		}
		return "", false
	}
}

// VaultBackingInvariant checks that every vault earmark belongs to a known
// ledger and that a target with outstanding supply is the only kind that may
// carry backing. Ledgers come first: an earmark for a target that has never
// traded means value entered the vault outside BuyPass.
func VaultBackingInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var msg string
		broken := false

		ledgers := make(map[string]types.PassLedger)
		_ = k.Ledgers.Walk(ctx, nil, func(target, raw string) (bool, error) {
			var ledger types.PassLedger
			if err := json.Unmarshal([]byte(raw), &ledger); err == nil {
				ledgers[target] = ledger
			}
			return false, nil
		})

		_ = k.VaultBalances.Walk(ctx, nil, func(target string, balance uint64) (bool, error) {
			if balance == 0 {
				return false, nil
			}
			ledger, ok := ledgers[target]
			if !ok {
				msg += fmt.Sprintf("INVARIANT BROKEN: vault earmark %d for unknown target %s\n", balance, target)
				broken = true
				return false, nil
			}
			if ledger.Supply == 0 {
				msg += fmt.Sprintf("INVARIANT BROKEN: target %s has earmark %d with zero supply\n", target, balance)
				broken = true
			}
			return false, nil
		})

		if broken {
			return sdk.FormatInvariant(types.ModuleName, "vault-backing", msg), true
		}
		return "", false
	}
}

// SubscriptionTierConsistencyInvariant checks that every subscription
// references an existing tier of its target and that its interval is
// well-formed.
func SubscriptionTierConsistencyInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var msg string
		broken := false

		tierCounts := make(map[string]int)
		_ = k.TierLists.Walk(ctx, nil, func(target, raw string) (bool, error) {
			var tiers []types.SubscriptionTier
			if err := json.Unmarshal([]byte(raw), &tiers); err != nil {
				msg += fmt.Sprintf("INVARIANT BROKEN: tier list for %s does not decode: %v\n", target, err)
				broken = true
				return false, nil
			}
			tierCounts[target] = len(tiers)
			return false, nil
		})

		_ = k.Subscriptions.Walk(ctx, nil, func(key, raw string) (bool, error) {
			var sub types.Subscription
			if err := json.Unmarshal([]byte(raw), &sub); err != nil {
				msg += fmt.Sprintf("INVARIANT BROKEN: subscription %s does not decode: %v\n", key, err)
				broken = true
				return false, nil
			}
			if count, ok := tierCounts[sub.Target]; !ok || sub.TierID >= uint64(count) {
				msg += fmt.Sprintf("INVARIANT BROKEN: subscription %s references missing tier %d\n", key, sub.TierID)
				broken = true
			}
			if sub.EndUnix <= sub.StartUnix {
				msg += fmt.Sprintf("INVARIANT BROKEN: subscription %s ends before it starts\n", key)
				broken = true
			}
			return false, nil
		})

		if broken {
			return sdk.FormatInvariant(types.ModuleName, "subscription-tier-consistency", msg), true
		}
		return "", false
	}
}
