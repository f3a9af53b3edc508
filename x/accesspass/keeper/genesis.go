package keeper

import (
	"context"
	"encoding/json"

	"github.com/outpostnet/outpost/x/accesspass/types"
)

// InitGenesis writes validated genesis state into the store.
func (k Keeper) InitGenesis(ctx context.Context, gs types.GenesisState) error {
	if err := gs.Validate(); err != nil {
		return err
	}

	if gs.FeeSchedule != nil {
		if err := k.setFeeSchedule(ctx, *gs.FeeSchedule); err != nil {
			return err
		}
	}
	for _, ledger := range gs.Ledgers {
		if err := k.setLedger(ctx, ledger); err != nil {
			return err
		}
	}
	for _, vault := range gs.VaultBalances {
		if err := k.VaultBalances.Set(ctx, vault.Target, vault.Balance); err != nil {
			return err
		}
	}
	for _, list := range gs.TierLists {
		if err := k.setTiers(ctx, list.Target, list.Tiers); err != nil {
			return err
		}
	}
	for _, sub := range gs.Subscriptions {
		if err := k.setSubscription(ctx, sub); err != nil {
			return err
		}
	}

	return nil
}

// ExportGenesis reads all module state back out of the store.
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	gs := types.DefaultGenesis()

	if raw, err := k.FeeSchedule.Get(ctx); err == nil {
		var schedule types.FeeSchedule
		if err := json.Unmarshal([]byte(raw), &schedule); err != nil {
			return nil, types.ErrInvalidState.Wrapf("decode fee schedule: %v", err)
		}
		gs.FeeSchedule = &schedule
	}

	err := k.Ledgers.Walk(ctx, nil, func(target, raw string) (bool, error) {
		var ledger types.PassLedger
		if err := json.Unmarshal([]byte(raw), &ledger); err != nil {
			return true, types.ErrInvalidState.Wrapf("decode ledger for %s: %v", target, err)
		}
		gs.Ledgers = append(gs.Ledgers, ledger)
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	err = k.VaultBalances.Walk(ctx, nil, func(target string, balance uint64) (bool, error) {
		gs.VaultBalances = append(gs.VaultBalances, types.VaultBalance{Target: target, Balance: balance})
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	err = k.TierLists.Walk(ctx, nil, func(target, raw string) (bool, error) {
		var tiers []types.SubscriptionTier
		if err := json.Unmarshal([]byte(raw), &tiers); err != nil {
			return true, types.ErrInvalidState.Wrapf("decode tiers for %s: %v", target, err)
		}
		gs.TierLists = append(gs.TierLists, types.TargetTiers{Target: target, Tiers: tiers})
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	err = k.Subscriptions.Walk(ctx, nil, func(key, raw string) (bool, error) {
		var sub types.Subscription
		if err := json.Unmarshal([]byte(raw), &sub); err != nil {
			return true, types.ErrInvalidState.Wrapf("decode subscription %s: %v", key, err)
		}
		gs.Subscriptions = append(gs.Subscriptions, sub)
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	return gs, nil
}
