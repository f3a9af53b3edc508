package keeper

import (
	"context"
	"math"

	"github.com/outpostnet/outpost/x/accesspass/types"
)

// ---------------------------------------------------------------------------
// Redemption vault
// ---------------------------------------------------------------------------
// The vault module account custodies net buy proceeds; this file tracks the
// per-target earmark so one target's sells can never be funded by another
// target's backing. The earmark increases by exactly the net (fee-exclusive)
// portion of every buy and decreases by exactly the gross owed on every
// sell; a sell that the earmark cannot cover fails before any state moves.
// ---------------------------------------------------------------------------

// GetVaultBalance returns a target's redemption vault earmark. Zero if the
// target has never seen a buy.
func (k Keeper) GetVaultBalance(ctx context.Context, target string) uint64 {
	balance, err := k.VaultBalances.Get(ctx, target)
	if err != nil {
		return 0
	}
	return balance
}

// vaultDeposit increases a target's earmark. Overflow of the uint64 balance
// is a fatal state error.
func (k Keeper) vaultDeposit(ctx context.Context, target string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	balance := k.GetVaultBalance(ctx, target)
	if balance > math.MaxUint64-amount {
		return types.ErrInvalidState.Wrapf("vault balance overflow for target %s", target)
	}
	return k.VaultBalances.Set(ctx, target, balance+amount)
}

// vaultWithdraw decreases a target's earmark, failing with
// ErrInsufficientLiquidity when the earmark cannot cover the amount.
func (k Keeper) vaultWithdraw(ctx context.Context, target string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	balance := k.GetVaultBalance(ctx, target)
	if amount > balance {
		return types.ErrInsufficientLiquidity.Wrapf("target %s vault holds %d, sell needs %d", target, balance, amount)
	}
	return k.VaultBalances.Set(ctx, target, balance-amount)
}
