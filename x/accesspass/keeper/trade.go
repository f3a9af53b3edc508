package keeper

import (
	"context"
	"fmt"
	"math"
	"strings"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/outpostnet/outpost/x/accesspass/types"
)

// GetVaultModuleAddress returns the address of the vault module account.
// Derived deterministically from the module account name.
func GetVaultModuleAddress() sdk.AccAddress {
	return authtypes.NewModuleAddress(types.VaultModuleName)
}

// BuyPass executes a pass purchase: prices the trade on the curve, collects
// the gross from the buyer, deposits the net into the target's redemption
// vault, fans the fee legs out, mints the passes and advances the ledger.
// Returns the gross price charged.
func (k Keeper) BuyPass(ctx context.Context, msg types.MsgBuyPass) (uint64, error) {
	if err := msg.ValidateBasic(); err != nil {
		return 0, err
	}

	schedule, err := k.GetFeeSchedule(ctx)
	if err != nil {
		return 0, err
	}

	ledger, err := k.getOrCreateLedger(ctx, msg.Target)
	if err != nil {
		return 0, err
	}
	if ledger.Supply > math.MaxUint64-msg.Amount {
		return 0, types.ErrInvalidState.Wrapf("supply overflow for target %s", msg.Target)
	}

	gross, err := BuyPrice(ledger.Supply, msg.Amount, DefaultCurveWeights(), DefaultInitialPrice)
	if err != nil {
		return 0, err
	}

	referrer := strings.TrimSpace(msg.Referrer)
	split := SplitFee(gross, *schedule, referrer != "")

	buyerAddr, err := sdk.AccAddressFromBech32(msg.Buyer)
	if err != nil {
		return 0, types.ErrInvalidArgument.Wrapf("invalid buyer address %s: %v", msg.Buyer, err)
	}

	grossCoins := sdk.NewCoins(sdk.NewCoin(schedule.Denom, sdkmath.NewIntFromUint64(gross)))
	if !k.bankKeeper.SpendableCoins(ctx, buyerAddr).IsAllGTE(grossCoins) {
		return 0, types.ErrInsufficientFunds.Wrapf("buyer %s cannot cover %s", msg.Buyer, grossCoins)
	}

	// Collect the gross into the vault module account, then fan the fee
	// legs back out. The net stays behind as redemption backing.
	if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, buyerAddr, types.VaultModuleName, grossCoins); err != nil {
		return 0, types.ErrInsufficientFunds.Wrapf("collect gross from buyer %s: %v", msg.Buyer, err)
	}
	if err := k.vaultDeposit(ctx, msg.Target, split.Net); err != nil {
		return 0, err
	}
	if err := k.payFeeLeg(ctx, schedule.Denom, split.Protocol, schedule.Treasury); err != nil {
		return 0, err
	}
	if err := k.payFeeLeg(ctx, schedule.Denom, split.Subject, k.ownershipKeeper.FeeRecipient(ctx, msg.Target)); err != nil {
		return 0, err
	}
	if err := k.payFeeLeg(ctx, schedule.Denom, split.Referral, referrer); err != nil {
		return 0, err
	}

	if err := k.passKeeper.MintPasses(ctx, msg.Target, buyerAddr, msg.Amount); err != nil {
		return 0, fmt.Errorf("mint passes for %s: %w", msg.Buyer, err)
	}

	ledger.Supply += msg.Amount
	ledger.LastPrice = gross
	if err := k.setLedger(ctx, ledger); err != nil {
		return 0, err
	}

	if k.metrics != nil {
		k.metrics.Buys.Inc()
		k.metrics.PassesOutstanding.Add(int64(msg.Amount))
	}

	sdkCtx, now := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		"pass_purchased",
		sdk.NewAttribute("buyer", msg.Buyer),
		sdk.NewAttribute("target", msg.Target),
		sdk.NewAttribute("amount", fmt.Sprintf("%d", msg.Amount)),
		sdk.NewAttribute("gross", fmt.Sprintf("%d", gross)),
		sdk.NewAttribute("net", fmt.Sprintf("%d", split.Net)),
		sdk.NewAttribute("supply", fmt.Sprintf("%d", ledger.Supply)),
	))
	if k.audit != nil {
		k.audit.Append(sdkCtx, SettlementRecord{
			Kind:     SettlementKindBuy,
			Actor:    msg.Buyer,
			Target:   msg.Target,
			Amount:   msg.Amount,
			Gross:    gross,
			TimeUnix: now.Unix(),
		})
	}

	return gross, nil
}

// SellPass executes a pass redemption: prices the trade as the discounted
// reverse buy, burns the passes before any payout, withdraws the gross from
// the target's vault earmark and fans out seller payout and fee legs.
// Returns the net payout to the seller.
func (k Keeper) SellPass(ctx context.Context, msg types.MsgSellPass) (uint64, error) {
	if err := msg.ValidateBasic(); err != nil {
		return 0, err
	}

	schedule, err := k.GetFeeSchedule(ctx)
	if err != nil {
		return 0, err
	}

	ledger, err := k.GetLedger(ctx, msg.Target)
	if err != nil {
		return 0, err
	}
	if ledger.Supply < msg.Amount {
		return 0, types.ErrInsufficientSupply.Wrapf("target %s supply %d, sell amount %d", msg.Target, ledger.Supply, msg.Amount)
	}

	sellerAddr, err := sdk.AccAddressFromBech32(msg.Seller)
	if err != nil {
		return 0, types.ErrInvalidArgument.Wrapf("invalid seller address %s: %v", msg.Seller, err)
	}
	if k.passKeeper.PassBalance(ctx, sellerAddr, msg.Target) < msg.Amount {
		return 0, types.ErrInsufficientFunds.Wrapf("seller %s holds fewer than %d passes", msg.Seller, msg.Amount)
	}

	gross, err := SellPrice(ledger.Supply, msg.Amount, DefaultCurveWeights(), DefaultInitialPrice)
	if err != nil {
		return 0, err
	}
	split := SplitFee(gross, *schedule, false)

	// Liquidity is validated before the burn so an uncovered sell aborts
	// without touching the seller's passes.
	if k.GetVaultBalance(ctx, msg.Target) < gross {
		if k.metrics != nil {
			k.metrics.LiquidityRejections.Inc()
		}
		return 0, types.ErrInsufficientLiquidity.Wrapf(
			"target %s vault holds %d, sell needs %d", msg.Target, k.GetVaultBalance(ctx, msg.Target), gross)
	}

	// Burn before payout so the same passes cannot fund two redemptions.
	if err := k.passKeeper.BurnPasses(ctx, msg.Target, sellerAddr, msg.Amount); err != nil {
		return 0, fmt.Errorf("burn passes of %s: %w", msg.Seller, err)
	}
	if err := k.vaultWithdraw(ctx, msg.Target, gross); err != nil {
		return 0, err
	}
	if err := k.payFeeLeg(ctx, schedule.Denom, split.Net, msg.Seller); err != nil {
		return 0, err
	}
	if err := k.payFeeLeg(ctx, schedule.Denom, split.Protocol, schedule.Treasury); err != nil {
		return 0, err
	}
	if err := k.payFeeLeg(ctx, schedule.Denom, split.Subject, k.ownershipKeeper.FeeRecipient(ctx, msg.Target)); err != nil {
		return 0, err
	}

	ledger.Supply -= msg.Amount
	ledger.LastPrice = gross
	if err := k.setLedger(ctx, *ledger); err != nil {
		return 0, err
	}

	if k.metrics != nil {
		k.metrics.Sells.Inc()
		k.metrics.PassesOutstanding.Add(-int64(msg.Amount))
	}

	sdkCtx, now := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		"pass_sold",
		sdk.NewAttribute("seller", msg.Seller),
		sdk.NewAttribute("target", msg.Target),
		sdk.NewAttribute("amount", fmt.Sprintf("%d", msg.Amount)),
		sdk.NewAttribute("gross", fmt.Sprintf("%d", gross)),
		sdk.NewAttribute("payout", fmt.Sprintf("%d", split.Net)),
		sdk.NewAttribute("supply", fmt.Sprintf("%d", ledger.Supply)),
	))
	if k.audit != nil {
		k.audit.Append(sdkCtx, SettlementRecord{
			Kind:     SettlementKindSell,
			Actor:    msg.Seller,
			Target:   msg.Target,
			Amount:   msg.Amount,
			Gross:    gross,
			TimeUnix: now.Unix(),
		})
	}

	return split.Net, nil
}

// GetBuyPrice quotes the gross a BuyPass of the same size would charge for
// the target's current supply. Pure read.
func (k Keeper) GetBuyPrice(ctx context.Context, target string, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, types.ErrInvalidAmount
	}
	var supply uint64
	if ledger, err := k.GetLedger(ctx, target); err == nil {
		supply = ledger.Supply
	}
	return BuyPrice(supply, amount, DefaultCurveWeights(), DefaultInitialPrice)
}

// GetSellPrice quotes the gross a SellPass of the same size would realize
// for the target's current supply. Pure read.
func (k Keeper) GetSellPrice(ctx context.Context, target string, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, types.ErrInvalidAmount
	}
	ledger, err := k.GetLedger(ctx, target)
	if err != nil {
		return 0, err
	}
	return SellPrice(ledger.Supply, amount, DefaultCurveWeights(), DefaultInitialPrice)
}

// payFeeLeg sends one settlement leg from the vault module account. Zero
// legs and empty recipients are skipped; flooring already routed their dust
// into the net.
func (k Keeper) payFeeLeg(ctx context.Context, denom string, amount uint64, recipient string) error {
	if amount == 0 || strings.TrimSpace(recipient) == "" {
		return nil
	}
	addr, err := sdk.AccAddressFromBech32(recipient)
	if err != nil {
		return types.ErrInvalidArgument.Wrapf("invalid fee recipient %s: %v", recipient, err)
	}
	coins := sdk.NewCoins(sdk.NewCoin(denom, sdkmath.NewIntFromUint64(amount)))
	return k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.VaultModuleName, addr, coins)
}
