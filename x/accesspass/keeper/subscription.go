package keeper

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/outpostnet/outpost/x/accesspass/types"
)

// GetTiers returns a target's ordered tier list. Empty when the target has
// never created a tier.
func (k Keeper) GetTiers(ctx context.Context, target string) ([]types.SubscriptionTier, error) {
	raw, err := k.TierLists.Get(ctx, target)
	if err != nil {
		return nil, nil
	}
	var tiers []types.SubscriptionTier
	if err := json.Unmarshal([]byte(raw), &tiers); err != nil {
		return nil, types.ErrInvalidState.Wrapf("decode tiers for %s: %v", target, err)
	}
	return tiers, nil
}

func (k Keeper) setTiers(ctx context.Context, target string, tiers []types.SubscriptionTier) error {
	raw, err := json.Marshal(tiers)
	if err != nil {
		return types.ErrInvalidState.Wrapf("encode tiers for %s: %v", target, err)
	}
	return k.TierLists.Set(ctx, target, string(raw))
}

// GetSubscription loads the record for a (target, subscriber) pair.
func (k Keeper) GetSubscription(ctx context.Context, target, subscriber string) (*types.Subscription, error) {
	raw, err := k.Subscriptions.Get(ctx, types.SubscriptionKey(target, subscriber))
	if err != nil {
		return nil, types.ErrSubscriptionNotFound.Wrapf("target %s subscriber %s", target, subscriber)
	}
	var sub types.Subscription
	if err := json.Unmarshal([]byte(raw), &sub); err != nil {
		return nil, types.ErrInvalidState.Wrapf("decode subscription %s|%s: %v", target, subscriber, err)
	}
	return &sub, nil
}

func (k Keeper) setSubscription(ctx context.Context, sub types.Subscription) error {
	raw, err := json.Marshal(sub)
	if err != nil {
		return types.ErrInvalidState.Wrapf("encode subscription: %v", err)
	}
	return k.Subscriptions.Set(ctx, types.SubscriptionKey(sub.Target, sub.Subscriber), string(raw))
}

// CreateTier appends a named subscription tier to a target's list. Tier
// names are the natural key and never reused; tier identity for Subscribe
// is the positional index.
func (k Keeper) CreateTier(ctx context.Context, msg types.MsgCreateTier) (uint64, error) {
	if err := msg.ValidateBasic(); err != nil {
		return 0, err
	}
	if !k.ownershipKeeper.IsTargetAdmin(ctx, msg.Owner, msg.Target) {
		return 0, types.ErrUnauthorized.Wrapf("%s does not administer target %s", msg.Owner, msg.Target)
	}

	tiers, err := k.GetTiers(ctx, msg.Target)
	if err != nil {
		return 0, err
	}
	name := strings.TrimSpace(msg.Name)
	for _, tier := range tiers {
		if tier.Name == name {
			return 0, types.ErrTierExists.Wrapf("target %s tier %s", msg.Target, name)
		}
	}

	tiers = append(tiers, types.SubscriptionTier{
		Name:            name,
		Price:           msg.Price,
		DurationSeconds: msg.DurationSeconds,
	})
	if err := k.setTiers(ctx, msg.Target, tiers); err != nil {
		return 0, err
	}

	tierID := uint64(len(tiers) - 1)
	if k.metrics != nil {
		k.metrics.TiersCreated.Inc()
	}

	sdkCtx, _ := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		"subscription_tier_created",
		sdk.NewAttribute("target", msg.Target),
		sdk.NewAttribute("name", name),
		sdk.NewAttribute("tier_id", fmt.Sprintf("%d", tierID)),
		sdk.NewAttribute("price", fmt.Sprintf("%d", msg.Price)),
		sdk.NewAttribute("duration_seconds", fmt.Sprintf("%d", msg.DurationSeconds)),
	))

	return tierID, nil
}

// Subscribe opens a subscription to one of a target's tiers, settling the
// tier price through the fee splitter. Subscriptions carry no vault backing
// and are not redeemable; the net leg goes to the target's fee recipient.
// The presence of any record for the pair blocks a new subscription,
// expired or not, until Cancel removes it.
func (k Keeper) Subscribe(ctx context.Context, msg types.MsgSubscribe) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}

	schedule, err := k.GetFeeSchedule(ctx)
	if err != nil {
		return err
	}

	tiers, err := k.GetTiers(ctx, msg.Target)
	if err != nil {
		return err
	}
	if msg.TierID >= uint64(len(tiers)) {
		return types.ErrTierNotFound.Wrapf("target %s tier %d", msg.Target, msg.TierID)
	}
	tier := tiers[msg.TierID]

	key := types.SubscriptionKey(msg.Target, msg.Subscriber)
	if exists, err := k.Subscriptions.Has(ctx, key); err == nil && exists {
		return types.ErrSubscriptionExists.Wrapf("target %s subscriber %s", msg.Target, msg.Subscriber)
	}

	subscriberAddr, err := sdk.AccAddressFromBech32(msg.Subscriber)
	if err != nil {
		return types.ErrInvalidArgument.Wrapf("invalid subscriber address %s: %v", msg.Subscriber, err)
	}

	referrer := strings.TrimSpace(msg.Referrer)
	split := SplitFee(tier.Price, *schedule, referrer != "")

	priceCoins := sdk.NewCoins(sdk.NewCoin(schedule.Denom, sdkmath.NewIntFromUint64(tier.Price)))
	if !k.bankKeeper.SpendableCoins(ctx, subscriberAddr).IsAllGTE(priceCoins) {
		return types.ErrInsufficientFunds.Wrapf("subscriber %s cannot cover %s", msg.Subscriber, priceCoins)
	}
	if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, subscriberAddr, types.VaultModuleName, priceCoins); err != nil {
		return types.ErrInsufficientFunds.Wrapf("collect tier price from %s: %v", msg.Subscriber, err)
	}
	if err := k.payFeeLeg(ctx, schedule.Denom, split.Protocol, schedule.Treasury); err != nil {
		return err
	}
	recipient := k.ownershipKeeper.FeeRecipient(ctx, msg.Target)
	if err := k.payFeeLeg(ctx, schedule.Denom, split.Subject+split.Net, recipient); err != nil {
		return err
	}
	if err := k.payFeeLeg(ctx, schedule.Denom, split.Referral, referrer); err != nil {
		return err
	}

	sdkCtx, now := contextNow(ctx)
	sub := types.Subscription{
		Target:     msg.Target,
		Subscriber: msg.Subscriber,
		TierID:     msg.TierID,
		StartUnix:  now.Unix(),
		EndUnix:    now.Unix() + int64(tier.DurationSeconds),
	}
	if sub.EndUnix <= sub.StartUnix {
		return types.ErrInvalidState.Wrapf("subscription duration overflow for tier %s", tier.Name)
	}
	if err := k.setSubscription(ctx, sub); err != nil {
		return err
	}

	if k.metrics != nil {
		k.metrics.SubscriptionsCreated.Inc()
	}

	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		"subscription_created",
		sdk.NewAttribute("target", msg.Target),
		sdk.NewAttribute("subscriber", msg.Subscriber),
		sdk.NewAttribute("tier_id", fmt.Sprintf("%d", msg.TierID)),
		sdk.NewAttribute("price", fmt.Sprintf("%d", tier.Price)),
		sdk.NewAttribute("end_unix", fmt.Sprintf("%d", sub.EndUnix)),
	))
	if k.audit != nil {
		k.audit.Append(sdkCtx, SettlementRecord{
			Kind:     SettlementKindSubscribe,
			Actor:    msg.Subscriber,
			Target:   msg.Target,
			Amount:   msg.TierID,
			Gross:    tier.Price,
			TimeUnix: now.Unix(),
		})
	}

	return nil
}

// CancelSubscription removes the record for a (target, subscriber) pair
// unconditionally. No refund is issued. Cancelling an expired record is the
// documented path to resubscribe.
func (k Keeper) CancelSubscription(ctx context.Context, msg types.MsgCancelSubscription) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}

	key := types.SubscriptionKey(msg.Target, msg.Subscriber)
	if exists, err := k.Subscriptions.Has(ctx, key); err != nil || !exists {
		return types.ErrSubscriptionNotFound.Wrapf("target %s subscriber %s", msg.Target, msg.Subscriber)
	}
	if err := k.Subscriptions.Remove(ctx, key); err != nil {
		return err
	}

	if k.metrics != nil {
		k.metrics.SubscriptionsCancelled.Inc()
	}

	sdkCtx, now := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		"subscription_cancelled",
		sdk.NewAttribute("target", msg.Target),
		sdk.NewAttribute("subscriber", msg.Subscriber),
	))
	if k.audit != nil {
		k.audit.Append(sdkCtx, SettlementRecord{
			Kind:     SettlementKindCancel,
			Actor:    msg.Subscriber,
			Target:   msg.Target,
			TimeUnix: now.Unix(),
		})
	}

	return nil
}

// VerifyAccess reports whether a user can access a target: a positive pass
// balance grants lifetime access to any tier; otherwise an unexpired
// subscription grants access when its tier matches (tierID nil accepts any
// tier). Pure read, no state mutation.
func (k Keeper) VerifyAccess(ctx context.Context, user, target string, tierID *uint64) (bool, error) {
	userAddr, err := sdk.AccAddressFromBech32(user)
	if err != nil {
		return false, types.ErrInvalidArgument.Wrapf("invalid user address %s: %v", user, err)
	}

	if k.passKeeper.PassBalance(ctx, userAddr, target) > 0 {
		return true, nil
	}

	sub, err := k.GetSubscription(ctx, target, user)
	if err != nil {
		return false, nil
	}
	if tierID != nil && sub.TierID != *tierID {
		return false, nil
	}

	_, now := contextNow(ctx)
	return !sub.ExpiredAt(now.Unix()), nil
}
