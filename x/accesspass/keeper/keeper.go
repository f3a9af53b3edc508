package keeper

import (
	"context"
	"encoding/json"
	"time"

	"cosmossdk.io/collections"
	"cosmossdk.io/core/store"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/outpostnet/outpost/x/accesspass/types"
)

// BankKeeper defines the expected bank keeper interface for currency
// settlement. The vault module account custodies net buy proceeds.
type BankKeeper interface {
	SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error
	SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error
	SpendableCoins(ctx context.Context, addr sdk.AccAddress) sdk.Coins
}

// PassKeeper defines the expected pass asset collaborator. Mint, burn and
// balance semantics for the fungible pass itself live outside this module.
type PassKeeper interface {
	MintPasses(ctx context.Context, target string, recipient sdk.AccAddress, amount uint64) error
	BurnPasses(ctx context.Context, target string, owner sdk.AccAddress, amount uint64) error
	PassBalance(ctx context.Context, holder sdk.AccAddress, target string) uint64
}

// OwnershipKeeper resolves target administration and fee routing. The module
// never branches on what kind of entity a target is; it only asks who may
// administer it and where its subject fees go.
type OwnershipKeeper interface {
	IsTargetAdmin(ctx context.Context, owner, target string) bool
	FeeRecipient(ctx context.Context, target string) string
}

// Keeper manages pass market and subscription state.
type Keeper struct {
	storeService store.KVStoreService
	authority    string

	bankKeeper      BankKeeper
	passKeeper      PassKeeper
	ownershipKeeper OwnershipKeeper

	metrics *ModuleMetrics
	audit   *AuditChain

	FeeSchedule   collections.Item[string]
	Ledgers       collections.Map[string, string]
	VaultBalances collections.Map[string, uint64]
	TierLists     collections.Map[string, string]
	Subscriptions collections.Map[string, string]
}

// NewKeeper creates a new accesspass keeper.
func NewKeeper(
	storeService store.KVStoreService,
	bankKeeper BankKeeper,
	passKeeper PassKeeper,
	ownershipKeeper OwnershipKeeper,
	authority string,
) Keeper {
	sb := collections.NewSchemaBuilder(storeService)

	return Keeper{
		storeService:    storeService,
		authority:       authority,
		bankKeeper:      bankKeeper,
		passKeeper:      passKeeper,
		ownershipKeeper: ownershipKeeper,
		metrics:         NewModuleMetrics(),
		audit:           NewAuditChain(),
		FeeSchedule: collections.NewItem(
			sb,
			collections.NewPrefix(types.FeeScheduleKey),
			"fee_schedule",
			collections.StringValue,
		),
		Ledgers: collections.NewMap(
			sb,
			collections.NewPrefix(types.PassLedgerKeyPrefix),
			"pass_ledgers",
			collections.StringKey,
			collections.StringValue,
		),
		VaultBalances: collections.NewMap(
			sb,
			collections.NewPrefix(types.VaultBalanceKeyPrefix),
			"vault_balances",
			collections.StringKey,
			collections.Uint64Value,
		),
		TierLists: collections.NewMap(
			sb,
			collections.NewPrefix(types.TierListKeyPrefix),
			"tier_lists",
			collections.StringKey,
			collections.StringValue,
		),
		Subscriptions: collections.NewMap(
			sb,
			collections.NewPrefix(types.SubscriptionKeyPrefix),
			"subscriptions",
			collections.StringKey,
			collections.StringValue,
		),
	}
}

// GetAuthority returns the module authority address.
func (k Keeper) GetAuthority() string {
	return k.authority
}

// Metrics returns the module metrics instance (may be nil in tests).
func (k Keeper) Metrics() *ModuleMetrics {
	return k.metrics
}

// Audit returns the settlement audit chain (may be nil in tests).
func (k Keeper) Audit() *AuditChain {
	return k.audit
}

// GetFeeSchedule loads the market fee schedule.
func (k Keeper) GetFeeSchedule(ctx context.Context) (*types.FeeSchedule, error) {
	raw, err := k.FeeSchedule.Get(ctx)
	if err != nil {
		return nil, types.ErrNotInitialized
	}
	var schedule types.FeeSchedule
	if err := json.Unmarshal([]byte(raw), &schedule); err != nil {
		return nil, types.ErrInvalidState.Wrapf("decode fee schedule: %v", err)
	}
	return &schedule, nil
}

func (k Keeper) setFeeSchedule(ctx context.Context, schedule types.FeeSchedule) error {
	raw, err := json.Marshal(schedule)
	if err != nil {
		return types.ErrInvalidState.Wrapf("encode fee schedule: %v", err)
	}
	return k.FeeSchedule.Set(ctx, string(raw))
}

// InitializeMarket writes the one-time fee schedule. It fails if a schedule
// already exists or the bps sum exceeds 10000.
func (k Keeper) InitializeMarket(ctx context.Context, msg types.MsgInitializeMarket) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}
	if exists, err := k.FeeSchedule.Has(ctx); err == nil && exists {
		return types.ErrAlreadyInitialized
	}

	schedule := msg.Schedule()
	if err := k.setFeeSchedule(ctx, schedule); err != nil {
		return err
	}

	sdkCtx, _ := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		"market_initialized",
		sdk.NewAttribute("admin", schedule.Admin),
		sdk.NewAttribute("treasury", schedule.Treasury),
		sdk.NewAttribute("denom", schedule.Denom),
	))

	return nil
}

// UpdateFeeSchedule replaces the fee schedule as one atomic write so no
// trade can observe a mix of old and new rates. Only the market admin or the
// module authority may call it.
func (k Keeper) UpdateFeeSchedule(ctx context.Context, msg types.MsgUpdateFeeSchedule) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}

	schedule, err := k.GetFeeSchedule(ctx)
	if err != nil {
		return err
	}
	if msg.Authority != schedule.Admin && msg.Authority != k.authority {
		return types.ErrUnauthorized.Wrap("only the market admin may update the fee schedule")
	}

	next := types.FeeSchedule{
		Admin:       schedule.Admin,
		Treasury:    msg.Treasury,
		Denom:       schedule.Denom,
		ProtocolBps: msg.ProtocolBps,
		SubjectBps:  msg.SubjectBps,
		ReferralBps: msg.ReferralBps,
	}
	if err := next.Validate(); err != nil {
		return err
	}
	if err := k.setFeeSchedule(ctx, next); err != nil {
		return err
	}

	sdkCtx, _ := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		"fee_schedule_updated",
		sdk.NewAttribute("treasury", next.Treasury),
	))

	return nil
}

// GetLedger loads a target's pass ledger.
func (k Keeper) GetLedger(ctx context.Context, target string) (*types.PassLedger, error) {
	raw, err := k.Ledgers.Get(ctx, target)
	if err != nil {
		return nil, types.ErrLedgerNotFound.Wrapf("target %s", target)
	}
	var ledger types.PassLedger
	if err := json.Unmarshal([]byte(raw), &ledger); err != nil {
		return nil, types.ErrInvalidState.Wrapf("decode ledger for %s: %v", target, err)
	}
	return &ledger, nil
}

// getOrCreateLedger returns the target's ledger, materializing an empty one
// on first use. The empty ledger is not persisted until a trade commits.
func (k Keeper) getOrCreateLedger(ctx context.Context, target string) (types.PassLedger, error) {
	ledger, err := k.GetLedger(ctx, target)
	if err == nil {
		return *ledger, nil
	}
	if exists, hasErr := k.Ledgers.Has(ctx, target); hasErr == nil && !exists {
		return types.PassLedger{Target: target}, nil
	}
	return types.PassLedger{}, err
}

func (k Keeper) setLedger(ctx context.Context, ledger types.PassLedger) error {
	raw, err := json.Marshal(ledger)
	if err != nil {
		return types.ErrInvalidState.Wrapf("encode ledger for %s: %v", ledger.Target, err)
	}
	return k.Ledgers.Set(ctx, ledger.Target, string(raw))
}

func unwrapSDKContext(ctx context.Context) (sdk.Context, bool) {
	if ctx == nil {
		return sdk.Context{}, false
	}
	if sdkCtx, ok := ctx.(sdk.Context); ok {
		return sdkCtx, true
	}
	if val := ctx.Value(sdk.SdkContextKey); val != nil {
		if sdkCtx, ok := val.(sdk.Context); ok {
			return sdkCtx, true
		}
	}
	return sdk.Context{}, false
}

// contextNow reads the operation clock once. Block time when hosted, wall
// clock as a fallback for bare-context use.
func contextNow(ctx context.Context) (sdk.Context, time.Time) {
	if sdkCtx, ok := unwrapSDKContext(ctx); ok {
		return sdkCtx, sdkCtx.BlockTime()
	}
	return sdk.Context{}, time.Now().UTC()
}

func emitEventIfPossible(ctx sdk.Context, event sdk.Event) {
	if em := ctx.EventManager(); em != nil {
		em.EmitEvent(event)
	}
}
