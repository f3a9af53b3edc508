package keeper_test

import (
	"context"
	"testing"
	"time"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	storemetrics "cosmossdk.io/store/metrics"
	"cosmossdk.io/store/rootmulti"
	storetypes "cosmossdk.io/store/types"
	tmproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/runtime"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/outpostnet/outpost/x/accesspass/keeper"
	"github.com/outpostnet/outpost/x/accesspass/types"
)

var (
	addrAuthority = sdk.AccAddress([]byte("authority")).String()
	addrAdmin     = sdk.AccAddress([]byte("admin")).String()
	addrTreasury  = sdk.AccAddress([]byte("treasury")).String()
	addrCreator   = sdk.AccAddress([]byte("creator")).String()
	addrBuyer     = sdk.AccAddress([]byte("buyer")).String()
	addrSeller    = sdk.AccAddress([]byte("seller")).String()
	addrReferrer  = sdk.AccAddress([]byte("referrer")).String()

	testTarget = "target-1"
)

type mockBankKeeper struct {
	accounts map[string]sdk.Coins
	modules  map[string]sdk.Coins
}

func newMockBankKeeper() *mockBankKeeper {
	return &mockBankKeeper{
		accounts: make(map[string]sdk.Coins),
		modules:  make(map[string]sdk.Coins),
	}
}

func (m *mockBankKeeper) fund(addr string, amount uint64) {
	m.accounts[addr] = m.accounts[addr].Add(sdk.NewCoin(types.DefaultDenom, sdkmath.NewIntFromUint64(amount)))
}

func (m *mockBankKeeper) balanceOf(addr string) uint64 {
	return m.accounts[addr].AmountOf(types.DefaultDenom).Uint64()
}

func (m *mockBankKeeper) moduleBalance(module string) uint64 {
	return m.modules[module].AmountOf(types.DefaultDenom).Uint64()
}

func (m *mockBankKeeper) SendCoinsFromAccountToModule(_ context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error {
	remaining, negative := m.accounts[senderAddr.String()].SafeSub(amt...)
	if negative {
		return types.ErrInsufficientFunds.Wrapf("account %s", senderAddr)
	}
	m.accounts[senderAddr.String()] = remaining
	m.modules[recipientModule] = m.modules[recipientModule].Add(amt...)
	return nil
}

func (m *mockBankKeeper) SendCoinsFromModuleToAccount(_ context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error {
	remaining, negative := m.modules[senderModule].SafeSub(amt...)
	if negative {
		return types.ErrInsufficientFunds.Wrapf("module %s", senderModule)
	}
	m.modules[senderModule] = remaining
	m.accounts[recipientAddr.String()] = m.accounts[recipientAddr.String()].Add(amt...)
	return nil
}

func (m *mockBankKeeper) SpendableCoins(_ context.Context, addr sdk.AccAddress) sdk.Coins {
	return m.accounts[addr.String()]
}

type mockPassKeeper struct {
	balances map[string]uint64
}

func newMockPassKeeper() *mockPassKeeper {
	return &mockPassKeeper{balances: make(map[string]uint64)}
}

func passHoldingKey(target string, holder sdk.AccAddress) string {
	return target + "/" + holder.String()
}

func (m *mockPassKeeper) MintPasses(_ context.Context, target string, recipient sdk.AccAddress, amount uint64) error {
	m.balances[passHoldingKey(target, recipient)] += amount
	return nil
}

func (m *mockPassKeeper) BurnPasses(_ context.Context, target string, owner sdk.AccAddress, amount uint64) error {
	key := passHoldingKey(target, owner)
	if m.balances[key] < amount {
		return types.ErrInsufficientFunds.Wrapf("pass balance %d < %d", m.balances[key], amount)
	}
	m.balances[key] -= amount
	return nil
}

func (m *mockPassKeeper) PassBalance(_ context.Context, holder sdk.AccAddress, target string) uint64 {
	return m.balances[passHoldingKey(target, holder)]
}

type mockOwnershipKeeper struct {
	admins     map[string]string
	recipients map[string]string
}

func newMockOwnershipKeeper() *mockOwnershipKeeper {
	return &mockOwnershipKeeper{
		admins:     map[string]string{testTarget: addrCreator, "target-2": addrCreator},
		recipients: map[string]string{testTarget: addrCreator, "target-2": addrCreator},
	}
}

func (m *mockOwnershipKeeper) IsTargetAdmin(_ context.Context, owner, target string) bool {
	return m.admins[target] == owner
}

func (m *mockOwnershipKeeper) FeeRecipient(_ context.Context, target string) string {
	return m.recipients[target]
}

func accAddr(t *testing.T, bech string) sdk.AccAddress {
	t.Helper()
	addr, err := sdk.AccAddressFromBech32(bech)
	require.NoError(t, err)
	return addr
}

func setupKeeper(t *testing.T) (keeper.Keeper, sdk.Context, *mockBankKeeper, *mockPassKeeper) {
	t.Helper()

	storeKey := storetypes.NewKVStoreKey(types.StoreKey)
	db := dbm.NewMemDB()
	cms := rootmulti.NewStore(db, log.NewNopLogger(), storemetrics.NoOpMetrics{})
	cms.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, nil)
	require.NoError(t, cms.LoadLatestVersion())

	header := tmproto.Header{
		ChainID: "outpost-test-1",
		Height:  1,
		Time:    time.Unix(1_770_000_000, 0).UTC(),
	}
	ctx := sdk.NewContext(cms, header, false, log.NewNopLogger())

	bank := newMockBankKeeper()
	passes := newMockPassKeeper()

	k := keeper.NewKeeper(
		runtime.NewKVStoreService(storeKey),
		bank,
		passes,
		newMockOwnershipKeeper(),
		addrAuthority,
	)

	return k, ctx, bank, passes
}

func initMarket(t *testing.T, k keeper.Keeper, ctx sdk.Context) {
	t.Helper()
	require.NoError(t, k.InitializeMarket(ctx, types.MsgInitializeMarket{
		Admin:       addrAdmin,
		Treasury:    addrTreasury,
		ProtocolBps: 400,
		SubjectBps:  800,
		ReferralBps: 200,
	}))
}

func TestInitializeMarketStoresSchedule(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)
	initMarket(t, k, ctx)

	schedule, err := k.GetFeeSchedule(ctx)
	require.NoError(t, err)
	require.Equal(t, addrAdmin, schedule.Admin)
	require.Equal(t, addrTreasury, schedule.Treasury)
	require.Equal(t, types.DefaultDenom, schedule.Denom)
	require.Equal(t, uint64(400), schedule.ProtocolBps)
	require.Equal(t, uint64(800), schedule.SubjectBps)
	require.Equal(t, uint64(200), schedule.ReferralBps)
}

func TestInitializeMarketRejectsSecondInit(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)
	initMarket(t, k, ctx)

	err := k.InitializeMarket(ctx, types.MsgInitializeMarket{
		Admin:       addrAdmin,
		Treasury:    addrTreasury,
		ProtocolBps: 100,
	})
	require.ErrorIs(t, err, types.ErrAlreadyInitialized)
}

func TestInitializeMarketRejectsExcessiveBps(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)

	err := k.InitializeMarket(ctx, types.MsgInitializeMarket{
		Admin:       addrAdmin,
		Treasury:    addrTreasury,
		ProtocolBps: 5000,
		SubjectBps:  5000,
		ReferralBps: 1,
	})
	require.ErrorIs(t, err, types.ErrInvalidFeeSchedule)
}

func TestGetFeeScheduleBeforeInit(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)

	_, err := k.GetFeeSchedule(ctx)
	require.ErrorIs(t, err, types.ErrNotInitialized)
}

func TestUpdateFeeScheduleByAdmin(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)
	initMarket(t, k, ctx)

	err := k.UpdateFeeSchedule(ctx, types.MsgUpdateFeeSchedule{
		Authority:   addrAdmin,
		Treasury:    addrTreasury,
		ProtocolBps: 300,
		SubjectBps:  700,
		ReferralBps: 100,
	})
	require.NoError(t, err)

	schedule, err := k.GetFeeSchedule(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(300), schedule.ProtocolBps)
	require.Equal(t, uint64(700), schedule.SubjectBps)
	require.Equal(t, uint64(100), schedule.ReferralBps)
}

func TestUpdateFeeScheduleRejectsNonAdmin(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)
	initMarket(t, k, ctx)

	err := k.UpdateFeeSchedule(ctx, types.MsgUpdateFeeSchedule{
		Authority:   addrBuyer,
		Treasury:    addrTreasury,
		ProtocolBps: 1,
	})
	require.ErrorIs(t, err, types.ErrUnauthorized)
}

func TestUpdateFeeScheduleByModuleAuthority(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)
	initMarket(t, k, ctx)

	err := k.UpdateFeeSchedule(ctx, types.MsgUpdateFeeSchedule{
		Authority:   addrAuthority,
		Treasury:    addrTreasury,
		ProtocolBps: 250,
		SubjectBps:  250,
	})
	require.NoError(t, err)
}

func TestGetLedgerUnknownTarget(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)

	_, err := k.GetLedger(ctx, "never-traded")
	require.ErrorIs(t, err, types.ErrLedgerNotFound)
}
