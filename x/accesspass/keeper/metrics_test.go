package keeper_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/outpostnet/outpost/x/accesspass/keeper"
	"github.com/outpostnet/outpost/x/accesspass/types"
)

func TestModuleMetricsSnapshotAndReset(t *testing.T) {
	k, ctx, bank, _ := setupKeeper(t)
	initMarket(t, k, ctx)
	bank.fund(addrBuyer, 400_000_000)

	for i := 0; i < 2; i++ {
		_, err := k.BuyPass(ctx, types.MsgBuyPass{Buyer: addrBuyer, Target: testTarget, Amount: 1})
		require.NoError(t, err)
	}

	snap := k.Metrics().Snapshot(ctx.BlockHeight(), ctx.BlockTime())
	require.Equal(t, int64(2), snap.Buys)
	require.Equal(t, int64(2), snap.PassesOutstanding)
	require.Equal(t, ctx.BlockHeight(), snap.BlockHeight)

	k.Metrics().Reset()
	require.Equal(t, int64(0), k.Metrics().Buys.Get())
	require.Equal(t, int64(0), k.Metrics().PassesOutstanding.Get())
}

func TestModuleMetricsEventEmission(t *testing.T) {
	k, ctx, bank, _ := setupKeeper(t)
	initMarket(t, k, ctx)
	bank.fund(addrBuyer, 200_000_000)

	_, err := k.BuyPass(ctx, types.MsgBuyPass{Buyer: addrBuyer, Target: testTarget, Amount: 1})
	require.NoError(t, err)

	k.Metrics().EmitMetricsEvent(ctx)

	var found bool
	for _, ev := range ctx.EventManager().Events() {
		if ev.Type == "accesspass_module_metrics" {
			found = true
		}
	}
	require.True(t, found)
}

func TestAtomicCounterAndGauge(t *testing.T) {
	var c keeper.AtomicCounter
	c.Inc()
	c.Add(4)
	require.Equal(t, int64(5), c.Get())
	c.Reset()
	require.Equal(t, int64(0), c.Get())

	var g keeper.AtomicGauge
	g.Add(10)
	g.Add(-3)
	require.Equal(t, int64(7), g.Get())
	g.Set(0)
	require.Equal(t, int64(0), g.Get())
}
