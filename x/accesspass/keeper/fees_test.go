package keeper_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/outpostnet/outpost/x/accesspass/keeper"
	"github.com/outpostnet/outpost/x/accesspass/types"
)

func testSchedule(protocol, subject, referral uint64) types.FeeSchedule {
	return types.FeeSchedule{
		Admin:       addrAdmin,
		Treasury:    addrTreasury,
		Denom:       types.DefaultDenom,
		ProtocolBps: protocol,
		SubjectBps:  subject,
		ReferralBps: referral,
	}
}

func TestSplitFeeReferenceValues(t *testing.T) {
	split := keeper.SplitFee(100_000_000, testSchedule(400, 800, 200), false)
	require.Equal(t, uint64(4_000_000), split.Protocol)
	require.Equal(t, uint64(8_000_000), split.Subject)
	require.Equal(t, uint64(0), split.Referral)
	require.Equal(t, uint64(88_000_000), split.Net)
}

func TestSplitFeeWithReferrer(t *testing.T) {
	split := keeper.SplitFee(100_000_000, testSchedule(400, 800, 200), true)
	require.Equal(t, uint64(4_000_000), split.Protocol)
	require.Equal(t, uint64(8_000_000), split.Subject)
	require.Equal(t, uint64(2_000_000), split.Referral)
	require.Equal(t, uint64(86_000_000), split.Net)
}

func TestSplitFeeConservation(t *testing.T) {
	schedules := []types.FeeSchedule{
		testSchedule(400, 800, 200),
		testSchedule(1, 1, 1),
		testSchedule(0, 0, 0),
		testSchedule(9999, 0, 1),
		testSchedule(3333, 3333, 3334),
	}
	grosses := []uint64{0, 1, 2, 7, 99, 10_001, 100_000_000, 1<<63 - 1}

	for _, schedule := range schedules {
		for _, gross := range grosses {
			for _, hasReferrer := range []bool{false, true} {
				split := keeper.SplitFee(gross, schedule, hasReferrer)
				sum := split.Protocol + split.Subject + split.Referral + split.Net
				require.Equal(t, gross, sum,
					"legs do not sum to gross %d under %d/%d/%d referrer=%v",
					gross, schedule.ProtocolBps, schedule.SubjectBps, schedule.ReferralBps, hasReferrer)
			}
		}
	}
}

func TestSplitFeeFlooringFavorsNet(t *testing.T) {
	// 1 bps of 9999 floors to 0; the dust stays in the net leg.
	split := keeper.SplitFee(9_999, testSchedule(1, 1, 1), true)
	require.Equal(t, uint64(0), split.Protocol)
	require.Equal(t, uint64(0), split.Subject)
	require.Equal(t, uint64(0), split.Referral)
	require.Equal(t, uint64(9_999), split.Net)
}

func TestSplitFeeFullExtraction(t *testing.T) {
	// A 100% schedule leaves nothing in the net on round gross values.
	split := keeper.SplitFee(10_000, testSchedule(5000, 4000, 1000), true)
	require.Equal(t, uint64(5_000), split.Protocol)
	require.Equal(t, uint64(4_000), split.Subject)
	require.Equal(t, uint64(1_000), split.Referral)
	require.Equal(t, uint64(0), split.Net)
}

func TestSplitFeeReferralSuppressedWithoutReferrer(t *testing.T) {
	with := keeper.SplitFee(50_000_000, testSchedule(400, 800, 200), true)
	without := keeper.SplitFee(50_000_000, testSchedule(400, 800, 200), false)

	require.Equal(t, uint64(1_000_000), with.Referral)
	require.Equal(t, uint64(0), without.Referral)
	require.Equal(t, with.Net+with.Referral, without.Net)
}
