package keeper

import (
	sdkmath "cosmossdk.io/math"

	"github.com/outpostnet/outpost/x/accesspass/types"
)

// SplitFee decomposes a gross settlement amount into protocol, subject,
// referral and net legs per the fee schedule. Each fee leg floors its own
// integer division; the net is what remains by subtraction, so the four
// parts always sum to the gross exactly and flooring can only ever favor
// the net, never mint value.
func SplitFee(gross uint64, schedule types.FeeSchedule, hasReferrer bool) types.FeeSplit {
	grossInt := sdkmath.NewIntFromUint64(gross)
	base := sdkmath.NewIntFromUint64(types.BpsBase)

	protocol := grossInt.Mul(sdkmath.NewIntFromUint64(schedule.ProtocolBps)).Quo(base)
	subject := grossInt.Mul(sdkmath.NewIntFromUint64(schedule.SubjectBps)).Quo(base)
	referral := sdkmath.ZeroInt()
	if hasReferrer {
		referral = grossInt.Mul(sdkmath.NewIntFromUint64(schedule.ReferralBps)).Quo(base)
	}

	// The bps sum is validated <= 10000, so the fee legs cannot exceed the
	// gross and every leg fits back into uint64.
	net := grossInt.Sub(protocol).Sub(subject).Sub(referral)

	return types.FeeSplit{
		Protocol: protocol.Uint64(),
		Subject:  subject.Uint64(),
		Referral: referral.Uint64(),
		Net:      net.Uint64(),
	}
}
