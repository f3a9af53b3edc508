package keeper

import (
	sdkmath "cosmossdk.io/math"

	"github.com/outpostnet/outpost/x/accesspass/types"
)

// ---------------------------------------------------------------------------
// Bonding curve
// ---------------------------------------------------------------------------
// Deterministic summation-form pricing over the whole-pass supply counter.
// For a trade of `amount` passes on top of `supply` outstanding, the gross
// price is
//
//	s      = supply + C
//	sigma(k) = (k-1)*k*(2k-1)/6        (sum of squares below k)
//	raw    = A * (sigma(s+amount) - sigma(s))
//	gross  = max(initialPrice, B * raw * initialPrice / CurveNormalizer)
//
// A and B are basis points of two independent percentages, so the fixed
// point scale is CurveNormalizer = 10_000 * 10_000. Sells are priced over
// the same unit interval as the reverse buy (the caller passes the
// post-trade supply) and then discounted by SellDiscountBps, which makes a
// round trip strictly unprofitable.
//
// All arithmetic is arbitrary-precision integer math; a result outside the
// uint64 range is a fatal state error, never a wrap.
// ---------------------------------------------------------------------------

const (
	// CurveNormalizer is the combined fixed-point scale of weights A and B.
	CurveNormalizer uint64 = types.BpsBase * types.BpsBase

	// SellDiscountBps is the flat haircut applied to sell-side proceeds.
	SellDiscountBps uint64 = 500

	// DefaultInitialPrice is the flat price of the first pass, in base
	// currency units (1e8 = one whole unit).
	DefaultInitialPrice uint64 = 100_000_000

	// DefaultWeightA and DefaultWeightB steepen the curve; DefaultWeightC
	// offsets the supply counter so the curve has no flat spot at zero.
	DefaultWeightA uint64 = 400
	DefaultWeightB uint64 = 300
	DefaultWeightC uint64 = 2
)

// CurveWeights parameterizes the bonding curve.
type CurveWeights struct {
	A uint64 `json:"a"`
	B uint64 `json:"b"`
	C uint64 `json:"c"`
}

// DefaultCurveWeights returns the market curve parameters.
func DefaultCurveWeights() CurveWeights {
	return CurveWeights{A: DefaultWeightA, B: DefaultWeightB, C: DefaultWeightC}
}

// sumOfSquaresBelow computes sigma(k) = (k-1)*k*(2k-1)/6, the sum of
// squares of 1..k-1. The identity divides exactly, no flooring occurs.
func sumOfSquaresBelow(k sdkmath.Int) sdkmath.Int {
	one := sdkmath.OneInt()
	if k.LTE(one) {
		return sdkmath.ZeroInt()
	}
	kMinusOne := k.Sub(one)
	twoKMinusOne := k.Add(k).Sub(one)
	return kMinusOne.Mul(k).Mul(twoKMinusOne).QuoRaw(6)
}

// CurvePrice returns the gross price for trading `amount` passes with
// `supply` as the curve base. Buys pass the pre-trade supply; sells pass the
// post-trade supply (supply - amount), pricing the identical unit interval
// before the discount. The zero-supply first buy charges exactly
// initialPrice.
func CurvePrice(supply, amount uint64, weights CurveWeights, initialPrice uint64, isSell bool) (uint64, error) {
	if amount == 0 {
		return 0, types.ErrInvalidAmount
	}
	if initialPrice == 0 || weights.A == 0 || weights.B == 0 {
		return 0, types.ErrInvalidState.Wrap("curve weights and initial price must be positive")
	}

	// A zero curve base prices the whole trade at the flat initial price,
	// for sells as well as buys, so a sell always mirrors the reverse buy
	// before its discount.
	price := sdkmath.NewIntFromUint64(initialPrice)
	if supply > 0 {
		s := sdkmath.NewIntFromUint64(supply).AddRaw(int64(weights.C))
		sum1 := sumOfSquaresBelow(s)
		sum2 := sumOfSquaresBelow(s.Add(sdkmath.NewIntFromUint64(amount)))

		raw := sum2.Sub(sum1).Mul(sdkmath.NewIntFromUint64(weights.A))
		curved := raw.
			Mul(sdkmath.NewIntFromUint64(weights.B)).
			Mul(sdkmath.NewIntFromUint64(initialPrice)).
			Quo(sdkmath.NewIntFromUint64(CurveNormalizer))
		if curved.GT(price) {
			price = curved
		}
	}

	if isSell {
		keepBps := sdkmath.NewIntFromUint64(types.BpsBase - SellDiscountBps)
		price = price.Mul(keepBps).Quo(sdkmath.NewIntFromUint64(types.BpsBase))
	}

	if !price.IsUint64() {
		return 0, types.ErrInvalidState.Wrapf("curve price exceeds uint64 range at supply %d amount %d", supply, amount)
	}
	return price.Uint64(), nil
}

// BuyPrice quotes the gross cost of buying `amount` passes at `supply`.
func BuyPrice(supply, amount uint64, weights CurveWeights, initialPrice uint64) (uint64, error) {
	return CurvePrice(supply, amount, weights, initialPrice, false)
}

// SellPrice quotes the gross proceeds of selling `amount` passes out of
// `supply` outstanding. The caller must have verified supply >= amount.
func SellPrice(supply, amount uint64, weights CurveWeights, initialPrice uint64) (uint64, error) {
	if amount > supply {
		return 0, types.ErrInsufficientSupply.Wrapf("supply %d, sell amount %d", supply, amount)
	}
	return CurvePrice(supply-amount, amount, weights, initialPrice, true)
}
