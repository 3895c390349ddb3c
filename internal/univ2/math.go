package univ2

import (
	"fmt"
	"math/big"
)

// Fee parameters of the constant-product formula: a 30 bps fee is taken on
// the input side, so the effective input is amountIn*997/1000.
var (
	feeNumerator   = big.NewInt(997)
	feeDenominator = big.NewInt(1000)
)

// GetAmountOut returns the output amount a pair yields for an exact input,
// given the current reserves of the input and output assets.
func GetAmountOut(amountIn, reserveIn, reserveOut *big.Int) (*big.Int, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, fmt.Errorf("amount in must be positive")
	}
	if !positiveReserves(reserveIn, reserveOut) {
		return nil, fmt.Errorf("insufficient liquidity")
	}

	amountInWithFee := new(big.Int).Mul(amountIn, feeNumerator)
	numerator := new(big.Int).Mul(amountInWithFee, reserveOut)
	denominator := new(big.Int).Mul(reserveIn, feeDenominator)
	denominator.Add(denominator, amountInWithFee)

	return numerator.Quo(numerator, denominator), nil
}

// GetAmountIn returns the exact input amount a pair requires to emit the
// desired output amount. The +1 rounds up so the invariant is never violated
// by truncation.
func GetAmountIn(amountOut, reserveIn, reserveOut *big.Int) (*big.Int, error) {
	if amountOut == nil || amountOut.Sign() <= 0 {
		return nil, fmt.Errorf("amount out must be positive")
	}
	if !positiveReserves(reserveIn, reserveOut) {
		return nil, fmt.Errorf("insufficient liquidity")
	}
	if amountOut.Cmp(reserveOut) >= 0 {
		return nil, fmt.Errorf("amount out %s exceeds reserve %s", amountOut, reserveOut)
	}

	numerator := new(big.Int).Mul(reserveIn, amountOut)
	numerator.Mul(numerator, feeDenominator)
	denominator := new(big.Int).Sub(reserveOut, amountOut)
	denominator.Mul(denominator, feeNumerator)

	in := numerator.Quo(numerator, denominator)
	return in.Add(in, big.NewInt(1)), nil
}

func positiveReserves(reserveIn, reserveOut *big.Int) bool {
	return reserveIn != nil && reserveIn.Sign() > 0 && reserveOut != nil && reserveOut.Sign() > 0
}
