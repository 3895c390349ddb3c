package watch

import (
	"fmt"
	"math/big"

	"flashArb/internal/univ2"
)

// PairState holds a token/base pair's reserves oriented by role rather than
// by token0/token1 order.
type PairState struct {
	ReserveToken *big.Int
	ReserveBase  *big.Int
}

// Evaluation is the outcome of pricing one hypothetical borrow: probe tokens
// borrowed from the primary pair, sold for base on the secondary pair, and
// priced against the primary pair's repayment requirement.
type Evaluation struct {
	Received *big.Int
	Required *big.Int
	Surplus  *big.Int
}

// Profitable reports whether the surplus is strictly positive, the same
// gate the settlement engine enforces.
func (e Evaluation) Profitable() bool {
	return e.Surplus.Sign() > 0
}

// Evaluate prices a hypothetical token borrow against both pairs at their
// current reserves.
func Evaluate(probe *big.Int, primary, secondary PairState) (Evaluation, error) {
	if probe == nil || probe.Sign() <= 0 {
		return Evaluation{}, fmt.Errorf("probe amount must be positive")
	}

	received, err := univ2.GetAmountOut(probe, secondary.ReserveToken, secondary.ReserveBase)
	if err != nil {
		return Evaluation{}, fmt.Errorf("secondary output: %w", err)
	}
	required, err := univ2.GetAmountIn(probe, primary.ReserveBase, primary.ReserveToken)
	if err != nil {
		return Evaluation{}, fmt.Errorf("primary repayment: %w", err)
	}

	return Evaluation{
		Received: received,
		Required: required,
		Surplus:  new(big.Int).Sub(received, required),
	}, nil
}
