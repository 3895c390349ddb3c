package univ2

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ReserveSource reads the current reserves of a pair, ordered by the pair's
// own token0/token1 ordering (sorted addresses).
type ReserveSource interface {
	GetReserves(ctx context.Context, pair common.Address) (reserve0, reserve1 *big.Int, err error)
}

// Oracle prices trades against constant-product pairs and derives canonical
// pair addresses. It holds no mutable state; reserves are read per call.
type Oracle struct {
	initCodeHash common.Hash
	reserves     ReserveSource
}

func NewOracle(initCodeHash common.Hash, reserves ReserveSource) *Oracle {
	if initCodeHash == (common.Hash{}) {
		initCodeHash = DefaultInitCodeHash
	}
	return &Oracle{initCodeHash: initCodeHash, reserves: reserves}
}

// PairFor derives the canonical pair address for the token pair under the
// given factory.
func (o *Oracle) PairFor(factory, tokenA, tokenB common.Address) (common.Address, error) {
	return PairFor(factory, o.initCodeHash, tokenA, tokenB)
}

// RequiredInput returns the exact amount of path[0] the factory's pair
// demands in exchange for amountOut of path[1], at current reserves.
func (o *Oracle) RequiredInput(ctx context.Context, factory common.Address, amountOut *big.Int, path [2]common.Address) (*big.Int, error) {
	if o.reserves == nil {
		return nil, fmt.Errorf("reserve source is nil")
	}

	pair, err := o.PairFor(factory, path[0], path[1])
	if err != nil {
		return nil, err
	}

	reserve0, reserve1, err := o.reserves.GetReserves(ctx, pair)
	if err != nil {
		return nil, fmt.Errorf("get reserves for %s: %w", pair, err)
	}

	token0, _, err := SortTokens(path[0], path[1])
	if err != nil {
		return nil, err
	}

	reserveIn, reserveOut := reserve0, reserve1
	if path[0] != token0 {
		reserveIn, reserveOut = reserve1, reserve0
	}

	return GetAmountIn(amountOut, reserveIn, reserveOut)
}
