package arb

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// UnboundedDeadline is passed to the secondary router on every swap. The
// engine enforces no expiry of its own; initiators wanting deadline
// protection enforce it before issuing the borrow.
var UnboundedDeadline = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// PriceOracle prices the primary market and derives canonical pair
// addresses. It is an external collaborator; the engine never computes
// prices itself.
type PriceOracle interface {
	// PairFor derives the unique pair address for the token pair under the
	// given factory, with no on-chain lookup.
	PairFor(factory, tokenA, tokenB common.Address) (common.Address, error)
	// RequiredInput returns the exact amount of path[0] the factory's pair
	// demands in exchange for amountOut of path[1], at current reserves.
	RequiredInput(ctx context.Context, factory common.Address, amountOut *big.Int, path [2]common.Address) (*big.Int, error)
}

// Router is the secondary market the borrowed asset is traded against. Both
// swaps fail when the output would be below minOut.
type Router interface {
	SwapExactTokensForBase(ctx context.Context, amountIn, minOut *big.Int, token common.Address, deadline *big.Int) (*big.Int, error)
	SwapExactBaseForTokens(ctx context.Context, amountIn, minOut *big.Int, token common.Address, deadline *big.Int) (*big.Int, error)
}

// Wrapper converts between the native base asset and its wrapped token form
// and moves the wrapped form.
type Wrapper interface {
	Wrap(ctx context.Context, amount *big.Int) error
	Unwrap(ctx context.Context, amount *big.Int) error
	Transfer(ctx context.Context, to common.Address, amount *big.Int) error
}

// Assets is the low-level transfer plumbing for fungible tokens and the
// native base asset, acting for the engine's own account.
type Assets interface {
	Approve(ctx context.Context, token, spender common.Address, amount *big.Int) error
	Transfer(ctx context.Context, token, to common.Address, amount *big.Int) error
	TransferBase(ctx context.Context, to common.Address, amount *big.Int) error
}
