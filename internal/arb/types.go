package arb

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// BorrowEvent is one flash-loan callback as reported by the calling pool.
// It is immutable and scoped to a single settlement attempt; exactly one of
// Amount0/Amount1 must be nonzero.
type BorrowEvent struct {
	Caller    common.Address
	Initiator common.Address
	Token0    common.Address
	Token1    common.Address
	Amount0   *big.Int
	Amount1   *big.Int
	Payload   []byte
}

// TradeDirection classifies which leg of the pool was borrowed.
type TradeDirection int

const (
	// TokenBorrowed means the non-base asset was borrowed; the pool is
	// repaid in wrapped base and the surplus is forwarded as native base.
	TokenBorrowed TradeDirection = iota
	// BaseBorrowed means the wrapped base asset was borrowed; the pool is
	// repaid in the traded token and the surplus is forwarded as token.
	BaseBorrowed
)

func (d TradeDirection) String() string {
	switch d {
	case TokenBorrowed:
		return "token_borrowed"
	case BaseBorrowed:
		return "base_borrowed"
	default:
		return "unknown"
	}
}

// resolution is the outcome of direction and asset classification, consumed
// by the swap and settlement steps.
type resolution struct {
	Direction TradeDirection
	Borrowed  common.Address
	Repay     common.Address
	Amount    *big.Int
	// Path orders {repay asset, borrowed asset} for the pricing oracle:
	// RequiredInput over this path is the amount of Repay owed for Amount
	// of Borrowed.
	Path [2]common.Address
}

// SettlementResult reports a completed attempt. Surplus = Received − Required
// and is strictly positive for every settled attempt.
type SettlementResult struct {
	Direction TradeDirection
	Received  *big.Int
	Required  *big.Int
	Surplus   *big.Int
}
