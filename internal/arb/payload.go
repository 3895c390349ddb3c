package arb

import (
	"fmt"
	"math/big"
)

// payloadWordSize is the width of the single unsigned integer word the
// opaque payload must carry.
const payloadWordSize = 32

// DecodeSlippageFloor interprets the opaque callback payload as one 32-byte
// big-endian unsigned integer: the minimum acceptable output of the
// secondary-market trade.
func DecodeSlippageFloor(payload []byte) (*big.Int, error) {
	if len(payload) != payloadWordSize {
		return nil, fmt.Errorf("%w: payload must be one %d-byte word, got %d bytes", ErrStructuralPrecondition, payloadWordSize, len(payload))
	}
	return new(big.Int).SetBytes(payload), nil
}

// EncodeSlippageFloor packs a slippage floor into the payload format
// DecodeSlippageFloor accepts. Used by initiators constructing callbacks.
func EncodeSlippageFloor(floor *big.Int) ([]byte, error) {
	if floor == nil || floor.Sign() < 0 {
		return nil, fmt.Errorf("slippage floor must be non-negative")
	}
	if floor.BitLen() > payloadWordSize*8 {
		return nil, fmt.Errorf("slippage floor %s exceeds %d bytes", floor, payloadWordSize)
	}
	return floor.FillBytes(make([]byte, payloadWordSize)), nil
}
