package univ2

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// DefaultInitCodeHash is the pair creation code hash of the reference
// factory deployment.
var DefaultInitCodeHash = common.HexToHash("0x96e8ac4277198ff8b6f785478aa9a39f403cb768dd02cbe574a913e25024019a")

// SortTokens orders two token addresses the way the factory does when it
// deploys a pair: token0 is the numerically smaller address.
func SortTokens(tokenA, tokenB common.Address) (common.Address, common.Address, error) {
	if tokenA == tokenB {
		return common.Address{}, common.Address{}, fmt.Errorf("identical tokens: %s", tokenA)
	}
	if (tokenA == common.Address{}) || (tokenB == common.Address{}) {
		return common.Address{}, common.Address{}, fmt.Errorf("zero token address")
	}
	if bytes.Compare(tokenA.Bytes(), tokenB.Bytes()) < 0 {
		return tokenA, tokenB, nil
	}
	return tokenB, tokenA, nil
}

// PairFor derives the canonical pair address for a token pair without any
// on-chain lookup, using the CREATE2 rule:
// keccak256(0xff ++ factory ++ keccak256(token0 ++ token1) ++ initCodeHash)[12:].
func PairFor(factory common.Address, initCodeHash common.Hash, tokenA, tokenB common.Address) (common.Address, error) {
	token0, token1, err := SortTokens(tokenA, tokenB)
	if err != nil {
		return common.Address{}, err
	}

	salt := crypto.Keccak256(token0.Bytes(), token1.Bytes())

	preimage := make([]byte, 0, 1+common.AddressLength+2*common.HashLength)
	preimage = append(preimage, 0xff)
	preimage = append(preimage, factory.Bytes()...)
	preimage = append(preimage, salt...)
	preimage = append(preimage, initCodeHash.Bytes()...)

	return common.BytesToAddress(crypto.Keccak256(preimage)[12:]), nil
}
