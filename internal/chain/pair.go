package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const v2PairABIJSON = `[
  {"inputs": [], "name": "token0", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "token1", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "getReserves", "outputs": [
    {"internalType": "uint112", "name": "reserve0", "type": "uint112"},
    {"internalType": "uint112", "name": "reserve1", "type": "uint112"},
    {"internalType": "uint32", "name": "blockTimestampLast", "type": "uint32"}
  ], "stateMutability": "view", "type": "function"}
]`

var (
	v2PairABI    abi.ABI
	v2PairOnce   sync.Once
	v2PairABIErr error
)

func getV2PairABI() (abi.ABI, error) {
	v2PairOnce.Do(func() {
		v2PairABI, v2PairABIErr = abi.JSON(strings.NewReader(v2PairABIJSON))
	})
	return v2PairABI, v2PairABIErr
}

// PairTokens reads the two token addresses of a pair.
func PairTokens(ctx context.Context, client *Client, pair common.Address) (common.Address, common.Address, error) {
	token0Values, err := callPairMethod(ctx, client, pair, "token0")
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	token1Values, err := callPairMethod(ctx, client, pair, "token1")
	if err != nil {
		return common.Address{}, common.Address{}, err
	}

	token0, err := asAddress(token0Values[0])
	if err != nil {
		return common.Address{}, common.Address{}, fmt.Errorf("token0: %w", err)
	}
	token1, err := asAddress(token1Values[0])
	if err != nil {
		return common.Address{}, common.Address{}, fmt.Errorf("token1: %w", err)
	}
	return token0, token1, nil
}

// ReserveReader reads pair reserves over eth_call. It satisfies the pricing
// oracle's reserve source contract.
type ReserveReader struct {
	client *Client
}

func NewReserveReader(client *Client) *ReserveReader {
	return &ReserveReader{client: client}
}

// GetReserves returns the pair's current reserves in token0/token1 order.
func (r *ReserveReader) GetReserves(ctx context.Context, pair common.Address) (*big.Int, *big.Int, error) {
	if r.client == nil {
		return nil, nil, fmt.Errorf("chain client is nil")
	}
	values, err := callPairMethod(ctx, r.client, pair, "getReserves")
	if err != nil {
		return nil, nil, err
	}
	if len(values) < 2 {
		return nil, nil, fmt.Errorf("getReserves returned %d values", len(values))
	}
	reserve0, err := asBigInt(values[0])
	if err != nil {
		return nil, nil, fmt.Errorf("reserve0: %w", err)
	}
	reserve1, err := asBigInt(values[1])
	if err != nil {
		return nil, nil, fmt.Errorf("reserve1: %w", err)
	}
	return reserve0, reserve1, nil
}

func callPairMethod(ctx context.Context, client *Client, pair common.Address, method string) ([]interface{}, error) {
	pairABI, err := getV2PairABI()
	if err != nil {
		return nil, fmt.Errorf("parse pair abi: %w", err)
	}

	data, err := pairABI.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	msg := ethereum.CallMsg{To: &pair, Data: data}
	output, err := client.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s on %s: %w", method, pair, err)
	}

	values, err := pairABI.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s returned no values", method)
	}
	return values, nil
}

func asAddress(value interface{}) (common.Address, error) {
	addr, ok := value.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected type %T", value)
	}
	return addr, nil
}

func asBigInt(value interface{}) (*big.Int, error) {
	n, ok := value.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected type %T", value)
	}
	return n, nil
}
