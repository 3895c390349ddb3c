package watch

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// SyncTopic0 is the signature hash of the pair reserve-update event
// Sync(uint112,uint112).
var SyncTopic0 = crypto.Keccak256Hash([]byte("Sync(uint112,uint112)"))

const syncDataLen = 64

// decodeSync extracts the post-trade reserves from a Sync log, in the
// pair's token0/token1 order.
func decodeSync(log types.Log) (*big.Int, *big.Int, error) {
	if len(log.Topics) == 0 || log.Topics[0] != SyncTopic0 {
		return nil, nil, fmt.Errorf("not a sync log")
	}
	if len(log.Data) != syncDataLen {
		return nil, nil, fmt.Errorf("sync data length %d, want %d", len(log.Data), syncDataLen)
	}
	reserve0 := new(big.Int).SetBytes(log.Data[:32])
	reserve1 := new(big.Int).SetBytes(log.Data[32:])
	return reserve0, reserve1, nil
}
