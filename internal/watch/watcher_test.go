package watch

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	primaryPair   = common.HexToAddress("0x4000000000000000000000000000000000000001")
	secondaryPair = common.HexToAddress("0x4000000000000000000000000000000000000002")
)

func syncLog(pair common.Address, block uint64, reserve0, reserve1 int64) types.Log {
	data := make([]byte, 0, syncDataLen)
	data = append(data, big.NewInt(reserve0).FillBytes(make([]byte, 32))...)
	data = append(data, big.NewInt(reserve1).FillBytes(make([]byte, 32))...)
	return types.Log{
		Address:     pair,
		Topics:      []common.Hash{SyncTopic0},
		Data:        data,
		BlockNumber: block,
	}
}

func newTestWatcher() *Watcher {
	w := NewWatcher(Config{
		PrimaryPair:   primaryPair,
		SecondaryPair: secondaryPair,
		ProbeAmount:   big.NewInt(1000),
		BatchSize:     100,
		RetryBackoff:  time.Millisecond,
	}, nil, nil, nil)
	// Base on leg 0 for the primary, leg 1 for the secondary.
	w.pairs[primaryPair] = &pairView{baseIs0: true}
	w.pairs[secondaryPair] = &pairView{baseIs0: false}
	return w
}

func TestProcessBatchEvaluatesPerBlock(t *testing.T) {
	w := newTestWatcher()

	logs := []types.Log{
		// Block 10 establishes both pairs: primary (base0=10_000,
		// token1=1_000_000), secondary (token0=100_000, base1=10_000).
		syncLog(primaryPair, 10, 10_000, 1_000_000),
		syncLog(secondaryPair, 10, 100_000, 10_000),
		// Block 12 drains the secondary's base leg, killing the edge.
		syncLog(secondaryPair, 12, 101_000, 9_000),
	}

	opps := w.processBatch(context.Background(), 1, logs)
	if len(opps) != 2 {
		t.Fatalf("expected 2 evaluations, got %d: %+v", len(opps), opps)
	}

	first := opps[0]
	if first.BlockNumber != 10 || !first.Profitable {
		t.Fatalf("first evaluation mismatch: %+v", first)
	}
	if first.Received != "98" || first.Required != "11" || first.Surplus != "87" {
		t.Fatalf("first amounts mismatch: %+v", first)
	}

	second := opps[1]
	if second.BlockNumber != 12 {
		t.Fatalf("second evaluation block mismatch: %+v", second)
	}
	if second.Received == first.Received {
		t.Fatalf("secondary reserve update not applied: %+v", second)
	}
}

func TestProcessBatchSkipsUntilBothPairsKnown(t *testing.T) {
	w := newTestWatcher()

	opps := w.processBatch(context.Background(), 1, []types.Log{syncLog(primaryPair, 10, 10_000, 1_000_000)})
	if len(opps) != 0 {
		t.Fatalf("evaluated with unknown secondary reserves: %+v", opps)
	}
}

func TestProcessBatchIgnoresForeignAndRemovedLogs(t *testing.T) {
	w := newTestWatcher()

	foreign := syncLog(common.HexToAddress("0x4000000000000000000000000000000000000003"), 10, 1, 1)
	removed := syncLog(primaryPair, 10, 10_000, 1_000_000)
	removed.Removed = true

	opps := w.processBatch(context.Background(), 1, []types.Log{foreign, removed})
	if len(opps) != 0 {
		t.Fatalf("unexpected evaluations: %+v", opps)
	}
	if w.pairs[primaryPair].state != nil {
		t.Fatalf("removed log mutated state")
	}
}

func TestDecodeSyncRejectsBadData(t *testing.T) {
	log := syncLog(primaryPair, 1, 5, 6)

	reserve0, reserve1, err := decodeSync(log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reserve0.Cmp(big.NewInt(5)) != 0 || reserve1.Cmp(big.NewInt(6)) != 0 {
		t.Fatalf("reserves mismatch: %s, %s", reserve0, reserve1)
	}

	log.Data = log.Data[:33]
	if _, _, err := decodeSync(log); err == nil {
		t.Fatalf("expected error for truncated data")
	}

	log.Topics = nil
	if _, _, err := decodeSync(log); err == nil {
		t.Fatalf("expected error for missing topic")
	}
}
