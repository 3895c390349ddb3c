package watch

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"flashArb/internal/chain"
	"flashArb/internal/model"
	"flashArb/internal/storage"
)

// Config holds runtime settings for the watcher.
type Config struct {
	FromBlock         uint64
	ToBlock           uint64
	BatchSize         uint64
	PrimaryPair       common.Address
	SecondaryPair     common.Address
	BaseToken         common.Address
	ProbeAmount       *big.Int
	CheckpointPath    string
	CheckpointEnabled bool
	// Checkpointer overrides the file-backed store when set.
	Checkpointer Checkpointer
	MaxRetries   int
	RetryBackoff time.Duration
}

// pairView tracks one pair's reserve state, oriented by its base leg.
type pairView struct {
	baseIs0 bool
	state   *PairState
}

// Watcher follows reserve updates on the primary and secondary pairs and
// records, block by block, what a settlement attempt for a fixed probe
// amount would have yielded. It observes only; it never trades.
type Watcher struct {
	cfg        Config
	chain      *chain.Client
	sink       storage.OpportunitySink
	logger     *zap.Logger
	checkpoint Checkpointer
	pairs      map[common.Address]*pairView
}

// NewWatcher builds a Watcher with its dependencies.
func NewWatcher(cfg Config, chainClient *chain.Client, sink storage.OpportunitySink, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	cp := cfg.Checkpointer
	if cp == nil {
		cp = NewCheckpointStore(cfg.CheckpointPath, cfg.CheckpointEnabled)
	}
	return &Watcher{
		cfg:        cfg,
		chain:      chainClient,
		sink:       sink,
		logger:     logger,
		checkpoint: cp,
		pairs:      make(map[common.Address]*pairView),
	}
}

// Run executes the watch loop over the configured block range.
func (w *Watcher) Run(ctx context.Context) error {
	if w.chain == nil {
		return fmt.Errorf("chain client is nil")
	}
	if w.sink == nil {
		return fmt.Errorf("opportunity sink is nil")
	}
	if w.cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}
	if w.cfg.ProbeAmount == nil || w.cfg.ProbeAmount.Sign() <= 0 {
		return fmt.Errorf("probe amount must be positive")
	}
	if w.cfg.PrimaryPair == w.cfg.SecondaryPair {
		return fmt.Errorf("primary and secondary pair must differ")
	}

	chainID, err := w.chain.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() {
		return fmt.Errorf("chain id does not fit in uint64: %s", chainID)
	}
	chainIDValue := chainID.Uint64()

	if err := w.orientPairs(ctx); err != nil {
		return err
	}
	w.seedReserves(ctx)

	from := w.cfg.FromBlock
	to := w.cfg.ToBlock
	if to == 0 {
		latest, err := w.chain.LatestBlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}

	if w.checkpoint != nil {
		cp, ok, err := w.checkpoint.Load()
		if err != nil {
			return err
		}
		if ok && cp.LastProcessedBlock >= from {
			from = cp.LastProcessedBlock + 1
			w.logger.Info("resume from checkpoint", zap.Uint64("last_processed", cp.LastProcessedBlock), zap.Uint64("from", from))
		}
	}

	if from > to {
		w.logger.Info("nothing to watch", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil
	}

	ranges, err := SplitRange(from, to, w.cfg.BatchSize)
	if err != nil {
		return err
	}

	addresses := []common.Address{w.cfg.PrimaryPair, w.cfg.SecondaryPair}

	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		logs, err := w.filterLogsWithRetry(ctx, blockRange.From, blockRange.To, addresses)
		if err != nil {
			return fmt.Errorf("filter logs: %w", err)
		}

		opps := w.processBatch(ctx, chainIDValue, logs)
		if len(opps) > 0 {
			if err := w.sink.PutOpportunityBatch(opps); err != nil {
				return fmt.Errorf("store opportunities: %w", err)
			}
		}

		if w.checkpoint != nil {
			if err := w.checkpoint.Save(blockRange.To); err != nil {
				return err
			}
		}

		w.logger.Info("batch complete",
			zap.Uint64("from", blockRange.From),
			zap.Uint64("to", blockRange.To),
			zap.Int("sync_logs", len(logs)),
			zap.Int("evaluations", len(opps)),
		)
	}

	return nil
}

// orientPairs reads each pair's tokens and requires a token/base structure
// with the same traded token on both venues.
func (w *Watcher) orientPairs(ctx context.Context) error {
	traded := make(map[common.Address]common.Address, 2)
	for _, pair := range []common.Address{w.cfg.PrimaryPair, w.cfg.SecondaryPair} {
		token0, token1, err := chain.PairTokens(ctx, w.chain, pair)
		if err != nil {
			return fmt.Errorf("read tokens of %s: %w", pair, err)
		}

		base0 := token0 == w.cfg.BaseToken
		base1 := token1 == w.cfg.BaseToken
		if base0 == base1 {
			return fmt.Errorf("pair %s does not have exactly one base leg", pair)
		}

		w.pairs[pair] = &pairView{baseIs0: base0}
		if base0 {
			traded[pair] = token1
		} else {
			traded[pair] = token0
		}
	}

	if traded[w.cfg.PrimaryPair] != traded[w.cfg.SecondaryPair] {
		return fmt.Errorf("pairs trade different tokens: %s vs %s", traded[w.cfg.PrimaryPair], traded[w.cfg.SecondaryPair])
	}
	return nil
}

// seedReserves primes both pairs from current on-chain reserves so the first
// evaluations do not have to wait for a Sync on every pair. Failures are
// tolerated; Sync events overwrite the state anyway.
func (w *Watcher) seedReserves(ctx context.Context) {
	reader := chain.NewReserveReader(w.chain)
	for pair, view := range w.pairs {
		reserve0, reserve1, err := reader.GetReserves(ctx, pair)
		if err != nil {
			w.logger.Warn("seed reserves failed", zap.Stringer("pair", pair), zap.Error(err))
			continue
		}
		view.state = orient(view.baseIs0, reserve0, reserve1)
	}
}

// processBatch applies sync logs in order and evaluates once per block that
// touched either pair, provided both pairs have known reserves.
func (w *Watcher) processBatch(ctx context.Context, chainID uint64, logs []types.Log) []model.Opportunity {
	opps := make([]model.Opportunity, 0)

	var pendingBlock uint64
	dirty := false
	flush := func() {
		if !dirty {
			return
		}
		dirty = false
		if opp, ok := w.evaluateBlock(ctx, chainID, pendingBlock); ok {
			opps = append(opps, opp)
		}
	}

	for _, log := range logs {
		if log.Removed {
			continue
		}
		view, ok := w.pairs[log.Address]
		if !ok {
			continue
		}
		reserve0, reserve1, err := decodeSync(log)
		if err != nil {
			w.logger.Warn("skip undecodable log",
				zap.Stringer("pair", log.Address),
				zap.Uint64("block", log.BlockNumber),
				zap.Error(err),
			)
			continue
		}

		if dirty && log.BlockNumber != pendingBlock {
			flush()
		}
		view.state = orient(view.baseIs0, reserve0, reserve1)
		pendingBlock = log.BlockNumber
		dirty = true
	}
	flush()

	return opps
}

func (w *Watcher) evaluateBlock(ctx context.Context, chainID, block uint64) (model.Opportunity, bool) {
	primary := w.pairs[w.cfg.PrimaryPair].state
	secondary := w.pairs[w.cfg.SecondaryPair].state
	if primary == nil || secondary == nil {
		return model.Opportunity{}, false
	}

	eval, err := Evaluate(w.cfg.ProbeAmount, *primary, *secondary)
	if err != nil {
		w.logger.Warn("evaluation failed", zap.Uint64("block", block), zap.Error(err))
		return model.Opportunity{}, false
	}

	if eval.Profitable() {
		w.logger.Info("profitable opportunity",
			zap.Uint64("block", block),
			zap.String("probe", w.cfg.ProbeAmount.String()),
			zap.String("received", eval.Received.String()),
			zap.String("required", eval.Required.String()),
			zap.String("surplus", eval.Surplus.String()),
		)
	}

	return model.Opportunity{
		ChainID:       chainID,
		BlockNumber:   block,
		PrimaryPair:   w.cfg.PrimaryPair.Hex(),
		SecondaryPair: w.cfg.SecondaryPair.Hex(),
		ProbeAmount:   w.cfg.ProbeAmount.String(),
		Received:      eval.Received.String(),
		Required:      eval.Required.String(),
		Surplus:       eval.Surplus.String(),
		Profitable:    eval.Profitable(),
		ObservedAt:    w.observedAt(ctx, block),
	}, true
}

// observedAt stamps an evaluation with its block's time so historical
// ranges carry the time the reserves actually held, not the run time.
func (w *Watcher) observedAt(ctx context.Context, block uint64) string {
	if w.chain != nil {
		if ts, err := w.chain.BlockTimestamp(ctx, block); err == nil {
			return time.Unix(int64(ts), 0).UTC().Format(time.RFC3339Nano)
		}
	}
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func (w *Watcher) filterLogsWithRetry(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address) ([]types.Log, error) {
	var logs []types.Log
	err := withRetry(ctx, w.cfg.MaxRetries, w.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		logs, err = w.chain.FilterLogs(ctx, fromBlock, toBlock, addresses, []common.Hash{SyncTopic0})
		if err != nil {
			w.logger.Warn("filter logs failed", zap.Error(err), zap.Uint64("from", fromBlock), zap.Uint64("to", toBlock))
		}
		return err
	})
	return logs, err
}

func orient(baseIs0 bool, reserve0, reserve1 *big.Int) *PairState {
	if baseIs0 {
		return &PairState{ReserveToken: reserve1, ReserveBase: reserve0}
	}
	return &PairState{ReserveToken: reserve0, ReserveBase: reserve1}
}
