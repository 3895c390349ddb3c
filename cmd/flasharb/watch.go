package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flashArb/internal/chain"
	"flashArb/internal/config"
	"flashArb/internal/storage"
	"flashArb/internal/storage/postgres"
	"flashArb/internal/watch"
)

func runWatch(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWatch(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}

	primaryPair, err := parseAddress("primary-pair", cfg.PrimaryPair)
	if err != nil {
		return err
	}
	secondaryPair, err := parseAddress("secondary-pair", cfg.SecondaryPair)
	if err != nil {
		return err
	}
	baseToken, err := parseAddress("base-token", cfg.BaseToken)
	if err != nil {
		return err
	}

	probe, err := parseAmount("probe-amount", cfg.ProbeAmount)
	if err != nil {
		return err
	}
	if probe.Sign() == 0 {
		return fmt.Errorf("probe-amount must be positive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	var sink storage.OpportunitySink = storage.NewJsonlStorage(cfg.Out)
	var checkpointer watch.Checkpointer
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		sink = store
		if cfg.CheckpointEnabled {
			checkpointer = &pgCheckpoint{
				ctx:   ctx,
				store: store,
				name:  fmt.Sprintf("watch:%s:%s", primaryPair.Hex(), secondaryPair.Hex()),
			}
		}
	}

	watcher := watch.NewWatcher(watch.Config{
		FromBlock:         cfg.FromBlock,
		ToBlock:           cfg.ToBlock,
		BatchSize:         cfg.BatchSize,
		PrimaryPair:       primaryPair,
		SecondaryPair:     secondaryPair,
		BaseToken:         baseToken,
		ProbeAmount:       probe,
		CheckpointPath:    cfg.Checkpoint,
		CheckpointEnabled: cfg.CheckpointEnabled,
		Checkpointer:      checkpointer,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
	}, chainClient, sink, logger)

	logger.Info("watch start",
		zap.String("rpc", cfg.RPCURL),
		zap.Stringer("primary_pair", primaryPair),
		zap.Stringer("secondary_pair", secondaryPair),
		zap.Stringer("base_token", baseToken),
		zap.String("probe_amount", probe.String()),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Uint64("batch_size", cfg.BatchSize),
	)

	return watcher.Run(ctx)
}

// pgCheckpoint keeps the resume point in the same database as the
// opportunity records so a re-run against Postgres needs no local file.
type pgCheckpoint struct {
	ctx   context.Context
	store *postgres.Store
	name  string
}

func (c *pgCheckpoint) Load() (watch.Checkpoint, bool, error) {
	block, ok, err := c.store.LoadState(c.ctx, c.name)
	if err != nil || !ok {
		return watch.Checkpoint{}, false, err
	}
	return watch.Checkpoint{LastProcessedBlock: block}, true, nil
}

func (c *pgCheckpoint) Save(lastProcessed uint64) error {
	return c.store.SaveState(c.ctx, c.name, lastProcessed)
}

func parseAddress(name, value string) (common.Address, error) {
	if value == "" {
		return common.Address{}, fmt.Errorf("%s is required", name)
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("invalid %s: %s", name, value)
	}
	return common.HexToAddress(value), nil
}
