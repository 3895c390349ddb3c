package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flashArb/internal/arb"
	"flashArb/internal/config"
	"flashArb/internal/memvenue"
	"flashArb/internal/model"
	"flashArb/internal/storage"
	"flashArb/internal/storage/postgres"
	"flashArb/internal/univ2"
)

// Synthetic identities for the in-memory world.
var (
	simExecutor      = common.HexToAddress("0x1000000000000000000000000000000000000001")
	simInitiator     = common.HexToAddress("0x1000000000000000000000000000000000000002")
	simRouter        = common.HexToAddress("0x1000000000000000000000000000000000000003")
	simToken         = common.HexToAddress("0x1000000000000000000000000000000000000004")
	simBase          = common.HexToAddress("0x1000000000000000000000000000000000000005")
	simFactory       = common.HexToAddress("0x1000000000000000000000000000000000000006")
	simSecondaryPair = common.HexToAddress("0x1000000000000000000000000000000000000007")
)

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSimulate(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	primaryReserveToken, err := parseAmount("primary-reserve-token", cfg.PrimaryReserveToken)
	if err != nil {
		return err
	}
	primaryReserveBase, err := parseAmount("primary-reserve-base", cfg.PrimaryReserveBase)
	if err != nil {
		return err
	}
	secondaryReserveToken, err := parseAmount("secondary-reserve-token", cfg.SecondaryReserveToken)
	if err != nil {
		return err
	}
	secondaryReserveBase, err := parseAmount("secondary-reserve-base", cfg.SecondaryReserveBase)
	if err != nil {
		return err
	}
	borrowAmount, err := parseAmount("borrow-amount", cfg.BorrowAmount)
	if err != nil {
		return err
	}
	floor, err := parseAmount("floor", cfg.SlippageFloor)
	if err != nil {
		return err
	}

	factory := simFactory
	if cfg.PrimaryFactory != "" {
		if !common.IsHexAddress(cfg.PrimaryFactory) {
			return fmt.Errorf("invalid primary factory: %s", cfg.PrimaryFactory)
		}
		factory = common.HexToAddress(cfg.PrimaryFactory)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	venue := memvenue.New(simExecutor, simRouter, simBase)

	primaryPair, err := univ2.PairFor(factory, univ2.DefaultInitCodeHash, simToken, simBase)
	if err != nil {
		return fmt.Errorf("derive primary pair: %w", err)
	}
	venue.AddPool(primaryPair, simToken, primaryReserveToken, primaryReserveBase)
	venue.AddPool(simSecondaryPair, simToken, secondaryReserveToken, secondaryReserveBase)

	oracle := univ2.NewOracle(univ2.DefaultInitCodeHash, venue)
	engine, err := arb.NewEngine(arb.Config{
		PrimaryFactory:  factory,
		SecondaryRouter: simRouter,
		BaseToken:       simBase,
	}, oracle, venue.Router(simSecondaryPair), venue.Wrapper(), venue.Assets(), logger)
	if err != nil {
		return err
	}

	borrowed := simToken
	if cfg.BorrowBase {
		borrowed = simBase
	}

	ev, err := buildBorrowEvent(primaryPair, borrowed, borrowAmount, floor)
	if err != nil {
		return err
	}

	var result arb.SettlementResult
	attemptErr := venue.Atomically(func() error {
		if err := venue.Borrow(primaryPair, borrowed, borrowAmount); err != nil {
			return fmt.Errorf("issue borrow: %w", err)
		}
		var err error
		result, err = engine.OnBorrowCallback(ctx, ev)
		return err
	})

	rec := model.SettlementRecord{
		Pair:       primaryPair.Hex(),
		Initiator:  simInitiator.Hex(),
		Borrowed:   borrowAmount.String(),
		Status:     model.StatusSettled,
		ObservedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if attemptErr != nil {
		rec.Status = model.StatusAborted
		rec.Reason = attemptErr.Error()
		logger.Warn("attempt aborted", zap.Error(attemptErr))
	} else {
		rec.Direction = result.Direction.String()
		rec.Received = result.Received.String()
		rec.Required = result.Required.String()
		rec.Surplus = result.Surplus.String()
		logger.Info("attempt settled",
			zap.String("received", rec.Received),
			zap.String("required", rec.Required),
			zap.String("surplus", rec.Surplus),
		)
	}

	var sink storage.SettlementSink = storage.NewJsonlStorage(cfg.Out)
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		sink = store
	}
	if err := sink.PutSettlement(rec); err != nil {
		return fmt.Errorf("store settlement: %w", err)
	}

	return nil
}

// buildBorrowEvent places the borrowed amount on the leg the pair itself
// would report it on: amounts follow the pair's sorted token order.
func buildBorrowEvent(pair, borrowed common.Address, amount, floor *big.Int) (arb.BorrowEvent, error) {
	token0, token1, err := univ2.SortTokens(simToken, simBase)
	if err != nil {
		return arb.BorrowEvent{}, err
	}

	payload, err := arb.EncodeSlippageFloor(floor)
	if err != nil {
		return arb.BorrowEvent{}, err
	}

	ev := arb.BorrowEvent{
		Caller:    pair,
		Initiator: simInitiator,
		Token0:    token0,
		Token1:    token1,
		Amount0:   new(big.Int),
		Amount1:   new(big.Int),
		Payload:   payload,
	}
	if borrowed == token0 {
		ev.Amount0 = amount
	} else {
		ev.Amount1 = amount
	}

	return ev, nil
}

func parseAmount(name, value string) (*big.Int, error) {
	if value == "" {
		return nil, fmt.Errorf("%s is required", name)
	}
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("invalid %s: %s", name, value)
	}
	return amount, nil
}
