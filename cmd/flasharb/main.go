package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "flasharb",
		Short:        "Flash-swap arbitrage settlement tools",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run one settlement attempt against in-memory markets",
		RunE:  runSimulate,
	}

	simulateCmd.Flags().String("primary-factory", "", "primary market factory address (synthetic default)")
	simulateCmd.Flags().String("primary-reserve-token", "", "primary pool token reserve")
	simulateCmd.Flags().String("primary-reserve-base", "", "primary pool base reserve")
	simulateCmd.Flags().String("secondary-reserve-token", "", "secondary pool token reserve")
	simulateCmd.Flags().String("secondary-reserve-base", "", "secondary pool base reserve")
	simulateCmd.Flags().String("borrow-amount", "", "amount borrowed from the primary pool")
	simulateCmd.Flags().Bool("borrow-base", false, "borrow the base leg instead of the token leg")
	simulateCmd.Flags().String("floor", "0", "minimum acceptable secondary-market output")
	simulateCmd.Flags().String("out", "./data/settlements.jsonl", "output JSONL path")
	simulateCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for attempt records")
	simulateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(simulateCmd)

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch two pairs and record would-be settlement outcomes",
		RunE:  runWatch,
	}

	watchCmd.Flags().String("rpc", "", "RPC URL")
	watchCmd.Flags().String("primary-pair", "", "primary pair address")
	watchCmd.Flags().String("secondary-pair", "", "secondary pair address")
	watchCmd.Flags().String("base-token", "", "wrapped base asset address")
	watchCmd.Flags().String("probe-amount", "", "hypothetical borrow amount of the traded token")
	watchCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	watchCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	watchCmd.Flags().Uint64("batch-size", 2000, "blocks per batch")
	watchCmd.Flags().String("out", "./data/opportunities.jsonl", "output JSONL path")
	watchCmd.Flags().String("pg-dsn", "", "optional Postgres DSN, used instead of JSONL")
	watchCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	watchCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	watchCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	watchCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	watchCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(watchCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
