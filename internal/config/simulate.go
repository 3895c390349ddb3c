package config

import "github.com/spf13/pflag"

// SimulateConfig holds configuration for the simulate command. Reserve and
// amount values are decimal strings in the asset's smallest unit.
type SimulateConfig struct {
	PrimaryFactory        string
	PrimaryReserveToken   string
	PrimaryReserveBase    string
	SecondaryReserveToken string
	SecondaryReserveBase  string
	BorrowAmount          string
	BorrowBase            bool
	SlippageFloor         string
	Out                   string
	PGDSN                 string
	LogLevel              string
}

// LoadSimulate merges config file, environment variables, and flags into
// SimulateConfig.
func LoadSimulate(cfgFile string, flags *pflag.FlagSet) (SimulateConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return SimulateConfig{}, err
	}

	v.SetDefault("out", "./data/settlements.jsonl")
	v.SetDefault("log-level", "info")

	cfg := SimulateConfig{
		PrimaryFactory:        v.GetString("primary-factory"),
		PrimaryReserveToken:   v.GetString("primary-reserve-token"),
		PrimaryReserveBase:    v.GetString("primary-reserve-base"),
		SecondaryReserveToken: v.GetString("secondary-reserve-token"),
		SecondaryReserveBase:  v.GetString("secondary-reserve-base"),
		BorrowAmount:          v.GetString("borrow-amount"),
		BorrowBase:            v.GetBool("borrow-base"),
		SlippageFloor:         v.GetString("floor"),
		Out:                   v.GetString("out"),
		PGDSN:                 v.GetString("pg-dsn"),
		LogLevel:              v.GetString("log-level"),
	}

	return cfg, nil
}
