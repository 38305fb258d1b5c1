package app

import (
	"errors"
	"fmt"
	"time"
)

// Output formats of the final report.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ChainPaths []string // .hcl, .yaml and .yml files or directories
	ChainName  string   // may be empty when exactly one chain is defined

	InitialTotal int64 // total of the mock cart, in cents
	StoreLatency time.Duration
	StorePath    string // SQLite database; empty keeps the cart in memory

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	OutputFormat    string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.ChainPaths) == 0 {
		return nil, errors.New("at least one chain path is required")
	}
	if cfg.InitialTotal < 0 {
		return nil, fmt.Errorf("initial total must not be negative, got %d", cfg.InitialTotal)
	}
	if cfg.StorePath != "" && cfg.StoreLatency > 0 {
		return nil, errors.New("store latency only applies to the in-memory store")
	}
	if cfg.StoreLatency < 0 {
		return nil, fmt.Errorf("store latency must not be negative, got %s", cfg.StoreLatency)
	}
	switch cfg.OutputFormat {
	case "":
		cfg.OutputFormat = OutputText
	case OutputText, OutputJSON:
	default:
		return nil, fmt.Errorf("invalid output format '%s': must be '%s' or '%s'", cfg.OutputFormat, OutputText, OutputJSON)
	}
	return &cfg, nil
}
