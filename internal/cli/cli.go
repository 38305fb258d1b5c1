package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/vk/cartchain/internal/app"
	"github.com/vk/cartchain/internal/cart"
)

// Environment variables that provide defaults for the matching flags.
const (
	EnvLogLevel        = "CARTCHAIN_LOG_LEVEL"
	EnvLogFormat       = "CARTCHAIN_LOG_FORMAT"
	EnvHealthcheckPort = "CARTCHAIN_HEALTHCHECK_PORT"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments using the process environment for
// defaults. See ParseWithEnv.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	return ParseWithEnv(args, output, os.Getenv)
}

// ParseWithEnv processes command-line arguments. It returns a populated
// app.Config, a boolean indicating if the program should exit cleanly, or an
// ExitError.
func ParseWithEnv(args []string, output io.Writer, getenv func(string) string) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("cartchain", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
cartchain - runs a declarative chain of cart steps and commits the result
only when every step continues.

Usage:
  cartchain [options] [CHAIN_PATH...]

Arguments:
  CHAIN_PATH
    Path to a .hcl/.yaml file or a directory containing chain files.

Options:
`)
		flagSet.PrintDefaults()
	}

	defaultPort, err := envInt(getenv, EnvHealthcheckPort)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	chainsFlag := flagSet.String("chains", "", "Comma-separated chain files or directories.")
	cFlag := flagSet.String("c", "", "Comma-separated chain files or directories (shorthand).")
	nameFlag := flagSet.String("name", "", "Name of the chain to run. Optional when only one chain is defined.")
	totalFlag := flagSet.Int64("total", cart.DefaultTotal, "Total price of the mock cart, in cents.")
	latencyFlag := flagSet.Duration("store-latency", 0, "Simulated latency of every in-memory cart backend call.")
	storeFlag := flagSet.String("store", "", "SQLite database keeping the cart between runs. Empty keeps it in memory.")
	outputFlag := flagSet.String("output", app.OutputText, "Report format. Options: 'text' or 'json'.")
	healthPortFlag := flagSet.Int("healthcheck-port", defaultPort, "Port for the HTTP health check and metrics server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", envOr(getenv, EnvLogFormat, "text"), "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", envOr(getenv, EnvLogLevel, "info"), "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	var paths []string
	paths = append(paths, splitList(*chainsFlag)...)
	paths = append(paths, splitList(*cFlag)...)
	paths = append(paths, flagSet.Args()...)
	slog.Debug("Chain paths determined.", "paths", paths)

	if len(paths) == 0 {
		slog.Debug("No chain path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ChainPaths:      paths,
		ChainName:       *nameFlag,
		InitialTotal:    *totalFlag,
		StoreLatency:    *latencyFlag,
		StorePath:       *storeFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		HealthcheckPort: *healthPortFlag,
		OutputFormat:    strings.ToLower(*outputFlag),
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

func envOr(getenv func(string) string, key, fallback string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(getenv func(string) string, key string) (int, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q is not a number", key, v)
	}
	return n, nil
}

// splitList splits a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
