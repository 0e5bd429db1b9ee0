package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/contactkeval/option-greeks/internal/config"
	"github.com/contactkeval/option-greeks/internal/logger"
)

var (
	cfgFile string
	verbose bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "option-greeks",
	Short: "Black-Scholes prices, greeks and implied volatility",
	Long: `option-greeks prices European options under Black-Scholes, computes
their greeks and inverts market prices to implied volatility.

Commands:
  price  - price and greeks of one option
  iv     - implied volatility of one option price
  batch  - evaluate a CSV of options
  quote  - fetch an option snapshot and solve its implied volatility
  serve  - run the HTTP pricing service`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
	PersistentPostRun: func(*cobra.Command, []string) { logger.Sync() },
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./option-greeks.{yaml,toml,json})")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func loadConfig(*cobra.Command, []string) error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = c

	verbosity := cfg.Log.Verbosity
	if verbose && verbosity < int(logger.Debug) {
		verbosity = int(logger.Debug)
	}
	logger.SetVerbosity(verbosity)
	logger.Debugf("config: solver tolerance=%g max_iterations=%d", cfg.Solver.Tolerance, cfg.Solver.MaxIterations)
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}
