package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/contactkeval/option-greeks/internal/batch"
	"github.com/contactkeval/option-greeks/internal/logger"
	"github.com/contactkeval/option-greeks/internal/report"
)

var (
	batchIn      string
	batchOut     string
	batchJSONDir string
	batchWorkers int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Evaluate a CSV of options",
	Long: `Reads rows with the columns id,type,mode,stock,strike,rate,sigma,maturity,price
and writes one result row per input row. Mode "price" (the default)
prices the option; mode "iv" solves the price for implied volatility.

Examples:
  option-greeks batch --in options.csv --out results.csv
  option-greeks batch --in options.csv --json ./out --workers 16`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchIn, "in", "i", "", "input CSV file")
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", "-", "output CSV file (- for stdout)")
	batchCmd.Flags().StringVar(&batchJSONDir, "json", "", "also write results.json to this directory")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "concurrent workers (default: batch.workers)")
	_ = batchCmd.MarkFlagRequired("in")
}

func runBatch(cmd *cobra.Command, args []string) error {
	in, err := os.Open(batchIn)
	if err != nil {
		return err
	}
	defer in.Close()

	var out io.Writer = cmd.OutOrStdout()
	if batchOut != "-" {
		f, err := os.Create(batchOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	workers := cfg.Batch.Workers
	if batchWorkers > 0 {
		workers = batchWorkers
	}
	eval := batch.Evaluator{
		Solver:   cfg.Solver.Solver(),
		Workers:  workers,
		Decimals: cfg.Report.Decimals,
	}

	rows, err := eval.Process(cmd.Context(), in, out)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range rows {
		if r.Error != "" {
			failed++
		}
	}
	logger.Infof("batch: %d rows evaluated, %d failed", len(rows), failed)

	if batchJSONDir != "" {
		if err := os.MkdirAll(batchJSONDir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", batchJSONDir, err)
		}
		if err := report.WriteJSON(rows, batchJSONDir); err != nil {
			return fmt.Errorf("writing json report: %w", err)
		}
	}
	return nil
}
