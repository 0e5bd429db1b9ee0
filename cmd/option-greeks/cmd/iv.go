package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contactkeval/option-greeks/internal/logger"
	"github.com/contactkeval/option-greeks/internal/report"
	"github.com/contactkeval/option-greeks/pkg/pricing"
)

var (
	optPrice float64
	guess    float64
)

var ivCmd = &cobra.Command{
	Use:   "iv",
	Short: "Solve for the implied volatility of an option price",
	Long: `Finds the volatility at which the Black-Scholes price matches --price.
On failure the best estimate reached is reported and the exit code is
non-zero.

Examples:
  option-greeks iv --type call --price 0.9849 --stock 5 --strike 4.5 --rate 0.05 --maturity 1
  option-greeks iv --type put --price 2.1 --stock 100 --strike 95 --maturity 0.25 --guess 0.4`,
	Args: cobra.NoArgs,
	RunE: runIV,
}

func init() {
	rootCmd.AddCommand(ivCmd)

	addContractFlags(ivCmd)
	ivCmd.Flags().Float64Var(&optPrice, "price", 0, "observed option price")
	ivCmd.Flags().Float64Var(&guess, "guess", 0, "initial volatility (0 = closed-form approximation)")
	_ = ivCmd.MarkFlagRequired("price")
}

func runIV(cmd *cobra.Command, args []string) error {
	kind, err := pricing.ParseKind(optType)
	if err != nil {
		return err
	}

	solver := cfg.Solver.Solver()
	in := pricing.FromRate(stock, strike, rate, 0, maturity)
	sol, err := solver.ImpliedVol(kind, optPrice, in, guess)
	if err != nil {
		var ivErr *pricing.IVError
		if errors.As(err, &ivErr) {
			logger.Infof("best estimate %g after %d iterations", ivErr.Best, ivErr.Iterations)
		}
		return fmt.Errorf("implied volatility: %w", err)
	}
	logger.Debugf("converged to %g in %d iterations", sol.Sigma, sol.Iterations)

	b := pricing.Evaluate(kind, pricing.FromRate(stock, strike, rate, sol.Sigma, maturity))
	row := report.NewRow("", kind, "iv", b, cfg.Report.Decimals)
	row.SetImpliedVolatility(sol.Sigma, cfg.Report.Decimals)
	row.Iterations = sol.Iterations
	return printJSON(cmd.OutOrStdout(), row)
}
