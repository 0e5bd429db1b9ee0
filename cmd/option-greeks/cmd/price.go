package cmd

import (
	"github.com/spf13/cobra"

	"github.com/contactkeval/option-greeks/internal/report"
	"github.com/contactkeval/option-greeks/pkg/pricing"
)

var (
	optType  string
	stock    float64
	strike   float64
	rate     float64
	sigma    float64
	maturity float64
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Price an option and compute its greeks",
	Long: `Prints the price, delta, gamma, theta, vega and rho of one option as
JSON, rounded to report.decimals.

Examples:
  option-greeks price --type call --stock 100 --strike 105 --rate 0.03 --sigma 0.2 --maturity 0.5
  option-greeks price --type p --stock 5 --strike 4.5 --rate 0.05 --sigma 0.3 --maturity 1`,
	Args: cobra.NoArgs,
	RunE: runPrice,
}

func init() {
	rootCmd.AddCommand(priceCmd)

	addContractFlags(priceCmd)
	priceCmd.Flags().Float64Var(&sigma, "sigma", 0, "volatility per year")
	_ = priceCmd.MarkFlagRequired("sigma")
}

// addContractFlags registers the flags shared by price and iv.
func addContractFlags(c *cobra.Command) {
	c.Flags().StringVarP(&optType, "type", "t", "call", "option type: call or put")
	c.Flags().Float64Var(&stock, "stock", 0, "spot price of the underlying")
	c.Flags().Float64Var(&strike, "strike", 0, "strike price")
	c.Flags().Float64Var(&rate, "rate", 0, "continuously compounded risk-free rate")
	c.Flags().Float64Var(&maturity, "maturity", 0, "time to expiry in years")
	_ = c.MarkFlagRequired("stock")
	_ = c.MarkFlagRequired("strike")
	_ = c.MarkFlagRequired("maturity")
}

func runPrice(cmd *cobra.Command, args []string) error {
	kind, err := pricing.ParseKind(optType)
	if err != nil {
		return err
	}

	b := pricing.Evaluate(kind, pricing.FromRate(stock, strike, rate, sigma, maturity))
	row := report.NewRow("", kind, "price", b, cfg.Report.Decimals)
	return printJSON(cmd.OutOrStdout(), row)
}
