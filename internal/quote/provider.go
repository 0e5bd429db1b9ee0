// Package quote sources observed option prices and turns them into
// implied volatilities.
//
// Providers can be chained: when a provider cannot answer it delegates to
// its secondary, if one is configured.
package quote

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/contactkeval/option-greeks/pkg/pricing"
)

// Provider supplies option quotes.
type Provider interface {
	Secondary() Provider
	GetQuote(ctx context.Context, underlying string, expiry time.Time, kind pricing.Kind, strike float64) (Quote, error)
}

// Quote is an observed option price together with the underlying price at
// the same moment.
type Quote struct {
	Ticker     string       `json:"ticker"`
	Underlying string       `json:"underlying"`
	Kind       pricing.Kind `json:"type"`
	Strike     float64      `json:"strike"`
	Expiry     time.Time    `json:"expiry"`
	Stock      float64      `json:"stock"`
	Price      float64      `json:"price"`
	AsOf       time.Time    `json:"as_of"`
	Source     string       `json:"source"`
}

const yearDays = 365.0

// Maturity returns the time to expiry in years (ACT/365), floored at 0.
// Expiries are taken as end of the expiry date's trading session, 16:00
// New York time.
func (q Quote) Maturity() float64 {
	exp := sessionClose(q.Expiry)
	d := exp.Sub(q.AsOf)
	if d <= 0 {
		return 0
	}
	return d.Hours() / 24 / yearDays
}

func sessionClose(d time.Time) time.Time {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	y, m, day := d.Date()
	return time.Date(y, m, day, 16, 0, 0, 0, loc)
}

// Result is the outcome of solving a quote for its implied volatility.
type Result struct {
	Quote             Quote          `json:"quote"`
	Rate              float64        `json:"rate"`
	Maturity          float64        `json:"maturity"`
	ImpliedVolatility float64        `json:"implied_volatility"`
	Iterations        int            `json:"iterations"`
	Greeks            pricing.Bundle `json:"greeks"`
}

// Solve computes the implied volatility of q and the greeks at that
// volatility.
func Solve(q Quote, rate float64, solver pricing.Solver) (Result, error) {
	tau := q.Maturity()
	in := pricing.FromRate(q.Stock, q.Strike, rate, 0, tau)

	sol, err := solver.ImpliedVol(q.Kind, q.Price, in, 0)
	if err != nil {
		return Result{}, fmt.Errorf("solving %s: %w", q.Ticker, err)
	}

	return Result{
		Quote:             q,
		Rate:              rate,
		Maturity:          tau,
		ImpliedVolatility: sol.Sigma,
		Iterations:        sol.Iterations,
		Greeks:            pricing.Evaluate(q.Kind, pricing.FromRate(q.Stock, q.Strike, rate, sol.Sigma, tau)),
	}, nil
}

// OptionTicker formats an OCC-style option ticker as used by Massive:
// O:<root><YYMMDD><C|P><strike*1000 padded to 8 digits>.
func OptionTicker(underlying string, expiry time.Time, kind pricing.Kind, strike float64) string {
	right := "C"
	if kind == pricing.PutOption {
		right = "P"
	}
	return fmt.Sprintf("O:%s%s%s%08d",
		strings.ToUpper(underlying),
		expiry.Format("060102"),
		right,
		int(math.Round(strike*1000)))
}
