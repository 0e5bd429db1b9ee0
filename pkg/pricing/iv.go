package pricing

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrPriceOutOfRange means no volatility reproduces the price: it is at
	// or below the discounted intrinsic value, or at or above the upper
	// no-arbitrage bound (S for calls, K·Df for puts).
	ErrPriceOutOfRange = errors.New("price outside the achievable range")

	// ErrZeroMaturity means the option has expired and its price no longer
	// depends on volatility.
	ErrZeroMaturity = errors.New("zero maturity")

	// ErrNoConvergence means the iteration budget ran out, or the bracket
	// collapsed, before the price error fell within tolerance.
	ErrNoConvergence = errors.New("implied volatility did not converge")
)

// IVError reports a failed implied volatility search together with the
// best estimate reached, so callers can decide whether it is usable.
type IVError struct {
	Reason     error
	Best       float64 // sigma with the smallest price error seen
	Low, High  float64 // final bracket; High is +Inf if never bounded
	Iterations int
}

func (e *IVError) Error() string {
	return fmt.Sprintf("%v: best=%g bracket=[%g, %g] iterations=%d",
		e.Reason, e.Best, e.Low, e.High, e.Iterations)
}

func (e *IVError) Unwrap() error { return e.Reason }

// Solution is a converged implied volatility.
type Solution struct {
	Sigma      float64
	Iterations int
}

// Solver inverts option prices to implied volatility with Newton steps on
// vega, falling back to bisection inside a bracket maintained from the
// monotonicity of price in sigma.
type Solver struct {
	Tolerance     float64 // absolute price error accepted as converged
	MaxIterations int
}

// DefaultSolver is used by the package-level IV functions.
var DefaultSolver = Solver{Tolerance: 1e-10, MaxIterations: 100}

const (
	fallbackGuess = 0.3
	minVega       = 1e-12
)

// ImpliedVol finds sigma such that the model price of kind on in matches
// price. in.Sigma and in.TotalVol are ignored. A guess <= 0 selects the
// Corrado-Miller approximation.
func (s Solver) ImpliedVol(kind Kind, price float64, in Inputs, guess float64) (Solution, error) {
	if !(in.Maturity > 0) {
		return Solution{}, &IVError{Reason: ErrZeroMaturity, High: math.Inf(1)}
	}

	lower, upper := priceBounds(kind, in)
	switch {
	case !(price > lower):
		return Solution{}, &IVError{Reason: ErrPriceOutOfRange, High: math.Inf(1)}
	case !(price < upper):
		return Solution{}, &IVError{Reason: ErrPriceOutOfRange, Best: math.Inf(1), High: math.Inf(1)}
	}

	if !(guess > 0) || math.IsInf(guess, 0) {
		guess = approximateVol(kind, price, in)
	}

	var (
		sqrtT     = math.Sqrt(in.Maturity)
		lo, hi    = 0.0, math.Inf(1)
		sigma     = guess
		best      = guess
		bestErr   = math.Inf(1)
		priceFn   = callPrice
		maxIter   = s.MaxIterations
		tolerance = s.Tolerance
	)
	if kind == PutOption {
		priceFn = putPrice
	}

	for i := 1; i <= maxIter; i++ {
		in.Sigma = sigma
		in.TotalVol = sigma * sqrtT
		t, ok := in.Terms()
		diff := priceFn(in, t, ok) - price
		v := vega(in, t, ok)

		if math.Abs(diff) < bestErr {
			best, bestErr = sigma, math.Abs(diff)
		}
		if math.Abs(diff) <= tolerance {
			return Solution{Sigma: sigma, Iterations: i}, nil
		}

		if diff > 0 {
			hi = sigma
		} else {
			lo = sigma
		}
		if !math.IsInf(hi, 1) && hi-lo <= 4*(math.Nextafter(hi, math.Inf(1))-hi) {
			return Solution{}, &IVError{Reason: ErrNoConvergence, Best: best, Low: lo, High: hi, Iterations: i}
		}

		next := sigma - diff/v
		if v < minVega || !(next > lo && next < hi) {
			if math.IsInf(hi, 1) {
				next = 2 * sigma
			} else {
				next = 0.5 * (lo + hi)
			}
		}
		sigma = next
	}

	return Solution{}, &IVError{Reason: ErrNoConvergence, Best: best, Low: lo, High: hi, Iterations: maxIter}
}

// priceBounds returns the open interval of prices reachable for sigma in
// (0, ∞).
func priceBounds(kind Kind, in Inputs) (lower, upper float64) {
	fwd := in.forwardStrike()
	if kind == PutOption {
		return math.Max(fwd-in.Stock, 0), fwd
	}
	return math.Max(in.Stock-fwd, 0), in.Stock
}

// approximateVol is the Corrado-Miller (1996) closed-form guess. Put prices
// are first converted to the matching call price through parity.
func approximateVol(kind Kind, price float64, in Inputs) float64 {
	fwd := in.forwardStrike()
	if kind == PutOption {
		price += in.Stock - fwd
	}
	moneyness := in.Stock - fwd
	c1 := price - 0.5*moneyness
	bridge := c1*c1 - moneyness*moneyness/math.Pi
	var m float64
	if bridge > 0 {
		m = math.Sqrt(bridge)
	}
	guess := sqrt2Pi / (in.Stock + fwd) * (c1 + m) / math.Sqrt(in.Maturity)
	if !(guess > 0) || math.IsInf(guess, 0) {
		return fallbackGuess
	}
	return guess
}

// ---------------------------------------------------------------------
// Package-level entry points on DefaultSolver
// ---------------------------------------------------------------------

// CallIV returns the implied volatility of a call trading at price. On
// failure the returned value is the best estimate and err is an *IVError.
func CallIV(price, stock, strike, rate, maturity float64) (float64, error) {
	return DefaultSolver.CallIVGuess(price, stock, strike, rate, maturity, 0)
}

// PutIV is CallIV for puts.
func PutIV(price, stock, strike, rate, maturity float64) (float64, error) {
	return DefaultSolver.PutIVGuess(price, stock, strike, rate, maturity, 0)
}

// CallIVGuess is CallIV starting from initialGuess.
func CallIVGuess(price, stock, strike, rate, maturity, initialGuess float64) (float64, error) {
	return DefaultSolver.CallIVGuess(price, stock, strike, rate, maturity, initialGuess)
}

// PutIVGuess is PutIV starting from initialGuess.
func PutIVGuess(price, stock, strike, rate, maturity, initialGuess float64) (float64, error) {
	return DefaultSolver.PutIVGuess(price, stock, strike, rate, maturity, initialGuess)
}

// CallIVDiscount is CallIV with a discount factor in place of the rate.
func CallIVDiscount(price, stock, strike, discount, maturity float64) (float64, error) {
	return DefaultSolver.CallIVDiscount(price, stock, strike, discount, maturity)
}

// PutIVDiscount is PutIV with a discount factor in place of the rate.
func PutIVDiscount(price, stock, strike, discount, maturity float64) (float64, error) {
	return DefaultSolver.PutIVDiscount(price, stock, strike, discount, maturity)
}

func (s Solver) CallIVGuess(price, stock, strike, rate, maturity, initialGuess float64) (float64, error) {
	return unwrap(s.ImpliedVol(CallOption, price, FromRate(stock, strike, rate, 0, maturity), initialGuess))
}

func (s Solver) PutIVGuess(price, stock, strike, rate, maturity, initialGuess float64) (float64, error) {
	return unwrap(s.ImpliedVol(PutOption, price, FromRate(stock, strike, rate, 0, maturity), initialGuess))
}

func (s Solver) CallIVDiscount(price, stock, strike, discount, maturity float64) (float64, error) {
	return unwrap(s.ImpliedVol(CallOption, price, FromDiscount(stock, strike, discount, 0, maturity), 0))
}

func (s Solver) PutIVDiscount(price, stock, strike, discount, maturity float64) (float64, error) {
	return unwrap(s.ImpliedVol(PutOption, price, FromDiscount(stock, strike, discount, 0, maturity), 0))
}

func unwrap(sol Solution, err error) (float64, error) {
	var ivErr *IVError
	if errors.As(err, &ivErr) {
		return ivErr.Best, err
	}
	return sol.Sigma, err
}
