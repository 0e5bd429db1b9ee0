// Package pricing evaluates Black-Scholes prices and greeks for European
// options and inverts observed prices to implied volatilities.
//
// Every formula comes in two flavours:
//   - rate-based: (stock, strike, rate, sigma, maturity)
//   - discount-based: a precomputed discount factor and, where the
//     quantity only depends on it, σ√τ combined by the caller
//
// When several quantities are needed for the same option, CallAll and
// PutAll evaluate d1, d2 and the normal terms once and derive everything
// from them.
//
// The package performs no input validation. Stock and strike must be
// positive, sigma and maturity non-negative.
package pricing

import "math"

// ---------------------------------------------------------------------
// Per-quantity formulas shared by the single and the bundled entry points
// ---------------------------------------------------------------------

func callPrice(in Inputs, t Terms, ok bool) float64 {
	if !ok {
		return math.Max(in.Stock-in.forwardStrike(), 0)
	}
	return in.Stock*t.ND1 - in.forwardStrike()*t.ND2
}

func putPrice(in Inputs, t Terms, ok bool) float64 {
	if !ok {
		return math.Max(in.forwardStrike()-in.Stock, 0)
	}
	return in.forwardStrike()*(1-t.ND2) - in.Stock*(1-t.ND1)
}

func callDelta(in Inputs, t Terms, ok bool) float64 {
	if !ok {
		if in.Stock > in.forwardStrike() {
			return 1
		}
		return 0
	}
	return t.ND1
}

func putDelta(in Inputs, t Terms, ok bool) float64 {
	if !ok {
		if in.forwardStrike() > in.Stock {
			return -1
		}
		return 0
	}
	return t.ND1 - 1
}

func gamma(in Inputs, t Terms, ok bool) float64 {
	if !ok {
		return 0
	}
	return t.PhiD1 / (in.Stock * in.TotalVol)
}

func vega(in Inputs, t Terms, ok bool) float64 {
	if !ok {
		return 0
	}
	return in.Stock * t.PhiD1 * math.Sqrt(in.Maturity)
}

// decay is the volatility part of theta, common to calls and puts.
func decay(in Inputs, t Terms) float64 {
	return -in.Stock * t.PhiD1 * in.Sigma / (2 * math.Sqrt(in.Maturity))
}

func callTheta(in Inputs, t Terms, ok bool) float64 {
	if !ok {
		return 0
	}
	return decay(in, t) - in.Rate*in.forwardStrike()*t.ND2
}

func putTheta(in Inputs, t Terms, ok bool) float64 {
	if !ok {
		return 0
	}
	return decay(in, t) + in.Rate*in.forwardStrike()*(1-t.ND2)
}

func callRho(in Inputs, t Terms, ok bool) float64 {
	if !ok {
		if in.Stock > in.forwardStrike() {
			return in.Maturity * in.forwardStrike()
		}
		return 0
	}
	return in.Maturity * in.forwardStrike() * t.ND2
}

func putRho(in Inputs, t Terms, ok bool) float64 {
	if !ok {
		if in.forwardStrike() > in.Stock {
			return -in.Maturity * in.forwardStrike()
		}
		return 0
	}
	return -in.Maturity * in.forwardStrike() * (1 - t.ND2)
}

// eval builds the terms for in and applies f to them.
func eval(in Inputs, f func(Inputs, Terms, bool) float64) float64 {
	t, ok := in.Terms()
	return f(in, t, ok)
}

// ---------------------------------------------------------------------
// Prices
// ---------------------------------------------------------------------

// CallPrice returns the Black-Scholes call price with the discount factor
// and σ√τ already computed.
//
// With sqrtMaturitySigma == 0 the price collapses to the discounted
// intrinsic value max(S - K·Df, 0).
func CallPrice(stock, strike, discount, sqrtMaturitySigma float64) float64 {
	return eval(fromTotalVol(stock, strike, discount, sqrtMaturitySigma), callPrice)
}

// Call returns the Black-Scholes call price.
//
// Example:
//
//	Call(5.0, 4.5, 0.05, 0.3, 1.0) // 0.9848721043419868
func Call(stock, strike, rate, sigma, maturity float64) float64 {
	return eval(FromRate(stock, strike, rate, sigma, maturity), callPrice)
}

// PutPrice returns the Black-Scholes put price with the discount factor
// and σ√τ already computed.
func PutPrice(stock, strike, discount, sqrtMaturitySigma float64) float64 {
	return eval(fromTotalVol(stock, strike, discount, sqrtMaturitySigma), putPrice)
}

// Put returns the Black-Scholes put price.
func Put(stock, strike, rate, sigma, maturity float64) float64 {
	return eval(FromRate(stock, strike, rate, sigma, maturity), putPrice)
}

// ---------------------------------------------------------------------
// Delta
// ---------------------------------------------------------------------

// CallDelta returns ∂call/∂stock.
func CallDelta(stock, strike, rate, sigma, maturity float64) float64 {
	return eval(FromRate(stock, strike, rate, sigma, maturity), callDelta)
}

// CallDeltaDiscount is CallDelta with a discount factor and σ√τ.
func CallDeltaDiscount(stock, strike, discount, sqrtMaturitySigma float64) float64 {
	return eval(fromTotalVol(stock, strike, discount, sqrtMaturitySigma), callDelta)
}

// PutDelta returns ∂put/∂stock.
func PutDelta(stock, strike, rate, sigma, maturity float64) float64 {
	return eval(FromRate(stock, strike, rate, sigma, maturity), putDelta)
}

// PutDeltaDiscount is PutDelta with a discount factor and σ√τ.
func PutDeltaDiscount(stock, strike, discount, sqrtMaturitySigma float64) float64 {
	return eval(fromTotalVol(stock, strike, discount, sqrtMaturitySigma), putDelta)
}

// ---------------------------------------------------------------------
// Gamma and vega (identical for calls and puts)
// ---------------------------------------------------------------------

// Gamma returns ∂²price/∂stock². It is 0 when σ√τ is 0.
func Gamma(stock, strike, rate, sigma, maturity float64) float64 {
	return eval(FromRate(stock, strike, rate, sigma, maturity), gamma)
}

// GammaDiscount is Gamma with a discount factor and σ√τ.
func GammaDiscount(stock, strike, discount, sqrtMaturitySigma float64) float64 {
	return eval(fromTotalVol(stock, strike, discount, sqrtMaturitySigma), gamma)
}

// CallGamma is Gamma.
func CallGamma(stock, strike, rate, sigma, maturity float64) float64 {
	return Gamma(stock, strike, rate, sigma, maturity)
}

// PutGamma is Gamma.
func PutGamma(stock, strike, rate, sigma, maturity float64) float64 {
	return Gamma(stock, strike, rate, sigma, maturity)
}

// Vega returns ∂price/∂sigma per unit of volatility (not per 1%).
func Vega(stock, strike, rate, sigma, maturity float64) float64 {
	return eval(FromRate(stock, strike, rate, sigma, maturity), vega)
}

// VegaDiscount is Vega with a discount factor in place of the rate.
func VegaDiscount(stock, strike, discount, sigma, maturity float64) float64 {
	return eval(FromDiscount(stock, strike, discount, sigma, maturity), vega)
}

// CallVega is Vega.
func CallVega(stock, strike, rate, sigma, maturity float64) float64 {
	return Vega(stock, strike, rate, sigma, maturity)
}

// PutVega is Vega.
func PutVega(stock, strike, rate, sigma, maturity float64) float64 {
	return Vega(stock, strike, rate, sigma, maturity)
}

// ---------------------------------------------------------------------
// Theta
// ---------------------------------------------------------------------

// CallTheta returns the call's time decay per year, -∂price/∂maturity.
func CallTheta(stock, strike, rate, sigma, maturity float64) float64 {
	return eval(FromRate(stock, strike, rate, sigma, maturity), callTheta)
}

// CallThetaDiscount is CallTheta with a discount factor; the rate is
// recovered as -ln(discount)/maturity.
func CallThetaDiscount(stock, strike, discount, sigma, maturity float64) float64 {
	return eval(FromDiscount(stock, strike, discount, sigma, maturity), callTheta)
}

// PutTheta returns the put's time decay per year.
func PutTheta(stock, strike, rate, sigma, maturity float64) float64 {
	return eval(FromRate(stock, strike, rate, sigma, maturity), putTheta)
}

// PutThetaDiscount is PutTheta with a discount factor.
func PutThetaDiscount(stock, strike, discount, sigma, maturity float64) float64 {
	return eval(FromDiscount(stock, strike, discount, sigma, maturity), putTheta)
}

// ---------------------------------------------------------------------
// Rho
// ---------------------------------------------------------------------

// CallRho returns ∂call/∂rate.
func CallRho(stock, strike, rate, sigma, maturity float64) float64 {
	return eval(FromRate(stock, strike, rate, sigma, maturity), callRho)
}

// CallRhoDiscount is CallRho with a discount factor.
func CallRhoDiscount(stock, strike, discount, sigma, maturity float64) float64 {
	return eval(FromDiscount(stock, strike, discount, sigma, maturity), callRho)
}

// PutRho returns ∂put/∂rate.
func PutRho(stock, strike, rate, sigma, maturity float64) float64 {
	return eval(FromRate(stock, strike, rate, sigma, maturity), putRho)
}

// PutRhoDiscount is PutRho with a discount factor.
func PutRhoDiscount(stock, strike, discount, sigma, maturity float64) float64 {
	return eval(FromDiscount(stock, strike, discount, sigma, maturity), putRho)
}
