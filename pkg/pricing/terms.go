package pricing

import "math"

// Inputs is one option's market data in the form the formulas consume.
//
// Build it with FromRate or FromDiscount; both end up with the same
// representation so every formula is written once.
type Inputs struct {
	Stock    float64 // spot price of the underlying
	Strike   float64 // strike price
	Discount float64 // exp(-Rate*Maturity)
	Rate     float64 // continuously compounded risk-free rate
	Sigma    float64 // annualised volatility
	Maturity float64 // time to expiry in years
	TotalVol float64 // Sigma*sqrt(Maturity)
}

// FromRate builds Inputs from a risk-free rate.
func FromRate(stock, strike, rate, sigma, maturity float64) Inputs {
	return Inputs{
		Stock:    stock,
		Strike:   strike,
		Discount: math.Exp(-rate * maturity),
		Rate:     rate,
		Sigma:    sigma,
		Maturity: maturity,
		TotalVol: sigma * math.Sqrt(maturity),
	}
}

// FromDiscount builds Inputs from a precomputed discount factor. The
// implied rate is recovered for theta; it is 0 when maturity is 0.
func FromDiscount(stock, strike, discount, sigma, maturity float64) Inputs {
	var rate float64
	if maturity > 0 {
		rate = -math.Log(discount) / maturity
	}
	return Inputs{
		Stock:    stock,
		Strike:   strike,
		Discount: discount,
		Rate:     rate,
		Sigma:    sigma,
		Maturity: maturity,
		TotalVol: sigma * math.Sqrt(maturity),
	}
}

// fromTotalVol backs the entry points that receive σ√τ already combined.
// Only the quantities that depend on TotalVol alone (price, delta, gamma)
// may be evaluated on the result.
func fromTotalVol(stock, strike, discount, totalVol float64) Inputs {
	return Inputs{
		Stock:    stock,
		Strike:   strike,
		Discount: discount,
		TotalVol: totalVol,
	}
}

// Terms holds the intermediates shared by the price and every greek.
type Terms struct {
	D1    float64
	D2    float64
	ND1   float64 // N(d1)
	ND2   float64 // N(d2)
	PhiD1 float64 // φ(d1)
}

// Terms computes d1, d2 and their normal CDF/PDF values once.
//
// ok is false when TotalVol is not strictly positive; d1 and d2 are
// undefined there and callers must use the degenerate formulas instead.
func (in Inputs) Terms() (t Terms, ok bool) {
	if !(in.TotalVol > 0) {
		return Terms{}, false
	}
	d1 := math.Log(in.Stock/(in.Strike*in.Discount))/in.TotalVol + 0.5*in.TotalVol
	d2 := d1 - in.TotalVol
	return Terms{
		D1:    d1,
		D2:    d2,
		ND1:   NormCDF(d1),
		ND2:   NormCDF(d2),
		PhiD1: NormPDF(d1),
	}, true
}

// forwardStrike is the strike discounted to today, K·Df.
func (in Inputs) forwardStrike() float64 {
	return in.Strike * in.Discount
}
