package pricing

// Bundle is the price and every greek of one option, all derived from a
// single Terms value so the fields are mutually consistent.
type Bundle struct {
	Price float64 `json:"price"`
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
	Rho   float64 `json:"rho"`
}

// CallBundle evaluates the call bundle for in, building Terms once.
func CallBundle(in Inputs) Bundle {
	t, ok := in.Terms()
	return Bundle{
		Price: callPrice(in, t, ok),
		Delta: callDelta(in, t, ok),
		Gamma: gamma(in, t, ok),
		Theta: callTheta(in, t, ok),
		Vega:  vega(in, t, ok),
		Rho:   callRho(in, t, ok),
	}
}

// PutBundle evaluates the put bundle for in, building Terms once.
func PutBundle(in Inputs) Bundle {
	t, ok := in.Terms()
	return Bundle{
		Price: putPrice(in, t, ok),
		Delta: putDelta(in, t, ok),
		Gamma: gamma(in, t, ok),
		Theta: putTheta(in, t, ok),
		Vega:  vega(in, t, ok),
		Rho:   putRho(in, t, ok),
	}
}

// CallAll returns the call price and all greeks in one pass.
func CallAll(stock, strike, rate, sigma, maturity float64) Bundle {
	return CallBundle(FromRate(stock, strike, rate, sigma, maturity))
}

// CallAllDiscount is CallAll with a discount factor in place of the rate.
func CallAllDiscount(stock, strike, discount, sigma, maturity float64) Bundle {
	return CallBundle(FromDiscount(stock, strike, discount, sigma, maturity))
}

// PutAll returns the put price and all greeks in one pass.
func PutAll(stock, strike, rate, sigma, maturity float64) Bundle {
	return PutBundle(FromRate(stock, strike, rate, sigma, maturity))
}

// PutAllDiscount is PutAll with a discount factor in place of the rate.
func PutAllDiscount(stock, strike, discount, sigma, maturity float64) Bundle {
	return PutBundle(FromDiscount(stock, strike, discount, sigma, maturity))
}
