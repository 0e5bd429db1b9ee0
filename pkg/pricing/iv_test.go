package pricing

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestCallIVWithGuess(t *testing.T) {
	s, k, r, tau, sigma := 5.0, 4.5, 0.05, 1.0, 0.2
	price := Call(s, k, r, sigma, tau)

	iv, err := CallIVGuess(price, s, k, r, tau, 0.5)
	if err != nil {
		t.Fatalf("CallIVGuess failed: %v", err)
	}
	if !almostEqual(iv, sigma, 1e-8) {
		t.Fatalf("CallIVGuess = %v, want %v", iv, sigma)
	}
}

func TestPutIV(t *testing.T) {
	s, k, r, tau, sigma := 5.0, 4.5, 0.05, 1.0, 0.2
	price := Put(s, k, r, sigma, tau)

	iv, err := PutIV(price, s, k, r, tau)
	if err != nil {
		t.Fatalf("PutIV failed: %v", err)
	}
	if !almostEqual(iv, sigma, 1e-8) {
		t.Fatalf("PutIV = %v, want %v", iv, sigma)
	}

	iv, err = PutIVGuess(price, s, k, r, tau, 1.5)
	if err != nil || !almostEqual(iv, sigma, 1e-8) {
		t.Fatalf("PutIVGuess = %v, %v; want %v", iv, err, sigma)
	}
}

func TestApproximateVolIsClose(t *testing.T) {
	s, k, r, tau, sigma := 5.0, 4.5, 0.05, 1.0, 0.2
	price := Call(s, k, r, sigma, tau)

	guess := approximateVol(CallOption, price, FromRate(s, k, r, 0, tau))
	if !almostEqual(guess, sigma, 0.01) {
		t.Fatalf("Corrado-Miller guess %v too far from %v", guess, sigma)
	}
}

func TestIVRoundTripFromPrecombinedPrice(t *testing.T) {
	s, k, df, sigma, tau := 5.0, 4.5, 0.99, 0.3, 2.0
	price := CallPrice(s, k, df, sigma*math.Sqrt(tau))

	iv, err := CallIVDiscount(price, s, k, df, tau)
	if err != nil {
		t.Fatalf("CallIVDiscount failed: %v", err)
	}
	if !almostEqual(iv, sigma, 1e-6) {
		t.Fatalf("CallIVDiscount = %v, want %v", iv, sigma)
	}

	iv, err = PutIVDiscount(PutPrice(s, k, df, sigma*math.Sqrt(tau)), s, k, df, tau)
	if err != nil || !almostEqual(iv, sigma, 1e-6) {
		t.Fatalf("PutIVDiscount = %v, %v; want %v", iv, err, sigma)
	}
}

func TestCallIVDifficultCase(t *testing.T) {
	s, k, sigma, r, tau := 0.43065239380643594, 0.5016203266170813, 0.4192621453186373, 0.0247, 0.7599
	price := Call(s, k, r, sigma, tau)

	iv, err := CallIV(price, s, k, r, tau)
	if err != nil {
		t.Fatalf("CallIV failed: %v", err)
	}
	if !almostEqual(iv, sigma, 1e-6) {
		t.Fatalf("CallIV = %v, want %v", iv, sigma)
	}
}

// Every price with a representable time value must be recovered.
func TestIVBroadRange(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	s, r, tau := 1.0, 0.0247, 0.7599
	fwdOf := func(k float64) float64 { return k * math.Exp(-r*tau) }

	for i := 0; i < 5000; i++ {
		k := 0.3 + 2.7*rng.Float64()
		sigma := 0.1 + 1.9*rng.Float64()

		if price := Call(s, k, r, sigma, tau); price-math.Max(s-fwdOf(k), 0) > 1e-8 {
			iv, err := CallIV(price, s, k, r, tau)
			if err != nil {
				t.Fatalf("CallIV k=%v σ=%v price=%v: %v", k, sigma, price, err)
			}
			if repriced := Call(s, k, r, iv, tau); !almostEqual(repriced, price, DefaultSolver.Tolerance) {
				t.Fatalf("CallIV k=%v σ=%v: repriced %v, want %v", k, sigma, repriced, price)
			}
		}

		if price := Put(s, k, r, sigma, tau); price-math.Max(fwdOf(k)-s, 0) > 1e-8 {
			iv, err := PutIV(price, s, k, r, tau)
			if err != nil {
				t.Fatalf("PutIV k=%v σ=%v price=%v: %v", k, sigma, price, err)
			}
			if repriced := Put(s, k, r, iv, tau); !almostEqual(repriced, price, DefaultSolver.Tolerance) {
				t.Fatalf("PutIV k=%v σ=%v: repriced %v, want %v", k, sigma, repriced, price)
			}
		}
	}
}

func TestCallIVNoPossibleSolution(t *testing.T) {
	price, s, k, r, tau := 50.275, 274.525, 225.0, 0.0244, 0.156

	best, err := CallIV(price, s, k, r, tau)
	if err == nil {
		t.Fatal("expected an error for a price below intrinsic value")
	}
	if !errors.Is(err, ErrPriceOutOfRange) {
		t.Fatalf("expected ErrPriceOutOfRange, got %v", err)
	}
	var ivErr *IVError
	if !errors.As(err, &ivErr) {
		t.Fatalf("expected *IVError, got %T", err)
	}
	if best != 0 || ivErr.Best != 0 {
		t.Fatalf("best estimate below intrinsic = %v, want 0", best)
	}
}

func TestIVOutOfRange(t *testing.T) {
	s, k, r, tau := 100.0, 90.0, 0.05, 1.0
	fwd := k * math.Exp(-r*tau)

	tests := []struct {
		name  string
		kind  Kind
		price float64
	}{
		{"call below intrinsic", CallOption, s - fwd - 0.01},
		{"call at intrinsic", CallOption, s - fwd},
		{"call above stock", CallOption, s + 1},
		{"call at stock", CallOption, s},
		{"negative call", CallOption, -1},
		{"put at zero", PutOption, 0},
		{"put above discounted strike", PutOption, fwd + 0.5},
	}

	for _, test := range tests {
		_, err := DefaultSolver.ImpliedVol(test.kind, test.price, FromRate(s, k, r, 0, tau), 0)
		if !errors.Is(err, ErrPriceOutOfRange) {
			t.Fatalf("%s: expected ErrPriceOutOfRange, got %v", test.name, err)
		}
	}
}

func TestIVZeroMaturity(t *testing.T) {
	_, err := CallIV(1.0, 100, 100, 0.05, 0)
	if !errors.Is(err, ErrZeroMaturity) {
		t.Fatalf("expected ErrZeroMaturity, got %v", err)
	}
}

func TestIVIterationBudget(t *testing.T) {
	s, k, r, tau, sigma := 100.0, 100.0, 0.01, 1.0, 0.8
	price := Call(s, k, r, sigma, tau)

	solver := Solver{Tolerance: 1e-12, MaxIterations: 1}
	_, err := solver.ImpliedVol(CallOption, price, FromRate(s, k, r, 0, tau), 0.05)
	if !errors.Is(err, ErrNoConvergence) {
		t.Fatalf("expected ErrNoConvergence, got %v", err)
	}
	var ivErr *IVError
	if !errors.As(err, &ivErr) {
		t.Fatalf("expected *IVError, got %T", err)
	}
	if ivErr.Iterations != 1 || ivErr.Best != 0.05 || ivErr.Low != 0.05 {
		t.Fatalf("unexpected failure details: %+v", ivErr)
	}

	sol, err := DefaultSolver.ImpliedVol(CallOption, price, FromRate(s, k, r, 0, tau), 0.05)
	if err != nil {
		t.Fatalf("default solver failed: %v", err)
	}
	if sol.Iterations < 2 || sol.Iterations > DefaultSolver.MaxIterations {
		t.Fatalf("unexpected iteration count %d", sol.Iterations)
	}
	if !almostEqual(sol.Sigma, sigma, 1e-8) {
		t.Fatalf("sigma = %v, want %v", sol.Sigma, sigma)
	}
}

func TestIVErrorMessage(t *testing.T) {
	err := &IVError{Reason: ErrNoConvergence, Best: 0.25, Low: 0.2, High: 0.3, Iterations: 100}
	want := "implied volatility did not converge: best=0.25 bracket=[0.2, 0.3] iterations=100"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}
