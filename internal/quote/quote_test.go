package quote

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/massive-com/client-go/v2/rest/models"

	"github.com/contactkeval/option-greeks/pkg/pricing"
)

var (
	underlying = "SPY"
	strike     = 581.0
	locNY, _   = time.LoadLocation("America/New_York")
	asOf       = time.Date(2025, time.January, 14, 16, 0, 0, 0, locNY)
	expiryDate = time.Date(2025, time.January, 17, 0, 0, 0, 0, time.UTC)
)

type fakeSnapshots struct {
	res    *models.GetOptionContractSnapshotResponse
	err    error
	params *models.GetOptionContractSnapshotParams
}

func (f *fakeSnapshots) GetOptionContractSnapshot(ctx context.Context, params *models.GetOptionContractSnapshotParams, options ...models.RequestOption) (*models.GetOptionContractSnapshotResponse, error) {
	f.params = params
	return f.res, f.err
}

func snapshot(mid, bid, ask, dayClose, underlyingPrice float64) *models.GetOptionContractSnapshotResponse {
	res := &models.GetOptionContractSnapshotResponse{}
	res.Results.LastQuote.Midpoint = mid
	res.Results.LastQuote.Bid = bid
	res.Results.LastQuote.Ask = ask
	res.Results.Day.Close = dayClose
	res.Results.UnderlyingAsset.Price = underlyingPrice
	return res
}

func fixedNow() time.Time { return asOf }

func TestOptionTicker(t *testing.T) {
	tests := []struct {
		kind     pricing.Kind
		strike   float64
		expected string
	}{
		{pricing.CallOption, 581, "O:SPY250117C00581000"},
		{pricing.PutOption, 42.5, "O:SPY250117P00042500"},
	}

	for _, test := range tests {
		if got := OptionTicker("spy", expiryDate, test.kind, test.strike); got != test.expected {
			t.Fatalf("OptionTicker = %s, want %s", got, test.expected)
		}
	}
}

func TestQuoteMaturity(t *testing.T) {
	q := Quote{Expiry: expiryDate, AsOf: asOf}
	if got, want := q.Maturity(), 3.0/365.0; math.Abs(got-want) > 1e-12 {
		t.Fatalf("Maturity = %v, want %v", got, want)
	}

	q.AsOf = asOf.AddDate(0, 0, 10)
	if got := q.Maturity(); got != 0 {
		t.Fatalf("Maturity after expiry = %v, want 0", got)
	}
}

func TestMassiveProviderPriceSelection(t *testing.T) {
	tests := []struct {
		name     string
		res      *models.GetOptionContractSnapshotResponse
		expected float64
	}{
		{"midpoint", snapshot(2.5, 2.4, 2.6, 2.0, 580), 2.5},
		{"bid/ask", snapshot(0, 2.4, 2.8, 2.0, 580), 2.6},
		{"day close", snapshot(0, 0, 2.8, 2.0, 580), 2.0},
	}

	for _, test := range tests {
		fake := &fakeSnapshots{res: test.res}
		p := &massiveProvider{client: fake, now: fixedNow}

		q, err := p.GetQuote(context.Background(), underlying, expiryDate, pricing.CallOption, strike)
		if err != nil {
			t.Fatalf("%s: GetQuote failed: %v", test.name, err)
		}
		if q.Price != test.expected || q.Stock != 580 || q.Source != "massive" {
			t.Fatalf("%s: unexpected quote %+v", test.name, q)
		}
		if fake.params.UnderlyingAsset != "SPY" || fake.params.OptionContract != "O:SPY250117C00581000" {
			t.Fatalf("%s: unexpected params %+v", test.name, fake.params)
		}
	}
}

func TestMassiveProviderErrors(t *testing.T) {
	ctx := context.Background()

	p := &massiveProvider{client: &fakeSnapshots{err: errors.New("status 500")}, now: fixedNow}
	if _, err := p.GetQuote(ctx, underlying, expiryDate, pricing.CallOption, strike); err == nil {
		t.Fatal("expected error from failing client")
	}

	p = &massiveProvider{client: &fakeSnapshots{res: snapshot(0, 0, 0, 0, 580)}, now: fixedNow}
	if _, err := p.GetQuote(ctx, underlying, expiryDate, pricing.CallOption, strike); err == nil {
		t.Fatal("expected error for snapshot without a price")
	}

	p = &massiveProvider{client: &fakeSnapshots{res: snapshot(2.5, 0, 0, 0, 0)}, now: fixedNow}
	if _, err := p.GetQuote(ctx, underlying, expiryDate, pricing.CallOption, strike); err == nil {
		t.Fatal("expected error for snapshot without an underlying price")
	}
}

func TestMassiveProviderFallsBackToSecondary(t *testing.T) {
	synth := NewSyntheticProvider(1, 0.04).(*synthProvider)
	synth.now = fixedNow

	p := &massiveProvider{client: &fakeSnapshots{err: errors.New("unauthorized")}, secondary: synth, now: fixedNow}
	if p.Secondary() == nil {
		t.Fatal("expected secondary provider")
	}

	q, err := p.GetQuote(context.Background(), underlying, expiryDate, pricing.PutOption, strike)
	if err != nil {
		t.Fatalf("GetQuote failed: %v", err)
	}
	if q.Source != "synthetic" || q.Kind != pricing.PutOption {
		t.Fatalf("expected synthetic put quote, got %+v", q)
	}
}

func TestSyntheticQuotesSolveBackToTheirVolatility(t *testing.T) {
	const rate = 0.04
	p := NewSyntheticProvider(42, rate).(*synthProvider)
	p.now = fixedNow
	expiry := time.Date(2025, time.March, 21, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 50; i++ {
		kind := pricing.CallOption
		if i%2 == 1 {
			kind = pricing.PutOption
		}
		q, err := p.GetQuote(context.Background(), underlying, expiry, kind, strike)
		if err != nil {
			t.Fatalf("GetQuote failed: %v", err)
		}

		res, err := Solve(q, rate, pricing.DefaultSolver)
		if err != nil {
			t.Fatalf("Solve %+v failed: %v", q, err)
		}
		if res.ImpliedVolatility < 0.15-1e-6 || res.ImpliedVolatility > 0.6+1e-6 {
			t.Fatalf("implied volatility %v outside generated range", res.ImpliedVolatility)
		}
		if math.Abs(res.Greeks.Price-q.Price) > 1e-8 {
			t.Fatalf("greeks price %v does not reprice quote %v", res.Greeks.Price, q.Price)
		}
	}
}

func TestSolveRejectsExpiredQuote(t *testing.T) {
	q := Quote{Ticker: "O:SPY250117C00581000", Kind: pricing.CallOption, Strike: strike, Expiry: expiryDate, AsOf: asOf.AddDate(0, 1, 0), Stock: 590, Price: 9}
	_, err := Solve(q, 0.04, pricing.DefaultSolver)
	if !errors.Is(err, pricing.ErrZeroMaturity) {
		t.Fatalf("expected ErrZeroMaturity, got %v", err)
	}
}

func TestSyntheticProviderHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewSyntheticProvider(1, 0.04).GetQuote(ctx, underlying, expiryDate, pricing.CallOption, strike); err == nil {
		t.Fatal("expected context error")
	}
}
