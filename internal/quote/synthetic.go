package quote

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/contactkeval/option-greeks/pkg/pricing"
)

// synthProvider generates quotes by pricing the contract at a random
// volatility. It is used when no API key is configured and in tests.
type synthProvider struct {
	mu        sync.Mutex
	rng       *rand.Rand
	rate      float64
	secondary Provider
	now       func() time.Time
}

// NewSyntheticProvider returns a Provider producing Black-Scholes priced
// quotes at the given rate. The seed makes the output reproducible.
func NewSyntheticProvider(seed int64, rate float64) Provider {
	return &synthProvider{
		rng:  rand.New(rand.NewSource(seed)),
		rate: rate,
		now:  time.Now,
	}
}

func (p *synthProvider) Secondary() Provider {
	return p.secondary
}

func (p *synthProvider) GetQuote(ctx context.Context, underlying string, expiry time.Time, kind pricing.Kind, strike float64) (Quote, error) {
	if err := ctx.Err(); err != nil {
		return Quote{}, err
	}

	p.mu.Lock()
	spot := strike * math.Exp(0.1*p.rng.NormFloat64())
	sigma := 0.15 + 0.45*p.rng.Float64()
	p.mu.Unlock()

	q := Quote{
		Ticker:     OptionTicker(underlying, expiry, kind, strike),
		Underlying: underlying,
		Kind:       kind,
		Strike:     strike,
		Expiry:     expiry,
		Stock:      math.Round(spot*100) / 100,
		AsOf:       p.now(),
		Source:     "synthetic",
	}
	q.Price = pricing.Evaluate(kind, pricing.FromRate(q.Stock, strike, p.rate, sigma, q.Maturity())).Price
	return q, nil
}
