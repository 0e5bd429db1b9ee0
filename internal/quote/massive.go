package quote

import (
	"context"
	"fmt"
	"time"

	massive "github.com/massive-com/client-go/v2/rest"
	"github.com/massive-com/client-go/v2/rest/models"

	"github.com/contactkeval/option-greeks/internal/logger"
	"github.com/contactkeval/option-greeks/pkg/pricing"
)

// snapshotClient is the part of the Massive REST client this package uses.
type snapshotClient interface {
	GetOptionContractSnapshot(ctx context.Context, params *models.GetOptionContractSnapshotParams, options ...models.RequestOption) (*models.GetOptionContractSnapshotResponse, error)
}

// massiveProvider fetches option contract snapshots from Massive.
type massiveProvider struct {
	client    snapshotClient
	secondary Provider
	now       func() time.Time
}

// NewMassiveProvider returns a Provider backed by the Massive snapshot API.
// secondary may be nil.
func NewMassiveProvider(apiKey string, secondary Provider) Provider {
	logger.Infof("initializing Massive quote provider")
	return &massiveProvider{
		client:    massive.New(apiKey),
		secondary: secondary,
		now:       time.Now,
	}
}

func (p *massiveProvider) Secondary() Provider {
	return p.secondary
}

// GetQuote returns the contract's last quote midpoint and the underlying
// price from the same snapshot. Failures are delegated to the secondary
// provider when one is configured.
func (p *massiveProvider) GetQuote(ctx context.Context, underlying string, expiry time.Time, kind pricing.Kind, strike float64) (Quote, error) {
	ticker := OptionTicker(underlying, expiry, kind, strike)
	logger.Debugf("snapshot request: %s", ticker)

	q, err := p.fetch(ctx, underlying, ticker)
	if err != nil {
		if p.secondary != nil {
			logger.Infof("massive snapshot for %s failed (%v), using secondary provider", ticker, err)
			return p.secondary.GetQuote(ctx, underlying, expiry, kind, strike)
		}
		return Quote{}, err
	}

	q.Underlying = underlying
	q.Kind = kind
	q.Strike = strike
	q.Expiry = expiry
	return q, nil
}

func (p *massiveProvider) fetch(ctx context.Context, underlying, ticker string) (Quote, error) {
	res, err := p.client.GetOptionContractSnapshot(ctx, &models.GetOptionContractSnapshotParams{
		UnderlyingAsset: underlying,
		OptionContract:  ticker,
	})
	if err != nil {
		return Quote{}, fmt.Errorf("massive snapshot %s: %w", ticker, err)
	}

	snap := res.Results
	price := snap.LastQuote.Midpoint
	if !(price > 0) && snap.LastQuote.Bid > 0 && snap.LastQuote.Ask > 0 {
		price = (snap.LastQuote.Bid + snap.LastQuote.Ask) / 2
	}
	if !(price > 0) {
		price = snap.Day.Close
	}
	if !(price > 0) {
		return Quote{}, fmt.Errorf("massive snapshot %s: no usable option price", ticker)
	}
	if !(snap.UnderlyingAsset.Price > 0) {
		return Quote{}, fmt.Errorf("massive snapshot %s: no underlying price", ticker)
	}

	logger.Tracef("snapshot %s: price=%.4f underlying=%.4f", ticker, price, snap.UnderlyingAsset.Price)
	return Quote{
		Ticker: ticker,
		Stock:  snap.UnderlyingAsset.Price,
		Price:  price,
		AsOf:   p.now(),
		Source: "massive",
	}, nil
}
