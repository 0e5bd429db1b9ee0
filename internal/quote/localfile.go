package quote

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/contactkeval/option-greeks/internal/logger"
	"github.com/contactkeval/option-greeks/pkg/pricing"
)

// ErrQuoteNotFound is returned when no provider in the chain has a quote
// for the requested contract.
var ErrQuoteNotFound = errors.New("quote not found")

// fileQuote is one line of <dir>/<UNDERLYING>.csv.
type fileQuote struct {
	Expiry string  `csv:"expiry"` // YYYY-MM-DD
	Type   string  `csv:"type"`
	Strike float64 `csv:"strike"`
	Stock  float64 `csv:"stock"`
	Price  float64 `csv:"price"`
	AsOf   string  `csv:"as_of"` // RFC 3339
}

// localFileProvider serves quotes recorded in CSV files, one file per
// underlying. Files are read once and cached.
type localFileProvider struct {
	dir       string
	secondary Provider

	mu    sync.Mutex
	cache map[string][]Quote
}

// NewLocalFileProvider returns a Provider reading <dir>/<UNDERLYING>.csv
// and delegating misses to secondary when it is not nil.
func NewLocalFileProvider(dir string, secondary Provider) Provider {
	return &localFileProvider{dir: dir, secondary: secondary, cache: make(map[string][]Quote)}
}

func (p *localFileProvider) Secondary() Provider {
	return p.secondary
}

func (p *localFileProvider) GetQuote(ctx context.Context, underlying string, expiry time.Time, kind pricing.Kind, strike float64) (Quote, error) {
	if err := ctx.Err(); err != nil {
		return Quote{}, err
	}

	quotes, err := p.load(underlying)
	if err == nil {
		for _, q := range quotes {
			if q.Kind == kind && sameDay(q.Expiry, expiry) && math.Abs(q.Strike-strike) < 1e-9 {
				return q, nil
			}
		}
		err = fmt.Errorf("%w: %s", ErrQuoteNotFound, OptionTicker(underlying, expiry, kind, strike))
	}

	if p.secondary != nil {
		logger.Debugf("local quote unavailable (%v), using secondary provider", err)
		return p.secondary.GetQuote(ctx, underlying, expiry, kind, strike)
	}
	return Quote{}, err
}

func (p *localFileProvider) load(underlying string) ([]Quote, error) {
	key := strings.ToUpper(underlying)

	p.mu.Lock()
	defer p.mu.Unlock()
	if quotes, ok := p.cache[key]; ok {
		return quotes, nil
	}

	f, err := os.Open(filepath.Join(p.dir, key+".csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []fileQuote
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name(), err)
	}

	quotes := make([]Quote, 0, len(rows))
	for i, row := range rows {
		q, err := row.quote(key)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", f.Name(), i+2, err)
		}
		quotes = append(quotes, q)
	}
	p.cache[key] = quotes
	return quotes, nil
}

func (row fileQuote) quote(underlying string) (Quote, error) {
	kind, err := pricing.ParseKind(row.Type)
	if err != nil {
		return Quote{}, err
	}
	expiry, err := time.Parse(time.DateOnly, strings.TrimSpace(row.Expiry))
	if err != nil {
		return Quote{}, fmt.Errorf("invalid expiry: %w", err)
	}
	asOf, err := time.Parse(time.RFC3339, strings.TrimSpace(row.AsOf))
	if err != nil {
		return Quote{}, fmt.Errorf("invalid as_of: %w", err)
	}

	return Quote{
		Ticker:     OptionTicker(underlying, expiry, kind, row.Strike),
		Underlying: underlying,
		Kind:       kind,
		Strike:     row.Strike,
		Expiry:     expiry,
		Stock:      row.Stock,
		Price:      row.Price,
		AsOf:       asOf,
		Source:     "file",
	}, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
