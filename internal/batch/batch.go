// Package batch evaluates CSV files of options concurrently. Each row is
// either priced (mode "price") or inverted to implied volatility (mode
// "iv"); row failures are reported in the output row, while I/O failures
// abort the batch.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/gocarina/gocsv"
	"golang.org/x/sync/errgroup"

	"github.com/contactkeval/option-greeks/internal/logger"
	"github.com/contactkeval/option-greeks/internal/report"
	"github.com/contactkeval/option-greeks/pkg/pricing"
)

const (
	ModePrice = "price"
	ModeIV    = "iv"
)

// Row is one input line. Sigma is ignored in iv mode and Price in price
// mode; empty cells decode as zero.
type Row struct {
	ID       string  `csv:"id"`
	Type     string  `csv:"type"`
	Mode     string  `csv:"mode"`
	Stock    float64 `csv:"stock"`
	Strike   float64 `csv:"strike"`
	Rate     float64 `csv:"rate"`
	Sigma    float64 `csv:"sigma"`
	Maturity float64 `csv:"maturity"`
	Price    float64 `csv:"price"`
}

// ReadCSV decodes rows from r. The first line must be a header.
func ReadCSV(r io.Reader) ([]Row, error) {
	var rows []Row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("reading batch csv: %w", err)
	}
	return rows, nil
}

// Evaluator runs rows through the pricing core.
type Evaluator struct {
	Solver   pricing.Solver
	Workers  int
	Decimals int32
}

// Run evaluates rows with at most e.Workers goroutines. The result has one
// entry per input row, in input order.
func (e Evaluator) Run(ctx context.Context, rows []Row) ([]report.Row, error) {
	workers := e.Workers
	if workers < 1 {
		workers = 1
	}
	logger.Infof("batch: evaluating %d rows with %d workers", len(rows), workers)

	out := make([]report.Row, len(rows))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, row := range rows {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = e.evaluate(row)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Process reads a CSV from r, evaluates it and writes the results to w.
func (e Evaluator) Process(ctx context.Context, r io.Reader, w io.Writer) ([]report.Row, error) {
	rows, err := ReadCSV(r)
	if err != nil {
		return nil, err
	}
	results, err := e.Run(ctx, rows)
	if err != nil {
		return nil, err
	}
	if err := report.WriteCSV(results, w); err != nil {
		return nil, fmt.Errorf("writing batch csv: %w", err)
	}
	return results, nil
}

func (e Evaluator) evaluate(row Row) report.Row {
	kind, err := pricing.ParseKind(row.Type)
	if err != nil {
		return e.failed(row, row.Type, err)
	}
	mode := strings.ToLower(strings.TrimSpace(row.Mode))
	if mode == "" {
		mode = ModePrice
	}
	if err := row.validate(mode); err != nil {
		return e.failed(row, kind.String(), err)
	}

	in := pricing.FromRate(row.Stock, row.Strike, row.Rate, row.Sigma, row.Maturity)
	switch mode {
	case ModePrice:
		return report.NewRow(row.ID, kind, mode, pricing.Evaluate(kind, in), e.Decimals)

	case ModeIV:
		sol, err := e.Solver.ImpliedVol(kind, row.Price, in, 0)
		if err != nil {
			logger.Debugf("batch: row %s: %v", row.ID, err)
			out := report.Row{ID: row.ID, Type: kind.String(), Mode: mode, Error: err.Error()}
			var ivErr *pricing.IVError
			if errors.As(err, &ivErr) {
				out.SetImpliedVolatility(ivErr.Best, e.Decimals)
				out.Iterations = ivErr.Iterations
			}
			return out
		}
		solved := pricing.FromRate(row.Stock, row.Strike, row.Rate, sol.Sigma, row.Maturity)
		out := report.NewRow(row.ID, kind, mode, pricing.Evaluate(kind, solved), e.Decimals)
		out.SetImpliedVolatility(sol.Sigma, e.Decimals)
		out.Iterations = sol.Iterations
		return out
	}
	return e.failed(row, kind.String(), fmt.Errorf("unknown mode %q", row.Mode))
}

func (e Evaluator) failed(row Row, typ string, err error) report.Row {
	logger.Debugf("batch: row %s: %v", row.ID, err)
	return report.Row{ID: row.ID, Type: typ, Mode: row.Mode, Error: err.Error()}
}

func (r Row) validate(mode string) error {
	fields := []struct {
		name string
		v    float64
	}{
		{"stock", r.Stock},
		{"strike", r.Strike},
		{"rate", r.Rate},
		{"sigma", r.Sigma},
		{"maturity", r.Maturity},
		{"price", r.Price},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%s must be finite, got %v", f.name, f.v)
		}
	}

	switch {
	case r.Stock <= 0:
		return fmt.Errorf("stock must be positive, got %v", r.Stock)
	case r.Strike <= 0:
		return fmt.Errorf("strike must be positive, got %v", r.Strike)
	case r.Maturity < 0:
		return fmt.Errorf("maturity must not be negative, got %v", r.Maturity)
	case mode == ModePrice && r.Sigma < 0:
		return fmt.Errorf("sigma must not be negative, got %v", r.Sigma)
	}
	return nil
}
