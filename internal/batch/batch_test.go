package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/contactkeval/option-greeks/internal/report"
	"github.com/contactkeval/option-greeks/internal/testutil"
	"github.com/contactkeval/option-greeks/pkg/pricing"
)

const sampleCSV = `id,type,mode,stock,strike,rate,sigma,maturity,price
a1,call,price,5,4.5,0.05,0.3,1,
b2,put,,5,4.5,0.05,0.3,1,
d4,put,price,0,4.5,0.05,0.3,1,
e5,call,iv,5,4.5,0.05,,1,0.1
`

func newEvaluator(decimals int32) Evaluator {
	return Evaluator{Solver: pricing.DefaultSolver, Workers: 3, Decimals: decimals}
}

func TestReadCSV(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	want := Row{ID: "e5", Type: "call", Mode: "iv", Stock: 5, Strike: 4.5, Rate: 0.05, Maturity: 1, Price: 0.1}
	if rows[3] != want {
		t.Fatalf("row 3 = %+v, want %+v", rows[3], want)
	}
}

func TestProcessGolden(t *testing.T) {
	var buf bytes.Buffer
	if _, err := newEvaluator(6).Process(context.Background(), strings.NewReader(sampleCSV), &buf); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	testutil.CompareBytesWithGolden(t, "process_csv", buf.Bytes())
}

func TestRunPreservesOrder(t *testing.T) {
	var rows []Row
	for i := 0; i < 200; i++ {
		rows = append(rows, Row{
			ID:       fmt.Sprintf("r%03d", i),
			Type:     []string{"call", "put"}[i%2],
			Stock:    100,
			Strike:   60 + float64(i)*0.4,
			Rate:     0.03,
			Sigma:    0.2,
			Maturity: 0.5,
		})
	}

	out, err := newEvaluator(8).Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(out) != len(rows) {
		t.Fatalf("expected %d results, got %d", len(rows), len(out))
	}
	for i, row := range rows {
		if out[i].ID != row.ID {
			t.Fatalf("result %d has id %s, want %s", i, out[i].ID, row.ID)
		}
		kind, _ := pricing.ParseKind(row.Type)
		b := pricing.Evaluate(kind, pricing.FromRate(row.Stock, row.Strike, row.Rate, row.Sigma, row.Maturity))
		want, _ := report.Round(b.Price, 8)
		if !out[i].Price.Equal(want) {
			t.Fatalf("row %s price = %s, want %s", row.ID, out[i].Price, want)
		}
	}
}

func TestRunImpliedVolatility(t *testing.T) {
	price := pricing.Call(100, 100, 0.05, 0.25, 1)
	rows := []Row{
		{ID: "ok", Type: "c", Mode: "IV", Stock: 100, Strike: 100, Rate: 0.05, Maturity: 1, Price: price},
		{ID: "high", Type: "call", Mode: "iv", Stock: 100, Strike: 100, Rate: 0.05, Maturity: 1, Price: 150},
	}

	out, err := newEvaluator(8).Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	ok := out[0]
	if ok.Error != "" {
		t.Fatalf("unexpected error: %s", ok.Error)
	}
	if ok.ImpliedVolatility != "0.25" {
		t.Fatalf("implied volatility = %q, want 0.25", ok.ImpliedVolatility)
	}
	if ok.Iterations < 1 {
		t.Fatalf("expected iterations to be recorded, got %d", ok.Iterations)
	}
	if ok.Type != "call" || ok.Mode != "iv" {
		t.Fatalf("row not normalised: type=%q mode=%q", ok.Type, ok.Mode)
	}
	wantPrice, _ := report.Round(price, 8)
	if !ok.Price.Equal(wantPrice) {
		t.Fatalf("repriced value %s, want %s", ok.Price, wantPrice)
	}

	high := out[1]
	if !strings.Contains(high.Error, pricing.ErrPriceOutOfRange.Error()) {
		t.Fatalf("expected out of range error, got %q", high.Error)
	}
	// The best estimate above the range is +Inf, which has no decimal form.
	if high.ImpliedVolatility != "" {
		t.Fatalf("expected empty implied volatility, got %q", high.ImpliedVolatility)
	}
}

func TestRunRejectsInvalidRows(t *testing.T) {
	tests := []struct {
		name string
		row  Row
		want string
	}{
		{"unknown type", Row{Type: "straddle", Stock: 1, Strike: 1}, `unknown option type "straddle"`},
		{"unknown mode", Row{Type: "call", Mode: "delta", Stock: 1, Strike: 1}, `unknown mode "delta"`},
		{"zero strike", Row{Type: "call", Stock: 1}, "strike must be positive"},
		{"negative sigma", Row{Type: "put", Stock: 1, Strike: 1, Sigma: -0.1}, "sigma must not be negative"},
		{"negative maturity", Row{Type: "put", Stock: 1, Strike: 1, Maturity: -1}, "maturity must not be negative"},
		{"nan rate", Row{Type: "call", Stock: 1, Strike: 1, Rate: math.NaN()}, "rate must be finite"},
		{"infinite price", Row{Type: "call", Mode: "iv", Stock: 1, Strike: 1, Price: math.Inf(1)}, "price must be finite"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out, err := newEvaluator(6).Run(context.Background(), []Row{test.row})
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if !strings.Contains(out[0].Error, test.want) {
				t.Fatalf("error = %q, want it to contain %q", out[0].Error, test.want)
			}
		})
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows := []Row{{ID: "x", Type: "call", Stock: 1, Strike: 1, Sigma: 0.2, Maturity: 1}}
	if _, err := newEvaluator(6).Run(ctx, rows); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
