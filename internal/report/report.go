// Package report renders pricing results for people and spreadsheets:
// values are rounded to a fixed number of decimals with shopspring/decimal
// and written as JSON or CSV.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/contactkeval/option-greeks/pkg/pricing"
)

// Row is one evaluated option.
type Row struct {
	ID                string          `csv:"id" json:"id,omitempty"`
	Type              string          `csv:"type" json:"type"`
	Mode              string          `csv:"mode" json:"mode"`
	Price             decimal.Decimal `csv:"price" json:"price"`
	Delta             decimal.Decimal `csv:"delta" json:"delta"`
	Gamma             decimal.Decimal `csv:"gamma" json:"gamma"`
	Theta             decimal.Decimal `csv:"theta" json:"theta"`
	Vega              decimal.Decimal `csv:"vega" json:"vega"`
	Rho               decimal.Decimal `csv:"rho" json:"rho"`
	ImpliedVolatility string          `csv:"implied_volatility" json:"implied_volatility,omitempty"`
	Iterations        int             `csv:"iterations" json:"iterations,omitempty"`
	Error             string          `csv:"error" json:"error,omitempty"`
}

// Round converts v to a decimal rounded to places. Non-finite values have
// no decimal form and are reported as an error.
func Round(v float64, places int32) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero, fmt.Errorf("non-finite value %v", v)
	}
	return decimal.NewFromFloat(v).Round(places), nil
}

// NewRow builds a row from a bundle.
func NewRow(id string, kind pricing.Kind, mode string, b pricing.Bundle, places int32) Row {
	row := Row{ID: id, Type: kind.String(), Mode: mode}
	fields := []struct {
		dst *decimal.Decimal
		v   float64
	}{
		{&row.Price, b.Price},
		{&row.Delta, b.Delta},
		{&row.Gamma, b.Gamma},
		{&row.Theta, b.Theta},
		{&row.Vega, b.Vega},
		{&row.Rho, b.Rho},
	}
	for _, f := range fields {
		d, err := Round(f.v, places)
		if err != nil {
			row.Error = err.Error()
			continue
		}
		*f.dst = d
	}
	return row
}

// SetImpliedVolatility records sigma on the row, rounded to places.
func (r *Row) SetImpliedVolatility(sigma float64, places int32) {
	d, err := Round(sigma, places)
	if err != nil {
		r.ImpliedVolatility = ""
		return
	}
	r.ImpliedVolatility = d.String()
}

// WriteJSON writes rows to outdir/results.json.
func WriteJSON(rows []Row, outdir string) error {
	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, "results.json"), b, 0644)
}

// WriteCSV writes rows with a header line to w.
func WriteCSV(rows []Row, w io.Writer) error {
	return gocsv.Marshal(&rows, w)
}

// WriteCSVFile writes rows to path, replacing any existing file.
func WriteCSVFile(rows []Row, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := WriteCSV(rows, f); err != nil {
		return err
	}
	return f.Close()
}
