package alphavantage

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/alejandrodnm/trendbot/internal/domain"
)

// FixtureProvider implementa ports.BarProvider leyendo un CSV local.
// Es el modo dry-run: mismo contrato que el client real, cero red.
type FixtureProvider struct {
	path string
}

// NewFixtureProvider crea un provider que lee barras del CSV dado.
// Formato esperado (con cabecera): date,open,high,low,close,adj_close,volume.
func NewFixtureProvider(path string) *FixtureProvider {
	return &FixtureProvider{path: path}
}

// FetchDailyBars lee y valida el fixture. Ignora el ticker: el fixture es
// la serie que sea que el usuario puso en el archivo.
func (p *FixtureProvider) FetchDailyBars(_ context.Context, _ string) ([]domain.Bar, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return nil, fmt.Errorf("alphavantage.FixtureProvider: open %q: %w", p.path, err)
	}
	defer f.Close()

	bars, err := readCSVBars(f)
	if err != nil {
		return nil, fmt.Errorf("alphavantage.FixtureProvider: %q: %w", p.path, err)
	}
	return bars, nil
}

func readCSVBars(r io.Reader) ([]domain.Bar, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("csv has no data rows")
	}

	bars := make([]domain.Bar, 0, len(records)-1)
	for i, rec := range records[1:] { // salta la cabecera
		if len(rec) != 7 {
			return nil, fmt.Errorf("row %d: expected 7 columns, got %d", i+2, len(rec))
		}
		date, err := time.Parse("2006-01-02", rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: parse date %q: %w", i+2, rec[0], err)
		}
		vals := make([]float64, 6)
		for j := 1; j < 7; j++ {
			v, err := strconv.ParseFloat(rec[j], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: parse %q: %w", i+2, j+1, rec[j], err)
			}
			vals[j-1] = v
		}
		bars = append(bars, domain.Bar{
			Date: date, Open: vals[0], High: vals[1], Low: vals[2],
			Close: vals[3], AdjClose: vals[4], Volume: vals[5],
		})
	}

	if err := domain.ValidateBars(bars); err != nil {
		return nil, err
	}
	return bars, nil
}
