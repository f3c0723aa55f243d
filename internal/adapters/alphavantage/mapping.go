package alphavantage

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/alejandrodnm/trendbot/internal/domain"
)

// mapDailySeries convierte el mapa fecha→DTO del API a una serie de
// domain.Bar ordenada por fecha creciente y validada.
func mapDailySeries(series map[string]dailyBar) ([]domain.Bar, error) {
	bars := make([]domain.Bar, 0, len(series))
	for dateStr, raw := range series {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", dateStr, err)
		}
		bar, err := mapDailyBar(date, raw)
		if err != nil {
			return nil, fmt.Errorf("bar %s: %w", dateStr, err)
		}
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	if err := domain.ValidateBars(bars); err != nil {
		return nil, err
	}
	return bars, nil
}

func mapDailyBar(date time.Time, raw dailyBar) (domain.Bar, error) {
	b := domain.Bar{Date: date}
	for _, f := range []struct {
		name string
		src  string
		dst  *float64
	}{
		{"open", raw.Open, &b.Open},
		{"high", raw.High, &b.High},
		{"low", raw.Low, &b.Low},
		{"close", raw.Close, &b.Close},
		{"adjusted close", raw.AdjClose, &b.AdjClose},
		{"volume", raw.Volume, &b.Volume},
	} {
		v, err := strconv.ParseFloat(f.src, 64)
		if err != nil {
			return domain.Bar{}, fmt.Errorf("parse %s %q: %w", f.name, f.src, err)
		}
		*f.dst = v
	}
	return b, nil
}
