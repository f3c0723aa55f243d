package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMA_Basic(t *testing.T) {
	out := sma([]float64{1, 2, 3, 4, 5}, 3)

	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 2.0, out[2], 1e-12)
	assert.InDelta(t, 3.0, out[3], 1e-12)
	assert.InDelta(t, 4.0, out[4], 1e-12)
}

func TestEMA_Span2(t *testing.T) {
	// alpha = 2/3, sembrada en values[0]=2:
	// acc1 = 2/3·4 + 1/3·2 = 10/3
	// acc2 = 2/3·6 + 1/3·(10/3) = 46/9
	out := ema([]float64{2, 4, 6}, 2)

	assert.True(t, math.IsNaN(out[0]))
	assert.InDelta(t, 10.0/3.0, out[1], 1e-12)
	assert.InDelta(t, 46.0/9.0, out[2], 1e-12)
}

func TestRSI_Edges(t *testing.T) {
	// Solo subidas → 100; solo bajadas → 0; plano → 50
	up := rsi([]float64{1, 2, 3}, 2)
	down := rsi([]float64{3, 2, 1}, 2)
	flat := rsi([]float64{1, 1, 1}, 2)

	assert.InDelta(t, 100.0, up[2], 1e-12)
	assert.InDelta(t, 0.0, down[2], 1e-12)
	assert.InDelta(t, 50.0, flat[2], 1e-12)
}

func TestRSI_Mixed(t *testing.T) {
	// deltas: +2, -1 → avgG=1, avgL=0.5, RS=2 → RSI = 100 - 100/3 = 66.667
	out := rsi([]float64{10, 12, 11}, 2)
	assert.InDelta(t, 66.6667, out[2], 0.001)
}

func TestRealizedVol_HandComputed(t *testing.T) {
	rets := []float64{0, 0.01, -0.01, 0.02}
	out := realizedVol(rets, 2)

	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	// ventana [0.01, -0.01]: media 0, desv poblacional 0.01
	assert.InDelta(t, 0.01*math.Sqrt(252), out[2], 1e-9)
	// ventana [-0.01, 0.02]: media 0.005, desv 0.015
	assert.InDelta(t, 0.015*math.Sqrt(252), out[3], 1e-9)
}

func TestWarmupBars(t *testing.T) {
	assert.Equal(t, 200, DefaultIndicatorParams().WarmupBars())

	p := IndicatorParams{
		FastTrendWindow: 3, SlowTrendWindow: 5,
		BandWindow: 4, OscWindow: 3,
		MACDFast: 2, MACDSlow: 4, MACDSignal: 2,
		VolWindow: 3,
	}
	// max(5, 3, 4, 3+1, 4+2-1, 3+1) = 5
	assert.Equal(t, 5, p.WarmupBars())
}

func TestComputeIndicators_WarmupAndAlignment(t *testing.T) {
	p := IndicatorParams{
		FastTrendWindow: 3, SlowTrendWindow: 6,
		BandWindow: 4, OscWindow: 3,
		MACDFast: 2, MACDSlow: 4, MACDSignal: 2,
		VolWindow: 3,
	}
	bars := makeTrendBars(t, 40, 100, 0.01)

	rows := ComputeIndicators(bars, p)
	require.Len(t, rows, len(bars))

	warmup := p.WarmupBars()
	assert.False(t, rows[0].Defined())
	assert.False(t, rows[1].Defined())
	for i := warmup; i < len(rows); i++ {
		assert.True(t, rows[i].Defined(), "row %d should be defined", i)
		assert.False(t, math.IsNaN(rows[i].Volatility), "vol %d", i)
	}

	// Serie estrictamente alcista: la EMA rápida va por encima de la lenta
	// y el histograma de momentum es positivo.
	last := rows[len(rows)-1]
	assert.Greater(t, last.FastTrend, last.SlowTrend)
	assert.Greater(t, last.MACDHist, 0.0)
	assert.Greater(t, last.Oscillator, 50.0)
}

// makeTrendBars genera una serie geométrica de barras diarias.
func makeTrendBars(t *testing.T, n int, start, drift float64) []Bar {
	t.Helper()
	bars := make([]Bar, n)
	price := start
	d := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		bars[i] = Bar{Date: d, Open: price, High: price, Low: price, Close: price, AdjClose: price, Volume: 1000}
		price *= 1 + drift
		d = d.AddDate(0, 0, 1)
	}
	require.NoError(t, ValidateBars(bars))
	return bars
}
