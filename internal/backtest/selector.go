package backtest

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/alejandrodnm/trendbot/internal/domain"
)

// selector.go — selección de parámetros sin fuga de información.
//
// Protocolo: se corta la historia en Train / Validation / Test por fechas
// fijas, cada configuración del grid se corre SOLO sobre Train+Validation,
// y gana la de mayor Sharpe en el tramo de Validation. El tramo de Test se
// evalúa después con la configuración ya elegida, como comprobación
// out-of-sample: jamás influye en la selección.

// GridEntry es una combinación de ventanas candidata del grid.
type GridEntry struct {
	FastTrendWindow int
	SlowTrendWindow int
	RegimeBuffer    float64
	VolWindow       int
}

// String devuelve la etiqueta compacta para la tabla de sensibilidad.
func (g GridEntry) String() string {
	return fmt.Sprintf("fast=%d slow=%d buf=%.2f vol=%d",
		g.FastTrendWindow, g.SlowTrendWindow, g.RegimeBuffer, g.VolWindow)
}

// DefaultGrid devuelve el grid de producción: pocas combinaciones
// interpretables, no una búsqueda masiva.
func DefaultGrid() []GridEntry {
	return []GridEntry{
		{FastTrendWindow: 20, SlowTrendWindow: 100, RegimeBuffer: 0.01, VolWindow: 20},
		{FastTrendWindow: 20, SlowTrendWindow: 100, RegimeBuffer: 0.02, VolWindow: 20},
		{FastTrendWindow: 30, SlowTrendWindow: 150, RegimeBuffer: 0.01, VolWindow: 20},
		{FastTrendWindow: 50, SlowTrendWindow: 200, RegimeBuffer: 0.01, VolWindow: 20},
	}
}

// apply produce la StrategyConfig del candidato partiendo de la base.
func (g GridEntry) apply(base StrategyConfig) StrategyConfig {
	cfg := base
	cfg.Indicators.FastTrendWindow = g.FastTrendWindow
	cfg.Indicators.SlowTrendWindow = g.SlowTrendWindow
	cfg.Indicators.VolWindow = g.VolWindow
	cfg.RegimeBuffer = g.RegimeBuffer
	return cfg
}

// Candidate es una fila de la tabla de sensibilidad.
type Candidate struct {
	Grid             GridEntry
	ValidationSharpe float64
	FullSample       domain.PerformanceSummary // rerun full-sample (solo apéndice)
	Selected         bool
}

// Selection es el resultado completo del protocolo.
type Selection struct {
	Best       GridEntry
	Candidates []Candidate
	TestSharpe float64    // out-of-sample, con la config ya elegida
	Final      *RunOutput // full-sample con la config elegida
}

// SelectParams ejecuta el protocolo de selección. trainEnd y valEnd son las
// fechas de corte (cada partición excluye su borde izquierdo, así ninguna
// fecha cae en dos tramos). El reporte full-sample siempre usa la única
// configuración elegida, re-ejecutada sobre toda la historia.
func SelectParams(ctx context.Context, bars []domain.Bar, base StrategyConfig, grid []GridEntry, trainEnd, valEnd time.Time, rating domain.RatingView) (*Selection, error) {
	if len(grid) == 0 {
		return nil, fmt.Errorf("backtest.SelectParams: %w: empty grid", ErrInvalidConfig)
	}
	if !trainEnd.Before(valEnd) {
		return nil, fmt.Errorf("backtest.SelectParams: %w: train_end %s >= val_end %s",
			ErrInvalidConfig, trainEnd.Format("2006-01-02"), valEnd.Format("2006-01-02"))
	}

	trainVal := domain.SliceByDate(bars, time.Time{}, valEnd)

	// Un backtest por candidato, sobre Train+Validation solamente.
	runs := runGridConcurrent(ctx, trainVal, base, grid, rating, 0)

	sel := &Selection{Candidates: make([]Candidate, 0, len(grid))}
	bestIdx := -1
	bestScore := math.Inf(-1)

	for i, g := range grid {
		if runs[i].err != nil {
			return nil, fmt.Errorf("backtest.SelectParams: grid %s: %w", g, runs[i].err)
		}

		// Sharpe SOLO sobre el tramo de validation del replay Train+Validation.
		valRets := sliceRetsAfter(runs[i].out.Strategy, trainEnd)
		score := SharpeOver(valRets)

		sel.Candidates = append(sel.Candidates, Candidate{Grid: g, ValidationSharpe: score})
		// Empate: gana el primero en orden de grid.
		if bestIdx < 0 || score > bestScore {
			bestIdx, bestScore = i, score
		}
	}

	sel.Best = grid[bestIdx]
	sel.Candidates[bestIdx].Selected = true

	// Apéndice de sensibilidad: cada candidato re-ejecutado full-sample.
	fullRuns := runGridConcurrent(ctx, bars, base, grid, rating, 0)
	for i := range sel.Candidates {
		if fullRuns[i].err != nil {
			return nil, fmt.Errorf("backtest.SelectParams: sensitivity %s: %w", sel.Candidates[i].Grid, fullRuns[i].err)
		}
		sel.Candidates[i].FullSample = fullRuns[i].out.StrategySummary
	}

	// El reporte consume el rerun full-sample de la config elegida.
	final := fullRuns[bestIdx].out
	sel.Final = final

	// Comprobación out-of-sample sobre Test. Solo informativa.
	sel.TestSharpe = SharpeOver(sliceRetsAfter(final.Strategy, valEnd))

	return sel, nil
}

// sliceRetsAfter devuelve los retornos netos de la estrategia con fecha
// estrictamente posterior al corte.
func sliceRetsAfter(r *Result, cutoff time.Time) []float64 {
	rets := make([]float64, 0, len(r.StrategyRet))
	for i, d := range r.Dates {
		if d.After(cutoff) {
			rets = append(rets, r.StrategyRet[i])
		}
	}
	return rets
}
