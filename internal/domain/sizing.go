package domain

import "math"

// sizing.go — del estado de señal al tamaño objetivo de la posición.
//
// El sizing es estrictamente un overlay de reducción de riesgo: la exposición
// base por régimen nunca supera 1.0, y solo el vol targeting puede escalarla
// por encima o por debajo, siempre acotado por el techo de apalancamiento
// (reducido a su vez por un rating SELL efectivo).

// SizingParams agrupa los parámetros del risk sizer.
type SizingParams struct {
	TargetVol       float64 // vol anualizada objetivo (p.ej. 0.20)
	MaxLeverage     float64 // techo duro de exposición
	SellCeilingMult float64 // multiplicador del techo con rating SELL (0.3)
}

// BaseExposure devuelve la exposición base por régimen. Solo aplica con la
// señal en Long; Flat es 0 sea cual sea el régimen.
//
//	Bull    → 1.00
//	Neutral → 0.50
//	Bear    → 0.25 solo con score perfecto (5); si no, 0
func BaseExposure(state SignalState, regime Regime) float64 {
	if !state.Defined || !state.IsLong {
		return 0
	}
	switch regime {
	case RegimeBull:
		return 1.0
	case RegimeNeutral:
		return 0.5
	case RegimeBear:
		if state.Score == ScoreMax {
			return 0.25
		}
		return 0
	default:
		return 0
	}
}

// VolScale devuelve el factor de vol targeting: targetVol / realizedVol.
// Con vol realizada indefinida (warm-up) o cero el factor es neutro (1.0),
// nunca infinito — es una condición recuperable, no un error.
func VolScale(targetVol, realizedVol float64) float64 {
	if math.IsNaN(realizedVol) || realizedVol <= 0 {
		return 1.0
	}
	return targetVol / realizedVol
}

// TargetExposure compone la decisión del día: exposición base por régimen,
// escalada por vol targeting y recortada al techo vigente. `cap` ya incorpora
// la reducción por rating SELL (ver RatingView.CapOn). El resultado es una
// cantidad decision-time: lo que se sabe al cierre del día, aún sin ejecutar.
func TargetExposure(state SignalState, regime Regime, realizedVol float64, cap float64, p SizingParams) float64 {
	base := BaseExposure(state, regime)
	if base == 0 {
		return 0
	}
	scaled := base * VolScale(p.TargetVol, realizedVol)
	return clip(scaled, 0, cap)
}

// BuildDecisions recorre la serie completa y produce la exposición objetivo
// decision-time por fecha. No hay ningún shift aquí: el retraso de ejecución
// de una barra se aplica una única vez, dentro del backtester.
func BuildDecisions(bars []Bar, rows []IndicatorRow, states []SignalState, regimeBuffer float64, rating RatingView, p SizingParams) []float64 {
	decisions := make([]float64, len(bars))
	for i, b := range bars {
		regime := ClassifyRegime(b.AdjClose, rows[i].SlowTrend, regimeBuffer)
		cap := rating.CapOn(b.Date, p.MaxLeverage, p.SellCeilingMult)
		decisions[i] = TargetExposure(states[i], regime, rows[i].Volatility, cap, p)
	}
	return decisions
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
