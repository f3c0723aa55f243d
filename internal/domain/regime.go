package domain

import "math"

// Regime clasifica el mercado en tres estados según el precio contra la
// tendencia lenta, con una banda muerta para no oscilar pegado a la línea.
type Regime int8

const (
	RegimeNeutral Regime = 0
	RegimeBull    Regime = 1
	RegimeBear    Regime = -1
)

// String devuelve la etiqueta legible del régimen.
func (r Regime) String() string {
	switch r {
	case RegimeBull:
		return "Bull"
	case RegimeBear:
		return "Bear"
	default:
		return "Neutral"
	}
}

// ClassifyRegime es una función pura de (precio, tendencia lenta, buffer):
//
//	Bull    si price > slowTrend × (1 + buffer)
//	Bear    si price < slowTrend × (1 - buffer)
//	Neutral en la banda intermedia
//
// Con la tendencia lenta aún en warm-up (NaN) devuelve Neutral: sin tendencia
// definida no hay régimen que declarar.
func ClassifyRegime(price, slowTrend, bufferPct float64) Regime {
	if math.IsNaN(slowTrend) {
		return RegimeNeutral
	}
	switch {
	case price > slowTrend*(1.0+bufferPct):
		return RegimeBull
	case price < slowTrend*(1.0-bufferPct):
		return RegimeBear
	default:
		return RegimeNeutral
	}
}
