package domain

import "time"

// PerformanceSummary es el resumen estandarizado de un equity curve.
// Se calcula una vez por replay (estrategia y benchmark por separado) bajo
// convenciones de contabilidad idénticas, así la comparación es limpia.
type PerformanceSummary struct {
	EquityEnd      float64
	TotalReturn    float64
	CAGR           float64
	Sharpe         float64
	AnnualVol      float64
	MaxDrawdown    float64
	HitRate        float64
	NumTrades      int
	AvgHoldingDays float64
	Exposure       float64 // fracción de días con posición distinta de cero
	TurnoverSum    float64
}

// RunRecord es un run de backtest persistido: el resumen de estrategia y
// benchmark bajo una configuración etiquetada, con su ID de run.
type RunRecord struct {
	ID          string // uuid
	Ticker      string
	CreatedAt   time.Time
	ConfigLabel string // etiqueta compacta de la configuración elegida
	Strategy    PerformanceSummary
	Benchmark   PerformanceSummary
}
