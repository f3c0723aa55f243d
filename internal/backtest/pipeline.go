package backtest

import (
	"errors"
	"fmt"

	"github.com/alejandrodnm/trendbot/internal/domain"
)

// pipeline.go — corre las etapas completas sobre una serie de barras:
// indicadores → score/estado → régimen → exposición objetivo → replay.
// Cada etapa es una transformación pura sobre series inmutables; ninguna
// muta la salida de la anterior.

// ErrInvalidConfig indica parámetros fuera de rango. Es fatal y se rechaza
// antes de empezar cualquier cálculo.
var ErrInvalidConfig = errors.New("backtest: invalid config")

// StrategyConfig agrupa todos los parámetros que definen un run.
type StrategyConfig struct {
	Indicators     domain.IndicatorParams
	EntryThreshold int
	HoldThreshold  int
	RegimeBuffer   float64 // banda muerta del clasificador de régimen
	Sizing         domain.SizingParams
	TradingCost    float64 // coste proporcional sobre turnover
}

// DefaultStrategyConfig devuelve la configuración de producción del proyecto.
func DefaultStrategyConfig() StrategyConfig {
	return StrategyConfig{
		Indicators:     domain.DefaultIndicatorParams(),
		EntryThreshold: domain.DefaultEntryThreshold,
		HoldThreshold:  domain.DefaultHoldThreshold,
		RegimeBuffer:   0.01,
		Sizing: domain.SizingParams{
			TargetVol:       0.20,
			MaxLeverage:     1.0,
			SellCeilingMult: 0.3,
		},
		TradingCost: 0.0005,
	}
}

// Validate rechaza configuraciones insanas antes de tocar datos.
func (c StrategyConfig) Validate() error {
	p := c.Indicators
	switch {
	case c.HoldThreshold > c.EntryThreshold:
		return fmt.Errorf("%w: hold_threshold %d > entry_threshold %d", ErrInvalidConfig, c.HoldThreshold, c.EntryThreshold)
	case c.EntryThreshold < 1 || c.EntryThreshold > domain.ScoreMax:
		return fmt.Errorf("%w: entry_threshold %d outside [1,%d]", ErrInvalidConfig, c.EntryThreshold, domain.ScoreMax)
	case c.HoldThreshold < 0:
		return fmt.Errorf("%w: hold_threshold %d < 0", ErrInvalidConfig, c.HoldThreshold)
	case p.FastTrendWindow <= 1 || p.SlowTrendWindow <= 1 || p.BandWindow <= 1 || p.OscWindow <= 1 || p.VolWindow <= 1:
		return fmt.Errorf("%w: indicator windows must be > 1", ErrInvalidConfig)
	case p.FastTrendWindow >= p.SlowTrendWindow:
		return fmt.Errorf("%w: fast trend window %d >= slow %d", ErrInvalidConfig, p.FastTrendWindow, p.SlowTrendWindow)
	case p.MACDFast <= 0 || p.MACDSlow <= 0 || p.MACDSignal <= 0 || p.MACDFast >= p.MACDSlow:
		return fmt.Errorf("%w: MACD windows (%d,%d,%d)", ErrInvalidConfig, p.MACDFast, p.MACDSlow, p.MACDSignal)
	case c.RegimeBuffer < 0 || c.RegimeBuffer >= 1:
		return fmt.Errorf("%w: regime_buffer_pct %.4f outside [0,1)", ErrInvalidConfig, c.RegimeBuffer)
	case c.Sizing.TargetVol <= 0:
		return fmt.Errorf("%w: target_volatility %.4f <= 0", ErrInvalidConfig, c.Sizing.TargetVol)
	case c.Sizing.MaxLeverage <= 0:
		return fmt.Errorf("%w: max_leverage %.4f <= 0", ErrInvalidConfig, c.Sizing.MaxLeverage)
	case c.Sizing.SellCeilingMult <= 0 || c.Sizing.SellCeilingMult > 1:
		return fmt.Errorf("%w: sell_ceiling_multiplier %.4f outside (0,1]", ErrInvalidConfig, c.Sizing.SellCeilingMult)
	case c.TradingCost < 0:
		return fmt.Errorf("%w: trading_cost_rate %.6f < 0", ErrInvalidConfig, c.TradingCost)
	}
	return nil
}

// RunOutput es todo lo que un run completo produce para reporting.
type RunOutput struct {
	Config           StrategyConfig
	Rating           domain.RatingView
	Indicators       []domain.IndicatorRow
	States           []domain.SignalState
	Strategy         *Result
	Benchmark        *Result
	Trades           []domain.Trade
	StrategySummary  domain.PerformanceSummary
	BenchmarkSummary domain.PerformanceSummary
}

// RunStrategy ejecuta el pipeline de punta a punta sobre una serie:
// indicadores, señal, sizing y replay, más el benchmark buy & hold.
// Falla (sin resultado parcial) con config inválida, barras mal ordenadas o
// historia menor que el warm-up — nunca rellena con ceros en silencio.
func RunStrategy(bars []domain.Bar, cfg StrategyConfig, rating domain.RatingView) (*RunOutput, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("backtest.RunStrategy: %w", err)
	}
	if err := domain.ValidateBars(bars); err != nil {
		return nil, fmt.Errorf("backtest.RunStrategy: %w", err)
	}
	if warmup := cfg.Indicators.WarmupBars(); len(bars) <= warmup {
		return nil, fmt.Errorf("backtest.RunStrategy: %w: %d bars <= warmup %d",
			ErrInsufficientHistory, len(bars), warmup)
	}

	rows := domain.ComputeIndicators(bars, cfg.Indicators)
	states := domain.RunHysteresis(domain.AdjCloses(bars), rows, cfg.EntryThreshold, cfg.HoldThreshold)
	decisions := domain.BuildDecisions(bars, rows, states, cfg.RegimeBuffer, rating, cfg.Sizing)

	strat, err := Run(bars, decisions, cfg.TradingCost)
	if err != nil {
		return nil, fmt.Errorf("backtest.RunStrategy: %w", err)
	}
	bench, err := RunBenchmark(bars, cfg.TradingCost)
	if err != nil {
		return nil, fmt.Errorf("backtest.RunStrategy: benchmark: %w", err)
	}

	trades := Trades(strat)
	return &RunOutput{
		Config:           cfg,
		Rating:           rating,
		Indicators:       rows,
		States:           states,
		Strategy:         strat,
		Benchmark:        bench,
		Trades:           trades,
		StrategySummary:  Summarize(strat, trades),
		BenchmarkSummary: Summarize(bench, nil),
	}, nil
}
