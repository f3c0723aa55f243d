package backtest

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/alejandrodnm/trendbot/internal/domain"
)

// engine.go — replay de ejecución con disciplina estricta de timing.
//
// Convención (IMPORTANTE):
//   - El caller pasa la exposición objetivo DECISION-TIME, sin shift.
//   - Este motor hace el shift de exactamente UNA barra, una única vez.
// Ese es el único punto de todo el sistema donde ocurre un shift: impide que
// una decisión opere sobre el cierre de su propio día.

// ErrInsufficientHistory indica menos barras que el warm-up mínimo: el run
// se aborta entero, sin resultado parcial.
var ErrInsufficientHistory = errors.New("backtest: insufficient history")

const initialCapital = 1.0

// Result contiene las series alineadas por fecha de un replay completo.
// Todas son de la misma longitud que la serie de barras de entrada.
type Result struct {
	Dates       []time.Time
	Decision    []float64 // exposición objetivo decision-time (sin shift)
	Position    []float64 // posición ejecutada: Decision desplazada una barra
	Ret         []float64 // retorno close-to-close de la barra
	Turnover    []float64 // |ΔPosition|
	CostRet     []float64 // coste proporcional sobre turnover
	StrategyRet []float64 // Position×Ret - CostRet
	Equity      []float64 // producto acumulado de (1+StrategyRet), parte de 1.0
	Drawdown    []float64 // Equity/máximo corrido - 1
}

// Run reproduce la serie de decisiones contra las barras y devuelve el
// equity curve con costes. position[t] = decision[t-1]; position[0] = 0.
func Run(bars []domain.Bar, decisions []float64, tradingCost float64) (*Result, error) {
	n := len(bars)
	if n < 2 {
		return nil, fmt.Errorf("backtest.Run: %w: %d bars", ErrInsufficientHistory, n)
	}
	if len(decisions) != n {
		return nil, fmt.Errorf("backtest.Run: %d decisions for %d bars", len(decisions), n)
	}

	r := &Result{
		Dates:       make([]time.Time, n),
		Decision:    make([]float64, n),
		Position:    make([]float64, n),
		Ret:         domain.Returns(bars),
		Turnover:    make([]float64, n),
		CostRet:     make([]float64, n),
		StrategyRet: make([]float64, n),
		Equity:      make([]float64, n),
		Drawdown:    make([]float64, n),
	}
	copy(r.Decision, decisions)

	for i, b := range bars {
		r.Dates[i] = b.Date
		if i > 0 {
			r.Position[i] = decisions[i-1]
		}
	}

	equity := initialCapital
	runningMax := equity
	prevPos := 0.0
	for i := 0; i < n; i++ {
		r.Turnover[i] = math.Abs(r.Position[i] - prevPos)
		prevPos = r.Position[i]

		r.CostRet[i] = tradingCost * r.Turnover[i]
		r.StrategyRet[i] = r.Position[i]*r.Ret[i] - r.CostRet[i]

		equity *= 1.0 + r.StrategyRet[i]
		if equity > runningMax {
			runningMax = equity
		}
		r.Equity[i] = equity
		r.Drawdown[i] = equity/runningMax - 1.0
	}
	return r, nil
}

// RunBenchmark reproduce el buy & hold justo: decisión constante 1.0 con
// exactamente la misma fórmula de retornos y costes que la estrategia.
// Se reduce a compounding puro con un coste único de entrada (turnover 1 en
// la barra 1) y cero turnover posterior.
func RunBenchmark(bars []domain.Bar, tradingCost float64) (*Result, error) {
	ones := make([]float64, len(bars))
	for i := range ones {
		ones[i] = 1.0
	}
	return Run(bars, ones, tradingCost)
}

// Trades reconstruye los trades cerrados: tramos máximos contiguos de
// posición ejecutada distinta de cero, con su retorno neto compuesto.
func Trades(r *Result) []domain.Trade {
	const eps = 1e-12

	var trades []domain.Trade
	inTrade := false
	start := 0
	compound := 1.0

	closeTrade := func(end int) {
		trades = append(trades, domain.Trade{
			EntryDate:   r.Dates[start],
			ExitDate:    r.Dates[end],
			HoldingBars: end - start + 1,
			Return:      compound - 1.0,
		})
	}

	for i := range r.Position {
		active := math.Abs(r.Position[i]) > eps
		switch {
		case !inTrade && active:
			inTrade = true
			start = i
			compound = 1.0 + r.StrategyRet[i]
		case inTrade && active:
			compound *= 1.0 + r.StrategyRet[i]
		case inTrade && !active:
			closeTrade(i - 1)
			inTrade = false
		}
	}
	if inTrade {
		closeTrade(len(r.Position) - 1)
	}
	return trades
}
