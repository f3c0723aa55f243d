package backtest

import (
	"math"

	"github.com/alejandrodnm/trendbot/internal/domain"
)

// metrics.go — estadísticas de performance sobre un Result.
//
// Convenciones fijadas del proyecto (cambiarlas cambia los números por un
// factor constante, así que van documentadas aquí y solo aquí):
//   - Sharpe: media/desviación POBLACIONAL de retornos diarios en exceso,
//     anualizado con √252, risk-free 0 por defecto.
//   - CAGR: años de CALENDARIO entre la primera y la última barra (días/365.25).
//   - hit rate: fracción de trades cerrados con retorno neto positivo — NO la
//     fracción de días positivos.

// Summarize calcula el domain.PerformanceSummary de un replay. Los trades se
// reconstruyen del propio Result si no se pasan.
func Summarize(r *Result, trades []domain.Trade) domain.PerformanceSummary {
	if trades == nil {
		trades = Trades(r)
	}

	n := len(r.Equity)
	s := domain.PerformanceSummary{
		EquityEnd: r.Equity[n-1],
		NumTrades: len(trades),
	}
	s.TotalReturn = s.EquityEnd/initialCapital - 1.0

	years := r.Dates[n-1].Sub(r.Dates[0]).Hours() / 24.0 / 365.25
	if years > 0 {
		s.CAGR = math.Pow(s.EquityEnd/initialCapital, 1.0/years) - 1.0
	} else {
		s.CAGR = math.NaN()
	}

	mean, std := meanStd(r.StrategyRet)
	ann := math.Sqrt(float64(domain.TradingDaysPerYear))
	s.AnnualVol = std * ann
	if std > 0 {
		s.Sharpe = mean / std * ann
	}

	s.MaxDrawdown = 0
	for _, dd := range r.Drawdown {
		if dd < s.MaxDrawdown {
			s.MaxDrawdown = dd
		}
	}

	var wins int
	var holdingDays float64
	for _, t := range trades {
		if t.Return > 0 {
			wins++
		}
		holdingDays += t.HoldingDays()
	}
	if len(trades) > 0 {
		s.HitRate = float64(wins) / float64(len(trades))
		s.AvgHoldingDays = holdingDays / float64(len(trades))
	} else {
		s.HitRate = math.NaN()
		s.AvgHoldingDays = math.NaN()
	}

	var active int
	for i := range r.Position {
		if math.Abs(r.Position[i]) > 1e-9 {
			active++
		}
		s.TurnoverSum += r.Turnover[i]
	}
	s.Exposure = float64(active) / float64(n)

	return s
}

// minSharpeLen es el mínimo de retornos para que un Sharpe de validación sea
// comparable; por debajo la configuración puntúa -Inf y nunca se selecciona.
const minSharpeLen = 60

// SharpeOver calcula el Sharpe anualizado de un tramo de retornos diarios.
// Devuelve -Inf con muestra insuficiente o desviación cero: así una
// configuración degenerada jamás gana la selección por accidente.
func SharpeOver(rets []float64) float64 {
	if len(rets) < minSharpeLen {
		return math.Inf(-1)
	}
	mean, std := meanStd(rets)
	if std == 0 {
		return math.Inf(-1)
	}
	return mean / std * math.Sqrt(float64(domain.TradingDaysPerYear))
}

// meanStd devuelve media y desviación estándar poblacional (ddof=0).
func meanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(xs)))
}
