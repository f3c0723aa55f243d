package domain

import (
	"math"
)

// TradingDaysPerYear es el factor de anualización fijo usado en todo el
// proyecto (volatilidad realizada y Sharpe). Documentado aquí porque cambiarlo
// cambia el Sharpe reportado por un factor constante.
const TradingDaysPerYear = 252

// IndicatorParams define las ventanas de los indicadores. Solo las ventanas
// de tendencia y de volatilidad entran en el grid del selector; el resto son
// convenciones estándar fijas.
type IndicatorParams struct {
	FastTrendWindow int // EMA rápida (tendencia)
	SlowTrendWindow int // EMA lenta (tendencia + régimen)
	BandWindow      int // banda de reversión a la media (SMA)
	OscWindow       int // oscilador de momentum (RSI)
	MACDFast        int
	MACDSlow        int
	MACDSignal      int
	VolWindow       int // volatilidad realizada
}

// DefaultIndicatorParams devuelve las ventanas estándar del proyecto.
func DefaultIndicatorParams() IndicatorParams {
	return IndicatorParams{
		FastTrendWindow: 50,
		SlowTrendWindow: 200,
		BandWindow:      20,
		OscWindow:       14,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		VolWindow:       20,
	}
}

// WarmupBars devuelve el número de barras sin indicador definido: la ventana
// de lookback más larga en uso. Antes de esa barra no se produce señal.
func (p IndicatorParams) WarmupBars() int {
	w := p.SlowTrendWindow
	for _, c := range []int{
		p.FastTrendWindow,
		p.BandWindow,
		p.OscWindow + 1, // el RSI necesita window deltas → window+1 barras
		p.MACDSlow + p.MACDSignal - 1,
		p.VolWindow + 1, // la vol necesita window retornos → window+1 barras
	} {
		if c > w {
			w = c
		}
	}
	return w
}

// IndicatorRow contiene los valores derivados de un día. Los campos valen NaN
// durante el warm-up de su ventana; Defined() indica si la fila completa está
// lista para puntuar.
type IndicatorRow struct {
	FastTrend  float64 // EMA rápida
	SlowTrend  float64 // EMA lenta
	BandMid    float64 // banda media (SMA)
	BandUpper  float64
	BandLower  float64
	Oscillator float64 // RSI
	MACDLine   float64
	MACDSignal float64
	MACDHist   float64 // línea - señal: el valor de momentum que puntúa
	Volatility float64 // vol realizada anualizada (desv. poblacional × √252)
}

// Defined devuelve true si todos los campos que alimentan el score y el
// sizing están calculados (warm-up completado).
func (r IndicatorRow) Defined() bool {
	for _, v := range []float64{r.FastTrend, r.SlowTrend, r.BandMid, r.Oscillator, r.MACDHist} {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}

// ComputeIndicators calcula la tabla de indicadores para la serie de barras.
// Cada valor usa solo barras hasta su propia fecha inclusive — nunca hay
// look-ahead. No se hace forward-fill: un hueco en el calendario simplemente
// no tiene fila.
func ComputeIndicators(bars []Bar, p IndicatorParams) []IndicatorRow {
	n := len(bars)
	closes := AdjCloses(bars)
	rets := Returns(bars)

	emaFast := ema(closes, p.FastTrendWindow)
	emaSlow := ema(closes, p.SlowTrendWindow)
	bandMid := sma(closes, p.BandWindow)
	bandStd := rollingStd(closes, p.BandWindow)
	osc := rsi(closes, p.OscWindow)
	macdLine, macdSig, macdHist := macd(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)
	vol := realizedVol(rets, p.VolWindow)

	rows := make([]IndicatorRow, n)
	for i := 0; i < n; i++ {
		rows[i] = IndicatorRow{
			FastTrend:  emaFast[i],
			SlowTrend:  emaSlow[i],
			BandMid:    bandMid[i],
			BandUpper:  bandMid[i] + 2*bandStd[i],
			BandLower:  bandMid[i] - 2*bandStd[i],
			Oscillator: osc[i],
			MACDLine:   macdLine[i],
			MACDSignal: macdSig[i],
			MACDHist:   macdHist[i],
			Volatility: vol[i],
		}
	}
	return rows
}

// ema calcula la media móvil exponencial con alpha = 2/(span+1), sembrada con
// el primer valor (convención adjust=false). Reporta NaN hasta completar span
// barras para respetar el warm-up, aunque la recursión corre desde la barra 0.
func ema(values []float64, span int) []float64 {
	out := nanSlice(len(values))
	if span <= 0 || len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	acc := values[0]
	for i := 1; i < len(values); i++ {
		acc = alpha*values[i] + (1-alpha)*acc
		if i >= span-1 {
			out[i] = acc
		}
	}
	if span == 1 {
		out[0] = values[0]
	}
	return out
}

// sma es la media móvil simple con ventana completa (sin min_periods parciales).
func sma(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 {
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// rollingStd es la desviación estándar poblacional sobre la ventana completa.
func rollingStd(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 1 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		mean := 0.0
		for j := i - window + 1; j <= i; j++ {
			mean += values[j]
		}
		mean /= float64(window)
		ss := 0.0
		for j := i - window + 1; j <= i; j++ {
			d := values[j] - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(window))
	}
	return out
}

// rsi calcula el RSI clásico con medias simples de ganancias y pérdidas.
// Bordes: sin pérdidas → 100 (o 50 si tampoco hay ganancias); sin ganancias → 0.
func rsi(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 || len(values) < window+1 {
		return out
	}
	gains := make([]float64, len(values))
	losses := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		d := values[i] - values[i-1]
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}
	var sumG, sumL float64
	for i := 1; i < len(values); i++ {
		sumG += gains[i]
		sumL += losses[i]
		if i > window {
			sumG -= gains[i-window]
			sumL -= losses[i-window]
		}
		if i < window {
			continue
		}
		avgG := sumG / float64(window)
		avgL := sumL / float64(window)
		switch {
		case avgL == 0 && avgG == 0:
			out[i] = 50.0
		case avgL == 0:
			out[i] = 100.0
		case avgG == 0:
			out[i] = 0.0
		default:
			rs := avgG / avgL
			out[i] = 100.0 - 100.0/(1.0+rs)
		}
	}
	return out
}

// macd devuelve (línea, señal, histograma). La señal es la EMA del span de
// señal sobre la línea, sembrada en la primera línea definida.
func macd(values []float64, fast, slow, signal int) (line, sig, hist []float64) {
	n := len(values)
	line, sig, hist = nanSlice(n), nanSlice(n), nanSlice(n)
	if fast <= 0 || slow <= 0 || signal <= 0 || fast >= slow {
		return line, sig, hist
	}

	// Las EMAs internas corren desde la barra 0 (sin recorte de warm-up) para
	// que la línea converja igual que la convención recursiva estándar.
	alphaF := 2.0 / (float64(fast) + 1.0)
	alphaS := 2.0 / (float64(slow) + 1.0)
	alphaSig := 2.0 / (float64(signal) + 1.0)

	if n == 0 {
		return line, sig, hist
	}
	accF, accS := values[0], values[0]
	var accSig float64
	sigSeeded := false

	for i := 0; i < n; i++ {
		if i > 0 {
			accF = alphaF*values[i] + (1-alphaF)*accF
			accS = alphaS*values[i] + (1-alphaS)*accS
		}
		l := accF - accS
		if i >= slow-1 {
			line[i] = l
			if !sigSeeded {
				accSig = l
				sigSeeded = true
			} else {
				accSig = alphaSig*l + (1-alphaSig)*accSig
			}
			if i >= slow+signal-2 {
				sig[i] = accSig
				hist[i] = l - accSig
			}
		}
	}
	return line, sig, hist
}

// realizedVol anualiza la desviación poblacional de los retornos diarios
// sobre la ventana dada. rets[0] es 0 por construcción y no cuenta: la ventana
// empieza en el primer retorno real.
func realizedVol(rets []float64, window int) []float64 {
	out := nanSlice(len(rets))
	if window <= 1 {
		return out
	}
	ann := math.Sqrt(float64(TradingDaysPerYear))
	for i := window; i < len(rets); i++ {
		mean := 0.0
		for j := i - window + 1; j <= i; j++ {
			mean += rets[j]
		}
		mean /= float64(window)
		ss := 0.0
		for j := i - window + 1; j <= i; j++ {
			d := rets[j] - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss/float64(window)) * ann
	}
	return out
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}
