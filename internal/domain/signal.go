package domain

// signal.go — score discreto + máquina de estados con histéresis.
//
// El score pondera doble el filtro de tendencia (es el direccional primario)
// y suma tres confirmaciones de un punto: pullback hacia la banda media,
// oscilador por encima del suelo, e histograma de momentum positivo.
// La histéresis usa umbrales asimétricos (entrar exige más que mantener)
// precisamente para no salir en cada caída marginal del score.

const (
	// ScoreMax es el score máximo alcanzable: 2 (tendencia) + 3 confirmaciones.
	ScoreMax = 5

	// DefaultEntryThreshold y DefaultHoldThreshold son los umbrales de la
	// histéresis: Flat→Long con score >= 4, Long→Flat con score < 2.
	DefaultEntryThreshold = 4
	DefaultHoldThreshold  = 2

	// pullbackTolerance admite precios hasta un 1% por encima de la banda
	// media como "no sobre-extendido".
	pullbackTolerance = 1.01

	// oscillatorFloor es el mínimo de RSI que confirma fuerza.
	oscillatorFloor = 45.0
)

// SignalState es la salida por fecha del scorer: el score discreto y el
// estado long/flat. IsLong NO es función pura del score del día — arrastra
// el estado del día anterior (histéresis).
type SignalState struct {
	Score   int
	Defined bool // false durante el warm-up: sin score, sin señal
	IsLong  bool
}

// ScoreRow calcula el score [0,5] de un día. El segundo valor es false si la
// fila de indicadores aún está en warm-up (el score no existe ese día).
func ScoreRow(price float64, row IndicatorRow) (int, bool) {
	if !row.Defined() {
		return 0, false
	}
	score := 0
	if row.FastTrend > row.SlowTrend {
		score += 2
	}
	if price < row.BandMid*pullbackTolerance {
		score++
	}
	if row.Oscillator > oscillatorFloor {
		score++
	}
	if row.MACDHist > 0 {
		score++
	}
	return score, true
}

// RunHysteresis recorre la serie de izquierda a derecha llevando el estado
// anterior (scan explícito, sin flag global). Reglas:
//
//	Flat → Long  si score >= entry
//	Long → Flat  si score <  hold
//	Long se mantiene mientras hold <= score (aunque score < entry)
//
// El estado inicial es Flat y durante el warm-up se queda Flat.
func RunHysteresis(prices []float64, rows []IndicatorRow, entry, hold int) []SignalState {
	states := make([]SignalState, len(rows))
	long := false
	for i, row := range rows {
		score, ok := ScoreRow(prices[i], row)
		if !ok {
			long = false
			states[i] = SignalState{}
			continue
		}
		if long {
			long = score >= hold
		} else {
			long = score >= entry
		}
		states[i] = SignalState{Score: score, Defined: true, IsLong: long}
	}
	return states
}
