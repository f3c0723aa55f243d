package domain

import "time"

// Trade es una entidad derivada: un tramo máximo contiguo de posición
// ejecutada distinta de cero. Se usa solo para reporting (hit rate, holding
// medio) — nunca para decidir.
type Trade struct {
	EntryDate   time.Time
	ExitDate    time.Time
	HoldingBars int
	Return      float64 // retorno neto compuesto del tramo
}

// HoldingDays devuelve la duración del trade en días de calendario.
func (t Trade) HoldingDays() float64 {
	return t.ExitDate.Sub(t.EntryDate).Hours() / 24.0
}
