package domain

import (
	"fmt"
	"time"
)

// Bar representa un día de trading normalizado.
// AdjClose es la única base para calcular retornos: incorpora splits y
// dividendos, así que el equity curve no se distorsiona con eventos corporativos.
type Bar struct {
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   float64
}

// ValidateBars verifica las invariantes de la serie: fechas estrictamente
// crecientes, sin duplicados, y AdjClose > 0 en todas las filas.
func ValidateBars(bars []Bar) error {
	for i, b := range bars {
		if b.AdjClose <= 0 {
			return fmt.Errorf("domain.ValidateBars: bar %s: adjusted close %.4f <= 0",
				b.Date.Format("2006-01-02"), b.AdjClose)
		}
		if i == 0 {
			continue
		}
		if !bars[i-1].Date.Before(b.Date) {
			return fmt.Errorf("domain.ValidateBars: dates not strictly increasing at %s (prev %s)",
				b.Date.Format("2006-01-02"), bars[i-1].Date.Format("2006-01-02"))
		}
	}
	return nil
}

// Returns calcula los retornos close-to-close sobre AdjClose.
// El primer retorno es 0 por construcción (no hay cierre anterior).
func Returns(bars []Bar) []float64 {
	ret := make([]float64, len(bars))
	for i := 1; i < len(bars); i++ {
		ret[i] = bars[i].AdjClose/bars[i-1].AdjClose - 1.0
	}
	return ret
}

// AdjCloses extrae la serie de cierres ajustados.
func AdjCloses(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.AdjClose
	}
	return out
}

// SliceByDate devuelve las barras con from < date <= to. Un from en cero
// significa "desde el principio"; un to en cero significa "hasta el final".
// La convención de borde (exclusivo por la izquierda) evita que la fecha de
// corte aparezca en dos particiones del selector de parámetros.
func SliceByDate(bars []Bar, from, to time.Time) []Bar {
	out := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if !from.IsZero() && !b.Date.After(from) {
			continue
		}
		if !to.IsZero() && b.Date.After(to) {
			continue
		}
		out = append(out, b)
	}
	return out
}
