package domain

import (
	"fmt"
	"strings"
	"time"
)

// Rating es la recomendación fundamental externa (BUY/HOLD/SELL).
type Rating string

const (
	RatingBuy  Rating = "BUY"
	RatingHold Rating = "HOLD"
	RatingSell Rating = "SELL"
)

// ParseRating normaliza el texto del proveedor externo a un Rating.
func ParseRating(s string) (Rating, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY", "STRONG BUY":
		return RatingBuy, nil
	case "HOLD", "":
		return RatingHold, nil
	case "SELL", "STRONG SELL":
		return RatingSell, nil
	default:
		return "", fmt.Errorf("domain.ParseRating: unknown rating %q", s)
	}
}

// RatingView es el hecho point-in-time suministrado una vez por run:
// inmutable, y aplicable SOLO desde AsOf en adelante. El motor nunca puede
// aplicar un rating a fechas anteriores a su existencia.
type RatingView struct {
	Rating Rating
	AsOf   time.Time
	Source string
}

// EffectiveOn indica si el rating ya existía en la fecha dada. Un AsOf en
// cero se interpreta como "vigente durante toda la muestra" (se documenta en
// el reporte).
func (v RatingView) EffectiveOn(date time.Time) bool {
	if v.Rating == "" {
		return false
	}
	return v.AsOf.IsZero() || !date.Before(v.AsOf)
}

// CapOn devuelve el techo de apalancamiento vigente en la fecha: el techo
// base, reducido por sellMult solo si un rating SELL ya es efectivo.
// BUY/HOLD (o sin rating todavía) dejan el techo intacto — el overlay
// fundamental solo puede reducir riesgo, nunca amplificarlo.
func (v RatingView) CapOn(date time.Time, baseMaxLeverage, sellMult float64) float64 {
	if v.Rating == RatingSell && v.EffectiveOn(date) {
		return baseMaxLeverage * sellMult
	}
	return baseMaxLeverage
}
