package ports

import (
	"context"

	"github.com/alejandrodnm/trendbot/internal/domain"
)

// RatingProvider obtiene el rating fundamental externo de un ticker.
// Se suministra una vez por run y es inmutable durante el mismo; el motor
// lo re-valida (orden de as-of) en cada acceso.
type RatingProvider interface {
	// FetchRating devuelve el rating point-in-time vigente. Un RatingView
	// con Rating vacío significa "sin rating": siempre no vinculante.
	FetchRating(ctx context.Context, ticker string) (domain.RatingView, error)
}
