package ports

import (
	"context"

	"github.com/alejandrodnm/trendbot/internal/domain"
)

// BarProvider obtiene la serie diaria normalizada de un ticker.
// El adapter aísla por completo las formas de respuesta del proveedor
// upstream: el core solo ve domain.Bar, nunca shapes específicos del API.
type BarProvider interface {
	// FetchDailyBars devuelve las barras diarias ajustadas del ticker,
	// ordenadas por fecha estrictamente creciente, sin forward-fill:
	// un día sin cotización simplemente no aparece.
	FetchDailyBars(ctx context.Context, ticker string) ([]domain.Bar, error)
}
