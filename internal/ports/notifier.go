package ports

import (
	"context"

	"github.com/alejandrodnm/trendbot/internal/backtest"
)

// Notifier presenta el resultado de un run al usuario.
type Notifier interface {
	// NotifySelection muestra el run completo: resumen estrategia vs
	// benchmark, trades y tabla de sensibilidad de validación.
	// En la implementación de consola, imprime tablas formateadas.
	NotifySelection(ctx context.Context, ticker string, sel *backtest.Selection) error
}
