package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/trendbot/internal/domain"
)

// RunStorage persiste lo único que sobrevive entre runs: barras crudas
// cacheadas, snapshots point-in-time del rating externo, y el historial de
// resúmenes. Todo lo demás se recalcula entero en cada run.
type RunStorage interface {
	// SaveBars cachea la serie diaria de un ticker (upsert por fecha).
	SaveBars(ctx context.Context, ticker string, bars []domain.Bar) error

	// GetBars devuelve las barras cacheadas ordenadas por fecha.
	GetBars(ctx context.Context, ticker string) ([]domain.Bar, error)

	// SaveRating guarda un snapshot point-in-time del rating externo.
	// Nunca sobreescribe snapshots anteriores: cada as-of es un hecho.
	SaveRating(ctx context.Context, ticker string, view domain.RatingView) error

	// GetRating devuelve el último snapshot por as-of para el ticker.
	// Sin snapshot devuelve un RatingView vacío (no vinculante), sin error.
	GetRating(ctx context.Context, ticker string) (domain.RatingView, error)

	// SaveRun persiste el resumen de un backtest completado.
	SaveRun(ctx context.Context, rec domain.RunRecord) error

	// GetRuns devuelve los runs del ticker, más recientes primero.
	GetRuns(ctx context.Context, ticker string, since time.Time) ([]domain.RunRecord, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
