package storage

// sqlite.go — persistencia de lo único que sobrevive entre runs.
//
// Estrategia:
//   - `bars`: cache de la serie diaria cruda (UPSERT por ticker+fecha).
//     Permite reruns reproducibles y offline sin volver a pegar al API.
//   - `ratings`: snapshots point-in-time del rating externo. Nunca se
//     sobreescribe un as_of anterior: cada snapshot es un hecho histórico,
//     y leerlo así evita filtrar un rating futuro a una decisión pasada.
//   - `runs`: resumen por backtest completado (estrategia + benchmark).
//   - Prune automático al arrancar: runs > 90d. Barras y ratings no se
//     podan — son el histórico.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alejandrodnm/trendbot/internal/domain"
	"github.com/alejandrodnm/trendbot/internal/ports"
	_ "modernc.org/sqlite"
)

var _ ports.RunStorage = (*SQLiteStorage)(nil)

const schema = `
-- Cache de barras diarias crudas, una fila por ticker+fecha
CREATE TABLE IF NOT EXISTS bars (
    ticker     TEXT     NOT NULL,
    date       DATETIME NOT NULL,
    open       REAL     NOT NULL,
    high       REAL     NOT NULL,
    low        REAL     NOT NULL,
    close      REAL     NOT NULL,
    adj_close  REAL     NOT NULL,
    volume     REAL     NOT NULL,
    PRIMARY KEY (ticker, date)
);

-- Snapshots point-in-time del rating fundamental externo
CREATE TABLE IF NOT EXISTS ratings (
    ticker   TEXT     NOT NULL,
    as_of    DATETIME NOT NULL,
    rating   TEXT     NOT NULL,
    source   TEXT,
    saved_at DATETIME NOT NULL,
    PRIMARY KEY (ticker, as_of)
);

-- Historial de runs completados
CREATE TABLE IF NOT EXISTS runs (
    id            TEXT PRIMARY KEY,
    ticker        TEXT     NOT NULL,
    created_at    DATETIME NOT NULL,
    config_label  TEXT     NOT NULL,
    s_equity_end  REAL NOT NULL, s_cagr   REAL NOT NULL, s_sharpe REAL NOT NULL,
    s_max_dd      REAL NOT NULL, s_hit    REAL NOT NULL, s_trades INTEGER NOT NULL,
    s_turnover    REAL NOT NULL, s_expo   REAL NOT NULL,
    b_equity_end  REAL NOT NULL, b_cagr   REAL NOT NULL, b_sharpe REAL NOT NULL,
    b_max_dd      REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bars_ticker ON bars(ticker, date);
CREATE INDEX IF NOT EXISTS idx_runs_ticker ON runs(ticker, created_at DESC);
`

const retentionRuns = 90 * 24 * time.Hour

// SQLiteStorage implementa ports.RunStorage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia runs antiguos.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveBars hace upsert de la serie completa dentro de una transacción.
func (s *SQLiteStorage) SaveBars(ctx context.Context, ticker string, bars []domain.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveBars: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bars (ticker, date, open, high, low, close, adj_close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ticker, date) DO UPDATE SET
			open      = excluded.open,
			high      = excluded.high,
			low       = excluded.low,
			close     = excluded.close,
			adj_close = excluded.adj_close,
			volume    = excluded.volume`)
	if err != nil {
		return fmt.Errorf("storage.SaveBars: prepare: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, ticker, b.Date.UTC(),
			b.Open, b.High, b.Low, b.Close, b.AdjClose, b.Volume); err != nil {
			return fmt.Errorf("storage.SaveBars: insert %s: %w", b.Date.Format("2006-01-02"), err)
		}
	}
	return tx.Commit()
}

// GetBars devuelve la serie cacheada ordenada por fecha creciente.
func (s *SQLiteStorage) GetBars(ctx context.Context, ticker string) ([]domain.Bar, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, open, high, low, close, adj_close, volume
		FROM bars WHERE ticker = ? ORDER BY date ASC`, ticker)
	if err != nil {
		return nil, fmt.Errorf("storage.GetBars: query: %w", err)
	}
	defer rows.Close()

	var bars []domain.Bar
	for rows.Next() {
		var b domain.Bar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.AdjClose, &b.Volume); err != nil {
			return nil, fmt.Errorf("storage.GetBars: scan: %w", err)
		}
		b.Date = b.Date.UTC()
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// SaveRating guarda un snapshot. Un (ticker, as_of) existente no se toca:
// los hechos point-in-time no se reescriben.
func (s *SQLiteStorage) SaveRating(ctx context.Context, ticker string, view domain.RatingView) error {
	if view.Rating == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ratings (ticker, as_of, rating, source, saved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(ticker, as_of) DO NOTHING`,
		ticker, view.AsOf.UTC(), string(view.Rating), view.Source, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("storage.SaveRating: insert: %w", err)
	}
	return nil
}

// GetRating devuelve el snapshot más reciente por as_of. Sin filas devuelve
// un RatingView vacío sin error: ausencia de rating no es fallo.
func (s *SQLiteStorage) GetRating(ctx context.Context, ticker string) (domain.RatingView, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT as_of, rating, source FROM ratings
		WHERE ticker = ? ORDER BY as_of DESC LIMIT 1`, ticker)

	var view domain.RatingView
	var rating, source string
	switch err := row.Scan(&view.AsOf, &rating, &source); err {
	case nil:
		view.AsOf = view.AsOf.UTC()
		view.Source = source
		parsed, perr := domain.ParseRating(rating)
		if perr != nil {
			return domain.RatingView{}, fmt.Errorf("storage.GetRating: %w", perr)
		}
		view.Rating = parsed
		return view, nil
	case sql.ErrNoRows:
		return domain.RatingView{}, nil
	default:
		return domain.RatingView{}, fmt.Errorf("storage.GetRating: scan: %w", err)
	}
}

// SaveRun persiste el resumen de un backtest completado.
func (s *SQLiteStorage) SaveRun(ctx context.Context, rec domain.RunRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
			(id, ticker, created_at, config_label,
			 s_equity_end, s_cagr, s_sharpe, s_max_dd, s_hit, s_trades, s_turnover, s_expo,
			 b_equity_end, b_cagr, b_sharpe, b_max_dd)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Ticker, rec.CreatedAt.UTC(), rec.ConfigLabel,
		rec.Strategy.EquityEnd, rec.Strategy.CAGR, rec.Strategy.Sharpe,
		rec.Strategy.MaxDrawdown, rec.Strategy.HitRate, rec.Strategy.NumTrades,
		rec.Strategy.TurnoverSum, rec.Strategy.Exposure,
		rec.Benchmark.EquityEnd, rec.Benchmark.CAGR, rec.Benchmark.Sharpe,
		rec.Benchmark.MaxDrawdown)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: insert %s: %w", rec.ID, err)
	}
	return nil
}

// GetRuns devuelve los runs del ticker desde la fecha dada, recientes primero.
func (s *SQLiteStorage) GetRuns(ctx context.Context, ticker string, since time.Time) ([]domain.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ticker, created_at, config_label,
		       s_equity_end, s_cagr, s_sharpe, s_max_dd, s_hit, s_trades, s_turnover, s_expo,
		       b_equity_end, b_cagr, b_sharpe, b_max_dd
		FROM runs WHERE ticker = ? AND created_at >= ?
		ORDER BY created_at DESC`, ticker, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("storage.GetRuns: query: %w", err)
	}
	defer rows.Close()

	var recs []domain.RunRecord
	for rows.Next() {
		var rec domain.RunRecord
		if err := rows.Scan(&rec.ID, &rec.Ticker, &rec.CreatedAt, &rec.ConfigLabel,
			&rec.Strategy.EquityEnd, &rec.Strategy.CAGR, &rec.Strategy.Sharpe,
			&rec.Strategy.MaxDrawdown, &rec.Strategy.HitRate, &rec.Strategy.NumTrades,
			&rec.Strategy.TurnoverSum, &rec.Strategy.Exposure,
			&rec.Benchmark.EquityEnd, &rec.Benchmark.CAGR, &rec.Benchmark.Sharpe,
			&rec.Benchmark.MaxDrawdown); err != nil {
			return nil, fmt.Errorf("storage.GetRuns: scan: %w", err)
		}
		rec.CreatedAt = rec.CreatedAt.UTC()
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Close cierra la conexión limpiamente.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// pruneOld borra runs más viejos que la retención. Best-effort al arrancar.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionRuns)
	s.db.ExecContext(ctx, `DELETE FROM runs WHERE created_at < ?`, cutoff)
}
