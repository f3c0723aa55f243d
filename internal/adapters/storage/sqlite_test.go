package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/trendbot/internal/adapters/storage"
	"github.com/alejandrodnm/trendbot/internal/domain"
)

func openTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testBars(n int) []domain.Bar {
	bars := make([]domain.Bar, n)
	d := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	price := 100.0
	for i := 0; i < n; i++ {
		bars[i] = domain.Bar{Date: d, Open: price, High: price + 1, Low: price - 1, Close: price, AdjClose: price, Volume: 1000}
		price *= 1.01
		d = d.AddDate(0, 0, 1)
	}
	return bars
}

func TestSQLiteStorage_BarsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	bars := testBars(5)
	require.NoError(t, db.SaveBars(ctx, "NVDA", bars))

	got, err := db.GetBars(ctx, "NVDA")
	require.NoError(t, err)
	require.Len(t, got, 5)

	for i := range bars {
		assert.True(t, got[i].Date.Equal(bars[i].Date), "bar %d date", i)
		assert.InDelta(t, bars[i].AdjClose, got[i].AdjClose, 1e-9, "bar %d adj_close", i)
		assert.InDelta(t, bars[i].Volume, got[i].Volume, 1e-9, "bar %d volume", i)
	}
}

func TestSQLiteStorage_BarsUpsert(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	bars := testBars(3)
	require.NoError(t, db.SaveBars(ctx, "NVDA", bars))

	// mismo ticker+fecha con cierre ajustado corregido: sobreescribe
	bars[1].AdjClose = 55.5
	require.NoError(t, db.SaveBars(ctx, "NVDA", bars))

	got, err := db.GetBars(ctx, "NVDA")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.InDelta(t, 55.5, got[1].AdjClose, 1e-9)
}

func TestSQLiteStorage_BarsPerTicker(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SaveBars(ctx, "NVDA", testBars(3)))
	require.NoError(t, db.SaveBars(ctx, "AMD", testBars(2)))

	nvda, err := db.GetBars(ctx, "NVDA")
	require.NoError(t, err)
	assert.Len(t, nvda, 3)

	other, err := db.GetBars(ctx, "MSFT")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSQLiteStorage_RatingSnapshotsAreImmutable(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	first := domain.RatingView{Rating: domain.RatingSell, AsOf: asOf, Source: "original"}
	require.NoError(t, db.SaveRating(ctx, "NVDA", first))

	// mismo as_of con otro contenido: el hecho point-in-time no se reescribe
	revised := domain.RatingView{Rating: domain.RatingBuy, AsOf: asOf, Source: "revised"}
	require.NoError(t, db.SaveRating(ctx, "NVDA", revised))

	got, err := db.GetRating(ctx, "NVDA")
	require.NoError(t, err)
	assert.Equal(t, domain.RatingSell, got.Rating)
	assert.Equal(t, "original", got.Source)
}

func TestSQLiteStorage_GetRatingLatestAsOf(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	older := domain.RatingView{Rating: domain.RatingHold, AsOf: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := domain.RatingView{Rating: domain.RatingSell, AsOf: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, db.SaveRating(ctx, "NVDA", older))
	require.NoError(t, db.SaveRating(ctx, "NVDA", newer))

	got, err := db.GetRating(ctx, "NVDA")
	require.NoError(t, err)
	assert.Equal(t, domain.RatingSell, got.Rating)
	assert.True(t, got.AsOf.Equal(newer.AsOf))
}

func TestSQLiteStorage_GetRatingEmpty(t *testing.T) {
	db := openTestDB(t)

	got, err := db.GetRating(context.Background(), "NVDA")
	require.NoError(t, err)
	assert.Equal(t, domain.RatingView{}, got)
}

func TestSQLiteStorage_RunsHistory(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	older := domain.RunRecord{
		ID: "run-1", Ticker: "NVDA", CreatedAt: now.Add(-time.Hour),
		ConfigLabel: "fast=20 slow=100 buf=0.01 vol=20",
		Strategy:    domain.PerformanceSummary{EquityEnd: 2.5, Sharpe: 1.1, MaxDrawdown: -0.3, NumTrades: 12, HitRate: 0.58},
		Benchmark:   domain.PerformanceSummary{EquityEnd: 3.0, Sharpe: 0.9, MaxDrawdown: -0.5},
	}
	newer := older
	newer.ID = "run-2"
	newer.CreatedAt = now

	require.NoError(t, db.SaveRun(ctx, older))
	require.NoError(t, db.SaveRun(ctx, newer))

	recs, err := db.GetRuns(ctx, "NVDA", time.Time{})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// recientes primero
	assert.Equal(t, "run-2", recs[0].ID)
	assert.Equal(t, "run-1", recs[1].ID)
	assert.InDelta(t, 2.5, recs[1].Strategy.EquityEnd, 1e-9)
	assert.InDelta(t, -0.5, recs[1].Benchmark.MaxDrawdown, 1e-9)
	assert.Equal(t, 12, recs[1].Strategy.NumTrades)

	// el filtro since recorta los antiguos
	recent, err := db.GetRuns(ctx, "NVDA", now.Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "run-2", recent[0].ID)
}
