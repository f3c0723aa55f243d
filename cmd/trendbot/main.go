package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/trendbot/config"
	"github.com/alejandrodnm/trendbot/internal/adapters/alphavantage"
	"github.com/alejandrodnm/trendbot/internal/adapters/fundamental"
	"github.com/alejandrodnm/trendbot/internal/adapters/notify"
	"github.com/alejandrodnm/trendbot/internal/adapters/storage"
	"github.com/alejandrodnm/trendbot/internal/backtest"
	"github.com/alejandrodnm/trendbot/internal/domain"
	"github.com/alejandrodnm/trendbot/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	dryRun := flag.Bool("dry-run", false, "use a local CSV fixture instead of the real API")
	fixture := flag.String("fixture", "testdata/bars.csv", "CSV fixture path for -dry-run")
	single := flag.Bool("single", false, "run the configured params only, skip grid selection")
	history := flag.Bool("history", false, "print stored run history and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full tables (default: compact 1-line)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("trendbot starting",
		"config", *configPath,
		"ticker", cfg.Run.Ticker,
		"dry_run", *dryRun,
		"single", *single,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var store *storage.SQLiteStorage
	if !*dryRun {
		store, err = storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer store.Close()
	}

	notifier := notify.NewConsole(*table)

	if *history {
		if store == nil {
			slog.Error("history needs storage; drop -dry-run")
			os.Exit(1)
		}
		recs, err := store.GetRuns(ctx, cfg.Run.Ticker, time.Time{})
		if err != nil {
			slog.Error("failed to read run history", "err", err)
			os.Exit(1)
		}
		notifier.PrintHistory(recs)
		return
	}

	var barProvider ports.BarProvider
	if *dryRun {
		barProvider = alphavantage.NewFixtureProvider(*fixture)
	} else {
		barProvider = alphavantage.NewClient(cfg.API.BaseURL, cfg.API.Key)
	}
	ratingProvider := fundamental.NewFileProvider(cfg.Fundamental.File)

	if err := run(ctx, cfg, barProvider, ratingProvider, store, notifier, *single); err != nil {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}

	slog.Info("trendbot finished cleanly")
}

func run(ctx context.Context, cfg *config.Config, bp ports.BarProvider, rp ports.RatingProvider, store *storage.SQLiteStorage, notifier *notify.Console, single bool) error {
	bars, err := loadBars(ctx, cfg, bp, store)
	if err != nil {
		return err
	}

	rating, err := rp.FetchRating(ctx, cfg.Run.Ticker)
	if err != nil {
		return fmt.Errorf("fetch rating: %w", err)
	}
	if store != nil && rating.Rating != "" {
		if err := store.SaveRating(ctx, cfg.Run.Ticker, rating); err != nil {
			slog.Warn("failed to cache rating", "err", err)
		}
	}

	base := strategyConfig(cfg)

	var sel *backtest.Selection
	if single {
		out, err := backtest.RunStrategy(bars, base, rating)
		if err != nil {
			return fmt.Errorf("run strategy: %w", err)
		}
		sel = &backtest.Selection{Final: out}
	} else {
		trainEnd, err := cfg.TrainEndDate()
		if err != nil {
			return err
		}
		valEnd, err := cfg.ValEndDate()
		if err != nil {
			return err
		}
		sel, err = backtest.SelectParams(ctx, bars, base, backtest.DefaultGrid(), trainEnd, valEnd, rating)
		if err != nil {
			return fmt.Errorf("select params: %w", err)
		}
	}

	if err := notifier.NotifySelection(ctx, cfg.Run.Ticker, sel); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	if store != nil {
		rec := domain.RunRecord{
			ID:          uuid.NewString(),
			Ticker:      cfg.Run.Ticker,
			CreatedAt:   time.Now().UTC(),
			ConfigLabel: configLabel(sel),
			Strategy:    sel.Final.StrategySummary,
			Benchmark:   sel.Final.BenchmarkSummary,
		}
		if err := store.SaveRun(ctx, rec); err != nil {
			slog.Warn("failed to persist run", "err", err)
		}
	}
	return nil
}

// loadBars descarga la serie del provider y la cachea; si la descarga falla
// y hay cache, corre con la serie cacheada.
func loadBars(ctx context.Context, cfg *config.Config, bp ports.BarProvider, store *storage.SQLiteStorage) ([]domain.Bar, error) {
	bars, err := bp.FetchDailyBars(ctx, cfg.Run.Ticker)
	if err != nil {
		if store == nil {
			return nil, fmt.Errorf("fetch bars: %w", err)
		}
		slog.Warn("fetch failed, falling back to cached bars", "err", err)
		cached, cerr := store.GetBars(ctx, cfg.Run.Ticker)
		if cerr != nil || len(cached) == 0 {
			return nil, fmt.Errorf("fetch bars: %w", err)
		}
		return cached, nil
	}

	if store != nil {
		if err := store.SaveBars(ctx, cfg.Run.Ticker, bars); err != nil {
			slog.Warn("failed to cache bars", "err", err)
		}
	}
	return bars, nil
}

func strategyConfig(cfg *config.Config) backtest.StrategyConfig {
	base := backtest.DefaultStrategyConfig()
	s := cfg.Strategy
	base.EntryThreshold = s.EntryThreshold
	base.HoldThreshold = s.HoldThreshold
	base.RegimeBuffer = s.RegimeBufferPct
	base.TradingCost = s.TradingCostRate
	base.Sizing.TargetVol = s.TargetVolatility
	base.Sizing.MaxLeverage = s.MaxLeverage
	base.Sizing.SellCeilingMult = s.SellCeilingMultiplier
	base.Indicators.FastTrendWindow = s.TrendFastWindow
	base.Indicators.SlowTrendWindow = s.TrendSlowWindow
	base.Indicators.VolWindow = s.VolatilityWindow
	return base
}

func configLabel(sel *backtest.Selection) string {
	if len(sel.Candidates) == 0 {
		c := sel.Final.Config
		return fmt.Sprintf("fast=%d slow=%d buf=%.3f vol=%d",
			c.Indicators.FastTrendWindow, c.Indicators.SlowTrendWindow,
			c.RegimeBuffer, c.Indicators.VolWindow)
	}
	return sel.Best.String()
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
