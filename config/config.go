package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del run.
type Config struct {
	Run         RunConfig         `yaml:"run"`
	Strategy    StrategyConfig    `yaml:"strategy"`
	API         APIConfig         `yaml:"api"`
	Fundamental FundamentalConfig `yaml:"fundamental"`
	Storage     StorageConfig     `yaml:"storage"`
	Log         LogConfig         `yaml:"log"`
}

// RunConfig identifica el instrumento y las fechas de corte del selector.
type RunConfig struct {
	Ticker   string `yaml:"ticker"`
	TrainEnd string `yaml:"train_end"` // YYYY-MM-DD, fin del tramo Train
	ValEnd   string `yaml:"val_end"`   // YYYY-MM-DD, fin del tramo Validation
}

// StrategyConfig contiene los parámetros del motor de señal y sizing.
type StrategyConfig struct {
	EntryThreshold        int     `yaml:"entry_threshold"`
	HoldThreshold         int     `yaml:"hold_threshold"`
	RegimeBufferPct       float64 `yaml:"regime_buffer_pct"`
	TargetVolatility      float64 `yaml:"target_volatility"`
	VolatilityWindow      int     `yaml:"volatility_window"`
	MaxLeverage           float64 `yaml:"max_leverage"`
	TradingCostRate       float64 `yaml:"trading_cost_rate"`
	SellCeilingMultiplier float64 `yaml:"sell_ceiling_multiplier"`
	TrendFastWindow       int     `yaml:"trend_fast_window"`
	TrendSlowWindow       int     `yaml:"trend_slow_window"`
}

// APIConfig contiene el acceso al proveedor de datos.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Key     string `yaml:"key"` // normalmente via ALPHA_VANTAGE_API_KEY
}

// FundamentalConfig apunta al archivo del overlay fundamental externo.
type FundamentalConfig struct {
	File string `yaml:"file"` // vacío = sin overlay
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si
// existe. Un archivo YAML ausente no es error: se corre con los defaults
// (el modo dry-run no necesita nada más). Los valores del .env sobreescriben
// los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	case os.IsNotExist(err):
		// sin archivo: defaults + env
	default:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// TrainEndDate parsea la fecha de corte Train/Validation.
func (c *Config) TrainEndDate() (time.Time, error) {
	return parseDate("run.train_end", c.Run.TrainEnd)
}

// ValEndDate parsea la fecha de corte Validation/Test.
func (c *Config) ValEndDate() (time.Time, error) {
	return parseDate("run.val_end", c.Run.ValEnd)
}

func parseDate(field, v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("config: %s %q: %w", field, v, err)
	}
	return t, nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		cfg.API.Key = v
	}
	if v := os.Getenv("TRENDBOT_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
// La validación dura (umbrales coherentes, ventanas sanas) es trabajo del
// motor, que la hace antes de cualquier cálculo.
func setDefaults(cfg *Config) {
	if cfg.Run.Ticker == "" {
		cfg.Run.Ticker = "NVDA"
	}
	if cfg.Run.TrainEnd == "" {
		cfg.Run.TrainEnd = "2019-12-31"
	}
	if cfg.Run.ValEnd == "" {
		cfg.Run.ValEnd = "2022-12-31"
	}
	s := &cfg.Strategy
	if s.EntryThreshold == 0 {
		s.EntryThreshold = 4
	}
	if s.HoldThreshold == 0 {
		s.HoldThreshold = 2
	}
	if s.RegimeBufferPct == 0 {
		s.RegimeBufferPct = 0.01
	}
	if s.TargetVolatility == 0 {
		s.TargetVolatility = 0.20
	}
	if s.VolatilityWindow == 0 {
		s.VolatilityWindow = 20
	}
	if s.MaxLeverage == 0 {
		s.MaxLeverage = 1.0
	}
	if s.TradingCostRate == 0 {
		s.TradingCostRate = 0.0005
	}
	if s.SellCeilingMultiplier == 0 {
		s.SellCeilingMultiplier = 0.3
	}
	if s.TrendFastWindow == 0 {
		s.TrendFastWindow = 50
	}
	if s.TrendSlowWindow == 0 {
		s.TrendSlowWindow = 200
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "trendbot.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
