package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/coinfolio/coinfolio-backend/internal/domain"
)

// HTTPConfig configures the JSON API server.
type HTTPConfig struct {
	ListenAddr   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig configures both cache tiers.
type CacheConfig struct {
	TTL              time.Duration // shared tier
	CurveTTL         time.Duration // in-process full-history tier
	MemoryMaxEntries int
}

// SimulationConfig configures the strategy generators.
type SimulationConfig struct {
	CommissionRate float64
	PresetsPath    string
}

// Config is the full service configuration, loaded from the environment
// (a .env file is honored when present).
type Config struct {
	HTTP        HTTPConfig
	DBConnStr   string
	Cache       CacheConfig
	Simulation  SimulationConfig
	Stablecoins []string
	Log         LogConfig
}

// Load reads configuration from the environment, applying defaults suitable
// for local development.
func Load() (*Config, error) {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg := &Config{
		HTTP: HTTPConfig{
			ListenAddr: envString("HTTP_LISTEN_ADDR", ":8080"),
		},
		DBConnStr: dbConnStr(),
		Simulation: SimulationConfig{
			PresetsPath: envString("PRESETS_PATH", ""),
		},
		Stablecoins: envList("STABLECOINS", []string{"USDT", "USDC", "DAI", "BUSD", "TUSD"}),
		Log: LogConfig{
			Level:  envString("LOG_LEVEL", "info"),
			Format: envString("LOG_FORMAT", "text"),
		},
	}

	var err error
	if cfg.HTTP.ReadTimeout, err = envDuration("HTTP_READ_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTP.WriteTimeout, err = envDuration("HTTP_WRITE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTP.IdleTimeout, err = envDuration("HTTP_IDLE_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.Cache.TTL, err = envDuration("CACHE_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Cache.CurveTTL, err = envDuration("CURVE_CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Cache.MemoryMaxEntries, err = envInt("CACHE_MAX_ENTRIES", 256); err != nil {
		return nil, err
	}
	if cfg.Simulation.CommissionRate, err = envFloat("COMMISSION_RATE", 0.001); err != nil {
		return nil, err
	}
	if cfg.Simulation.CommissionRate < 0 || cfg.Simulation.CommissionRate >= 1 {
		return nil, fmt.Errorf("COMMISSION_RATE %v out of range [0, 1)", cfg.Simulation.CommissionRate)
	}

	return cfg, nil
}

// presetsFile is the YAML shape of the preset catalog.
type presetsFile struct {
	Presets []domain.Preset `yaml:"presets"`
}

// LoadPresets reads the preset catalog from a YAML file, or returns the
// built-in defaults when no path is configured. Every preset is validated.
func LoadPresets(path string) ([]domain.Preset, error) {
	presets := defaultPresets()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read presets file %q: %w", path, err)
		}
		var file presetsFile
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return nil, fmt.Errorf("parse presets file %q: %w", path, err)
		}
		presets = file.Presets
	}
	for i := range presets {
		if err := presets[i].Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", presets[i].Name, err)
		}
	}
	return presets, nil
}

func defaultPresets() []domain.Preset {
	return []domain.Preset{
		{
			Name:           "btc-only",
			InitialCapital: 10000,
			Assets:         []domain.PresetAsset{{Symbol: "BTC", Weight: 100}},
		},
		{
			Name:           "btc-eth-70-30",
			InitialCapital: 10000,
			Assets: []domain.PresetAsset{
				{Symbol: "BTC", Weight: 70},
				{Symbol: "ETH", Weight: 30},
			},
		},
	}
}

// dbConnStr reads DB_CONN_STR, or builds one from the individual DB_* vars
// (Docker friendly).
func dbConnStr() string {
	if s := os.Getenv("DB_CONN_STR"); s != "" {
		return s
	}
	host := envString("DB_HOST", "localhost")
	port := envString("DB_PORT", "5432")
	user := envString("DB_USER", "postgres")
	password := envString("DB_PASSWORD", "postgres")
	dbname := envString("DB_NAME", "coinfolio")
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return f, nil
}
