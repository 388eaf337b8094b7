package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Census    CensusConfig   `yaml:"census" mapstructure:"census"`
	RentCast  ProviderConfig `yaml:"rentcast" mapstructure:"rentcast"`
	HUD       ProviderConfig `yaml:"hud" mapstructure:"hud"`
	Google    ProviderConfig `yaml:"google" mapstructure:"google"`
	WalkScore ProviderConfig `yaml:"walkscore" mapstructure:"walkscore"`
	Geocode   GeocodeConfig  `yaml:"geocode" mapstructure:"geocode"`
	Overpass  OverpassConfig `yaml:"overpass" mapstructure:"overpass"`
	Permits   PermitsConfig  `yaml:"permits" mapstructure:"permits"`
	Report    ReportConfig   `yaml:"report" mapstructure:"report"`
	Store     StoreConfig    `yaml:"store" mapstructure:"store"`
	Server    ServerConfig   `yaml:"server" mapstructure:"server"`
	Log       LogConfig      `yaml:"log" mapstructure:"log"`
}

// ProviderConfig holds the credentials of a keyed provider. An empty APIKey
// leaves the provider unconfigured.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// CensusConfig configures the ACS client.
type CensusConfig struct {
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Year    int    `yaml:"year" mapstructure:"year"`
}

// GeocodeConfig configures Zippopotam and the Census geocoder.
type GeocodeConfig struct {
	ZipBaseURL    string  `yaml:"zip_base_url" mapstructure:"zip_base_url"`
	CensusBaseURL string  `yaml:"census_base_url" mapstructure:"census_base_url"`
	RateLimit     float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// OverpassConfig configures the Overpass interpreter and its result cache.
type OverpassConfig struct {
	URL           string  `yaml:"url" mapstructure:"url"`
	RateLimit     float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	Burst         int     `yaml:"burst" mapstructure:"burst"`
	MaxAttempts   int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	BackoffStepMs int     `yaml:"backoff_step_ms" mapstructure:"backoff_step_ms"`
	CacheSize     int     `yaml:"cache_size" mapstructure:"cache_size"`
	CacheTTLMins  int     `yaml:"cache_ttl_mins" mapstructure:"cache_ttl_mins"`
}

// PermitsConfig configures the open-data development permits endpoint.
type PermitsConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Query   string `yaml:"query" mapstructure:"query"`
	Limit   int    `yaml:"limit" mapstructure:"limit"`
}

// ReportConfig configures neighborhood reports.
type ReportConfig struct {
	Categories []string `yaml:"categories" mapstructure:"categories"`
	Archive    bool     `yaml:"archive" mapstructure:"archive"`
}

// StoreConfig configures the report archive backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// legacyEnv maps config keys to the bare provider variables that are honored
// alongside the LIVEABLE_ prefixed ones.
var legacyEnv = map[string]string{
	"census.api_key":    "CENSUS_API_KEY",
	"rentcast.api_key":  "RENTCAST_API_KEY",
	"hud.api_key":       "HUD_API_KEY",
	"google.api_key":    "GOOGLE_PLACES_API_KEY",
	"walkscore.api_key": "WALKSCORE_API_KEY",
	"overpass.url":      "OVERPASS_URL",
	"permits.base_url":  "DEV_PERMITS_BASE_URL",
	"permits.query":     "DEV_PERMITS_QUERY",
}

// Load reads configuration from .env, liveable.yaml and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: read .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("liveable")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LIVEABLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		prefixed := "LIVEABLE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, eris.Wrapf(err, "config: bind %s", key)
		}
	}

	// Defaults
	v.SetDefault("census.year", 2022)
	v.SetDefault("geocode.rate_limit", 50)
	v.SetDefault("overpass.url", "https://overpass.private.coffee/api/interpreter")
	v.SetDefault("overpass.rate_limit", 1)
	v.SetDefault("overpass.burst", 3)
	v.SetDefault("overpass.max_attempts", 2)
	v.SetDefault("overpass.backoff_step_ms", 2000)
	v.SetDefault("overpass.cache_size", 256)
	v.SetDefault("overpass.cache_ttl_mins", 0)
	v.SetDefault("permits.limit", 10)
	v.SetDefault("report.categories", []string{"grocery_stores", "restaurants", "parks", "schools", "transit_stations"})
	v.SetDefault("report.archive", true)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "liveable.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Missing provider
// keys are not errors: each resolver reports them per call.
func (c *Config) Validate(mode string) error {
	var problems []string
	switch mode {
	case "lookup":
	case "serve":
		if c.Server.Port < 1 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be between 1 and 65535")
		}
	case "archive":
		switch c.Store.Driver {
		case "sqlite":
		case "postgres":
			if c.Store.DatabaseURL == "" {
				problems = append(problems, "store.database_url is required for postgres")
			}
		default:
			problems = append(problems, "store.driver must be sqlite or postgres")
		}
	default:
		return eris.Errorf("config: unknown validation mode %q", mode)
	}

	if c.Overpass.URL == "" {
		problems = append(problems, "overpass.url is required")
	}
	if c.Overpass.CacheSize < 0 {
		problems = append(problems, "overpass.cache_size must not be negative")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
