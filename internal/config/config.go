package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kjstillabower/forecast-cli/internal/cache"
	"github.com/kjstillabower/forecast-cli/internal/client"
	"github.com/kjstillabower/forecast-cli/internal/credentials"
	"github.com/kjstillabower/forecast-cli/internal/geocode"
	"github.com/kjstillabower/forecast-cli/internal/service"
)

// Config holds CLI configuration loaded from YAML, the dotenv file and env.
type Config struct {
	ForecastAPIURL     string
	ForecastAPITimeout time.Duration
	// APIKey may be empty; the credential prompt fills it in.
	APIKey string

	GeocoderURL           string
	GeocoderUserAgent     string
	GeocoderTimeout       time.Duration
	GeocoderRatePerSecond float64

	CachePath      string
	CacheMaxAge    time.Duration
	CoordThreshold float64
	ForceRefresh   bool

	DotenvPath string

	MetricsTextfilePath string
}

type fileConfig struct {
	ForecastAPI struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"forecast_api"`

	Geocoder struct {
		URL           string  `yaml:"url"`
		UserAgent     string  `yaml:"user_agent"`
		Timeout       string  `yaml:"timeout"`
		RatePerSecond float64 `yaml:"rate_per_second"`
	} `yaml:"geocoder"`

	Cache struct {
		Path           string   `yaml:"path"`
		MaxAge         string   `yaml:"max_age"`
		CoordThreshold *float64 `yaml:"coord_threshold"`
		ForceRefresh   *bool    `yaml:"force_refresh"`
	} `yaml:"cache"`

	Credentials struct {
		DotenvPath string `yaml:"dotenv_path"`
	} `yaml:"credentials"`

	Metrics struct {
		TextfilePath string `yaml:"textfile_path"`
	} `yaml:"metrics"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev) relative to the
// working directory. The file is optional; absent keys take defaults. The API key comes
// from TNT_EX1_OPENWEATHERMAP_API_KEY or, failing that, the dotenv file.
func Load() (*Config, error) {
	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}

	var fc fileConfig
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// defaults only
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	cfg.ForecastAPIURL = strings.TrimSpace(fc.ForecastAPI.URL)
	if cfg.ForecastAPIURL == "" {
		cfg.ForecastAPIURL = client.DefaultForecastURL
	}
	cfg.ForecastAPITimeout = parseDurationOrZero(fc.ForecastAPI.Timeout, client.DefaultTimeout)

	cfg.GeocoderURL = strings.TrimSpace(fc.Geocoder.URL)
	if cfg.GeocoderURL == "" {
		cfg.GeocoderURL = geocode.DefaultBaseURL
	}
	cfg.GeocoderUserAgent = strings.TrimSpace(fc.Geocoder.UserAgent)
	if cfg.GeocoderUserAgent == "" {
		cfg.GeocoderUserAgent = geocode.DefaultUserAgent
	}
	cfg.GeocoderTimeout = parseDuration(fc.Geocoder.Timeout, geocode.DefaultTimeout)
	cfg.GeocoderRatePerSecond = fc.Geocoder.RatePerSecond
	if cfg.GeocoderRatePerSecond <= 0 {
		cfg.GeocoderRatePerSecond = geocode.DefaultRatePerSecond
	}

	cfg.CachePath = strings.TrimSpace(os.Getenv("FORECAST_CACHE_PATH"))
	if cfg.CachePath == "" {
		cfg.CachePath = strings.TrimSpace(fc.Cache.Path)
	}
	if cfg.CachePath == "" {
		cfg.CachePath = cache.DefaultFileName
	}
	cfg.CacheMaxAge = parseDurationOrZero(fc.Cache.MaxAge, service.DefaultMaxAge)
	cfg.CoordThreshold = service.DefaultCoordThreshold
	if fc.Cache.CoordThreshold != nil {
		cfg.CoordThreshold = *fc.Cache.CoordThreshold
	}
	if fc.Cache.ForceRefresh != nil {
		cfg.ForceRefresh = *fc.Cache.ForceRefresh
	}
	if v := strings.TrimSpace(os.Getenv("FORECAST_FORCE_REFRESH")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("FORECAST_FORCE_REFRESH: %w", err)
		}
		cfg.ForceRefresh = b
	}

	cfg.DotenvPath = strings.TrimSpace(fc.Credentials.DotenvPath)
	if cfg.DotenvPath == "" {
		cfg.DotenvPath = credentials.DefaultDotenvPath
	}

	cfg.MetricsTextfilePath = strings.TrimSpace(os.Getenv("FORECAST_METRICS_TEXTFILE"))
	if cfg.MetricsTextfilePath == "" {
		cfg.MetricsTextfilePath = strings.TrimSpace(fc.Metrics.TextfilePath)
	}

	cfg.APIKey = strings.TrimSpace(os.Getenv(credentials.EnvKey))
	if cfg.APIKey == "" {
		dotenv, err := godotenv.Read(cfg.DotenvPath)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("read dotenv file: %w", err)
			}
		} else {
			cfg.APIKey = strings.TrimSpace(dotenv[credentials.EnvKey])
		}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseDuration parses a duration string and returns defaultVal if parsing fails or result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty string or parse error.
// Zero or negative durations are returned as-is so validate can reject them.
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// validate rejects values that would make the freshness check or the forecast call meaningless.
func validate(cfg *Config) error {
	if cfg.ForecastAPITimeout <= 0 {
		return fmt.Errorf("forecast_api.timeout must be positive")
	}
	if cfg.CacheMaxAge <= 0 {
		return fmt.Errorf("cache.max_age must be positive")
	}
	if cfg.CoordThreshold <= 0 {
		return fmt.Errorf("cache.coord_threshold must be positive, got %g", cfg.CoordThreshold)
	}
	return nil
}
