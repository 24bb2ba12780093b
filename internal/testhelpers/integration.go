//go:build integration
// +build integration

package testhelpers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kjstillabower/forecast-cli/internal/cache"
	"github.com/kjstillabower/forecast-cli/internal/client"
	"github.com/kjstillabower/forecast-cli/internal/credentials"
	"github.com/kjstillabower/forecast-cli/internal/geocode"
	"github.com/kjstillabower/forecast-cli/internal/observability"
	"github.com/kjstillabower/forecast-cli/internal/service"
)

// IntegrationTestConfig holds configuration for integration tests.
type IntegrationTestConfig struct {
	APIKey      string
	APIURL      string
	GeocoderURL string
}

// GetIntegrationConfig loads integration test configuration from environment.
// Skips test if TNT_EX1_OPENWEATHERMAP_API_KEY is not set.
func GetIntegrationConfig(t *testing.T) IntegrationTestConfig {
	t.Helper()
	apiKey := os.Getenv(credentials.EnvKey)
	if apiKey == "" {
		t.Skip(credentials.EnvKey + " not set, skipping integration test")
	}

	apiURL := os.Getenv("FORECAST_API_URL")
	if apiURL == "" {
		apiURL = client.DefaultForecastURL
	}
	geocoderURL := os.Getenv("GEOCODER_URL")
	if geocoderURL == "" {
		geocoderURL = geocode.DefaultBaseURL
	}

	return IntegrationTestConfig{
		APIKey:      apiKey,
		APIURL:      apiURL,
		GeocoderURL: geocoderURL,
	}
}

// SetupIntegrationService creates a forecast service against the live API with a
// file store in a per-test directory. Returns the service and the store.
func SetupIntegrationService(t *testing.T, cfg IntegrationTestConfig) (*service.ForecastService, *cache.FileStore) {
	t.Helper()
	logger, err := observability.NewLogger()
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	forecastClient, err := client.NewOpenWeatherClient(cfg.APIKey, cfg.APIURL, client.DefaultTimeout)
	if err != nil {
		t.Fatalf("NewOpenWeatherClient() error = %v", err)
	}

	store := cache.NewFileStore(filepath.Join(t.TempDir(), cache.DefaultFileName))
	return service.NewForecastService(forecastClient, store, service.DefaultPolicy(), logger), store
}

// SetupIntegrationResolver creates a geocoder against the live Nominatim endpoint,
// paced at its one-request-per-second policy.
func SetupIntegrationResolver(t *testing.T, cfg IntegrationTestConfig) *geocode.Resolver {
	t.Helper()
	return geocode.NewResolver(geocode.Config{
		BaseURL:       cfg.GeocoderURL,
		UserAgent:     geocode.DefaultUserAgent,
		Timeout:       geocode.DefaultTimeout,
		RatePerSecond: geocode.DefaultRatePerSecond,
	}, nil)
}
