//go:build integration
// +build integration

package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/kjstillabower/forecast-cli/internal/testhelpers"
)

// TestForecastService_Integration resolves a real city, fetches its forecast once and
// verifies that an immediate second call is served from the cache file.
func TestForecastService_Integration(t *testing.T) {
	cfg := testhelpers.GetIntegrationConfig(t)
	svc, store := testhelpers.SetupIntegrationService(t, cfg)
	resolver := testhelpers.SetupIntegrationResolver(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	coords, err := resolver.Lookup(ctx, "Berlin")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}

	first, err := svc.ResolveForecast(ctx, coords, time.Now())
	if err != nil {
		t.Fatalf("ResolveForecast() error = %v (API key may not be activated yet)", err)
	}
	if len(first.Records) == 0 {
		t.Fatal("ResolveForecast() returned no records")
	}

	cached, found, err := store.Load(ctx)
	if err != nil || !found {
		t.Fatalf("store.Load() = (found %v, %v), want persisted document", found, err)
	}
	if cached.Coordinates != coords {
		t.Errorf("cached coordinates = %v, want requested %v", cached.Coordinates, coords)
	}

	second, err := svc.ResolveForecast(ctx, coords, time.Now())
	if err != nil {
		t.Fatalf("second ResolveForecast() error = %v", err)
	}
	if len(second.Records) != len(first.Records) || second.Records[0] != first.Records[0] {
		t.Error("second call should return the cached document")
	}
}
