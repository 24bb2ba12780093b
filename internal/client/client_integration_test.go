//go:build integration
// +build integration

package client

import (
	"context"
	"math"
	"os"
	"testing"

	"github.com/kjstillabower/forecast-cli/internal/models"
)

func TestOpenWeatherClient_FetchForecast_Integration(t *testing.T) {
	apiKey := os.Getenv("TNT_EX1_OPENWEATHERMAP_API_KEY")
	if apiKey == "" {
		t.Skip("TNT_EX1_OPENWEATHERMAP_API_KEY not set, skipping integration test")
	}

	client, err := NewOpenWeatherClient(apiKey, DefaultForecastURL, DefaultTimeout)
	if err != nil {
		t.Fatalf("NewOpenWeatherClient() error = %v", err)
	}

	berlin := models.Coordinates{Lat: 52.520008, Lon: 13.404954}
	doc, err := client.FetchForecast(context.Background(), berlin)
	if err != nil {
		t.Fatalf("FetchForecast() error = %v (API key may not be activated yet)", err)
	}

	if len(doc.Records) == 0 {
		t.Fatal("FetchForecast() returned no records")
	}
	if math.Abs(doc.Coordinates.Lat-berlin.Lat) > 0.1 || math.Abs(doc.Coordinates.Lon-berlin.Lon) > 0.1 {
		t.Errorf("Coordinates = %v, want near %v", doc.Coordinates, berlin)
	}
	for i := 1; i < len(doc.Records); i++ {
		if doc.Records[i].Timestamp < doc.Records[i-1].Timestamp {
			t.Fatalf("records not chronological at %d", i)
		}
	}
}
