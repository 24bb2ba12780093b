// Package geocode resolves city names to coordinates using a Nominatim search endpoint.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/forecast-cli/internal/models"
	"github.com/kjstillabower/forecast-cli/internal/observability"
	"github.com/kjstillabower/forecast-cli/internal/prompt"
	"github.com/kjstillabower/forecast-cli/internal/validation"
)

const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "forecast-cli/1.0"
	DefaultTimeout   = 10 * time.Second
	// DefaultRatePerSecond follows the public Nominatim usage policy.
	DefaultRatePerSecond = 1.0
)

var (
	ErrLocationNotFound = errors.New("location not found")
	ErrGeocoderFailure  = errors.New("geocoder failure")
)

// Config configures a Resolver. Zero fields take the package defaults.
type Config struct {
	BaseURL       string
	UserAgent     string
	Timeout       time.Duration
	RatePerSecond float64
}

// Resolver looks up coordinates for place names.
type Resolver struct {
	client  *resty.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// NewResolver creates a Resolver. A nil logger discards log output.
func NewResolver(cfg Config, logger *zap.Logger) *Resolver {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = DefaultRatePerSecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)

	client.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Debug("geocoder response",
			zap.String("url", resp.Request.URL),
			zap.Int("status", resp.StatusCode()),
			zap.Duration("duration", resp.Time()))
		return nil
	})

	return &Resolver{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1),
		logger:  logger,
	}
}

// Lookup returns the coordinates of the best match for city. It returns an error
// wrapping ErrLocationNotFound when the geocoder has no match.
func (r *Resolver) Lookup(ctx context.Context, city string) (models.Coordinates, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return models.Coordinates{}, fmt.Errorf("geocode rate limit wait: %w", err)
	}

	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":      city,
			"format": "json",
			"limit":  "1",
		}).
		Get("/search")
	if err != nil {
		observability.GeocodeLookupsTotal.WithLabelValues("error").Inc()
		return models.Coordinates{}, fmt.Errorf("geocode request: %w", err)
	}
	if resp.IsError() {
		observability.GeocodeLookupsTotal.WithLabelValues("error").Inc()
		return models.Coordinates{}, fmt.Errorf("%w: HTTP %d", ErrGeocoderFailure, resp.StatusCode())
	}

	var places []place
	if err := json.Unmarshal(resp.Body(), &places); err != nil {
		observability.GeocodeLookupsTotal.WithLabelValues("error").Inc()
		return models.Coordinates{}, fmt.Errorf("%w: parse response: %v", ErrGeocoderFailure, err)
	}
	if len(places) == 0 {
		observability.GeocodeLookupsTotal.WithLabelValues("not_found").Inc()
		return models.Coordinates{}, fmt.Errorf("%w: %q", ErrLocationNotFound, city)
	}

	coords, err := places[0].coordinates()
	if err != nil {
		observability.GeocodeLookupsTotal.WithLabelValues("error").Inc()
		return models.Coordinates{}, err
	}
	observability.GeocodeLookupsTotal.WithLabelValues("found").Inc()
	r.logger.Debug("city resolved",
		zap.String("city", city),
		zap.String("match", places[0].DisplayName),
		zap.Stringer("coordinates", coords))
	return coords, nil
}

// Resolve looks up city and, while the input is invalid or not found, asks for another
// city and tries again. There is no attempt limit. Geocoder transport failures and
// input errors from the asker end the loop.
func (r *Resolver) Resolve(ctx context.Context, city string, asker prompt.Asker) (models.Coordinates, error) {
	for {
		if name, verr := validation.ValidateCity(city); verr == nil {
			coords, err := r.Lookup(ctx, name)
			if err == nil {
				return coords, nil
			}
			if !errors.Is(err, ErrLocationNotFound) {
				return models.Coordinates{}, err
			}
		}

		r.logger.Debug("city not resolvable, asking again", zap.String("city", city))
		next, err := asker.Ask(fmt.Sprintf("Sorry, your input for the city (%s) was not found, try again:\nWhere do you live?", city))
		if err != nil {
			return models.Coordinates{}, fmt.Errorf("read city: %w", err)
		}
		city = next
	}
}

func (p place) coordinates() (models.Coordinates, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: invalid latitude %q", ErrGeocoderFailure, p.Lat)
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: invalid longitude %q", ErrGeocoderFailure, p.Lon)
	}
	return models.Coordinates{Lat: lat, Lon: lon}, nil
}
