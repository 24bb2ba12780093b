package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kjstillabower/forecast-cli/internal/forecast"
	"github.com/kjstillabower/forecast-cli/internal/models"
	"github.com/kjstillabower/forecast-cli/internal/observability"
	"github.com/kjstillabower/forecast-cli/internal/validation"
)

// DefaultForecastURL is the OpenWeatherMap 5 day / 3 hour forecast endpoint.
const DefaultForecastURL = "https://api.openweathermap.org/data/2.5/forecast"

// DefaultTimeout bounds a single forecast request.
const DefaultTimeout = 15 * time.Second

// maxBodyBytes caps the response body; a full 5-day forecast is well under 100 KiB.
const maxBodyBytes = 4 << 20

type ForecastClient interface {
	FetchForecast(ctx context.Context, coords models.Coordinates) (models.ForecastDocument, error)
}

var (
	ErrInvalidAPIKey   = errors.New("invalid API key")
	ErrUpstreamFailure = errors.New("upstream failure")
	ErrRateLimited     = errors.New("rate limited")
)

// OpenWeatherClient fetches forecasts for a coordinate pair. It performs exactly one
// HTTP request per call; failures are returned to the caller without retry.
type OpenWeatherClient struct {
	apiKey  string
	apiURL  string
	timeout time.Duration
	client  *http.Client
}

func NewOpenWeatherClient(apiKey, apiURL string, timeout time.Duration) (*OpenWeatherClient, error) {
	if err := validation.ValidateAPIKey(apiKey); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAPIKey, err)
	}
	if apiURL == "" {
		apiURL = DefaultForecastURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &OpenWeatherClient{
		apiKey:  apiKey,
		apiURL:  apiURL,
		timeout: timeout,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func (c *OpenWeatherClient) FetchForecast(ctx context.Context, coords models.Coordinates) (models.ForecastDocument, error) {
	doc, err := c.callAPI(ctx, coords)
	if err != nil {
		observability.ForecastAPIErrorsTotal.WithLabelValues(string(CategorizeError(err))).Inc()
		return models.ForecastDocument{}, err
	}
	return doc, nil
}

func (c *OpenWeatherClient) callAPI(ctx context.Context, coords models.Coordinates) (models.ForecastDocument, error) {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.buildRequest(reqCtx, coords)
	if err != nil {
		observability.ForecastAPICallsTotal.WithLabelValues("error").Inc()
		return models.ForecastDocument{}, fmt.Errorf("build request: %w", err)
	}

	if runID := observability.RunIDFromContext(ctx); runID != "" {
		req.Header.Set("X-Correlation-ID", runID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		duration := time.Since(start).Seconds()
		observability.ForecastAPICallsTotal.WithLabelValues("error").Inc()
		observability.ForecastAPIDuration.WithLabelValues("error").Observe(duration)

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return models.ForecastDocument{}, fmt.Errorf("request timeout: %w", err)
		}
		return models.ForecastDocument{}, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start).Seconds()
	status := statusLabel(resp.StatusCode)
	observability.ForecastAPICallsTotal.WithLabelValues(status).Inc()
	observability.ForecastAPIDuration.WithLabelValues(status).Observe(duration)

	if err := c.handleErrorResponse(resp); err != nil {
		return models.ForecastDocument{}, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return models.ForecastDocument{}, fmt.Errorf("read response body: %w", err)
	}

	doc, err := forecast.Decode(body)
	if err != nil {
		return models.ForecastDocument{}, fmt.Errorf("parse response: %w", err)
	}
	return doc, nil
}

func (c *OpenWeatherClient) buildRequest(ctx context.Context, coords models.Coordinates) (*http.Request, error) {
	baseURL, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(coords.Lon, 'f', -1, 64))
	params.Set("dt", "25")
	params.Set("units", "metric")
	params.Set("appid", c.apiKey)
	baseURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *OpenWeatherClient) handleErrorResponse(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: provider rejected the key", ErrInvalidAPIKey)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w", ErrRateLimited)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: HTTP %d", ErrUpstreamFailure, resp.StatusCode)
	}

	return nil
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
