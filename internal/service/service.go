package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/forecast-cli/internal/cache"
	"github.com/kjstillabower/forecast-cli/internal/client"
	"github.com/kjstillabower/forecast-cli/internal/models"
	"github.com/kjstillabower/forecast-cli/internal/observability"
)

// ForecastService owns the single cached forecast document. It decides whether the
// cached document can be reused and otherwise fetches, persists and returns a new one.
type ForecastService struct {
	client client.ForecastClient
	store  cache.Store
	policy Policy
	logger *zap.Logger
}

// NewForecastService creates a ForecastService. A nil logger discards log output.
func NewForecastService(client client.ForecastClient, store cache.Store, policy Policy, logger *zap.Logger) *ForecastService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ForecastService{
		client: client,
		store:  store,
		policy: policy,
		logger: logger,
	}
}

// ResolveForecast returns the authoritative forecast document for requested at time now.
// The cached document is returned unchanged when it is fresh; otherwise exactly one
// upstream fetch is made and its result overwrites the cache. Fetch and persist
// failures are returned as-is (wrapped) with the cache left untouched by the fetch.
func (s *ForecastService) ResolveForecast(ctx context.Context, requested models.Coordinates, now time.Time) (models.ForecastDocument, error) {
	loadStart := time.Now()
	cached, found, err := s.store.Load(ctx)
	if err != nil {
		observability.CacheOperationDurationSeconds.WithLabelValues("load", "error").Observe(time.Since(loadStart).Seconds())
		return models.ForecastDocument{}, fmt.Errorf("load cached forecast: %w", err)
	}
	observability.CacheOperationDurationSeconds.WithLabelValues("load", "success").Observe(time.Since(loadStart).Seconds())

	decision, err := s.policy.Decide(cached, found, requested, now)
	if err != nil {
		return models.ForecastDocument{}, err
	}
	observability.CacheDecisionsTotal.WithLabelValues(string(decision.Reason)).Inc()

	if !decision.Stale {
		s.logger.Info("getting data from local file",
			zap.Stringer("coordinates", requested),
			zap.Int("records", len(cached.Records)))
		return cached, nil
	}

	s.logger.Info("getting new data from URL",
		zap.Stringer("coordinates", requested),
		zap.String("reason", string(decision.Reason)))

	fresh, err := s.client.FetchForecast(ctx, requested)
	if err != nil {
		s.logger.Debug("forecast fetch failed",
			zap.String("category", string(client.CategorizeError(err))),
			zap.Error(err))
		return models.ForecastDocument{}, fmt.Errorf("fetch forecast for %s: %w", requested, err)
	}
	// The provider reports its own grid point; the cache keys on what was asked for.
	fresh.Coordinates = requested

	saveStart := time.Now()
	if err := s.store.Save(ctx, fresh); err != nil {
		observability.CacheOperationDurationSeconds.WithLabelValues("save", "error").Observe(time.Since(saveStart).Seconds())
		return models.ForecastDocument{}, fmt.Errorf("persist forecast: %w", err)
	}
	observability.CacheOperationDurationSeconds.WithLabelValues("save", "success").Observe(time.Since(saveStart).Seconds())
	s.logger.Debug("forecast cached", zap.Int("records", len(fresh.Records)))

	return fresh, nil
}
