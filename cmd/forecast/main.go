package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/forecast-cli/internal/cache"
	"github.com/kjstillabower/forecast-cli/internal/client"
	"github.com/kjstillabower/forecast-cli/internal/config"
	"github.com/kjstillabower/forecast-cli/internal/credentials"
	"github.com/kjstillabower/forecast-cli/internal/geocode"
	"github.com/kjstillabower/forecast-cli/internal/observability"
	"github.com/kjstillabower/forecast-cli/internal/prompt"
	"github.com/kjstillabower/forecast-cli/internal/report"
	"github.com/kjstillabower/forecast-cli/internal/service"
)

const cityQuestion = "For which city should the forcast be generated for?"

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	runID := observability.NewRunID()
	ctx = observability.ContextWithRunID(ctx, runID)
	logger = logger.With(zap.String("run_id", runID))

	runErr := run(ctx, cfg, logger, os.Stdin, os.Stdout, os.Stderr)
	stop()

	if err := observability.FlushTelemetry(context.Background(), logger, cfg.MetricsTextfilePath); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}
	if runErr != nil {
		logger.Fatal("forecast failed", zap.Error(runErr))
	}
}

// run asks for the city, resolves credentials and coordinates, loads or fetches the
// forecast and prints the temperature summary to out. Prompts go to errOut.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, in io.Reader, out, errOut io.Writer) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	console := prompt.NewConsole(in, errOut)

	city, err := console.Ask(cityQuestion)
	if err != nil {
		return fmt.Errorf("read city: %w", err)
	}
	logger.Info("generating forecast", zap.String("city", city))

	keys := credentials.NewProvider(cfg.APIKey, credentials.NewDotenvStore(cfg.DotenvPath), console, logger)
	apiKey, err := keys.ObtainKey(ctx)
	if err != nil {
		return fmt.Errorf("obtain API key: %w", err)
	}

	resolver := geocode.NewResolver(geocode.Config{
		BaseURL:       cfg.GeocoderURL,
		UserAgent:     cfg.GeocoderUserAgent,
		Timeout:       cfg.GeocoderTimeout,
		RatePerSecond: cfg.GeocoderRatePerSecond,
	}, logger)
	coords, err := resolver.Resolve(ctx, city, console)
	if err != nil {
		return fmt.Errorf("resolve city: %w", err)
	}
	logger.Debug("city resolved", zap.Stringer("coordinates", coords))

	forecastClient, err := client.NewOpenWeatherClient(apiKey, cfg.ForecastAPIURL, cfg.ForecastAPITimeout)
	if err != nil {
		return fmt.Errorf("forecast client: %w", err)
	}

	policy := service.Policy{
		MaxAge:         cfg.CacheMaxAge,
		CoordThreshold: cfg.CoordThreshold,
		ForceRefresh:   cfg.ForceRefresh,
	}
	store := cache.NewFileStore(cfg.CachePath)
	logger.Debug("using cache file", zap.String("path", store.Path()))
	forecastService := service.NewForecastService(forecastClient, store, policy, logger)

	doc, err := forecastService.ResolveForecast(ctx, coords, time.Now())
	if err != nil {
		return err
	}
	return report.Print(out, report.Summarize(doc))
}
