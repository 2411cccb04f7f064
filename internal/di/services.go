package di

import (
	"context"
	"fmt"

	"github.com/aristath/frontier/internal/clients/s3prices"
	"github.com/aristath/frontier/internal/clients/yahoo"
	"github.com/aristath/frontier/internal/config"
	"github.com/aristath/frontier/internal/modules/charts"
	"github.com/aristath/frontier/internal/modules/historical"
	"github.com/aristath/frontier/internal/modules/optimization"
	"github.com/aristath/frontier/internal/modules/universe"
	"github.com/rs/zerolog"
)

// InitializeServices creates the price providers and the services built on them.
// A provider already set on the container is kept, which lets tests inject fakes.
func InitializeServices(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	if container.UpstreamProvider == nil {
		provider, err := newPriceProvider(ctx, cfg, log)
		if err != nil {
			return err
		}
		container.UpstreamProvider = provider
	}

	container.PriceProvider = container.UpstreamProvider
	if container.ClientDataRepo != nil {
		container.PriceProvider = historical.NewCachedProvider(container.UpstreamProvider, container.ClientDataRepo, cfg.Cache.TTL, log)
	}

	container.TickerValidator = universe.NewTickerValidator(log)
	container.PriceFetcher = historical.NewFetcher(container.PriceProvider, cfg.Prices.FetchConcurrency, log)
	container.QuoteService = historical.NewQuoteService(container.PriceProvider, log)
	container.ChartsService = charts.NewService(log)
	container.OptimizerService = optimization.NewOptimizerService(
		container.TickerValidator,
		container.PriceFetcher,
		container.ChartsService,
		optimization.Config{
			Period:         cfg.Prices.Period,
			Interval:       cfg.Prices.Interval,
			PeriodsPerYear: cfg.Prices.PeriodsPerYear,
			SamplerWorkers: cfg.Optimizer.SamplerWorkers,
			MaxSimulations: cfg.Optimizer.MaxSimulations,
		},
		log,
	)

	log.Info().
		Str("provider", cfg.Prices.Provider).
		Bool("cache", container.ClientDataRepo != nil).
		Msg("Services initialized")

	return nil
}

func newPriceProvider(ctx context.Context, cfg *config.Config, log zerolog.Logger) (historical.PriceProvider, error) {
	switch cfg.Prices.Provider {
	case config.ProviderS3:
		client, err := s3prices.NewClient(ctx, s3prices.Config{
			Bucket:          cfg.S3.Bucket,
			Prefix:          cfg.S3.Prefix,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 price client: %w", err)
		}
		return client, nil
	case config.ProviderYahoo, "":
		return yahoo.NewClient(log), nil
	default:
		return nil, fmt.Errorf("unknown price provider %q", cfg.Prices.Provider)
	}
}
