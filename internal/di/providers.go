package di

import (
	"fmt"

	"StockPulse/internal/domain/repository"
	"StockPulse/internal/handler/api"
	internalrepo "StockPulse/internal/repository"
	"StockPulse/internal/service/alphavantage"
	"StockPulse/internal/service/ratelimit"
	"StockPulse/internal/usecase"
	"StockPulse/pkg/cache"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/metrics"
	"StockPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideCacheService creates the cache backend selected by config.
func ProvideCacheService(cfg *config.Config) (cache.Service, error) {
	switch cfg.Cache.Type {
	case "redis":
		c, err := cache.NewRedisCache(
			cache.WithRedisHost(cfg.Cache.Redis.Host),
			cache.WithRedisPort(cfg.Cache.Redis.Port),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return c, nil
	default:
		return cache.NewMemoryCache(), nil
	}
}

// ProvideQuoteStore creates the quote cache repository.
func ProvideQuoteStore(cacheSvc cache.Service) repository.QuoteStore {
	return internalrepo.NewCacheQuoteStore(cacheSvc)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideMarketData creates the Alpha Vantage client with its request budget.
func ProvideMarketData(cfg *config.Config) repository.MarketData {
	limiter := ratelimit.New(cfg.AlphaVantage.RateLimit.Capacity, cfg.AlphaVantage.RateLimit.RefillPerMin)
	return alphavantage.New(
		cfg.AlphaVantage.APIKey,
		cfg.AlphaVantage.BaseURL,
		cfg.AlphaVantage.TierTimeout,
		alphavantage.WithInterval(cfg.AlphaVantage.Interval),
		alphavantage.WithLimiter(limiter),
	)
}

// ProvideQuoteResolver creates the quote resolution use case.
func ProvideQuoteResolver(
	market repository.MarketData,
	store repository.QuoteStore,
	m repository.Metrics,
	logger *applogger.Logger,
	cfg *config.Config,
) *usecase.QuoteResolver {
	return usecase.NewQuoteResolver(
		market,
		store,
		m,
		logger,
		cfg.Quotes.CacheTTL,
		cfg.AlphaVantage.TierTimeout,
		cfg.Quotes.HistoryMonths,
	)
}

// ProvideQuoteHandler creates the HTTP handler.
func ProvideQuoteHandler(logger *applogger.Logger, resolver *usecase.QuoteResolver) xhttp.Handler {
	return api.NewQuotesEchoHandler(logger, resolver)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	handler xhttp.Handler,
	cacheSvc cache.Service,
) *server.App {
	return server.New(cfg, logger, handler, cacheSvc)
}
