package di

import (
	"context"
	"fmt"
	"time"

	"MacroLens/internal/domain/repository"
	domsvc "MacroLens/internal/domain/service"
	"MacroLens/internal/handler/api"
	internalrepo "MacroLens/internal/repository"
	"MacroLens/internal/service/fred"
	"MacroLens/internal/service/marketdata"
	"MacroLens/internal/service/yahoo"
	"MacroLens/internal/services/validation"
	"MacroLens/internal/usecase"
	"MacroLens/pkg/cache"
	pkgch "MacroLens/pkg/clickhouse"
	"MacroLens/pkg/config"
	xhttp "MacroLens/pkg/http"
	applogger "MacroLens/pkg/logger"
	"MacroLens/pkg/metrics"
	"MacroLens/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	format := "json"
	if cfg.Environment == "development" {
		level = "debug"
		format = "console"
	}
	return applogger.New(&applogger.Config{
		Level:  level,
		Format: format,
		Output: "stdout",
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideSeriesStore creates the ClickHouse-backed series store. A deployment
// without ClickHouse configured runs with a nil store; fetches simply lose
// their fallback.
func ProvideSeriesStore(cfg *config.Config, l *applogger.Logger) (repository.SeriesStore, error) {
	if cfg.ClickHouse.Host == "" {
		l.Warn("clickhouse not configured, series persistence disabled")
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	store := internalrepo.NewCHSeriesStore(client, cfg.ClickHouse.Database)
	store.SetLogger(l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return store, nil
}

// ProvideSeriesSource wires the Yahoo and FRED clients behind the resilient
// store-backed decorator.
func ProvideSeriesSource(cfg *config.Config, store repository.SeriesStore, l *applogger.Logger) repository.SeriesSource {
	prices := yahoo.New(
		cfg.Sources.Yahoo.BaseURL,
		cfg.Sources.Yahoo.Range,
		cfg.Sources.Yahoo.Interval,
		cfg.Sources.Yahoo.Timeout,
	)
	macro := fred.New(
		cfg.Sources.FRED.BaseURL,
		cfg.Sources.FRED.APIKey,
		cfg.Sources.FRED.Timeout,
	)
	return internalrepo.NewResilientSource(marketdata.New(prices, macro), store, l)
}

// ProvideAssessor selects the causality assessor implementation.
func ProvideAssessor(cfg *config.Config) domsvc.CausalityAssessor {
	if cfg.Assessor.Provider == "chat" {
		return validation.NewChatAssessor(cfg)
	}
	return validation.NewAutoAssessor()
}

// ProvideScanConfig maps configuration onto the scan tunables.
func ProvideScanConfig(cfg *config.Config) usecase.ScanConfig {
	return usecase.ScanConfig{
		Universe:      cfg.Scan.Universe,
		EquityProxies: cfg.Scan.EquityProxies,
		ForceInclude:  cfg.Scan.ForceInclude,
		LongLags:      cfg.Scan.LongLags,
		ShortLags:     cfg.Scan.ShortLags,
		Threshold:     cfg.Scan.Threshold,
		MinObs:        cfg.Scan.MinObs,
		RecentWindow:  cfg.Scan.RecentWindow,
		RecentMinObs:  cfg.Scan.RecentMinObs,
		NoiseLevel:    cfg.Scan.NoiseLevel,
	}
}

// ProvideScanner creates the driver scan use case.
func ProvideScanner(
	source repository.SeriesSource,
	assessor domsvc.CausalityAssessor,
	m repository.Metrics,
	scanCfg usecase.ScanConfig,
	l *applogger.Logger,
) domsvc.DriverScanner {
	return usecase.NewDriverScanUseCase(source, assessor, m, scanCfg, l)
}

// ProvideValuer creates the valuation use case.
func ProvideValuer(
	cfg *config.Config,
	source repository.SeriesSource,
	m repository.Metrics,
	l *applogger.Logger,
) domsvc.Valuer {
	return usecase.NewValuationUseCase(source, m, cfg.Scan.EquityProxies, l)
}

// ProvideCache creates the scan memoization cache: layered memory+Redis when
// Redis is configured, memory-only otherwise.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, error) {
	if !cfg.Cache.Redis.Enabled {
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemoryMax)), nil
	}

	redisCache, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
	)
	if err != nil {
		l.Warn("redis unavailable, falling back to memory cache", applogger.Error(err))
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemoryMax)), nil
	}
	return cache.NewLayeredCache(redisCache, cfg.Cache.MemoryMax), nil
}

// ProvideHandler creates the HTTP handler with scan memoization wired in.
func ProvideHandler(
	cfg *config.Config,
	l *applogger.Logger,
	scanner domsvc.DriverScanner,
	valuer domsvc.Valuer,
	store repository.SeriesStore,
	cacheSvc cache.Service,
) xhttp.Handler {
	h := api.NewDriversEchoHandler(l, scanner, valuer, store)
	if cacheSvc != nil {
		h.SetCache(cacheSvc, cfg.Cache.ScanTTL)
	}
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	store repository.SeriesStore,
	cacheSvc cache.Service,
) *server.App {
	return server.New(cfg, l, handler, store, cacheSvc)
}
