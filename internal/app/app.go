package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/galaksio/quote-engine/internal/config"
	"github.com/galaksio/quote-engine/internal/engine"
	"github.com/galaksio/quote-engine/internal/provider"
	"github.com/galaksio/quote-engine/internal/quotecache"
	"github.com/galaksio/quote-engine/internal/server"
	"github.com/galaksio/quote-engine/internal/storage"
	"github.com/galaksio/quote-engine/internal/x402"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

// newRegistry wires every provider adapter in its fixed tie-break order.
func (a *App) newRegistry() *provider.Registry {
	p := a.Config.Providers

	akash := provider.NewAkash(provider.AkashOptions{
		BaseURL: p.Akash.BaseURL,
		Timeout: p.Akash.Timeout,
	}, a.Logger)

	merit := provider.NewMeritSystems(provider.MeritSystemsOptions{
		BaseURL: p.MeritSystems.BaseURL,
		Timeout: p.MeritSystems.Timeout,
	}, x402.NewClient(x402.Options{Timeout: p.MeritSystems.Timeout}, a.Logger), a.Logger)

	arweave := provider.NewArweave(provider.ArweaveOptions{
		PriceURL: p.Arweave.PriceURL,
		FeedURL:  p.Arweave.FeedURL,
		Timeout:  p.Arweave.Timeout,
	}, a.Logger)

	pinata := provider.NewPinata(provider.PinataOptions{
		BaseURL: p.Pinata.BaseURL,
		Timeout: p.Pinata.Timeout,
	}, x402.NewClient(x402.Options{Timeout: p.Pinata.Timeout}, a.Logger), a.Logger)

	openx := provider.NewOpenX402(provider.OpenX402Options{
		BaseURL: p.OpenX402.BaseURL,
		Timeout: p.OpenX402.Timeout,
	}, x402.NewClient(x402.Options{Timeout: p.OpenX402.Timeout}, a.Logger), a.Logger)

	galaksio := provider.NewGalaksioStorage(provider.GalaksioStorageOptions{
		BaseURL: p.GalaksioStorage.BaseURL,
		Timeout: p.GalaksioStorage.Timeout,
	}, x402.NewClient(x402.Options{Timeout: p.GalaksioStorage.Timeout}, a.Logger), a.Logger)

	xcache := provider.NewXCache(provider.XCacheOptions{
		BaseURL:       p.XCache.BaseURL,
		DefaultRegion: p.XCache.Region,
		Timeout:       p.XCache.Timeout,
	}, x402.NewClient(x402.Options{Timeout: p.XCache.Timeout}, a.Logger), a.Logger)

	return provider.NewRegistry(akash, merit, arweave, pinata, openx, galaksio, xcache)
}

// newEngine assembles the quote engine with its optional result cache. The
// returned closer releases cache resources.
func (a *App) newEngine() (*engine.Engine, func()) {
	var cache engine.ResultCache
	closer := func() {}

	switch a.Config.Cache.Backend {
	case "memory":
		cache = quotecache.NewMemory()
	case "redis":
		redisCache := quotecache.NewRedis(quotecache.RedisOptions{
			Addr:     a.Config.Cache.Redis.Addr,
			Password: a.Config.Cache.Redis.Password,
			DB:       a.Config.Cache.Redis.DB,
		}, a.Logger)
		cache = redisCache
		closer = func() { _ = redisCache.Close() }
	}

	eng := engine.New(a.newRegistry(), cache, engine.Options{
		AdapterTimeout: a.Config.Engine.AdapterTimeout,
		CacheTTL:       a.Config.Cache.TTL,
	}, a.Logger)

	return eng, closer
}

// openHistory opens the optional comparison history store. A nil store
// means persistence is disabled.
func (a *App) openHistory(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	return store, store.Close, nil
}

// Serve runs the HTTP API until interrupted.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	eng, closeCache := a.newEngine()
	defer closeCache()

	store, closeStore, err := a.openHistory(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; comparison history disabled")
	}
	if closeStore != nil {
		defer closeStore()
	}

	var history storage.HistoryStore
	if store != nil {
		history = store
	}

	srv := server.New(server.Options{
		Listen:          a.Config.Server.Listen,
		RequestTimeout:  a.Config.Engine.RequestTimeout,
		ShutdownTimeout: a.Config.Server.ShutdownTimeout,
	}, eng, history, a.Logger)

	a.Logger.Info().Msg("starting quote service")
	err = srv.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("quote service stopped")
	return nil
}
