package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"goldetf/internal/config"
	"goldetf/internal/fund"
	"goldetf/internal/httpapi"
	"goldetf/internal/httpx"
	"goldetf/internal/logger"
	"goldetf/internal/quote/yahoo"
	"goldetf/internal/ratelimit"
	"goldetf/internal/valuation"
)

func main() {
	_ = godotenv.Load()
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()
	log := logger.Get()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalw("config load failed", "error", err)
	}

	registry := cfg.Registry()
	hc := httpx.New(time.Duration(cfg.Fetch.ProviderTimeoutSec) * time.Second)
	src := yahoo.New(yahoo.Config{BaseURL: cfg.Fetch.BaseURL}, hc)
	gate := ratelimit.NewGate(time.Duration(cfg.Fetch.MinRequestIntervalSec) * time.Second)

	ttl := time.Duration(cfg.Fetch.CacheTTLSec) * time.Second
	fundCache := valuation.NewStore[fund.Quote](ttl, cfg.Fetch.FundCacheMaxItems)
	spotCache := valuation.NewStore[float64](ttl, cfg.Fetch.SpotCacheMaxItems)

	spot := valuation.NewSpotResolver(src, gate, spotCache, cfg.Fetch.GoldFuturesTicker, cfg.Fetch.FXTicker, log)
	resolver := valuation.NewResolver(registry, src, gate, spot, fundCache, valuation.Config{
		RetryCount: cfg.Fetch.RetryCount,
		FleetPause: time.Duration(cfg.Fetch.FleetPauseSec) * time.Second,
	}, log)

	handlers := httpapi.NewHandlers(resolver, spot, registry, fundCache, spotCache, log)
	router := httpapi.NewRouter(handlers)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.RequestTimeoutSec) * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Fetch.RefreshIntervalSec > 0 {
		go refreshLoop(ctx, resolver, spot, time.Duration(cfg.Fetch.RefreshIntervalSec)*time.Second)
	}

	go func() {
		log.Infow("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("shutdown incomplete", "error", err)
	}
}

// refreshLoop keeps the caches warm so requests rarely pay acquisition
// latency. A cycle that yields nothing waits an extra minute before the next
// tick; the provider is most likely throttling us.
func refreshLoop(ctx context.Context, resolver *valuation.Resolver, spot *valuation.SpotResolver, interval time.Duration) {
	log := logger.Get().Named("refresh")
	const badCycleDelay = time.Minute

	refresh := func() bool {
		if _, err := spot.Resolve(ctx); err != nil {
			log.Warnw("gram gold price refresh failed", "error", err)
		}
		quotes := resolver.ResolveAll(ctx)
		log.Infow("refresh cycle complete", "funds", len(quotes))
		return len(quotes) > 0
	}

	ok := refresh()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-time.After(badCycleDelay):
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ok = refresh()
		}
	}
}
