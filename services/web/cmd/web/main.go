package main

import (
	"context"
	"errors"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/joho/godotenv/autoload"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/animelist/internal/jikan"
	"github.com/example/animelist/internal/mylist"
	"github.com/example/animelist/internal/platform/config"
	"github.com/example/animelist/internal/platform/httpserver"
	"github.com/example/animelist/internal/platform/logging"
	"github.com/example/animelist/internal/platform/natsconn"
	"github.com/example/animelist/internal/platform/run"
	"github.com/example/animelist/services/web/internal/cache"
	webconfig "github.com/example/animelist/services/web/internal/config"
	"github.com/example/animelist/services/web/internal/guard"
	"github.com/example/animelist/services/web/internal/handlers"
	"github.com/example/animelist/services/web/internal/pages"
)

func main() {
	run.Exit(serve())
}

// serve runs the service and returns its exit code. Deferred cleanup
// completes before main exits.
func serve() int {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.LogLevel, cfg.ServiceName)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	wcfg, err := webconfig.LoadWeb()
	if err != nil {
		log.Error("load web config", zap.Error(err))
		return 1
	}

	nc, err := natsconn.Connect(natsconn.Options{URL: wcfg.NATSURL, Name: cfg.ServiceName})
	switch {
	case errors.Is(err, natsconn.ErrNotConfigured):
		log.Info("NATS_URL not set, cache invalidation disabled")
	case err != nil:
		log.Warn("nats unavailable, cache invalidation disabled", zap.Error(err))
	default:
		defer nc.Close()
	}

	genreCache, ping, closeCache := initCache(log, wcfg, nc)
	defer closeCache()

	catalog := jikan.New(wcfg.Catalog(),
		jikan.WithLogger(log),
		jikan.WithCache(genreCache),
	)
	list := mylist.New(wcfg.Mylist())

	tpl, err := handlers.LoadTemplates()
	if err != nil {
		log.Error("load templates", zap.Error(err))
		return 1
	}

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{
		Logger:          log,
		RateLimitPerMin: wcfg.RateLimitPerMin,
		ReadyFunc:       ping,
	})
	handlers.Routes(r, handlers.Deps{
		Pages:     pages.NewDispatcher(catalog, list, log),
		Actions:   pages.NewActions(list, guard.New(), log),
		Templates: tpl,
		Log:       log,
	})

	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, ServiceName: cfg.ServiceName, Logger: log, Router: r})

	runner := run.New(log)
	code := runner.WithSignals(func(context.Context) error {
		return srv.Start(log)
	}, srv.Shutdown)

	log.Info("exit", zap.Int("code", code))
	return code
}

// initCache picks the genre cache: Redis when REDIS_URL is set and
// reachable, otherwise an in-process TTL cache invalidated over NATS.
func initCache(log *zap.Logger, wcfg webconfig.WebConfig, nc *nats.Conn) (jikan.Cache, func() error, func()) {
	if wcfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(wcfg.RedisURL, wcfg.GenreCacheTTL)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			err = rc.Ping(ctx)
			cancel()
			if err == nil {
				log.Info("genre cache: redis")
				ready := func() error {
					ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					return rc.Ping(ctx)
				}
				return rc, ready, func() { _ = rc.Close() }
			}
			_ = rc.Close()
		}
		log.Warn("redis unavailable, using in-memory genre cache", zap.Error(err))
	}

	tc, err := cache.NewTTLCache(wcfg.GenreCacheTTL, nc, wcfg.CacheInvalidateSubject)
	if err != nil {
		log.Warn("cache invalidation subscribe failed", zap.Error(err))
		tc, _ = cache.NewTTLCache(wcfg.GenreCacheTTL, nil, "")
	}
	log.Info("genre cache: memory", zap.Bool("nats_invalidation", nc != nil && err == nil))
	return tc, nil, func() { _ = tc.Close() }
}
