package main

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/example/animelist/internal/platform/config"
	"github.com/example/animelist/internal/platform/db"
	"github.com/example/animelist/internal/platform/events"
	"github.com/example/animelist/internal/platform/httpserver"
	"github.com/example/animelist/internal/platform/logging"
	"github.com/example/animelist/internal/platform/natsconn"
	"github.com/example/animelist/internal/platform/run"
	mylistconfig "github.com/example/animelist/services/mylist/internal/config"
	"github.com/example/animelist/services/mylist/internal/handlers"
	"github.com/example/animelist/services/mylist/internal/store"
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

	mcfg, err := mylistconfig.LoadMylist()
	if err != nil {
		log.Error("load mylist config", zap.Error(err))
		return 1
	}

	ctx := context.Background()
	lists, closeStore := initStore(ctx, log, cfg, mcfg)
	if closeStore != nil {
		defer closeStore()
	}

	user, err := lists.EnsureUser(ctx, mcfg.DefaultUserEmail, mcfg.DefaultUserName)
	if err != nil {
		log.Error("bootstrap default user", zap.Error(err))
		return 1
	}
	log.Info("default user ready", zap.String("user_id", user.ID), zap.String("email", user.Email))

	publisher := events.New(nil, log)
	nc, err := natsconn.Connect(natsconn.Options{URL: mcfg.NATSURL, Name: cfg.ServiceName})
	switch {
	case errors.Is(err, natsconn.ErrNotConfigured):
		log.Info("NATS_URL not set, list events disabled")
	case err != nil:
		log.Warn("nats unavailable, list events disabled", zap.Error(err))
	default:
		defer nc.Close()
		js, err := nc.JetStream()
		if err != nil {
			log.Warn("jetstream unavailable, list events disabled", zap.Error(err))
			break
		}
		if err := events.EnsureStream(js); err != nil {
			log.Warn("ensure event stream", zap.Error(err))
		}
		publisher = events.New(js, log)
	}

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{
		Logger: log,
		ReadyFunc: func() error {
			c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return lists.Ping(c)
		},
	})
	handlers.Routes(r, handlers.Deps{Store: lists, UserID: user.ID, Events: publisher, Log: log})

	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, ServiceName: cfg.ServiceName, Logger: log, Router: r})

	// gRPC health server
	lis, err := net.Listen("tcp", mcfg.GRPCAddr)
	if err != nil {
		log.Error("grpc listen", zap.Error(err))
		return 1
	}
	grpcSrv := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	reflection.Register(grpcSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthSrv.SetServingStatus(cfg.ServiceName, healthpb.HealthCheckResponse_SERVING)
	go func() {
		log.Info("grpc server starting", zap.String("addr", mcfg.GRPCAddr))
		if err := grpcSrv.Serve(lis); err != nil {
			log.Error("grpc serve", zap.Error(err))
		}
	}()

	runner := run.New(log)
	code := runner.WithSignals(func(context.Context) error {
		return srv.Start(log)
	}, func(ctx context.Context) error {
		healthSrv.Shutdown()
		stopped := make(chan struct{})
		go func() {
			grpcSrv.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-ctx.Done():
			grpcSrv.Stop()
		}
		return srv.Shutdown(ctx)
	})

	log.Info("exit", zap.Int("code", code))
	return code
}

// initStore selects the ListStore backend: Postgres when DATABASE_URL is
// set, SQLite when SQLITE_PATH is set, otherwise memory. In production
// (APP_ENV=production) the in-memory store is refused and any database
// failure terminates the process.
func initStore(ctx context.Context, log *zap.Logger, cfg config.AppConfig, mcfg mylistconfig.MylistConfig) (store.ListStore, func()) {
	isProd := cfg.IsProduction()
	fail := func(msg string, err error) {
		log.Error(msg, zap.Error(err))
		_ = log.Sync()
		run.Exit(1)
	}

	if mcfg.DatabaseURL != "" {
		if !db.IsPostgresDSN(mcfg.DatabaseURL) {
			log.Warn("DATABASE_URL does not look like a postgres DSN")
		}
		pool, err := db.Open(ctx, mcfg.DatabaseURL)
		if err == nil {
			s := store.NewPostgresListStore(pool)
			if err = s.Migrate(ctx); err == nil {
				log.Info("list store: postgres")
				return s, pool.Close
			}
			pool.Close()
		}
		if isProd {
			fail("postgres is required in production but unavailable", err)
		}
		log.Warn("postgres unavailable, trying fallbacks", zap.Error(err))
	}

	if mcfg.SQLitePath != "" {
		s, err := store.OpenSQLite(ctx, mcfg.SQLitePath)
		if err == nil {
			log.Info("list store: sqlite", zap.String("path", mcfg.SQLitePath))
			return s, func() { _ = s.Close() }
		}
		if isProd {
			fail("sqlite store unavailable in production", err)
		}
		log.Warn("sqlite unavailable, falling back to in-memory store", zap.Error(err))
	}

	if isProd {
		fail("DATABASE_URL or SQLITE_PATH is required in production", errors.New("no persistent store configured"))
	}
	log.Warn("no database configured, using in-memory list store (development only)")
	return store.NewInMemoryListStore(), nil
}
