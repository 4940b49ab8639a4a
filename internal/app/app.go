package app

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/employee-registry/internal/data/db"
	"github.com/yungbote/employee-registry/internal/data/seed"
	"github.com/yungbote/employee-registry/internal/data/store"
	httpx "github.com/yungbote/employee-registry/internal/http"
	httpH "github.com/yungbote/employee-registry/internal/http/handlers"
	"github.com/yungbote/employee-registry/internal/observability"
	"github.com/yungbote/employee-registry/internal/pkg/namegen"
	"github.com/yungbote/employee-registry/internal/platform/logger"
	"github.com/yungbote/employee-registry/internal/services"
)

type App struct {
	Log     *logger.Logger
	Cfg     Config
	Metrics *observability.Metrics
	Store   store.Store

	handles      *storeHandles
	server       *httpx.Server
	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)
	return build(context.Background(), log, cfg)
}

func build(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	metrics := observability.Init(log)
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Env,
		Version:     cfg.Version,
	})

	handles, err := resolveStore(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init store (%s): %w", storeProviderBootstrapErrorCode(err), err)
	}
	st := instrumentStore(string(handles.Backend), handles.Store, metrics)

	if cfg.SeedPath != "" {
		if _, err := seed.Load(ctx, log, st, cfg.SeedPath); err != nil {
			_ = handles.Store.Close()
			log.Sync()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	svc := services.NewEmployeeService(log, st, namegen.New(nil), metrics)

	pingers := map[string]httpH.Pinger{}
	if handles.DB != nil {
		conn := handles.DB
		pingers["database"] = httpH.PingFunc(func(ctx context.Context) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		})
	}
	if handles.Redis != nil {
		rdb := handles.Redis
		pingers["redis"] = httpH.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	router := httpx.NewRouter(httpx.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		ServiceName:     cfg.ServiceName,
		BasePath:        cfg.BasePath,
		CORSOrigins:     cfg.CORSOrigins,
		EmployeeHandler: httpH.NewEmployeeHandler(log, svc, cfg.BasePath),
		HealthHandler:   httpH.NewHealthHandler(pingers),
	})

	return &App{
		Log:          log,
		Cfg:          cfg,
		Metrics:      metrics,
		Store:        st,
		handles:      handles,
		server:       httpx.NewServer(cfg.Addr, router),
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves until ctx is cancelled or the listener fails, then drains
// in-flight requests and releases the store.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.server == nil {
		return fmt.Errorf("app not initialized")
	}
	defer a.Close()

	g, gctx := errgroup.WithContext(ctx)

	a.Metrics.StartServer(gctx, a.Log, a.Cfg.MetricsAddr)
	if a.handles.DB != nil {
		a.Metrics.StartDBCollector(gctx, a.Log, a.handles.DB)
	}
	if a.handles.Redis != nil {
		a.Metrics.StartRedisCollector(gctx, a.Log, a.handles.Redis)
	}

	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", a.server.Addr(), "base_path", a.Cfg.BasePath, "store", a.handles.Backend)
		return a.server.ListenAndServe()
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Log.Info("Shutting down", "timeout", a.Cfg.ShutdownTimeout.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.handles != nil {
		if a.handles.Store != nil {
			if err := a.handles.Store.Close(); err != nil {
				a.Log.Warn("store close failed", "error", err)
			}
		}
		if a.handles.DB != nil {
			if err := db.Close(a.handles.DB); err != nil {
				a.Log.Warn("database close failed", "error", err)
			}
		}
		a.handles = nil
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
		a.otelShutdown = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
