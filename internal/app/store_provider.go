package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	redisclient "github.com/yungbote/employee-registry/internal/platform/redis"
	"github.com/yungbote/employee-registry/internal/data/db"
	"github.com/yungbote/employee-registry/internal/data/store"
	"github.com/yungbote/employee-registry/internal/data/store/gormstore"
	"github.com/yungbote/employee-registry/internal/data/store/memory"
	"github.com/yungbote/employee-registry/internal/data/store/redisstore"
	"github.com/yungbote/employee-registry/internal/platform/logger"
)

var (
	openDB         = db.Open
	newRedisClient = redisclient.NewClient
)

type StoreProviderBootstrapErrorCode string

const (
	StoreProviderBootstrapErrorInvalidBackend StoreProviderBootstrapErrorCode = "invalid_backend"
	StoreProviderBootstrapErrorConnectFailed  StoreProviderBootstrapErrorCode = "connect_failed"
)

type StoreProviderBootstrapError struct {
	Code    StoreProviderBootstrapErrorCode
	Backend string
	Cause   error
}

func (e *StoreProviderBootstrapError) Error() string {
	if e == nil {
		return "store bootstrap failed"
	}
	return fmt.Sprintf("store bootstrap failed (code=%s backend=%q): %v", e.Code, e.Backend, e.Cause)
}

func (e *StoreProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// storeHandles is what resolveStore opened. DB and Redis are set only for
// the backends that use them so the caller can ping and close them.
type storeHandles struct {
	Backend StoreBackend
	Store   store.Store
	DB      *gorm.DB
	Redis   goredis.UniversalClient
}

func resolveStore(ctx context.Context, log *logger.Logger, cfg Config) (*storeHandles, error) {
	backend := StoreBackend(strings.ToLower(strings.TrimSpace(string(cfg.StoreBackend))))
	if backend == "" {
		backend = StoreBackendMemory
	}
	log.Info("Selecting employee store", "backend", backend)

	switch backend {
	case StoreBackendMemory:
		return &storeHandles{Backend: backend, Store: memory.New(log)}, nil

	case StoreBackendSQLite, StoreBackendPostgres:
		dbCfg := db.Config{Driver: db.DriverSQLite, DSN: cfg.SQLiteDSN, SlowThreshold: cfg.DBSlowQuery}
		if backend == StoreBackendPostgres {
			dbCfg = db.Config{Driver: db.DriverPostgres, DSN: cfg.Postgres.DSN(), SlowThreshold: cfg.DBSlowQuery}
		}
		conn, err := openDB(dbCfg, log)
		if err != nil {
			return nil, bootstrapFailure(log, backend, StoreProviderBootstrapErrorConnectFailed, err)
		}
		return &storeHandles{Backend: backend, Store: gormstore.New(conn, log), DB: conn}, nil

	case StoreBackendRedis:
		rdb, err := newRedisClient(ctx, log, redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, bootstrapFailure(log, backend, StoreProviderBootstrapErrorConnectFailed, err)
		}
		return &storeHandles{Backend: backend, Store: redisstore.New(rdb, log, cfg.RedisPrefix), Redis: rdb}, nil
	}

	return nil, bootstrapFailure(log, backend, StoreProviderBootstrapErrorInvalidBackend,
		fmt.Errorf("unsupported store backend %q", backend))
}

func bootstrapFailure(log *logger.Logger, backend StoreBackend, code StoreProviderBootstrapErrorCode, cause error) error {
	err := &StoreProviderBootstrapError{Code: code, Backend: string(backend), Cause: cause}
	log.Error("Employee store bootstrap failed", "backend", backend, "error_code", code, "error", cause)
	return err
}

func storeProviderBootstrapErrorCode(err error) StoreProviderBootstrapErrorCode {
	var bootstrapErr *StoreProviderBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return StoreProviderBootstrapErrorConnectFailed
}
