package app

import (
	"net"
	"time"

	"github.com/yungbote/employee-registry/internal/data/db"
	"github.com/yungbote/employee-registry/internal/platform/envutil"
	"github.com/yungbote/employee-registry/internal/platform/logger"
)

type StoreBackend string

const (
	StoreBackendMemory   StoreBackend = "memory"
	StoreBackendSQLite   StoreBackend = "sqlite"
	StoreBackendPostgres StoreBackend = "postgres"
	StoreBackendRedis    StoreBackend = "redis"
)

type Config struct {
	Env             string
	Addr            string
	BasePath        string
	CORSOrigins     []string
	ShutdownTimeout time.Duration

	StoreBackend StoreBackend
	SQLiteDSN    string
	Postgres     db.PostgresParams
	DBSlowQuery  time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	SeedPath string

	MetricsAddr string
	ServiceName string
	Version     string
}

func LoadConfig(log *logger.Logger) Config {
	port := envutil.String("PORT", "8080", log)
	return Config{
		Env:             envutil.String("LOG_MODE", "development", log),
		Addr:            net.JoinHostPort(envutil.String("HOST", "", nil), port),
		BasePath:        envutil.String("API_BASE_PATH", "/employees/Api", log),
		CORSOrigins:     envutil.List("CORS_ALLOW_ORIGINS", []string{"*"}),
		ShutdownTimeout: envutil.Seconds("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),

		StoreBackend: StoreBackend(envutil.String("STORE_BACKEND", string(StoreBackendMemory), log)),
		SQLiteDSN:    envutil.String("SQLITE_DSN", db.DefaultSQLiteDSN, log),
		Postgres: db.PostgresParams{
			Host:     envutil.String("POSTGRES_HOST", "localhost", log),
			Port:     envutil.String("POSTGRES_PORT", "5432", log),
			User:     envutil.String("POSTGRES_USER", "postgres", log),
			Password: envutil.String("POSTGRES_PASSWORD", "", nil),
			Name:     envutil.String("POSTGRES_NAME", "employees", log),
		},
		DBSlowQuery: time.Duration(envutil.Int("DB_SLOW_QUERY_MS", 1000)) * time.Millisecond,

		RedisAddr:     envutil.String("REDIS_ADDR", "localhost:6379", log),
		RedisPassword: envutil.String("REDIS_PASSWORD", "", nil),
		RedisDB:       envutil.Int("REDIS_DB", 0),
		RedisPrefix:   envutil.String("REDIS_PREFIX", "employee", log),

		SeedPath: envutil.String("SEED_PATH", "", log),

		MetricsAddr: envutil.String("METRICS_ADDR", "", log),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "employee-registry", log),
		Version:     envutil.String("SERVICE_VERSION", "", nil),
	}
}
