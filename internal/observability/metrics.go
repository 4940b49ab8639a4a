package observability

import (
	"context"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/employee-registry/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge
	apiReqTotal *Counter
	apiReqError *Counter

	storeOps     *CounterVec
	storeLatency *HistogramVec

	registrySize *Gauge
	renames      *Counter
	renamedNames *Counter

	dbStats   *GaugeVec
	redisUp   *Gauge
	redisPing *Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	v := strings.TrimSpace(os.Getenv("METRICS_ENABLED"))
	if v == "" {
		return false
	}
	return strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
}

// Current returns the process-wide instance, nil when metrics are disabled.
func Current() *Metrics {
	return instance
}

// Init builds the process-wide instance once when METRICS_ENABLED is set.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

// New returns an unregistered instance.
func New() *Metrics {
	latencyBuckets := []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}
	return &Metrics{
		apiRequests: NewCounterVec("er_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"er_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			latencyBuckets,
		),
		apiInflight: NewGauge("er_api_inflight_requests", "In-flight API requests."),
		apiReqTotal: NewCounter("er_api_requests_total_all", "Total API requests (all)."),
		apiReqError: NewCounter("er_api_requests_error_total", "API requests answered with a 5xx status."),

		storeOps: NewCounterVec("er_store_operations_total", "Store operations by backend/operation/status.", []string{"backend", "operation", "status"}),
		storeLatency: NewHistogramVec(
			"er_store_operation_duration_seconds",
			"Store operation latency in seconds by backend/operation.",
			[]string{"backend", "operation"},
			latencyBuckets,
		),

		registrySize: NewGauge("er_registry_size", "Employees currently held by the registry."),
		renames:      NewCounter("er_bulk_renames_total", "Completed bulk rename operations."),
		renamedNames: NewCounter("er_bulk_renamed_employees_total", "Employees renamed by bulk rename operations."),

		dbStats:   NewGaugeVec("er_db_pool", "SQL connection pool statistics.", []string{"stat"}),
		redisUp:   NewGauge("er_redis_up", "1 when the last redis ping succeeded."),
		redisPing: NewGauge("er_redis_ping_seconds", "Latency of the last redis ping."),
	}
}

// StartServer serves the exposition on a dedicated listener until ctx ends.
func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

type promWriter interface {
	WritePrometheus(w io.Writer) error
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []promWriter{
		m.apiRequests, m.apiLatency, m.apiInflight, m.apiReqTotal, m.apiReqError,
		m.storeOps, m.storeLatency,
		m.registrySize, m.renames, m.renamedNames,
		m.dbStats, m.redisUp, m.redisPing,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
	m.apiReqTotal.Inc()
	if isServerErrorStatus(status) {
		m.apiReqError.Inc()
	}
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveStoreOperation(backend, operation, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.storeOps.Inc(backend, operation, status)
	m.storeLatency.Observe(dur.Seconds(), backend, operation)
}

func (m *Metrics) SetRegistrySize(n int) {
	if m == nil {
		return
	}
	m.registrySize.Set(float64(n))
}

func (m *Metrics) ObserveBulkRename(renamed int) {
	if m == nil {
		return
	}
	m.renames.Inc()
	m.renamedNames.Add(float64(renamed))
}

func isServerErrorStatus(status string) bool {
	status = strings.TrimSpace(status)
	if len(status) < 3 {
		return false
	}
	_, err := strconv.Atoi(status)
	return err == nil && status[0] == '5'
}
