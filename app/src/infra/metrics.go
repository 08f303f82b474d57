package infra

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

var (
	// Transport metrics
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dfd_requests_total",
		Help: "Total number of HTTP and gRPC requests",
	}, []string{"transport", "route", "code"})
	RequestErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dfd_request_errors_total",
		Help: "Total number of HTTP and gRPC requests that ended with an error status",
	}, []string{"transport", "route"})
	ProcessingDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dfd_processing_duration_seconds",
		Help:    "Duration of request processing in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"transport", "route"})

	// Correction metrics
	CorrectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dfd_corrections_total",
		Help: "Corrections computed, by outcome",
	}, []string{"outcome"})
	RangeBiasMeters = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dfd_range_bias_meters",
		Help:    "Slant range correction applied to accepted measurements",
		Buckets: []float64{1, 2, 2.5, 3, 4, 5, 7.5, 10, 15, 25},
	})

	// Benchmark metrics
	BatchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dfd_benchmark_batches_total",
		Help: "Total number of sample batches produced by the generator",
	})
	BenchmarkSamplesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dfd_benchmark_samples_total",
		Help: "Total number of benchmark samples corrected by the worker pool",
	})

	// Worker pool metrics
	WorkerPoolActiveGoroutines = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dfd_worker_pool_active_goroutines",
		Help: "Number of active worker pool goroutines",
	})

	registerOnce      sync.Once
	metricsServerOnce sync.Once
)

func init() {
	InitMetrics()
}

// InitMetrics registers all Prometheus collectors used by the application.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			RequestErrorsTotal,
			ProcessingDurationSeconds,
			CorrectionsTotal,
			RangeBiasMeters,
			BatchesTotal,
			BenchmarkSamplesTotal,
			WorkerPoolActiveGoroutines,
		)
	})
}

// Handler returns an HTTP handler that exposes the registered Prometheus metrics.
func Handler() http.Handler {
	InitMetrics()
	return promhttp.Handler()
}

// StartMetricsServer exposes /metrics on the given port. It returns nil when
// the port is empty or a server was already started; callers shut the
// returned server down themselves.
func StartMetricsServer(logger *Logger, port string) *http.Server {
	InitMetrics()
	if port == "" {
		return nil
	}

	var srv *http.Server
	metricsServerOnce.Do(func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv = &http.Server{
			Addr:              net.JoinHostPort("", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Printf(context.Background(), "metrics server error: %v", err)
			}
		}()
	})
	return srv
}

// HTTPMiddleware instruments HTTP handlers with request/latency metrics.
func HTTPMiddleware(pathResolver func(*http.Request) string) func(http.Handler) http.Handler {
	InitMetrics()
	if pathResolver == nil {
		pathResolver = func(r *http.Request) string {
			if r == nil {
				return "unknown"
			}
			return r.URL.Path
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r == nil {
				RequestErrorsTotal.WithLabelValues("http", "unknown").Inc()
				http.Error(w, "invalid request", http.StatusBadRequest)
				return
			}

			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			defer func() {
				route := pathResolver(r)
				ProcessingDurationSeconds.WithLabelValues("http", route).Observe(time.Since(start).Seconds())
				RequestsTotal.WithLabelValues("http", route, strconv.Itoa(recorder.Status())).Inc()

				if recorder.Status() >= http.StatusBadRequest {
					RequestErrorsTotal.WithLabelValues("http", route).Inc()
				}
			}()

			next.ServeHTTP(recorder, r)
		})
	}
}

// GRPCUnaryInterceptor instruments gRPC unary handlers with request/latency metrics.
func GRPCUnaryInterceptor() grpc.UnaryServerInterceptor {
	InitMetrics()
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		start := time.Now()

		defer func() {
			code := status.Code(err)
			ProcessingDurationSeconds.WithLabelValues("grpc", info.FullMethod).Observe(time.Since(start).Seconds())
			RequestsTotal.WithLabelValues("grpc", info.FullMethod, code.String()).Inc()

			if err != nil {
				RequestErrorsTotal.WithLabelValues("grpc", info.FullMethod).Inc()
			}
		}()

		return handler(ctx, req)
	}
}

// RecordCorrection tracks one correction outcome; rangeBiasM is observed
// only for accepted measurements.
func RecordCorrection(outcome string, rangeBiasM float64) {
	InitMetrics()
	CorrectionsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK {
		RangeBiasMeters.Observe(rangeBiasM)
	}
}

// IncGeneratorBatches increments the generator batch counter.
func IncGeneratorBatches() {
	InitMetrics()
	BatchesTotal.Inc()
}

// AddBenchmarkSamples adds n corrected samples to the benchmark counter.
func AddBenchmarkSamples(n int) {
	InitMetrics()
	if n > 0 {
		BenchmarkSamplesTotal.Add(float64(n))
	}
}

// WorkerStarted increments the worker pool active goroutines gauge.
func WorkerStarted() {
	InitMetrics()
	WorkerPoolActiveGoroutines.Inc()
}

// WorkerFinished decrements the worker pool active goroutines gauge.
func WorkerFinished() {
	InitMetrics()
	WorkerPoolActiveGoroutines.Dec()
}

// statusRecorder captures the response status code for instrumentation.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Status() int {
	return r.status
}
