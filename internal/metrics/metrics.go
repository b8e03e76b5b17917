package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Manager struct {
	// counters
	CounterRequests      *prometheus.CounterVec
	CounterLoginAttempts *prometheus.CounterVec
	CounterProductWrites *prometheus.CounterVec

	// histograms
	HistRequestDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

func NewTestManager() *Manager {
	return NewManager("test_server", prometheus.NewRegistry())
}

func NewManager(namespace string, reg *prometheus.Registry) *Manager {
	namespace = strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(namespace)
	factory := promauto.With(reg)

	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "The total number of handled requests",
		}, []string{"method", "route", "status"}),
		CounterLoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by result",
		}, []string{"result"}),
		CounterProductWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "product_writes_total",
			Help:      "Successful product writes by operation",
		}, []string{"op"}),
		HistRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		gatherer: reg,
	}
}

// RegisterRuntime adds the Go runtime and process collectors to reg.
func RegisterRuntime(reg *prometheus.Registry) {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Manager) LoginAttempt(result string) {
	if m == nil {
		return
	}
	m.CounterLoginAttempts.WithLabelValues(result).Inc()
}

func (m *Manager) ProductWrite(op string) {
	if m == nil {
		return
	}
	m.CounterProductWrites.WithLabelValues(op).Inc()
}

func (m *Manager) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			m.CounterRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			m.HistRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
