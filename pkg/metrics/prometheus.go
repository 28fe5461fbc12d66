package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type Prometheus struct {
	useCaseTotal     *prometheus.CounterVec
	useCaseDuration  *prometheus.HistogramVec
	commitTotal      *prometheus.CounterVec
	commitRows       prometheus.Counter
	commitDuration   prometheus.Histogram
	contextsCreated  *prometheus.CounterVec
	contextsDisposed *prometheus.CounterVec
	scopesActive     prometheus.Gauge
	scopesOpened     prometheus.Counter
	httpDuration     *prometheus.HistogramVec
}

func NewPrometheusMetrics(reg prometheus.Registerer, serviceName string) *Prometheus {
	labels := prometheus.Labels{"service": serviceName}
	m := &Prometheus{
		useCaseTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "app_usecase_total",
			Help:        "Total number of Use Case executions.",
			ConstLabels: labels,
		}, []string{"use_case", "status"}),
		useCaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "app_usecase_duration_seconds",
			Help:        "Use Case execution latency.",
			Buckets:     []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			ConstLabels: labels,
		}, []string{"use_case", "status"}),
		commitTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "uow_commits_total",
			Help:        "Unit of work commits by outcome.",
			ConstLabels: labels,
		}, []string{"status"}),
		commitRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "uow_commit_rows_total",
			Help:        "Rows affected by successful commits.",
			ConstLabels: labels,
		}),
		commitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "uow_commit_duration_seconds",
			Help:        "Commit latency, successful or not.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}),
		contextsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "uow_contexts_created_total",
			Help:        "Persistence contexts created, by lifetime.",
			ConstLabels: labels,
		}, []string{"lifetime"}),
		contextsDisposed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "uow_contexts_disposed_total",
			Help:        "Persistence contexts disposed, by lifetime.",
			ConstLabels: labels,
		}, []string{"lifetime"}),
		scopesActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "uow_scopes_active",
			Help:        "Scopes currently open.",
			ConstLabels: labels,
		}),
		scopesOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "uow_scopes_opened_total",
			Help:        "Scopes opened since start.",
			ConstLabels: labels,
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "app_http_duration_seconds",
			Help:        "Duration of HTTP requests.",
			Buckets:     []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			ConstLabels: labels,
		}, []string{"method", "path", "status_code"}),
	}

	reg.MustRegister(
		m.useCaseTotal,
		m.useCaseDuration,
		m.commitTotal,
		m.commitRows,
		m.commitDuration,
		m.contextsCreated,
		m.contextsDisposed,
		m.scopesActive,
		m.scopesOpened,
		m.httpDuration,
	)
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

func (p *Prometheus) RecordUseCaseExecution(useCase string, success bool, duration time.Duration) {
	s := status(success)
	p.useCaseTotal.WithLabelValues(useCase, s).Inc()
	p.useCaseDuration.WithLabelValues(useCase, s).Observe(duration.Seconds())
}

func (p *Prometheus) RecordCommit(success bool, rows int64, duration time.Duration) {
	p.commitTotal.WithLabelValues(status(success)).Inc()
	p.commitDuration.Observe(duration.Seconds())
	if success && rows > 0 {
		p.commitRows.Add(float64(rows))
	}
}

func (p *Prometheus) RecordContextCreated(lifetime string) {
	p.contextsCreated.WithLabelValues(lifetime).Inc()
}

func (p *Prometheus) RecordContextDisposed(lifetime string) {
	p.contextsDisposed.WithLabelValues(lifetime).Inc()
}

func (p *Prometheus) RecordScopeOpened() {
	p.scopesOpened.Inc()
	p.scopesActive.Inc()
}

func (p *Prometheus) RecordScopeClosed() {
	p.scopesActive.Dec()
}

func (p *Prometheus) ObserveHTTPRequestDuration(method, path, code string, duration float64) {
	p.httpDuration.WithLabelValues(method, path, code).Observe(duration)
}
