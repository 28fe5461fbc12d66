package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheus_RecordCommit(t *testing.T) {
	m := NewPrometheusMetrics(prometheus.NewRegistry(), "test")

	m.RecordCommit(true, 3, time.Millisecond)
	m.RecordCommit(false, 5, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.commitTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commitTotal.WithLabelValues("failure")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.commitRows))
}

func TestPrometheus_ScopesGauge(t *testing.T) {
	m := NewPrometheusMetrics(prometheus.NewRegistry(), "test")

	m.RecordScopeOpened()
	m.RecordScopeOpened()
	m.RecordScopeClosed()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.scopesActive))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.scopesOpened))
}

func TestPrometheus_ContextLifetimes(t *testing.T) {
	m := NewPrometheusMetrics(prometheus.NewRegistry(), "test")

	m.RecordContextCreated("scoped")
	m.RecordContextCreated("scoped")
	m.RecordContextDisposed("scoped")
	m.RecordUseCaseExecution("AddPerson", true, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.contextsCreated.WithLabelValues("scoped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.contextsDisposed.WithLabelValues("scoped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.useCaseTotal.WithLabelValues("AddPerson", "success")))
}
