package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	var m Metrics = NoopMetrics{}

	m.Counter("x", 1)
	m.Gauge("x", 1)
	m.Histogram("x", 1)
	m.Timing("x", time.Second)
}

func TestInMemoryMetrics(t *testing.T) {
	m := NewInMemoryMetrics()

	m.Counter(MetricCommits, 1, T("outcome", "committed"))
	m.Counter(MetricCommits, 1, T("outcome", "conflict"))
	m.Counter(MetricCommits, 1, T("outcome", "committed"))
	assert.Equal(t, int64(2), m.GetCounter(MetricCommits, T("outcome", "committed")))
	assert.Equal(t, int64(1), m.GetCounter(MetricCommits, T("outcome", "conflict")))

	m.Gauge(MetricOutboxLag, 3)
	m.Gauge(MetricOutboxLag, 1.5)
	assert.Equal(t, 1.5, m.GetGauge(MetricOutboxLag))

	m.Timing(MetricCommitDuration, 20*time.Millisecond)
	assert.Equal(t, []time.Duration{20 * time.Millisecond}, m.GetTimings(MetricCommitDuration))
}

func TestFormatKey_TagOrderIndependent(t *testing.T) {
	a := formatKey("m", []Tag{T("b", "2"), T("a", "1")})
	b := formatKey("m", []Tag{T("a", "1"), T("b", "2")})
	assert.Equal(t, a, b)
	assert.Equal(t, "m:a=1:b=2", a)
}

func gather(t *testing.T, m *PrometheusMetrics, name string) *dto.MetricFamily {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func TestPrometheusMetrics(t *testing.T) {
	m := NewPrometheusMetrics()

	m.Counter(MetricCommits, 1, T("outcome", "committed"))
	m.Counter(MetricCommits, 2, T("outcome", "committed"))
	m.Counter(MetricCommits, 1, T("outcome", "conflict"))

	family := gather(t, m, MetricCommits)
	require.NotNil(t, family)
	assert.Equal(t, dto.MetricType_COUNTER, family.GetType())
	require.Len(t, family.GetMetric(), 2)

	total := 0.0
	for _, metric := range family.GetMetric() {
		total += metric.GetCounter().GetValue()
	}
	assert.Equal(t, 4.0, total)

	t.Run("mismatched labels are dropped", func(t *testing.T) {
		m.Counter(MetricCommits, 1, T("other", "x"))
		assert.Len(t, gather(t, m, MetricCommits).GetMetric(), 2)
	})

	t.Run("gauge and timing", func(t *testing.T) {
		m.Gauge(MetricBreakerState, 2, T("name", "commit"))
		m.Timing(MetricCommitDuration, 250*time.Millisecond)

		gauge := gather(t, m, MetricBreakerState)
		require.NotNil(t, gauge)
		assert.Equal(t, 2.0, gauge.GetMetric()[0].GetGauge().GetValue())

		hist := gather(t, m, MetricCommitDuration)
		require.NotNil(t, hist)
		assert.Equal(t, uint64(1), hist.GetMetric()[0].GetHistogram().GetSampleCount())
		assert.InDelta(t, 0.25, hist.GetMetric()[0].GetHistogram().GetSampleSum(), 1e-9)
	})

	t.Run("handler exposes metrics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body, err := io.ReadAll(rec.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), MetricCommits)
	})
}
