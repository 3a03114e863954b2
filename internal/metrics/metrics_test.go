package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordGeneration(t *testing.T) {
	m := New()
	m.RecordGeneration("strategy", nil, 10*time.Millisecond)
	m.RecordGeneration("strategy", errors.New("boom"), time.Millisecond)
	m.RecordGeneration("strategy", errors.New("boom"), time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("strategy", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("strategy", "error")))
}

func TestRecordFallbackAndRejected(t *testing.T) {
	m := New()
	m.RecordFallback("calendar")
	m.RecordRejected("chat", "typing")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("calendar")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RejectedTotal.WithLabelValues("chat", "typing")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordGeneration("x", nil, 0)
		m.RecordFallback("x")
		m.RecordRejected("x", "y")
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.RecordFallback("strategy")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "contentops_fallbacks_total")
}
