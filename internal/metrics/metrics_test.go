package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncrementExcluded("TAMPERED_ID")
	m.IncrementExcluded("TAMPERED_ID")
	m.IncrementSourceFailure("relay-a")
	m.IncrementProjection("issue")
	m.ObserveFetch(time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EventsExcluded.WithLabelValues("TAMPERED_ID")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SourceFailures.WithLabelValues("relay-a")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Projections.WithLabelValues("issue")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 4)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementExcluded("x")
		m.IncrementSourceFailure("x")
		m.IncrementProjection("x")
		m.ObserveFetch(time.Now())
	})
}
