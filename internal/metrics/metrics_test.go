package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.GenerationOutcome("ok")
	m.GenerationOutcome("ok")
	m.GenerationOutcome("contract_violation")
	m.AccessDenied("trial_exhausted")
	m.QuizCompleted("good")
	m.SetActiveSessions(3)
	m.ObserveGeneration(1500 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.generationOutcomes.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generationOutcomes.WithLabelValues("contract_violation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.accessDenied.WithLabelValues("trial_exhausted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.quizzesCompleted.WithLabelValues("good")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.activeSessions))

	count, err := testutil.GatherAndCount(reg, "quiz_generation_duration_seconds")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.GenerationOutcome("ok")
		m.AccessDenied("trial_exhausted")
		m.QuizCompleted("poor")
		m.SetActiveSessions(1)
		m.ObserveGeneration(time.Second)
	})
}
