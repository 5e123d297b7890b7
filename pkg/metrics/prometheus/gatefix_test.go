package prometheus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coriolisfix/gatefix/pkg/metrics"
)

func TestNewGatefixMetricsReturnsNilWhenDisabled(t *testing.T) {
	metrics.Reset()
	m := NewGatefixMetrics()
	assert.Nil(t, m)
	m.SetSessionCount("FIX", "ESTABLISHED", 1) // nil-safe, must not panic
}

func TestNewGatefixMetricsRecordsObservations(t *testing.T) {
	metrics.Reset()
	metrics.InitRegistry()
	t.Cleanup(metrics.Reset)

	m := NewGatefixMetrics()
	require.NotNil(t, m)

	m.SetSessionCount("FIX", "ESTABLISHED", 3)
	m.SetRetransmitsInFlight(2)
	m.ObserveReplyCompletion("initiate", "COMPLETED")
	m.ObserveDutyCycle(50 * time.Microsecond)

	families, err := metrics.GetRegistry().Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}
