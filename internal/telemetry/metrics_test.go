package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowdeck/viewer/reactive"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestSchedulerMetricsObserveFlushes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := InstrumentScheduler(reg)
	t.Cleanup(func() { reactive.SetFlushObserver(nil) })

	s := reactive.NewSignal(0)
	eff := reactive.NewEffect(func() func() {
		s.Get()
		return nil
	})
	t.Cleanup(eff.Dispose)

	before := counterValue(t, m.EffectsRun)
	s.Set(1)
	reactive.Flush()

	assert.Greater(t, counterValue(t, m.EffectsRun), before)
	assert.Equal(t, float64(0), counterValue(t, m.EffectsErrored))
}

func TestQueryMetricsRegisterAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewQueryMetrics(reg)

	m.FetchesStarted.Inc()
	m.FetchesStarted.Inc()
	m.FetchesDeduped.Inc()

	assert.Equal(t, float64(2), counterValue(t, m.FetchesStarted))
	assert.Equal(t, float64(1), counterValue(t, m.FetchesDeduped))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["viewer_query_fetches_started_total"])
	assert.True(t, names["viewer_query_fetch_latency_seconds"])
}
