// Copyright (c) 2024 The Solum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"
)

func TestPromMetrics(t *testing.T) {
	InitializePrometheusMetrics()

	count1 := Counter("count1")
	gauge1 := Gauge("gauge1")
	hist1 := Histogram("hist1", []int64{0, 10, 100})

	count1.Add(1)
	count1.Add(2)

	gauge1.Set(10)
	gauge1.Add(-3)

	histTotal := 0
	for i := 0; i < 10; i++ {
		hist1.Observe(int64(i))
		histTotal += i
	}

	gatherers := prometheus.Gatherers{prometheus.DefaultGatherer}
	metricFamilies, err := gatherers.Gather()
	require.NoError(t, err)

	collected := make(map[string]*dto.MetricFamily)
	for _, mf := range metricFamilies {
		collected[mf.GetName()] = mf
	}

	require.Equal(t, float64(3), collected["solum_metrics_count1"].Metric[0].GetCounter().GetValue())
	require.Equal(t, float64(7), collected["solum_metrics_gauge1"].Metric[0].GetGauge().GetValue())
	require.Equal(t, float64(histTotal), collected["solum_metrics_hist1"].Metric[0].GetHistogram().GetSampleSum())
}

func TestNoopDefault(t *testing.T) {
	// the noop implementation must swallow everything without side effects
	m := defaultNoopMetrics()
	m.GetOrCreateCountMeter("c").Add(1)
	m.GetOrCreateGaugeMeter("g").Set(1)
	m.GetOrCreateHistogramMeter("h", nil).Observe(1)
	require.Nil(t, m.GetOrCreateHandler())
}
