package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve_IncrementsCounterAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	ops := NewOps(reg, "name_server")

	ops.Observe("CREATE", "SUCCESS", 0.01)
	ops.Observe("CREATE", "SUCCESS", 0.02)

	families, err := reg.Gather()
	require.NoError(t, err)

	var counterTotal float64
	var histCount uint64
	for _, f := range families {
		switch f.GetName() {
		case "dfs_name_server_requests_total":
			for _, m := range f.Metric {
				counterTotal += m.GetCounter().GetValue()
			}
		case "dfs_name_server_request_duration_seconds":
			for _, m := range f.Metric {
				histCount += m.GetHistogram().GetSampleCount()
			}
		}
	}

	assert.Equal(t, float64(2), counterTotal)
	assert.Equal(t, uint64(2), histCount)
}

func TestObserve_NilReceiverIsNoop(t *testing.T) {
	var ops *Ops
	assert.NotPanics(t, func() { ops.Observe("CREATE", "SUCCESS", 0.01) })
}
