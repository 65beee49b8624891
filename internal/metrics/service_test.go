package metrics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/wallet-bridge/internal/metrics"
)

func TestMetricsRecordFlows(t *testing.T) {
	m, err := metrics.New()
	require.NoError(t, err)

	m.FlowStarted()
	m.FlowStarted()
	m.FlowFinished("done")
	m.SignerResult("signed")
	m.PollAttempts(3)
	m.SetConnected(true)
	m.SetAnchorHeight(115)

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	series := map[string]int{}
	gauges := map[string]float64{}
	for _, f := range families {
		names[f.GetName()] = true
		series[f.GetName()] = len(f.GetMetric())
		if g := f.GetMetric()[0].GetGauge(); g != nil {
			gauges[f.GetName()] = g.GetValue()
		}
	}

	assert.True(t, names["wallet_bridge_flows_total"])
	assert.True(t, names["wallet_bridge_signer_requests_total"])
	assert.True(t, names["wallet_bridge_confirm_poll_attempts"])
	assert.True(t, names["wallet_bridge_flows_inflight"])
	assert.True(t, names["wallet_bridge_signer_connected"])
	assert.True(t, names["wallet_bridge_ledger_anchor_height"])

	assert.Equal(t, 1, series["wallet_bridge_flows_total"])
	assert.InDelta(t, 1, gauges["wallet_bridge_flows_inflight"], 0)
	assert.InDelta(t, 1, gauges["wallet_bridge_signer_connected"], 0)
	assert.InDelta(t, 115, gauges["wallet_bridge_ledger_anchor_height"], 0)
}

func TestMetricsAreIsolatedPerService(t *testing.T) {
	_, err := metrics.New()
	require.NoError(t, err)

	_, err = metrics.New()
	require.NoError(t, err)
}
