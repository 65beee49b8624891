package common_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/wallet-bridge/internal/api"
	"github/chapool/wallet-bridge/internal/api/handlers/common"
	"github/chapool/wallet-bridge/internal/config"
	"github/chapool/wallet-bridge/internal/test"
)

func TestGetHealthy(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "GET", "/-/healthy?mgmt-secret="+s.Config.Management.Secret, nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		body := res.Body.String()
		assert.Contains(t, body, "Ready: true")
		assert.Contains(t, body, "at height 42")
		assert.Contains(t, body, "Signer: disconnected")
		assert.Contains(t, body, "Signer listening: false")
		assert.Contains(t, body, "Pending signature requests: 0")
		assert.Contains(t, body, "Probes succeeded.")
	})
}

func TestGetHealthyLedgerDown(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		s.Ledger.(*test.FakeLedger).Anchor = nil

		res := test.PerformRequest(t, s, "GET", "/-/healthy?mgmt-secret="+s.Config.Management.Secret, nil, nil)
		require.Equal(t, common.StatusNotReady, res.Result().StatusCode)
		assert.Contains(t, res.Body.String(), "Ledger: no anchor")
		assert.Contains(t, res.Body.String(), "Probes failed.")
	})
}

func TestGetHealthyWrongSecret(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "GET", "/-/healthy?mgmt-secret=wrong", nil, nil)
		require.Equal(t, http.StatusUnauthorized, res.Result().StatusCode)

		res = test.PerformRequest(t, s, "GET", "/-/version", nil, nil)
		require.Equal(t, http.StatusUnauthorized, res.Result().StatusCode)
	})
}

func TestGetVersion(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "GET", "/-/version?mgmt-secret="+s.Config.Management.Secret, nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)
		require.Equal(t, config.GetFormattedBuildArgs(), res.Body.String())
	})
}

func TestGetMetrics(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "POST", "/api/v1/sign/flows", nil, nil)
		require.Equal(t, http.StatusCreated, res.Result().StatusCode)

		res = test.PerformRequest(t, s, "GET", "/metrics", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		body := res.Body.String()
		assert.Contains(t, body, "wallet_bridge_signer_connected 0")
		assert.Contains(t, body, "go_goroutines")
	})
}

func TestGetMetricsDisabled(t *testing.T) {
	cfg := test.TestServerConfig()
	cfg.Management.EnableMetrics = false

	test.WithTestServerConfigurable(t, cfg, func(s *api.Server) {
		res := test.PerformRequest(t, s, "GET", "/metrics", nil, nil)
		require.Equal(t, http.StatusNotFound, res.Result().StatusCode)
	})
}
