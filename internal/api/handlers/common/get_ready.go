package common

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/wallet-bridge/internal/api"
	"github/chapool/wallet-bridge/internal/util"
)

// StatusNotReady is returned while the server or one of its components is unusable.
const StatusNotReady = 521

func GetReadyRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/ready", getReadyHandler(s))
}

// Readiness check
// This endpoint returns 200 when our Service is ready to serve traffic (i.e. respond to queries).
// Note that /-/ready is typically public (and not shielded by a mgmt-secret), we thus prevent information leakage here and only return `"Ready."`.
func getReadyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.Ready() {
			return c.String(StatusNotReady, "Not ready.")
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), s.Config.Management.ReadinessTimeout)
		defer cancel()

		if _, err := s.Ledger.GetLatestAnchor(ctx); err != nil {
			util.LogFromEchoContext(c).Warn().Err(err).Msg("Readiness probe failed to reach the ledger")
			return c.String(StatusNotReady, "Not ready.")
		}

		return c.String(http.StatusOK, "Ready.")
	}
}
