package common

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github/chapool/wallet-bridge/internal/api"
	"github/chapool/wallet-bridge/internal/util"
)

func GetHealthyRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/healthy", getHealthyHandler(s))
}

// Health check
// Requires the management secret as `mgmt-secret` query param.
// Returns one line per probe, 200 when every probe passed and 521 otherwise.
func getHealthyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.QueryParam("mgmt-secret") != s.Config.Management.Secret {
			return echo.ErrUnauthorized
		}

		if !s.Ready() {
			return c.String(StatusNotReady, "Ready: false\nProbes failed.")
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), s.Config.Management.LivenessTimeout)
		defer cancel()

		var b strings.Builder
		healthy := true

		b.WriteString("Ready: true\n")

		anchor, err := s.Ledger.GetLatestAnchor(ctx)
		if err != nil {
			healthy = false
			util.LogFromEchoContext(c).Warn().Err(err).Msg("Health probe failed to reach the ledger")
			fmt.Fprintf(&b, "Ledger: %v\n", err)
		} else {
			fmt.Fprintf(&b, "Ledger: anchor %s at height %d\n", anchor.Value, anchor.Height)
		}

		fmt.Fprintf(&b, "Signer: %s\n", s.Connection.State())
		fmt.Fprintf(&b, "Signer listening: %t\n", s.Mailbox.Listening())
		fmt.Fprintf(&b, "Pending signature requests: %d\n", s.Mailbox.Pending())

		if !healthy {
			b.WriteString("Probes failed.")
			return c.String(StatusNotReady, b.String())
		}

		b.WriteString("Probes succeeded.")
		return c.String(http.StatusOK, b.String())
	}
}
