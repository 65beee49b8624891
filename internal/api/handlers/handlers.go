package handlers

import (
	"github.com/labstack/echo/v4"
	"github/chapool/wallet-bridge/internal/api"
	"github/chapool/wallet-bridge/internal/api/handlers/bridge"
	"github/chapool/wallet-bridge/internal/api/handlers/common"
	"github/chapool/wallet-bridge/internal/api/handlers/ledger"
	"github/chapool/wallet-bridge/internal/api/handlers/sign"
	"github/chapool/wallet-bridge/internal/api/handlers/wallet"
)

func AttachAllRoutes(s *api.Server) {
	// attach our routes
	s.Router.Routes = []*echo.Route{
		bridge.GetRequestsRoute(s),
		bridge.PostRequestResponseRoute(s),
		common.GetHealthyRoute(s),
		common.GetMetricsRoute(s),
		common.GetReadyRoute(s),
		common.GetVersionRoute(s),
		ledger.GetAnchorRoute(s),
		sign.GetFlowRoute(s),
		sign.PostFlowRoute(s),
		sign.PostInvokeRoute(s),
		wallet.GetConnectionRoute(s),
		wallet.PostEventRoute(s),
	}
}
