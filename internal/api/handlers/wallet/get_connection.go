package wallet

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/wallet-bridge/internal/api"
	"github/chapool/wallet-bridge/internal/types"
	"github/chapool/wallet-bridge/internal/util"
	"github/chapool/wallet-bridge/internal/wallet/connection"
)

func GetConnectionRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Wallet.GET("/connection", getConnectionHandler(s))
}

func getConnectionHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		return util.ValidateAndReturn(c, http.StatusOK, ConnectionResponse(s.Connection.State()))
	}
}

func ConnectionResponse(state connection.State) *types.ConnectionResponse {
	if !state.Connected {
		return &types.ConnectionResponse{Connected: false}
	}

	return &types.ConnectionResponse{
		Connected: true,
		Address:   state.Address.String(),
	}
}
