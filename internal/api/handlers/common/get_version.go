package common

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/wallet-bridge/internal/api"
	"github/chapool/wallet-bridge/internal/config"
)

func GetVersionRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/version", getVersionHandler(s))
}

func getVersionHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.QueryParam("mgmt-secret") != s.Config.Management.Secret {
			return echo.ErrUnauthorized
		}

		return c.String(http.StatusOK, config.GetFormattedBuildArgs())
	}
}
