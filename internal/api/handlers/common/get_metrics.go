package common

import (
	"github.com/labstack/echo/v4"
	"github/chapool/wallet-bridge/internal/api"
)

func GetMetricsRoute(s *api.Server) *echo.Route {
	return s.Router.Root.GET("/metrics", getMetricsHandler(s))
}

func getMetricsHandler(s *api.Server) echo.HandlerFunc {
	handler := s.Metrics.Handler()

	return func(c echo.Context) error {
		if !s.Config.Management.EnableMetrics {
			return echo.ErrNotFound
		}

		return handler(c)
	}
}
