package router

import (
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"github/chapool/wallet-bridge/internal/api"
	"github/chapool/wallet-bridge/internal/api/handlers"
	"github/chapool/wallet-bridge/internal/api/middleware"
)

// Init builds the echo instance, its middleware chain and all route groups,
// then attaches every handler.
func Init(s *api.Server) {
	s.Echo = echo.New()

	s.Echo.Debug = s.Config.Echo.Debug
	s.Echo.HideBanner = true
	s.Echo.Logger.SetOutput(&echoLogger{level: s.Config.Logger.RequestLevel, log: log.With().Str("component", "echo").Logger()})

	s.Echo.HTTPErrorHandler = HTTPErrorHandlerWithConfig(HTTPErrorHandlerConfig{
		HideInternalServerErrorDetails: s.Config.Echo.HideInternalServerErrorDetails,
	})

	// ---
	// General middleware
	if s.Config.Echo.EnableTrailingSlashMiddleware {
		s.Echo.Pre(echoMiddleware.RemoveTrailingSlash())
	} else {
		log.Warn().Msg("Disabling trailing slash middleware due to environment config")
	}

	if s.Config.Echo.EnableRecoverMiddleware {
		s.Echo.Use(echoMiddleware.RecoverWithConfig(echoMiddleware.RecoverConfig{
			LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
				log.Error().Err(err).Bytes("stack", stack).Msg("Recovered from panic")
				return err
			},
		}))
	} else {
		log.Warn().Msg("Disabling recover middleware due to environment config")
	}

	if s.Config.Echo.EnableRequestIDMiddleware {
		s.Echo.Use(echoMiddleware.RequestID())
	} else {
		log.Warn().Msg("Disabling request ID middleware due to environment config")
	}

	if s.Config.Echo.EnableLoggerMiddleware {
		s.Echo.Use(middleware.Logger(middleware.LoggerConfig{
			Level:            s.Config.Logger.RequestLevel,
			LogRequestQuery:  s.Config.Logger.LogRequestQuery,
			LogRequestHeader: s.Config.Logger.LogRequestHeader,
			// the wallet long-polls, keep those out of the request log
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/api/v1/bridge/requests" && c.Request().Method == echo.GET
			},
		}))
	} else {
		log.Warn().Msg("Disabling logger middleware due to environment config")
	}

	if s.Config.Echo.EnableCORSMiddleware {
		s.Echo.Use(echoMiddleware.CORS())
	} else {
		log.Warn().Msg("Disabling CORS middleware due to environment config")
	}

	if s.Config.Management.EnableMetrics {
		s.Echo.Use(s.Metrics.Middleware())
	}

	// ---
	// Groups
	s.Router = &api.Router{
		Routes:      nil, // will be populated by handlers.AttachAllRoutes(s)
		Root:        s.Echo.Group(""),
		Management:  s.Echo.Group("/-"),
		APIV1Wallet: s.Echo.Group("/api/v1/wallet"),
		APIV1Bridge: s.Echo.Group("/api/v1/bridge"),
		APIV1Sign:   s.Echo.Group("/api/v1/sign"),
		APIV1Ledger: s.Echo.Group("/api/v1/ledger"),
	}

	// ---
	// Finally attach our handlers
	handlers.AttachAllRoutes(s)
}
