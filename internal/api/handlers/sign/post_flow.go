package sign

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/wallet-bridge/internal/api"
	"github/chapool/wallet-bridge/internal/api/httperrors"
	"github/chapool/wallet-bridge/internal/util"
	"github/chapool/wallet-bridge/internal/wallet/invoke"
)

func PostFlowRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Sign.POST("/flows", postFlowHandler(s))
}

func postFlowHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		flow, err := s.Invoke.NewFlow()
		if err != nil {
			if errors.Is(err, invoke.ErrTooManyFlows) {
				return httperrors.ErrTooManyFlows
			}
			return err
		}

		return util.ValidateAndReturn(c, http.StatusCreated, FlowResponse(flow, flow.Current()))
	}
}
