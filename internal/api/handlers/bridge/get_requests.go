package bridge

import (
	"context"
	"net/http"

	"github.com/go-openapi/strfmt"
	"github.com/labstack/echo/v4"
	"github/chapool/wallet-bridge/internal/api"
	"github/chapool/wallet-bridge/internal/types"
	"github/chapool/wallet-bridge/internal/util"
)

func GetRequestsRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Bridge.GET("/requests", getRequestsHandler(s))
}

// getRequestsHandler is the wallet's long-poll. It answers with the oldest
// outstanding signature request, or 204 once the poll window elapsed.
func getRequestsHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), s.Config.Bridge.PollTimeout)
		defer cancel()

		req, ok := s.Mailbox.Next(ctx)
		if !ok {
			return c.NoContent(http.StatusNoContent)
		}

		util.LogFromEchoContext(c).Debug().Str("request_id", req.ID).Msg("Handing signature request to wallet")

		if err := util.ValidateAndReturn(c, http.StatusOK, &types.SignerRequestResponse{
			ID:  strfmt.UUID(req.ID),
			B64: req.B64,
		}); err != nil {
			util.LogFromEchoContext(c).Warn().Err(err).Str("request_id", req.ID).Msg("Failed to hand signature request to wallet, requeueing")
			s.Mailbox.Requeue(req.ID)

			return err
		}

		return nil
	}
}
