package sign

import (
	"encoding/base64"
	"net/http"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/wallet-bridge/internal/api"
	"github/chapool/wallet-bridge/internal/api/httperrors"
	"github/chapool/wallet-bridge/internal/types"
	"github/chapool/wallet-bridge/internal/util"
	"github/chapool/wallet-bridge/internal/wallet/invoke"
)

func PostInvokeRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Sign.POST("/flows/:id/invoke", postInvokeHandler(s))
}

// postInvokeHandler starts one invocation of the flow and returns right away
// with the flow in its Waiting phase. Progress is read via GET /flows/:id.
func postInvokeHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		flow, err := s.Invoke.Flow(c.Param("id"))
		if err != nil {
			if errors.Is(err, invoke.ErrFlowNotFound) {
				return httperrors.ErrNotFoundFlow
			}
			return err
		}

		var body types.PostSignFlowInvokePayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		raw, err := base64.StdEncoding.DecodeString(swag.StringValue(body.B64))
		if err != nil {
			log.Debug().Err(err).Msg("Transaction is not valid base64")
			return httperrors.ErrBadRequestInvalidTransaction
		}

		tx, err := s.Ledger.Decode(raw)
		if err != nil {
			log.Debug().Err(err).Msg("Failed to decode transaction")
			return httperrors.ErrBadRequestInvalidTransaction
		}

		if err := s.Invoke.InvokeAsync(ctx, flow, tx); err != nil {
			if errors.Is(err, invoke.ErrFlowBusy) {
				return httperrors.ErrConflictFlowBusy
			}
			return err
		}

		return util.ValidateAndReturn(c, http.StatusAccepted, FlowResponse(flow, flow.Current()))
	}
}
