package wallet

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/wallet-bridge/internal/api"
	"github/chapool/wallet-bridge/internal/types"
	"github/chapool/wallet-bridge/internal/util"
)

func PostEventRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Wallet.POST("/events", postEventHandler(s))
}

// postEventHandler receives wallet connect and disconnect notifications.
// Any payload without a well formed address leaves the bridge disconnected.
func postEventHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body types.PostWalletEventPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		state := s.Connection.HandleEvent(body.Pubkey)

		return util.ValidateAndReturn(c, http.StatusOK, ConnectionResponse(state))
	}
}
