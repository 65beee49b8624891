package bridge

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/wallet-bridge/internal/api"
	"github/chapool/wallet-bridge/internal/api/httperrors"
	"github/chapool/wallet-bridge/internal/types"
	"github/chapool/wallet-bridge/internal/util"
	"github/chapool/wallet-bridge/internal/wallet/signer"
)

// maxResponseBytes bounds a wallet answer. A signed transaction is far smaller.
const maxResponseBytes = 1 << 20

func PostRequestResponseRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Bridge.POST("/requests/:id", postRequestResponseHandler(s))
}

// postRequestResponseHandler delivers the wallet's answer verbatim. The body
// is any JSON value; a string is read as the signed transaction and anything
// else ends the request as a rejection.
func postRequestResponseHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := util.LogFromEchoContext(c)
		id := c.Param("id")

		raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxResponseBytes))
		if err != nil {
			return errors.Wrap(err, "failed to read wallet response")
		}

		if len(raw) == 0 {
			raw = []byte("null")
		}

		if !json.Valid(raw) {
			return httperrors.NewHTTPErrorWithDetail(http.StatusBadRequest, types.PublicHTTPErrorTypeGeneric, "Invalid request body.", "body is not valid JSON")
		}

		switch err := s.Mailbox.Respond(id, json.RawMessage(raw)); {
		case errors.Is(err, signer.ErrUnknownRequest):
			return httperrors.ErrNotFoundSignerRequest
		case errors.Is(err, signer.ErrAlreadyResponded):
			return httperrors.ErrConflictSignerRequest
		case err != nil:
			log.Debug().Err(err).Str("request_id", id).Msg("Failed to deliver wallet response")
			return err
		}

		log.Debug().Str("request_id", id).Msg("Wallet response delivered")

		return c.NoContent(http.StatusNoContent)
	}
}
