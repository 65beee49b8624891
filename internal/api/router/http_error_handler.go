package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/wallet-bridge/internal/api/httperrors"
	"github/chapool/wallet-bridge/internal/types"
	"github/chapool/wallet-bridge/internal/util"
)

type HTTPErrorHandlerConfig struct {
	HideInternalServerErrorDetails bool
}

// HTTPErrorHandlerWithConfig renders every error as a types.HTTPError JSON body.
// Unknown errors become a 500, with their message kept out of the body unless
// HideInternalServerErrorDetails is false.
func HTTPErrorHandlerWithConfig(config HTTPErrorHandlerConfig) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var he *httperrors.HTTPError
		var hve *httperrors.HTTPValidationError
		var ee *echo.HTTPError

		var code int
		var body any

		switch {
		case errors.As(err, &hve):
			code = int(*hve.Code)
			body = hve.HTTPValidationError
		case errors.As(err, &he):
			code = int(*he.Code)
			body = he.HTTPError
		case errors.As(err, &ee):
			he = httperrors.NewFromEcho(ee)
			code = ee.Code
			body = he.HTTPError
		default:
			code = http.StatusInternalServerError
			he = httperrors.NewHTTPError(code, types.PublicHTTPErrorTypeGeneric, http.StatusText(code))
			if !config.HideInternalServerErrorDetails {
				he.Detail = err.Error()
			}
			body = he.HTTPError
		}

		if code >= http.StatusInternalServerError {
			util.LogFromEchoContext(c).Error().Err(err).Int("status", code).Msg("Request failed")
		}

		if c.Response().Committed {
			return
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(code)
		} else {
			writeErr = c.JSON(code, body)
		}

		if writeErr != nil {
			util.LogFromEchoContext(c).Error().Err(writeErr).AnErr("http_err", err).Msg("Failed to handle HTTP error")
		}
	}
}
