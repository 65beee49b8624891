package ledger

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/wallet-bridge/internal/api"
	"github/chapool/wallet-bridge/internal/api/httperrors"
	"github/chapool/wallet-bridge/internal/types"
	"github/chapool/wallet-bridge/internal/util"
)

func GetAnchorRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Ledger.GET("/anchor", getAnchorHandler(s))
}

// getAnchorHandler hands out the anchor a caller stamps into a new transaction
// before invoking a flow with it.
func getAnchorHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		anchor, err := s.Ledger.GetLatestAnchor(ctx)
		if err != nil {
			util.LogFromContext(ctx).Warn().Err(err).Msg("Failed to fetch latest anchor")
			return httperrors.ErrServiceUnavailableLedger
		}

		return util.ValidateAndReturn(c, http.StatusOK, &types.LedgerAnchorResponse{
			Kind:   s.Config.Ledger.Kind,
			Value:  anchor.Value,
			Height: anchor.Height,
			Slot:   anchor.Slot,
		})
	}
}
