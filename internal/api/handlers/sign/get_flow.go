package sign

import (
	"context"
	"net/http"
	"time"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/wallet-bridge/internal/api"
	"github/chapool/wallet-bridge/internal/api/httperrors"
	"github/chapool/wallet-bridge/internal/types"
	"github/chapool/wallet-bridge/internal/util"
	"github/chapool/wallet-bridge/internal/wallet/invoke"
)

// maxWait caps the ?wait= long-poll of a flow status.
const maxWait = time.Minute

func GetFlowRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Sign.GET("/flows/:id", getFlowHandler(s))
}

// getFlowHandler returns the flow's current status. With ?wait=<duration> it
// blocks until the flow reaches a terminal phase or the duration elapsed.
func getFlowHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		flow, err := s.Invoke.Flow(c.Param("id"))
		if err != nil {
			if errors.Is(err, invoke.ErrFlowNotFound) {
				return httperrors.ErrNotFoundFlow
			}
			return err
		}

		wait, err := parseWait(c.QueryParam("wait"))
		if err != nil {
			return httperrors.NewHTTPValidationError(
				http.StatusBadRequest,
				types.PublicHTTPErrorTypeGeneric,
				"Invalid wait",
				[]*types.HTTPValidationErrorDetail{
					{
						Key:   swag.String("wait"),
						In:    swag.String("query"),
						Error: swag.String(err.Error()),
					},
				},
			)
		}

		status := flow.Current()
		if wait > 0 && !status.Phase.Terminal() {
			ctx, cancel := context.WithTimeout(c.Request().Context(), wait)
			defer cancel()

			status = awaitTerminal(ctx, flow)
		}

		return util.ValidateAndReturn(c, http.StatusOK, FlowResponse(flow, status))
	}
}

func parseWait(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}

	wait, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if wait < 0 {
		return 0, errors.New("must not be negative")
	}

	return min(wait, maxWait), nil
}

// awaitTerminal returns the first terminal status published by flow, or the
// latest status once ctx ended.
func awaitTerminal(ctx context.Context, flow *invoke.Flow) invoke.Status {
	updates, unsubscribe := flow.Status().Subscribe()
	defer unsubscribe()

	// the flow may have finished before we subscribed
	if current := flow.Current(); current.Phase.Terminal() {
		return current
	}

	for {
		select {
		case status, ok := <-updates:
			if !ok {
				return flow.Current()
			}
			if status.Phase.Terminal() {
				return status
			}
		case <-ctx.Done():
			return flow.Current()
		}
	}
}
