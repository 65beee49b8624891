package util

import (
	"net/http"

	oerrors "github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/wallet-bridge/internal/api/httperrors"
	"github/chapool/wallet-bridge/internal/types"
)

type validatable interface {
	Validate(formats strfmt.Registry) error
}

// BindAndValidateBody binds the request body into v and validates it against
// the default format registry.
func BindAndValidateBody(c echo.Context, v validatable) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		LogFromEchoContext(c).Debug().Err(err).Msg("Failed to bind request body")
		return httperrors.NewHTTPErrorWithDetail(http.StatusBadRequest, types.PublicHTTPErrorTypeGeneric, "Invalid request body.", err.Error())
	}

	if err := v.Validate(strfmt.Default); err != nil {
		LogFromEchoContext(c).Debug().Err(err).Msg("Request body failed validation")
		return httperrors.NewHTTPValidationError(
			http.StatusBadRequest,
			types.PublicHTTPErrorTypeGeneric,
			http.StatusText(http.StatusBadRequest),
			FormatValidationErrors(err),
		)
	}

	return nil
}

// FormatValidationErrors flattens go-openapi validation errors into response
// details. Anything else becomes a single detail keyed on the body.
func FormatValidationErrors(err error) []*types.HTTPValidationErrorDetail {
	var composite *oerrors.CompositeError
	if errors.As(err, &composite) {
		details := make([]*types.HTTPValidationErrorDetail, 0, len(composite.Errors))
		for _, e := range composite.Errors {
			details = append(details, FormatValidationErrors(e)...)
		}

		return details
	}

	var validation *oerrors.Validation
	if errors.As(err, &validation) {
		return []*types.HTTPValidationErrorDetail{
			{
				Key:   swag.String(validation.Name),
				In:    swag.String(validation.In),
				Error: swag.String(validation.Error()),
			},
		}
	}

	return []*types.HTTPValidationErrorDetail{
		{
			Key:   swag.String("body"),
			In:    swag.String("body"),
			Error: swag.String(err.Error()),
		},
	}
}

// ValidateAndReturn validates v when it knows how to and writes it as JSON.
func ValidateAndReturn(c echo.Context, code int, v any) error {
	if val, ok := v.(validatable); ok {
		if err := val.Validate(strfmt.Default); err != nil {
			LogFromEchoContext(c).Error().Err(err).Msg("Response failed validation")
			return httperrors.NewHTTPError(http.StatusInternalServerError, types.PublicHTTPErrorTypeGeneric, http.StatusText(http.StatusInternalServerError))
		}
	}

	return c.JSON(code, v)
}
