package util_test

import (
	"testing"

	oerrors "github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/wallet-bridge/internal/types"
	"github/chapool/wallet-bridge/internal/util"
)

func TestFormatValidationErrors(t *testing.T) {
	err := (&types.SignerRequestResponse{ID: "not-a-uuid"}).Validate(strfmt.Default)
	require.Error(t, err)

	details := util.FormatValidationErrors(err)
	require.Len(t, details, 2)
	assert.Equal(t, "id", swag.StringValue(details[0].Key))
	assert.Equal(t, "body", swag.StringValue(details[0].In))
	assert.Equal(t, "b64", swag.StringValue(details[1].Key))

	details = util.FormatValidationErrors(oerrors.CompositeValidationError(oerrors.Required("wait", "query", nil)))
	require.Len(t, details, 1)
	assert.Equal(t, "wait", swag.StringValue(details[0].Key))
	assert.Equal(t, "query", swag.StringValue(details[0].In))

	details = util.FormatValidationErrors(errors.New("boom"))
	require.Len(t, details, 1)
	assert.Equal(t, "body", swag.StringValue(details[0].Key))
	assert.Equal(t, "boom", swag.StringValue(details[0].Error))
}

func TestSignFlowResponseValidate(t *testing.T) {
	valid := &types.SignFlowResponse{
		ID:     "c0a8e0f2-8a8e-4b0b-9f3a-4a3b8f1e2d4c",
		Status: &types.SignFlowStatus{Phase: "waiting"},
	}
	require.NoError(t, valid.Validate(strfmt.Default))

	assert.Error(t, (&types.SignFlowResponse{ID: valid.ID}).Validate(strfmt.Default))
	assert.Error(t, (&types.SignFlowResponse{ID: valid.ID, Status: &types.SignFlowStatus{Phase: "unknown"}}).Validate(strfmt.Default))

	payload := &types.PostSignFlowInvokePayload{}
	assert.Error(t, payload.Validate(strfmt.Default))
	payload.B64 = swag.String("AAAA")
	assert.NoError(t, payload.Validate(strfmt.Default))
}
