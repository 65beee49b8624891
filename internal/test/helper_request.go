package test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github/chapool/wallet-bridge/internal/api"
	"github/chapool/wallet-bridge/internal/api/httperrors"
	"github/chapool/wallet-bridge/internal/types"
)

// RawBody is sent as is by PerformRequest instead of being JSON encoded.
type RawBody []byte

// PerformRequest runs one request against the server's echo instance.
// A non-nil body is JSON encoded unless it is a RawBody.
func PerformRequest(t *testing.T, s *api.Server, method string, path string, body any, headers http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case RawBody:
		reader = bytes.NewReader(b)
	default:
		payload, err := json.Marshal(body)
		require.NoError(t, err, "failed to encode request body")
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req = req.WithContext(t.Context())

	if headers != nil {
		req.Header = headers
	}
	if body != nil && len(req.Header.Get(echo.HeaderContentType)) == 0 {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	res := httptest.NewRecorder()
	s.Echo.ServeHTTP(res, req)

	return res
}

// ParseResponseBody decodes the JSON response into v.
func ParseResponseBody(t *testing.T, res *httptest.ResponseRecorder, v any) {
	t.Helper()

	err := json.NewDecoder(res.Result().Body).Decode(v)
	require.NoError(t, err, "failed to parse response body")
}

// RequireHTTPError asserts res carries exactly the status, type and title of httpErr.
func RequireHTTPError(t *testing.T, res *httptest.ResponseRecorder, httpErr *httperrors.HTTPError) types.HTTPError {
	t.Helper()

	var response types.HTTPError
	ParseResponseBody(t, res, &response)

	require.Equal(t, *httpErr.Code, int64(res.Result().StatusCode))
	require.NotNil(t, response.Code)
	require.NotNil(t, response.Type)
	require.NotNil(t, response.Title)
	require.Equal(t, *httpErr.Code, *response.Code)
	require.Equal(t, *httpErr.Type, *response.Type)
	require.Equal(t, *httpErr.Title, *response.Title)

	return response
}
