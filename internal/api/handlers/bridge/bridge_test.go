package bridge_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/wallet-bridge/internal/api"
	"github/chapool/wallet-bridge/internal/api/httperrors"
	"github/chapool/wallet-bridge/internal/test"
	"github/chapool/wallet-bridge/internal/types"
	"github/chapool/wallet-bridge/internal/wallet/signer"
)

func TestGetRequestsEmptyPoll(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		require.False(t, s.Mailbox.Listening())

		res := test.PerformRequest(t, s, "GET", "/api/v1/bridge/requests", nil, nil)
		require.Equal(t, http.StatusNoContent, res.Result().StatusCode)
		assert.Empty(t, res.Body.String())

		// a finished poll keeps the wallet listening for the TTL
		assert.True(t, s.Mailbox.Listening())
	})
}

func TestPostRequestResponseUnknown(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "POST", "/api/v1/bridge/requests/does-not-exist", "c2lnbmVk", nil)
		test.RequireHTTPError(t, res, httperrors.ErrNotFoundSignerRequest)
	})
}

func TestPostRequestResponseInvalidJSON(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "POST", "/api/v1/bridge/requests/some-id", test.RawBody("not json"), nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
	})
}

// signOverHTTP runs one RequestSignature on the bridge side while answering
// as the wallet over the HTTP routes.
func signOverHTTP(t *testing.T, s *api.Server, tx *solana.Transaction, answer func(req types.SignerRequestResponse) any) (*solana.Transaction, error) {
	t.Helper()

	// register the wallet as listening
	res := test.PerformRequest(t, s, "GET", "/api/v1/bridge/requests", nil, nil)
	require.Equal(t, http.StatusNoContent, res.Result().StatusCode)

	type result struct {
		tx  *solana.Transaction
		err error
	}
	done := make(chan result, 1)

	go func() {
		signed, err := s.Signer.RequestSignature(context.Background(), tx)
		if err != nil {
			done <- result{err: err}
			return
		}
		done <- result{tx: signed.(*solana.Transaction)}
	}()

	var req types.SignerRequestResponse
	for range 100 {
		res = test.PerformRequest(t, s, "GET", "/api/v1/bridge/requests", nil, nil)
		if res.Result().StatusCode == http.StatusOK {
			test.ParseResponseBody(t, res, &req)
			break
		}
		require.Equal(t, http.StatusNoContent, res.Result().StatusCode)
	}
	require.NotEmpty(t, req.ID, "wallet never received the request")

	res = test.PerformRequest(t, s, "POST", "/api/v1/bridge/requests/"+req.ID.String(), answer(req), nil)
	require.Equal(t, http.StatusNoContent, res.Result().StatusCode)

	r := <-done

	// the request is gone or already answered once the bridge has read it
	res = test.PerformRequest(t, s, "POST", "/api/v1/bridge/requests/"+req.ID.String(), answer(req), nil)
	assert.Contains(t, []int{http.StatusNotFound, http.StatusConflict}, res.Result().StatusCode)

	return r.tx, r.err
}

func TestBridgeRoundTrip(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		key := test.NewSolanaKeypair(t)
		tx := test.NewSolanaTransaction(t, key.PublicKey(), "bridge round trip")
		expected := test.SignSolanaTransaction(t, tx, key)

		raw, err := tx.MarshalBinary()
		require.NoError(t, err)

		signed, err := signOverHTTP(t, s, tx, func(req types.SignerRequestResponse) any {
			payload, err := base64.StdEncoding.DecodeString(req.B64)
			require.NoError(t, err)
			assert.Equal(t, raw, payload)

			signedRaw, err := expected.MarshalBinary()
			require.NoError(t, err)

			return base64.StdEncoding.EncodeToString(signedRaw)
		})
		require.NoError(t, err)
		require.Equal(t, expected.Signatures, signed.Signatures)
		require.NoError(t, signed.VerifySignatures())
		assert.Equal(t, 0, s.Mailbox.Pending())
	})
}

func TestBridgeWalletRejects(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		key := test.NewSolanaKeypair(t)
		tx := test.NewSolanaTransaction(t, key.PublicKey(), "bridge reject")

		_, err := signOverHTTP(t, s, tx, func(types.SignerRequestResponse) any {
			return map[string]any{"error": "user rejected the request"}
		})
		require.ErrorIs(t, err, signer.ErrRejected)
	})
}
