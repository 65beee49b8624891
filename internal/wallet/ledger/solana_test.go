package ledger_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/wallet-bridge/internal/test"
	"github/chapool/wallet-bridge/internal/wallet/ledger"
)

func newSolanaClient(t *testing.T, urls ...string) *ledger.SolanaClient {
	t.Helper()

	client, err := ledger.NewSolanaClient(ledger.Options{URLs: urls})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return client
}

func TestSolanaDecodeRoundTrip(t *testing.T) {
	key := test.NewSolanaKeypair(t)
	signed := test.SignSolanaTransaction(t, test.NewSolanaTransaction(t, key.PublicKey(), "roundtrip"), key)

	raw, err := signed.MarshalBinary()
	require.NoError(t, err)

	client := newSolanaClient(t, "http://127.0.0.1:1")
	decoded, err := client.Decode(raw)
	require.NoError(t, err)

	again, err := decoded.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, raw, again)

	_, err = client.Decode([]byte{0x01})
	require.Error(t, err)
}

func TestSolanaSendTransaction(t *testing.T) {
	want := solana.Signature{1, 2, 3, 4}

	srv := newRPCServer(t, map[string]rpcHandler{
		"sendTransaction": func(json.RawMessage) (any, *rpcError) {
			return want.String(), nil
		},
	})

	key := test.NewSolanaKeypair(t)
	signed := test.SignSolanaTransaction(t, test.NewSolanaTransaction(t, key.PublicKey(), "send"), key)

	client := newSolanaClient(t, srv.URL)
	sig, err := client.SendTransaction(t.Context(), signed)
	require.NoError(t, err)
	assert.Equal(t, ledger.Signature(want.String()), sig)
	assert.Equal(t, 1, srv.Calls("sendTransaction"))

	_, err = client.SendTransaction(t.Context(), test.NewEVMTransaction(t, 1))
	require.ErrorIs(t, err, ledger.ErrUnsupportedTransaction)
	assert.Equal(t, 1, srv.Calls("sendTransaction"))
}

func TestSolanaSendTransactionRPCError(t *testing.T) {
	srv := newRPCServer(t, map[string]rpcHandler{
		"sendTransaction": func(json.RawMessage) (any, *rpcError) {
			return nil, &rpcError{Code: -32002, Message: "Transaction simulation failed: Blockhash not found"}
		},
	})

	key := test.NewSolanaKeypair(t)
	signed := test.SignSolanaTransaction(t, test.NewSolanaTransaction(t, key.PublicKey(), "send"), key)

	client := newSolanaClient(t, srv.URL)
	_, err := client.SendTransaction(t.Context(), signed)
	require.Error(t, err)
	assert.Equal(t, 1, srv.Calls("sendTransaction"))
}

func TestSolanaGetSignatureStatuses(t *testing.T) {
	confirmed := solana.Signature{7}
	unknown := solana.Signature{8}
	bare := solana.Signature{9}

	srv := newRPCServer(t, map[string]rpcHandler{
		"getSignatureStatuses": func(raw json.RawMessage) (any, *rpcError) {
			p := params(t, raw)
			var sigs []string
			if len(p) == 0 || !assert.NoError(t, json.Unmarshal(p[0], &sigs)) {
				return nil, &rpcError{Code: -32602, Message: "invalid params"}
			}
			assert.Equal(t, []string{confirmed.String(), unknown.String(), bare.String()}, sigs)

			return map[string]any{
				"context": map[string]any{"slot": 82},
				"value": []any{
					map[string]any{
						"slot":               72,
						"confirmations":      10,
						"err":                nil,
						"status":             map[string]any{"Ok": nil},
						"confirmationStatus": "confirmed",
					},
					nil,
					map[string]any{
						"slot":          80,
						"confirmations": nil,
						"err":           nil,
						"status":        map[string]any{"Ok": nil},
					},
				},
			}, nil
		},
	})

	client := newSolanaClient(t, srv.URL)
	statuses, err := client.GetSignatureStatuses(t.Context(),
		ledger.Signature(confirmed.String()),
		ledger.Signature(unknown.String()),
		ledger.Signature(bare.String()),
	)
	require.NoError(t, err)
	require.Len(t, statuses, 3)

	require.NotNil(t, statuses[0])
	assert.Equal(t, ledger.CommitmentConfirmed, statuses[0].Commitment)
	assert.Equal(t, uint64(72), statuses[0].Slot)
	assert.Nil(t, statuses[1])
	require.NotNil(t, statuses[2])
	assert.Equal(t, ledger.CommitmentProcessed, statuses[2].Commitment)
}

func TestSolanaGetSignatureStatusesInvalidSignature(t *testing.T) {
	srv := newRPCServer(t, map[string]rpcHandler{})

	client := newSolanaClient(t, srv.URL)
	_, err := client.GetSignatureStatuses(t.Context(), "not-a-signature")
	require.ErrorIs(t, err, ledger.ErrInvalidSignature)
	assert.Equal(t, 0, srv.Calls("getSignatureStatuses"))
}

func TestSolanaGetLatestAnchor(t *testing.T) {
	hash := solana.Hash{5, 5, 5}

	srv := newRPCServer(t, map[string]rpcHandler{
		"getLatestBlockhash": func(json.RawMessage) (any, *rpcError) {
			return map[string]any{
				"context": map[string]any{"slot": 2792},
				"value": map[string]any{
					"blockhash":            hash.String(),
					"lastValidBlockHeight": 3090,
				},
			}, nil
		},
	})

	client := newSolanaClient(t, srv.URL)
	anchor, err := client.GetLatestAnchor(t.Context())
	require.NoError(t, err)
	assert.Equal(t, hash.String(), anchor.Value)
	assert.Equal(t, uint64(3090), anchor.Height)
	assert.Equal(t, uint64(2792), anchor.Slot)
}

func TestSolanaFailoverMovesToNextEndpoint(t *testing.T) {
	down := failingServer(t)
	hash := solana.Hash{6}
	up := newRPCServer(t, map[string]rpcHandler{
		"getLatestBlockhash": func(json.RawMessage) (any, *rpcError) {
			return map[string]any{
				"context": map[string]any{"slot": 1},
				"value":   map[string]any{"blockhash": hash.String(), "lastValidBlockHeight": 2},
			}, nil
		},
	})

	client := newSolanaClient(t, down.URL, up.URL)

	// a failing call is not retried, it only moves the cursor
	_, err := client.GetLatestAnchor(t.Context())
	require.Error(t, err)
	assert.Equal(t, 0, up.Calls("getLatestBlockhash"))

	anchor, err := client.GetLatestAnchor(t.Context())
	require.NoError(t, err)
	assert.Equal(t, hash.String(), anchor.Value)
	assert.Equal(t, 1, up.Calls("getLatestBlockhash"))
}

func TestSolanaRateLimitHonorsContext(t *testing.T) {
	client, err := ledger.NewSolanaClient(ledger.Options{
		URLs:              []string{"http://127.0.0.1:1"},
		RequestsPerSecond: 0.001,
		Burst:             1,
	})
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithCancel(t.Context())
	// consume the only token, then wait on a cancelled context
	_, _ = client.GetLatestAnchor(ctx)
	cancel()

	_, err = client.GetLatestAnchor(ctx)
	require.Error(t, err)
}
