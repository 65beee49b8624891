package ledger_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/wallet-bridge/internal/test"
	"github/chapool/wallet-bridge/internal/wallet/ledger"
)

var (
	zeroHash  = "0x" + strings.Repeat("0", 64)
	zeroBloom = "0x" + strings.Repeat("0", 512)
	zeroAddr  = "0x" + strings.Repeat("0", 40)
)

func headerJSON(number uint64) map[string]any {
	return map[string]any{
		"parentHash":       zeroHash,
		"sha3Uncles":       zeroHash,
		"miner":            zeroAddr,
		"stateRoot":        zeroHash,
		"transactionsRoot": zeroHash,
		"receiptsRoot":     zeroHash,
		"logsBloom":        zeroBloom,
		"difficulty":       "0x0",
		"number":           hexutil.EncodeUint64(number),
		"gasLimit":         "0x1c9c380",
		"gasUsed":          "0x0",
		"timestamp":        "0x6553f100",
		"extraData":        "0x",
		"mixHash":          zeroHash,
		"nonce":            "0x0000000000000000",
	}
}

func receiptJSON(txHash string, block uint64, status uint64) map[string]any {
	return map[string]any{
		"type":              "0x2",
		"status":            hexutil.EncodeUint64(status),
		"cumulativeGasUsed": "0x5208",
		"logsBloom":         zeroBloom,
		"logs":              []any{},
		"transactionHash":   txHash,
		"gasUsed":           "0x5208",
		"effectiveGasPrice": "0x2",
		"blockHash":         zeroHash,
		"blockNumber":       hexutil.EncodeUint64(block),
		"transactionIndex":  "0x0",
	}
}

// evmChain serves receipts for known hashes and the safe/finalized heads.
func evmChain(t *testing.T, receipts map[string]map[string]any, safe, finalized uint64) *rpcServer {
	t.Helper()

	return newRPCServer(t, map[string]rpcHandler{
		"eth_getTransactionReceipt": func(raw json.RawMessage) (any, *rpcError) {
			p := params(t, raw)
			var hash string
			if len(p) == 0 || json.Unmarshal(p[0], &hash) != nil {
				return nil, &rpcError{Code: -32602, Message: "invalid params"}
			}
			receipt, ok := receipts[strings.ToLower(hash)]
			if !ok {
				return nil, nil
			}
			return receipt, nil
		},
		"eth_getBlockByNumber": func(raw json.RawMessage) (any, *rpcError) {
			p := params(t, raw)
			var tag string
			if len(p) == 0 || json.Unmarshal(p[0], &tag) != nil {
				return nil, &rpcError{Code: -32602, Message: "invalid params"}
			}
			switch tag {
			case "safe":
				return headerJSON(safe), nil
			case "finalized":
				return headerJSON(finalized), nil
			case "latest":
				return headerJSON(safe + 10), nil
			default:
				return nil, &rpcError{Code: -32602, Message: fmt.Sprintf("unexpected tag %q", tag)}
			}
		},
	})
}

func newEVMClient(t *testing.T, urls ...string) *ledger.EVMClient {
	t.Helper()

	client, err := ledger.NewEVMClient(ledger.Options{Kind: ledger.KindEVM, URLs: urls})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return client
}

func TestEVMDecodeRoundTrip(t *testing.T) {
	tx := test.NewEVMTransaction(t, 3)
	raw, err := tx.MarshalBinary()
	require.NoError(t, err)

	client := newEVMClient(t, "http://127.0.0.1:1")
	decoded, err := client.Decode(raw)
	require.NoError(t, err)

	again, err := decoded.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, raw, again)

	_, err = client.Decode([]byte{0x02, 0xc0})
	require.Error(t, err)
}

func TestEVMSendTransactionRejectsForeignType(t *testing.T) {
	key := test.NewSolanaKeypair(t)
	client := newEVMClient(t, "http://127.0.0.1:1")

	_, err := client.SendTransaction(t.Context(), test.NewSolanaTransaction(t, key.PublicKey(), "x"))
	require.ErrorIs(t, err, ledger.ErrUnsupportedTransaction)
}

func TestEVMSendTransaction(t *testing.T) {
	tx := test.NewEVMTransaction(t, 4)
	srv := newRPCServer(t, map[string]rpcHandler{
		"eth_sendRawTransaction": func(json.RawMessage) (any, *rpcError) {
			return tx.Hash().Hex(), nil
		},
	})

	client := newEVMClient(t, srv.URL)
	sig, err := client.SendTransaction(t.Context(), tx)
	require.NoError(t, err)
	assert.Equal(t, ledger.Signature(tx.Hash().Hex()), sig)
	assert.Equal(t, 1, srv.Calls("eth_sendRawTransaction"))
}

func TestEVMGetSignatureStatuses(t *testing.T) {
	safeTx := test.NewEVMTransaction(t, 1)
	finalTx := test.NewEVMTransaction(t, 2)
	freshTx := test.NewEVMTransaction(t, 3)
	revertedTx := test.NewEVMTransaction(t, 4)
	missingTx := test.NewEVMTransaction(t, 5)

	receipts := map[string]map[string]any{
		strings.ToLower(safeTx.Hash().Hex()):     receiptJSON(safeTx.Hash().Hex(), 100, 1),
		strings.ToLower(finalTx.Hash().Hex()):    receiptJSON(finalTx.Hash().Hex(), 80, 1),
		strings.ToLower(freshTx.Hash().Hex()):    receiptJSON(freshTx.Hash().Hex(), 110, 1),
		strings.ToLower(revertedTx.Hash().Hex()): receiptJSON(revertedTx.Hash().Hex(), 80, 0),
	}
	srv := evmChain(t, receipts, 105, 90)

	client := newEVMClient(t, srv.URL)
	statuses, err := client.GetSignatureStatuses(t.Context(),
		ledger.Signature(safeTx.Hash().Hex()),
		ledger.Signature(finalTx.Hash().Hex()),
		ledger.Signature(freshTx.Hash().Hex()),
		ledger.Signature(revertedTx.Hash().Hex()),
		ledger.Signature(missingTx.Hash().Hex()),
	)
	require.NoError(t, err)
	require.Len(t, statuses, 5)

	require.NotNil(t, statuses[0])
	assert.Equal(t, ledger.CommitmentConfirmed, statuses[0].Commitment)
	assert.Equal(t, uint64(100), statuses[0].Slot)

	require.NotNil(t, statuses[1])
	assert.Equal(t, ledger.CommitmentFinalized, statuses[1].Commitment)
	assert.Nil(t, statuses[1].Err)

	require.NotNil(t, statuses[2])
	assert.Equal(t, ledger.CommitmentProcessed, statuses[2].Commitment)

	require.NotNil(t, statuses[3])
	assert.Equal(t, ledger.CommitmentFinalized, statuses[3].Commitment)
	assert.NotNil(t, statuses[3].Err)

	assert.Nil(t, statuses[4])
}

func TestEVMGetSignatureStatusesNothingFound(t *testing.T) {
	srv := evmChain(t, map[string]map[string]any{}, 105, 90)

	client := newEVMClient(t, srv.URL)
	statuses, err := client.GetSignatureStatuses(t.Context(), ledger.Signature(test.NewEVMTransaction(t, 1).Hash().Hex()))
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Nil(t, statuses[0])

	assert.Equal(t, 0, srv.Calls("eth_getBlockByNumber"))
}

func TestEVMGetSignatureStatusesInvalidSignature(t *testing.T) {
	srv := evmChain(t, map[string]map[string]any{}, 105, 90)
	client := newEVMClient(t, srv.URL)

	for _, sig := range []ledger.Signature{"not-a-hash", "0x1234", "5igSig"} {
		_, err := client.GetSignatureStatuses(t.Context(), ledger.Signature(test.NewEVMTransaction(t, 1).Hash().Hex()), sig)
		require.ErrorIs(t, err, ledger.ErrInvalidSignature, sig)
	}

	assert.Equal(t, 0, srv.Calls("eth_getTransactionReceipt"))
}

func TestEVMGetLatestAnchor(t *testing.T) {
	srv := evmChain(t, nil, 105, 90)

	client := newEVMClient(t, srv.URL)
	anchor, err := client.GetLatestAnchor(t.Context())
	require.NoError(t, err)
	assert.Equal(t, uint64(115), anchor.Height)
	assert.True(t, strings.HasPrefix(anchor.Value, "0x"))
}
