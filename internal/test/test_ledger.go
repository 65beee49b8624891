package test

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github/chapool/wallet-bridge/internal/wallet/ledger"
)

// FakeLedger is an in-memory ledger.Client. Transactions are decoded as solana
// transactions unless DecodeFunc is set.
type FakeLedger struct {
	mu sync.Mutex

	DecodeFunc func(raw []byte) (ledger.Transaction, error)
	SendFunc   func(ctx context.Context, tx ledger.Transaction) (ledger.Signature, error)
	// StatusFunc receives the 1-based number of the status call.
	StatusFunc func(call int, sigs []ledger.Signature) ([]*ledger.SignatureStatus, error)
	Anchor     *ledger.Anchor

	sendCalls   int
	statusCalls int
	sent        []ledger.Transaction
	closed      bool
}

var _ ledger.Client = (*FakeLedger)(nil)

// NewFakeLedger returns a ledger that accepts every submission under sig and
// never reports a status.
func NewFakeLedger(sig ledger.Signature) *FakeLedger {
	return &FakeLedger{
		SendFunc: func(context.Context, ledger.Transaction) (ledger.Signature, error) {
			return sig, nil
		},
		StatusFunc: NeverSeen(),
		Anchor: &ledger.Anchor{
			Value:  solana.Hash{1, 2, 3}.String(),
			Height: 42,
			Slot:   40,
		},
	}
}

//nolint:ireturn
func (f *FakeLedger) Decode(raw []byte) (ledger.Transaction, error) {
	if f.DecodeFunc != nil {
		return f.DecodeFunc(raw)
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode solana transaction")
	}

	return tx, nil
}

func (f *FakeLedger) SendTransaction(ctx context.Context, tx ledger.Transaction) (ledger.Signature, error) {
	f.mu.Lock()
	f.sendCalls++
	f.sent = append(f.sent, tx)
	fn := f.SendFunc
	f.mu.Unlock()

	return fn(ctx, tx)
}

func (f *FakeLedger) GetSignatureStatuses(_ context.Context, sigs ...ledger.Signature) ([]*ledger.SignatureStatus, error) {
	f.mu.Lock()
	f.statusCalls++
	call := f.statusCalls
	fn := f.StatusFunc
	f.mu.Unlock()

	return fn(call, sigs)
}

func (f *FakeLedger) GetLatestAnchor(_ context.Context) (*ledger.Anchor, error) {
	if f.Anchor == nil {
		return nil, errors.New("no anchor")
	}

	return f.Anchor, nil
}

func (f *FakeLedger) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
}

func (f *FakeLedger) SendCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.sendCalls
}

func (f *FakeLedger) StatusCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.statusCalls
}

func (f *FakeLedger) Sent() []ledger.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]ledger.Transaction(nil), f.sent...)
}

// NeverSeen reports every signature as unknown.
func NeverSeen() func(int, []ledger.Signature) ([]*ledger.SignatureStatus, error) {
	return func(_ int, sigs []ledger.Signature) ([]*ledger.SignatureStatus, error) {
		return make([]*ledger.SignatureStatus, len(sigs)), nil
	}
}

// ReachesAt reports every signature as unknown before call k and at the given
// commitment from call k on.
func ReachesAt(k int, commitment ledger.Commitment) func(int, []ledger.Signature) ([]*ledger.SignatureStatus, error) {
	return func(call int, sigs []ledger.Signature) ([]*ledger.SignatureStatus, error) {
		statuses := make([]*ledger.SignatureStatus, len(sigs))
		if call < k {
			return statuses, nil
		}
		for i := range statuses {
			statuses[i] = &ledger.SignatureStatus{Slot: uint64(100 + call), Commitment: commitment}
		}
		return statuses, nil
	}
}

// Progresses reports the i-th step on call i and repeats the last step after
// that. A zero step reports the signature as unknown.
func Progresses(steps ...ledger.Commitment) func(int, []ledger.Signature) ([]*ledger.SignatureStatus, error) {
	return func(call int, sigs []ledger.Signature) ([]*ledger.SignatureStatus, error) {
		statuses := make([]*ledger.SignatureStatus, len(sigs))
		commitment := steps[min(call, len(steps))-1]
		if commitment == 0 {
			return statuses, nil
		}
		for i := range statuses {
			statuses[i] = &ledger.SignatureStatus{Slot: uint64(100 + call), Commitment: commitment}
		}
		return statuses, nil
	}
}

// NewSolanaKeypair returns a fresh ed25519 keypair.
func NewSolanaKeypair(t *testing.T) solana.PrivateKey {
	t.Helper()

	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	return key
}

// NewSolanaTransaction builds an unsigned single-instruction transaction
// paid by payer.
func NewSolanaTransaction(t *testing.T, payer solana.PublicKey, data string) *solana.Transaction {
	t.Helper()

	ix := solana.NewInstruction(
		solana.MemoProgramID,
		solana.AccountMetaSlice{solana.NewAccountMeta(payer, true, true)},
		[]byte(data),
	)

	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		solana.Hash{9, 9, 9},
		solana.TransactionPayer(payer),
	)
	require.NoError(t, err)

	// unsigned transactions carry zeroed signature placeholders on the wire
	tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)

	return tx
}

// SignSolanaTransaction signs a copy of tx with key and returns it.
func SignSolanaTransaction(t *testing.T, tx *solana.Transaction, key solana.PrivateKey) *solana.Transaction {
	t.Helper()

	raw, err := tx.MarshalBinary()
	require.NoError(t, err)

	signed, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	require.NoError(t, err)

	signed.Signatures = nil
	_, err = signed.Sign(func(pub solana.PublicKey) *solana.PrivateKey {
		if pub.Equals(key.PublicKey()) {
			return &key
		}
		return nil
	})
	require.NoError(t, err)

	return signed
}

// NewEVMTransaction returns a signed EIP-1559 transfer.
func NewEVMTransaction(t *testing.T, nonce uint64) *types.Transaction {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	chainID := big.NewInt(97)
	to := crypto.PubkeyToAddress(key.PublicKey)

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(2),
		Gas:       21000,
		To:        &to,
		Value:     big.NewInt(1000),
	})

	signed, err := types.SignTx(tx, types.NewLondonSigner(chainID), key)
	require.NoError(t, err)

	return signed
}
