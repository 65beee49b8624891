package ledger

import (
	"context"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// SolanaClient talks to one or more Solana JSON-RPC nodes.
type SolanaClient struct {
	endpoints *endpoints
	clients   []*rpc.Client
	opts      Options
}

// NewSolanaClient creates a client for every configured URL.
func NewSolanaClient(opts Options) (*SolanaClient, error) {
	eps, err := newEndpoints(opts)
	if err != nil {
		return nil, err
	}

	clients := make([]*rpc.Client, 0, len(opts.URLs))
	for _, url := range opts.URLs {
		clients = append(clients, rpc.New(url))
	}

	return &SolanaClient{
		endpoints: eps,
		clients:   clients,
		opts:      opts,
	}, nil
}

// Decode parses a bincode encoded solana transaction.
//
//nolint:ireturn
func (c *SolanaClient) Decode(raw []byte) (Transaction, error) {
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode solana transaction")
	}

	return tx, nil
}

// SendTransaction submits a signed transaction to the current node.
func (c *SolanaClient) SendTransaction(ctx context.Context, tx Transaction) (Signature, error) {
	solTx, ok := tx.(*solana.Transaction)
	if !ok {
		return "", errors.Wrapf(ErrUnsupportedTransaction, "%T", tx)
	}

	client, idx, err := c.client(ctx)
	if err != nil {
		return "", err
	}

	sig, err := client.SendTransactionWithOpts(ctx, solTx, rpc.TransactionOpts{
		SkipPreflight:       c.opts.SkipPreflight,
		PreflightCommitment: toRPCCommitment(c.opts.PreflightCommitment),
	})
	if err != nil {
		c.endpoints.markFailed(idx)
		return "", errors.Wrap(err, "failed to send transaction")
	}

	if sig.IsZero() {
		return "", ErrEmptySignature
	}

	return Signature(sig.String()), nil
}

// GetSignatureStatuses looks up the confirmation status of sigs in one call.
func (c *SolanaClient) GetSignatureStatuses(ctx context.Context, sigs ...Signature) ([]*SignatureStatus, error) {
	parsed := make([]solana.Signature, 0, len(sigs))
	for _, s := range sigs {
		sig, err := solana.SignatureFromBase58(string(s))
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidSignature, "%q: %v", s, err)
		}
		parsed = append(parsed, sig)
	}

	client, idx, err := c.client(ctx)
	if err != nil {
		return nil, err
	}

	res, err := client.GetSignatureStatuses(ctx, c.opts.SearchHistory, parsed...)
	if err != nil {
		c.endpoints.markFailed(idx)
		return nil, errors.Wrap(err, "failed to get signature statuses")
	}

	statuses := make([]*SignatureStatus, len(sigs))
	if res == nil {
		return statuses, nil
	}

	for i, v := range res.Value {
		if i >= len(statuses) {
			break
		}
		statuses[i] = fromSolanaStatus(v)
	}

	return statuses, nil
}

// GetLatestAnchor returns the latest blockhash.
func (c *SolanaClient) GetLatestAnchor(ctx context.Context) (*Anchor, error) {
	client, idx, err := c.client(ctx)
	if err != nil {
		return nil, err
	}

	commitment := c.opts.AnchorCommitment
	if commitment == 0 {
		commitment = CommitmentFinalized
	}

	res, err := client.GetLatestBlockhash(ctx, toRPCCommitment(commitment))
	if err != nil {
		c.endpoints.markFailed(idx)
		return nil, errors.Wrap(err, "failed to get latest blockhash")
	}

	if res == nil || res.Value == nil {
		return nil, errors.New("empty latest blockhash response")
	}

	return &Anchor{
		Value:  res.Value.Blockhash.String(),
		Height: res.Value.LastValidBlockHeight,
		Slot:   res.Context.Slot,
	}, nil
}

// Close releases the underlying RPC clients.
func (c *SolanaClient) Close() {
	for i, client := range c.clients {
		if err := client.Close(); err != nil {
			log.Debug().Err(err).Str("url", c.endpoints.url(i)).Msg("Failed to close solana RPC client")
		}
	}
}

func (c *SolanaClient) client(ctx context.Context) (*rpc.Client, int, error) {
	if err := c.endpoints.wait(ctx); err != nil {
		return nil, 0, err
	}

	idx := c.endpoints.index()

	return c.clients[idx], idx, nil
}

// fromSolanaStatus maps an RPC status entry; entries without a confirmation
// status are reported as processed since the node has seen them.
func fromSolanaStatus(v *rpc.SignatureStatusesResult) *SignatureStatus {
	if v == nil {
		return nil
	}

	status := &SignatureStatus{
		Slot:       v.Slot,
		Commitment: CommitmentProcessed,
		Err:        v.Err,
	}

	switch v.ConfirmationStatus {
	case rpc.ConfirmationStatusConfirmed:
		status.Commitment = CommitmentConfirmed
	case rpc.ConfirmationStatusFinalized:
		status.Commitment = CommitmentFinalized
	case rpc.ConfirmationStatusProcessed:
		status.Commitment = CommitmentProcessed
	}

	return status
}

func toRPCCommitment(c Commitment) rpc.CommitmentType {
	switch c {
	case CommitmentProcessed:
		return rpc.CommitmentProcessed
	case CommitmentConfirmed:
		return rpc.CommitmentConfirmed
	case CommitmentFinalized:
		return rpc.CommitmentFinalized
	default:
		return rpc.CommitmentConfirmed
	}
}
