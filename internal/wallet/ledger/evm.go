package ledger

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// EVMClient talks to one or more EVM JSON-RPC nodes. Commitment is derived
// from the receipt's block relative to the node's safe and finalized heads.
type EVMClient struct {
	endpoints *endpoints
	mu        sync.Mutex
	clients   []*ethclient.Client
}

// NewEVMClient dials every configured URL. Nodes that cannot be dialed are
// retried lazily on use.
func NewEVMClient(opts Options) (*EVMClient, error) {
	eps, err := newEndpoints(opts)
	if err != nil {
		return nil, err
	}

	clients := make([]*ethclient.Client, 0, len(opts.URLs))
	for _, url := range opts.URLs {
		client, err := ethclient.Dial(url)
		if err != nil {
			log.Warn().
				Str("url", url).
				Err(err).
				Msg("Failed to connect to RPC node, will retry on use")
			clients = append(clients, nil)
			continue
		}
		clients = append(clients, client)
	}

	if allClientsNil(clients) {
		return nil, errors.New("failed to connect to any RPC node")
	}

	return &EVMClient{
		endpoints: eps,
		clients:   clients,
	}, nil
}

func allClientsNil(clients []*ethclient.Client) bool {
	for _, client := range clients {
		if client != nil {
			return false
		}
	}

	return true
}

// Decode parses an EIP-2718 encoded transaction.
//
//nolint:ireturn
func (c *EVMClient) Decode(raw []byte) (Transaction, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal evm transaction")
	}

	return tx, nil
}

// SendTransaction broadcasts a signed transaction and returns its hash.
func (c *EVMClient) SendTransaction(ctx context.Context, tx Transaction) (Signature, error) {
	evmTx, ok := tx.(*types.Transaction)
	if !ok {
		return "", errors.Wrapf(ErrUnsupportedTransaction, "%T", tx)
	}

	client, idx, err := c.client(ctx)
	if err != nil {
		return "", err
	}

	if err := client.SendTransaction(ctx, evmTx); err != nil {
		c.endpoints.markFailed(idx)
		return "", errors.Wrap(err, "failed to send transaction")
	}

	return Signature(evmTx.Hash().Hex()), nil
}

// GetSignatureStatuses fetches the receipt of every hash and grades it against
// the safe and finalized heads.
func (c *EVMClient) GetSignatureStatuses(ctx context.Context, sigs ...Signature) ([]*SignatureStatus, error) {
	hashes := make([]common.Hash, 0, len(sigs))
	for _, sig := range sigs {
		if !common.IsHexHash(string(sig)) {
			return nil, errors.Wrapf(ErrInvalidSignature, "%q", sig)
		}
		hashes = append(hashes, common.HexToHash(string(sig)))
	}

	client, idx, err := c.client(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]*SignatureStatus, len(sigs))
	found := false

	for i, hash := range hashes {
		receipt, err := client.TransactionReceipt(ctx, hash)
		if err != nil {
			if errors.Is(err, ethereum.NotFound) {
				continue
			}
			c.endpoints.markFailed(idx)
			return nil, errors.Wrap(err, "failed to get transaction receipt")
		}

		status := &SignatureStatus{
			Slot:       receipt.BlockNumber.Uint64(),
			Commitment: CommitmentProcessed,
		}
		if receipt.Status == types.ReceiptStatusFailed {
			status.Err = "execution reverted"
		}

		statuses[i] = status
		found = true
	}

	if !found {
		return statuses, nil
	}

	safe := c.headNumber(ctx, client, gethrpc.SafeBlockNumber)
	finalized := c.headNumber(ctx, client, gethrpc.FinalizedBlockNumber)

	for _, status := range statuses {
		if status == nil {
			continue
		}
		if finalized != nil && status.Slot <= finalized.Uint64() {
			status.Commitment = CommitmentFinalized
		} else if safe != nil && status.Slot <= safe.Uint64() {
			status.Commitment = CommitmentConfirmed
		}
	}

	return statuses, nil
}

// headNumber returns the block number behind a tag, or nil if the node does
// not support it.
func (c *EVMClient) headNumber(ctx context.Context, client *ethclient.Client, tag gethrpc.BlockNumber) *big.Int {
	header, err := client.HeaderByNumber(ctx, big.NewInt(tag.Int64()))
	if err != nil {
		log.Debug().Err(err).Str("tag", tag.String()).Msg("Failed to get head by tag")
		return nil
	}

	return header.Number
}

// GetLatestAnchor returns the latest block hash and number.
func (c *EVMClient) GetLatestAnchor(ctx context.Context) (*Anchor, error) {
	client, idx, err := c.client(ctx)
	if err != nil {
		return nil, err
	}

	header, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		c.endpoints.markFailed(idx)
		return nil, errors.Wrap(err, "failed to get latest header")
	}

	return &Anchor{
		Value:  header.Hash().Hex(),
		Height: header.Number.Uint64(),
		Slot:   header.Number.Uint64(),
	}, nil
}

// Close closes all dialed clients.
func (c *EVMClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, client := range c.clients {
		if client != nil {
			client.Close()
		}
	}
}

// client returns the client at the cursor, redialing it if it was never
// connected. Falls through to the next node when dialing fails.
func (c *EVMClient) client(ctx context.Context) (*ethclient.Client, int, error) {
	if err := c.endpoints.wait(ctx); err != nil {
		return nil, 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	start := c.endpoints.index()
	for i := 0; i < len(c.clients); i++ {
		idx := (start + i) % len(c.clients)

		if c.clients[idx] == nil {
			client, err := ethclient.DialContext(ctx, c.endpoints.url(idx))
			if err != nil {
				log.Warn().
					Str("url", c.endpoints.url(idx)).
					Err(err).
					Msg("RPC node still unreachable")
				c.endpoints.markFailed(idx)
				continue
			}
			c.clients[idx] = client
		}

		return c.clients[idx], idx, nil
	}

	return nil, 0, ErrAllEndpointsDown
}
