package ledger

import (
	"context"
	"encoding"
	"strings"
)

// Transaction is an opaque ledger payload. Signed and unsigned transactions
// share the same wire encoding.
type Transaction interface {
	encoding.BinaryMarshaler
}

// Signature identifies one submitted transaction on the ledger.
type Signature string

func (s Signature) String() string {
	return string(s)
}

// Commitment is the confidence tier the ledger reports for a submission.
type Commitment int

const (
	CommitmentProcessed Commitment = iota + 1
	CommitmentConfirmed
	CommitmentFinalized
)

func (c Commitment) String() string {
	switch c {
	case CommitmentProcessed:
		return "processed"
	case CommitmentConfirmed:
		return "confirmed"
	case CommitmentFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// AtLeast reports whether c is the same or a higher tier than other.
func (c Commitment) AtLeast(other Commitment) bool {
	return c >= other
}

// ParseCommitment maps the textual tier back to a Commitment.
func ParseCommitment(s string) (Commitment, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "processed":
		return CommitmentProcessed, true
	case "confirmed":
		return CommitmentConfirmed, true
	case "finalized":
		return CommitmentFinalized, true
	default:
		return 0, false
	}
}

// SignatureStatus is the ledger's view of one submission.
type SignatureStatus struct {
	Slot       uint64
	Commitment Commitment
	Err        any // execution error reported by the ledger, nil on success
}

// Anchor is a recent ledger-sequence marker stamped into a transaction to
// bound its validity window.
type Anchor struct {
	Value  string // blockhash (solana) or block hash (evm)
	Height uint64 // last valid block height (solana) or block number (evm)
	Slot   uint64
}

// Kind selects a ledger backend.
type Kind string

const (
	KindSolana Kind = "solana"
	KindEVM    Kind = "evm"
)

// Client is the request/response surface of a remote ledger RPC endpoint.
type Client interface {
	// Decode parses the binary wire encoding of a transaction.
	Decode(raw []byte) (Transaction, error)

	// SendTransaction submits a signed transaction. One network call, no retry.
	SendTransaction(ctx context.Context, tx Transaction) (Signature, error)

	// GetSignatureStatuses returns one entry per signature, in order. A nil
	// entry means the ledger has no record of that signature yet.
	GetSignatureStatuses(ctx context.Context, sigs ...Signature) ([]*SignatureStatus, error)

	// GetLatestAnchor returns the anchor collaborators stamp into new transactions.
	GetLatestAnchor(ctx context.Context) (*Anchor, error)

	Close()
}
