package ledger

import "github.com/pkg/errors"

var (
	ErrUnsupportedTransaction = errors.New("unsupported transaction type for ledger backend")
	ErrEmptySignature         = errors.New("ledger returned an empty signature")
	ErrInvalidSignature       = errors.New("invalid signature")
	ErrNoEndpoints            = errors.New("at least one RPC URL is required")
	ErrAllEndpointsDown       = errors.New("all RPC clients are unavailable")
	ErrUnknownKind            = errors.New("unknown ledger kind")
)
