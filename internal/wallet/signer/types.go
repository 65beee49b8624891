package signer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github/chapool/wallet-bridge/internal/wallet/ledger"
)

// Service hands unsigned transactions to the external signer.
type Service interface {
	// RequestSignature sends tx across the boundary and waits for the signed
	// transaction. Every failure satisfies errors.Is(err, ErrRejected), except
	// a well-formed response whose payload the ledger codec cannot decode,
	// which satisfies errors.Is(err, ErrDecode).
	RequestSignature(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error)
}

// Decoder turns a raw signed payload into a ledger transaction. ledger.Client
// satisfies it.
type Decoder interface {
	Decode(raw []byte) (ledger.Transaction, error)
}

// Dialer opens one request/response exchange with the external signer.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// Conn is a single-slot exchange: one Send, then one Recv.
type Conn interface {
	// Send delivers the text-safe request payload.
	Send(ctx context.Context, payload string) error

	// Recv waits for the signer's response. Any JSON value may come back; only
	// a JSON string is a signed transaction.
	Recv(ctx context.Context) (json.RawMessage, error)

	Close() error
}

// Request is what the external signer receives.
type Request struct {
	ID  string `json:"id"`
	B64 string `json:"b64"`
}

var (
	ErrRejected         = errors.New("signature request rejected")
	ErrDecode           = errors.New("failed to decode signed transaction")
	ErrNoListener       = errors.New("no signer listening on the boundary channel")
	ErrBusy             = errors.New("a signature request is already outstanding")
	ErrClosed           = errors.New("boundary channel closed")
	ErrUnknownRequest   = errors.New("unknown signature request")
	ErrAlreadyResponded = errors.New("signature request already answered")
)

// RejectedError carries the reason a request ended as a rejection.
type RejectedError struct {
	Reason string
	Cause  error
}

func (e *RejectedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", ErrRejected, e.Reason)
	}

	return fmt.Sprintf("%s: %s: %v", ErrRejected, e.Reason, e.Cause)
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected //nolint:errorlint,err113
}

func (e *RejectedError) Unwrap() error {
	return e.Cause
}

func rejected(reason string, cause error) error {
	return &RejectedError{Reason: reason, Cause: cause}
}
