package confirm

import (
	"context"
	"time"

	"github/chapool/wallet-bridge/internal/wallet/ledger"
)

const (
	DefaultRetries = 20
	DefaultDelay   = 500 * time.Millisecond
)

// Result is the outcome of waiting for one submission.
type Result int

const (
	TimedOut Result = iota
	Confirmed
)

func (r Result) String() string {
	if r == Confirmed {
		return "confirmed"
	}

	return "timed_out"
}

// Config bounds the polling loop.
type Config struct {
	Retries int
	Delay   time.Duration
	// Target is the lowest commitment accepted as confirmed.
	Target ledger.Commitment
}

// DefaultConfig polls 20 times, 500ms apart, until Confirmed.
func DefaultConfig() Config {
	return Config{
		Retries: DefaultRetries,
		Delay:   DefaultDelay,
		Target:  ledger.CommitmentConfirmed,
	}
}

// StatusClient is the slice of ledger.Client the poller needs.
type StatusClient interface {
	GetSignatureStatuses(ctx context.Context, sigs ...ledger.Signature) ([]*ledger.SignatureStatus, error)
}

// Service waits for a submission to reach the target commitment.
type Service interface {
	// Confirm polls the ledger for sig. It returns the result and the number of
	// status calls made.
	Confirm(ctx context.Context, sig ledger.Signature) (Result, int)
}
