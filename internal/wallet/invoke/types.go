package invoke

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github/chapool/wallet-bridge/internal/observable"
	"github/chapool/wallet-bridge/internal/wallet/ledger"
)

// Phase is the position of a flow in the signing pipeline.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseWaiting
	PhaseDone
	PhaseDoneWithError
	PhaseTimeout
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseWaiting:
		return "waiting"
	case PhaseDone:
		return "done"
	case PhaseDoneWithError:
		return "done_with_error"
	case PhaseTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Terminal reports whether p ends an invocation.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseDoneWithError || p == PhaseTimeout
}

// Status is the observable value of one flow.
type Status struct {
	Phase Phase
	// Signature is set once the ledger accepted the submission.
	Signature ledger.Signature
	// Reason explains a DoneWithError.
	Reason string
	// Generation counts invocations of the flow, starting at 1.
	Generation uint64
	UpdatedAt  time.Time
}

var (
	ErrFlowBusy     = errors.New("flow is already waiting")
	ErrFlowNotFound = errors.New("flow not found")
	ErrTooManyFlows = errors.New("too many flows")
	ErrNilTx        = errors.New("nil transaction")
)

// Recorder receives pipeline metrics. *metrics.Service satisfies it.
type Recorder interface {
	FlowStarted()
	FlowFinished(outcome string)
	SignerResult(result string)
	PollAttempts(n int)
}

// Submitter is the slice of ledger.Client the orchestrator needs.
type Submitter interface {
	SendTransaction(ctx context.Context, tx ledger.Transaction) (ledger.Signature, error)
}

// Config bounds the flow registry.
type Config struct {
	// MaxFlows caps live flows; 0 means unlimited.
	MaxFlows int
	// Retention is how long a terminal flow is kept before it may be pruned;
	// 0 keeps flows forever.
	Retention time.Duration
}

// Service creates flows and drives them through sign, submit and confirm.
type Service interface {
	// NewFlow registers a flow in the Start phase.
	NewFlow() (*Flow, error)

	// Flow looks up a registered flow.
	Flow(id string) (*Flow, error)

	// Run performs one invocation on the caller's goroutine and returns the
	// terminal status. The only error is ErrFlowBusy (or ErrNilTx); every
	// pipeline failure ends up in the returned status.
	Run(ctx context.Context, flow *Flow, tx ledger.Transaction) (Status, error)

	// InvokeAsync moves the flow to Waiting and finishes the invocation in the
	// background. Cancelling ctx does not cancel the invocation.
	InvokeAsync(ctx context.Context, flow *Flow, tx ledger.Transaction) error

	// Wait blocks until every background invocation has returned.
	Wait()
}

// Flow is one trigger site with its own status observable.
type Flow struct {
	ID        string
	CreatedAt time.Time

	status *observable.Value[Status]
}

// Status returns the flow's observable.
func (f *Flow) Status() *observable.Value[Status] {
	return f.status
}

// Current returns the latest status.
func (f *Flow) Current() Status {
	return f.status.Get()
}
