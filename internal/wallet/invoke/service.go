//nolint:ireturn
package invoke

import (
	"context"
	"sync"

	"github.com/dropbox/godropbox/time2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github/chapool/wallet-bridge/internal/observable"
	"github/chapool/wallet-bridge/internal/wallet/confirm"
	"github/chapool/wallet-bridge/internal/wallet/connection"
	"github/chapool/wallet-bridge/internal/wallet/ledger"
	"github/chapool/wallet-bridge/internal/wallet/signer"
)

type service struct {
	connection connection.Service
	signer     signer.Service
	submitter  Submitter
	poller     confirm.Service
	recorder   Recorder
	clock      time2.Clock
	config     Config

	mu    sync.Mutex
	flows map[string]*Flow

	wg sync.WaitGroup
}

// NewService creates the signing orchestrator. recorder may be nil.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(
	connectionService connection.Service,
	signerService signer.Service,
	submitter Submitter,
	poller confirm.Service,
	recorder Recorder,
	clock time2.Clock,
	config Config,
) Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &service{
		connection: connectionService,
		signer:     signerService,
		submitter:  submitter,
		poller:     poller,
		recorder:   recorder,
		clock:      clock,
		config:     config,
		flows:      make(map[string]*Flow),
	}
}

func (s *service) NewFlow() (*Flow, error) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()

	if s.config.MaxFlows > 0 && len(s.flows) >= s.config.MaxFlows {
		return nil, ErrTooManyFlows
	}

	flow := &Flow{
		ID:        uuid.NewString(),
		CreatedAt: now,
		status:    observable.New(Status{Phase: PhaseStart, UpdatedAt: now}),
	}
	s.flows[flow.ID] = flow

	return flow, nil
}

// pruneLocked drops terminal flows idle for longer than the retention window.
func (s *service) pruneLocked() {
	if s.config.Retention <= 0 {
		return
	}

	cutoff := s.clock.Now().Add(-s.config.Retention)
	for id, flow := range s.flows {
		current := flow.Current()
		if current.Phase.Terminal() && current.UpdatedAt.Before(cutoff) {
			delete(s.flows, id)
		}
	}
}

func (s *service) Flow(id string) (*Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flow, ok := s.flows[id]
	if !ok {
		return nil, ErrFlowNotFound
	}

	return flow, nil
}

func (s *service) Run(ctx context.Context, flow *Flow, tx ledger.Transaction) (Status, error) {
	gen, err := s.begin(flow, tx)
	if err != nil {
		return flow.Current(), err
	}

	return s.execute(ctx, flow, gen, tx), nil
}

func (s *service) InvokeAsync(ctx context.Context, flow *Flow, tx ledger.Transaction) error {
	gen, err := s.begin(flow, tx)
	if err != nil {
		return err
	}

	ctx = context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.execute(ctx, flow, gen, tx)
	}()

	return nil
}

func (s *service) Wait() {
	s.wg.Wait()
}

// begin moves flow to Waiting under a new generation. A Waiting flow is busy.
func (s *service) begin(flow *Flow, tx ledger.Transaction) (uint64, error) {
	if tx == nil {
		return 0, ErrNilTx
	}

	var gen uint64
	ok := flow.status.Update(func(current Status) (Status, bool) {
		if current.Phase == PhaseWaiting {
			return current, false
		}
		gen = current.Generation + 1
		return Status{Phase: PhaseWaiting, Generation: gen, UpdatedAt: s.clock.Now()}, true
	})
	if !ok {
		return 0, ErrFlowBusy
	}

	s.recorder.FlowStarted()

	return gen, nil
}

// finish writes a terminal status, unless a newer invocation owns the flow.
func (s *service) finish(flow *Flow, gen uint64, next Status) Status {
	next.Generation = gen
	next.UpdatedAt = s.clock.Now()

	written := flow.status.Update(func(current Status) (Status, bool) {
		if current.Generation != gen || current.Phase != PhaseWaiting {
			return current, false
		}
		return next, true
	})
	if !written {
		return flow.Current()
	}

	s.recorder.FlowFinished(next.Phase.String())

	return next
}

func (s *service) fail(flow *Flow, gen uint64, reason string) Status {
	return s.finish(flow, gen, Status{Phase: PhaseDoneWithError, Reason: reason})
}

func (s *service) execute(ctx context.Context, flow *Flow, gen uint64, tx ledger.Transaction) Status {
	logger := log.With().Str("flow_id", flow.ID).Uint64("generation", gen).Logger()

	if !s.connection.State().Connected {
		logger.Warn().Msg("Signature requested while no signer is connected")
		return s.fail(flow, gen, "signer not connected")
	}

	signed, err := s.signer.RequestSignature(ctx, tx)
	if err != nil {
		return s.signerFailed(flow, gen, &logger, err)
	}
	s.recorder.SignerResult("signed")
	logger.Info().Msg("Transaction signed by wallet")

	sig, err := s.submitter.SendTransaction(ctx, signed)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to submit transaction")
		return s.fail(flow, gen, "failed to submit transaction")
	}
	if sig == "" {
		logger.Error().Msg("Ledger returned an empty signature")
		return s.fail(flow, gen, "failed to submit transaction")
	}
	logger.Info().Str("signature", sig.String()).Msg("Transaction submitted")

	result, attempts := s.poller.Confirm(ctx, sig)
	s.recorder.PollAttempts(attempts)

	if result == confirm.Confirmed {
		logger.Info().Str("signature", sig.String()).Int("attempts", attempts).Msg("Signing flow done")
		return s.finish(flow, gen, Status{Phase: PhaseDone, Signature: sig})
	}

	logger.Warn().Str("signature", sig.String()).Int("attempts", attempts).Msg("Signing flow timed out")

	return s.finish(flow, gen, Status{Phase: PhaseTimeout, Signature: sig})
}

func (s *service) signerFailed(flow *Flow, gen uint64, logger *zerolog.Logger, err error) Status {
	if errors.Is(err, signer.ErrDecode) {
		s.recorder.SignerResult("undecodable")
		logger.Error().Err(err).Msg("Failed to decode signed transaction")
		return s.fail(flow, gen, "failed to decode signed transaction")
	}

	s.recorder.SignerResult("rejected")
	logger.Warn().Err(err).Msg("Signature request rejected")

	return s.fail(flow, gen, "signature request rejected")
}

type nopRecorder struct{}

func (nopRecorder) FlowStarted()        {}
func (nopRecorder) FlowFinished(string) {}
func (nopRecorder) SignerResult(string) {}
func (nopRecorder) PollAttempts(int)    {}
