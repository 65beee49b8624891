package server

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github/chapool/wallet-bridge/internal/api"
)

const defaultLedgerProbeInterval = 30 * time.Second

// startConnectionGaugeWorker mirrors every signer connection change into the
// signer_connected gauge.
func startConnectionGaugeWorker(ctx context.Context, s *api.Server) {
	updates, unsubscribe := s.Connection.Subscribe()

	go func() {
		defer func() { unsubscribe() }()

		for {
			select {
			case <-ctx.Done():
				return
			case state, ok := <-updates:
				if !ok {
					// dropped as a slow subscriber, resubscribe
					updates, unsubscribe = s.Connection.Subscribe()
					continue
				}
				s.Metrics.SetConnected(state.Connected)
			}
		}
	}()
}

// startLedgerProbeWorker periodically fetches the latest anchor so an
// unreachable ledger shows up in the logs before a flow fails on it.
func startLedgerProbeWorker(ctx context.Context, s *api.Server, interval time.Duration) {
	runOnce := func() {
		probeCtx, cancel := context.WithTimeout(ctx, s.Config.Management.LivenessTimeout)
		defer cancel()

		anchor, err := s.Ledger.GetLatestAnchor(probeCtx)
		if err != nil {
			log.Error().Err(err).Msg("Ledger probe failed to fetch latest anchor")
			return
		}

		s.Metrics.SetAnchorHeight(anchor.Height)
		log.Debug().
			Str("anchor", anchor.Value).
			Uint64("height", anchor.Height).
			Uint64("slot", anchor.Slot).
			Msg("Ledger probe succeeded")
	}

	go func() {
		log.Info().Dur("interval", interval).Msg("Starting ledger probe worker")
		runOnce()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("Ledger probe worker stopped")
				return
			case <-ticker.C:
				runOnce()
			}
		}
	}()
}
