package confirm

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github/chapool/wallet-bridge/internal/wallet/ledger"
)

type service struct {
	client StatusClient
	config Config
}

// NewService creates a poller over client. Zero fields in config fall back to
// DefaultConfig.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(client StatusClient, config Config) Service {
	defaults := DefaultConfig()
	if config.Retries <= 0 {
		config.Retries = defaults.Retries
	}
	if config.Delay < 0 {
		config.Delay = defaults.Delay
	}
	if config.Target == 0 {
		config.Target = defaults.Target
	}

	return &service{
		client: client,
		config: config,
	}
}

func (s *service) Confirm(ctx context.Context, sig ledger.Signature) (Result, int) {
	timer := time.NewTimer(s.config.Delay)
	defer timer.Stop()

	attempts := 0
	for attempts < s.config.Retries {
		if attempts > 0 {
			timer.Reset(s.config.Delay)
		}

		select {
		case <-ctx.Done():
			log.Warn().
				Str("signature", sig.String()).
				Int("attempts", attempts).
				Err(ctx.Err()).
				Msg("Confirmation polling cancelled")
			return TimedOut, attempts
		case <-timer.C:
		}

		attempts++

		statuses, err := s.client.GetSignatureStatuses(ctx, sig)
		if err != nil {
			log.Warn().
				Str("signature", sig.String()).
				Int("attempt", attempts).
				Err(err).
				Msg("Failed to get signature status")
			continue
		}

		if len(statuses) == 0 || statuses[0] == nil {
			log.Debug().Str("signature", sig.String()).Int("attempt", attempts).Msg("Signature not seen yet")
			continue
		}

		status := statuses[0]
		if status.Commitment.AtLeast(s.config.Target) {
			log.Info().
				Str("signature", sig.String()).
				Str("commitment", status.Commitment.String()).
				Uint64("slot", status.Slot).
				Int("attempts", attempts).
				Msg("Transaction confirmed")
			return Confirmed, attempts
		}

		log.Debug().
			Str("signature", sig.String()).
			Str("commitment", status.Commitment.String()).
			Int("attempt", attempts).
			Msg("Transaction not confirmed yet")
	}

	log.Warn().
		Str("signature", sig.String()).
		Int("attempts", attempts).
		Msg("Transaction not confirmed within polling budget")

	return TimedOut, attempts
}
