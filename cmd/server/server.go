package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/wallet-bridge/internal/api"
	"github/chapool/wallet-bridge/internal/api/router"
	"github/chapool/wallet-bridge/internal/config"
	"github/chapool/wallet-bridge/internal/util/command"
)

const (
	probeFlag string = "probe-interval"

	shutdownTimeout = 30 * time.Second
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Starts the server",
		Long: `Starts the stateless RESTful JSON server

Requires configuration through ENV and
and a reachable ledger RPC endpoint.`,
		Run: func(cmd *cobra.Command, _ []string) {
			interval, err := cmd.Flags().GetDuration(probeFlag)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to parse probe interval")
			}

			runServer(interval)
		},
	}

	cmd.Flags().Duration(probeFlag, defaultLedgerProbeInterval, "Interval of the background ledger probe, 0 disables it.")

	return cmd
}

func runServer(probeInterval time.Duration) {
	config := config.DefaultServiceConfigFromEnv()

	command.SetupLogger(config)

	s, err := api.InitNewServer(config)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}

	router.Init(s)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startConnectionGaugeWorker(ctx, s)
	if probeInterval > 0 {
		startLedgerProbeWorker(ctx, s, probeInterval)
	}

	go func() {
		if err := s.Start(); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				log.Info().Msg("Server closed")
			} else {
				log.Fatal().Err(err).Msg("Failed to start server")
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if errs := s.Shutdown(shutdownCtx); len(errs) > 0 {
		log.Fatal().Errs("shutdownErrors", errs).Msg("Failed to gracefully shut down server")
	}

	log.Info().Msg("Server shut down gracefully")
}
