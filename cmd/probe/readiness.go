package probe

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/wallet-bridge/internal/api"
	"github/chapool/wallet-bridge/internal/config"
	"github/chapool/wallet-bridge/internal/util/command"
)

var errNotReady = errors.New("server is not ready")

func newReadiness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Runs readiness probes",
		Long: `Runs the readiness probes

Wires a full server from the current ENV and checks that every component
is initialized and the ledger answers.`,
		Run: func(cmd *cobra.Command, _ []string) {
			verbose, err := cmd.Flags().GetBool(verboseFlag)
			if err != nil {
				log.Fatal().Err(err).Msgf("Failed to parse args")
			}

			if err := runReadiness(cmd.Context(), verbose); err != nil {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "Show verbose output.")

	return cmd
}

func runReadiness(ctx context.Context, verbose bool) error {
	config := config.DefaultServiceConfigFromEnv()

	err := command.WithServer(ctx, config, func(ctx context.Context, s *api.Server) error {
		if !s.Ready() {
			return errNotReady
		}

		ctx, cancel := context.WithTimeout(ctx, s.Config.Management.ReadinessTimeout)
		defer cancel()

		anchor, err := s.Ledger.GetLatestAnchor(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to fetch latest anchor")
		}

		if verbose {
			fmt.Printf("Ready: true\nLedger: anchor %s at height %d\n", anchor.Value, anchor.Height)
		}

		return nil
	})

	if err != nil && verbose {
		log.Error().Err(err).Msg("Readiness probe failed")
	}

	return err
}
