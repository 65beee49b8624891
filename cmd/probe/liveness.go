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
	"github/chapool/wallet-bridge/internal/wallet/ledger"
)

func newLiveness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liveness",
		Short: "Runs liveness probes",
		Long: `Runs the liveness probes against the configured ledger

Exits 0 when the ledger answers with a recent anchor.`,
		Run: func(cmd *cobra.Command, _ []string) {
			verbose, err := cmd.Flags().GetBool(verboseFlag)
			if err != nil {
				log.Fatal().Err(err).Msgf("Failed to parse args")
			}

			if err := runLiveness(cmd.Context(), verbose); err != nil {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "Show verbose output.")

	return cmd
}

func runLiveness(ctx context.Context, verbose bool) error {
	config := config.DefaultServiceConfigFromEnv()
	command.SetupLogger(config)

	ctx, cancel := context.WithTimeout(ctx, config.Management.LivenessTimeout)
	defer cancel()

	anchor, err := probeLedger(ctx, config)
	if err != nil {
		if verbose {
			log.Error().Err(err).Msg("Liveness probe failed")
		}
		return err
	}

	if verbose {
		fmt.Printf("Ledger: anchor %s at height %d\n", anchor.Value, anchor.Height)
	}

	return nil
}

func probeLedger(ctx context.Context, config config.Server) (*ledger.Anchor, error) {
	opts, err := api.LedgerOptions(config)
	if err != nil {
		return nil, err
	}

	client, err := ledger.New(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create ledger client")
	}
	defer client.Close()

	anchor, err := client.GetLatestAnchor(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch latest anchor")
	}

	return anchor, nil
}
