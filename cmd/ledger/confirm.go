package ledger

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/wallet-bridge/internal/api"
	"github/chapool/wallet-bridge/internal/config"
	"github/chapool/wallet-bridge/internal/util/command"
	"github/chapool/wallet-bridge/internal/wallet/confirm"
	"github/chapool/wallet-bridge/internal/wallet/ledger"
)

var errNotConfirmed = errors.New("transaction not confirmed")

func newConfirm() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <signature>",
		Short: "Polls the ledger until a transaction is confirmed",
		Long: `Polls the ledger for a submitted transaction with the configured
CONFIRM_RETRIES, CONFIRM_DELAY and CONFIRM_TARGET, exactly like a signing flow does.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sig := ledger.Signature(args[0])

			return command.WithServer(cmd.Context(), config.DefaultServiceConfigFromEnv(), func(ctx context.Context, s *api.Server) error {
				result, attempts := s.Confirm.Confirm(ctx, sig)
				fmt.Printf("%s: %s after %d attempts\n", sig, result, attempts)

				if result != confirm.Confirmed {
					return errNotConfirmed
				}

				return nil
			})
		},
	}
}
