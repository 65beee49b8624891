package ledger

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/wallet-bridge/internal/api"
	"github/chapool/wallet-bridge/internal/config"
	"github/chapool/wallet-bridge/internal/util/command"
	"github/chapool/wallet-bridge/internal/wallet/ledger"
)

func newStatus() *cobra.Command {
	return &cobra.Command{
		Use:   "status <signature>...",
		Short: "Prints the ledger status of submitted transactions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sigs := make([]ledger.Signature, len(args))
			for i, arg := range args {
				sigs[i] = ledger.Signature(arg)
			}

			return command.WithServer(cmd.Context(), config.DefaultServiceConfigFromEnv(), func(ctx context.Context, s *api.Server) error {
				statuses, err := s.Ledger.GetSignatureStatuses(ctx, sigs...)
				if err != nil {
					return errors.Wrap(err, "failed to fetch signature statuses")
				}

				for i, sig := range sigs {
					var status *ledger.SignatureStatus
					if i < len(statuses) {
						status = statuses[i]
					}

					switch {
					case status == nil:
						fmt.Printf("%s: not found\n", sig)
					case status.Err != nil:
						fmt.Printf("%s: %s at slot %d, failed: %v\n", sig, status.Commitment, status.Slot, status.Err)
					default:
						fmt.Printf("%s: %s at slot %d\n", sig, status.Commitment, status.Slot)
					}
				}

				return nil
			})
		},
	}
}
