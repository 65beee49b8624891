package ledger

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/wallet-bridge/internal/api"
	"github/chapool/wallet-bridge/internal/config"
	"github/chapool/wallet-bridge/internal/util/command"
)

func newAnchor() *cobra.Command {
	return &cobra.Command{
		Use:   "anchor",
		Short: "Prints the latest anchor",
		Long:  `Prints the anchor new transactions should be stamped with, as reported by the configured ledger.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return command.WithServer(cmd.Context(), config.DefaultServiceConfigFromEnv(), func(ctx context.Context, s *api.Server) error {
				anchor, err := s.Ledger.GetLatestAnchor(ctx)
				if err != nil {
					return errors.Wrap(err, "failed to fetch latest anchor")
				}

				fmt.Printf("kind:   %s\nanchor: %s\nheight: %d\nslot:   %d\n", s.Config.Ledger.Kind, anchor.Value, anchor.Height, anchor.Slot)

				return nil
			})
		},
	}
}
