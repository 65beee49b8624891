package ledger

import (
	"github.com/spf13/cobra"
	"github/chapool/wallet-bridge/internal/util/command"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("ledger",
		newAnchor(),
		newStatus(),
		newConfirm(),
	)
}
